package handlers

import (
	"net/http"

	"go-glass-dispatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

// DecisionRequest is the body of approve, hold and cancel. Hold reads Reason,
// falling back to Remarks.
type DecisionRequest struct {
	Version int    `json:"version"`
	Remarks string `json:"remarks"`
	Reason  string `json:"reason"`
}

func bindDecision(c *gin.Context) (DecisionRequest, bool) {
	var req DecisionRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return req, false
	}
	return req, true
}

// --- POST: /api/approvals/:id/approve ---
func (h *Handler) ApproveOrder(c *gin.Context) {
	req, ok := bindDecision(c)
	if !ok {
		return
	}
	o, err := h.svc.Approve(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Version, req.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// --- POST: /api/approvals/:id/hold ---
func (h *Handler) HoldOrder(c *gin.Context) {
	req, ok := bindDecision(c)
	if !ok {
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = req.Remarks
	}
	o, err := h.svc.Hold(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Version, reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// --- POST: /api/approvals/:id/cancel ---
func (h *Handler) CancelOrder(c *gin.Context) {
	req, ok := bindDecision(c)
	if !ok {
		return
	}
	o, err := h.svc.Cancel(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Version, req.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
