package handlers

import (
	"bytes"
	"net/http"

	"go-glass-dispatch/internal/middleware"
	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/reference"
	"go-glass-dispatch/internal/workflow"

	"github.com/gin-gonic/gin"
)

type StageRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

type ToggleRequest struct {
	OrderID      string `json:"order_id" binding:"required"`
	ItemID       int    `json:"item_id" binding:"required"`
	Selected     bool   `json:"selected"`
	CDStatus     string `json:"cd_status"`
	PaymentTerms string `json:"payment_terms"`
	InvoiceNo    string `json:"invoice_no"`
	RackLocation string `json:"rack_location"`
}

type SubmitRequest struct {
	Date       string `json:"date"`
	VehicleNo  string `json:"vehicle_no"`
	GatePassNo string `json:"gate_pass_no"`
}

// SlipUpdateRequest is the back-office edit. Omitted fields are kept.
type SlipUpdateRequest struct {
	Version    int               `json:"version"`
	InvoiceNo  *string           `json:"invoice_no"`
	GatePassNo *string           `json:"gate_pass_no"`
	Status     models.SlipStatus `json:"status"`
}

// draft loads the draft named in the URL. Only its owner and admins may use it.
func (h *Handler) draft(c *gin.Context) (*Draft, bool) {
	d, ok := h.drafts.Get(c.Param("draft"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found or expired"})
		return nil, false
	}
	actor := middleware.ActorFrom(c)
	if d.OwnerID != actor.ID && actor.Role != reference.RoleAdmin {
		respondError(c, &workflow.AuthorizationError{Role: actor.Role, Action: "use another operator's draft"})
		return nil, false
	}
	return d, true
}

// runDraft applies fn to the draft and replies with the draft's new state.
func (h *Handler) runDraft(c *gin.Context, fn func(b *workflow.Builder) error) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	var view DraftView
	err := d.With(func(b *workflow.Builder) error {
		if err := fn(b); err != nil {
			return err
		}
		var err error
		view, err = d.view(c.Request.Context(), b)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --- POST: /api/loading-slips/drafts ---
func (h *Handler) OpenDraft(c *gin.Context) {
	d := h.drafts.Open(middleware.ActorFrom(c).ID)
	var view DraftView
	err := d.With(func(b *workflow.Builder) error {
		var err error
		view, err = d.view(c.Request.Context(), b)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// --- GET: /api/loading-slips/drafts/:draft ---
func (h *Handler) GetDraft(c *gin.Context) {
	h.runDraft(c, func(b *workflow.Builder) error { return nil })
}

// --- DELETE: /api/loading-slips/drafts/:draft ---
func (h *Handler) DiscardDraft(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	h.drafts.Close(d.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Draft discarded"})
}

// --- POST: /api/loading-slips/drafts/:draft/orders ---
// Staging an order that is not approved, or already staged, changes nothing.
func (h *Handler) StageOrder(c *gin.Context) {
	var req StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}
	h.runDraft(c, func(b *workflow.Builder) error {
		_, err := b.StageOrder(c.Request.Context(), req.OrderID)
		return err
	})
}

// --- DELETE: /api/loading-slips/drafts/:draft/orders/:orderId ---
func (h *Handler) UnstageOrder(c *gin.Context) {
	h.runDraft(c, func(b *workflow.Builder) error {
		b.UnstageOrder(c.Param("orderId"))
		return nil
	})
}

// --- PUT: /api/loading-slips/drafts/:draft/items ---
func (h *Handler) ToggleItem(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id and item_id are required"})
		return
	}
	h.runDraft(c, func(b *workflow.Builder) error {
		return b.ToggleItem(c.Request.Context(), req.OrderID, req.ItemID, req.Selected, workflow.SlipDetails{
			CDStatus:     req.CDStatus,
			PaymentTerms: req.PaymentTerms,
			InvoiceNo:    req.InvoiceNo,
			RackLocation: req.RackLocation,
		})
	})
}

// --- POST: /api/loading-slips/drafts/:draft/orders/:orderId/remainder ---
func (h *Handler) CreateRemainder(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	var created models.Order
	err := d.With(func(b *workflow.Builder) error {
		var err error
		created, err = b.CreateRemainderOrder(c.Request.Context(), middleware.ActorFrom(c), c.Param("orderId"))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// --- POST: /api/loading-slips/drafts/:draft/submit ---
func (h *Handler) SubmitDraft(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	d, ok := h.draft(c)
	if !ok {
		return
	}
	var slip models.LoadingSlip
	err := d.With(func(b *workflow.Builder) error {
		var err error
		slip, err = b.Submit(c.Request.Context(), middleware.ActorFrom(c), workflow.SlipHeader{
			Date: req.Date, VehicleNo: req.VehicleNo, GatePassNo: req.GatePassNo,
		})
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slip)
}

// --- POST: /api/loading-slips/drafts/:draft/reset ---
func (h *Handler) ResetDraft(c *gin.Context) {
	h.runDraft(c, func(b *workflow.Builder) error {
		b.Reset()
		return nil
	})
}

// --- GET: /api/loading-slips?status= ---
func (h *Handler) ListSlips(c *gin.Context) {
	slips, err := h.svc.ListSlips(c.Request.Context(), models.SlipStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slips)
}

// --- GET: /api/loading-slips/:id ---
func (h *Handler) GetSlip(c *gin.Context) {
	slip, err := h.svc.ViewSlip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slip)
}

// --- GET: /api/loading-slips/:id/print ---
func (h *Handler) PrintSlip(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.PrintSlip(c.Request.Context(), c.Param("id"), &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// --- GET: /api/loading-slips/:id/history ---
func (h *Handler) SlipHistory(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.svc.ViewSlip(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	history, err := h.svc.History(ctx, models.EntitySlip, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if history == nil {
		history = []models.AuditLog{}
	}
	c.JSON(http.StatusOK, history)
}

// --- PUT: /api/back-office/slips/:id ---
func (h *Handler) UpdateSlip(c *gin.Context) {
	var req SlipUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	slip, err := h.svc.UpdateSlip(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Version, workflow.SlipUpdate{
		InvoiceNo:  req.InvoiceNo,
		GatePassNo: req.GatePassNo,
		Status:     req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slip)
}
