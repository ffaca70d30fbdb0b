package handlers

import (
	"net/http"

	"go-glass-dispatch/internal/middleware"
	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/workflow"

	"github.com/gin-gonic/gin"
)

// OrderRequest is the body of order create and edit. Item amounts and the
// total are computed server-side.
type OrderRequest struct {
	Date               string             `json:"date"`
	MarketingExecutive string             `json:"marketing_executive"`
	CustomerName       string             `json:"customer_name"`
	CustomerAddress    string             `json:"customer_address"`
	CustomerPhone      string             `json:"customer_phone"`
	Items              []models.OrderItem `json:"items"`
	Remarks            string             `json:"remarks"`
	Version            int                `json:"version"`
}

func (r OrderRequest) draft() workflow.OrderDraft {
	return workflow.OrderDraft{
		Date:               r.Date,
		MarketingExecutive: r.MarketingExecutive,
		CustomerName:       r.CustomerName,
		CustomerAddress:    r.CustomerAddress,
		CustomerPhone:      r.CustomerPhone,
		Items:              r.Items,
		Remarks:            r.Remarks,
	}
}

// --- GET: /api/orders?status= ---
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.svc.ListOrders(c.Request.Context(), models.OrderStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// --- GET: /api/orders/:id ---
func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// --- POST: /api/orders ---
func (h *Handler) CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	o, err := h.svc.CreateOrder(c.Request.Context(), middleware.ActorFrom(c), req.draft())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// --- PUT: /api/orders/:id ---
// Replaces the order's contents. Only pending orders can be edited.
func (h *Handler) UpdateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	o, err := h.svc.EditOrder(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Version, req.draft())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// --- DELETE: /api/orders/:id ---
func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.svc.DeleteOrder(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

// --- GET: /api/orders/:id/history ---
func (h *Handler) OrderHistory(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.svc.GetOrder(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	history, err := h.svc.History(ctx, models.EntityOrder, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if history == nil {
		history = []models.AuditLog{}
	}
	c.JSON(http.StatusOK, history)
}
