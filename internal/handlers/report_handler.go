package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/reference"
	"go-glass-dispatch/internal/reports"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// --- GET: /api/dashboard ---
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := reports.BuildDashboard(c.Request.Context(), h.stores.Orders, h.stores.Slips)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// --- GET: /api/reference ---
// The pick lists the front end needs for its forms.
func (h *Handler) Reference(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":          reference.Items,
		"brands":         reference.Brands,
		"thickness":      reference.Thickness,
		"cd_statuses":    reference.CDStatuses,
		"payment_terms":  reference.PaymentTerms,
		"roles":          reference.Roles,
		"order_statuses": models.OrderStatuses,
		"slip_statuses":  models.SlipStatuses,
		"permissions":    reference.Permissions,
	})
}

// --- GET: /api/reports/orders.xlsx?status= ---
func (h *Handler) ExportOrders(c *gin.Context) {
	orders, err := h.svc.ListOrders(c.Request.Context(), models.OrderStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.ExportOrders(&buf, orders); err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, "orders", buf.Bytes())
}

// --- GET: /api/reports/slips.xlsx?status= ---
func (h *Handler) ExportSlips(c *gin.Context) {
	slips, err := h.svc.ListSlips(c.Request.Context(), models.SlipStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.ExportSlips(&buf, slips); err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, "loading-slips", buf.Bytes())
}

func sendWorkbook(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
