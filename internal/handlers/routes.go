package handlers

import (
	"log"
	"net/http"

	"go-glass-dispatch/internal/middleware"
	"go-glass-dispatch/internal/reference"

	"github.com/gin-gonic/gin"
)

// Routes mounts the API on r.
func (h *Handler) Routes(r *gin.Engine, allowRegistration bool) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)

	// --- FEATURE FLAG: Self Registration ---
	if allowRegistration {
		r.POST("/register", h.RegisterUser)
		log.Println("⚠️ WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("🔒 Registration route is safely DISABLED.")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.issuer))

	// EVERY ROLE
	api.GET("/me", h.Me)
	api.GET("/reference", h.Reference)
	api.GET("/dashboard", middleware.RequireArea(reference.AreaDashboard), h.Dashboard)
	api.GET("/orders/:id/history", h.OrderHistory)

	// ORDERS: marketing writes, finance and dispatch read
	readOrders := middleware.RequireRole(reference.RoleAdmin, reference.RoleMarketing, reference.RoleFinance, reference.RoleDispatch)
	api.GET("/orders", readOrders, h.ListOrders)
	api.GET("/orders/:id", readOrders, h.GetOrder)
	orders := api.Group("/orders", middleware.RequireArea(reference.AreaOrders))
	{
		orders.POST("", h.CreateOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
	}

	// APPROVALS
	approvals := api.Group("/approvals", middleware.RequireArea(reference.AreaApprovals))
	{
		approvals.POST("/:id/approve", h.ApproveOrder)
		approvals.POST("/:id/hold", h.HoldOrder)
		approvals.POST("/:id/cancel", h.CancelOrder)
	}

	// LOADING SLIPS: dispatch builds, back office reads
	slips := api.Group("/loading-slips")
	{
		readSlips := middleware.RequireRole(reference.RoleAdmin, reference.RoleDispatch, reference.RoleBackOffice)
		slips.GET("", readSlips, h.ListSlips)
		slips.GET("/:id", readSlips, h.GetSlip)
		slips.GET("/:id/print", readSlips, h.PrintSlip)
		slips.GET("/:id/history", readSlips, h.SlipHistory)

		drafts := slips.Group("/drafts", middleware.RequireArea(reference.AreaLoadingSlips))
		drafts.POST("", h.OpenDraft)
		drafts.GET("/:draft", h.GetDraft)
		drafts.DELETE("/:draft", h.DiscardDraft)
		drafts.POST("/:draft/orders", h.StageOrder)
		drafts.DELETE("/:draft/orders/:orderId", h.UnstageOrder)
		drafts.POST("/:draft/orders/:orderId/remainder", h.CreateRemainder)
		drafts.PUT("/:draft/items", h.ToggleItem)
		drafts.POST("/:draft/submit", h.SubmitDraft)
		drafts.POST("/:draft/reset", h.ResetDraft)
	}

	// BACK OFFICE
	backOffice := api.Group("/back-office", middleware.RequireArea(reference.AreaBackOffice))
	backOffice.PUT("/slips/:id", h.UpdateSlip)

	// ADMIN ONLY
	admin := api.Group("/", middleware.RequireRole(reference.RoleAdmin))
	{
		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)
		admin.GET("/reports/orders.xlsx", h.ExportOrders)
		admin.GET("/reports/slips.xlsx", h.ExportSlips)

		// AI is restricted to Admin
		admin.POST("/ask", h.AskAI)
	}
}
