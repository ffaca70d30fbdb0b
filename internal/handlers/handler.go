package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"go-glass-dispatch/internal/auth"
	"go-glass-dispatch/internal/store"
	"go-glass-dispatch/internal/workflow"

	"github.com/gin-gonic/gin"
)

// Assistant answers free-text questions about the order book.
type Assistant interface {
	Ask(ctx context.Context, message string) (string, error)
}

// Handler serves the HTTP API over one workflow service.
type Handler struct {
	svc       *workflow.Service
	stores    store.Stores
	issuer    *auth.Issuer
	drafts    *DraftRegistry
	assistant Assistant
}

// New wires a Handler. assistant may be nil, which disables /api/ask.
func New(svc *workflow.Service, stores store.Stores, issuer *auth.Issuer, assistant Assistant) *Handler {
	return &Handler{
		svc:       svc,
		stores:    stores,
		issuer:    issuer,
		drafts:    NewDraftRegistry(svc),
		assistant: assistant,
	}
}

// respondError maps workflow and store errors to status codes.
func respondError(c *gin.Context, err error) {
	var authErr *workflow.AuthorizationError
	switch {
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case workflow.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case workflow.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
