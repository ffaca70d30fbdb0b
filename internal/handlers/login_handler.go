package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go-glass-dispatch/internal/middleware"
	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/reference"
	"go-glass-dispatch/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserRequest is the body of registration and of admin user creation.
type UserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// --- POST: /login ---
func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// 2. Find User
	user, err := h.stores.Users.FindByUsername(c.Request.Context(), input.Username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// 3. Verify Password (Bcrypt)
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil || user.Status == models.UserDisabled {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// 4. Generate JWT Token
	token, err := h.issuer.GenerateToken(user.ID, user.Name, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
		"user":     user,
	})
}

// --- POST: /register ---
// Only mounted when ALLOW_REGISTRATION is on. Role defaults to marketing.
func (h *Handler) RegisterUser(c *gin.Context) {
	h.createUser(c, reference.RoleMarketing)
}

// --- GET: /api/me ---
func (h *Handler) Me(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	user, err := h.stores.Users.Get(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"role_label":  reference.RoleLabel(user.Role),
		"permissions": allowedAreas(user.Role),
	})
}

// --- GET: /api/users ---
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.stores.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// --- POST: /api/users ---
func (h *Handler) CreateUser(c *gin.Context) {
	h.createUser(c, "")
}

func (h *Handler) createUser(c *gin.Context, defaultRole string) {
	var input UserRequest

	// 1. Parse JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if input.Role == "" {
		input.Role = defaultRole
	}
	if !reference.IsRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	// 2. Hash the Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = input.Username
	}

	// 3. Save
	user, err := h.stores.Users.Add(c.Request.Context(), models.User{
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: string(hashedPassword),
		Name:         name,
		Email:        input.Email,
		Role:         input.Role,
		Status:       models.UserActive,
	})
	if errors.Is(err, store.ErrDuplicateID) {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func allowedAreas(role string) []string {
	var areas []string
	for _, area := range []string{
		reference.AreaDashboard, reference.AreaOrders, reference.AreaApprovals,
		reference.AreaLoadingSlips, reference.AreaBackOffice, reference.AreaUsers, reference.AreaReports,
	} {
		if reference.Allowed(area, role) {
			areas = append(areas, area)
		}
	}
	return areas
}
