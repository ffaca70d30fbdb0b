package main

import (
	"context"
	"log"
	"time"

	"go-glass-dispatch/internal/ai"
	"go-glass-dispatch/internal/auth"
	"go-glass-dispatch/internal/config"
	"go-glass-dispatch/internal/database"
	"go-glass-dispatch/internal/handlers"
	"go-glass-dispatch/internal/reports"
	"go-glass-dispatch/internal/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: No .env file found")
	}
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration rejected: ", err)
	}
	if cfg.UsesDevSecret() {
		log.Println("⚠️ WARNING: JWT_SECRET is not set, tokens are signed with the development secret.")
	}

	// 1. Storage
	stores, err := database.OpenStores(cfg)
	if err != nil {
		log.Fatal("Storage failed to start: ", err)
	}
	if cfg.SeedDemoData {
		if err := database.Seed(context.Background(), stores); err != nil {
			log.Fatal("Seeding failed: ", err)
		}
	}

	// 2. Workflow and assistant
	svc := workflow.NewService(stores)
	var assistant handlers.Assistant
	if cfg.GeminiAPIKey != "" {
		tools := ai.NewTools(svc, func(ctx context.Context) (reports.Dashboard, error) {
			return reports.BuildDashboard(ctx, stores.Orders, stores.Slips)
		})
		assistant = ai.NewAgent(cfg.GeminiAPIKey, cfg.GeminiModel, tools)
	} else {
		log.Println("🔒 GEMINI_API_KEY not set, /api/ask is disabled.")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 3. Routes
	h := handlers.New(svc, stores, auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL), assistant)
	h.Routes(r, cfg.AllowRegistration)

	log.Println("🚀 Server starting on " + cfg.BaseURL)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
