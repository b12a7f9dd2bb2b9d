package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/Pranav4399/loans/internal/chatbot"
	"github.com/Pranav4399/loans/internal/handlers"
	"github.com/Pranav4399/loans/internal/middleware"
	"github.com/Pranav4399/loans/internal/services"
	"github.com/Pranav4399/loans/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, bot *chatbot.Bot) {
	leadService := services.NewLeadService(store)

	whatsapp := handlers.NewWhatsAppHandler(bot)
	leads := handlers.NewLeadHandler(leadService)
	applications := handlers.NewApplicationHandler(leadService)
	referrers := handlers.NewReferrerHandler(store)
	health := handlers.NewHealthHandler("1.0.0")

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the Loans Chatbot Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":        "/health",
				"api":           "/api",
				"webhook":       "/webhook/whatsapp",
				"test_whatsapp": "/test/whatsapp",
			},
		})
	})

	app.Get("/health", health.Check)

	// API routes
	api := app.Group("/api")

	// Lead dashboard routes
	leadRoutes := api.Group("/leads")
	leadRoutes.Get("/", leads.GetLeads)
	leadRoutes.Get("/stats", leads.GetLeadStats)
	leadRoutes.Get("/:id", leads.GetLead)
	leadRoutes.Patch("/:id/status", leads.UpdateLeadStatus)

	// Loan application dashboard routes
	applicationRoutes := api.Group("/applications")
	applicationRoutes.Get("/", applications.GetApplications)
	applicationRoutes.Get("/:id", applications.GetApplication)
	applicationRoutes.Patch("/:id/status", applications.UpdateApplicationStatus)

	// Referrer routes
	referrerRoutes := api.Group("/referrers")
	referrerRoutes.Post("/", referrers.CreateReferrer)
	referrerRoutes.Get("/:id", referrers.GetReferrer)
	referrerRoutes.Get("/:id/applications", referrers.GetReferrerApplications)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// WhatsApp webhook - ENVIRONMENT-AWARE VALIDATION
	devMode := os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true"
	if devMode {
		// Development: Skip validation for ngrok
		webhooks.Post("/whatsapp", whatsapp.HandleWebhook)
		if os.Getenv("ENVIRONMENT") == "development" {
			log.Println("⚠️  WhatsApp webhook validation DISABLED for development")
		}
	} else {
		// Production: Validate webhook signature
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(), whatsapp.HandleWebhook)
	}

	// ========== TEST ROUTES (Development Only) ==========
	// Test WhatsApp endpoint, never registered in production
	if devMode {
		app.Post("/test/whatsapp", whatsapp.HandleTestWebhook)
	}
}
