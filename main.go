package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Pranav4399/loans/database"
	"github.com/Pranav4399/loans/internal/chatbot"
	"github.com/Pranav4399/loans/internal/jobs"
	"github.com/Pranav4399/loans/internal/models"
	"github.com/Pranav4399/loans/internal/routes"
	"github.com/Pranav4399/loans/internal/services"
	"github.com/Pranav4399/loans/internal/storage"
	"github.com/Pranav4399/loans/internal/validation"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		// Try multiple locations for .env file
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}

		// Debug what we loaded
		log.Printf("🔍 TWILIO_ACCOUNT_SID exists: %v", os.Getenv("TWILIO_ACCOUNT_SID") != "")
		log.Printf("🔍 TWILIO_AUTH_TOKEN exists: %v", os.Getenv("TWILIO_AUTH_TOKEN") != "")
		log.Printf("🔍 TWILIO_WHATSAPP_FROM: %s", os.Getenv("TWILIO_WHATSAPP_FROM"))
	}

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.ConversationState{},
			&models.Lead{},
			&models.LoanApplication{},
			&models.Referrer{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		// Use database store
		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Initialize Twilio service
	twilioService, err := services.NewTwilioService()
	if err != nil {
		log.Fatal("Failed to initialize Twilio service:", err)
	}
	log.Println("✅ Twilio service initialized")

	// Build the conversation flow from the environment
	flowName := os.Getenv("CHATBOT_FLOW")
	if flowName == "" {
		flowName = "lead"
	}
	policy := policyFromEnv()
	flow := chatbot.NewFlow(flowName, policy)
	bot := chatbot.NewBot(store, twilioService, flow)
	log.Printf("✅ Chatbot ready (flow: %s)", flow.Name)

	// Start the stale-conversation cleanup sweep
	cleanupJob := jobs.NewCleanupJob(store)
	cleanupJob.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Loans Chatbot Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	// Setup routes
	routes.SetupRoutes(app, store, bot)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping cleanup job...")
		cleanupJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 Loans Chatbot Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🌍 Environment: %s", getEnvironment())
	log.Printf("💬 Flow: %s", flow.Name)
	log.Printf("📱 WhatsApp: %s", getWhatsAppStatus(os.Getenv("TWILIO_ACCOUNT_SID")))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

// policyFromEnv reads the deployment's validation knobs.
//   - PHONE_ALLOW_BARE=true accepts bare 10-12 digit numbers in addition to
//     international ones.
//   - NAME_POLICY=single accepts single-word names.
func policyFromEnv() chatbot.Policy {
	policy := chatbot.DefaultPolicy()
	if os.Getenv("PHONE_ALLOW_BARE") == "true" {
		policy.Phone.AllowBare = true
	}
	if os.Getenv("NAME_POLICY") == "single" {
		policy.Name = validation.NameSingleToken
	}
	return policy
}

func getEnvironment() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return "Production (Cloud Run)"
	}
	return "Development (Local)"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getWhatsAppStatus(twilioSID string) string {
	if twilioSID == "" {
		return "Not configured"
	}
	return "Configured"
}
