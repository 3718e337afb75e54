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

	"github.com/bjo0vj/zalo-image-bot/database"
	"github.com/bjo0vj/zalo-image-bot/internal/models"
	"github.com/bjo0vj/zalo-image-bot/internal/routes"
	"github.com/bjo0vj/zalo-image-bot/internal/services"
	"github.com/bjo0vj/zalo-image-bot/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
		log.Printf("🔍 ZALO_OA_TOKEN exists: %v", os.Getenv("ZALO_OA_TOKEN") != "")
	}

	// Initialize storage
	var store storage.Store

	switch {
	case os.Getenv("USE_MEMORY_STORE") == "true":
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()

	case os.Getenv("USE_DATABASE_STORE") == "true":
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		if err := database.DB.AutoMigrate(&models.SessionRecord{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")

	default:
		dataFile := os.Getenv("BOT_DATA_FILE")
		if dataFile == "" {
			dataFile = storage.DefaultDataFile
		}
		store = storage.NewFileStore(dataFile)
		log.Printf("✅ Using JSON file storage: %s", dataFile)
	}

	// Initialize Zalo service
	zaloService := services.NewZaloService()
	log.Println("✅ Zalo service initialized")

	// Set global instances
	storage.SetStore(store)
	services.SetZaloService(zaloService)

	// Initialize bot service
	botService := services.NewBotService(store, zaloService)
	log.Println("✅ Bot service initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Zalo Image Count Bot v1.0.0",
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
		AllowMethods: "GET, POST, OPTIONS",
	}))

	// Setup routes
	routes.SetupRoutes(app, botService)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 Zalo image count bot starting on port %s", port)
	log.Printf("📊 Storage: %s", storageType())
	log.Printf("📱 Zalo OA: %s", zaloStatus())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func storageType() string {
	switch {
	case os.Getenv("USE_MEMORY_STORE") == "true":
		return "In-Memory (Testing)"
	case os.Getenv("USE_DATABASE_STORE") == "true":
		return "PostgreSQL Database"
	default:
		return "JSON File"
	}
}

func zaloStatus() string {
	if os.Getenv("ZALO_OA_TOKEN") == "" {
		return "Not configured"
	}
	return "Configured"
}
