// Package main is the entry point for the API server.
// It loads configuration, connects PostgreSQL and Redis, wires the
// notification publisher, and starts the fiber app.
package main

import (
	"log"
	"time"

	"tavola/internal/config"
	"tavola/internal/repositories"
	"tavola/internal/routes"
	"tavola/internal/services/notification"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := repositories.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Failed to close database connection: %v", err)
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("Failed to close Redis connection: %v", err)
			}
		}
	}()

	// Notifications are best-effort: the API serves requests even when
	// the queue is down, it just stops enqueueing.
	var notifier notification.Publisher
	if amqpURL := config.GetEnv("RABBITMQ_URL", ""); amqpURL != "" {
		queue := config.GetEnv("NOTIFICATION_QUEUE", "notifications")
		notifier, err = notification.Dial(amqpURL, queue)
		if err != nil {
			log.Printf("Notification queue unavailable: %v", err)
			notifier = nil
		} else {
			defer notifier.Close()
			log.Printf("Connected to notification queue %s", queue)
		}
	} else {
		log.Println("RABBITMQ_URL not set, notifications disabled")
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGIN", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	for _, path := range []string{"/api/openbanking/create-payment", "/api/contact", "/api/admin/login"} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        10,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests. Please try again later.",
				})
			},
		}))
	}

	routes.SetupRoutes(app, repositories.DB, notifier)

	log.Fatal(app.Listen(":" + config.GetEnv("PORT", "3000")))
}
