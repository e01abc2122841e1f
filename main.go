package main

import (
	"canaletto/config"
	paymentController "canaletto/controllers/payment"
	"canaletto/database"
	"canaletto/payments"
	authRoutes "canaletto/routers/authRoutes"
	courseRoutes "canaletto/routers/courseRoutes"
	paymentRoutes "canaletto/routers/paymentRoutes"
	progressRoutes "canaletto/routers/progressRoutes"
	"canaletto/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/robfig/cron/v3"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	paymentController.UseGateway(payments.NewClient())

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.AppConfig.FrontendURL,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "Canaletto Art Platform API",
		})
	})

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	progressRoutes.SetupProgressRoutes(app)

	// Sweep expired password-reset tokens every 10 minutes
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("*/10 * * * *", utils.ResetTokens.Sweep); err != nil {
		log.Fatalf("Failed to schedule reset token sweep: %v", err)
	}
	sweeper.Start()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
