package paymentRoutes

import (
	controllers "canaletto/controllers/payment"
	"canaletto/middleware"
	validators "canaletto/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupPaymentRoutes sets up checkout, webhook and enrollment routes.
// The webhook route carries no auth middleware and no body parsing:
// the handler verifies the gateway signature over the raw body itself.
func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/api/payment")

	paymentGroup.Post("/webhook", controllers.HandleWebhook)

	paymentGroup.Post("/create-checkout-session", middleware.JWTMiddleware, validators.CreateCheckoutSession(), controllers.CreateCheckoutSession)
	paymentGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollments)
	paymentGroup.Get("/enrollment/:courseId", middleware.JWTMiddleware, validators.CourseIDParam(), controllers.CheckEnrollment)
}
