package authRoutes

import (
	controllers "canaletto/controllers/auth"
	"canaletto/middleware"
	validators "canaletto/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes sets up registration, login and account routes
func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/api/auth")

	authGroup.Post("/register", validators.Register(), controllers.Register)
	authGroup.Post("/login", validators.Login(), controllers.Login)
	authGroup.Post("/forgot-password", validators.ForgotPassword(), controllers.ForgotPassword)
	authGroup.Post("/reset-password", validators.ResetPassword(), controllers.ResetPassword)

	authGroup.Get("/me", middleware.JWTMiddleware, controllers.GetCurrentUser)
	authGroup.Put("/profile", middleware.JWTMiddleware, validators.UpdateProfile(), controllers.UpdateProfile)
}
