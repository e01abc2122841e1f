package authController

import (
	"canaletto/config"
	"canaletto/database"
	"canaletto/middleware"
	"canaletto/models"
	"canaletto/utils"
	"fmt"
	"log"

	authValidator "canaletto/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// ForgotPassword issues a reset token and emails the reset link. The
// response never reveals whether the email is registered.
func ForgotPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedForgotPassword").(*authValidator.ForgotPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("email = ?", reqData.Email).First(&user).Error; err == nil {
		token := utils.ResetTokens.Issue(user.ID)
		resetLink := fmt.Sprintf("%s/auth/reset-password?token=%s", config.AppConfig.FrontendURL, token)

		go func(email, name, link string) {
			if err := utils.SendPasswordResetEmail(email, name, link); err != nil {
				log.Printf("Error sending password reset email to %s: %v", email, err)
			}
		}(user.Email, user.FirstName, resetLink)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true,
		"If an account exists with that email, a password reset link has been sent.", nil)
}

func ResetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResetPassword").(*authValidator.ResetPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	userID, ok := utils.ResetTokens.Verify(reqData.Token)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid or expired reset token!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	if err := database.Database.Db.Model(&models.User{}).Where("id = ?", userID).
		Update("password", string(hashedPassword)).Error; err != nil {
		log.Printf("Error updating password for user %d: %v", userID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reset password!", nil)
	}

	utils.ResetTokens.Invalidate(reqData.Token)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password has been reset successfully!", nil)
}
