package utils

import (
	"canaletto/config"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

func sendEmail(toEmail, toName, subject, plain, html string) error {
	if config.AppConfig.SendgridApiKey == "" {
		log.Printf("SENDGRID_API_KEY not set, skipping email %q to %s", subject, toEmail)
		return nil
	}

	from := mail.NewEmail("Canaletto", config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridApiKey)
	response, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", toEmail, err)
		return err
	}
	if response.StatusCode >= 400 {
		log.Printf("Email to %s rejected with status %d: %s", toEmail, response.StatusCode, response.Body)
		return fmt.Errorf("email rejected with status %d", response.StatusCode)
	}

	return nil
}

// SendPasswordResetEmail sends the reset link for a requested recovery
func SendPasswordResetEmail(email, name, resetLink string) error {
	subject := "Reset your Canaletto password"
	plain := fmt.Sprintf("Hi %s,\n\nUse the link below to reset your password. It expires in one hour.\n\n%s\n", name, resetLink)
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 500px; margin: auto;">
			<h2>Reset your password</h2>
			<p>Hi %s,</p>
			<p>Use the button below to reset your password. The link expires in one hour.</p>
			<p><a href="%s" style="background-color: #1a73e8; color: #ffffff; padding: 10px 20px; border-radius: 4px; text-decoration: none;">Reset Password</a></p>
			<p>If you did not request this, you can ignore this email.</p>
		</div>`, name, resetLink)

	return sendEmail(email, name, subject, plain, html)
}

// SendEnrollmentConfirmation sends the receipt after a successful enrollment
func SendEnrollmentConfirmation(email, name, courseTitle string) error {
	subject := "You're enrolled: " + courseTitle
	plain := fmt.Sprintf("Hi %s,\n\nYour payment was received and you are now enrolled in %q. Happy learning!\n", name, courseTitle)
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 500px; margin: auto;">
			<h2>Enrollment confirmed</h2>
			<p>Hi %s,</p>
			<p>Your payment was received and you are now enrolled in <strong>%s</strong>.</p>
			<p><a href="%s/dashboard">Go to your dashboard</a> to start learning.</p>
		</div>`, name, courseTitle, config.AppConfig.FrontendURL)

	return sendEmail(email, name, subject, plain, html)
}
