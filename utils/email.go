// utils/email.go
package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService handles sending emails using SendGrid
type EmailService struct {
	apiKey string
	sender string
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		log.Println("SENDGRID_API_KEY is not set; emails will not be sent")
	}
	return &EmailService{
		apiKey: apiKey,
		sender: os.Getenv("EMAIL_SENDER"),
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if es.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}

	from := mail.NewEmail("Nevil Watch", es.sender)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, htmlContent, htmlContent)

	client := sendgrid.NewSendClient(es.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: status=%d body=%s", response.StatusCode, response.Body)
	}
	return nil
}

// SendWelcomeEmail sends a welcome email to a newly registered user
func (es *EmailService) SendWelcomeEmail(toEmail, name string) error {
	subject := "Welcome to Nevil Watch"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Welcome to Nevil Watch! Your account has been created successfully.<br><br>Happy shopping!",
		name,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
