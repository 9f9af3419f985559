// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/repuestos-py/marketplace/internal/config"
	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/utils"
)

type NotificationService struct {
	config *config.Config
	send   func(to, subject, body string) error
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	s := &NotificationService{config: config}
	s.send = s.sendEmail
	return s
}

// Moderation notifications
func (s *NotificationService) SendProductPublishedNotification(product *models.Product, seller *models.User) error {
	data := map[string]interface{}{
		"SellerName":  sellerName(seller),
		"ProductName": product.Name,
		"Price":       utils.FormatCurrency(product.Price),
		"ProductURL":  fmt.Sprintf("%s/products/%s", s.config.Frontend.BaseURL, product.ID),
	}

	return s.notify(seller.Email, "product_published", data)
}

func (s *NotificationService) SendProductRejectedNotification(product *models.Product, seller *models.User) error {
	reason := ""
	if product.RejectionReason != nil {
		reason = *product.RejectionReason
	}

	data := map[string]interface{}{
		"SellerName":  sellerName(seller),
		"ProductName": product.Name,
		"Reason":      reason,
	}

	return s.notify(seller.Email, "product_rejected", data)
}

func (s *NotificationService) notify(to, templateType string, data map[string]interface{}) error {
	tmpl := s.getEmailTemplate(templateType)
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	subject, err := s.renderTemplate(tmpl.Subject, data)
	if err != nil {
		return fmt.Errorf("failed to render email subject: %w", err)
	}

	return s.send(to, subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email not configured, skipping notification")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"product_published": {
			Subject: "Tu publicación fue aprobada - {{.ProductName}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>¡Hola {{.SellerName}}!</h2>
	<p>Tu producto "{{.ProductName}}" ({{.Price}}) ya está publicado en el catálogo.</p>
	<a href="{{.ProductURL}}">Ver publicación</a>
	<p>Saludos,<br>Equipo Repuestos</p>
</body>
</html>`,
		},
		"product_rejected": {
			Subject: "Tu publicación fue rechazada - {{.ProductName}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hola {{.SellerName}},</h2>
	<p>Tu producto "{{.ProductName}}" no fue aprobado.</p>
	<p>Motivo: {{.Reason}}</p>
	<p>Podés corregirlo y volver a publicarlo.</p>
	<p>Saludos,<br>Equipo Repuestos</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notificación",
		Body:    "<p>{{.Message}}</p>",
	}
}

func sellerName(u *models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
