package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repuestos-py/marketplace/internal/models"
)

type sentEmail struct {
	to, subject, body string
}

func TestModerationEmails(t *testing.T) {
	cfg := testConfig()
	cfg.Frontend.BaseURL = "https://repuestos.example.com"
	service := NewNotificationService(cfg)

	var sent []sentEmail
	service.send = func(to, subject, body string) error {
		sent = append(sent, sentEmail{to, subject, body})
		return nil
	}

	seller := &models.User{ID: "seller-1", Email: "vendedor@example.com", DisplayName: "Carlos"}
	product := &models.Product{BaseModel: models.BaseModel{ID: "p1"}, Name: "Radiador", Price: 1500000}

	require.NoError(t, service.SendProductPublishedNotification(product, seller))

	reason := "Fotos <borrosas>"
	product.RejectionReason = &reason
	require.NoError(t, service.SendProductRejectedNotification(product, &models.User{Email: "otro@example.com"}))

	require.Len(t, sent, 2)
	assert.Equal(t, "vendedor@example.com", sent[0].to)
	assert.Contains(t, sent[0].subject, "Radiador")
	assert.Contains(t, sent[0].body, "Carlos")
	assert.Contains(t, sent[0].body, "Gs. 1.500.000")
	assert.Contains(t, sent[0].body, "https://repuestos.example.com/products/p1")

	assert.Contains(t, sent[1].body, "otro@example.com")
	assert.Contains(t, sent[1].body, "Fotos &lt;borrosas&gt;")
}
