package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tvnrapp/relationship-os/internal/config"
)

func TestRenderInvite(t *testing.T) {
	subject, body, err := RenderInvite(InviteData{
		SellerName: "Acme Corp",
		AcceptURL:  "https://app.example.com/invite/accept?token=abc123",
		ExpiresAt:  "March 8, 2026",
	})
	require.NoError(t, err)

	assert.Equal(t, "You're invited to work with Acme Corp", subject)
	assert.Contains(t, body, "https://app.example.com/invite/accept?token=abc123")
	assert.Contains(t, body, "Acme Corp")
	assert.Contains(t, body, "March 8, 2026")
}

func TestRenderInviteEscapesHTML(t *testing.T) {
	_, body, err := RenderInvite(InviteData{
		SellerName: "<script>alert(1)</script>",
		AcceptURL:  "https://app.example.com/invite/accept?token=abc",
		ExpiresAt:  "March 8, 2026",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestNewFromConfig(t *testing.T) {
	provider := NewFromConfig(config.Config{})
	assert.IsType(t, &NoOpProvider{}, provider)

	provider = NewFromConfig(config.Config{Email: config.EmailConfig{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		SMTPFrom: "no-reply@example.com",
	}})
	assert.IsType(t, &SMTPProvider{}, provider)
}
