package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var inviteTemplate = template.Must(template.ParseFS(templateFS, "templates/invite.html"))

// InviteData fills the invite email template.
type InviteData struct {
	SellerName string
	AcceptURL  string
	ExpiresAt  string
}

// RenderInvite renders the invite email body and subject.
func RenderInvite(data InviteData) (subject string, htmlBody string, err error) {
	var body bytes.Buffer
	if err := inviteTemplate.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to render invite template: %w", err)
	}
	return fmt.Sprintf("You're invited to work with %s", data.SellerName), body.String(), nil
}
