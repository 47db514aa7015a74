package email

import "context"

// Provider delivers transactional mail. The server stays functional without
// SMTP credentials; delivery then falls through to the no-op implementation.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
