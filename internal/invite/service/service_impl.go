package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/clock"
	"github.com/tvnrapp/relationship-os/internal/config"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	"github.com/tvnrapp/relationship-os/internal/identity/token"
	"github.com/tvnrapp/relationship-os/internal/invite/domain"
	"github.com/tvnrapp/relationship-os/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	inviteTokenBytes = 32
	inviteTTL        = 7 * 24 * time.Hour
)

type Service struct {
	log    *zap.Logger
	db     *gorm.DB
	repo   domain.Repository
	users  identitydomain.Repository
	tokens *token.Manager
	genID  *snowflake.Node
	clock  clock.Clock
	mailer email.Provider

	frontendBaseURL string
}

type Params struct {
	fx.In

	Log    *zap.Logger
	DB     *gorm.DB
	Config config.Config
	Repo   domain.Repository
	Users  identitydomain.Repository
	Tokens *token.Manager
	GenID  *snowflake.Node
	Clock  clock.Clock
	Mailer email.Provider `optional:"true"`
}

func New(p Params) domain.Service {
	return &Service{
		log:             p.Log.Named("invite.service"),
		db:              p.DB,
		repo:            p.Repo,
		users:           p.Users,
		tokens:          p.Tokens,
		genID:           p.GenID,
		clock:           p.Clock,
		mailer:          p.Mailer,
		frontendBaseURL: p.Config.FrontendBaseURL,
	}
}

func (s *Service) Create(ctx context.Context, issuer snowflake.ID, req domain.CreateRequest) (*domain.CreateResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, identitydomain.ErrInvalidEmail
	}
	role, ok := identitydomain.ParseRole(req.Role)
	if !ok {
		return nil, identitydomain.ErrInvalidRole
	}

	rawToken, err := newInviteToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	invite := &domain.Invite{
		ID:        s.genID.Generate(),
		Email:     email,
		Role:      role,
		TokenHash: hashToken(rawToken),
		ExpiresAt: now.Add(inviteTTL),
		CreatedBy: issuer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if company := strings.TrimSpace(req.CompanyName); company != "" {
		invite.CompanyName = &company
	}

	// Superseding old live tokens and inserting the new one is one unit so
	// there is never more than one live token per (issuer, email).
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeletePending(ctx, tx, issuer, email, now); err != nil {
			return err
		}
		return s.repo.Create(ctx, tx, invite)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invite created",
		zap.String("invite_id", invite.ID.String()),
		zap.String("issuer_id", issuer.String()),
		zap.String("role", string(role)),
	)

	result := &domain.CreateResult{
		Invite:    invite,
		RawToken:  rawToken,
		AcceptURL: s.frontendBaseURL + "/invite/accept?token=" + rawToken,
	}
	s.deliverInvite(ctx, issuer, invite, result.AcceptURL)
	return result, nil
}

// deliverInvite sends the invite email. Delivery is best effort; the raw
// token is still returned to the issuer, so a mail failure never fails the
// create call.
func (s *Service) deliverInvite(ctx context.Context, issuer snowflake.ID, invite *domain.Invite, acceptURL string) {
	if s.mailer == nil {
		return
	}

	sellerName := "Your partner"
	if seller, err := s.users.FindByID(ctx, s.db, issuer); err == nil {
		sellerName = seller.Name
	}

	subject, body, err := email.RenderInvite(email.InviteData{
		SellerName: sellerName,
		AcceptURL:  acceptURL,
		ExpiresAt:  invite.ExpiresAt.Format("January 2, 2006"),
	})
	if err != nil {
		s.log.Warn("failed to render invite email", zap.Error(err))
		return
	}
	if err := s.mailer.Send(ctx, []string{invite.Email}, subject, body); err != nil {
		s.log.Warn("failed to send invite email",
			zap.String("invite_id", invite.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) Validate(ctx context.Context, rawToken string) (*domain.InviteInfo, error) {
	invite, err := s.findValid(ctx, s.db, rawToken)
	if err != nil {
		return nil, err
	}

	info := &domain.InviteInfo{
		Email:     invite.Email,
		Role:      string(invite.Role),
		ExpiresAt: invite.ExpiresAt,
	}
	if invite.CompanyName != nil {
		info.CompanyName = *invite.CompanyName
	}
	return info, nil
}

func (s *Service) Accept(ctx context.Context, req domain.AcceptRequest) (*domain.AcceptResult, error) {
	var user *identitydomain.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		invite, err := s.findValid(ctx, tx, req.Token)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := s.repo.MarkAccepted(ctx, tx, invite.ID, now); err != nil {
			return err
		}

		user, err = s.applyInvite(ctx, tx, invite, req, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	signed, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	s.log.Info("invite accepted", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return &domain.AcceptResult{Token: signed, User: user}, nil
}

// applyInvite resolves the account behind the invite email. An existing
// account is updated in place; the local password is cleared either way since
// invited accounts continue through SSO.
func (s *Service) applyInvite(ctx context.Context, tx *gorm.DB, invite *domain.Invite, req domain.AcceptRequest, now time.Time) (*identitydomain.User, error) {
	existing, err := s.users.FindByEmail(ctx, tx, invite.Email)
	if err != nil && !errors.Is(err, identitydomain.ErrUserNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	externalSub := strings.TrimSpace(req.ExternalSub)

	if existing != nil {
		fields := map[string]any{
			"role":          invite.Role,
			"password_hash": gorm.Expr("NULL"),
			"updated_at":    now,
		}
		if invite.CompanyName != nil {
			fields["company_name"] = *invite.CompanyName
		}
		if name != "" {
			fields["name"] = name
		}
		if externalSub != "" {
			fields["sso_sub"] = externalSub
		}
		if err := s.users.UpdateFields(ctx, tx, existing.ID, fields); err != nil {
			return nil, err
		}
		return s.users.FindByID(ctx, tx, existing.ID)
	}

	if name == "" {
		name = defaultName(invite.Email)
	}
	user := &identitydomain.User{
		ID:          s.genID.Generate(),
		Email:       invite.Email,
		Name:        name,
		Role:        invite.Role,
		CompanyName: invite.CompanyName,
	}
	if externalSub != "" {
		user.SSOSub = &externalSub
	}
	if err := s.users.Create(ctx, tx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ListPending(ctx context.Context, issuer snowflake.ID) ([]domain.Invite, error) {
	return s.repo.ListPending(ctx, s.db, issuer, s.clock.Now())
}

func (s *Service) findValid(ctx context.Context, db *gorm.DB, rawToken string) (*domain.Invite, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, domain.ErrInviteNotFound
	}

	invite, err := s.repo.FindByTokenHash(ctx, db, hashToken(rawToken))
	if err != nil {
		return nil, err
	}
	if invite.AcceptedAt != nil {
		return nil, domain.ErrInviteAlreadyUsed
	}
	if !invite.ExpiresAt.After(s.clock.Now()) {
		return nil, domain.ErrInviteExpired
	}
	return invite, nil
}

func newInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

func defaultName(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}
