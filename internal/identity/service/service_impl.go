package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/identity/domain"
	"github.com/tvnrapp/relationship-os/internal/identity/password"
	"github.com/tvnrapp/relationship-os/internal/identity/sso"
	"github.com/tvnrapp/relationship-os/internal/identity/token"
	"github.com/tvnrapp/relationship-os/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type Service struct {
	log      *zap.Logger
	db       *gorm.DB
	repo     domain.Repository
	genID    *snowflake.Node
	tokens   *token.Manager
	verifier *sso.Verifier
}

type Params struct {
	fx.In

	Log      *zap.Logger
	DB       *gorm.DB
	Repo     domain.Repository
	GenID    *snowflake.Node
	Tokens   *token.Manager
	Verifier *sso.Verifier
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("identity.service"),
		db:       p.DB,
		repo:     p.Repo,
		genID:    p.GenID,
		tokens:   p.Tokens,
		verifier: p.Verifier,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	role := domain.RoleCustomer
	if strings.TrimSpace(req.Role) != "" {
		parsed, ok := domain.ParseRole(req.Role)
		if !ok || parsed == domain.RoleAdmin {
			return nil, domain.ErrInvalidRole
		}
		role = parsed
	}

	if _, err := s.repo.FindByEmail(ctx, s.db, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultName(email)
	}
	user := &domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		Name:         name,
		PasswordHash: &hashed,
		Role:         role,
	}
	if company := strings.TrimSpace(req.CompanyName); company != "" {
		user.CompanyName = &company
	}
	if err := s.repo.Create(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return s.authResult(user)
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil || !password.Verify(req.Password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.authResult(user)
}

func (s *Service) SSOExchange(ctx context.Context, req domain.SSOExchangeRequest) (*domain.AuthResult, error) {
	claims, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveIdentity(ctx, claims)
	if err != nil {
		return nil, err
	}
	return s.authResult(user)
}

// resolveIdentity matches an IdP subject to an account: first by subject,
// then by verified email, otherwise a fresh customer account is provisioned.
func (s *Service) resolveIdentity(ctx context.Context, claims *sso.IdentityClaims) (*domain.User, error) {
	user, err := s.repo.FindBySSOSub(ctx, s.db, claims.Sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if email := strings.ToLower(strings.TrimSpace(claims.Email)); email != "" {
		user, err = s.repo.FindByEmail(ctx, s.db, email)
		if err == nil {
			fields := map[string]any{
				"sso_sub":    claims.Sub,
				"updated_at": time.Now().UTC(),
			}
			if err := s.repo.UpdateFields(ctx, s.db, user.ID, fields); err != nil {
				return nil, err
			}
			user.SSOSub = &claims.Sub
			s.log.Info("sso identity linked", zap.String("user_id", user.ID.String()))
			return user, nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		email = domain.PlaceholderEmail(claims.Sub)
	}
	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = defaultName(email)
	}
	sub := claims.Sub
	user = &domain.User{
		ID:     s.genID.Generate(),
		Email:  email,
		Name:   name,
		Role:   domain.RoleCustomer,
		SSOSub: &sub,
	}
	if err := s.repo.Create(ctx, s.db, user); err != nil {
		// A concurrent exchange for the same subject may have won the insert.
		if db.IsDuplicateKeyErr(err) {
			return s.repo.FindBySSOSub(ctx, s.db, claims.Sub)
		}
		return nil, err
	}
	s.log.Info("sso identity provisioned", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *Service) CurrentUser(ctx context.Context, userID snowflake.ID) (*domain.User, error) {
	return s.repo.FindByID(ctx, s.db, userID)
}

func (s *Service) authResult(user *domain.User) (*domain.AuthResult, error) {
	signed, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{Token: signed, User: user}, nil
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
