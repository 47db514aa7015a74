package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/clock"
	"github.com/tvnrapp/relationship-os/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const renewalWindow = 365 * 24 * time.Hour

type Service struct {
	log   *zap.Logger
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

type Params struct {
	fx.In

	Log   *zap.Logger
	DB    *gorm.DB
	Repo  domain.Repository
	GenID *snowflake.Node
	Clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("subscription.service"),
		db:    p.DB,
		repo:  p.Repo,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) ListByCustomer(ctx context.Context, customer snowflake.ID) ([]domain.Subscription, error) {
	return s.repo.ListByCustomer(ctx, s.db, customer)
}

func (s *Service) ListBySeller(ctx context.Context, seller snowflake.ID) ([]domain.Subscription, error) {
	return s.repo.ListBySeller(ctx, s.db, seller)
}

func (s *Service) Cancel(ctx context.Context, customer, id snowflake.ID) (*domain.Subscription, error) {
	now := s.clock.Now()
	return s.transition(ctx, customer, id,
		[]domain.Status{domain.StatusActive, domain.StatusPaused},
		map[string]any{
			"status":     domain.StatusCancelled,
			"auto_renew": false,
			"end_date":   now,
			"updated_at": now,
		})
}

func (s *Service) Pause(ctx context.Context, customer, id snowflake.ID) (*domain.Subscription, error) {
	return s.transition(ctx, customer, id,
		[]domain.Status{domain.StatusActive},
		map[string]any{
			"status":     domain.StatusPaused,
			"auto_renew": false,
			"updated_at": s.clock.Now(),
		})
}

func (s *Service) Resume(ctx context.Context, customer, id snowflake.ID) (*domain.Subscription, error) {
	return s.transition(ctx, customer, id,
		[]domain.Status{domain.StatusPaused},
		map[string]any{
			"status":     domain.StatusActive,
			"auto_renew": true,
			"updated_at": s.clock.Now(),
		})
}

// transition applies a guarded state change. Zero affected rows means either
// the subscription is not owned by the caller or it sits in the wrong state;
// a follow-up read tells the two apart.
func (s *Service) transition(ctx context.Context, customer, id snowflake.ID, from []domain.Status, fields map[string]any) (*domain.Subscription, error) {
	affected, err := s.repo.UpdateStateOwned(ctx, s.db, customer, id, from, fields)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, err := s.repo.FindOwned(ctx, s.db, customer, id); err != nil {
			if errors.Is(err, domain.ErrSubscriptionNotFound) {
				return nil, domain.ErrSubscriptionNotFound
			}
			return nil, err
		}
		return nil, domain.ErrInvalidState
	}
	return s.repo.FindOwned(ctx, s.db, customer, id)
}

func (s *Service) ProvisionFromQuote(ctx context.Context, tx *gorm.DB, input domain.ProvisionInput) (*domain.Subscription, error) {
	now := s.clock.Now()
	sub := &domain.Subscription{
		ID:          s.genID.Generate(),
		CustomerID:  input.CustomerID,
		QuoteID:     input.QuoteID,
		Name:        input.Name,
		Status:      domain.StatusActive,
		AutoRenew:   true,
		StartDate:   now,
		RenewalDate: now.Add(renewalWindow),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, tx, sub); err != nil {
		return nil, err
	}

	ents := make([]domain.Entitlement, 0, len(input.Entitlements))
	for _, in := range input.Entitlements {
		capacity := in.Capacity
		if capacity < 1 {
			capacity = 1
		}
		metadata := in.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		ents = append(ents, domain.Entitlement{
			ID:             s.genID.Generate(),
			SubscriptionID: sub.ID,
			Type:           in.Type,
			Name:           in.Name,
			Capacity:       capacity,
			Metadata:       datatypes.JSONMap(metadata),
			CreatedAt:      now,
		})
	}
	if err := s.repo.CreateEntitlements(ctx, tx, ents); err != nil {
		return nil, err
	}
	sub.Entitlements = ents

	s.log.Info("subscription provisioned",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("quote_id", input.QuoteID.String()),
		zap.Int("entitlements", len(ents)),
	)
	return sub, nil
}
