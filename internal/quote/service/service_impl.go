package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/clock"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	"github.com/tvnrapp/relationship-os/internal/quote/domain"
	subscriptiondomain "github.com/tvnrapp/relationship-os/internal/subscription/domain"
	"github.com/tvnrapp/relationship-os/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	numberSeqBase     = 1000
	numberAssignTries = 3
	defaultCurrency   = "USD"
)

type Service struct {
	log           *zap.Logger
	db            *gorm.DB
	repo          domain.Repository
	users         identitydomain.Repository
	subscriptions subscriptiondomain.Service
	genID         *snowflake.Node
	clock         clock.Clock
}

type Params struct {
	fx.In

	Log           *zap.Logger
	DB            *gorm.DB
	Repo          domain.Repository
	Users         identitydomain.Repository
	Subscriptions subscriptiondomain.Service
	GenID         *snowflake.Node
	Clock         clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("quote.service"),
		db:            p.DB,
		repo:          p.Repo,
		users:         p.Users,
		subscriptions: p.Subscriptions,
		genID:         p.GenID,
		clock:         p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, seller snowflake.ID, req domain.CreateRequest) (*domain.Quote, error) {
	if len(req.Lines) == 0 {
		return nil, domain.ErrNoLines
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil {
		return nil, domain.ErrInvalidCustomer
	}
	customer, err := s.users.FindByID(ctx, s.db, customerID)
	if err != nil {
		if errors.Is(err, identitydomain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCustomer
		}
		return nil, err
	}
	if customer.Role != identitydomain.RoleCustomer {
		return nil, domain.ErrInvalidCustomer
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	now := s.clock.Now()
	quote := &domain.Quote{
		ID:          s.genID.Generate(),
		CustomerID:  customerID,
		SellerID:    seller,
		Currency:    currency,
		Status:      domain.StatusSent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		quote.Notes = &notes
	}

	var total float64
	lines := make([]domain.QuoteLine, 0, len(req.Lines))
	for _, in := range req.Lines {
		quantity := in.Quantity
		if quantity < 1 {
			quantity = 1
		}
		line := domain.QuoteLine{
			ID:        s.genID.Generate(),
			QuoteID:   quote.ID,
			Type:      strings.TrimSpace(in.Type),
			Name:      strings.TrimSpace(in.Name),
			UnitPrice: in.UnitPrice,
			Quantity:  quantity,
			CreatedAt: now,
		}
		if cycle := strings.ToUpper(strings.TrimSpace(in.BillingCycle)); cycle != "" {
			line.BillingCycle = &cycle
		}
		if in.Metadata != nil {
			line.Metadata = datatypes.JSONMap(in.Metadata)
		} else {
			line.Metadata = datatypes.JSONMap{}
		}
		total += domain.LineTotal(line)
		lines = append(lines, line)
	}
	quote.TotalAmount = total
	quote.Lines = lines

	// Number assignment and insert run in one transaction; the unique index
	// on quote_number catches concurrent creates reading the same count, and
	// a fresh transaction retries with the next ordinal.
	year := now.Year()
	for attempt := 0; attempt < numberAssignTries; attempt++ {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			count, err := s.repo.CountByYear(ctx, tx, year)
			if err != nil {
				return err
			}
			quote.QuoteNumber = fmt.Sprintf("Q-%d-%d", year, numberSeqBase+count)
			return s.repo.Create(ctx, tx, quote)
		})
		if err == nil {
			break
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_number", quote.QuoteNumber),
		zap.Float64("total_amount", quote.TotalAmount),
	)
	return quote, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customer snowflake.ID) ([]domain.Quote, error) {
	return s.repo.ListByCustomer(ctx, s.db, customer)
}

func (s *Service) ListBySeller(ctx context.Context, seller snowflake.ID) ([]domain.Quote, error) {
	return s.repo.ListBySeller(ctx, s.db, seller)
}

func (s *Service) GetOwned(ctx context.Context, caller snowflake.ID, role identitydomain.Role, id snowflake.ID) (*domain.Quote, error) {
	quote, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if role != identitydomain.RoleAdmin && quote.CustomerID != caller && quote.SellerID != caller {
		return nil, domain.ErrQuoteNotFound
	}
	return quote, nil
}

func (s *Service) SetStatus(ctx context.Context, customer, id snowflake.ID, req domain.SetStatusRequest) (*domain.SetStatusResult, error) {
	status, ok := domain.ParseTerminalStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !ok {
		return nil, domain.ErrInvalidStatus
	}

	var (
		quote *domain.Quote
		sub   *subscriptiondomain.Subscription
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		fields := map[string]any{
			"status":     status,
			"updated_at": now,
		}
		if comment := strings.TrimSpace(req.Comment); comment != "" {
			fields["notes"] = comment
		}

		// Guarded transition: only the owning customer moves a SENT quote,
		// and a concurrent double-approve loses the race here.
		affected, err := s.repo.TransitionOwned(ctx, tx, customer, id, fields)
		if err != nil {
			return err
		}
		if affected == 0 {
			existing, err := s.repo.FindByID(ctx, tx, id)
			if err != nil || existing.CustomerID != customer {
				return domain.ErrQuoteNotFound
			}
			return domain.ErrQuoteResolved
		}

		quote, err = s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if status != domain.StatusApproved {
			return nil
		}

		input := subscriptiondomain.ProvisionInput{
			QuoteID:    quote.ID,
			CustomerID: quote.CustomerID,
			Name:       "Subscription from " + quote.QuoteNumber,
		}
		for _, line := range quote.Lines {
			if !line.Entitled() {
				continue
			}
			input.Entitlements = append(input.Entitlements, subscriptiondomain.EntitlementInput{
				Type:     line.Type,
				Name:     line.Name,
				Capacity: line.Quantity,
				Metadata: map[string]any(line.Metadata),
			})
		}
		sub, err = s.subscriptions.ProvisionFromQuote(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("quote status changed",
		zap.String("quote_id", quote.ID.String()),
		zap.String("status", string(quote.Status)),
	)
	return &domain.SetStatusResult{Quote: quote, Subscription: sub}, nil
}
