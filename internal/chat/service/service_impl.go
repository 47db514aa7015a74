package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/chat/domain"
	"github.com/tvnrapp/relationship-os/internal/clock"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	"github.com/tvnrapp/relationship-os/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxMessageLength = 4000
	defaultPageSize  = 50
)

type Service struct {
	log   *zap.Logger
	db    *gorm.DB
	repo  domain.Repository
	users identitydomain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

type Params struct {
	fx.In

	Log   *zap.Logger
	DB    *gorm.DB
	Repo  domain.Repository
	Users identitydomain.Repository
	GenID *snowflake.Node
	Clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("chat.service"),
		db:    p.DB,
		repo:  p.Repo,
		users: p.Users,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) List(ctx context.Context, caller *identitydomain.User, other snowflake.ID, page pagination.Pagination) (*domain.Page, error) {
	customer, seller, err := s.resolvePair(ctx, caller, other)
	if err != nil {
		return nil, err
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = defaultPageSize
	}

	var after *pagination.Cursor
	if strings.TrimSpace(page.PageToken) != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil {
			after = cursor
		}
	}

	messages, err := s.repo.ListPair(ctx, s.db, customer, seller, after, limit)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	pageInfo := &pagination.PageInfo{HasMore: hasMore}
	if hasMore && len(messages) > 0 {
		last := messages[len(messages)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"),
		})
		if err == nil {
			pageInfo.NextPageToken = token
		}
	}

	return &domain.Page{Messages: messages, PageInfo: pageInfo}, nil
}

func (s *Service) Send(ctx context.Context, caller *identitydomain.User, other snowflake.ID, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len(content) > maxMessageLength {
		return nil, domain.ErrMessageTooLong
	}

	customer, seller, err := s.resolvePair(ctx, caller, other)
	if err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		ID:         s.genID.Generate(),
		SenderID:   caller.ID,
		CustomerID: customer,
		SellerID:   seller,
		Content:    content,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.Create(ctx, s.db, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// resolvePair pins the conversation columns: the customer side always lands
// in customer_id no matter who is sending.
func (s *Service) resolvePair(ctx context.Context, caller *identitydomain.User, other snowflake.ID) (customer, seller snowflake.ID, err error) {
	counterpart, err := s.users.FindByID(ctx, s.db, other)
	if err != nil {
		if errors.Is(err, identitydomain.ErrUserNotFound) {
			return 0, 0, domain.ErrCounterpartNotFound
		}
		return 0, 0, err
	}

	if caller.Role == identitydomain.RoleCustomer {
		return caller.ID, counterpart.ID, nil
	}
	if counterpart.Role == identitydomain.RoleCustomer {
		return counterpart.ID, caller.ID, nil
	}
	return 0, 0, domain.ErrCounterpartNotFound
}
