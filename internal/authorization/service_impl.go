package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectQuote        = "quote"
	ObjectInvite       = "invite"
	ObjectSubscription = "subscription"
	ObjectChat         = "chat"
	ObjectAssist       = "assist"
	ObjectCheckout     = "checkout"
	ObjectDashboard    = "dashboard"
)

const (
	ActionQuoteCreate        = "quote.create"
	ActionQuoteView          = "quote.view"
	ActionQuoteDecide        = "quote.decide"
	ActionInviteManage       = "invite.manage"
	ActionSubscriptionManage = "subscription.manage"
	ActionChatUse            = "chat.use"
	ActionAssistUse          = "assist.use"
	ActionCheckoutCreate     = "checkout.create"
	ActionDashboardCustomer  = "dashboard.customer"
	ActionDashboardSeller    = "dashboard.seller"
)

var (
	ErrInvalidObject = errors.New("invalid authorization object")
	ErrInvalidAction = errors.New("invalid authorization action")
	ErrForbidden     = errors.New("forbidden")
)

// Service answers capability checks for a role.
type Service interface {
	Authorize(ctx context.Context, role identitydomain.Role, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role identitydomain.Role, object, action string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := roleSubject(role)
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("capability denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func roleSubject(role identitydomain.Role) string {
	return fmt.Sprintf("role:%s", strings.ToLower(string(role)))
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Customer capabilities
		{"role:customer", ObjectQuote, ActionQuoteView},
		{"role:customer", ObjectQuote, ActionQuoteDecide},
		{"role:customer", ObjectSubscription, ActionSubscriptionManage},
		{"role:customer", ObjectChat, ActionChatUse},
		{"role:customer", ObjectAssist, ActionAssistUse},
		{"role:customer", ObjectCheckout, ActionCheckoutCreate},
		{"role:customer", ObjectDashboard, ActionDashboardCustomer},

		// Seller capabilities
		{"role:seller", ObjectQuote, ActionQuoteCreate},
		{"role:seller", ObjectQuote, ActionQuoteView},
		{"role:seller", ObjectInvite, ActionInviteManage},
		{"role:seller", ObjectChat, ActionChatUse},
		{"role:seller", ObjectAssist, ActionAssistUse},
		{"role:seller", ObjectDashboard, ActionDashboardSeller},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	// Admins inherit everything a seller can do.
	if _, err := enforcer.AddGroupingPolicy("role:admin", "role:seller"); err != nil {
		return err
	}
	return nil
}
