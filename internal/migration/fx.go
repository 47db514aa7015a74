package migration

import (
	chatdomain "github.com/tvnrapp/relationship-os/internal/chat/domain"
	"github.com/tvnrapp/relationship-os/internal/config"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	invitedomain "github.com/tvnrapp/relationship-os/internal/invite/domain"
	quotedomain "github.com/tvnrapp/relationship-os/internal/quote/domain"
	subscriptiondomain "github.com/tvnrapp/relationship-os/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// Other dialects (sqlite in development) fall back to AutoMigrate.
		return conn.AutoMigrate(
			&identitydomain.User{},
			&invitedomain.Invite{},
			&quotedomain.Quote{},
			&quotedomain.QuoteLine{},
			&subscriptiondomain.Subscription{},
			&subscriptiondomain.Entitlement{},
			&chatdomain.ChatMessage{},
		)
	}),
)
