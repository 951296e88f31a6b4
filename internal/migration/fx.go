package migration

import (
	activitydomain "github.com/veridocs/veridocs/internal/activity/domain"
	"github.com/veridocs/veridocs/internal/config"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	orderdomain "github.com/veridocs/veridocs/internal/order/domain"
	organizationdomain "github.com/veridocs/veridocs/internal/organization/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Local and test databases track the models directly.
			return conn.AutoMigrate(
				&organizationdomain.Organization{},
				&organizationdomain.Package{},
				&organizationdomain.Subscription{},
				&documentdomain.Document{},
				&documentdomain.QualityReview{},
				&activitydomain.DocumentActivity{},
				&orderdomain.Order{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
