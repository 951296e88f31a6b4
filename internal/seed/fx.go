package seed

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(func(db *gorm.DB) error {
		return EnsureDefaults(db)
	}),
)
