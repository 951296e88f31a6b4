package transform

import (
	"github.com/veridocs/veridocs/internal/transform/engine"
	"github.com/veridocs/veridocs/internal/transform/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transform.service",
	fx.Provide(
		engine.NewEngine,
		service.NewService,
	),
)
