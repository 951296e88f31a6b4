package extraction

import (
	"github.com/veridocs/veridocs/internal/extraction/client"
	"github.com/veridocs/veridocs/internal/extraction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("extraction.service",
	fx.Provide(
		client.NewClient,
		service.NewService,
	),
)
