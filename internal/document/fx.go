package document

import (
	"github.com/veridocs/veridocs/internal/document/repository"
	"github.com/veridocs/veridocs/internal/document/service"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
