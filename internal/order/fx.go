package order

import (
	"github.com/veridocs/veridocs/internal/order/repository"
	"github.com/veridocs/veridocs/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
