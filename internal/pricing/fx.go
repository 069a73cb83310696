package pricing

import (
	"github.com/nalotext/smsmargin/internal/config"
	"github.com/nalotext/smsmargin/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	fx.Provide(
		fx.Annotate(
			func(cfg config.Config) float64 { return cfg.DefaultBaseCost },
			fx.ResultTags(`name:"pricing.default_base_cost"`),
		),
		service.NewTierMarkupPolicy,
		service.New,
	),
)
