package insights

import (
	"github.com/nalotext/smsmargin/internal/insights/service"
	"go.uber.org/fx"
)

var Module = fx.Module("insights.service",
	fx.Provide(service.New),
)
