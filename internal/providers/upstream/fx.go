package upstream

import (
	"github.com/nalotext/smsmargin/internal/config"
	walletdomain "github.com/nalotext/smsmargin/internal/wallet/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.upstream",
	fx.Provide(
		NewFromConfig,
		func(p Provider) walletdomain.UpstreamBalanceChecker { return p },
	),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.UpstreamAPIKey == "" {
		return &NoOpProvider{}
	}
	return NewArkesel(Config{
		BaseURL: cfg.UpstreamAPIURL,
		APIKey:  cfg.UpstreamAPIKey,
	})
}
