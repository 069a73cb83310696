package wallet

import (
	"github.com/nalotext/smsmargin/internal/wallet/repository"
	"github.com/nalotext/smsmargin/internal/wallet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
