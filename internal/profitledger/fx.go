package profitledger

import (
	ledgerdomain "github.com/nalotext/smsmargin/internal/profitledger/domain"
	"github.com/nalotext/smsmargin/internal/profitledger/service"
	"github.com/nalotext/smsmargin/pkg/repository"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("profitledger.service",
	fx.Provide(
		func(db *gorm.DB) repository.Repository[ledgerdomain.ProfitTransaction] {
			return repository.ProvideStore[ledgerdomain.ProfitTransaction](db)
		},
		service.New,
	),
)
