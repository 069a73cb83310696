package billing

import (
	"github.com/nalotext/smsmargin/internal/billing/service"
	smslogdomain "github.com/nalotext/smsmargin/internal/smslog/domain"
	"github.com/nalotext/smsmargin/pkg/repository"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("billing.service",
	fx.Provide(
		func(db *gorm.DB) repository.Repository[smslogdomain.MessageLog] {
			return repository.ProvideStore[smslogdomain.MessageLog](db)
		},
		service.New,
	),
)
