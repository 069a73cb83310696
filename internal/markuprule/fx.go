package markuprule

import (
	"github.com/nalotext/smsmargin/internal/markuprule/repository"
	"github.com/nalotext/smsmargin/internal/markuprule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("markuprule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
