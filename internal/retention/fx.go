package retention

import (
	"go.uber.org/fx"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/retention/service"
)

var Module = fx.Module("retention.service",
	fx.Provide(service.NewService),
)
