package analytics

import (
	"go.uber.org/fx"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/analytics/service"
)

var Module = fx.Module("analytics.service",
	fx.Provide(service.NewService),
)
