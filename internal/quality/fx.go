package quality

import (
	"go.uber.org/fx"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/quality/service"
)

var Module = fx.Module("quality.service",
	fx.Provide(service.New),
)
