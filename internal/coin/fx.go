package coin

import (
	"go.uber.org/fx"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/coin/repository"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/coin/service"
)

var Module = fx.Module("coin.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
