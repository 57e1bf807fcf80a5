package conversion

import (
	"go.uber.org/fx"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/repository"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/service"
)

var Module = fx.Module("conversion.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
