package influencer

import (
	"go.uber.org/fx"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/repository"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/service"
)

var Module = fx.Module("influencer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
