package migration

import (
	coindomain "github.com/oguilhermeleite/Chico-Afiliado/internal/coin/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/config"
	conversiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	influencerdomain "github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// MySQL and sqlite rely on the model definitions instead of
			// the versioned Postgres migrations.
			if err := conn.AutoMigrate(
				&influencerdomain.Influencer{},
				&conversiondomain.Conversion{},
				&coindomain.CoinMovement{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoInfluencer(conn)
		}
		return nil
	}),
)
