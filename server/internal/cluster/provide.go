package cluster

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/trovedash/console/server/internal/config"
	"github.com/trovedash/console/server/internal/trove"
)

func Provide(i *do.Injector) {
	provideGrowManager(i)
	provideService(i)
}

func provideGrowManager(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*GrowManager, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		return NewGrowManager(time.Duration(cfg.GrowSessionTTLSeconds) * time.Second), nil
	})
}

func provideService(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Service, error) {
		client, err := do.Invoke[trove.Client](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get trove client: %w", err)
		}
		grow, err := do.Invoke[*GrowManager](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get grow manager: %w", err)
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		return NewService(client, grow, logger), nil
	})
}
