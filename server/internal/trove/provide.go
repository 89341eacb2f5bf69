package trove

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/trovedash/console/server/internal/config"
)

func Provide(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (Client, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		client, err := Connect(cfg.OpenStack, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to openstack: %w", err)
		}
		return client, nil
	})
}
