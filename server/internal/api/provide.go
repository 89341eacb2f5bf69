package api

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/trovedash/console/server/internal/cluster"
	"github.com/trovedash/console/server/internal/config"
	"github.com/trovedash/console/server/internal/instance"
	"github.com/trovedash/console/server/internal/launch"
)

func Provide(i *do.Injector) {
	provideService(i)
	provideServer(i)
}

func provideServer(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Server, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		svc, err := do.Invoke[*Service](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get api service: %w", err)
		}
		return NewServer(cfg, logger, svc), nil
	})
}

func provideService(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Service, error) {
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		factory, err := do.Invoke[*launch.Factory](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get launch factory: %w", err)
		}
		clusterSvc, err := do.Invoke[*cluster.Service](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get cluster service: %w", err)
		}
		instanceSvc, err := do.Invoke[*instance.Service](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get instance service: %w", err)
		}
		return NewService(factory, clusterSvc, instanceSvc, logger), nil
	})
}
