package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/trovedash/console/server/internal/api"
	"github.com/trovedash/console/server/internal/cluster"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger zerolog.Logger
	api    *api.Server
	grow   *cluster.GrowManager
}

func NewApp(i *do.Injector) (*App, error) {
	logger, err := do.Invoke[zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get logger: %w", err)
	}
	server, err := do.Invoke[*api.Server](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get api server: %w", err)
	}
	grow, err := do.Invoke[*cluster.GrowManager](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get grow manager: %w", err)
	}

	return &App{
		logger: logger,
		api:    server,
		grow:   grow,
	}, nil
}

// Run serves requests until ctx is cancelled or the API server fails.
func (a *App) Run(ctx context.Context) error {
	a.grow.Start()
	a.api.Start()

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("got shutdown signal")
		return a.Shutdown(nil)
	case err := <-a.api.Error():
		return a.Shutdown(err)
	}
}

func (a *App) Shutdown(reason error) error {
	a.logger.Info().Msg("attempting to gracefully shut down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := []error{reason}
	if err := a.api.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop api server: %w", err))
	}
	a.grow.Stop()

	return errors.Join(errs...)
}
