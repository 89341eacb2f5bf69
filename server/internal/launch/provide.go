package launch

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/trovedash/console/server/internal/config"
	"github.com/trovedash/console/server/internal/datastore"
	"github.com/trovedash/console/server/internal/trove"
)

// Factory creates a fresh Builder for every request.
type Factory struct {
	client trove.Client
	policy *datastore.Policy
	logger zerolog.Logger
}

func NewFactory(client trove.Client, policy *datastore.Policy, logger zerolog.Logger) *Factory {
	return &Factory{
		client: client,
		policy: policy,
		logger: logger,
	}
}

func (f *Factory) New() *Builder {
	return NewBuilder(f.client, f.policy, f.logger)
}

func Provide(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Factory, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		client, err := do.Invoke[trove.Client](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get trove client: %w", err)
		}
		policy := datastore.NewPolicy(cfg.ClusterDatastores...)
		logger.Info().
			Strs("cluster_datastores", policy.Tokens()).
			Msg("loaded cluster datastore policy")
		return NewFactory(client, policy, logger), nil
	})
}
