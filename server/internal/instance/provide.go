package instance

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/trovedash/console/server/internal/trove"
)

func Provide(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Service, error) {
		client, err := do.Invoke[trove.Client](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get trove client: %w", err)
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		return NewService(client, logger), nil
	})
}
