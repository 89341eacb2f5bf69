package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/trovedash/console/server/internal/api"
	"github.com/trovedash/console/server/internal/cluster"
	"github.com/trovedash/console/server/internal/config"
	"github.com/trovedash/console/server/internal/instance"
	"github.com/trovedash/console/server/internal/launch"
	"github.com/trovedash/console/server/internal/logging"
	"github.com/trovedash/console/server/internal/trove"
)

var (
	configPath string
	logger     zerolog.Logger
)

func newRootCmd(i *do.Injector) *cobra.Command {
	return &cobra.Command{
		Use:   "trove-console",
		Short: "Trove database cluster console API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// Source order determines precedence. The last source loaded will
			// override any previous values.
			var sources []*config.Source
			if configPath != "" {
				sources = append(sources, config.NewJsonFileSource(configPath))
			}
			sources = append(sources,
				config.NewEnvVarSource(),
				config.NewPFlagSource(cmd.Flags()),
			)

			config.Provide(i, sources...)
			logging.Provide(i)
			trove.Provide(i)
			launch.Provide(i)
			cluster.Provide(i)
			instance.Provide(i)
			api.Provide(i)

			var err error
			logger, err = do.Invoke[zerolog.Logger](i)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			return nil
		},
	}
}

func Execute() {
	i := do.New()
	rootCmd := newRootCmd(i)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config-path", "c", "", "Path to the config.json file for this service.")
	rootCmd.PersistentFlags().StringP("logging.level", "l", "", "The logging level, e.g. 'debug', 'info', 'error', etc.")
	rootCmd.PersistentFlags().BoolP("logging.pretty", "p", false, "Use pretty logging instead of JSON logging.")
	rootCmd.PersistentFlags().Int("http.port", 0, "Port for the HTTP API.")
	rootCmd.PersistentFlags().String("openstack.region", "", "OpenStack region of the Trove endpoint.")

	rootCmd.AddCommand(newRunCommand(i))
	rootCmd.AddCommand(newVersionCommand(i))

	if err := rootCmd.Execute(); err != nil {
		if logger.GetLevel() == zerolog.NoLevel {
			// NoLevel indicates that the logger is uninitialized. In this case
			// we'll use our fallback logger.
			logging.Fatal(err, "command failed")
		} else {
			logger.Fatal().
				Err(err).
				Msg("command failed")
		}
	}
}
