package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/framerelay/internal/infrastructure/config"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/server"
)

// overrides holds flag values that take precedence over the environment
type overrides struct {
	port      string
	lookupURL string
	targetURL string
	defaults  string
	logLevel  string
	dev       bool
}

var (
	flags  overrides
	cfg    *config.Config
	logger *logging.Logger
)

// Execute runs the relayd command tree
func Execute() error {
	root := &cobra.Command{
		Use:           "relayd",
		Short:         "Cross-origin request relay bridge",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			flags.apply(cmd, loaded)
			if err := loaded.Validate(); err != nil {
				return err
			}
			l, err := server.NewLogger(loaded.Logging)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			cfg, logger = loaded, l
			return nil
		},
		RunE: runServe,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.port, "port", "", "HTTP port (env PORT)")
	pf.StringVar(&flags.lookupURL, "lookup-url", "", "target URL lookup service (env LOOKUP_URL)")
	pf.StringVar(&flags.targetURL, "target-url", "", "fixed frame target URL, skips lookup (env TARGET_URL)")
	pf.StringVar(&flags.defaults, "defaults", "", "YAML request defaults file (env RELAY_DEFAULTS_FILE)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	pf.BoolVar(&flags.dev, "dev", false, "development logging (env LOG_DEV)")

	root.AddCommand(serveCmd(), requestCmd())
	return root.Execute()
}

// apply copies every flag the user set onto c
func (o overrides) apply(cmd *cobra.Command, c *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("port") {
		c.Server.Port = o.port
	}
	if changed("lookup-url") {
		c.Lookup.URL = o.lookupURL
	}
	if changed("target-url") {
		c.Lookup.TargetURL = o.targetURL
	}
	if changed("defaults") {
		c.Relay.DefaultsFile = o.defaults
	}
	if changed("log-level") {
		c.Logging.Level = o.logLevel
	}
	if changed("dev") {
		c.Logging.Development = o.dev
	}
}
