// Command weathermap renders network weathermaps from map configs and
// creates configs from existing Zabbix maps.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ankek/terraform-provider-weathermap/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	debug     bool
	logFormat string
	logFile   string
	envFile   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "weathermap",
		Short:         "Network weathermap for Zabbix",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Load environment variables from this file if it exists")

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func (o *rootOptions) setup() error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", o.envFile, err)
		}
	}

	cfg := logger.Config{Level: "info", Format: o.logFormat, Output: "stderr"}
	if o.debug {
		cfg.Level = "debug"
	}
	if o.logFile != "" {
		cfg.Output = "file"
		cfg.FilePath = o.logFile
		cfg.MaxSize = 10
		cfg.MaxBackups = 3
	}
	_, err := logger.Init(cfg)
	return err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
