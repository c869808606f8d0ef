/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/ssargent/m64kit/pkg/catalog"
	"github.com/ssargent/m64kit/pkg/config"
	"github.com/ssargent/m64kit/pkg/di"
	"github.com/ssargent/m64kit/pkg/logging"
	"github.com/ssargent/m64kit/pkg/m64"
)

var (
	container *di.Container
	appConfig = config.DefaultConfig()
	logger    = zerolog.Nop()
)

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "m64",
	Short: "m64kit - Mupen64 movie toolkit",
	Long: `m64kit reads, validates and rewrites Mupen64 .m64 input movies,
keeps a local catalog of them and serves both over a REST API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		appConfig = cfg

		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = os.Getenv("M64_LOG_LEVEL")
		}
		if level == "" {
			level = cfg.Logging.Level
		}
		logger = logging.Configure(logging.Config{
			Level:   level,
			Output:  cmd.ErrOrStderr(),
			Console: cfg.Logging.Console,
		})
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().StringP("catalog-dir", "d", "", "Catalog directory (overrides config)")
	rootCmd.PersistentFlags().String("bit-order", "", "Input bit order: lsb or msb (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig reads the config file when present and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("catalog-dir") {
		cfg.CatalogDir, _ = cmd.Flags().GetString("catalog-dir")
	}
	if cmd.Flags().Changed("bit-order") {
		cfg.Codec.BitOrder, _ = cmd.Flags().GetString("bit-order")
		if _, err := m64.ParseBitOrder(cfg.Codec.BitOrder); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newCodec returns a codec for the configured bit order.
func newCodec() *m64.Codec {
	return m64.NewCodec(m64.WithBitOrder(appConfig.BitOrder()))
}

// openCatalog opens the configured catalog through the container.
func openCatalog() (*catalog.Catalog, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	if err := os.MkdirAll(appConfig.CatalogDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create catalog dir: %w", err)
	}
	return container.OpenCatalog(catalog.Options{
		Dir:      appConfig.CatalogDir,
		BitOrder: appConfig.BitOrder(),
		Logger:   logging.WithComponent("catalog"),
	})
}
