/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/m64kit/pkg/api"
	"github.com/ssargent/m64kit/pkg/config"
	"github.com/ssargent/m64kit/pkg/logging"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the m64kit REST API server over the local catalog.

Every /api/v1 route requires the X-API-Key header. When the configured key is
"auto" a key is generated for this run and printed on startup.

Examples:
  m64 serve
  m64 serve --port 9000 --bind 0.0.0.0 --api-key mysecretkey`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *appConfig
		flags := cmd.Flags()
		if flags.Changed("port") {
			cfg.Port, _ = flags.GetInt("port")
		}
		if flags.Changed("bind") {
			cfg.Bind, _ = flags.GetString("bind")
		}
		if flags.Changed("api-key") {
			cfg.Security.APIKey, _ = flags.GetString("api-key")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
			key, err := config.GenerateSecureKey(32)
			if err != nil {
				return err
			}
			cfg.Security.APIKey = key
			fmt.Fprintf(cmd.OutOrStdout(), "🔑 Generated API key for this run: %s\n", key)
		}

		movies, err := openCatalog()
		if err != nil {
			return err
		}
		defer movies.Close()

		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}
		starter := container.GetServerFactory().CreateServerStarter()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "🚀 Starting m64kit server on %s:%d\n", cfg.Bind, cfg.Port)
		fmt.Fprintf(cmd.OutOrStdout(), "📁 Catalog directory: %s\n", cfg.CatalogDir)

		return starter.StartServer(ctx, movies, api.ServerConfig{
			Port:          cfg.Port,
			Bind:          cfg.Bind,
			APIKey:        cfg.Security.APIKey,
			MaxUploadSize: cfg.Security.MaxUploadSize,
		}, logging.WithComponent("api"))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8064, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to (overrides config)")
	serveCmd.Flags().String("api-key", "", "API key for authentication (overrides config)")
}

