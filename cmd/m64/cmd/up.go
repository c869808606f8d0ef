/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/m64kit/pkg/config"
)

// upCmd represents the up command
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Bootstrap and start the m64kit server",
	Long: `Bootstrap m64kit by creating the configuration and API key if they don't
exist, then start the REST API server. This is the recommended way to get the
server running.

The command will:
- Create the configuration file with a secure API key if missing
- Open (or create) the catalog
- Start the REST API server

Examples:
  m64 up
  m64 up --catalog-dir ./movies --print-key`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		printKey, _ := cmd.Flags().GetBool("print-key")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		w := cmd.OutOrStdout()
		if !config.ConfigExists(configPath) {
			fmt.Fprintf(w, "🔧 First run detected. Bootstrapping m64kit...\n")
			cfg, err := config.BootstrapConfig(configPath, appConfig.CatalogDir)
			if err != nil {
				return fmt.Errorf("failed to bootstrap config: %w", err)
			}
			fmt.Fprintf(w, "✅ Configuration created at %s\n", configPath)
			if printKey {
				fmt.Fprintf(w, "API key: %s\n", cfg.Security.APIKey)
			}
			appConfig.Security.APIKey = cfg.Security.APIKey
		} else {
			fmt.Fprintf(w, "✅ Loaded existing configuration from %s\n", configPath)
		}

		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
	upCmd.Flags().Bool("print-key", false, "Print the generated API key")
	upCmd.Flags().IntP("port", "p", 8064, "Port to listen on (overrides config)")
	upCmd.Flags().String("bind", "127.0.0.1", "Address to bind to (overrides config)")
	upCmd.Flags().String("api-key", "", "API key for authentication (overrides config)")
}
