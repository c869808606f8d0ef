/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/m64kit/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with a generated API key",
	Long: `Create the m64kit configuration file for local use.

This command will:
- Write the config file with default settings
- Generate a secure API key for the REST API
- Record the catalog directory

Examples:
  m64 init
  m64 init --config ./m64kit.yaml --catalog-dir ./catalog --print-key`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		catalogDir, _ := cmd.Flags().GetString("catalog-dir")
		force, _ := cmd.Flags().GetBool("force")
		printKey, _ := cmd.Flags().GetBool("print-key")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		w := cmd.OutOrStdout()
		if config.ConfigExists(configPath) && !force {
			fmt.Fprintf(w, "Configuration already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		cfg, err := config.BootstrapConfig(configPath, catalogDir)
		if err != nil {
			return fmt.Errorf("failed to bootstrap config: %w", err)
		}
		logger.Info().Str("path", configPath).Msg("configuration created")

		fmt.Fprintf(w, "✅ Configuration created at %s\n", configPath)
		fmt.Fprintf(w, "Catalog directory: %s\n", cfg.CatalogDir)
		if printKey {
			fmt.Fprintf(w, "API key: %s\n", cfg.Security.APIKey)
		}
		fmt.Fprintf(w, "\nYou can now start the server with:\n")
		fmt.Fprintf(w, "  m64 serve --config %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")
}
