package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/ssargent/m64kit/pkg/catalog"
)

// catalogCmd groups the catalog subcommands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local movie catalog",
	Long: `Store validated movies in the local catalog and get them back.

Examples:
  m64 catalog add run.m64 other.m64
  m64 catalog list
  m64 catalog show 2Cf0yYrvPLN0BMwpWw6fwUxvFjW
  m64 catalog export 2Cf0yYrvPLN0BMwpWw6fwUxvFjW --out run.m64
  m64 catalog delete 2Cf0yYrvPLN0BMwpWw6fwUxvFjW`,
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Validate movies and add them to the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(func(c *catalog.Catalog) error {
			w := cmd.OutOrStdout()
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				entry, err := c.Add(filepath.Base(path), data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(w, "Added %s as %s\n", path, entry.ID)
			}
			return nil
		})
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued movies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
			return err
		}
		return withCatalog(func(c *catalog.Catalog) error {
			entries, err := c.List()
			if err != nil {
				return err
			}
			if format == formatText {
				return outputEntriesTable(cmd.OutOrStdout(), entries)
			}
			if entries == nil {
				entries = []*catalog.Entry{}
			}
			return outputStructured(cmd.OutOrStdout(), format, entries)
		})
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a catalogued movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
			return err
		}
		return withCatalog(func(c *catalog.Catalog) error {
			entry, err := c.Get(args[0])
			if err != nil {
				return err
			}
			if format != formatText {
				return outputStructured(cmd.OutOrStdout(), format, entry)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID:    %s\nName:  %s\nSize:  %d bytes\nAdded: %s\n\n",
				entry.ID, entry.Name, entry.Size, entry.AddedAt.Format("2006-01-02 15:04:05"))
			return outputSummaryTable(w, &entry.Summary)
		})
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write the stored bytes of a movie to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = args[0] + ".m64"
		}
		return withCatalog(func(c *catalog.Catalog) error {
			data, err := c.Raw(args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s (%d bytes)\n", args[0], out, len(data))
			return nil
		})
	},
}

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a movie from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(func(c *catalog.Catalog) error {
			if err := c.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

func withCatalog(fn func(c *catalog.Catalog) error) error {
	c, err := openCatalog()
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogAddCmd, catalogListCmd, catalogShowCmd, catalogExportCmd, catalogDeleteCmd)

	catalogListCmd.Flags().StringP("output", "o", formatText, "Output format: text, json or yaml")
	catalogShowCmd.Flags().StringP("output", "o", formatText, "Output format: text, json or yaml")
	catalogExportCmd.Flags().String("out", "", "Output path (default: <id>.m64)")
}
