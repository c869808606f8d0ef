package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/m64kit/pkg/m64"
	"github.com/ssargent/m64kit/pkg/moviefile"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the header of a movie",
	Long: `Decode a movie and print its header.

Examples:
  m64 inspect run.m64
  m64 inspect run.m64 --output yaml
  m64 inspect run.m64 --output json --header`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		fullHeader, _ := cmd.Flags().GetBool("header")
		if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
			return err
		}

		movie, _, err := moviefile.ReadFile(newCodec(), args[0])
		if err != nil {
			return err
		}
		logger.Debug().Str("path", args[0]).Int("samples", len(movie.Inputs)).Msg("decoded movie")

		summary := m64.Summarize(movie)
		switch {
		case format == formatText:
			return outputSummaryTable(cmd.OutOrStdout(), &summary)
		case fullHeader:
			return outputStructured(cmd.OutOrStdout(), format, &movie.Header)
		default:
			return outputStructured(cmd.OutOrStdout(), format, &summary)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("output", "o", formatText, "Output format: text, json or yaml")
	inspectCmd.Flags().Bool("header", false, "Print every header field instead of the summary (json/yaml only)")
}
