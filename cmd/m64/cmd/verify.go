package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/ssargent/m64kit/pkg/logging"
	"github.com/ssargent/m64kit/pkg/moviefile"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file>...",
	Short: "Check that movies decode and re-encode cleanly",
	Long: `Decode every file, report the first error found in each, and check that
valid files re-encode to identical bytes. Files are checked concurrently.

Exits non-zero when any file fails to decode.

Examples:
  m64 verify movies/*.m64
  m64 verify --workers 8 --output json a.m64 b.m64`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
			return err
		}
		workers, _ := cmd.Flags().GetInt("workers")
		if !cmd.Flags().Changed("workers") {
			workers = appConfig.Codec.Workers
		}
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}

		results, err := moviefile.VerifyAll(cmd.Context(), newCodec(), args, workers, logging.WithComponent("verify"))
		if err != nil {
			return err
		}

		failed := 0
		for _, res := range results {
			if !res.OK {
				failed++
			}
		}

		if format != formatText {
			if err := outputStructured(cmd.OutOrStdout(), format, results); err != nil {
				return err
			}
		} else {
			w := cmd.OutOrStdout()
			for _, res := range results {
				switch {
				case !res.OK:
					fmt.Fprintf(w, "FAIL  %s: %s\n", res.Path, res.Error)
				case !res.Canonical:
					fmt.Fprintf(w, "OK    %s (%d samples, not canonical)\n", res.Path, res.Summary.Samples)
				default:
					fmt.Fprintf(w, "OK    %s (%d samples)\n", res.Path, res.Summary.Samples)
				}
			}
		}

		logger.Info().Int("files", len(results)).Int("failed", failed).Msg("verification finished")
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed verification", failed, len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringP("output", "o", formatText, "Output format: text, json or yaml")
	verifyCmd.Flags().IntP("workers", "w", 0, "Files to check concurrently (default: config, then GOMAXPROCS)")
}
