package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/m64kit/pkg/m64"
	"github.com/ssargent/m64kit/pkg/moviefile"
)

// inputRow is one decoded input sample
type inputRow struct {
	Frame int       `json:"frame" yaml:"frame"`
	Raw   string    `json:"raw" yaml:"raw"`
	Input m64.Input `json:"input" yaml:"input"`
}

// inputsCmd represents the inputs command
var inputsCmd = &cobra.Command{
	Use:   "inputs <file>",
	Short: "List the input samples of a movie",
	Long: `Decode a movie and print its controller input, one sample per line.

Examples:
  m64 inputs run.m64 --limit 20
  m64 inputs run.m64 --offset 1000 --limit 60 --output json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		offset, _ := cmd.Flags().GetInt("offset")
		limit, _ := cmd.Flags().GetInt("limit")
		if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
			return err
		}
		if offset < 0 {
			return fmt.Errorf("--offset must not be negative")
		}

		codec := newCodec()
		_, data, err := moviefile.ReadFile(codec, args[0])
		if err != nil {
			return err
		}

		r := codec.NewInputReader(data[m64.HeaderSize:])
		r.Seek(offset)
		var rows []inputRow
		for r.Next() {
			if limit > 0 && len(rows) >= limit {
				break
			}
			in := r.Input()
			rows = append(rows, inputRow{
				Frame: r.Index(),
				Raw:   fmt.Sprintf("%08X", m64.EncodeInput(in, codec.BitOrder())),
				Input: in,
			})
		}

		if format != formatText {
			if rows == nil {
				rows = []inputRow{}
			}
			return outputStructured(cmd.OutOrStdout(), format, rows)
		}
		w := cmd.OutOrStdout()
		for _, row := range rows {
			fmt.Fprintf(w, "%8d  %s  %s\n", row.Frame, row.Raw, row.Input)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inputsCmd)
	inputsCmd.Flags().StringP("output", "o", formatText, "Output format: text, json or yaml")
	inputsCmd.Flags().Int("offset", 0, "First frame to print")
	inputsCmd.Flags().Int("limit", 0, "Maximum number of frames to print (0 for all)")
}
