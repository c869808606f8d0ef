package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/m64kit/pkg/logging"
	"github.com/ssargent/m64kit/pkg/moviefile"
)

// rewriteCmd represents the rewrite command
var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file>",
	Short: "Edit header metadata and write the movie back",
	Long: `Decode a movie, change selected header fields and encode it again.
The target file is replaced atomically.

Examples:
  m64 rewrite run.m64 --author "Someone" --description "any%"
  m64 rewrite run.m64 --rerecords 0 --out clean.m64
  m64 rewrite run.m64 --sync-frames`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codec := newCodec()
		movie, _, err := moviefile.ReadFile(codec, args[0])
		if err != nil {
			return err
		}
		h := &movie.Header

		flags := cmd.Flags()
		if flags.Changed("author") {
			v, _ := flags.GetString("author")
			if err := h.Author.Set(v); err != nil {
				return fmt.Errorf("--author: %w", err)
			}
		}
		if flags.Changed("description") {
			v, _ := flags.GetString("description")
			if err := h.Description.Set(v); err != nil {
				return fmt.Errorf("--description: %w", err)
			}
		}
		if flags.Changed("rom-name") {
			v, _ := flags.GetString("rom-name")
			if err := h.RomInternalName.Set(v); err != nil {
				return fmt.Errorf("--rom-name: %w", err)
			}
		}
		if flags.Changed("rerecords") {
			h.Rerecords, _ = flags.GetUint32("rerecords")
		}
		if sync, _ := flags.GetBool("sync-frames"); sync {
			h.InputFrames = uint32(len(movie.Inputs))
		}

		out, _ := flags.GetString("out")
		if out == "" {
			out = args[0]
		}
		if err := moviefile.WriteFile(codec, out, movie, logging.WithComponent("rewrite")); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, movie.Size())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rewriteCmd)
	rewriteCmd.Flags().String("author", "", "Set the author field (up to 222 bytes)")
	rewriteCmd.Flags().String("description", "", "Set the description field (up to 256 bytes)")
	rewriteCmd.Flags().String("rom-name", "", "Set the internal ROM name (up to 32 bytes)")
	rewriteCmd.Flags().Uint32("rerecords", 0, "Set the rerecord count")
	rewriteCmd.Flags().Bool("sync-frames", false, "Set the input frame count to the number of samples")
	rewriteCmd.Flags().String("out", "", "Write to this path instead of replacing the input")
}
