package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ssargent/m64kit/pkg/catalog"
	"github.com/ssargent/m64kit/pkg/m64"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q (want one of %s)", format, strings.Join(allowed, ", "))
}

// outputStructured writes v as JSON or YAML
func outputStructured(w io.Writer, format string, v interface{}) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// outputSummaryTable displays a movie summary in table format
func outputSummaryTable(w io.Writer, s *m64.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "ROM:\t%s\n", s.RomName)
	fmt.Fprintf(tw, "ROM CRC32:\t%s\n", s.RomCRC32)
	fmt.Fprintf(tw, "Country:\t0x%04X\n", s.RomCountryCode)
	fmt.Fprintf(tw, "Start:\t%s\n", s.StartType)
	fmt.Fprintf(tw, "Recorded:\t%s\n", s.RecordedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "Length:\t%s (%d VI frames at %d fps)\n", s.Length, s.VIFrames, s.FPS)
	fmt.Fprintf(tw, "Input frames:\t%d (%d samples)\n", s.InputFrames, s.Samples)
	fmt.Fprintf(tw, "Rerecords:\t%d\n", s.Rerecords)
	fmt.Fprintf(tw, "Controllers:\t%d [%s]\n", s.ControllerCount, strings.Join(s.Controllers, ", "))

	if s.Author != "" {
		fmt.Fprintf(tw, "Author:\t%s\n", s.Author)
	}
	if s.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", s.Description)
	}

	fmt.Fprintf(tw, "Video plugin:\t%s\n", s.VideoPlugin)
	fmt.Fprintf(tw, "Sound plugin:\t%s\n", s.SoundPlugin)
	fmt.Fprintf(tw, "Input plugin:\t%s\n", s.InputPlugin)
	fmt.Fprintf(tw, "RSP plugin:\t%s\n", s.RSPPlugin)

	return tw.Flush()
}

// outputEntriesTable displays catalog entries in table format
func outputEntriesTable(w io.Writer, entries []*catalog.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No movies found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROM\tFRAMES\tRERECORDS\tAUTHOR\tADDED")

	for _, e := range entries {
		author := e.Summary.Author
		if len(author) > 30 {
			author = author[:27] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			e.ID,
			e.Name,
			e.Summary.RomName,
			e.Summary.Samples,
			e.Summary.Rerecords,
			author,
			e.AddedAt.Format("2006-01-02 15:04"))
	}

	return tw.Flush()
}
