package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/ssargent/m64kit/pkg/di"
	"github.com/ssargent/m64kit/pkg/m64"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so tests do not leak state
// through the package-level commands.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetFlags(child)
	}
}

type testEnv struct {
	dir        string
	configPath string
	catalogDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	SetContainer(di.NewContainer())
	t.Cleanup(func() { SetContainer(nil) })
	return &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		catalogDir: filepath.Join(dir, "catalog"),
	}
}

// run executes the root command with the environment's config and catalog.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	base := []string{"--config", e.configPath, "--catalog-dir", e.catalogDir, "--log-level", "error"}
	rootCmd.SetArgs(append(args, base...))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// writeMovie encodes a movie with frames samples into the environment dir.
func (e *testEnv) writeMovie(t *testing.T, name string, frames int) string {
	t.Helper()
	m := m64.NewMovie()
	require.NoError(t, m.Header.RomInternalName.Set("SUPER MARIO 64"))
	require.NoError(t, m.Header.Author.Set("original author"))
	m.Header.UID = 1700000000
	m.Header.VIFrames = uint32(frames * 2)
	m.Header.InputFrames = uint32(frames)
	m.Header.Rerecords = 42
	for i := 0; i < frames; i++ {
		m.Inputs = append(m.Inputs, m64.Input{A: i%2 == 0, Start: i == 0, X: int8(i), Y: -int8(i)})
	}
	data, err := m64.Encode(m)
	require.NoError(t, err)

	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
