package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/ssargent/m64kit/pkg/api"
	"github.com/ssargent/m64kit/pkg/catalog"
	"github.com/ssargent/m64kit/pkg/config"
	"github.com/ssargent/m64kit/pkg/m64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestInspectCommand(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeMovie(t, "run.m64", 4)

	t.Run("text", func(t *testing.T) {
		out, err := env.run(t, "inspect", path)
		require.NoError(t, err)
		assert.Contains(t, out, "SUPER MARIO 64")
		assert.Contains(t, out, "power-on")
		assert.Contains(t, out, "original author")
		assert.Contains(t, out, "4 (4 samples)")
	})

	t.Run("json", func(t *testing.T) {
		out, err := env.run(t, "inspect", path, "--output", "json")
		require.NoError(t, err)
		var s m64.Summary
		require.NoError(t, json.Unmarshal([]byte(out), &s))
		assert.Equal(t, uint32(42), s.Rerecords)
		assert.Equal(t, []string{"P1"}, s.Controllers)
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := env.run(t, "inspect", path, "-o", "yaml")
		require.NoError(t, err)
		var doc map[string]interface{}
		require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "SUPER MARIO 64", doc["rom_name"])
	})

	t.Run("full header", func(t *testing.T) {
		out, err := env.run(t, "inspect", path, "-o", "json", "--header")
		require.NoError(t, err)
		assert.Contains(t, out, `"rom_internal_name": "SUPER MARIO 64"`)
		assert.Contains(t, out, `"movie_start_type": "power-on"`)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := env.run(t, "inspect", path, "-o", "xml")
		assert.Error(t, err)
	})

	t.Run("parse error", func(t *testing.T) {
		bad := filepath.Join(env.dir, "bad.m64")
		require.NoError(t, os.WriteFile(bad, []byte{0xFF, 0xFF, 0xFF, 0xFF}, 0o644))
		_, err := env.run(t, "inspect", bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid file signature")
	})
}

func TestInputsCommand(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeMovie(t, "run.m64", 6)

	out, err := env.run(t, "inputs", path, "--offset", "2", "--limit", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "2")
	assert.Contains(t, lines[0], "X=2 Y=-2")
	assert.Contains(t, lines[1], "X=3 Y=-3")

	out, err = env.run(t, "inputs", path, "--limit", "1", "-o", "json")
	require.NoError(t, err)
	var rows []inputRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Input.Start)
	assert.Equal(t, "00000090", rows[0].Raw)
}

func TestVerifyCommand(t *testing.T) {
	env := newTestEnv(t)
	good := env.writeMovie(t, "good.m64", 3)

	out, err := env.run(t, "verify", good)
	require.NoError(t, err)
	assert.Contains(t, out, "OK    "+good+" (3 samples)")

	bad := filepath.Join(env.dir, "bad.m64")
	data, err := os.ReadFile(good)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(bad, append(data, 1, 2), 0o644))

	out, err = env.run(t, "verify", good, bad, "--workers", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "FAIL  "+bad)

	out, _ = env.run(t, "verify", good, bad, "-o", "json")
	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "misaligned_input", results[1]["kind"])
}

func TestRewriteCommand(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeMovie(t, "run.m64", 3)
	out := filepath.Join(env.dir, "edited.m64")

	_, err := env.run(t, "rewrite", path,
		"--author", "new author",
		"--description", "any%",
		"--rerecords", "0",
		"--out", out)
	require.NoError(t, err)

	m, err := m64.Decode(mustRead(t, out))
	require.NoError(t, err)
	assert.Equal(t, "new author", m.Header.Author.String())
	assert.Equal(t, "any%", m.Header.Description.String())
	assert.Zero(t, m.Header.Rerecords)
	assert.Equal(t, "SUPER MARIO 64", m.Header.RomInternalName.String())
	assert.Len(t, m.Inputs, 3)

	// The source is untouched.
	orig, err := m64.Decode(mustRead(t, path))
	require.NoError(t, err)
	assert.Equal(t, "original author", orig.Header.Author.String())

	t.Run("too long", func(t *testing.T) {
		_, err := env.run(t, "rewrite", path, "--rom-name", strings.Repeat("x", 33))
		var tooLong *m64.TextTooLongError
		assert.ErrorAs(t, err, &tooLong)
	})

	t.Run("in place with sync", func(t *testing.T) {
		data := mustRead(t, path)
		data[0x18] = 99 // input frame count
		require.NoError(t, os.WriteFile(path, data, 0o644))

		_, err := env.run(t, "rewrite", path, "--sync-frames")
		require.NoError(t, err)
		m, err := m64.Decode(mustRead(t, path))
		require.NoError(t, err)
		assert.Equal(t, uint32(3), m.Header.InputFrames)
	})
}

func TestInitCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "init", "--print-key")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration created")

	cfg, err := config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, env.catalogDir, cfg.CatalogDir)
	assert.Len(t, cfg.Security.APIKey, 64)
	assert.Contains(t, out, cfg.Security.APIKey)

	out, err = env.run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	_, err = env.run(t, "init", "--force")
	require.NoError(t, err)
	again, err := config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.NotEqual(t, cfg.Security.APIKey, again.Security.APIKey)
}

func TestCatalogCommands(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeMovie(t, "run.m64", 5)

	out, err := env.run(t, "catalog", "add", path)
	require.NoError(t, err)
	fields := strings.Fields(out)
	id := fields[len(fields)-1]
	_, err = catalog.ParseID(id)
	require.NoError(t, err)

	out, err = env.run(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "run.m64")

	out, err = env.run(t, "catalog", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "SUPER MARIO 64")

	exported := filepath.Join(env.dir, "exported.m64")
	_, err = env.run(t, "catalog", "export", id, "--out", exported)
	require.NoError(t, err)
	assert.Equal(t, mustRead(t, path), mustRead(t, exported))

	_, err = env.run(t, "catalog", "delete", id)
	require.NoError(t, err)

	_, err = env.run(t, "catalog", "show", id)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	out, err = env.run(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No movies found")
}

func TestCatalogAdd_RejectsInvalid(t *testing.T) {
	env := newTestEnv(t)
	bad := filepath.Join(env.dir, "bad.m64")
	require.NoError(t, os.WriteFile(bad, make([]byte, 2000), 0o644))

	_, err := env.run(t, "catalog", "add", bad)
	require.Error(t, err)
	_, ok := m64.AsParseError(err)
	assert.True(t, ok)
}

type recordingFactory struct {
	starter *recordingStarter
}

func (f *recordingFactory) CreateServerStarter() api.ServerStarter { return f.starter }

type recordingStarter struct {
	config api.ServerConfig
	movies int
}

func (s *recordingStarter) StartServer(_ context.Context, movies api.MovieCatalog, cfg api.ServerConfig, _ zerolog.Logger) error {
	s.config = cfg
	entries, err := movies.List()
	s.movies = len(entries)
	return err
}

func TestServeCommand(t *testing.T) {
	env := newTestEnv(t)
	starter := &recordingStarter{}
	container.SetServerFactory(&recordingFactory{starter: starter})

	out, err := env.run(t, "serve", "--port", "9100", "--api-key", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "127.0.0.1:9100")
	assert.Equal(t, 9100, starter.config.Port)
	assert.Equal(t, "secret", starter.config.APIKey)
	assert.Equal(t, int64(64<<20), starter.config.MaxUploadSize)

	out, err = env.run(t, "serve")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated API key")
	assert.Len(t, starter.config.APIKey, 64)
	assert.Equal(t, 8064, starter.config.Port)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestUpCommand(t *testing.T) {
	env := newTestEnv(t)
	starter := &recordingStarter{}
	container.SetServerFactory(&recordingFactory{starter: starter})

	out, err := env.run(t, "up", "--print-key")
	require.NoError(t, err)
	assert.Contains(t, out, "First run detected")

	cfg, err := config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Security.APIKey, starter.config.APIKey)
	assert.Contains(t, out, cfg.Security.APIKey)
	assert.NotContains(t, out, "Generated API key")

	out, err = env.run(t, "up", "--port", "9200")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded existing configuration")
	assert.Equal(t, 9200, starter.config.Port)
	assert.Equal(t, cfg.Security.APIKey, starter.config.APIKey)
}
