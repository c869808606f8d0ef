// Package moviefile reads, writes and batch-verifies movie files on disk.
package moviefile

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"github.com/ssargent/m64kit/pkg/m64"
	"golang.org/x/sync/errgroup"
)

// ReadFile reads and decodes the movie at path.
func ReadFile(codec *m64.Codec, path string) (*m64.Movie, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := codec.Decode(data)
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", path, err)
	}
	return m, data, nil
}

// WriteFile encodes m and replaces path atomically. Readers never observe
// a partially written movie.
func WriteFile(codec *m64.Codec, path string, m *m64.Movie, logger zerolog.Logger) error {
	data, err := codec.Encode(m)
	if err != nil {
		return fmt.Errorf("encode movie: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending movie file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("cleanup pending movie file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write movie data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace movie file: %w", err)
	}

	logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("movie written")
	return nil
}

// Result is the outcome of verifying one file.
type Result struct {
	Path    string       `json:"path" yaml:"path"`
	OK      bool         `json:"ok" yaml:"ok"`
	Summary *m64.Summary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Error   string       `json:"error,omitempty" yaml:"error,omitempty"`
	Kind    string       `json:"kind,omitempty" yaml:"kind,omitempty"`
	Offset  int          `json:"offset,omitempty" yaml:"offset,omitempty"`

	// Canonical is set when re-encoding the decoded movie reproduces the
	// file byte for byte.
	Canonical bool `json:"canonical" yaml:"canonical"`

	err error
}

// Err returns the error that made the file fail, if any.
func (r *Result) Err() error {
	return r.err
}

// VerifyFile decodes path and checks that it re-encodes to the same bytes.
func VerifyFile(codec *m64.Codec, path string) Result {
	res := Result{Path: path}

	m, data, err := ReadFile(codec, path)
	if err != nil {
		res.err = err
		res.Error = err.Error()
		if perr, ok := m64.AsParseError(err); ok {
			res.Kind = perr.Kind().String()
			res.Offset = perr.ByteOffset()
		}
		return res
	}

	s := m64.Summarize(m)
	res.OK = true
	res.Summary = &s

	encoded, err := codec.Encode(m)
	res.Canonical = err == nil && bytes.Equal(encoded, data)
	return res
}

// VerifyAll verifies paths with at most workers files in flight. Results
// are returned in the order of paths. A failing file does not stop the
// batch; only cancellation of ctx does.
func VerifyAll(ctx context.Context, codec *m64.Codec, paths []string, workers int, logger zerolog.Logger) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = VerifyFile(codec, path)
			if !results[i].OK {
				logger.Debug().Str("path", path).Str("kind", results[i].Kind).Msg("movie failed verification")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
