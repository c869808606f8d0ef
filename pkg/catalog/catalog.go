// Package catalog keeps decoded movies in a local pebble store. Movies are
// validated by a full decode before they are accepted and are stored as the
// original bytes, so an export is always identical to what was added.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/m64kit/pkg/m64"
	"github.com/ssargent/m64kit/pkg/storage"
)

const (
	bucketRaw  = "raw"
	bucketMeta = "meta"
)

var (
	// ErrNotFound is returned for ids that are not in the catalog.
	ErrNotFound = errors.New("movie not found")
	// ErrInvalidID is returned for ids that are not valid KSUIDs.
	ErrInvalidID = errors.New("invalid movie id")
)

// Entry describes one catalogued movie.
type Entry struct {
	ID      string      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Size    int         `json:"size" yaml:"size"`
	AddedAt time.Time   `json:"added_at" yaml:"added_at"`
	Summary m64.Summary `json:"summary" yaml:"summary"`
}

// Catalog stores movies by id.
type Catalog struct {
	store  *storage.DefaultStorage
	codec  *m64.Codec
	logger zerolog.Logger
	now    func() time.Time
}

// Options configures a Catalog.
type Options struct {
	Dir      string
	BitOrder m64.BitOrder
	Logger   zerolog.Logger
}

// Open opens or creates the catalog in opts.Dir.
func Open(opts Options) (*Catalog, error) {
	store, err := storage.NewDefaultStorage(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return &Catalog{
		store:  store,
		codec:  m64.NewCodec(m64.WithBitOrder(opts.BitOrder)),
		logger: opts.Logger,
		now:    time.Now,
	}, nil
}

// Close releases the underlying store.
func (c *Catalog) Close() error {
	return c.store.Close()
}

// Codec returns the codec the catalog decodes with.
func (c *Catalog) Codec() *m64.Codec {
	return c.codec
}

// ParseID validates a catalog id.
func ParseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

// Add decodes data and stores it under a new id. Invalid movies are
// rejected with the decoder's ParseError.
func (c *Catalog) Add(name string, data []byte) (*Entry, error) {
	movie, err := c.codec.Decode(data)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		Name:    name,
		Size:    len(data),
		AddedAt: c.now().UTC(),
		Summary: m64.Summarize(movie),
	}
	meta, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry: %w", err)
	}

	id, err := c.store.Create(map[string][]byte{
		bucketRaw:  data,
		bucketMeta: meta,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store movie: %w", err)
	}
	entry.ID = id.String()

	c.logger.Info().
		Str("id", entry.ID).
		Str("name", name).
		Str("rom", entry.Summary.RomName).
		Int("samples", entry.Summary.Samples).
		Msg("movie added")

	return entry, nil
}

// Get returns the entry for id.
func (c *Catalog) Get(id string) (*Entry, error) {
	kid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	meta, err := c.read(bucketMeta, kid)
	if err != nil {
		return nil, err
	}
	return decodeEntry(kid, meta)
}

// Raw returns the stored movie bytes for id.
func (c *Catalog) Raw(id string) ([]byte, error) {
	kid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return c.read(bucketRaw, kid)
}

// Movie decodes the stored movie for id.
func (c *Catalog) Movie(id string) (*m64.Movie, error) {
	data, err := c.Raw(id)
	if err != nil {
		return nil, err
	}
	return c.codec.Decode(data)
}

// List returns all entries, oldest first.
func (c *Catalog) List() ([]*Entry, error) {
	var entries []*Entry
	err := c.store.Scan(bucketMeta, func(id ksuid.KSUID, data []byte) error {
		entry, err := decodeEntry(id, data)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	return entries, nil
}

// Delete removes id from the catalog.
func (c *Catalog) Delete(id string) error {
	kid, err := ParseID(id)
	if err != nil {
		return err
	}
	if _, err := c.read(bucketMeta, kid); err != nil {
		return err
	}
	if err := c.store.Delete(kid, bucketRaw, bucketMeta); err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	c.logger.Info().Str("id", id).Msg("movie deleted")
	return nil
}

func (c *Catalog) read(bucket string, id ksuid.KSUID) ([]byte, error) {
	data, err := c.store.Read(bucket, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read movie: %w", err)
	}
	return data, nil
}

func decodeEntry(id ksuid.KSUID, data []byte) (*Entry, error) {
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("corrupt catalog entry %s: %w", id, err)
	}
	entry.ID = id.String()
	return &entry, nil
}

// InputPage is a window of input samples from a stored movie.
type InputPage struct {
	Offset int         `json:"offset"`
	Total  int         `json:"total"`
	Inputs []m64.Input `json:"inputs"`
}

// Inputs returns up to limit samples starting at frame offset. A limit of
// zero or less returns everything after offset.
func (c *Catalog) Inputs(id string, offset, limit int) (*InputPage, error) {
	data, err := c.Raw(id)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	// Stored movies were validated on add.
	r := c.codec.NewInputReader(data[m64.HeaderSize:])
	page := &InputPage{Offset: offset, Total: r.Len(), Inputs: []m64.Input{}}
	r.Seek(offset)
	for r.Next() {
		if limit > 0 && len(page.Inputs) >= limit {
			break
		}
		page.Inputs = append(page.Inputs, r.Input())
	}
	return page, nil
}
