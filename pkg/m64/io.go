package m64

import (
	"fmt"
	"io"
)

// Read decodes a movie from everything r yields.
func Read(r io.Reader) (*Movie, error) {
	return defaultCodec.Read(r)
}

// Write encodes m to w.
func Write(w io.Writer, m *Movie) error {
	return defaultCodec.Write(w, m)
}

// Read decodes a movie from everything r yields.
func (c *Codec) Read(r io.Reader) (*Movie, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read movie: %w", err)
	}
	return c.Decode(data)
}

// Write encodes m to w.
func (c *Codec) Write(w io.Writer, m *Movie) error {
	data, err := c.Encode(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write movie: %w", err)
	}
	return nil
}
