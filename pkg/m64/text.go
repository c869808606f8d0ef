package m64

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

// ErrTextNotUTF8 is returned when setting a text field to invalid UTF-8.
var ErrTextNotUTF8 = errors.New("text is not valid UTF-8")

// Text32 holds the ROM internal name.
type Text32 [32]byte

// Text64 holds a plugin name.
type Text64 [64]byte

// Text222 holds the author list.
type Text222 [222]byte

// Text256 holds the movie description.
type Text256 [256]byte

// The text types keep the raw field bytes, padding included, so a decoded
// field re-encodes to the identical slice. String stops at the first NUL
// for display.

func (t Text32) String() string  { return textString(t[:]) }
func (t Text64) String() string  { return textString(t[:]) }
func (t Text222) String() string { return textString(t[:]) }
func (t Text256) String() string { return textString(t[:]) }

func (t Text32) MarshalText() ([]byte, error)  { return []byte(t.String()), nil }
func (t Text64) MarshalText() ([]byte, error)  { return []byte(t.String()), nil }
func (t Text222) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t Text256) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Set replaces the field with s followed by zero padding.
func (t *Text32) Set(s string) error  { return setText(t[:], s) }
func (t *Text64) Set(s string) error  { return setText(t[:], s) }
func (t *Text222) Set(s string) error { return setText(t[:], s) }
func (t *Text256) Set(s string) error { return setText(t[:], s) }

// NewText32 returns s as a zero-padded 32-byte field.
func NewText32(s string) (Text32, error) {
	var t Text32
	err := t.Set(s)
	return t, err
}

// NewText64 returns s as a zero-padded 64-byte field.
func NewText64(s string) (Text64, error) {
	var t Text64
	err := t.Set(s)
	return t, err
}

// NewText222 returns s as a zero-padded 222-byte field.
func NewText222(s string) (Text222, error) {
	var t Text222
	err := t.Set(s)
	return t, err
}

// NewText256 returns s as a zero-padded 256-byte field.
func NewText256(s string) (Text256, error) {
	var t Text256
	err := t.Set(s)
	return t, err
}

// textString returns the text up to the first NUL.
func textString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func setText(dst []byte, s string) error {
	if len(s) > len(dst) {
		return &TextTooLongError{Capacity: len(dst), Length: len(s)}
	}
	if !utf8.ValidString(s) {
		return ErrTextNotUTF8
	}
	clear(dst)
	copy(dst, s)
	return nil
}

// readText fills dst from the cursor, rejecting bytes that are not UTF-8.
func readText(c *cursor, dst []byte, field Field) error {
	off := c.pos
	b, err := c.take(len(dst), field)
	if err != nil {
		return err
	}
	if !utf8.Valid(b) {
		return &InvalidTextError{Field: field, Offset: off}
	}
	copy(dst, b)
	return nil
}
