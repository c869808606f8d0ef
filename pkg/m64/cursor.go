package m64

import "encoding/binary"

// cursor reads fixed-width fields from a buffer, strictly forward.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

// take consumes n bytes. A short buffer is reported against field.
func (c *cursor) take(n int, field Field) ([]byte, error) {
	if rem := c.remaining(); rem < n {
		return nil, &NotEnoughBytesError{Field: field, Offset: c.pos, Requires: n - rem}
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) u8(field Field) (uint8, error) {
	b, err := c.take(1, field)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) u16(field Field) (uint16, error) {
	b, err := c.take(2, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) u32(field Field) (uint32, error) {
	b, err := c.take(4, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// reserved consumes n bytes that must all be zero.
func (c *cursor) reserved(n int) error {
	off := c.pos
	b, err := c.take(n, FieldReserved)
	if err != nil {
		return err
	}
	for _, v := range b {
		if v != 0 {
			return &ReservedNotZeroError{Offset: off}
		}
	}
	return nil
}
