package m64

import "encoding/binary"

// Movie is a decoded .m64 file: its header and one input per frame.
type Movie struct {
	Header Header  `json:"header" yaml:"header"`
	Inputs []Input `json:"inputs" yaml:"inputs"`
}

// NewMovie returns an empty movie with a default header.
func NewMovie() *Movie {
	return &Movie{Header: NewHeader()}
}

// Size returns the encoded size of m.
func (m *Movie) Size() int {
	return HeaderSize + InputSize*len(m.Inputs)
}

// Codec decodes and encodes movies with a fixed input bit order.
type Codec struct {
	order BitOrder
}

// Option configures a Codec.
type Option func(*Codec)

// WithBitOrder selects the input sample bit order.
func WithBitOrder(order BitOrder) Option {
	return func(c *Codec) {
		c.order = order
	}
}

// NewCodec creates a codec. Without options it uses DefaultBitOrder.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{order: DefaultBitOrder}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BitOrder returns the input bit order used by c.
func (c *Codec) BitOrder() BitOrder {
	return c.order
}

var defaultCodec = NewCodec()

// Decode parses a complete movie using the default codec.
func Decode(data []byte) (*Movie, error) {
	return defaultCodec.Decode(data)
}

// Encode serializes a movie using the default codec.
func Encode(m *Movie) ([]byte, error) {
	return defaultCodec.Encode(m)
}

// Decode parses a complete movie. The buffer is never retained.
func (c *Codec) Decode(data []byte) (*Movie, error) {
	if len(data) >= HeaderSize {
		if rem := (len(data) - HeaderSize) % InputSize; rem != 0 {
			return nil, &MisalignedInputError{Offset: len(data) - rem, Remainder: rem}
		}
	}

	header, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	inputs := make([]Input, 0, (len(data)-HeaderSize)/InputSize)
	r := c.NewInputReader(data[HeaderSize:])
	for r.Next() {
		inputs = append(inputs, r.Input())
	}

	return &Movie{Header: header, Inputs: inputs}, nil
}

// Encode serializes m. The output is always HeaderSize+InputSize*len(m.Inputs)
// bytes long.
func (c *Codec) Encode(m *Movie) ([]byte, error) {
	buf := make([]byte, m.Size())
	if err := putHeader(buf, &m.Header); err != nil {
		return nil, err
	}

	off := HeaderSize
	for _, in := range m.Inputs {
		binary.LittleEndian.PutUint32(buf[off:], EncodeInput(in, c.order))
		off += InputSize
	}

	return buf, nil
}

// InputReader walks the input samples of a movie without materializing
// them. Trailing bytes that do not form a whole sample are ignored; Decode
// rejects them before reading.
type InputReader struct {
	data  []byte
	order BitOrder
	index int
	input Input
}

// NewInputReader returns a reader over encoded input samples, typically
// the bytes after the header.
func (c *Codec) NewInputReader(data []byte) *InputReader {
	return &InputReader{data: data, order: c.order, index: -1}
}

// Next advances to the next sample and reports whether one was available.
func (r *InputReader) Next() bool {
	next := r.index + 1
	if next >= r.Len() {
		return false
	}
	r.index = next
	r.input = DecodeInput(binary.LittleEndian.Uint32(r.data[next*InputSize:]), r.order)
	return true
}

// Input returns the current sample.
func (r *InputReader) Input() Input {
	return r.input
}

// Index returns the frame index of the current sample, or -1 before the
// first call to Next.
func (r *InputReader) Index() int {
	return r.index
}

// Len returns the number of whole samples in the underlying data.
func (r *InputReader) Len() int {
	return len(r.data) / InputSize
}

// Reset rewinds the reader to before the first sample.
func (r *InputReader) Reset() {
	r.index = -1
	r.input = Input{}
}

// Seek positions the reader so the next call to Next yields sample i.
// Positions past the end leave the reader exhausted.
func (r *InputReader) Seek(i int) {
	i = min(max(i, 0), r.Len())
	r.index = i - 1
	r.input = Input{}
}
