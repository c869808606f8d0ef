// Package m64 decodes and encodes Mupen64 rerecording movie files (.m64).
//
// A movie is a fixed 1024-byte header followed by one 4-byte input sample per
// recorded frame. The package round-trips files byte for byte: decoding and
// re-encoding a valid movie yields the identical buffer, including any zero
// padding inside the fixed-size text fields.
//
// # File Format
//
// All multi-byte integers are little-endian. The magic is matched as raw bytes.
//
//	0x000  [4]   signature          4D 36 34 1A ("M64\x1A")
//	0x004  [4]   version            must be 3
//	0x008  [4]   uid                recording time, unix seconds
//	0x00C  [4]   vi frames
//	0x010  [4]   rerecords
//	0x014  [1]   fps
//	0x015  [1]   controller count
//	0x016  [2]   reserved           must be zero
//	0x018  [4]   input frames
//	0x01C  [2]   movie start type   1 snapshot, 2 power on, 4 EEPROM
//	0x01E  [2]   reserved           must be zero
//	0x020  [4]   controller flags
//	0x024  [160] reserved           must be zero
//	0x0C4  [32]  ROM internal name
//	0x0E4  [4]   ROM CRC32
//	0x0E8  [2]   ROM country code
//	0x0EA  [56]  reserved           must be zero
//	0x122  [64]  video plugin
//	0x162  [64]  sound plugin
//	0x1A2  [64]  input plugin
//	0x1E2  [64]  RSP plugin
//	0x222  [222] author
//	0x300  [256] description
//	0x400  ...   input samples, 4 bytes each
//
// # Controller Flags
//
// For controller slot i (0..3): bit i is set when the controller is present,
// bit i+4 when it has a memory pak, bit i+8 when it has a rumble pak.
// Bits 12..31 are unused and always encoded as zero.
//
// # Input Samples
//
// The low 16 bits of a sample hold the buttons, the third byte holds the
// signed analog X axis and the top byte the signed analog Y axis. With
// LSBFirst (the default) the button bits are:
//
//	0 D-pad right   4 Start   8  C right   12 R
//	1 D-pad left    5 Z       9  C left    13 L
//	2 D-pad down    6 B       10 C down    14 reserved
//	3 D-pad up      7 A       11 C up      15 reserved
//
// MSBFirst reverses the button table within the low 16 bits. The reserved
// bits are carried through verbatim; some tools use them as a reset signal.
//
// # Usage
//
//	movie, err := m64.Decode(data)
//	if err != nil {
//	    var perr m64.ParseError
//	    if errors.As(err, &perr) {
//	        log.Printf("bad movie at 0x%X: %v", perr.ByteOffset(), perr)
//	    }
//	    return err
//	}
//
//	movie.Header.Rerecords++
//	out, err := m64.Encode(movie)
//
// # Error Handling
//
// Decoding stops at the first invalid field. Every failure is one of the
// ParseError implementations, which name the failing field and byte offset.
// No partial Movie is ever returned.
//
// # Thread Safety
//
// Codec values are immutable and safe for concurrent use. A Movie is a plain
// value owned by its caller.
package m64
