package m64

import (
	"errors"
	"fmt"
	"strings"
)

// Field identifies a header field in error messages.
type Field int

const (
	FieldSignature Field = iota
	FieldVersion
	FieldUID
	FieldVIFrames
	FieldRerecords
	FieldFPS
	FieldControllerCount
	FieldInputFrames
	FieldMovieStartType
	FieldControllerFlags
	FieldRomInternalName
	FieldRomCRC32
	FieldRomCountryCode
	FieldVideoPlugin
	FieldSoundPlugin
	FieldInputPlugin
	FieldRSPPlugin
	FieldAuthor
	FieldDescription
	FieldReserved
	FieldInputData
)

var fieldNames = [...]string{
	FieldSignature:       "Signature",
	FieldVersion:         "Version",
	FieldUID:             "Uid",
	FieldVIFrames:        "ViFrames",
	FieldRerecords:       "Rerecords",
	FieldFPS:             "Fps",
	FieldControllerCount: "ControllerCount",
	FieldInputFrames:     "InputFrames",
	FieldMovieStartType:  "MovieStartType",
	FieldControllerFlags: "ControllerFlags",
	FieldRomInternalName: "RomInternalName",
	FieldRomCRC32:        "RomCrc32",
	FieldRomCountryCode:  "RomCountryCode",
	FieldVideoPlugin:     "VideoPlugin",
	FieldSoundPlugin:     "SoundPlugin",
	FieldInputPlugin:     "InputPlugin",
	FieldRSPPlugin:       "RspPlugin",
	FieldAuthor:          "Author",
	FieldDescription:     "Description",
	FieldReserved:        "Reserved",
	FieldInputData:       "InputData",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ErrorKind tags each ParseError implementation.
type ErrorKind int

const (
	KindInvalidSignature ErrorKind = iota + 1
	KindInvalidVersion
	KindReservedNotZero
	KindNotEnoughBytes
	KindMisalignedInput
	KindInvalidMovieStartType
	KindInvalidText
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidSignature:
		return "invalid_signature"
	case KindInvalidVersion:
		return "invalid_version"
	case KindReservedNotZero:
		return "reserved_not_zero"
	case KindNotEnoughBytes:
		return "not_enough_bytes"
	case KindMisalignedInput:
		return "misaligned_input"
	case KindInvalidMovieStartType:
		return "invalid_movie_start_type"
	case KindInvalidText:
		return "invalid_text"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError is returned by every failed decode. The set of implementations
// is closed; switch on Kind or use errors.As with the concrete types.
type ParseError interface {
	error
	Kind() ErrorKind
	// ByteOffset is the offset of the first byte of the failing region.
	ByteOffset() int
	isParseError()
}

// AsParseError finds the first ParseError in err's chain.
func AsParseError(err error) (ParseError, bool) {
	var perr ParseError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}

// InvalidSignatureError reports a magic mismatch. Got holds the first four
// bytes of the buffer, or all of them when it is shorter.
type InvalidSignatureError struct {
	Got []byte
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("Invalid file signature, expected [4D 36 34 1A], got %s", hexList(e.Got))
}
func (e *InvalidSignatureError) Kind() ErrorKind { return KindInvalidSignature }
func (e *InvalidSignatureError) ByteOffset() int { return offsetSignature }
func (e *InvalidSignatureError) isParseError()   {}

// InvalidVersionError reports a version other than Version.
type InvalidVersionError struct {
	Got uint32
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("Invalid version, expected %d, got %d", Version, e.Got)
}
func (e *InvalidVersionError) Kind() ErrorKind { return KindInvalidVersion }
func (e *InvalidVersionError) ByteOffset() int { return offsetVersion }
func (e *InvalidVersionError) isParseError()   {}

// ReservedNotZeroError reports a reserved region holding a non-zero byte.
type ReservedNotZeroError struct {
	Offset int
}

func (e *ReservedNotZeroError) Error() string {
	return fmt.Sprintf("Reserved data is not all zero at offset 0x%X", e.Offset)
}
func (e *ReservedNotZeroError) Kind() ErrorKind { return KindReservedNotZero }
func (e *ReservedNotZeroError) ByteOffset() int { return e.Offset }
func (e *ReservedNotZeroError) isParseError()   {}

// NotEnoughBytesError reports a buffer that ended inside Field.
type NotEnoughBytesError struct {
	Field    Field
	Offset   int
	Requires int
}

func (e *NotEnoughBytesError) Error() string {
	return fmt.Sprintf("Not enough bytes to read to make up for the %s field, requires %d more bytes", e.Field, e.Requires)
}
func (e *NotEnoughBytesError) Kind() ErrorKind { return KindNotEnoughBytes }
func (e *NotEnoughBytesError) ByteOffset() int { return e.Offset }
func (e *NotEnoughBytesError) isParseError()   {}

// MisalignedInputError reports input data whose length is not a multiple of
// four. Remainder is the number of trailing bytes that do not form a sample.
type MisalignedInputError struct {
	Offset    int
	Remainder int
}

func (e *MisalignedInputError) Error() string {
	return fmt.Sprintf("Input data is not 4 bytes aligned, final input data size is %d bytes", e.Remainder)
}
func (e *MisalignedInputError) Kind() ErrorKind { return KindMisalignedInput }
func (e *MisalignedInputError) ByteOffset() int { return e.Offset }
func (e *MisalignedInputError) isParseError()   {}

// InvalidMovieStartTypeError reports a start type code other than 1, 2 or 4.
type InvalidMovieStartTypeError struct {
	Got uint16
}

func (e *InvalidMovieStartTypeError) Error() string { return "Invalid movie start type" }
func (e *InvalidMovieStartTypeError) Kind() ErrorKind {
	return KindInvalidMovieStartType
}
func (e *InvalidMovieStartTypeError) ByteOffset() int { return offsetMovieStartType }
func (e *InvalidMovieStartTypeError) isParseError()   {}

// InvalidTextError reports a text field that is not valid UTF-8.
type InvalidTextError struct {
	Field  Field
	Offset int
}

func (e *InvalidTextError) Error() string {
	return fmt.Sprintf("Invalid UTF-8 string for field %s", e.Field)
}
func (e *InvalidTextError) Kind() ErrorKind { return KindInvalidText }
func (e *InvalidTextError) ByteOffset() int { return e.Offset }
func (e *InvalidTextError) isParseError()   {}

// TextTooLongError is returned when setting a text field to a value that
// does not fit its fixed capacity. It is never produced by Decode.
type TextTooLongError struct {
	Capacity int
	Length   int
}

func (e *TextTooLongError) Error() string {
	return fmt.Sprintf("text is %d bytes, field capacity is %d bytes", e.Length, e.Capacity)
}

// hexList formats b the way the signature error has always printed it.
func hexList(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%X", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
