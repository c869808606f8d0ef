package m64

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// HeaderSize is the size of the fixed header region.
	HeaderSize = 0x400
	// InputSize is the size of one encoded input sample.
	InputSize = 4
	// Version is the only supported format version.
	Version uint32 = 3
)

// Signature is the file magic, "M64\x1A".
var Signature = [4]byte{0x4D, 0x36, 0x34, 0x1A}

// Field offsets within the header.
const (
	offsetSignature       = 0x000
	offsetVersion         = 0x004
	offsetUID             = 0x008
	offsetVIFrames        = 0x00C
	offsetRerecords       = 0x010
	offsetFPS             = 0x014
	offsetControllerCount = 0x015
	offsetReserved16      = 0x016
	offsetInputFrames     = 0x018
	offsetMovieStartType  = 0x01C
	offsetReserved1E      = 0x01E
	offsetControllerFlags = 0x020
	offsetReserved24      = 0x024
	offsetRomInternalName = 0x0C4
	offsetRomCRC32        = 0x0E4
	offsetRomCountryCode  = 0x0E8
	offsetReservedEA      = 0x0EA
	offsetVideoPlugin     = 0x122
	offsetSoundPlugin     = 0x162
	offsetInputPlugin     = 0x1A2
	offsetRSPPlugin       = 0x1E2
	offsetAuthor          = 0x222
	offsetDescription     = 0x300
)

// MovieStartType is the state playback starts from.
type MovieStartType uint16

const (
	// StartSnapshot loads a savestate stored next to the movie (.st).
	StartSnapshot MovieStartType = 1
	// StartPowerOn starts from console power on.
	StartPowerOn MovieStartType = 2
	// StartEEPROM starts from power on with saved EEPROM contents.
	StartEEPROM MovieStartType = 4
)

// DefaultMovieStartType is used for headers built in code.
const DefaultMovieStartType = StartPowerOn

// Valid reports whether t is one of the defined start types.
func (t MovieStartType) Valid() bool {
	switch t {
	case StartSnapshot, StartPowerOn, StartEEPROM:
		return true
	}
	return false
}

func (t MovieStartType) String() string {
	switch t {
	case StartSnapshot:
		return "snapshot"
	case StartPowerOn:
		return "power-on"
	case StartEEPROM:
		return "eeprom"
	}
	return fmt.Sprintf("MovieStartType(%d)", uint16(t))
}

// MarshalText renders the start type by name.
func (t MovieStartType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Header is the metadata block at the start of a movie.
// Follows https://tasvideos.org/EmulatorResources/Mupen/M64.
type Header struct {
	// UID ties the movie to its savestate. Mupen64 writes the recording
	// time here, in unix seconds.
	UID             uint32         `json:"uid" yaml:"uid"`
	VIFrames        uint32         `json:"vi_frames" yaml:"vi_frames"`
	Rerecords       uint32         `json:"rerecords" yaml:"rerecords"`
	FPS             uint8          `json:"fps" yaml:"fps"`
	ControllerCount uint8          `json:"controller_count" yaml:"controller_count"`
	InputFrames     uint32         `json:"input_frames" yaml:"input_frames"`
	StartType       MovieStartType `json:"movie_start_type" yaml:"movie_start_type"`

	Controllers [ControllerSlots]ControllerStatus `json:"controllers" yaml:"controllers"`

	RomInternalName Text32 `json:"rom_internal_name" yaml:"rom_internal_name"`
	RomCRC32        uint32 `json:"rom_crc32" yaml:"rom_crc32"`
	RomCountryCode  uint16 `json:"rom_country_code" yaml:"rom_country_code"`

	VideoPlugin Text64 `json:"video_plugin" yaml:"video_plugin"`
	SoundPlugin Text64 `json:"sound_plugin" yaml:"sound_plugin"`
	InputPlugin Text64 `json:"input_plugin" yaml:"input_plugin"`
	RSPPlugin   Text64 `json:"rsp_plugin" yaml:"rsp_plugin"`

	Author      Text222 `json:"author" yaml:"author"`
	Description Text256 `json:"description" yaml:"description"`
}

// NewHeader returns a header for a movie built in code: power-on start,
// 60 fps, one controller plugged in.
func NewHeader() Header {
	h := Header{
		StartType:       DefaultMovieStartType,
		FPS:             60,
		ControllerCount: 1,
	}
	h.Controllers[0].Present = true
	return h
}

// RecordingTime interprets UID as unix seconds.
func (h *Header) RecordingTime() time.Time {
	return time.Unix(int64(h.UID), 0).UTC()
}

// decodeHeader parses the header from the front of data. It stops at the
// first invalid field.
func decodeHeader(data []byte) (Header, error) {
	var h Header
	c := &cursor{buf: data}

	if len(data) < len(Signature) || !bytes.Equal(data[:len(Signature)], Signature[:]) {
		got := data
		if len(got) > len(Signature) {
			got = got[:len(Signature)]
		}
		return h, &InvalidSignatureError{Got: bytes.Clone(got)}
	}
	c.pos = len(Signature)

	version, err := c.u32(FieldVersion)
	if err != nil {
		return h, err
	}
	if version != Version {
		return h, &InvalidVersionError{Got: version}
	}

	if h.UID, err = c.u32(FieldUID); err != nil {
		return h, err
	}
	if h.VIFrames, err = c.u32(FieldVIFrames); err != nil {
		return h, err
	}
	if h.Rerecords, err = c.u32(FieldRerecords); err != nil {
		return h, err
	}
	if h.FPS, err = c.u8(FieldFPS); err != nil {
		return h, err
	}
	if h.ControllerCount, err = c.u8(FieldControllerCount); err != nil {
		return h, err
	}
	if err := c.reserved(offsetInputFrames - offsetReserved16); err != nil {
		return h, err
	}
	if h.InputFrames, err = c.u32(FieldInputFrames); err != nil {
		return h, err
	}

	startType, err := c.u16(FieldMovieStartType)
	if err != nil {
		return h, err
	}
	h.StartType = MovieStartType(startType)
	if !h.StartType.Valid() {
		return h, &InvalidMovieStartTypeError{Got: startType}
	}
	if err := c.reserved(offsetControllerFlags - offsetReserved1E); err != nil {
		return h, err
	}

	flags, err := c.u32(FieldControllerFlags)
	if err != nil {
		return h, err
	}
	h.Controllers = DecodeControllers(flags)
	if err := c.reserved(offsetRomInternalName - offsetReserved24); err != nil {
		return h, err
	}

	if err := readText(c, h.RomInternalName[:], FieldRomInternalName); err != nil {
		return h, err
	}
	if h.RomCRC32, err = c.u32(FieldRomCRC32); err != nil {
		return h, err
	}
	if h.RomCountryCode, err = c.u16(FieldRomCountryCode); err != nil {
		return h, err
	}
	if err := c.reserved(offsetVideoPlugin - offsetReservedEA); err != nil {
		return h, err
	}

	texts := []struct {
		dst   []byte
		field Field
	}{
		{h.VideoPlugin[:], FieldVideoPlugin},
		{h.SoundPlugin[:], FieldSoundPlugin},
		{h.InputPlugin[:], FieldInputPlugin},
		{h.RSPPlugin[:], FieldRSPPlugin},
		{h.Author[:], FieldAuthor},
		{h.Description[:], FieldDescription},
	}
	for _, t := range texts {
		if err := readText(c, t.dst, t.field); err != nil {
			return h, err
		}
	}

	return h, nil
}

// putHeader writes h into the first HeaderSize bytes of dst. Reserved
// regions are left as the zero bytes dst already holds.
func putHeader(dst []byte, h *Header) error {
	startType := h.StartType
	if startType == 0 {
		startType = DefaultMovieStartType
	}
	if !startType.Valid() {
		return &InvalidMovieStartTypeError{Got: uint16(startType)}
	}

	le := binary.LittleEndian
	copy(dst[offsetSignature:], Signature[:])
	le.PutUint32(dst[offsetVersion:], Version)
	le.PutUint32(dst[offsetUID:], h.UID)
	le.PutUint32(dst[offsetVIFrames:], h.VIFrames)
	le.PutUint32(dst[offsetRerecords:], h.Rerecords)
	dst[offsetFPS] = h.FPS
	dst[offsetControllerCount] = h.ControllerCount
	le.PutUint32(dst[offsetInputFrames:], h.InputFrames)
	le.PutUint16(dst[offsetMovieStartType:], uint16(startType))
	le.PutUint32(dst[offsetControllerFlags:], EncodeControllers(h.Controllers))
	copy(dst[offsetRomInternalName:], h.RomInternalName[:])
	le.PutUint32(dst[offsetRomCRC32:], h.RomCRC32)
	le.PutUint16(dst[offsetRomCountryCode:], h.RomCountryCode)
	copy(dst[offsetVideoPlugin:], h.VideoPlugin[:])
	copy(dst[offsetSoundPlugin:], h.SoundPlugin[:])
	copy(dst[offsetInputPlugin:], h.InputPlugin[:])
	copy(dst[offsetRSPPlugin:], h.RSPPlugin[:])
	copy(dst[offsetAuthor:], h.Author[:])
	copy(dst[offsetDescription:], h.Description[:])
	return nil
}

// MarshalBinary returns the 1024-byte encoded header.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	if err := putHeader(buf, h); err != nil {
		return nil, err
	}
	return buf, nil
}

// UnmarshalBinary decodes a header from exactly HeaderSize bytes or more;
// bytes past the header are ignored.
func (h *Header) UnmarshalBinary(data []byte) error {
	decoded, err := decodeHeader(data)
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}
