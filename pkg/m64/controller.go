package m64

import (
	"fmt"
	"strings"
)

// ControllerSlots is the number of controller ports on the console.
const ControllerSlots = 4

// ControllerStatus describes one controller port.
type ControllerStatus struct {
	Present   bool `json:"present" yaml:"present"`
	MemPak    bool `json:"mem_pak" yaml:"mem_pak"`
	RumblePak bool `json:"rumble_pak" yaml:"rumble_pak"`
}

// DecodeControllers unpacks the controller flags word.
func DecodeControllers(word uint32) [ControllerSlots]ControllerStatus {
	var out [ControllerSlots]ControllerStatus
	for i := range out {
		out[i] = ControllerStatus{
			Present:   word>>i&1 == 1,
			MemPak:    word>>(i+4)&1 == 1,
			RumblePak: word>>(i+8)&1 == 1,
		}
	}
	return out
}

// EncodeControllers packs controller statuses into a flags word. Bits 12..31
// of the result are always zero.
func EncodeControllers(statuses [ControllerSlots]ControllerStatus) uint32 {
	var word uint32
	for i, s := range statuses {
		word |= bit(s.Present) << i
		word |= bit(s.MemPak) << (i + 4)
		word |= bit(s.RumblePak) << (i + 8)
	}
	return word
}

// BitOrder selects how the 16 button flags map onto the low 16 bits of an
// input sample.
type BitOrder int

const (
	// LSBFirst maps button index 0 (D-pad right) to bit 0.
	LSBFirst BitOrder = iota
	// MSBFirst maps button index 0 (D-pad right) to bit 15.
	MSBFirst
)

// DefaultBitOrder is the order used by Mupen64 and by Decode/Encode.
const DefaultBitOrder = LSBFirst

func (o BitOrder) String() string {
	switch o {
	case LSBFirst:
		return "lsb"
	case MSBFirst:
		return "msb"
	}
	return fmt.Sprintf("BitOrder(%d)", int(o))
}

// ParseBitOrder accepts the names produced by BitOrder.String.
func ParseBitOrder(s string) (BitOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lsb", "lsb-first":
		return LSBFirst, nil
	case "msb", "msb-first":
		return MSBFirst, nil
	}
	return 0, fmt.Errorf("unknown bit order %q", s)
}

// Input is one frame of controller input.
type Input struct {
	DPadRight bool `json:"dpad_right,omitempty" yaml:"dpad_right,omitempty"`
	DPadLeft  bool `json:"dpad_left,omitempty" yaml:"dpad_left,omitempty"`
	DPadDown  bool `json:"dpad_down,omitempty" yaml:"dpad_down,omitempty"`
	DPadUp    bool `json:"dpad_up,omitempty" yaml:"dpad_up,omitempty"`
	Start     bool `json:"start,omitempty" yaml:"start,omitempty"`
	Z         bool `json:"z,omitempty" yaml:"z,omitempty"`
	B         bool `json:"b,omitempty" yaml:"b,omitempty"`
	A         bool `json:"a,omitempty" yaml:"a,omitempty"`
	CRight    bool `json:"c_right,omitempty" yaml:"c_right,omitempty"`
	CLeft     bool `json:"c_left,omitempty" yaml:"c_left,omitempty"`
	CDown     bool `json:"c_down,omitempty" yaml:"c_down,omitempty"`
	CUp       bool `json:"c_up,omitempty" yaml:"c_up,omitempty"`
	R         bool `json:"r,omitempty" yaml:"r,omitempty"`
	L         bool `json:"l,omitempty" yaml:"l,omitempty"`
	Reserved1 bool `json:"reserved_1,omitempty" yaml:"reserved_1,omitempty"`
	Reserved2 bool `json:"reserved_2,omitempty" yaml:"reserved_2,omitempty"`

	X int8 `json:"x" yaml:"x"`
	Y int8 `json:"y" yaml:"y"`
}

var buttonNames = [16]string{
	"R-Dpad", "L-Dpad", "D-Dpad", "U-Dpad", "Start", "Z", "B", "A",
	"C-Right", "C-Left", "C-Down", "C-Up", "R", "L", "Reserved1", "Reserved2",
}

// buttons returns the button flags in table order.
func (in *Input) buttons() [16]*bool {
	return [16]*bool{
		&in.DPadRight, &in.DPadLeft, &in.DPadDown, &in.DPadUp,
		&in.Start, &in.Z, &in.B, &in.A,
		&in.CRight, &in.CLeft, &in.CDown, &in.CUp,
		&in.R, &in.L, &in.Reserved1, &in.Reserved2,
	}
}

func buttonShift(index int, order BitOrder) uint {
	if order == MSBFirst {
		return uint(15 - index)
	}
	return uint(index)
}

// DecodeInput unpacks one input sample word using the given bit order.
func DecodeInput(word uint32, order BitOrder) Input {
	var in Input
	for i, b := range in.buttons() {
		*b = word>>buttonShift(i, order)&1 == 1
	}
	in.X = int8(uint8(word >> 16))
	in.Y = int8(uint8(word >> 24))
	return in
}

// EncodeInput packs an input sample into a word using the given bit order.
func EncodeInput(in Input, order BitOrder) uint32 {
	var word uint32
	for i, b := range in.buttons() {
		word |= bit(*b) << buttonShift(i, order)
	}
	word |= uint32(uint8(in.X)) << 16
	word |= uint32(uint8(in.Y)) << 24
	return word
}

// Pressed returns the names of the pressed buttons in table order.
func (in Input) Pressed() []string {
	var names []string
	for i, b := range in.buttons() {
		if *b {
			names = append(names, buttonNames[i])
		}
	}
	return names
}

func (in Input) String() string {
	return fmt.Sprintf("[%s] X=%d Y=%d", strings.Join(in.Pressed(), " "), in.X, in.Y)
}

func bit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
