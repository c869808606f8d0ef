package m64

import (
	"fmt"
	"time"
)

// Summary is a flattened, display-ready view of a movie header.
type Summary struct {
	UID             uint32    `json:"uid" yaml:"uid"`
	RecordedAt      time.Time `json:"recorded_at" yaml:"recorded_at"`
	VIFrames        uint32    `json:"vi_frames" yaml:"vi_frames"`
	InputFrames     uint32    `json:"input_frames" yaml:"input_frames"`
	Samples         int       `json:"samples" yaml:"samples"`
	Rerecords       uint32    `json:"rerecords" yaml:"rerecords"`
	FPS             uint8     `json:"fps" yaml:"fps"`
	ControllerCount uint8     `json:"controller_count" yaml:"controller_count"`
	StartType       string    `json:"movie_start_type" yaml:"movie_start_type"`
	Controllers     []string  `json:"controllers" yaml:"controllers"`
	RomName         string    `json:"rom_name" yaml:"rom_name"`
	RomCRC32        string    `json:"rom_crc32" yaml:"rom_crc32"`
	RomCountryCode  uint16    `json:"rom_country_code" yaml:"rom_country_code"`
	VideoPlugin     string    `json:"video_plugin" yaml:"video_plugin"`
	SoundPlugin     string    `json:"sound_plugin" yaml:"sound_plugin"`
	InputPlugin     string    `json:"input_plugin" yaml:"input_plugin"`
	RSPPlugin       string    `json:"rsp_plugin" yaml:"rsp_plugin"`
	Author          string    `json:"author" yaml:"author"`
	Description     string    `json:"description" yaml:"description"`

	// Length is the playback time implied by VIFrames at FPS.
	Length time.Duration `json:"length" yaml:"length"`
}

// Summarize flattens m for display. Text fields have their padding trimmed.
func Summarize(m *Movie) Summary {
	h := &m.Header
	s := Summary{
		UID:             h.UID,
		RecordedAt:      h.RecordingTime(),
		VIFrames:        h.VIFrames,
		InputFrames:     h.InputFrames,
		Samples:         len(m.Inputs),
		Rerecords:       h.Rerecords,
		FPS:             h.FPS,
		ControllerCount: h.ControllerCount,
		StartType:       h.StartType.String(),
		RomName:         h.RomInternalName.String(),
		RomCRC32:        formatCRC(h.RomCRC32),
		RomCountryCode:  h.RomCountryCode,
		VideoPlugin:     h.VideoPlugin.String(),
		SoundPlugin:     h.SoundPlugin.String(),
		InputPlugin:     h.InputPlugin.String(),
		RSPPlugin:       h.RSPPlugin.String(),
		Author:          h.Author.String(),
		Description:     h.Description.String(),
	}
	if h.FPS > 0 {
		s.Length = time.Duration(h.VIFrames) * time.Second / time.Duration(h.FPS)
	}
	for i, c := range h.Controllers {
		if !c.Present {
			continue
		}
		desc := "P" + string(rune('1'+i))
		if c.MemPak {
			desc += "+mempak"
		}
		if c.RumblePak {
			desc += "+rumblepak"
		}
		s.Controllers = append(s.Controllers, desc)
	}
	return s
}

func formatCRC(crc uint32) string {
	return fmt.Sprintf("%08X", crc)
}
