package format

import (
	"regexp"
	"strconv"
)

type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// CandidateFormat is one row of the raw format enumeration produced by the
// extraction engine. Almost every field is optional; the engine frequently
// omits resolution data outright, encodes it in a free-text note, or marks
// absent codecs with the sentinel string "none". Consumers must treat the
// zero value of any field as "not reported".
type CandidateFormat struct {
	FormatID   string  `json:"format_id"`
	Height     int     `json:"height"`
	FormatNote string  `json:"format_note"`
	Resolution string  `json:"resolution"`
	Ext        string  `json:"ext"`
	Protocol   string  `json:"protocol"`
	VideoCodec string  `json:"vcodec"`
	AudioCodec string  `json:"acodec"`
	Bitrate    float64 `json:"tbr"`
	FrameRate  float64 `json:"fps"`
	AudioRate  float64 `json:"abr"`
}

// HasVideo reports whether this format carries a video stream. The engine
// uses "none" (rather than an empty field) for formats it knows to be
// audio-only, so both spellings of absence are handled.
func (f *CandidateFormat) HasVideo() bool {
	return f.VideoCodec != "" && f.VideoCodec != "none"
}

func (f *CandidateFormat) HasAudio() bool {
	return f.AudioCodec != "" && f.AudioCodec != "none"
}

var (
	noteHeightPattern = regexp.MustCompile(`(?i)(\d{3,4})p`)
	resolutionPattern = regexp.MustCompile(`(\d+)x(\d+)`)
)

// NormalizeHeight extracts a best-effort vertical resolution from the
// candidate. Precedence, first match wins:
//  1. a positive numeric height field
//  2. a "720p"-style token inside the free-text format note
//  3. the height component of a "1920x1080"-style resolution string
//
// The boolean is false when none of these yield a usable height; such
// formats are excluded from the height-keyed ladder rather than being
// assigned height zero (zero is reserved for audio and fallback rows).
func NormalizeHeight(f *CandidateFormat) (int, bool) {
	if f.Height > 0 {
		return f.Height, true
	}

	if match := noteHeightPattern.FindStringSubmatch(f.FormatNote); match != nil {
		if height, err := strconv.Atoi(match[1]); err == nil && height > 0 {
			return height, true
		}
	}

	if match := resolutionPattern.FindStringSubmatch(f.Resolution); match != nil {
		if height, err := strconv.Atoi(match[2]); err == nil && height > 0 {
			return height, true
		}
	}

	return 0, false
}
