package format

import "strings"

// Policy holds the tunable constants used when deriving the quality ladder.
// The exact weights are a preference ordering, not a correctness constraint,
// so they are surfaced through configuration rather than hardcoded.
type Policy struct {
	MinHeight          int     `yaml:"min_height" env:"LADDER_MIN_HEIGHT" env-default:"144"`
	ContainerWeight    float64 `yaml:"container_weight" env:"LADDER_CONTAINER_WEIGHT" env-default:"100"`
	ProtocolWeight     float64 `yaml:"protocol_weight" env:"LADDER_PROTOCOL_WEIGHT" env-default:"50"`
	MuxedAudioWeight   float64 `yaml:"muxed_audio_weight" env:"LADDER_MUXED_AUDIO_WEIGHT" env-default:"25"`
	SegmentedPenalty   float64 `yaml:"segmented_penalty" env:"LADDER_SEGMENTED_PENALTY" env-default:"10"`
	BitrateScale       float64 `yaml:"bitrate_scale" env:"LADDER_BITRATE_SCALE" env-default:"1000"`
	FrameRateScale     float64 `yaml:"frame_rate_scale" env:"LADDER_FRAME_RATE_SCALE" env-default:"10"`
	PreferredContainer string  `yaml:"preferred_container" env:"LADDER_PREFERRED_CONTAINER" env-default:"mp4"`
	PreferredAudioExt  string  `yaml:"preferred_audio_ext" env:"LADDER_PREFERRED_AUDIO_EXT" env-default:"m4a"`
}

// DefaultPolicy returns the weights used when no configuration overrides
// them. These mirror the env-defaults above so that library consumers and
// tests get identical behaviour to an unconfigured server.
func DefaultPolicy() Policy {
	return Policy{
		MinHeight:          144,
		ContainerWeight:    100,
		ProtocolWeight:     50,
		MuxedAudioWeight:   25,
		SegmentedPenalty:   10,
		BitrateScale:       1000,
		FrameRateScale:     10,
		PreferredContainer: "mp4",
		PreferredAudioExt:  "m4a",
	}
}

// Score ranks a candidate against others claiming the same height; higher is
// preferred. Categorical preferences dominate: a muxed, plainly-fetchable
// mp4 should beat a segmented manifest stream of the same height, while the
// scaled bitrate and frame-rate bonuses break ties within a category and
// still let a high-bitrate manifest win when no progressive alternative
// exists. Absent numeric fields contribute zero; scoring never fails on a
// sparse record.
func (p Policy) Score(f *CandidateFormat) float64 {
	score := 0.0

	if f.Ext == p.PreferredContainer {
		score += p.ContainerWeight
	}

	// Segmented checked first: "http_dash_segments" would otherwise
	// pass the plain http prefix test.
	if isSegmentedProtocol(f.Protocol) {
		score -= p.SegmentedPenalty
	} else if isDirectProtocol(f.Protocol) {
		score += p.ProtocolWeight
	}

	if f.HasAudio() {
		score += p.MuxedAudioWeight
	}

	if p.BitrateScale > 0 {
		score += f.Bitrate / p.BitrateScale
	}
	if p.FrameRateScale > 0 {
		score += f.FrameRate / p.FrameRateScale
	}

	return score
}

func isDirectProtocol(protocol string) bool {
	return strings.HasPrefix(protocol, "http")
}

func isSegmentedProtocol(protocol string) bool {
	return strings.Contains(protocol, "m3u8") || strings.Contains(protocol, "dash")
}
