package format

import (
	"fmt"
	"sort"
)

const (
	BestAvailableLabel = "Best Available"
	AudioOnlyLabel     = "Audio Only"

	// Selectors handed to the engine for the guaranteed fallback rows.
	BestAvailableSelector = "best"
	BestAudioSelector     = "bestaudio/best"
)

// QualityOption is one entry of the ladder surfaced to the caller. The
// selector is either a concrete format identifier from the enumeration, or a
// generic engine expression for the fallback rows.
type QualityOption struct {
	Label    string `json:"label"`
	Selector string `json:"selector"`
	Kind     Kind   `json:"kind"`
	Height   int    `json:"height"`
}

// BuildLadder derives the deduplicated, height-ordered list of quality
// options from the engine's raw format enumeration.
//
// Video-capable formats are grouped by normalized height; within each group
// only the Score-preferred representative survives. Heights below the
// policy minimum are dropped. A generic "Best Available" row is always
// appended so the ladder is never video-empty, and exactly one audio row is
// always present (the best audio-only format, or a generic fallback when the
// enumeration carries none). Labels are unique; first occurrence wins.
func (p Policy) BuildLadder(formats []CandidateFormat) []QualityOption {
	byHeight := make(map[int]*CandidateFormat)
	var bestAudio *CandidateFormat

	for i := range formats {
		f := &formats[i]
		if f.FormatID == "" {
			continue
		}

		if f.HasVideo() {
			height, ok := NormalizeHeight(f)
			if !ok || height < p.MinHeight {
				continue
			}

			if prev, found := byHeight[height]; !found || p.Score(f) > p.Score(prev) {
				byHeight[height] = f
			}
			continue
		}

		if f.HasAudio() {
			if bestAudio == nil || p.betterAudio(f, bestAudio) {
				bestAudio = f
			}
		}
	}

	heights := make([]int, 0, len(byHeight))
	for h := range byHeight {
		heights = append(heights, h)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))

	options := make([]QualityOption, 0, len(heights)+2)
	for _, h := range heights {
		options = append(options, QualityOption{
			Label:    fmt.Sprintf("%dp", h),
			Selector: byHeight[h].FormatID,
			Kind:     KindVideo,
			Height:   h,
		})
	}

	options = append(options, QualityOption{
		Label:    BestAvailableLabel,
		Selector: BestAvailableSelector,
		Kind:     KindVideo,
	})

	audioSelector := BestAudioSelector
	if bestAudio != nil {
		audioSelector = bestAudio.FormatID
	}
	options = append(options, QualityOption{
		Label:    AudioOnlyLabel,
		Selector: audioSelector,
		Kind:     KindAudio,
	})

	return dedupeByLabel(options)
}

// betterAudio compares two audio-only candidates, favouring higher audio
// bitrate with a preference bump for the high-compatibility container.
func (p Policy) betterAudio(a, b *CandidateFormat) bool {
	return p.audioRank(a) > p.audioRank(b)
}

func (p Policy) audioRank(f *CandidateFormat) float64 {
	rank := f.AudioRate
	if f.Ext == p.PreferredAudioExt {
		rank += p.MuxedAudioWeight
	}

	return rank
}

func dedupeByLabel(options []QualityOption) []QualityOption {
	seen := make(map[string]struct{}, len(options))
	deduped := options[:0]
	for _, opt := range options {
		if _, dup := seen[opt.Label]; dup {
			continue
		}

		seen[opt.Label] = struct{}{}
		deduped = append(deduped, opt)
	}

	return deduped
}
