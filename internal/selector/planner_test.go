package selector_test

import (
	"testing"

	"github.com/hbomb79/Riptide/internal/format"
	"github.com/hbomb79/Riptide/internal/selector"
	"github.com/stretchr/testify/assert"
)

func Test_Plan_VideoSpecificIdentifier(t *testing.T) {
	plan := selector.Plan("137", format.KindVideo)

	assert.Equal(t, []string{
		"137+bestaudio/best",
		"137/best",
		"bestvideo[ext=mp4]+bestaudio[ext=m4a]/best",
		"bestvideo+bestaudio/best",
		"best",
	}, plan)
}

func Test_Plan_VideoCompoundSelectorSkipsPairing(t *testing.T) {
	plan := selector.Plan("best", format.KindVideo)

	assert.Equal(t, []string{
		"best",
		"bestvideo[ext=mp4]+bestaudio[ext=m4a]/best",
		"bestvideo+bestaudio/best",
	}, plan)
	assert.NotContains(t, plan, "best+bestaudio/best")
}

func Test_Plan_VideoEmptySelector(t *testing.T) {
	plan := selector.Plan("", format.KindVideo)

	assert.Equal(t, []string{
		"bestvideo[ext=mp4]+bestaudio[ext=m4a]/best",
		"bestvideo+bestaudio/best",
		"best",
	}, plan)
}

func Test_Plan_Audio(t *testing.T) {
	tests := []struct {
		summary  string
		selector string
		want     []string
	}{
		{
			summary:  "Specific identifier first",
			selector: "140",
			want:     []string{"140", "bestaudio[ext=m4a]", "bestaudio/best", "best"},
		},
		{
			summary:  "Empty selector",
			selector: "",
			want:     []string{"bestaudio[ext=m4a]", "bestaudio/best", "best"},
		},
		{
			summary:  "Duplicate of a fallback collapses",
			selector: "bestaudio/best",
			want:     []string{"bestaudio/best", "bestaudio[ext=m4a]", "best"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			assert.Equal(t, tt.want, selector.Plan(tt.selector, format.KindAudio))
		})
	}
}

func Test_Plan_Properties(t *testing.T) {
	inputs := []struct {
		selector string
		kind     format.Kind
	}{
		{"137", format.KindVideo},
		{"  137  ", format.KindVideo},
		{"bestvideo+bestaudio/best", format.KindVideo},
		{"", format.KindVideo},
		{"140", format.KindAudio},
		{"", format.KindAudio},
		{"stale-nonsense[x]", format.KindVideo},
	}

	for _, input := range inputs {
		first := selector.Plan(input.selector, input.kind)
		second := selector.Plan(input.selector, input.kind)

		assert.Equal(t, first, second, "planning must be deterministic")
		assert.NotEmpty(t, first)
		assert.Equal(t, "best", first[len(first)-1], "plan must end in the unconditional selector")

		seen := make(map[string]bool)
		for _, sel := range first {
			assert.False(t, seen[sel], "plan contains duplicate selector %q", sel)
			seen[sel] = true
		}
	}
}
