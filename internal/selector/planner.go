// Package selector reifies the download retry policy as data: given the
// caller's chosen selector it produces the ordered list of selector strings
// the orchestrator should attempt against the engine. Keeping the policy as
// a plain value keeps it independently testable from the invocation and
// cleanup machinery that consumes it.
package selector

import (
	"strings"

	"github.com/hbomb79/Riptide/internal/format"
)

// Plan expands the caller-supplied selector into an ordered fallback chain
// of increasing generality. Format identifiers surfaced by a fetch can
// become unselectable by the time the download runs (engine-side expiry), so
// a specific identifier is first paired with a best-audio complement, then
// tried with generic fallbacks, before fully generic selectors take over.
// The result is deterministic, free of duplicates (first occurrence wins)
// and always terminates in the unconditional "best" selector.
func Plan(selector string, kind format.Kind) []string {
	selector = strings.TrimSpace(selector)

	var attempts []string
	if kind == format.KindAudio {
		attempts = []string{
			selector,
			"bestaudio[ext=m4a]",
			"bestaudio/best",
			"best",
		}
	} else if selector == "" || isCompound(selector) {
		// The caller handed us a generic expression already; explicit
		// pairing variants would be nonsense.
		attempts = []string{
			selector,
			"bestvideo[ext=mp4]+bestaudio[ext=m4a]/best",
			"bestvideo+bestaudio/best",
			"best",
		}
	} else {
		attempts = []string{
			selector + "+bestaudio/best",
			selector + "/best",
			"bestvideo[ext=mp4]+bestaudio[ext=m4a]/best",
			"bestvideo+bestaudio/best",
			"best",
		}
	}

	seen := make(map[string]struct{}, len(attempts))
	plan := make([]string, 0, len(attempts))
	for _, attempt := range attempts {
		if attempt == "" {
			continue
		}
		if _, dup := seen[attempt]; dup {
			continue
		}

		seen[attempt] = struct{}{}
		plan = append(plan, attempt)
	}

	return plan
}

// isCompound reports whether the selector is already a generic or compound
// engine expression rather than a bare format identifier.
func isCompound(selector string) bool {
	return strings.ContainsAny(selector, "+/[]*") || strings.HasPrefix(selector, "best") || strings.HasPrefix(selector, "worst")
}
