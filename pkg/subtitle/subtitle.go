// Package subtitle flattens SRT-formatted text into a plain utterance
// suitable for speech synthesis.
package subtitle

import "strings"

// cueMarker separates the start and end timestamps of an SRT cue line.
const cueMarker = "-->"

// Normalize strips SRT cue indices and time ranges from raw, returning the
// remaining text lines joined by single spaces. Plain text without a cue
// marker is returned unchanged. Normalize never fails: input that does not
// parse as SRT degrades to the original text with newlines collapsed.
func Normalize(raw string) string {
	if !strings.Contains(raw, cueMarker) {
		return raw
	}

	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, cueMarker) {
			continue
		}
		// A pure-digit line is a cue index. Real text that happens to be
		// all digits is dropped too; that loss is accepted.
		if isNumeric(line) {
			continue
		}
		kept = append(kept, line)
	}

	if len(kept) == 0 {
		return strings.Join(strings.Fields(raw), " ")
	}

	return strings.Join(kept, " ")
}

// IsSubtitle reports whether raw looks like SRT-formatted text.
func IsSubtitle(raw string) bool {
	return strings.Contains(raw, cueMarker) && strings.Contains(raw, "\n")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
