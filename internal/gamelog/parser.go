package gamelog

import (
	"strings"

	"github.com/torchtrack/torchtrack/internal/domain"
)

// ParseLine classifies a single log line. Trailing line terminators are
// stripped first; an empty line after stripping yields no event.
//
// Return value nil means the line matched no known pattern, which is the
// normal case for the bulk of the log and never an error.
func ParseLine(line string) domain.Event {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil
	}
	return Classify(line)
}

// ParseLines classifies a burst of lines, preserving input order and
// omitting non-matches. Classification cannot fail: malformed fields inside
// an otherwise-promising line simply fail that recognizer, so the result is
// never partial.
func ParseLines(lines []string) []domain.Event {
	events := make([]domain.Event, 0, len(lines))
	for _, line := range lines {
		if ev := ParseLine(line); ev != nil {
			events = append(events, ev)
		}
	}
	return events
}
