package linker

import (
	"regexp"
	"strconv"
	"strings"
)

// Frame is one parsed stack-trace line.
type Frame struct {
	Ordinal  int
	Function string
	Args     string

	// Location is the text after " at ", empty when absent.
	Location string
}

var framePattern = regexp.MustCompile(`^#(\d+)\s+in\s+([^\s()]+)\s*\((.*)\)(?:\s+at\s+(\S.*))?$`)

// ParseFrame parses line against the frame grammar.
func ParseFrame(line string) (Frame, bool) {
	m := framePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Frame{}, false
	}
	ordinal, err := strconv.Atoi(m[1])
	if err != nil {
		return Frame{}, false
	}
	return Frame{
		Ordinal:  ordinal,
		Function: m[2],
		Args:     m[3],
		Location: m[4],
	}, true
}

// ParseFrames parses every matching line of trace, keeping trace order.
func ParseFrames(trace []string) []Frame {
	frames := make([]Frame, 0, len(trace))
	for _, line := range trace {
		if f, ok := ParseFrame(line); ok {
			frames = append(frames, f)
		}
	}
	return frames
}
