package artifact

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Line markers of the KLEE log formats.
const (
	infoKeyPrefix = "KLEE: done:"
	errorMarker   = "KLEE: ERROR:"
	noteMarker    = "KLEE: NOTE:"
	stackHeader   = "Stack:"
	frameMarker   = "#"
)

func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

// parseInfo captures every key:value line. Lines carrying the "KLEE: done:"
// prefix ("KLEE: done: explored paths = 3") are split on '=' when they hold no ':'.
func parseInfo(content string) RunInfo {
	info := make(RunInfo)
	for _, line := range splitLines(content) {
		line = strings.TrimSpace(line)
		stripped := false
		if rest, ok := strings.CutPrefix(line, infoKeyPrefix); ok {
			line = strings.TrimSpace(rest)
			stripped = true
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok && stripped {
			key, value, ok = strings.Cut(line, "=")
		}
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}

		if isDigits(value) {
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				info[key] = n
				continue
			}
		}
		info[key] = value
	}
	return info
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// parseMessages returns the error and note lines in file order, stamped with now.
func parseMessages(content string, now time.Time) []LogMessage {
	var messages []LogMessage
	for _, line := range splitLines(content) {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, errorMarker); ok {
			messages = append(messages, LogMessage{Kind: MessageError, Text: strings.TrimSpace(rest), ObservedAt: now})
		} else if rest, ok := strings.CutPrefix(line, noteMarker); ok {
			messages = append(messages, LogMessage{Kind: MessageNote, Text: strings.TrimSpace(rest), ObservedAt: now})
		}
	}
	return messages
}

// parseStackTrace collects the "#" lines following the "Stack:" header up to
// the first blank line.
func parseStackTrace(content string) []string {
	var frames []string
	inStack := false
	for _, line := range splitLines(content) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, stackHeader) {
			inStack = true
			continue
		}
		if !inStack {
			continue
		}
		if line == "" {
			break
		}
		if strings.HasPrefix(line, frameMarker) {
			frames = append(frames, line)
		}
	}
	return frames
}

// header holds the lines preceding the stack of a .err artifact.
type header struct {
	message string
	file    string
	line    int
}

func parseHeader(content string) header {
	var h header
	for _, line := range splitLines(content) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, stackHeader) {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Error":
			h.message = value
		case "File":
			h.file = value
		case "Line":
			if n, err := strconv.Atoi(value); err == nil {
				h.line = n
			}
		}
	}
	return h
}

var symbolicArrayPattern = regexp.MustCompile(`array\s+(\w+)\[(\d+)\]\s*:\s*w32\s*->\s*w8\s*=\s*symbolic`)

// parseSymbolicVars extracts symbolic array declarations. Anything else in
// the query file is ignored.
func parseSymbolicVars(content string) map[string]SymbolicVar {
	vars := make(map[string]SymbolicVar)
	for _, m := range symbolicArrayPattern.FindAllStringSubmatch(content, -1) {
		size, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		vars[m[1]] = SymbolicVar{Kind: "array", SizeBytes: size}
	}
	return vars
}
