package telemetry

import "unicode/utf8"

// Payload limits, in characters.
const (
	inputLimit  = 10000
	inputHead   = 5000
	inputTail   = 2000
	outputLimit = 5000
	outputHead  = 2000
	outputTail  = 2000
)

const truncationMarker = "\n\n[... truncated ...]\n\n"

// Truncate keeps the first head and last tail characters of s when s is
// longer than limit. It reports whether anything was dropped.
func Truncate(s string, limit, head, tail int) (string, bool) {
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:head]) + truncationMarker + string(runes[len(runes)-tail:]), true
}

// prepare records payload sizes and truncates large payloads.
func prepare(e Event) Event {
	meta := make(map[string]any, len(e.Metadata)+4)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	meta["input_length"] = utf8.RuneCountInString(e.Input)
	meta["output_length"] = utf8.RuneCountInString(e.Output)

	var truncated bool
	if e.Input, truncated = Truncate(e.Input, inputLimit, inputHead, inputTail); truncated {
		meta["input_truncated"] = true
	}
	if e.Output, truncated = Truncate(e.Output, outputLimit, outputHead, outputTail); truncated {
		meta["output_truncated"] = true
	}
	e.Metadata = meta
	return e
}
