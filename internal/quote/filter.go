package quote

import (
	"regexp"
	"strings"
)

// DefaultReservedMarkers are the splice points used by the code generators
// this tool was written for. Each stands for a whole list of items, so a
// block holding one is not formattable as ordinary Rust.
var DefaultReservedMarkers = []string{"errors", "preludes", "defuns", "part_core"}

var identifierPattern = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)

// IsIdentifier reports whether s can follow Marker as an interpolation.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// repetitionClose matches the end of a #( ... )* style repetition on its own
// line, with or without a separator and in its one-or-more form.
const repetitionClose = `\}?\)[,;]?[*+]`

// SkipReason explains why a block is not sent to the formatter.
type SkipReason string

const (
	SkipNone           SkipReason = ""
	SkipEmpty          SkipReason = "empty block"
	SkipReserved       SkipReason = "reserved marker or repetition"
	SkipPlaceholder    SkipReason = "block already contains " + Placeholder
	// SkipUnterminatedLn never comes from a scanned block, whose body lines
	// are all followed by the closing line. It guards text passed in directly.
	SkipUnterminatedLn SkipReason = "last line has no terminator"
)

// Filter rejects blocks the formatter cannot safely handle.
type Filter struct {
	pattern *regexp.Regexp
}

// NewFilter builds a Filter that skips blocks containing any of the given
// reserved markers, or a repetition close, alone on a line.
func NewFilter(reservedMarkers []string) (*Filter, error) {
	alternatives := make([]string, 0, len(reservedMarkers)+1)
	for _, m := range reservedMarkers {
		if !IsIdentifier(m) {
			return nil, &InvalidMarkerError{Marker: m}
		}
		alternatives = append(alternatives, regexp.QuoteMeta(Marker+m))
	}
	alternatives = append(alternatives, repetitionClose)

	pattern, err := regexp.Compile(`(?m)^\s*(?:` + strings.Join(alternatives, "|") + `)\s*$`)
	if err != nil {
		return nil, err
	}
	return &Filter{pattern: pattern}, nil
}

// Reason returns why text must be skipped, or SkipNone.
func (f *Filter) Reason(text string) SkipReason {
	switch {
	case text == "":
		return SkipEmpty
	case f.pattern.MatchString(text):
		return SkipReserved
	case strings.Contains(text, Placeholder):
		return SkipPlaceholder
	case !strings.HasSuffix(text, "\n"):
		return SkipUnterminatedLn
	}
	return SkipNone
}

// ShouldSkip reports whether text must be left untouched.
func (f *Filter) ShouldSkip(text string) bool {
	return f.Reason(text) != SkipNone
}
