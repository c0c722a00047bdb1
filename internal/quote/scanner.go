// Package quote finds the bodies of quote! invocations in Rust source,
// disguises them as ordinary Rust items so that rustfmt accepts them, and
// splices the formatted result back into the file.
package quote

import (
	"regexp"
	"strings"
)

// DefaultIndentWidth is the number of spaces per nesting level assumed for
// the source surrounding a quote! block.
const DefaultIndentWidth = 4

var startPattern = regexp.MustCompile(`quote!\s*[({]$`)

// Block is the body of a single quote! invocation.
type Block struct {
	// Lines holds the raw body lines, each with its line terminator.
	Lines []string
	// Depth is the number of wrapper levels needed to reproduce the body's
	// indentation once rustfmt has re-indented it.
	Depth int
	// Indent is the leading whitespace of the quote! line. The block ends at
	// the first line that starts with exactly this prefix followed by ) or }.
	Indent string
	// StartLine is the 1-based line number of the quote! line.
	StartLine int
}

// Text returns the block body as a single string.
func (b *Block) Text() string {
	return strings.Join(b.Lines, "")
}

func (b *Block) closedBy(line string) bool {
	if !strings.HasPrefix(line, b.Indent) || len(line) == len(b.Indent) {
		return false
	}
	c := line[len(b.Indent)]
	return c == ')' || c == '}'
}

// Segment is a contiguous part of a scanned file: either lines that are
// copied through untouched, or the body of a quote! block.
type Segment struct {
	Lines []string
	Block *Block
}

// Scan partitions lines into segments. The quote! line itself and the line
// that closes a block both belong to the surrounding plain segments.
//
// If the input ends inside a block, the buffered body is returned as a plain
// segment together with an *UnterminatedBlockError, so no line is lost.
func Scan(lines []string, indentWidth int) ([]Segment, error) {
	if indentWidth < 1 {
		indentWidth = DefaultIndentWidth
	}

	var segments []Segment
	var plain []string
	flush := func() {
		if len(plain) > 0 {
			segments = append(segments, Segment{Lines: plain})
			plain = nil
		}
	}

	var current *Block
	for i, line := range lines {
		if current != nil {
			if current.closedBy(line) {
				segments = append(segments, Segment{Block: current})
				current = nil
				plain = append(plain, line)
				continue
			}
			current.Lines = append(current.Lines, line)
			continue
		}

		plain = append(plain, line)
		if startPattern.MatchString(trimEOL(line)) {
			flush()
			indent := leadingSpaces(line)
			current = &Block{
				Depth:     len(indent)/indentWidth + 1,
				Indent:    indent,
				StartLine: i + 1,
			}
		}
	}

	if current != nil {
		plain = append(plain, current.Lines...)
		flush()
		return segments, &UnterminatedBlockError{Line: current.StartLine}
	}
	flush()
	return segments, nil
}

// SplitLines splits s after every "\n". The last element has no terminator
// if s does not end with one.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Join concatenates every segment, reproducing the text that was scanned.
func Join(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		if s.Block != nil {
			sb.WriteString(s.Block.Text())
			continue
		}
		for _, l := range s.Lines {
			sb.WriteString(l)
		}
	}
	return sb.String()
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

func leadingSpaces(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " "))]
}
