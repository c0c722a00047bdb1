package quote

import (
	"regexp"
	"strings"
)

// Wrapper is the opening line of a synthetic item placed around a block so
// that rustfmt sees a complete source file.
type Wrapper string

const (
	WrapperEnum   Wrapper = "enum Rustfmt {\n"
	WrapperModule Wrapper = "mod rustfmt {\n"
	WrapperImpl   Wrapper = "impl Rustfmt {\n"
	WrapperFn     Wrapper = "fn rustfmt() {\n"

	wrapperEnd = "}\n"
)

const (
	// Marker introduces a quote! interpolation such as #name.
	Marker = "#"
	// Placeholder replaces Marker in front of identifiers while rustfmt runs.
	// Δ is a valid identifier character, so Δname parses as a plain path.
	Placeholder = "Δ"
)

var (
	interpolationPattern = regexp.MustCompile(`#([_a-zA-Z][_a-zA-Z0-9]*)`)
	itemBlockPattern     = regexp.MustCompile(`(?m)^\s*    (?:impl[ <]|(?:pub )?trait)`)
	fnBlockPattern       = regexp.MustCompile(`(?m)^\s*    (?:pub |const )?fn `)
)

type wrapperRule struct {
	name    string
	matches func(text string) bool
	wrapper Wrapper
}

// wrapperRules guess what kind of Rust a block holds from its surface
// syntax. There is no parse tree for a fragment, so the first matching rule
// wins and the function-body wrapper is the fallback.
var wrapperRules = []wrapperRule{
	{
		name:    "enum variants",
		matches: func(text string) bool {
			return strings.HasSuffix(text, ",\n") || strings.HasSuffix(text, ",\r\n")
		},
		wrapper: WrapperEnum,
	},
	{
		name:    "impl or trait items",
		matches: itemBlockPattern.MatchString,
		wrapper: WrapperModule,
	},
	{
		name: "methods",
		matches: func(text string) bool {
			return fnBlockPattern.MatchString(text) && strings.Contains(text, "self")
		},
		wrapper: WrapperImpl,
	},
	{
		name:    "free functions",
		matches: fnBlockPattern.MatchString,
		wrapper: WrapperModule,
	},
}

// ChooseWrapper returns the innermost wrapper used for text.
func ChooseWrapper(text string) Wrapper {
	for _, r := range wrapperRules {
		if r.matches(text) {
			return r.wrapper
		}
	}
	return WrapperFn
}

// Disguise turns a block body into a standalone Rust source: depth-1 module
// wrappers, then the wrapper picked by ChooseWrapper, the body with every
// #ident rewritten to Δident, and depth closing braces.
func Disguise(text string, depth int) string {
	if depth < 1 {
		depth = 1
	}

	var sb strings.Builder
	for i := 0; i < depth-1; i++ {
		sb.WriteString(string(WrapperModule))
	}
	sb.WriteString(string(ChooseWrapper(text)))
	sb.WriteString(interpolationPattern.ReplaceAllString(text, Placeholder+"${1}"))
	for i := 0; i < depth; i++ {
		sb.WriteString(wrapperEnd)
	}
	return sb.String()
}

// Undisguise removes the depth wrapper lines at either end of formatted and
// restores the interpolation markers.
func Undisguise(formatted string, depth int) (string, error) {
	if depth < 1 {
		depth = 1
	}

	lines := SplitLines(formatted)
	if len(lines) < 2*depth {
		return "", &UnexpectedOutputError{Lines: len(lines), Depth: depth}
	}

	body := strings.Join(lines[depth:len(lines)-depth], "")
	return strings.ReplaceAll(body, Placeholder, Marker), nil
}
