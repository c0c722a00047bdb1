package report

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffContext is the number of unchanged lines shown around each change.
const DiffContext = 3

// UnifiedDiff returns the unified diff turning original into result, with
// path used for both file headers. It is empty when the two are equal.
func UnifiedDiff(path string, original, result []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(result)),
		FromFile: path,
		ToFile:   path,
		Context:  DiffContext,
	})
}

// colourDiff colours each line of a unified diff by its prefix.
func colourDiff(p *palette, diff string) string {
	var sb strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			sb.WriteString(p.header.Sprint(body))
		case strings.HasPrefix(body, "@@"):
			sb.WriteString(p.hunk.Sprint(body))
		case strings.HasPrefix(body, "+"):
			sb.WriteString(p.added.Sprint(body))
		case strings.HasPrefix(body, "-"):
			sb.WriteString(p.removed.Sprint(body))
		default:
			sb.WriteString(body)
		}
		sb.WriteString(nl)
	}
	return sb.String()
}
