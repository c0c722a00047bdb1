package report

import (
	"github.com/fatih/color"
)

// palette holds the colours used by the text reports. Colour is switched on
// or off explicitly so that output does not depend on the terminal the tests
// run in.
type palette struct {
	added   *color.Color
	removed *color.Color
	hunk    *color.Color
	header  *color.Color
	good    *color.Color
	bad     *color.Color
	muted   *color.Color
}

func newPalette(useColour bool) *palette {
	p := &palette{
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		hunk:    color.New(color.FgCyan),
		header:  color.New(color.Bold),
		good:    color.New(color.FgGreen, color.Bold),
		bad:     color.New(color.FgRed, color.Bold),
		muted:   color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.added, p.removed, p.hunk, p.header, p.good, p.bad, p.muted} {
		if useColour {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
