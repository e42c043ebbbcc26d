package question

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// deduper remembers prompts and flags new ones too similar to any of them.
type deduper struct {
	ratio float64
	seen  [][]string // folded prompts, split into runes
}

func newDeduper(ratio float64, prompts []string) *deduper {
	d := &deduper{ratio: ratio, seen: make([][]string, 0, len(prompts))}
	for _, p := range prompts {
		d.add(p)
	}
	return d
}

func (d *deduper) add(prompt string) {
	d.seen = append(d.seen, strings.Split(foldText(prompt), ""))
}

// isDuplicate reports whether prompt is at least d.ratio similar to a remembered prompt.
// A ratio <= 0 disables the check.
func (d *deduper) isDuplicate(prompt string) bool {
	if d.ratio <= 0 {
		return false
	}
	candidate := strings.Split(foldText(prompt), "")
	for _, other := range d.seen {
		m := difflib.NewMatcher(candidate, other)
		if m.RealQuickRatio() < d.ratio || m.QuickRatio() < d.ratio {
			continue
		}
		if m.Ratio() >= d.ratio {
			return true
		}
	}
	return false
}
