package gosolve

import (
	"sort"
	"strings"
)

// substitute replaces bound identifiers and named constants with literals in
// one left-to-right pass. delta tracks how far later offsets have shifted
// after earlier replacements of a different length. The unknown is left as
// it is.
func substitute(text string, idents map[int]string, bindings map[string]float64) string {
	offsets := make([]int, 0, len(idents))
	for off := range idents {
		offsets = append(offsets, off)
	}
	sort.Ints(offsets)

	var b strings.Builder
	b.Grow(len(text))
	out := text
	delta := 0
	for _, off := range offsets {
		name := idents[off]
		value, ok := bindings[name]
		if !ok {
			value, ok = constants[name]
		}
		if !ok {
			continue
		}
		lit := literalText(value)
		at := off + delta
		b.Reset()
		b.WriteString(out[:at])
		b.WriteString(lit)
		b.WriteString(out[at+len(name):])
		out = b.String()
		delta += len(lit) - len(name)
	}
	return out
}

// literalText renders a substituted value. Negative values are bracketed so
// that a^2 with a=-3 becomes (-3)^2 rather than -3^2.
func literalText(v float64) string {
	s := FormatNumber(v)
	if v < 0 {
		return "(" + s + ")"
	}
	return s
}
