package gosolve

import (
	"regexp"
	"strings"
)

// Sentinel marks end-of-stream in canonical text.
const Sentinel = '#'

var (
	signRunMinus = regexp.MustCompile(`\+-|-\+`)
	signRunPlus  = regexp.MustCompile(`\+\+|--`)
	aliasLog10   = regexp.MustCompile(`(?:log10|lg10)\(`)
	aliasLn      = regexp.MustCompile(`(?:loge|log|ln)\(`)
	bracketOpen  = strings.NewReplacer("{", "(", "[", "(", "}", ")", "]", ")")
)

// Normalize canonicalizes raw equation text: lower case, no whitespace,
// round brackets only, ** as ^, collapsed sign runs, folded function aliases
// and a trailing Sentinel. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == Sentinel:
			return -1
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			return -1
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, "**", "^")
	s = bracketOpen.Replace(s)
	s = collapseSigns(s)
	s = foldAliases(s)
	return s + string(Sentinel)
}

// collapseSigns repeats until no adjacent sign pair remains, so runs of any
// length reduce to a single sign.
func collapseSigns(s string) string {
	for {
		next := signRunPlus.ReplaceAllString(signRunMinus.ReplaceAllString(s, "-"), "+")
		if next == s {
			return s
		}
		s = next
	}
}

// foldAliases maps log10/lg10 to log10 and log/loge/ln to ln. A name that is
// only the tail of a longer identifier (e.g. "catalog(") is left alone.
func foldAliases(s string) string {
	s = replaceAtWordStart(s, aliasLog10, "log10(")
	return replaceAtWordStart(s, aliasLn, "ln(")
}

func replaceAtWordStart(s string, re *regexp.Regexp, with string) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if loc[0] > 0 && isIdentChar(s[loc[0]-1]) {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(with)
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func isIdentChar(c byte) bool {
	return c != Sentinel && c != '(' && c != ')' && c != '=' && !isOperator(c)
}
