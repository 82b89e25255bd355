package gosolve

import "sort"

// Pair is the offsets of a matching "(" and ")".
type Pair struct {
	Open, Close int
}

// Brackets records every bracket pair by nesting depth.
type Brackets struct {
	// ByDepth lists pairs per depth in order of their opening bracket.
	ByDepth  map[int][]Pair
	Match    map[int]int
	Depth    map[int]int
	MaxDepth int
}

// resolveBrackets assigns each bracket its nesting depth: depth rises on "("
// before it is recorded and falls after ")" is recorded, so both halves of a
// pair share one depth.
func resolveBrackets(text string) (*Brackets, error) {
	br := &Brackets{ByDepth: map[int][]Pair{}, Match: map[int]int{}, Depth: map[int]int{}}
	var stack []int
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
			stack = append(stack, i)
		case ')':
			if len(stack) == 0 {
				return nil, newError(ErrUnbalancedBrackets, StageParse, i, "unexpected ')'")
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			br.ByDepth[depth] = append(br.ByDepth[depth], Pair{Open: open, Close: i})
			br.Match[open] = i
			br.Depth[open] = depth
			if depth > br.MaxDepth {
				br.MaxDepth = depth
			}
			depth--
		}
	}
	if len(stack) != 0 {
		return nil, newError(ErrUnbalancedBrackets, StageParse, stack[len(stack)-1], "unclosed '('")
	}
	for d := range br.ByDepth {
		pairs := br.ByDepth[d]
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Open < pairs[j].Open })
	}
	return br, nil
}

// Innermost returns all pairs ordered deepest first, left to right within a
// depth.
func (b *Brackets) Innermost() []Pair {
	var out []Pair
	for d := b.MaxDepth; d >= 1; d-- {
		out = append(out, b.ByDepth[d]...)
	}
	return out
}
