package gosolve

import (
	"fmt"
	"sort"
)

// EntryKind says what kind of operation an Entry inverts.
type EntryKind int

const (
	EntryOp EntryKind = iota
	EntryFunc
	EntryNeg
)

// Entry is one operation on the path from the root of the variable side
// down to the unknown.
type Entry struct {
	Level int
	Kind  EntryKind
	Op    Op
	Func  Func
	// Term is the numeric operand beside the unknown's branch; zero for
	// functions and negation.
	Term float64
	// Before is true when Term is written before the unknown's branch,
	// as in 2-x or 2^x.
	Before bool

	// child is the subtree on the unknown's side of this operation.
	child Expr
	// index is the entry's position on the path, outermost first.
	index int
}

func (e Entry) precedence() int {
	switch e.Kind {
	case EntryOp:
		return e.Op.Precedence()
	case EntryNeg:
		return precUnary
	}
	return precAtom
}

func (e Entry) String() string {
	switch e.Kind {
	case EntryFunc:
		return fmt.Sprintf("L%d %s(.)", e.Level, e.Func)
	case EntryNeg:
		return fmt.Sprintf("L%d -(.)", e.Level)
	}
	if e.Before {
		return fmt.Sprintf("L%d %s%s(.)", e.Level, FormatNumber(e.Term), e.Op)
	}
	return fmt.Sprintf("L%d (.)%s%s", e.Level, e.Op, FormatNumber(e.Term))
}

// Classification lists the operations around the unknown, outermost first.
type Classification struct {
	// Target is the level the unknown itself sits at.
	Target  int
	Entries []Entry
}

// classify walks from the root to the unknown. The level goes up by one on
// entering a bracket or a function argument.
func classify(root Expr) (*Classification, error) {
	c := &Classification{}
	level := 0
	e := root
	for {
		switch n := e.(type) {
		case *Sym:
			c.Target = level
			return c, nil
		case *Group:
			level++
			e = n.inner
		case *Neg:
			c.push(Entry{Level: level, Kind: EntryNeg, child: n.arg})
			e = n.arg
		case *Call:
			c.push(Entry{Level: level, Kind: EntryFunc, Func: n.fn, child: n.arg})
			level++
			e = n.arg
			// The call's own brackets do not add a second level.
			if g, ok := e.(*Group); ok {
				e = g.inner
			}
		case *BinOp:
			entry := Entry{Level: level, Kind: EntryOp, Op: n.op}
			other := n.right
			entry.child = n.left
			if n.right.HasUnknown() {
				other, entry.child, entry.Before = n.left, n.right, true
			}
			v, err := evalNumeric(other)
			if err != nil {
				return nil, err
			}
			entry.Term = v
			c.push(entry)
			e = entry.child
		case *Num:
			return nil, newError(ErrMalformedEquation, StageInvert, -1, "variable side has no unknown")
		default:
			return nil, newError(ErrArithmeticDomain, StageInvert, -1, "no inverse for %s", e)
		}
	}
}

func (c *Classification) push(e Entry) {
	e.index = len(c.Entries)
	c.Entries = append(c.Entries, e)
}

// Nearest returns the operation to undo next: from the lowest level's
// bucket, the outermost entry, which forward evaluation applied last.
func (c *Classification) Nearest() (Entry, bool) {
	buckets := c.Buckets()
	if len(buckets) == 0 {
		return Entry{}, false
	}
	lowest := c.Target
	for lvl := range buckets {
		if lvl < lowest {
			lowest = lvl
		}
	}
	bucket := buckets[lowest]
	best := bucket[0]
	for _, e := range bucket[1:] {
		if e.index < best.index {
			best = e
		}
	}
	return best, true
}

// Buckets groups entries by level, lowest precedence first within a level.
func (c *Classification) Buckets() map[int][]Entry {
	out := map[int][]Entry{}
	for _, e := range c.Entries {
		out[e.Level] = append(out[e.Level], e)
	}
	for lvl := range out {
		entries := out[lvl]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].precedence() < entries[j].precedence() })
	}
	return out
}

// Invert applies the inverse of e to value.
func (e Entry) Invert(value float64) (float64, error) {
	switch e.Kind {
	case EntryNeg:
		return -value, nil
	case EntryFunc:
		return e.Func.Invert(value)
	}
	return invertOp(e.Op, e.Term, value, e.Before)
}
