package spans

import (
	"fmt"
	"go/token"

	"github.com/sirkon/rbtree"

	"github.com/sirkon/trylower/internal/tir"
)

// entry is an indexed range with a nested tree of the ranges it contains.
type entry struct {
	from token.Pos
	to   token.Pos

	node   tir.Node
	nested *rbtree.Tree[*entry]
}

func lookupKey(pos token.Pos) *entry {
	return &entry{from: pos, to: pos}
}

// Cmp orders disjoint ranges by position. Overlapping ranges compare equal,
// which hands the overlapping entry back to attach through InsertReturn.
func (e *entry) Cmp(other *entry) int {
	if e.to < other.from {
		return -1
	}
	if e.from > other.to {
		return 1
	}
	return 0
}

func (e *entry) covers(other *entry) bool {
	return e.from <= other.from && e.to >= other.to
}

// attach inserts e into t.
//
//   - Disjoint with everything in t: e becomes a new entry of t.
//   - Covers the overlapping entry r: r takes e's place in the tree and the
//     former r moves into its nested tree.
//   - Covered by r: e goes into r's nested tree.
func attach(t *rbtree.Tree[*entry], e *entry) {
	r := t.InsertReturn(e)
	if r == e {
		return
	}

	switch {
	case e.covers(r):
		old := *r
		*r = *e
		if r.nested == nil {
			r.nested = rbtree.New[*entry]()
		}
		attach(r.nested, &old)

	case r.covers(e):
		if r.nested == nil {
			r.nested = rbtree.New[*entry]()
		}
		attach(r.nested, e)

	default:
		panic(fmt.Errorf("spans: range [%d, %d] partially overlaps [%d, %d]", e.from, e.to, r.from, r.to))
	}
}

func innermost(e *entry, pos token.Pos) tir.Node {
	if e == nil {
		return nil
	}
	if e.nested == nil {
		return e.node
	}

	if n := innermost(e.nested.Search(lookupKey(pos)), pos); n != nil {
		return n
	}
	return e.node
}
