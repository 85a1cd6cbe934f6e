// Package spans indexes source ranges of functions and try/catch constructs,
// so a diagnostic position can be traced back to the innermost construct it
// belongs to.
package spans

import (
	"go/token"

	"github.com/sirkon/rbtree"

	"github.com/sirkon/trylower/internal/tir"
)

// Index keeps node ranges. Ranges of different nodes are either disjoint or
// one contains the other, partial overlaps are not supported.
type Index struct {
	tree *rbtree.Tree[*entry]
	size int
}

// New is [Index] constructor.
func New() *Index {
	return &Index{tree: rbtree.New[*entry]()}
}

// Build indexes functions and every try/catch construct inside them.
func Build(funcs []*tir.Func) *Index {
	idx := New()
	for _, fn := range funcs {
		// Enclosing nodes go first, so every new range is either disjoint
		// with known ones or nested into one of them.
		tir.Inspect(fn, func(n tir.Node) bool {
			switch n.(type) {
			case *tir.Func, *tir.TryCatch:
				idx.Add(n)
			}
			return true
		})
	}

	return idx
}

// Add registers a node with its [Pos, End] range. Nodes without a valid
// position are ignored.
func (idx *Index) Add(n tir.Node) {
	if !n.Pos().IsValid() {
		return
	}

	attach(idx.tree, &entry{from: n.Pos(), to: n.End(), node: n})
	idx.size++
}

// Len returns the number of indexed nodes.
func (idx *Index) Len() int {
	return idx.size
}

// At returns the innermost node covering pos or nil.
func (idx *Index) At(pos token.Pos) tir.Node {
	if !pos.IsValid() {
		return nil
	}

	return innermost(idx.tree.Search(lookupKey(pos)), pos)
}
