// Package names keeps the declared option and subcommand names of a command
// in sorted order so prefix lookups for suggestions are cheap.
package names

import (
	"strings"

	"github.com/tidwall/btree"
)

// Index is an ordered set of names. The zero value is ready to use.
type Index struct {
	tree btree.Map[string, struct{}]
}

// Add inserts name. Duplicates are ignored.
func (ix *Index) Add(name string) {
	ix.tree.Set(name, struct{}{})
}

// Has reports whether name was added.
func (ix *Index) Has(name string) bool {
	_, ok := ix.tree.Get(name)
	return ok
}

// Len returns the number of names.
func (ix *Index) Len() int {
	return ix.tree.Len()
}

// All returns every name in ascending order.
func (ix *Index) All() []string {
	return ix.tree.Keys()
}

// WithPrefix returns the names starting with prefix, in ascending order,
// excluding prefix itself.
func (ix *Index) WithPrefix(prefix string) []string {
	var out []string
	ix.tree.Ascend(prefix, func(name string, _ struct{}) bool {
		if !strings.HasPrefix(name, prefix) {
			return false
		}
		if name != prefix {
			out = append(out, name)
		}
		return true
	})
	return out
}
