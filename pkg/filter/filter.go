// Package filter implements the hierarchical category filter used by log
// handlers. A Filter maintains a prefix tree built from a list of category
// filter strings. Every node of the tree holds a subcategory name and,
// optionally, a level when the node terminates a complete filter string.
//
// Given the filters
//
//	a (error)
//	a.b.c (trace)
//	a.b.x (trace)
//	aa (error)
//	aa.b (warn)
//
// the tree looks like
//
//	|
//	|- a (error) -- b - c (trace)
//	|               |
//	|               `-- x (trace)
//	|
//	`- aa (error) - b (warn)
//
// Lookups walk the tree segment by segment and return the level of the
// deepest matching node that carries one, falling back to shallower matches
// and finally to the default level.
package filter

import (
	"sort"
	"strings"

	"github.com/loomworks/loomlog/pkg/types"
)

// noLevel marks tree nodes that do not terminate a filter string.
const noLevel = types.Level(-1)

type node struct {
	name  string
	level types.Level
	nodes []node
}

// Filter resolves the minimum accepted level for a category. It is immutable
// after construction; to change the filters, build a new Filter.
type Filter struct {
	def   types.Level
	nodes []node
}

// New builds a Filter from a default level and an ordered list of category
// filters. Filters with empty category names are skipped. Sibling nodes are
// kept in ascending byte order so lookups can binary-search; a name that is a
// strict prefix of a longer sibling sorts first and never matches it.
func New(def types.Level, filters types.CategoryFilters) *Filter {
	f := &Filter{def: def}
	for _, cf := range filters {
		category := cf.Category
		nodes := &f.nodes
		for {
			name, rest := nextSubcategory(category)
			if name == "" {
				break
			}
			i, found := nodeIndex(*nodes, name)
			if !found {
				*nodes = append(*nodes, node{})
				copy((*nodes)[i+1:], (*nodes)[i:])
				(*nodes)[i] = node{name: name, level: noLevel}
			}
			n := &(*nodes)[i]
			if rest == "" { // Last subcategory of this filter
				n.level = cf.Level
			}
			nodes = &n.nodes
			category = rest
		}
	}
	return f
}

// Default returns the level used when no filter matches.
func (f *Filter) Default() types.Level {
	return f.def
}

// Level returns the minimum accepted level for the given category.
// An empty category resolves to the default level.
func (f *Filter) Level(category string) types.Level {
	level := f.def
	nodes := f.nodes
	for len(nodes) > 0 {
		name, rest := nextSubcategory(category)
		if name == "" {
			break
		}
		i, found := nodeIndex(nodes, name)
		if !found {
			break
		}
		if nodes[i].level != noLevel {
			level = nodes[i].level
		}
		nodes = nodes[i].nodes
		category = rest
	}
	return level
}

// nextSubcategory splits off the leading subcategory name of a dot-separated
// category string. An empty leading segment (including a leading '.') stops
// iteration; a trailing separator is consumed.
func nextSubcategory(category string) (name, rest string) {
	i := strings.IndexByte(category, '.')
	if i < 0 {
		return category, ""
	}
	return category[:i], category[i+1:]
}

// nodeIndex binary-searches a sorted sibling list for an exact name match and
// returns the index where the name is, or where it should be inserted.
func nodeIndex(nodes []node, name string) (int, bool) {
	i := sort.Search(len(nodes), func(i int) bool {
		return nodes[i].name >= name
	})
	return i, i < len(nodes) && nodes[i].name == name
}
