// Package typelist provides ordered lists of candidate types for
// runtime dispatch. Code that must enumerate supported element types
// (for example, casting a runtime-typed array back to its concrete
// form) walks a List in order and acts on each entry.
package typelist

import (
	"reflect"
)

// Entry describes one candidate type.
type Entry struct {
	Name string
	Type reflect.Type
}

// Of returns the entry for T.
func Of[T any]() Entry {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return Entry{Name: t.String(), Type: t}
}

// List is an ordered, immutable list of candidate types.
type List struct {
	entries []Entry
}

// New returns a list of the given entries, in argument order.
func New(entries ...Entry) List {
	return List{entries: append([]Entry(nil), entries...)}
}

// Join concatenates two lists: all entries of a, in order, followed by
// all entries of b.
func Join(a, b List) List {
	joined := make([]Entry, 0, len(a.entries)+len(b.entries))
	joined = append(joined, a.entries...)
	joined = append(joined, b.entries...)
	return List{entries: joined}
}

// Len returns the number of entries.
func (l List) Len() int { return len(l.entries) }

// ForEach invokes f once per entry, in list order.
func (l List) ForEach(f func(Entry)) {
	for _, e := range l.entries {
		f(e)
	}
}

// Contains reports whether t appears in the list.
func (l List) Contains(t reflect.Type) bool {
	for _, e := range l.entries {
		if e.Type == t {
			return true
		}
	}
	return false
}
