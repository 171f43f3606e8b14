// Package titleindex provides a case-insensitive, insertion-ordered map keyed
// by term titles.
package titleindex

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the comparison key for a title. Titles that differ only by
// case (or by Unicode normalization form) fold to the same key.
func Fold(title string) string {
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(title)))
}

type entry[V any] struct {
	title string
	value V
}

// Index maps titles to values without regard to case. Iteration follows
// first insertion and reports the first-seen spelling of each title.
type Index[V any] struct {
	keys    []string
	entries map[string]*entry[V]
}

func New[V any]() *Index[V] {
	return &Index[V]{entries: make(map[string]*entry[V])}
}

func (i *Index[V]) Get(title string) (V, bool) {
	if i == nil || i.entries == nil {
		var zero V
		return zero, false
	}
	e, ok := i.entries[Fold(title)]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (i *Index[V]) Has(title string) bool {
	_, ok := i.Get(title)
	return ok
}

// Set stores value under title, keeping the original spelling and position
// of an existing entry.
func (i *Index[V]) Set(title string, value V) {
	if i.entries == nil {
		i.entries = make(map[string]*entry[V])
	}
	key := Fold(title)
	if e, ok := i.entries[key]; ok {
		e.value = value
		return
	}
	i.entries[key] = &entry[V]{title: strings.TrimSpace(title), value: value}
	i.keys = append(i.keys, key)
}

// Update replaces the value under title with fn(current). current is the zero
// value when the title is absent.
func (i *Index[V]) Update(title string, fn func(current V) V) {
	current, _ := i.Get(title)
	i.Set(title, fn(current))
}

// Titles returns the first-seen spelling of every title in insertion order.
func (i *Index[V]) Titles() []string {
	if i == nil {
		return nil
	}
	out := make([]string, 0, len(i.keys))
	for _, key := range i.keys {
		out = append(out, i.entries[key].title)
	}
	return out
}

func (i *Index[V]) Len() int {
	if i == nil {
		return 0
	}
	return len(i.keys)
}

// Range calls fn for each entry in insertion order until fn returns false.
func (i *Index[V]) Range(fn func(title string, value V) bool) {
	if i == nil {
		return
	}
	for _, key := range i.keys {
		e := i.entries[key]
		if !fn(e.title, e.value) {
			return
		}
	}
}
