// Package ledger records the entities created or updated while one
// conversation turn runs, so the caller can report them to its client.
package ledger

import "fmt"

// Kind names an entity category tracked by the ledger.
type Kind string

const (
	KindBinderItem Kind = "binder_item"
	KindCharacter  Kind = "character"
	KindLocation   Kind = "location"
	KindPlotThread Kind = "plot_thread"
)

// Kinds lists every tracked kind in reporting order.
var Kinds = []Kind{KindBinderItem, KindCharacter, KindLocation, KindPlotThread}

// Entry describes one affected entity.
type Entry struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title,omitempty"`  // binder items, plot threads
	Name   string   `json:"name,omitempty"`   // characters, locations
	Type   string   `json:"type,omitempty"`   // binder item type
	Fields []string `json:"fields,omitempty"` // changed field names, updates only
}

// Label returns the entry's display name.
func (e Entry) Label() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Name
}

// Ledger holds the created/updated lists for each kind. The zero value is
// ready to use. It is scoped to one turn and never shared between turns.
type Ledger struct {
	CreatedItems       []Entry `json:"created_items"`
	UpdatedItems       []Entry `json:"updated_items"`
	CreatedCharacters  []Entry `json:"created_characters"`
	UpdatedCharacters  []Entry `json:"updated_characters"`
	CreatedLocations   []Entry `json:"created_locations"`
	UpdatedLocations   []Entry `json:"updated_locations"`
	CreatedPlotThreads []Entry `json:"created_plot_threads"`
	UpdatedPlotThreads []Entry `json:"updated_plot_threads"`
}

// New returns an empty ledger.
func New() *Ledger { return &Ledger{} }

// RecordCreated appends a creation for kind.
func (l *Ledger) RecordCreated(kind Kind, e Entry) {
	list := l.list(kind, true)
	*list = append(*list, e)
}

// RecordUpdated appends an update for kind. Fields is copied.
func (l *Ledger) RecordUpdated(kind Kind, e Entry) {
	e.Fields = append([]string(nil), e.Fields...)
	list := l.list(kind, false)
	*list = append(*list, e)
}

// Created returns the creations recorded for kind.
func (l *Ledger) Created(kind Kind) []Entry { return *l.list(kind, true) }

// Updated returns the updates recorded for kind.
func (l *Ledger) Updated(kind Kind) []Entry { return *l.list(kind, false) }

// Len returns the total number of recorded entries.
func (l *Ledger) Len() int {
	n := 0
	for _, k := range Kinds {
		n += len(l.Created(k)) + len(l.Updated(k))
	}
	return n
}

// Empty reports whether nothing was recorded.
func (l *Ledger) Empty() bool { return l.Len() == 0 }

// Snapshot returns an independent copy suitable for handing to the caller.
func (l *Ledger) Snapshot() Ledger {
	var out Ledger
	for _, k := range Kinds {
		for _, e := range l.Created(k) {
			out.RecordCreated(k, e)
		}
		for _, e := range l.Updated(k) {
			out.RecordUpdated(k, e)
		}
	}
	return out
}

func (l *Ledger) list(kind Kind, created bool) *[]Entry {
	switch kind {
	case KindBinderItem:
		if created {
			return &l.CreatedItems
		}
		return &l.UpdatedItems
	case KindCharacter:
		if created {
			return &l.CreatedCharacters
		}
		return &l.UpdatedCharacters
	case KindLocation:
		if created {
			return &l.CreatedLocations
		}
		return &l.UpdatedLocations
	case KindPlotThread:
		if created {
			return &l.CreatedPlotThreads
		}
		return &l.UpdatedPlotThreads
	}
	panic(fmt.Sprintf("ledger: unknown kind %q", kind))
}
