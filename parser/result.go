package parser

import (
	"slices"

	"github.com/cyp0633/icsitems/item"
	"github.com/emersion/go-ical"
)

// Result holds the outcome of a parse. Every accessor returns a copy.
type Result struct {
	items           []item.Item
	parentlessItems []item.Item
	extraComponents []*ical.Component
	properties      []ical.Prop
	tzErrors        int
}

func (s *state) result() *Result {
	s.mu.Lock()
	tzErrors := len(s.tzErrors)
	s.mu.Unlock()

	return &Result{
		items:           slices.Clone(s.items),
		parentlessItems: slices.Clone(s.parentlessItems),
		extraComponents: slices.Clone(s.extraComponents),
		properties:      slices.Clone(s.properties),
		tzErrors:        tzErrors,
	}
}

// Items returns the masters, real and synthesized, in discovery order.
// Synthesized masters follow the real ones.
func (r *Result) Items() []item.Item {
	return slices.Clone(r.items)
}

// ParentlessItems returns the exceptions that had no master in the input
func (r *Result) ParentlessItems() []item.Item {
	return slices.Clone(r.parentlessItems)
}

// ExtraComponents returns the components that are neither events, to-dos
// nor timezone definitions
func (r *Result) ExtraComponents() []*ical.Component {
	return slices.Clone(r.extraComponents)
}

// Properties returns the calendar-level properties of every calendar in
// the input, without VERSION and PRODID
func (r *Result) Properties() []ical.Prop {
	return slices.Clone(r.properties)
}

// TimezoneErrors returns the number of distinct item and timezone pairs
// that were reported as unresolvable
func (r *Result) TimezoneErrors() int {
	return r.tzErrors
}
