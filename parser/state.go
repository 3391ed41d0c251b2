package parser

import (
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/cyp0633/icsitems/item"
	"github.com/emersion/go-ical"
)

type unitKind int

const (
	unitNone      unitKind = iota // produced nothing: VTIMEZONE or a failed unit
	unitException                 // item with a recurrence id
	unitMaster                    // recurring master, indexed by UID
	unitPlain                     // master without recurrence info
	unitExtra                     // unrecognized component, archived verbatim
)

// unit is the outcome of classifying one subcomponent
type unit struct {
	seq  int
	kind unitKind
	item item.Item
	comp *ical.Component
}

// state is the working set of a single parse pass. It must never be shared
// between passes.
type state struct {
	mu       sync.Mutex
	units    []unit
	pending  int
	join     func()
	joined   bool
	tzErrors map[string]struct{}

	// populated by settle and resolve, single-threaded after join
	items           []item.Item
	uid2parent      map[string]item.Item
	excItems        []item.Item
	extraComponents []*ical.Component
	parentlessItems []item.Item
	properties      []ical.Prop
}

func newState() *state {
	return &state{
		tzErrors:   make(map[string]struct{}),
		uid2parent: make(map[string]item.Item),
	}
}

// collectProperties keeps every calendar-level property except the
// VERSION and PRODID markers. Names are visited in sorted order.
func (s *state) collectProperties(cal *ical.Component) {
	names := make([]string, 0, len(cal.Props))
	for name := range cal.Props {
		if name == ical.PropVersion || name == ical.PropProductID {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.properties = append(s.properties, cal.Props[name]...)
	}
}

// markTimezoneError records key and reports whether it was new
func (s *state) markTimezoneError(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.tzErrors[key]; seen {
		return false
	}
	s.tzErrors[key] = struct{}{}
	return true
}

// add records a unit finished by the synchronous runner
func (s *state) add(u unit) {
	s.mu.Lock()
	s.units = append(s.units, u)
	s.mu.Unlock()
}

// begin counts a unit handed to an executor
func (s *state) begin() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
}

// finish records a unit finished by an executor and fires the join callback
// when it was the last one outstanding.
func (s *state) finish(u unit) {
	s.mu.Lock()
	s.units = append(s.units, u)
	s.pending--
	cb := s.takeJoinLocked()
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// setJoin registers cb, running it right away when nothing is outstanding.
// Only the first registration counts.
func (s *state) setJoin(cb func()) {
	s.mu.Lock()
	if s.joined || s.join != nil {
		s.mu.Unlock()
		return
	}
	s.join = cb
	run := s.takeJoinLocked()
	s.mu.Unlock()

	if run != nil {
		run()
	}
}

func (s *state) takeJoinLocked() func() {
	if s.pending > 0 || s.join == nil || s.joined {
		return nil
	}
	s.joined = true
	cb := s.join
	s.join = nil
	return cb
}

// settle applies the finished units in discovery order, so the outcome does
// not depend on the order units completed in.
func (s *state) settle(logger *slog.Logger) {
	s.mu.Lock()
	units := slices.Clone(s.units)
	s.mu.Unlock()

	slices.SortFunc(units, func(a, b unit) int { return a.seq - b.seq })

	for _, u := range units {
		switch u.kind {
		case unitException:
			s.excItems = append(s.excItems, u.item)
		case unitMaster:
			uid := u.item.ID()
			if _, dup := s.uid2parent[uid]; dup {
				logger.Warn("dropping duplicate recurring master", "uid", uid)
				continue
			}
			s.uid2parent[uid] = u.item
			s.items = append(s.items, u.item)
		case unitPlain:
			s.items = append(s.items, u.item)
		case unitExtra:
			s.extraComponents = append(s.extraComponents, u.comp)
		}
	}
}
