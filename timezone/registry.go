// Package timezone resolves TZID references found on calendar properties.
//
// A reference resolves either to the Go tz database or to a VTIMEZONE
// definition carried by the document itself. An unknown reference is
// reported through Status, not as an error.
package timezone

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
)

// Status describes the outcome of a TZID lookup
type Status int

const (
	StatusUnknown  Status = iota // no zone definition could be found
	StatusUTC                    // the reference names UTC
	StatusResolved               // resolved to a tz database or VTIMEZONE zone
)

// String provides a human-readable representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusUTC:
		return "UTC"
	case StatusResolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// Resolution is the result of resolving a single TZID
type Resolution struct {
	Location *time.Location // nil when Status is StatusUnknown
	Status   Status
}

// Registry holds the zones a document defines plus a cache of tz database lookups.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	defined map[string]*time.Location
	loaded  map[string]*time.Location // nil value caches a failed lookup
}

// NewRegistry creates an empty registry that only knows the tz database
func NewRegistry() *Registry {
	return &Registry{
		defined: make(map[string]*time.Location),
		loaded:  make(map[string]*time.Location),
	}
}

// FromCalendars builds a registry from every VTIMEZONE found directly below
// the given calendar components. Broken definitions are skipped and their
// errors joined into the returned error; the registry is usable either way.
func FromCalendars(calendars []*ical.Component) (*Registry, error) {
	r := NewRegistry()
	var errs []error
	for _, cal := range calendars {
		if cal == nil {
			continue
		}
		for _, child := range cal.Children {
			if child == nil || child.Name != ical.CompTimezone {
				continue
			}
			if err := r.Define(child); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return r, errors.Join(errs...)
}

// Define registers a VTIMEZONE component. The zone is approximated by the
// fixed offset of its first STANDARD (or, failing that, DAYLIGHT) observance.
func (r *Registry) Define(comp *ical.Component) error {
	if comp == nil || comp.Name != ical.CompTimezone {
		return fmt.Errorf("not a %s component", ical.CompTimezone)
	}
	idProp := comp.Props.Get(ical.PropTimezoneID)
	if idProp == nil || strings.TrimSpace(idProp.Value) == "" {
		return fmt.Errorf("%s without %s", ical.CompTimezone, ical.PropTimezoneID)
	}
	tzid := strings.TrimSpace(idProp.Value)

	offset, err := observanceOffset(comp)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", tzid, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.defined[tzid] = time.FixedZone(tzid, offset)
	return nil
}

// Resolve looks up tzid. Document definitions are only consulted when the
// tz database does not know the name, since the database carries DST rules.
func (r *Registry) Resolve(tzid string) Resolution {
	tzid = strings.TrimSpace(tzid)
	if tzid == "" {
		return Resolution{Status: StatusUnknown}
	}
	if isUTCName(tzid) {
		return Resolution{Location: time.UTC, Status: StatusUTC}
	}
	if r == nil {
		if loc, err := time.LoadLocation(tzid); err == nil {
			return Resolution{Location: loc, Status: StatusResolved}
		}
		return Resolution{Status: StatusUnknown}
	}

	if loc := r.load(tzid); loc != nil {
		return Resolution{Location: loc, Status: StatusResolved}
	}

	r.mu.RLock()
	loc, ok := r.defined[tzid]
	r.mu.RUnlock()
	if ok {
		return Resolution{Location: loc, Status: StatusResolved}
	}
	return Resolution{Status: StatusUnknown}
}

// Defined returns the number of zones defined by documents
func (r *Registry) Defined() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defined)
}

func (r *Registry) load(tzid string) *time.Location {
	r.mu.RLock()
	loc, cached := r.loaded[tzid]
	r.mu.RUnlock()
	if cached {
		return loc
	}

	loc, err := time.LoadLocation(tzid)
	if err != nil {
		loc = nil
	}

	r.mu.Lock()
	r.loaded[tzid] = loc
	r.mu.Unlock()
	return loc
}

func isUTCName(tzid string) bool {
	switch strings.ToUpper(tzid) {
	case "UTC", "Z", "GMT", "ETC/UTC", "ETC/GMT":
		return true
	}
	return false
}

func observanceOffset(comp *ical.Component) (int, error) {
	var fallback *ical.Component
	for _, child := range comp.Children {
		switch child.Name {
		case ical.CompTimezoneStandard:
			return parseOffset(child.Props.Get(ical.PropTimezoneOffsetTo))
		case ical.CompTimezoneDaylight:
			if fallback == nil {
				fallback = child
			}
		}
	}
	if fallback == nil {
		return 0, fmt.Errorf("no observance")
	}
	return parseOffset(fallback.Props.Get(ical.PropTimezoneOffsetTo))
}

// parseOffset parses a UTC offset such as "+0530" or "-083000" into seconds
func parseOffset(prop *ical.Prop) (int, error) {
	if prop == nil {
		return 0, fmt.Errorf("missing %s", ical.PropTimezoneOffsetTo)
	}
	v := strings.TrimSpace(prop.Value)
	if len(v) != 5 && len(v) != 7 {
		return 0, fmt.Errorf("invalid utc offset %q", v)
	}

	sign := 1
	switch v[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, fmt.Errorf("invalid utc offset %q", v)
	}

	digits := v[1:]
	hours, err := strconv.Atoi(digits[0:2])
	if err != nil {
		return 0, fmt.Errorf("invalid utc offset %q: %w", v, err)
	}
	minutes, err := strconv.Atoi(digits[2:4])
	if err != nil {
		return 0, fmt.Errorf("invalid utc offset %q: %w", v, err)
	}
	seconds := 0
	if len(digits) == 6 {
		if seconds, err = strconv.Atoi(digits[4:6]); err != nil {
			return 0, fmt.Errorf("invalid utc offset %q: %w", v, err)
		}
	}
	return sign * (hours*3600 + minutes*60 + seconds), nil
}
