package item

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cyp0633/icsitems/timezone"
	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

var (
	// ErrNotException is returned when a non-exception item is attached as an exception
	ErrNotException = errors.New("item has no recurrence id")
	// ErrExceptionNotFound is returned when modifying an exception that does not exist yet
	ErrExceptionNotFound = errors.New("exception not found")
)

// RecurrenceDate is a single RDATE or EXDATE entry of a recurrence set
type RecurrenceDate struct {
	Date     DateTime
	Negative bool // true for EXDATE
}

// RecurrenceInfo holds the recurrence set of a master item: its rules, its
// explicit dates and the exceptions that override single occurrences.
// Rules are parsed but never expanded here.
type RecurrenceInfo struct {
	rules      []string
	options    []*rrule.ROption
	dates      []RecurrenceDate
	exceptions []Item
	exceptIdx  map[string]int // recurrence id key -> index into exceptions
}

// NewRecurrenceInfo creates an empty recurrence set
func NewRecurrenceInfo() *RecurrenceInfo {
	return &RecurrenceInfo{exceptIdx: make(map[string]int)}
}

// AppendRule parses and adds an RRULE value (without the "RRULE:" prefix)
func (r *RecurrenceInfo) AppendRule(value string) error {
	value = strings.TrimSpace(value)
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return fmt.Errorf("invalid RRULE %q: %w", value, err)
	}
	r.rules = append(r.rules, value)
	r.options = append(r.options, opt)
	return nil
}

// Rules returns the raw RRULE values
func (r *RecurrenceInfo) Rules() []string {
	return append([]string(nil), r.rules...)
}

// RuleOptions returns the parsed RRULE values, in the same order as Rules
func (r *RecurrenceInfo) RuleOptions() []*rrule.ROption {
	return append([]*rrule.ROption(nil), r.options...)
}

// AppendRecurrenceItem adds an explicit date to the recurrence set
func (r *RecurrenceInfo) AppendRecurrenceItem(d RecurrenceDate) {
	r.dates = append(r.dates, d)
}

// Props renders the recurrence set as RRULE, RDATE and EXDATE properties,
// one property per rule or date.
func (r *RecurrenceInfo) Props() []ical.Prop {
	props := make([]ical.Prop, 0, len(r.rules)+len(r.dates))
	for _, rule := range r.rules {
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = rule
		props = append(props, *prop)
	}
	for _, d := range r.dates {
		name := ical.PropRecurrenceDates
		if d.Negative {
			name = ical.PropExceptionDates
		}
		props = append(props, *d.Date.Prop(name))
	}
	return props
}

// RecurrenceItems returns every explicit date in insertion order
func (r *RecurrenceInfo) RecurrenceItems() []RecurrenceDate {
	return append([]RecurrenceDate(nil), r.dates...)
}

// RecurrenceDates returns the positive (RDATE) entries
func (r *RecurrenceInfo) RecurrenceDates() []DateTime {
	return r.filterDates(false)
}

// ExceptionDates returns the negative (EXDATE) entries
func (r *RecurrenceInfo) ExceptionDates() []DateTime {
	return r.filterDates(true)
}

func (r *RecurrenceInfo) filterDates(negative bool) []DateTime {
	var out []DateTime
	for _, d := range r.dates {
		if d.Negative == negative {
			out = append(out, d.Date)
		}
	}
	return out
}

// ModifyException attaches exc as the override of the occurrence at its
// recurrence id. An existing override for the same occurrence is replaced.
// When isNew is false the occurrence must already have an override.
func (r *RecurrenceInfo) ModifyException(exc Item, isNew bool) error {
	if exc == nil {
		return ErrNotException
	}
	rid, ok := exc.RecurrenceID().Get()
	if !ok {
		return ErrNotException
	}

	key := rid.Key()
	if idx, exists := r.exceptIdx[key]; exists {
		r.exceptions[idx] = exc
		return nil
	}
	if !isNew {
		return fmt.Errorf("%w: %s", ErrExceptionNotFound, rid)
	}

	r.exceptIdx[key] = len(r.exceptions)
	r.exceptions = append(r.exceptions, exc)
	return nil
}

// Exceptions returns the attached overrides in attachment order
func (r *RecurrenceInfo) Exceptions() []Item {
	return append([]Item(nil), r.exceptions...)
}

// Exception returns the override attached for the occurrence at rid
func (r *RecurrenceInfo) Exception(rid DateTime) (Item, bool) {
	idx, ok := r.exceptIdx[rid.Key()]
	if !ok {
		return nil, false
	}
	return r.exceptions[idx], true
}

// ExtractRecurrenceInfo reads RRULE, RDATE and EXDATE off comp. It returns
// nil when comp carries neither RRULE nor RDATE, i.e. when it does not recur.
// EXDATE alone only removes dates and does not make comp recurring, so
// exceptions of such an item get a synthesized master. EXRULE, deprecated
// by RFC 5545, is ignored.
func ExtractRecurrenceInfo(comp *ical.Component, zones *timezone.Registry) (*RecurrenceInfo, error) {
	rules := comp.Props[ical.PropRecurrenceRule]
	rdates := comp.Props[ical.PropRecurrenceDates]
	if len(rules) == 0 && len(rdates) == 0 {
		return nil, nil
	}

	info := NewRecurrenceInfo()
	for _, prop := range rules {
		if prop.Value == "" {
			continue
		}
		if err := info.AppendRule(prop.Value); err != nil {
			return nil, err
		}
	}

	// RDATE and EXDATE may both repeat and carry comma separated lists
	for _, prop := range rdates {
		dates, err := parseDateList(prop, zones)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			info.AppendRecurrenceItem(RecurrenceDate{Date: d})
		}
	}
	for _, prop := range comp.Props[ical.PropExceptionDates] {
		dates, err := parseDateList(prop, zones)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			info.AppendRecurrenceItem(RecurrenceDate{Date: d, Negative: true})
		}
	}

	return info, nil
}

// parseDateList parses a comma separated RDATE/EXDATE value. PERIOD values
// contribute their start.
func parseDateList(prop ical.Prop, zones *timezone.Registry) ([]DateTime, error) {
	var out []DateTime
	for _, part := range strings.Split(prop.Value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if start, _, found := strings.Cut(part, "/"); found {
			part = start
		}
		dt, err := parseDateTimeValue(prop.Name, part, prop.Params, zones)
		if err != nil {
			return nil, err
		}
		out = append(out, dt)
	}
	return out, nil
}
