// Package item provides the calendar item model: events and to-dos built from
// VEVENT and VTODO components, their date values and their recurrence sets.
package item

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cyp0633/icsitems/timezone"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// PropFakedMaster marks masters synthesized for exceptions without a parent
const PropFakedMaster = "X-FAKED-MASTER"

// ErrNilComponent is returned when an item is populated from a nil component
var ErrNilComponent = errors.New("nil component")

// Kind distinguishes events from to-dos
type Kind int

const (
	KindEvent Kind = iota + 1
	KindTodo
)

// String provides a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "Event"
	case KindTodo:
		return "Todo"
	default:
		return "Unknown"
	}
}

// ComponentName returns the iCalendar component name of the kind
func (k Kind) ComponentName() string {
	switch k {
	case KindEvent:
		return ical.CompEvent
	case KindTodo:
		return ical.CompToDo
	default:
		return ""
	}
}

// Item is a calendar item: an event or a to-do, either a master or an
// exception overriding one occurrence of a master with the same UID.
type Item interface {
	Kind() Kind
	// HashID is unique per item instance, unlike ID which masters and their
	// exceptions share.
	HashID() string
	ID() string
	SetID(uid string)
	Title() string

	// RecurrenceID is present only on exceptions
	RecurrenceID() mo.Option[DateTime]
	SetRecurrenceID(rid mo.Option[DateTime])
	// RecurrenceInfo is nil on items that do not recur
	RecurrenceInfo() *RecurrenceInfo
	SetRecurrenceInfo(info *RecurrenceInfo)

	// StartDate is DTSTART on events and the entry date on to-dos
	StartDate() mo.Option[DateTime]
	SetStartDate(dt DateTime)
	// EndDate is DTEND on events and DUE on to-dos
	EndDate() mo.Option[DateTime]
	SetEndDate(dt DateTime)

	IsFakedMaster() bool
	SetFakedMaster(faked bool)

	// Property returns the first property called name, nil if absent.
	// Properties this package does not interpret pass through unchanged.
	Property(name string) *ical.Prop
	SetProperty(prop *ical.Prop)
	PropertyNames() []string

	// Component returns the component the item was built from, or a
	// component rendered from its properties and recurrence set for
	// synthesized items.
	Component() *ical.Component
	SetComponent(comp *ical.Component, zones *timezone.Registry) error
}

// Factory creates blank items
type Factory interface {
	CreateEvent() Item
	CreateTodo() Item
}

// DefaultFactory creates *Event and *Todo values
type DefaultFactory struct{}

func (DefaultFactory) CreateEvent() Item { return NewEvent() }
func (DefaultFactory) CreateTodo() Item  { return NewTodo() }

// Create returns a blank item of the given kind, nil for unknown kinds
func Create(f Factory, kind Kind) Item {
	switch kind {
	case KindEvent:
		return f.CreateEvent()
	case KindTodo:
		return f.CreateTodo()
	default:
		return nil
	}
}

// base implements the parts of Item shared by events and to-dos
type base struct {
	kind    Kind
	hashID  string
	endProp string

	props      ical.Props
	comp       *ical.Component
	start      mo.Option[DateTime]
	end        mo.Option[DateTime]
	rid        mo.Option[DateTime]
	recurrence *RecurrenceInfo
	faked      bool
}

func newBase(kind Kind, endProp string) base {
	return base{
		kind:    kind,
		hashID:  uuid.NewString(),
		endProp: endProp,
		props:   make(ical.Props),
		start:   mo.None[DateTime](),
		end:     mo.None[DateTime](),
		rid:     mo.None[DateTime](),
	}
}

func (b *base) Kind() Kind     { return b.kind }
func (b *base) HashID() string { return b.hashID }

func (b *base) ID() string {
	if prop := b.props.Get(ical.PropUID); prop != nil {
		return prop.Value
	}
	return ""
}

func (b *base) SetID(uid string) {
	prop := ical.NewProp(ical.PropUID)
	prop.Value = uid
	b.props.Set(prop)
}

func (b *base) Title() string {
	prop := b.props.Get(ical.PropSummary)
	if prop == nil {
		return ""
	}
	if text, err := prop.Text(); err == nil {
		return text
	}
	return prop.Value
}

func (b *base) RecurrenceID() mo.Option[DateTime] { return b.rid }

func (b *base) SetRecurrenceID(rid mo.Option[DateTime]) {
	b.rid = rid
	b.syncDateProp(ical.PropRecurrenceID, rid)
}

func (b *base) RecurrenceInfo() *RecurrenceInfo        { return b.recurrence }
func (b *base) SetRecurrenceInfo(info *RecurrenceInfo) { b.recurrence = info }

func (b *base) StartDate() mo.Option[DateTime] { return b.start }

func (b *base) SetStartDate(dt DateTime) {
	b.start = mo.Some(dt)
	b.syncDateProp(ical.PropDateTimeStart, b.start)
}

func (b *base) EndDate() mo.Option[DateTime] { return b.end }

func (b *base) SetEndDate(dt DateTime) {
	b.end = mo.Some(dt)
	b.syncDateProp(b.endProp, b.end)
}

func (b *base) IsFakedMaster() bool { return b.faked }

func (b *base) SetFakedMaster(faked bool) {
	b.faked = faked
	if !faked {
		delete(b.props, PropFakedMaster)
		return
	}
	prop := ical.NewProp(PropFakedMaster)
	prop.Value = "1"
	b.props.Set(prop)
}

func (b *base) Property(name string) *ical.Prop {
	return b.props.Get(name)
}

func (b *base) SetProperty(prop *ical.Prop) {
	if prop == nil {
		return
	}
	b.props.Set(prop)
}

func (b *base) PropertyNames() []string {
	names := make([]string, 0, len(b.props))
	for name := range b.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *base) Component() *ical.Component {
	if b.comp != nil {
		return b.comp
	}
	comp := ical.NewComponent(b.kind.ComponentName())
	for name, props := range b.props {
		comp.Props[name] = append([]ical.Prop(nil), props...)
	}
	if b.recurrence != nil {
		delete(comp.Props, ical.PropRecurrenceRule)
		delete(comp.Props, ical.PropRecurrenceDates)
		delete(comp.Props, ical.PropExceptionDates)
		for _, prop := range b.recurrence.Props() {
			comp.Props.Add(&prop)
		}
	}
	return comp
}

// SetComponent attaches comp and reads the properties the engine needs off
// it. A malformed date or rule fails the whole item.
func (b *base) SetComponent(comp *ical.Component, zones *timezone.Registry) error {
	if comp == nil {
		return ErrNilComponent
	}

	start, err := optionalDate(comp, ical.PropDateTimeStart, zones)
	if err != nil {
		return err
	}
	end, err := optionalDate(comp, b.endProp, zones)
	if err != nil {
		return err
	}
	rid, err := optionalDate(comp, ical.PropRecurrenceID, zones)
	if err != nil {
		return err
	}
	info, err := ExtractRecurrenceInfo(comp, zones)
	if err != nil {
		return err
	}

	props := make(ical.Props, len(comp.Props))
	for name, list := range comp.Props {
		props[name] = append([]ical.Prop(nil), list...)
	}

	b.comp = comp
	b.props = props
	b.start = start
	b.end = end
	b.rid = rid
	b.recurrence = info
	b.faked = props.Get(PropFakedMaster) != nil
	return nil
}

func (b *base) syncDateProp(name string, value mo.Option[DateTime]) {
	dt, ok := value.Get()
	if !ok {
		delete(b.props, name)
		return
	}
	b.props.Set(dt.Prop(name))
}

func optionalDate(comp *ical.Component, name string, zones *timezone.Registry) (mo.Option[DateTime], error) {
	prop := comp.Props.Get(name)
	if prop == nil {
		return mo.None[DateTime](), nil
	}
	dt, err := ParseDateTime(prop, zones)
	if err != nil {
		return mo.None[DateTime](), fmt.Errorf("%s: %w", comp.Name, err)
	}
	return mo.Some(dt), nil
}

// Event is a VEVENT item
type Event struct {
	base
}

// NewEvent creates a blank event
func NewEvent() *Event {
	return &Event{base: newBase(KindEvent, ical.PropDateTimeEnd)}
}

// Todo is a VTODO item. Its StartDate is the entry date and its EndDate
// the due date.
type Todo struct {
	base
}

// NewTodo creates a blank to-do
func NewTodo() *Todo {
	return &Todo{base: newBase(KindTodo, ical.PropDue)}
}

// EntryDate is an alias of StartDate
func (t *Todo) EntryDate() mo.Option[DateTime] { return t.StartDate() }

// DueDate is an alias of EndDate
func (t *Todo) DueDate() mo.Option[DateTime] { return t.EndDate() }
