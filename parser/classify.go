package parser

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cyp0633/icsitems/item"
	"github.com/cyp0633/icsitems/timezone"
	"github.com/emersion/go-ical"
	"github.com/samber/mo"
)

var errNilNode = errors.New("nil component")

// classifier turns a single subcomponent into a unit. It never looks at
// siblings; the only shared state it touches is the timezone error set.
type classifier struct {
	st       *state
	factory  item.Factory
	zones    *timezone.Registry
	reporter Reporter
	logger   *slog.Logger
}

func (c *classifier) classify(node *ical.Component) (unit, error) {
	if node == nil {
		return unit{}, errNilNode
	}

	var it item.Item
	switch node.Name {
	case ical.CompEvent:
		it = c.factory.CreateEvent()
	case ical.CompToDo:
		it = c.factory.CreateTodo()
	case ical.CompTimezone:
		// already bound to the items referencing it
		return unit{kind: unitNone}, nil
	default:
		return unit{kind: unitExtra, comp: node}, nil
	}

	if err := it.SetComponent(node, c.zones); err != nil {
		return unit{}, fmt.Errorf("build %s: %w", node.Name, err)
	}

	c.checkTimezone(it, it.StartDate())
	c.checkTimezone(it, it.EndDate())

	switch {
	case it.RecurrenceID().IsPresent():
		return unit{kind: unitException, item: it}, nil
	case it.RecurrenceInfo() != nil:
		return unit{kind: unitMaster, item: it}, nil
	default:
		return unit{kind: unitPlain, item: it}, nil
	}
}

// checkTimezone reports a phantom zone reference of value once per item and zone
func (c *classifier) checkTimezone(it item.Item, value mo.Option[item.DateTime]) {
	dt, ok := value.Get()
	if !ok || !dt.IsPhantom() {
		return
	}
	if !c.st.markTimezoneError(it.HashID() + dt.TZID) {
		return
	}

	c.logger.Debug("unresolvable timezone reference",
		"tzid", dt.TZID,
		"uid", it.ID())
	c.reporter.ReportTimezoneError(fmt.Sprintf("timezone %q of item %q at %s could not be resolved",
		dt.TZID, it.Title(), dt.String()))
}
