package item

import (
	"fmt"
	"strings"
	"time"

	"github.com/cyp0633/icsitems/timezone"
	"github.com/emersion/go-ical"
)

const (
	dateLayout        = "20060102"
	dateTimeLayout    = "20060102T150405"
	dateTimeUTCLayout = "20060102T150405Z"
)

// DateTime is a DATE or DATE-TIME value together with the zone reference it
// was written with.
type DateTime struct {
	// Time holds the parsed value. Floating and unresolved values keep their
	// wall clock reading in UTC.
	Time time.Time
	// TZID is the zone reference from the TZID parameter, empty for UTC and
	// floating values.
	TZID string
	// Location is the resolved zone, nil for floating values and for TZIDs
	// that could not be resolved.
	Location *time.Location
	Floating bool
	DateOnly bool
}

// NewDateTime wraps t, which is treated as UTC when its location is UTC and
// as a resolved zone otherwise.
func NewDateTime(t time.Time) DateTime {
	loc := t.Location()
	dt := DateTime{Time: t, Location: loc}
	if loc != time.UTC {
		dt.TZID = loc.String()
	}
	return dt
}

// NewDate returns a floating DATE value
func NewDate(year int, month time.Month, day int) DateTime {
	return DateTime{
		Time:     time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Floating: true,
		DateOnly: true,
	}
}

// IsUTC reports whether the value is pinned to UTC
func (d DateTime) IsUTC() bool {
	return !d.Floating && d.Location == time.UTC
}

// IsPhantom reports whether the value refers to a zone that is neither UTC,
// floating, nor backed by a resolvable definition.
func (d DateTime) IsPhantom() bool {
	return !d.IsUTC() && !d.Floating && d.Location == nil
}

// String formats the value the way RFC 5545 writes it
func (d DateTime) String() string {
	switch {
	case d.DateOnly:
		return d.Time.Format(dateLayout)
	case d.IsUTC():
		return d.Time.Format(dateTimeUTCLayout)
	default:
		return d.Time.Format(dateTimeLayout)
	}
}

// Key identifies the instant a value denotes. Values with a resolved zone
// compare by instant; floating and phantom values compare by wall clock.
func (d DateTime) Key() string {
	switch {
	case d.DateOnly:
		return d.Time.Format(dateLayout)
	case d.Location != nil && !d.Floating:
		return d.Time.UTC().Format(dateTimeUTCLayout)
	default:
		return d.Time.Format(dateTimeLayout)
	}
}

// Equal reports whether both values denote the same instant
func (d DateTime) Equal(other DateTime) bool {
	return d.Key() == other.Key()
}

// Prop renders the value as a property named name
func (d DateTime) Prop(name string) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Value = d.String()
	if d.DateOnly {
		prop.Params.Set(ical.ParamValue, string(ical.ValueDate))
	}
	if d.TZID != "" && !d.IsUTC() {
		prop.Params.Set(ical.ParamTimezoneID, d.TZID)
	}
	return prop
}

// ParseDateTime parses a DATE or DATE-TIME property, resolving its TZID
// parameter through zones. An unresolvable TZID is not an error: the value is
// returned with a nil Location so callers can detect it with IsPhantom.
func ParseDateTime(prop *ical.Prop, zones *timezone.Registry) (DateTime, error) {
	if prop == nil {
		return DateTime{}, fmt.Errorf("nil property")
	}
	return parseDateTimeValue(prop.Name, prop.Value, prop.Params, zones)
}

func parseDateTimeValue(name, value string, params ical.Params, zones *timezone.Registry) (DateTime, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DateTime{}, fmt.Errorf("empty %s value", name)
	}

	dt := DateTime{
		TZID:     strings.TrimSpace(params.Get(ical.ParamTimezoneID)),
		DateOnly: strings.EqualFold(params.Get(ical.ParamValue), string(ical.ValueDate)) || !strings.Contains(value, "T"),
	}

	layout := dateTimeLayout
	loc := time.UTC
	switch {
	case dt.DateOnly:
		layout = dateLayout
	case strings.HasSuffix(value, "Z"):
		layout = dateTimeUTCLayout
		dt.TZID = ""
		dt.Location = time.UTC
	}

	if dt.Location == nil {
		if dt.TZID == "" {
			dt.Floating = true
		} else if res := zones.Resolve(dt.TZID); res.Status != timezone.StatusUnknown {
			dt.Location = res.Location
			loc = res.Location
		}
	}

	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return DateTime{}, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	dt.Time = t
	return dt, nil
}
