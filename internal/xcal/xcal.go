// Package xcal renders parse results as xCal (RFC 6321) documents.
package xcal

import (
	"io"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/cyp0633/icsitems/parser"
	"github.com/emersion/go-ical"
)

// value types of properties this package knows; everything else is text
var propValueTypes = map[string]string{
	ical.PropDateTimeStart:   "date-time",
	ical.PropDateTimeEnd:     "date-time",
	ical.PropDue:             "date-time",
	ical.PropRecurrenceID:    "date-time",
	ical.PropRecurrenceDates: "date-time",
	ical.PropExceptionDates:  "date-time",
	ical.PropDateTimeStamp:   "date-time",
	ical.PropCreated:         "date-time",
	ical.PropLastModified:    "date-time",
	ical.PropRecurrenceRule:  "recur",
	ical.PropSequence:        "integer",
	ical.PropPriority:        "integer",
}

// Encode builds the xCal document for res. Each master is followed by the
// exceptions attached to it, then come the extra components.
func Encode(res *parser.Result) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := doc.CreateElement(TagICalendar)
	AddNamespace(doc)

	cal := root.CreateElement(TagVCalendar)
	props := cal.CreateElement(TagProperties)
	for _, prop := range res.Properties() {
		writeProp(props, prop)
	}

	comps := cal.CreateElement(TagComponents)
	for _, it := range res.Items() {
		writeComponent(comps, it.Component())
		if info := it.RecurrenceInfo(); info != nil {
			for _, exc := range info.Exceptions() {
				writeComponent(comps, exc.Component())
			}
		}
	}
	for _, comp := range res.ExtraComponents() {
		writeComponent(comps, comp)
	}

	doc.Indent(2)
	return doc
}

// Write encodes res to w
func Write(w io.Writer, res *parser.Result) error {
	_, err := Encode(res).WriteTo(w)
	return err
}

func writeComponent(parent *etree.Element, comp *ical.Component) {
	if comp == nil {
		return
	}
	el := parent.CreateElement(strings.ToLower(comp.Name))

	props := el.CreateElement(TagProperties)
	names := make([]string, 0, len(comp.Props))
	for name := range comp.Props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, prop := range comp.Props[name] {
			writeProp(props, prop)
		}
	}

	if len(comp.Children) == 0 {
		return
	}
	children := el.CreateElement(TagComponents)
	for _, child := range comp.Children {
		writeComponent(children, child)
	}
}

func writeProp(parent *etree.Element, prop ical.Prop) {
	el := parent.CreateElement(strings.ToLower(prop.Name))

	if len(prop.Params) > 0 {
		params := el.CreateElement(TagParameters)
		names := make([]string, 0, len(prop.Params))
		for name := range prop.Params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			p := params.CreateElement(strings.ToLower(name))
			for _, v := range prop.Params[name] {
				p.CreateElement("text").SetText(v)
			}
		}
	}

	valueType, ok := propValueTypes[prop.Name]
	if !ok {
		valueType = "text"
	}
	if valueType == "date-time" && strings.EqualFold(prop.Params.Get(ical.ParamValue), string(ical.ValueDate)) {
		valueType = "date"
	}

	switch valueType {
	case "recur":
		writeRecur(el.CreateElement(valueType), prop.Value)
	case "date", "date-time":
		for _, v := range strings.Split(prop.Value, ",") {
			el.CreateElement(valueType).SetText(formatDate(strings.TrimSpace(v)))
		}
	case "text":
		text := prop.Value
		if t, err := prop.Text(); err == nil {
			text = t
		}
		el.CreateElement(valueType).SetText(text)
	default:
		el.CreateElement(valueType).SetText(prop.Value)
	}
}

// writeRecur splits an RRULE value into its parts. List values such as
// BYDAY=MO,TU repeat the part element once per item.
func writeRecur(el *etree.Element, value string) {
	for _, part := range strings.Split(value, ";") {
		key, v, found := strings.Cut(part, "=")
		if !found || key == "" {
			continue
		}
		tag := strings.ToLower(key)
		for _, item := range strings.Split(v, ",") {
			el.CreateElement(tag).SetText(item)
		}
	}
}

// formatDate converts "20240102T090000Z" to "2024-01-02T09:00:00Z" and
// "20240102" to "2024-01-02". Anything else is returned unchanged.
func formatDate(v string) string {
	if start, _, found := strings.Cut(v, "/"); found {
		v = start
	}
	if len(v) < 8 {
		return v
	}
	out := v[0:4] + "-" + v[4:6] + "-" + v[6:8]
	if len(v) == 8 {
		return out
	}
	if len(v) < 15 || v[8] != 'T' {
		return v
	}
	out += "T" + v[9:11] + ":" + v[11:13] + ":" + v[13:15]
	return out + v[15:]
}
