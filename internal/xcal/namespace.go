package xcal

import "github.com/beevik/etree"

// Namespace is the xCal namespace defined by RFC 6321
const Namespace = "urn:ietf:params:xml:ns:icalendar-2.0"

// Element names of the xCal envelope
const (
	TagICalendar  = "icalendar"
	TagVCalendar  = "vcalendar"
	TagProperties = "properties"
	TagComponents = "components"
	TagParameters = "parameters"
)

// AddNamespace declares the xCal namespace on the document root
func AddNamespace(doc *etree.Document) {
	root := doc.Root()
	if root == nil {
		return
	}
	root.CreateAttr("xmlns", Namespace)
}
