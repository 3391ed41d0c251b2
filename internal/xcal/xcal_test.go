package xcal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/cyp0633/icsitems/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//icsitems//test//EN\r\n" +
	"X-WR-CALNAME:Work\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"SUMMARY:Standup\r\n" +
	"DTSTART:20240101T090000Z\r\n" +
	"RRULE:FREQ=DAILY;COUNT=5\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"SUMMARY:Late standup\r\n" +
	"DTSTART:20240102T100000Z\r\n" +
	"RECURRENCE-ID:20240102T090000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:orphan\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240305\r\n" +
	"RECURRENCE-ID;VALUE=DATE:20240305\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VJOURNAL\r\n" +
	"UID:note\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"SUMMARY:Notes\r\n" +
	"END:VJOURNAL\r\n" +
	"END:VCALENDAR\r\n"

func encodeSample(t *testing.T) *etree.Document {
	t.Helper()
	res, err := parser.New().Parse(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	return doc
}

func TestEncode_Envelope(t *testing.T) {
	doc := encodeSample(t)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, TagICalendar, root.Tag)
	assert.Equal(t, Namespace, root.SelectAttrValue("xmlns", ""))

	name := doc.FindElement("/icalendar/vcalendar/properties/x-wr-calname/text")
	require.NotNil(t, name)
	assert.Equal(t, "Work", name.Text())

	assert.Nil(t, doc.FindElement("/icalendar/vcalendar/properties/version"))
	assert.Nil(t, doc.FindElement("/icalendar/vcalendar/properties/prodid"))
}

func TestEncode_ComponentOrder(t *testing.T) {
	doc := encodeSample(t)

	comps := doc.FindElement("/icalendar/vcalendar/components")
	require.NotNil(t, comps)

	var got []string
	for _, el := range comps.ChildElements() {
		uid := el.FindElement("properties/uid/text")
		require.NotNil(t, uid, el.Tag)
		got = append(got, el.Tag+":"+uid.Text())
	}
	assert.Equal(t, []string{
		"vevent:standup",
		"vevent:standup",
		"vevent:orphan",
		"vevent:orphan",
		"vjournal:note",
	}, got)
}

func TestEncode_Values(t *testing.T) {
	doc := encodeSample(t)
	events := doc.FindElements("/icalendar/vcalendar/components/vevent")
	require.Len(t, events, 4)

	master := events[0]
	dt := master.FindElement("properties/dtstart/date-time")
	require.NotNil(t, dt)
	assert.Equal(t, "2024-01-01T09:00:00Z", dt.Text())

	freq := master.FindElement("properties/rrule/recur/freq")
	require.NotNil(t, freq)
	assert.Equal(t, "DAILY", freq.Text())
	count := master.FindElement("properties/rrule/recur/count")
	require.NotNil(t, count)
	assert.Equal(t, "5", count.Text())

	exc := events[1]
	rid := exc.FindElement("properties/recurrence-id/date-time")
	require.NotNil(t, rid)
	assert.Equal(t, "2024-01-02T09:00:00Z", rid.Text())

	faked := events[2]
	flag := faked.FindElement("properties/x-faked-master/text")
	require.NotNil(t, flag)
	assert.Equal(t, "1", flag.Text())
	day := faked.FindElement("properties/dtstart/date")
	require.NotNil(t, day)
	assert.Equal(t, "2024-03-05", day.Text())
	param := faked.FindElement("properties/dtstart/parameters/value/text")
	require.NotNil(t, param)
	assert.Equal(t, "DATE", param.Text())
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"20240102", "2024-01-02"},
		{"20240102T090000", "2024-01-02T09:00:00"},
		{"20240102T090000Z", "2024-01-02T09:00:00Z"},
		{"20240102T090000Z/PT1H", "2024-01-02T09:00:00Z"},
		{"2024", "2024"},
		{"20240102X0900", "20240102X0900"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDate(tt.in))
		})
	}
}

func TestEncode_FakedMasterRecurrenceDates(t *testing.T) {
	const input = "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//icsitems//test//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:A\r\n" +
		"DTSTAMP:20240101T000000Z\r\n" +
		"DTSTART:20240102T100000Z\r\n" +
		"RECURRENCE-ID:20240102T090000Z\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:A\r\n" +
		"DTSTAMP:20240101T000000Z\r\n" +
		"DTSTART:20240105T100000Z\r\n" +
		"RECURRENCE-ID:20240105T090000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	res, err := parser.New().Parse(strings.NewReader(input))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res))
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	events := doc.FindElements("/icalendar/vcalendar/components/vevent")
	require.Len(t, events, 3)
	master := events[0]
	require.NotNil(t, master.FindElement("properties/x-faked-master"))

	var rdates []string
	for _, el := range master.FindElements("properties/rdate/date-time") {
		rdates = append(rdates, el.Text())
	}
	assert.Equal(t, []string{"2024-01-02T09:00:00Z", "2024-01-05T09:00:00Z"}, rdates)
	assert.Nil(t, master.FindElement("properties/rrule"))
}

func TestWriteRecur(t *testing.T) {
	el := etree.NewElement("recur")
	writeRecur(el, "FREQ=WEEKLY;BYDAY=MO,TU,FR;INTERVAL=2;broken")

	var got []string
	for _, child := range el.ChildElements() {
		got = append(got, child.Tag+"="+child.Text())
	}
	assert.Equal(t, []string{
		"freq=WEEKLY",
		"byday=MO",
		"byday=TU",
		"byday=FR",
		"interval=2",
	}, got)
}
