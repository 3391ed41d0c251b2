package item

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cyp0633/icsitems/timezone"
	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProp(name, value string, params ...string) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Value = value
	for i := 0; i+1 < len(params); i += 2 {
		prop.Params.Set(params[i], params[i+1])
	}
	return prop
}

func TestParseDateTime(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	tests := []struct {
		name         string
		prop         *ical.Prop
		wantTime     time.Time
		wantUTC      bool
		wantFloating bool
		wantDateOnly bool
		wantPhantom  bool
		wantString   string
	}{
		{
			name:       "utc date-time",
			prop:       newProp(ical.PropDateTimeStart, "20240102T090000Z"),
			wantTime:   time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			wantUTC:    true,
			wantString: "20240102T090000Z",
		},
		{
			name:         "floating date-time",
			prop:         newProp(ical.PropDateTimeStart, "20240102T090000"),
			wantTime:     time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			wantFloating: true,
			wantString:   "20240102T090000",
		},
		{
			name:         "date value",
			prop:         newProp(ical.PropDateTimeStart, "20240102", ical.ParamValue, "DATE"),
			wantTime:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			wantFloating: true,
			wantDateOnly: true,
			wantString:   "20240102",
		},
		{
			name:       "tz database zone",
			prop:       newProp(ical.PropDateTimeStart, "20240102T090000", ical.ParamTimezoneID, "Asia/Shanghai"),
			wantTime:   time.Date(2024, 1, 2, 9, 0, 0, 0, shanghai),
			wantString: "20240102T090000",
		},
		{
			name:        "phantom zone",
			prop:        newProp(ical.PropDateTimeStart, "20240102T090000", ical.ParamTimezoneID, "Nowhere/Atlantis"),
			wantTime:    time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			wantPhantom: true,
			wantString:  "20240102T090000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, err := ParseDateTime(tt.prop, timezone.NewRegistry())
			require.NoError(t, err)
			assert.True(t, tt.wantTime.Equal(dt.Time), "got %v, want %v", dt.Time, tt.wantTime)
			assert.Equal(t, tt.wantUTC, dt.IsUTC())
			assert.Equal(t, tt.wantFloating, dt.Floating)
			assert.Equal(t, tt.wantDateOnly, dt.DateOnly)
			assert.Equal(t, tt.wantPhantom, dt.IsPhantom())
			assert.Equal(t, tt.wantString, dt.String())
		})
	}
}

func TestParseDateTime_Invalid(t *testing.T) {
	_, err := ParseDateTime(newProp(ical.PropDateTimeStart, "not-a-date"), nil)
	assert.Error(t, err)

	_, err = ParseDateTime(newProp(ical.PropDateTimeStart, ""), nil)
	assert.Error(t, err)

	_, err = ParseDateTime(nil, nil)
	assert.Error(t, err)
}

func TestDateTime_KeyComparesInstants(t *testing.T) {
	reg := timezone.NewRegistry()
	utc, err := ParseDateTime(newProp(ical.PropRecurrenceID, "20240102T010000Z"), reg)
	require.NoError(t, err)
	local, err := ParseDateTime(newProp(ical.PropRecurrenceID, "20240102T090000", ical.ParamTimezoneID, "Asia/Shanghai"), reg)
	require.NoError(t, err)
	floating, err := ParseDateTime(newProp(ical.PropRecurrenceID, "20240102T010000"), reg)
	require.NoError(t, err)

	assert.True(t, utc.Equal(local))
	assert.False(t, utc.Equal(floating))
}

func TestDateTime_Prop(t *testing.T) {
	date := NewDate(2024, time.January, 2)
	prop := date.Prop(ical.PropDateTimeStart)
	assert.Equal(t, "20240102", prop.Value)
	assert.Equal(t, "DATE", prop.Params.Get(ical.ParamValue))

	utc := NewDateTime(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	prop = utc.Prop(ical.PropDateTimeStart)
	assert.Equal(t, "20240102T090000Z", prop.Value)
	assert.Empty(t, prop.Params.Get(ical.ParamTimezoneID))

	phantom := DateTime{Time: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), TZID: "Nowhere/Atlantis"}
	prop = phantom.Prop(ical.PropDateTimeStart)
	assert.Equal(t, "20240102T090000", prop.Value)
	assert.Equal(t, "Nowhere/Atlantis", prop.Params.Get(ical.ParamTimezoneID))
}
