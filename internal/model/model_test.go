package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func TestEventPatch_AbsentNullValue(t *testing.T) {
	t.Parallel()

	var p EventPatch
	err := json.Unmarshal([]byte(`{"title":"Retro","description":null,"attendees":["a","b"]}`), &p)
	require.NoError(t, err)

	require.True(t, p.Title.Set)
	require.False(t, p.Title.Null)
	require.Equal(t, "Retro", p.Title.Value)

	require.True(t, p.Description.Set)
	require.True(t, p.Description.Null)

	require.True(t, p.Attendees.Set)
	require.Equal(t, []string{"a", "b"}, p.Attendees.Value)

	require.False(t, p.Location.Set)
	require.False(t, p.Start.Set)
	require.False(t, p.Recurrence.Set)
	require.False(t, p.IsEmpty())
}

func TestEventPatch_MarshalOmitsAbsent(t *testing.T) {
	t.Parallel()

	p := EventPatch{Title: Some("Standup"), Location: Null[string]()}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `{"title":"Standup","location":null}`, string(b))

	var back EventPatch
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, p, back)
}

func TestEventPatch_IsEmpty(t *testing.T) {
	t.Parallel()

	var p EventPatch
	require.NoError(t, json.Unmarshal([]byte(`{"unknown":1}`), &p))
	require.True(t, p.IsEmpty())
}

func TestEvent_CloneDoesNotAlias(t *testing.T) {
	t.Parallel()

	n := 3
	ev := Event{
		ID:         uuid.Must(uuid.NewV4()),
		Attendees:  []string{"ann"},
		Recurrence: &Recurrence{Freq: FreqWeekly, Interval: 1, ByWeekday: []int{1}, Count: &n},
	}
	c := ev.Clone()
	c.Attendees[0] = "bob"
	c.Recurrence.ByWeekday[0] = 5
	*c.Recurrence.Count = 9

	require.Equal(t, "ann", ev.Attendees[0])
	require.Equal(t, 1, ev.Recurrence.ByWeekday[0])
	require.Equal(t, 3, *ev.Recurrence.Count)
}

func TestRecurrence_Check(t *testing.T) {
	t.Parallel()

	zero := 0
	cases := []struct {
		name string
		r    Recurrence
		ok   bool
	}{
		{"empty freq", Recurrence{Interval: 1}, true},
		{"weekly", Recurrence{Freq: FreqWeekly, Interval: 2, ByWeekday: []int{0, 6}}, true},
		{"bad freq", Recurrence{Freq: "Hourly", Interval: 1}, false},
		{"zero interval", Recurrence{Freq: FreqDaily}, false},
		{"weekday range", Recurrence{Freq: FreqWeekly, Interval: 1, ByWeekday: []int{7}}, false},
		{"zero count", Recurrence{Freq: FreqDaily, Interval: 1, Count: &zero}, false},
	}
	for _, tc := range cases {
		err := tc.r.Check()
		if tc.ok {
			require.NoError(t, err, tc.name)
		} else {
			require.Error(t, err, tc.name)
		}
	}
}

func TestRecurrence_NormalizeDefaultsInterval(t *testing.T) {
	t.Parallel()

	r := Recurrence{Freq: FreqDaily}
	r.Normalize()
	require.Equal(t, 1, r.Interval)
}

func TestRecurrence_RRule(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	count := 10
	r := Recurrence{Freq: FreqWeekly, Interval: 2, ByWeekday: []int{1, 3}, Count: &count}

	s, err := r.RRule(start)
	require.NoError(t, err)
	require.Contains(t, s, "FREQ=WEEKLY")
	require.Contains(t, s, "INTERVAL=2")
	require.Contains(t, s, "COUNT=10")
	require.Contains(t, s, "MO")
	require.Contains(t, s, "WE")
	require.False(t, strings.Contains(s, "DTSTART"))

	none, err := Recurrence{Interval: 1}.RRule(start)
	require.NoError(t, err)
	require.Empty(t, none)
}
