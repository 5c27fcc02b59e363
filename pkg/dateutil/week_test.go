package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekOf(t *testing.T) {
	testCases := []struct {
		name string
		at   time.Time
		want Week
	}{
		{
			name: "monday of week 43",
			at:   time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC),
			want: Week{Year: 2026, Number: 43},
		},
		{
			name: "sunday late belongs to same week",
			at:   time.Date(2026, time.October, 25, 23, 59, 59, 0, time.UTC),
			want: Week{Year: 2026, Number: 43},
		},
		{
			name: "january 1st in last week of previous year",
			at:   time.Date(2027, time.January, 1, 12, 0, 0, 0, time.UTC),
			want: Week{Year: 2026, Number: 53},
		},
		{
			name: "december 31st in week 1 of next year",
			at:   time.Date(2024, time.December, 31, 12, 0, 0, 0, time.UTC),
			want: Week{Year: 2025, Number: 1},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, WeekOf(tt.at, time.UTC))
		})
	}
}

func TestWeekOf_Location(t *testing.T) {
	// Sunday 23:30 UTC is already Monday in UTC+2.
	at := time.Date(2026, time.October, 25, 23, 30, 0, 0, time.UTC)
	loc := time.FixedZone("UTC+2", 2*60*60)

	require.Equal(t, Week{Year: 2026, Number: 43}, WeekOf(at, time.UTC))
	require.Equal(t, Week{Year: 2026, Number: 44}, WeekOf(at, loc))
}

func TestWeek_StartEnd(t *testing.T) {
	w := Week{Year: 2026, Number: 43}

	require.Equal(t, time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), w.Start(time.UTC))
	require.Equal(t, time.Date(2026, time.October, 25, 23, 59, 59, 0, time.UTC), w.End(time.UTC))

	w = Week{Year: 2026, Number: 53}
	require.Equal(t, time.Date(2026, time.December, 28, 0, 0, 0, 0, time.UTC), w.Start(time.UTC))

	w = Week{Year: 2025, Number: 1}
	require.Equal(t, time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC), w.Start(time.UTC))
}

func TestWeek_RoundTrip(t *testing.T) {
	at := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		day := at.AddDate(0, 0, i*3)
		w := WeekOf(day, time.UTC)

		require.False(t, day.Before(w.Start(time.UTC)))
		require.False(t, day.After(w.End(time.UTC)))
		require.Equal(t, w, WeekOf(w.Start(time.UTC), time.UTC))
	}
}

func TestParseWeekKey(t *testing.T) {
	w, err := ParseWeekKey("2026-W03")
	require.NoError(t, err)
	require.Equal(t, Week{Year: 2026, Number: 3}, w)
	require.Equal(t, "2026-W03", w.Key())

	_, err = ParseWeekKey("2026-3")
	require.Error(t, err)

	_, err = ParseWeekKey("2026-W54")
	require.Error(t, err)

	_, err = ParseWeekKey("2026-W3")
	require.Error(t, err)
}

func TestMonthKey(t *testing.T) {
	require.Equal(t, "2026-10", MonthKey(time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)))
}
