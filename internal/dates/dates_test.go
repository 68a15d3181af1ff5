package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekDaysExpandsSundayToThursday(t *testing.T) {
	sunday := time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC)
	require.True(t, IsSunday(sunday))

	days := WeekDays(sunday)
	require.Len(t, days, 5)
	require.Equal(t, "الأحد", days[0].Name)
	require.Equal(t, "الخميس", days[4].Name)
	require.Equal(t, sunday, days[0].Date)
	require.Equal(t, sunday.AddDate(0, 0, 4), days[4].Date)

	for _, d := range days {
		require.NotEmpty(t, d.HijriDate)
		require.Len(t, d.HijriDate, 10)
	}
}

func TestIsSunday(t *testing.T) {
	require.True(t, IsSunday(time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC)))
	require.False(t, IsSunday(time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)))
}
