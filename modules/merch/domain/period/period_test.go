package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPriorYearSameDate_ClampsLeapDay(t *testing.T) {
	now := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	got := PriorYearSameDate(now)
	require.Equal(t, time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), got)
}

func TestPriorYearSameDate_PlainDate(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
	got := PriorYearSameDate(now)
	require.Equal(t, time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC), got)
}

func TestPriorYearSameDate_LeapDayToLeapYear(t *testing.T) {
	// 2025 -> 2024 keeps Feb 28 as-is; nothing to clamp.
	now := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC), PriorYearSameDate(now))
}

func TestDaysInMonth(t *testing.T) {
	require.Equal(t, 29, DaysInMonth(2024, time.February))
	require.Equal(t, 28, DaysInMonth(2023, time.February))
	require.Equal(t, 31, DaysInMonth(2024, time.December))
	require.Equal(t, 30, DaysInMonth(2024, time.April))
}

func TestOrderWindow(t *testing.T) {
	start, end := OrderWindow(2025, time.March, 90)
	require.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), end)

	start, end = OrderWindow(2025, time.March, 30)
	require.Equal(t, time.Date(2025, time.January, 30, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), end)
}
