package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIn_UsesLocalDayNotUTC(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 23:30 UTC on the 6th is already the 7th in Tokyo.
	instant := time.Date(2026, 2, 6, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, New(2026, 2, 6), In(instant, time.UTC))
	assert.Equal(t, New(2026, 2, 7), In(instant, tokyo))
}

func TestAddDays_CrossesMonthAndYear(t *testing.T) {
	assert.Equal(t, New(2026, 3, 1), New(2026, 2, 28).AddDays(1))
	assert.Equal(t, New(2025, 12, 31), New(2026, 1, 1).AddDays(-1))
	assert.True(t, New(2026, 1, 1).AddDays(-1).Before(New(2026, 1, 1)))
}

func TestWeekStart_IsMonday(t *testing.T) {
	// 2026-02-08 is a Sunday.
	assert.Equal(t, New(2026, 2, 2), New(2026, 2, 8).WeekStart())
	assert.Equal(t, New(2026, 2, 2), New(2026, 2, 2).WeekStart())
	assert.Equal(t, time.Monday, New(2026, 2, 5).WeekStart().Weekday())
}

func TestEndIn_IsLastSecondOfLocalDay(t *testing.T) {
	end := New(2026, 2, 7).EndIn(time.UTC)
	assert.Equal(t, time.Date(2026, 2, 7, 23, 59, 59, 0, time.UTC), end)
}

func TestScanAndValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-02-07", d.String())

	require.NoError(t, d.Scan([]byte("2026-01-31")))
	assert.Equal(t, New(2026, 1, 31), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	v, err := d.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = New(2026, 2, 7).Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-02-07", v)

	assert.Error(t, d.Scan(42))
}
