package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func TestDayWindowUsesLocalMidnight(t *testing.T) {
	loc := saoPaulo(t)
	// 01:30 UTC ainda é o dia anterior em São Paulo
	instant := time.Date(2026, 5, 11, 1, 30, 0, 0, time.UTC)

	start, end := DayWindow(instant, loc)

	assert.Equal(t, "2026-05-10", start.Format(DateLayout))
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestSameDayIgnoresTimeOfDay(t *testing.T) {
	loc := saoPaulo(t)
	morning := time.Date(2026, 5, 10, 7, 0, 0, 0, loc)
	night := time.Date(2026, 5, 10, 22, 0, 0, 0, loc)
	nextMorning := morning.AddDate(0, 0, 1)

	assert.True(t, SameDay(morning, night, loc))
	assert.False(t, SameDay(morning, nextMorning, loc))
}

func TestParseDay(t *testing.T) {
	loc := saoPaulo(t)

	day, err := ParseDay("2026-05-10", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, loc), day)

	instant, err := ParseDay("2026-05-10T12:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-10", DayKey(instant, loc))

	_, err = ParseDay("10/05/2026", loc)
	assert.Error(t, err)
}

func TestNewTripSummaryClampsAvailableSeats(t *testing.T) {
	assert.Equal(t, int64(20), NewTripSummary(Trip{}, 5).Available)
	assert.Equal(t, int64(0), NewTripSummary(Trip{}, 30).Available)
}
