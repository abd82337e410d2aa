package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandWeeklyOverTwoWeeks(t *testing.T) {
	// Monday 2025-03-10 lunch block, repeating weekly with no end date.
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	bt := BlockedTime{
		ID:         uuid.New(),
		ProviderID: uuid.New(),
		Start:      start,
		End:        start.Add(time.Hour),
		BlockType:  BlockLunch,
		Recurring:  true,
		Pattern:    RecurWeekly,
		Active:     true,
	}

	windowStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 14)

	occs := bt.Expand(windowStart, windowEnd)
	require.Len(t, occs, 2)
	assert.Equal(t, start, occs[0].Start)
	assert.Equal(t, start.AddDate(0, 0, 7), occs[1].Start)
	assert.Equal(t, "lunch", occs[0].Label)
	assert.True(t, occs[0].Recurring)
}

func TestExpandDaily(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	bt := BlockedTime{
		Start:     start,
		End:       start.Add(30 * time.Minute),
		Recurring: true,
		Pattern:   RecurDaily,
		Active:    true,
	}

	occs := bt.Expand(start, start.AddDate(0, 0, 5))
	assert.Len(t, occs, 5)
}

func TestExpandHonorsRecurrenceEnd(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	until := start.AddDate(0, 0, 8)
	bt := BlockedTime{
		Start:         start,
		End:           start.Add(time.Hour),
		Recurring:     true,
		Pattern:       RecurWeekly,
		RecurrenceEnd: &until,
		Active:        true,
	}

	occs := bt.Expand(start, start.AddDate(0, 0, 60))
	assert.Len(t, occs, 2)
}

func TestExpandNonRecurring(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	bt := BlockedTime{
		Start:  start,
		End:    start.Add(time.Hour),
		Reason: "staff meeting",
		Active: true,
	}

	occs := bt.Expand(start.AddDate(0, 0, -1), start.AddDate(0, 0, 1))
	require.Len(t, occs, 1)
	assert.Equal(t, "staff meeting", occs[0].Label)

	assert.Empty(t, bt.Expand(start.AddDate(0, 0, 2), start.AddDate(0, 0, 3)))
}

func TestExpandInactiveYieldsNothing(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	bt := BlockedTime{Start: start, End: start.Add(time.Hour), Active: false}
	assert.Empty(t, bt.Expand(start, start.AddDate(0, 0, 14)))
}

func TestFindBlockedConflict(t *testing.T) {
	lunchStart := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	blocks := []BlockedTime{
		{
			Start:     lunchStart,
			End:       lunchStart.Add(time.Hour),
			BlockType: BlockLunch,
			Recurring: true,
			Pattern:   RecurWeekly,
			Active:    true,
		},
	}

	// The following Monday's lunch still conflicts via expansion.
	apptStart := lunchStart.AddDate(0, 0, 7).Add(30 * time.Minute)
	conflict := FindBlockedConflict(blocks, apptStart, apptStart.Add(30*time.Minute))
	require.NotNil(t, conflict)
	assert.Equal(t, "lunch", conflict.Label)

	free := FindBlockedConflict(blocks, lunchStart.Add(2*time.Hour), lunchStart.Add(3*time.Hour))
	assert.Nil(t, free)
}

func TestBlockedTimeLabel(t *testing.T) {
	assert.Equal(t, "vacation", BlockedTime{BlockType: BlockVacation}.Label())
	assert.Equal(t, "dentist", BlockedTime{BlockType: BlockOther, Reason: "dentist"}.Label())
	assert.Equal(t, "blocked", BlockedTime{}.Label())
}
