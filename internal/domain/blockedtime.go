package domain

import (
	"time"

	"github.com/google/uuid"
)

// BlockType categorizes why a provider is unavailable.
type BlockType string

const (
	BlockLunch    BlockType = "lunch"
	BlockBreak    BlockType = "break"
	BlockMeeting  BlockType = "meeting"
	BlockVacation BlockType = "vacation"
	BlockSick     BlockType = "sick"
	BlockPersonal BlockType = "personal"
	BlockOther    BlockType = "other"
)

// RecurrencePattern enumerates supported repeat intervals.
type RecurrencePattern string

const (
	RecurDaily   RecurrencePattern = "daily"
	RecurWeekly  RecurrencePattern = "weekly"
	RecurMonthly RecurrencePattern = "monthly"
)

// ValidRecurrencePattern reports whether p is a supported repeat interval.
func ValidRecurrencePattern(p RecurrencePattern) bool {
	switch p {
	case RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

// BlockedTime is a provider-unavailable interval, optionally recurring.
// A recurring row is a template; occurrences are generated on read and
// never materialized.
type BlockedTime struct {
	ID            uuid.UUID         `json:"id"`
	ProviderID    uuid.UUID         `json:"providerId"`
	Start         time.Time         `json:"startTime"`
	End           time.Time         `json:"endTime"`
	BlockType     BlockType         `json:"blockType"`
	Reason        string            `json:"reason,omitempty"`
	Recurring     bool              `json:"isRecurring"`
	Pattern       RecurrencePattern `json:"recurrencePattern,omitempty"`
	RecurrenceEnd *time.Time        `json:"recurrenceEndDate,omitempty"`
	Active        bool              `json:"isActive"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Label returns the human-readable reason shown in conflict messages.
func (b BlockedTime) Label() string {
	if b.Reason != "" {
		return b.Reason
	}
	if b.BlockType != "" {
		return string(b.BlockType)
	}
	return "blocked"
}

// Occurrence is one concrete interval of a blocked time within a window.
type Occurrence struct {
	BlockedTimeID uuid.UUID
	ProviderID    uuid.UUID
	Start         time.Time
	End           time.Time
	Label         string
	Recurring     bool
	Pattern       RecurrencePattern
}

// Expand generates the concrete occurrences of b that intersect
// [windowStart, windowEnd). Expansion is bounded by the recurrence end
// date and the window, so it always terminates. Monthly steps 30 days.
func (b BlockedTime) Expand(windowStart, windowEnd time.Time) []Occurrence {
	if !b.Active {
		return nil
	}

	if !b.Recurring || b.Pattern == "" {
		if b.Start.Before(windowEnd) && b.End.After(windowStart) {
			return []Occurrence{b.occurrence(b.Start, b.End)}
		}
		return nil
	}

	horizon := windowEnd
	if b.RecurrenceEnd != nil && b.RecurrenceEnd.Before(horizon) {
		horizon = *b.RecurrenceEnd
	}

	var out []Occurrence
	duration := b.End.Sub(b.Start)
	start := b.Start
	for !start.After(horizon) {
		end := start.Add(duration)
		if start.Before(windowEnd) && end.After(windowStart) {
			out = append(out, b.occurrence(start, end))
		}
		switch b.Pattern {
		case RecurDaily:
			start = start.AddDate(0, 0, 1)
		case RecurWeekly:
			start = start.AddDate(0, 0, 7)
		case RecurMonthly:
			start = start.AddDate(0, 0, 30)
		default:
			return out
		}
	}
	return out
}

func (b BlockedTime) occurrence(start, end time.Time) Occurrence {
	return Occurrence{
		BlockedTimeID: b.ID,
		ProviderID:    b.ProviderID,
		Start:         start,
		End:           end,
		Label:         b.Label(),
		Recurring:     b.Recurring,
		Pattern:       b.Pattern,
	}
}

// FindBlockedConflict expands each blocked time over [start, end) and
// returns the first occurrence overlapping the range, or nil.
func FindBlockedConflict(blocks []BlockedTime, start, end time.Time) *Occurrence {
	for _, b := range blocks {
		for _, occ := range b.Expand(start, end) {
			if occ.Start.Before(end) && occ.End.After(start) {
				return &occ
			}
		}
	}
	return nil
}
