package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultWorkingHours is the fallback span applied when a provider's
// configured hours cannot be parsed.
const DefaultWorkingHours = "09:00-17:00"

// Provider is a staff member who delivers services and owns a calendar.
type Provider struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	Specialty    string    `json:"specialty,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Color        string    `json:"color"`
	WorkingHours string    `json:"workingHours"`
	Notes        string    `json:"notes,omitempty"`
	Active       bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName composes title and name. Providers created through the
// assistant never carry a duplicated courtesy prefix, so this stays a
// plain concatenation.
func (p Provider) DisplayName() string {
	if p.Title != "" {
		return p.Title + " " + p.Name
	}
	return p.Name
}

// WorkingHours is a parsed daily working span in local clock minutes.
type WorkingHours struct {
	StartMinute int // minutes since midnight
	EndMinute   int
}

// SpanHours returns the span length in fractional hours.
func (w WorkingHours) SpanHours() float64 {
	return float64(w.EndMinute-w.StartMinute) / 60
}

// ParseWorkingHours parses "HH:MM-HH:MM". Malformed input yields the
// 09:00-17:00 default and ok=false so callers can log the bad
// configuration instead of silently swallowing it.
func ParseWorkingHours(s string) (WorkingHours, bool) {
	fallback := WorkingHours{StartMinute: 9 * 60, EndMinute: 17 * 60}

	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return fallback, false
	}
	start, okStart := parseClock(parts[0])
	end, okEnd := parseClock(parts[1])
	if !okStart || !okEnd || end <= start {
		return fallback, false
	}
	return WorkingHours{StartMinute: start, EndMinute: end}, true
}

func parseClock(s string) (int, bool) {
	hm := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(hm) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

var titlePrefixes = map[string]string{
	"Dr.":   "Doctor",
	"Prof.": "Professor",
	"Mr.":   "Provider",
	"Ms.":   "Provider",
	"Mrs.":  "Provider",
}

// NormalizeProviderName applies the courtesy-title rule: when the name
// already starts with a prefix like "Dr." the separate title field is left
// empty so DisplayName does not duplicate it, and a title label is inferred
// when none was supplied.
func NormalizeProviderName(name, title string) (finalName, finalTitle, inferredTitle string) {
	trimmed := strings.TrimSpace(name)
	for prefix, label := range titlePrefixes {
		if strings.HasPrefix(trimmed, prefix+" ") {
			if title == "" {
				title = label
			}
			return trimmed, "", title
		}
	}
	if title == "" {
		title = "Provider"
	}
	return trimmed, title, title
}

// ColorForName derives a deterministic display color from the provider name.
func ColorForName(name string) string {
	sum := md5.Sum([]byte(name))
	prefix := hex.EncodeToString(sum[:3])
	n, _ := strconv.ParseUint(prefix, 16, 32)
	return fmt.Sprintf("#%06x", n%0xFFFFFF)
}
