package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWorkingHours(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStart int
		wantEnd   int
		wantOK    bool
	}{
		{"standard hours", "09:00-17:00", 9 * 60, 17 * 60, true},
		{"early shift", "07:30-15:30", 7*60 + 30, 15*60 + 30, true},
		{"whitespace tolerated", " 10:00 - 18:00 ", 10 * 60, 18 * 60, true},
		{"empty falls back", "", 9 * 60, 17 * 60, false},
		{"missing dash falls back", "0900 to 1700", 9 * 60, 17 * 60, false},
		{"inverted range falls back", "17:00-09:00", 9 * 60, 17 * 60, false},
		{"garbage falls back", "lunchtime", 9 * 60, 17 * 60, false},
		{"bad minutes falls back", "09:99-17:00", 9 * 60, 17 * 60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseWorkingHours(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStart, got.StartMinute)
			assert.Equal(t, tt.wantEnd, got.EndMinute)
		})
	}
}

func TestWorkingHoursSpan(t *testing.T) {
	w, ok := ParseWorkingHours("09:00-17:00")
	assert.True(t, ok)
	assert.InDelta(t, 8.0, w.SpanHours(), 0.001)
}

func TestNormalizeProviderName(t *testing.T) {
	tests := []struct {
		name          string
		inName        string
		inTitle       string
		wantName      string
		wantTitle     string
		wantInferred  string
	}{
		{"dr prefix no title", "Dr. Cohen", "", "Dr. Cohen", "", "Doctor"},
		{"prof prefix no title", "Prof. Levy", "", "Prof. Levy", "", "Professor"},
		{"mr prefix no title", "Mr. Katz", "", "Mr. Katz", "", "Provider"},
		{"prefix with explicit title", "Dr. Cohen", "Surgeon", "Dr. Cohen", "", "Surgeon"},
		{"no prefix with title", "Cohen", "Doctor", "Cohen", "Doctor", "Doctor"},
		{"no prefix no title", "Cohen", "", "Cohen", "Provider", "Provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotName, gotTitle, inferred := NormalizeProviderName(tt.inName, tt.inTitle)
			assert.Equal(t, tt.wantName, gotName)
			assert.Equal(t, tt.wantTitle, gotTitle)
			assert.Equal(t, tt.wantInferred, inferred)
		})
	}
}

// Creating "Dr. Cohen" must display as exactly "Dr. Cohen", never
// "Doctor Dr. Cohen".
func TestDisplayNameNoDuplicatedTitle(t *testing.T) {
	name, title, _ := NormalizeProviderName("Dr. Cohen", "")
	p := Provider{Name: name, Title: title}
	assert.Equal(t, "Dr. Cohen", p.DisplayName())
}

func TestDisplayNameWithTitle(t *testing.T) {
	p := Provider{Name: "Cohen", Title: "Dr."}
	assert.Equal(t, "Dr. Cohen", p.DisplayName())
}

func TestColorForNameDeterministic(t *testing.T) {
	first := ColorForName("Dr. Cohen")
	second := ColorForName("Dr. Cohen")
	assert.Equal(t, first, second)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, first)
	assert.NotEqual(t, first, ColorForName("Dr. Levy"))
}
