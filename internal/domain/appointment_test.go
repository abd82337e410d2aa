package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentValidate(t *testing.T) {
	now := time.Now()

	ok := Appointment{Start: now, End: now.Add(30 * time.Minute)}
	assert.NoError(t, ok.Validate())

	inverted := Appointment{Start: now, End: now.Add(-time.Minute)}
	err := inverted.Validate()
	assert.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	zero := Appointment{Start: now, End: now}
	assert.Error(t, zero.Validate())
}

func TestAppointmentOverlaps(t *testing.T) {
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	a := Appointment{Start: base, End: base.Add(30 * time.Minute)}

	assert.True(t, a.Overlaps(base.Add(15*time.Minute), base.Add(45*time.Minute)))
	assert.True(t, a.Overlaps(base.Add(-15*time.Minute), base.Add(15*time.Minute)))
	// Touching intervals do not overlap.
	assert.False(t, a.Overlaps(base.Add(30*time.Minute), base.Add(time.Hour)))
	assert.False(t, a.Overlaps(base.Add(-time.Hour), base))
}

func TestDisplayColorFallback(t *testing.T) {
	p := Provider{Color: "#aabbcc"}

	assert.Equal(t, "#112233", Appointment{Color: "#112233"}.DisplayColor(&p))
	assert.Equal(t, "#aabbcc", Appointment{}.DisplayColor(&p))
	assert.Equal(t, "#1a73e8", Appointment{}.DisplayColor(nil))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusScheduled))
	assert.True(t, ValidStatus(StatusNoShow))
	assert.False(t, ValidStatus("pending"))
}

func TestChatTitleFromMessage(t *testing.T) {
	assert.Equal(t, "book John tomorrow", ChatTitleFromMessage("book John tomorrow"))

	long := "please book an appointment for John Smith with Dr. Cohen next Tuesday at three"
	title := ChatTitleFromMessage(long)
	assert.Len(t, []rune(title), 53)
	assert.Equal(t, "...", title[len(title)-3:])
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindNotFound, KindOf(NotFound("provider not found")))
	assert.Equal(t, KindConflict, KindOf(Conflict("already booked")))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
}
