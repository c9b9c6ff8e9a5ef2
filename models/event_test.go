package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	eventStart = time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	eventEnd   = time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
)

func calendarEvent(status EventStatus) *Event {
	return &Event{Name: "Gala", StartDate: eventStart, EndDate: eventEnd, Status: status}
}

func TestComputeStatusFollowsCalendar(t *testing.T) {
	e := calendarEvent(EventStatusUpcoming)

	assert.Equal(t, EventStatusUpcoming, e.ComputeStatus(eventStart.Add(-time.Hour)))
	assert.Equal(t, EventStatusOngoing, e.ComputeStatus(eventStart))
	assert.Equal(t, EventStatusOngoing, e.ComputeStatus(eventEnd.Add(-time.Minute)))
	assert.Equal(t, EventStatusEnded, e.ComputeStatus(eventEnd))
}

func TestComputeStatusPreservesManualOverride(t *testing.T) {
	for _, status := range []EventStatus{EventStatusCancelled, EventStatusOnHold} {
		e := calendarEvent(status)
		// Takvim ne derse desin override korunur
		assert.Equal(t, status, e.ComputeStatus(eventStart.Add(-time.Hour)))
		assert.Equal(t, status, e.ComputeStatus(eventEnd.Add(time.Hour)))
	}
}

func TestCanAddInvitees(t *testing.T) {
	assert.True(t, calendarEvent(EventStatusUpcoming).CanAddInvitees())
	assert.True(t, calendarEvent(EventStatusOngoing).CanAddInvitees())
	assert.False(t, calendarEvent(EventStatusEnded).CanAddInvitees())
	assert.False(t, calendarEvent(EventStatusCancelled).CanAddInvitees())
	assert.False(t, calendarEvent(EventStatusOnHold).CanAddInvitees())
}

func TestIsCheckinAllowedGracePeriod(t *testing.T) {
	e := calendarEvent(EventStatusEnded)

	// Süre tanımlı değilse bitmiş etkinlikte check-in kapalı
	assert.False(t, e.IsCheckinAllowed(eventEnd.Add(time.Hour)))

	hours := 3
	e.CheckinPinAutoDeactivateHours = &hours
	assert.True(t, e.IsCheckinAllowed(eventEnd.Add(2*time.Hour)))
	assert.True(t, e.IsCheckinAllowed(eventEnd.Add(3*time.Hour)))
	assert.False(t, e.IsCheckinAllowed(eventEnd.Add(3*time.Hour+time.Minute)))

	// Canlı etkinlikte süreye bakılmaz
	live := calendarEvent(EventStatusOngoing)
	assert.True(t, live.IsCheckinAllowed(eventEnd.Add(-time.Hour)))
}

func TestAssignedToGroup(t *testing.T) {
	group := InviterGroup{BaseModel: BaseModel{ID: 7}, Name: "Protokol"}

	all := &Event{IsAllGroups: true}
	assert.True(t, all.AssignedToGroup(7))
	assert.True(t, all.AssignedToGroup(99))

	scoped := &Event{InviterGroups: []InviterGroup{group}}
	assert.True(t, scoped.AssignedToGroup(7))
	assert.False(t, scoped.AssignedToGroup(99))
}

func TestEventStatusValidation(t *testing.T) {
	for _, s := range []EventStatus{EventStatusUpcoming, EventStatusOngoing, EventStatusEnded, EventStatusCancelled, EventStatusOnHold} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, EventStatus("archived").Valid())

	assert.True(t, EventStatusCancelled.IsManualOverride())
	assert.True(t, EventStatusOnHold.IsManualOverride())
	assert.False(t, EventStatusEnded.IsManualOverride())
}
