package eventtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowAppliesFixedOffset(t *testing.T) {
	before := time.Now().UTC().Add(OffsetHours * time.Hour)
	got := Now()
	after := time.Now().UTC().Add(OffsetHours * time.Hour)

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	clock := Fixed{T: at}
	assert.True(t, clock.Now().Equal(at))
	assert.True(t, clock.Now().Equal(clock.Now()))
}

func TestSystemClockTracksNow(t *testing.T) {
	clock := System()
	diff := clock.Now().Sub(Now())
	if diff < 0 {
		diff = -diff
	}
	assert.Less(t, diff, time.Second)
}

func TestHoursSince(t *testing.T) {
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.InDelta(t, 3.5, HoursSince(base.Add(3*time.Hour+30*time.Minute), base), 0.001)
	assert.InDelta(t, -2, HoursSince(base.Add(-2*time.Hour), base), 0.001)
}
