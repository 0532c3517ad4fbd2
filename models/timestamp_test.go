package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampSortsChronologically(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		earlier time.Time
		later   time.Time
	}{
		{"whole seconds", base, base.Add(time.Second)},
		{"trailing zero fraction", base.Add(100 * time.Millisecond), base.Add(150 * time.Millisecond)},
		{"zero vs fractional", base, base.Add(time.Nanosecond)},
		{"fraction prefix", base.Add(500 * time.Millisecond), base.Add(500*time.Millisecond + time.Nanosecond)},
	}
	for _, tc := range cases {
		a, b := Timestamp(tc.earlier), Timestamp(tc.later)
		assert.Less(t, a, b, tc.name)
		assert.Len(t, a, len(b), "fixed-width encoding")
	}
}

func TestTimestampNormalizesToUTC(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	at := time.Date(2026, 3, 10, 13, 0, 0, 250*int(time.Millisecond), berlin)

	got := Timestamp(at)
	assert.Equal(t, "2026-03-10T12:00:00.250000000Z", got)

	parsed, err := time.Parse(time.RFC3339Nano, got)
	assert.NoError(t, err)
	assert.True(t, parsed.Equal(at))
}
