package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollerDropsStaleResponses(t *testing.T) {
	var p Poller
	first := p.Begin()
	second := p.Begin()
	third := p.Begin()

	assert.True(t, p.Accept(second))
	assert.False(t, p.Accept(first), "older than the held snapshot")
	assert.False(t, p.Accept(second), "already held")
	assert.True(t, p.Accept(third))
}

func TestPollerFailedFetchDoesNotBlockLaterOnes(t *testing.T) {
	var p Poller
	p.Begin() // fails, never accepted
	next := p.Begin()

	assert.True(t, p.Accept(next))
}

func TestThrottleOneWritePerSecond(t *testing.T) {
	var th Throttle
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	writes := 0
	for i := 0; i < 30; i++ {
		// 100ms frames over three wall-clock seconds.
		if th.Allow(base.Add(time.Duration(i) * 100 * time.Millisecond)) {
			writes++
		}
	}
	assert.Equal(t, 3, writes)
}

func TestThrottleReset(t *testing.T) {
	var th Throttle
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, th.Allow(now))
	assert.False(t, th.Allow(now.Add(10*time.Millisecond)))
	th.Reset()
	assert.True(t, th.Allow(now.Add(20*time.Millisecond)))
}
