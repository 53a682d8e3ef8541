package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func ms(n int64) time.Duration { return time.Duration(n) * time.Millisecond }

func snapshot(id string, week, today time.Duration) ProjectSnapshot {
	return ProjectSnapshot{
		ID:          id,
		Name:        "Project " + id,
		Color:       "#6C63FF",
		Week:        week,
		Today:       today,
		ClaudeState: ClaudeStopped,
	}
}

func TestProjectIsPure(t *testing.T) {
	base := snapshot("p", ms(10_000), ms(5_000))
	o := &Override{Active: true, StartTime: t0}
	now := t0.Add(42 * time.Second)

	first := Project(base, o, nil, t0, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Project(base, o, nil, t0, now))
	}
}

func TestProjectActiveOverride(t *testing.T) {
	// Scenario A: an active override adds the time since its start.
	base := snapshot("p", 0, 0)
	o := &Override{Active: true, StartTime: t0}

	got := Project(base, o, nil, t0, t0.Add(ms(65_000)))

	assert.Equal(t, ms(65_000), got.Week)
	assert.Equal(t, ms(65_000), got.Today)
	assert.Equal(t, "1m 5s", FormatElapsed(got.Week))
}

func TestProjectMonotonicWithActiveOverride(t *testing.T) {
	base := snapshot("p", time.Hour, 20*time.Minute)
	o := &Override{Active: true, StartTime: t0}

	prev := Project(base, o, nil, t0, t0)
	for step := 1; step <= 50; step++ {
		now := t0.Add(time.Duration(step) * 173 * time.Millisecond)
		got := Project(base, o, nil, t0, now)
		require.GreaterOrEqual(t, got.Week, prev.Week)
		require.GreaterOrEqual(t, got.Today, prev.Today)
		prev = got
	}
}

func TestProjectExtrapolatesOpenBackendSession(t *testing.T) {
	base := snapshot("p", ms(100_000), ms(50_000))
	base.IsTracking = true
	base.Elapsed = ms(10_000)
	fetchedAt := t0

	got := Project(base, nil, nil, fetchedAt, t0.Add(3*time.Second))

	assert.Equal(t, ms(113_000), got.Week)
	assert.Equal(t, ms(63_000), got.Today)
}

func TestProjectInactiveOverrideFallsBackToBaseline(t *testing.T) {
	base := snapshot("p", ms(100_000), ms(50_000))
	o := &Override{Active: false}

	got := Project(base, o, nil, t0, t0.Add(time.Minute))

	assert.Equal(t, Times{Week: ms(100_000), Today: ms(50_000)}, got)
}

func TestProjectTrackingWithoutElapsedAddsNothing(t *testing.T) {
	base := snapshot("p", ms(100_000), ms(50_000))
	base.IsTracking = true

	got := Project(base, nil, nil, t0, t0.Add(time.Minute))

	assert.Equal(t, ms(100_000), got.Week)
}

func TestProjectFreezeWins(t *testing.T) {
	base := snapshot("p", ms(100_000), ms(50_000))
	base.IsTracking = true
	base.Elapsed = time.Minute
	f := &Frozen{Week: ms(65_000), Today: ms(65_000)}
	o := &Override{Active: true, StartTime: t0}

	for _, now := range []time.Time{t0, t0.Add(time.Hour), t0.Add(-time.Hour)} {
		assert.Equal(t, *f, Project(base, o, f, t0, now))
	}
}

func TestProjectClockSkewNeverNegative(t *testing.T) {
	base := snapshot("p", ms(1_000), ms(1_000))
	o := &Override{Active: true, StartTime: t0}

	got := Project(base, o, nil, t0, t0.Add(-time.Minute))

	assert.Equal(t, ms(1_000), got.Week)
}

func TestProjectorCachesLastRendered(t *testing.T) {
	p := NewProjector()
	base := snapshot("p", 0, 0)
	o := &Override{Active: true, StartTime: t0}

	_, ok := p.LastRendered("p")
	require.False(t, ok)

	got := p.Project(base, o, nil, t0, t0.Add(5*time.Second))
	last, ok := p.LastRendered("p")
	require.True(t, ok)
	assert.Equal(t, got, last)

	// A frozen value passes through without replacing the cache.
	p.Project(base, o, &Frozen{Week: time.Hour}, t0, t0.Add(time.Minute))
	last, _ = p.LastRendered("p")
	assert.Equal(t, got, last)

	p.Forget("p")
	_, ok = p.LastRendered("p")
	assert.False(t, ok)
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{999 * time.Millisecond, "0s"},
		{5 * time.Second, "5s"},
		{65 * time.Second, "1m 5s"},
		{time.Hour, "1h 0m 0s"},
		{26*time.Hour + 3*time.Minute + 7*time.Second, "26h 3m 7s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatElapsed(tt.d), "FormatElapsed(%v)", tt.d)
	}
}
