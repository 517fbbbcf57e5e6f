package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the transport deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestTransport() (*Transport, *fakeClock) {
	clock := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	tr := NewTransport()
	tr.now = clock.now
	tr.state.LastEventAt = clock.t.UnixMilli()
	return tr, clock
}

func ptr[T any](v T) *T {
	return &v
}

func TestPlaySetsTrackAndPosition(t *testing.T) {
	tr, _ := newTestTransport()

	state, ok := tr.Apply(Action{Action: ActionPlay, SongID: ptr(int64(5)), Time: ptr(12.5)})
	require.True(t, ok)
	require.NotNil(t, state.ActiveTrackID)
	assert.Equal(t, int64(5), *state.ActiveTrackID)
	assert.True(t, state.IsPlaying)
	assert.Equal(t, 12.5, state.PositionSeconds)
}

func TestDriftMonotonicity(t *testing.T) {
	tr, clock := newTestTransport()

	tr.Apply(Action{Action: ActionPlay, SongID: ptr(int64(1)), Time: ptr(5.0)})

	clock.advance(3 * time.Second)
	assert.InDelta(t, 8.0, tr.Snapshot().PositionSeconds, 1e-9)

	clock.advance(7 * time.Second)
	assert.InDelta(t, 15.0, tr.Snapshot().PositionSeconds, 1e-9)
}

func TestSnapshotDoesNotMutateRawState(t *testing.T) {
	tr, clock := newTestTransport()

	tr.Apply(Action{Action: ActionPlay, SongID: ptr(int64(1)), Time: ptr(0.0)})
	eventAt := clock.t.UnixMilli()

	clock.advance(42 * time.Second)
	snap := tr.Snapshot()
	assert.Equal(t, eventAt, snap.LastEventAt)

	// The raw state must stay frozen at the last event.
	tr.mu.Lock()
	assert.Equal(t, 0.0, tr.state.PositionSeconds)
	tr.mu.Unlock()
}

func TestPauseFreezesPosition(t *testing.T) {
	tr, clock := newTestTransport()

	tr.Apply(Action{Action: ActionPlay, SongID: ptr(int64(1)), Time: ptr(10.0)})
	clock.advance(4 * time.Second)

	state, ok := tr.Apply(Action{Action: ActionPause})
	require.True(t, ok)
	assert.False(t, state.IsPlaying)
	assert.InDelta(t, 14.0, state.PositionSeconds, 1e-9)

	// No intervening action: every later snapshot returns the pause position.
	clock.advance(30 * time.Second)
	assert.InDelta(t, 14.0, tr.Snapshot().PositionSeconds, 1e-9)
	clock.advance(time.Hour)
	assert.InDelta(t, 14.0, tr.Snapshot().PositionSeconds, 1e-9)
}

func TestPauseWithExplicitTime(t *testing.T) {
	tr, clock := newTestTransport()

	tr.Apply(Action{Action: ActionPlay, SongID: ptr(int64(1)), Time: ptr(10.0)})
	clock.advance(4 * time.Second)

	state, _ := tr.Apply(Action{Action: ActionPause, Time: ptr(11.5)})
	assert.Equal(t, 11.5, state.PositionSeconds)
}

func TestSeekKeepsPlayState(t *testing.T) {
	tr, _ := newTestTransport()

	tr.Apply(Action{Action: ActionPlay, SongID: ptr(int64(1)), Time: ptr(0.0)})
	state, _ := tr.Apply(Action{Action: ActionSeek, Time: ptr(90.0)})
	assert.True(t, state.IsPlaying)
	assert.Equal(t, 90.0, state.PositionSeconds)

	tr.Apply(Action{Action: ActionPause})
	state, _ = tr.Apply(Action{Action: ActionSeek, Time: ptr(30.0)})
	assert.False(t, state.IsPlaying)
	assert.Equal(t, 30.0, state.PositionSeconds)
}

func TestChangeTrackResetsPosition(t *testing.T) {
	tr, clock := newTestTransport()

	tr.Apply(Action{Action: ActionPlay, SongID: ptr(int64(5)), Time: ptr(0.0)})
	clock.advance(10 * time.Second)

	state, ok := tr.Apply(Action{Action: ActionChangeTrack, SongID: ptr(int64(7))})
	require.True(t, ok)
	require.NotNil(t, state.ActiveTrackID)
	assert.Equal(t, int64(7), *state.ActiveTrackID)
	assert.True(t, state.IsPlaying)
	assert.Equal(t, 0.0, state.PositionSeconds)

	// And the new clock reference starts at the change, not at the old play.
	clock.advance(2 * time.Second)
	assert.InDelta(t, 2.0, tr.Snapshot().PositionSeconds, 1e-9)
}

func TestUnrecognizedActionIsNoOp(t *testing.T) {
	tr, _ := newTestTransport()

	tr.Apply(Action{Action: ActionPlay, SongID: ptr(int64(1)), Time: ptr(3.0)})
	before := tr.Snapshot()

	var notified int
	tr.Subscribe(func(State) { notified++ })

	_, ok := tr.Apply(Action{Action: "SHUFFLE"})
	assert.False(t, ok)
	assert.Zero(t, notified)

	after := tr.Snapshot()
	assert.Equal(t, before.LastEventAt, after.LastEventAt)
	assert.Equal(t, before.ActiveTrackID, after.ActiveTrackID)
}

func TestSubscribersReceiveRawState(t *testing.T) {
	tr, clock := newTestTransport()

	var got []State
	tr.Subscribe(func(s State) { got = append(got, s) })

	tr.Apply(Action{Action: ActionPlay, SongID: ptr(int64(1)), Time: ptr(6.0)})
	eventAt := clock.t.UnixMilli()

	require.Len(t, got, 1)
	// Raw position plus the event timestamp, never a drift-adjusted value:
	// receivers recompute drift themselves.
	assert.Equal(t, 6.0, got[0].PositionSeconds)
	assert.Equal(t, eventAt, got[0].LastEventAt)
}
