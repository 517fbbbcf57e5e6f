package player

import (
	"sync"
	"time"
)

// Action names accepted over the realtime channel. Anything else is ignored
// so older and newer clients can coexist.
const (
	ActionPlay        = "PLAY"
	ActionPause       = "PAUSE"
	ActionSeek        = "SEEK"
	ActionChangeTrack = "CHANGE_TRACK"
)

// Action is a client playback request.
type Action struct {
	Action string   `json:"action"`
	SongID *int64   `json:"songId,omitempty"`
	Time   *float64 `json:"time,omitempty"`
}

// State is the single transport record all clients reconcile against.
// PositionSeconds is exact only at LastEventAt (unix milliseconds); while
// playing, the true position is PositionSeconds + elapsed time since then.
// ActiveTrackID is a weak reference: deleting a track may leave it dangling.
type State struct {
	ActiveTrackID   *int64  `json:"activeTrackId"`
	IsPlaying       bool    `json:"isPlaying"`
	PositionSeconds float64 `json:"positionSeconds"`
	LastEventAt     int64   `json:"lastEventAt"`
}

// Transport is the authoritative play/pause/seek state machine. One instance
// exists per process, constructed at startup and injected into the hub and
// HTTP layers. All reads and writes go through one mutex; transitions are
// in-memory and O(1), and no I/O happens under the lock.
//
// Transport itself knows nothing about websockets: it only notifies
// subscribers with the raw (non drift-adjusted) state after each accepted
// action. The fan-out layer subscribes and owns the channel set.
type Transport struct {
	mu          sync.Mutex
	state       State
	now         func() time.Time
	subscribers []func(State)
}

// NewTransport creates a stopped transport with an empty deck.
func NewTransport() *Transport {
	t := &Transport{now: time.Now}
	t.state.LastEventAt = t.now().UnixMilli()
	return t
}

// Subscribe registers a callback invoked with the raw state after every
// accepted action. Callbacks run outside the transport lock.
func (t *Transport) Subscribe(fn func(State)) {
	t.mu.Lock()
	t.subscribers = append(t.subscribers, fn)
	t.mu.Unlock()
}

// Apply validates and applies a playback action. It returns the raw state
// after the action and whether the action was recognized; unrecognized
// actions change nothing and notify nobody.
func (t *Transport) Apply(action Action) (State, bool) {
	t.mu.Lock()

	now := t.now()
	switch action.Action {
	case ActionPlay:
		t.state.ActiveTrackID = action.SongID
		t.state.IsPlaying = true
		t.state.PositionSeconds = 0
		if action.Time != nil {
			t.state.PositionSeconds = *action.Time
		}
	case ActionPause:
		// Freeze at the client-reported position when given, otherwise at
		// the position the clock says we reached.
		pos := t.positionAt(now)
		if action.Time != nil {
			pos = *action.Time
		}
		t.state.IsPlaying = false
		t.state.PositionSeconds = pos
	case ActionSeek:
		t.state.PositionSeconds = 0
		if action.Time != nil {
			t.state.PositionSeconds = *action.Time
		}
	case ActionChangeTrack:
		t.state.ActiveTrackID = action.SongID
		t.state.IsPlaying = true
		t.state.PositionSeconds = 0
	default:
		state := t.state
		t.mu.Unlock()
		return state, false
	}

	t.state.LastEventAt = now.UnixMilli()
	state := t.state
	subscribers := make([]func(State), len(t.subscribers))
	copy(subscribers, t.subscribers)
	t.mu.Unlock()

	for _, fn := range subscribers {
		fn(state)
	}
	return state, true
}

// Snapshot returns the client-visible state: while playing, the position is
// drift-adjusted to "now"; while paused it is returned verbatim.
func (t *Transport) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.state
	state.PositionSeconds = t.positionAt(t.now())
	return state
}

// positionAt computes the true position at the given instant. Caller holds
// the lock.
func (t *Transport) positionAt(now time.Time) float64 {
	if !t.state.IsPlaying {
		return t.state.PositionSeconds
	}
	elapsed := float64(now.UnixMilli()-t.state.LastEventAt) / 1000.0
	return t.state.PositionSeconds + elapsed
}
