// Package animation turns wall-clock time into the progress of the marker
// travelling along the animating transfer's corridor.
package animation

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDuration is how long the marker takes to cross a corridor.
	DefaultDuration = 3500 * time.Millisecond
	// DefaultStartProgress is where a run begins, so the first frame already
	// shows part of the path.
	DefaultStartProgress = 0.001
)

// State is the animation of one transfer. It only exists while running.
type State struct {
	TransferID uuid.UUID `json:"transferId"`
	Progress   float64   `json:"progress"`
	StartedAt  time.Time `json:"startedAt"`
}

// Clock advances progress for at most one transfer at a time. Progress is
// derived from elapsed time, never from the number of ticks.
type Clock struct {
	Duration      time.Duration
	StartProgress float64

	run        *State
	finished   uuid.UUID
	onComplete []func(uuid.UUID)
}

func NewClock(duration time.Duration) *Clock {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Clock{Duration: duration, StartProgress: DefaultStartProgress}
}

// OnComplete registers fn to run once for each run that reaches progress 1.
func (c *Clock) OnComplete(fn func(uuid.UUID)) {
	c.onComplete = append(c.onComplete, fn)
}

// Start begins animating id, replacing any run in progress.
func (c *Clock) Start(id uuid.UUID, now time.Time) State {
	if c.run != nil {
		log.Debug().Str("transfer_id", c.run.TransferID.String()).Msg("animation retargeted")
	}
	c.run = &State{TransferID: id, Progress: c.startProgress(), StartedAt: now}
	c.finished = uuid.Nil
	return *c.run
}

// Cancel stops the current run without reporting completion.
func (c *Clock) Cancel() bool {
	if c.run == nil {
		return false
	}
	c.run = nil
	return true
}

// Running reports the transfer currently being animated.
func (c *Clock) Running() (uuid.UUID, bool) {
	if c.run == nil {
		return uuid.Nil, false
	}
	return c.run.TransferID, true
}

// Current is the state as of the last Tick.
func (c *Clock) Current() (State, bool) {
	if c.run == nil {
		return State{}, false
	}
	return *c.run, true
}

// Progress returns the last known progress for id: its running value, 1 if its
// run finished and nothing replaced it, otherwise 0.
func (c *Clock) Progress(id uuid.UUID) float64 {
	if c.run != nil && c.run.TransferID == id {
		return c.run.Progress
	}
	if id != uuid.Nil && c.finished == id {
		return 1
	}
	return 0
}

// Tick advances the current run to now. When progress reaches 1 the run is
// discarded and completion listeners are notified.
func (c *Clock) Tick(now time.Time) (State, bool) {
	if c.run == nil {
		return State{}, false
	}
	elapsed := now.Sub(c.run.StartedAt)
	start := c.startProgress()
	p := start + (1-start)*float64(elapsed)/float64(c.duration())
	if p > c.run.Progress {
		c.run.Progress = p
	}
	if c.run.Progress < 1 {
		return *c.run, true
	}

	c.run.Progress = 1
	done := *c.run
	c.run = nil
	c.finished = done.TransferID
	for _, fn := range c.onComplete {
		fn(done.TransferID)
	}
	return done, true
}

func (c *Clock) startProgress() float64 {
	if c.StartProgress <= 0 || c.StartProgress >= 0.01 {
		return DefaultStartProgress
	}
	return c.StartProgress
}

func (c *Clock) duration() time.Duration {
	if c.Duration <= 0 {
		return DefaultDuration
	}
	return c.Duration
}
