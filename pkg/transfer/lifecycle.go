package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sudorandom/transfer-map/pkg/tasks"
)

// Timings controls the automatic transitions. CompletionDelay is measured from
// submission, so the Active phase lasts CompletionDelay - ActivationDelay.
type Timings struct {
	ActivationDelay time.Duration
	CompletionDelay time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		ActivationDelay: 400 * time.Millisecond,
		CompletionDelay: 4000 * time.Millisecond,
	}
}

// Verify replaces unusable values with the defaults.
func (t *Timings) Verify() error {
	def := DefaultTimings()
	if t.ActivationDelay <= 0 {
		t.ActivationDelay = def.ActivationDelay
	}
	if t.CompletionDelay <= t.ActivationDelay {
		t.CompletionDelay = t.ActivationDelay + (def.CompletionDelay - def.ActivationDelay)
	}
	return nil
}

// Transition is published for every status change the lifecycle makes.
// Forced marks completions caused by a newer submission or a reset.
type Transition struct {
	ID     uuid.UUID `json:"id"`
	From   Status    `json:"from"`
	To     Status    `json:"to"`
	At     time.Time `json:"at"`
	Forced bool      `json:"forced,omitempty"`
}

// flight is the lifecycle's claim on the in-flight slot. Timers carry the
// generation they were scheduled under and do nothing once it has moved on.
type flight struct {
	id         uuid.UUID
	generation uint64
	activate   *tasks.Handle
	complete   *tasks.Handle
}

// Lifecycle drives transfers through Pending, Active and Completed on the
// scheduler's loop.
type Lifecycle struct {
	registry   *Registry
	sched      *tasks.Scheduler
	timings    Timings
	generation uint64
	current    *flight
	listeners  []func(Transition)
	stale      int
}

func NewLifecycle(registry *Registry, sched *tasks.Scheduler, timings Timings) *Lifecycle {
	_ = timings.Verify()
	return &Lifecycle{registry: registry, sched: sched, timings: timings}
}

// Subscribe registers fn for every transition, including the initial Pending one.
func (l *Lifecycle) Subscribe(fn func(Transition)) {
	l.listeners = append(l.listeners, fn)
}

func (l *Lifecycle) publish(tr Transition) {
	for _, fn := range l.listeners {
		fn(tr)
	}
}

func (l *Lifecycle) Registry() *Registry { return l.registry }

// Generation is bumped whenever the in-flight slot is handed over or cleared.
func (l *Lifecycle) Generation() uint64 { return l.generation }

// StaleDiscards counts timer callbacks ignored because their transfer had
// already been superseded.
func (l *Lifecycle) StaleDiscards() int { return l.stale }

// Submit validates req, completes the current in-flight transfer and starts
// the new one as Pending. Nothing changes if req is invalid.
func (l *Lifecycle) Submit(req Request) (uuid.UUID, error) {
	if _, err := l.registry.Validate(req); err != nil {
		return uuid.Nil, err
	}
	now := l.sched.Now()
	l.supersede(now)

	id, err := l.registry.Submit(req, now)
	if err != nil {
		return uuid.Nil, err
	}
	f := &flight{id: id, generation: l.generation}
	f.activate = l.sched.After(l.timings.ActivationDelay, func() {
		l.fire(f, StatusPending, StatusActive)
	})
	l.current = f

	log.Info().Str("transfer_id", id.String()).Uint64("generation", f.generation).Msg("transfer submitted")
	l.publish(Transition{ID: id, From: StatusUnknown, To: StatusPending, At: now})
	return id, nil
}

// Reset force-completes the in-flight transfer and cancels its timers.
// It reports whether there was anything to reset.
func (l *Lifecycle) Reset() bool {
	if l.current == nil {
		if _, ok := l.registry.InFlight(); !ok {
			return false
		}
	}
	l.supersede(l.sched.Now())
	log.Info().Uint64("generation", l.generation).Msg("lifecycle reset")
	return true
}

// AnimationFinished records that the marker reached the end of the corridor.
// Completion stays on the wall-clock timer, so this never changes status.
func (l *Lifecycle) AnimationFinished(id uuid.UUID) {
	t, ok := l.registry.Get(id)
	if !ok {
		return
	}
	log.Debug().Str("transfer_id", id.String()).Stringer("status", t.Status).Msg("animation finished")
}

// supersede invalidates the current flight and completes its transfer.
func (l *Lifecycle) supersede(now time.Time) {
	l.generation++
	if f := l.current; f != nil {
		f.activate.Cancel()
		f.complete.Cancel()
		l.current = nil
	}
	t, ok := l.registry.InFlight()
	if !ok {
		return
	}
	if err := l.registry.Advance(t.ID, StatusCompleted, now); err != nil {
		log.Error().Err(err).Str("transfer_id", t.ID.String()).Msg("force-complete failed")
		return
	}
	log.Info().Str("transfer_id", t.ID.String()).Stringer("from", t.Status).Msg("transfer force-completed")
	l.publish(Transition{ID: t.ID, From: t.Status, To: StatusCompleted, At: now, Forced: true})
}

// fire applies a scheduled transition if f still owns the in-flight slot and
// the transfer is still in the expected status.
func (l *Lifecycle) fire(f *flight, from, to Status) {
	now := l.sched.Now()
	if f.generation != l.generation || l.current != f {
		l.discard(f, to, "superseded")
		return
	}
	t, ok := l.registry.Get(f.id)
	if !ok || t.Status != from {
		l.discard(f, to, "status moved")
		return
	}
	if err := l.registry.Advance(f.id, to, now); err != nil {
		l.discard(f, to, err.Error())
		return
	}
	l.publish(Transition{ID: f.id, From: from, To: to, At: now})

	switch to {
	case StatusActive:
		f.complete = l.sched.After(l.timings.CompletionDelay-l.timings.ActivationDelay, func() {
			l.fire(f, StatusActive, StatusCompleted)
		})
	case StatusCompleted:
		l.current = nil
	}
}

func (l *Lifecycle) discard(f *flight, to Status, reason string) {
	l.stale++
	log.Debug().
		Str("transfer_id", f.id.String()).
		Stringer("to", to).
		Uint64("timer_generation", f.generation).
		Uint64("generation", l.generation).
		Str("reason", reason).
		Msg("discarding stale transition")
}
