// Package session wires the transfer lifecycle, the animation clock, arc
// geometry and the viewport synchronizer onto one event loop. Everything here
// runs on the goroutine calling Tick; other goroutines go through Post.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	geojson "github.com/paulmach/go.geojson"
	"github.com/rs/zerolog/log"
	"github.com/sudorandom/transfer-map/pkg/animation"
	"github.com/sudorandom/transfer-map/pkg/geo"
	"github.com/sudorandom/transfer-map/pkg/tasks"
	"github.com/sudorandom/transfer-map/pkg/transfer"
	"github.com/sudorandom/transfer-map/pkg/viewport"
)

// Frame is everything the rendering surface needs for one draw.
type Frame struct {
	At         time.Time
	Transfer   *transfer.Transfer
	Path       []geo.LngLat
	Progress   float64
	Marker     geo.LngLat
	HasMarker  bool
	Viewport   viewport.State
	History    []transfer.Transfer
	Aggregates transfer.Aggregates
	// GeometryErr is set when the corridor could not be built; Path then holds
	// the single source point.
	GeometryErr error
}

// FeatureCollection expresses the frame's corridor, visible path and marker
// in the GeoJSON exchange format.
func (f Frame) FeatureCollection() *geojson.FeatureCollection {
	id := ""
	if f.Transfer != nil {
		id = f.Transfer.ID.String()
	}
	return geo.FrameCollection(id, f.Path, f.Progress)
}

// Session is the map's control core.
type Session struct {
	cfg       Config
	resolver  *geo.Resolver
	sched     *tasks.Scheduler
	registry  *transfer.Registry
	lifecycle *transfer.Lifecycle
	clock     *animation.Clock
	arcs      *geo.ArcBuilder
	sync      *viewport.Synchronizer

	history    []transfer.Transfer
	aggregates transfer.Aggregates

	// current is the transfer the marker travels for, kept after completion
	// until something replaces it.
	current *transfer.Transfer
	path    []geo.LngLat
	pathErr error
}

func New(cfg Config, resolver *geo.Resolver, cache geo.PathCache, start time.Time) *Session {
	_ = cfg.Verify()
	sched := tasks.NewScheduler(start)
	registry := transfer.NewRegistry(resolver)
	s := &Session{
		cfg:        cfg,
		resolver:   resolver,
		sched:      sched,
		registry:   registry,
		lifecycle:  transfer.NewLifecycle(registry, sched, cfg.Timings),
		clock:      animation.NewClock(cfg.AnimationDuration),
		arcs:       &geo.ArcBuilder{Samples: cfg.ArcSamples, Elevation: cfg.ArcElevation, Cache: cache},
		sync:       viewport.NewSynchronizer(cfg.Viewport, viewport.State{Zoom: cfg.Viewport.MinZoom}),
		aggregates: transfer.Summarize(nil),
	}
	registry.Subscribe(s.onRegistryChange)
	s.clock.OnComplete(s.onAnimationComplete)
	return s
}

func (s *Session) Config() Config { return s.cfg }
func (s *Session) Registry() *transfer.Registry { return s.registry }
func (s *Session) Lifecycle() *transfer.Lifecycle { return s.lifecycle }
func (s *Session) Viewport() *viewport.Synchronizer { return s.sync }
func (s *Session) Clock() *animation.Clock { return s.clock }
func (s *Session) Resolver() *geo.Resolver { return s.resolver }
func (s *Session) Now() time.Time { return s.sched.Now() }

// Post queues fn onto the loop. Safe from any goroutine.
func (s *Session) Post(fn func()) { s.sched.Post(fn) }

// Submit starts a new transfer. Must be called on the loop.
func (s *Session) Submit(req transfer.Request) (uuid.UUID, error) {
	return s.lifecycle.Submit(req)
}

// PostSubmit submits req on the next Tick and reports the outcome to done, if set.
func (s *Session) PostSubmit(req transfer.Request, done func(uuid.UUID, error)) {
	s.sched.Post(func() {
		id, err := s.lifecycle.Submit(req)
		if err != nil {
			log.Warn().Err(err).Msg("transfer rejected")
		}
		if done != nil {
			done(id, err)
		}
	})
}

// Reset completes the in-flight transfer and stops its animation.
func (s *Session) Reset() bool {
	if !s.lifecycle.Reset() {
		return false
	}
	s.clock.Cancel()
	s.current, s.path, s.pathErr = nil, nil, nil
	return true
}

// HandleViewportChange passes a camera notification from the surface to the synchronizer.
func (s *Session) HandleViewportChange(ch viewport.Change) bool {
	if ch.At.IsZero() {
		ch.At = s.sched.Now()
	}
	return s.sync.HandleChange(ch)
}

// Tick runs everything due up to now and returns the frame to draw.
func (s *Session) Tick(now time.Time) Frame {
	s.sched.Advance(now)
	s.clock.Tick(now)
	return s.frame(now)
}

func (s *Session) frame(now time.Time) Frame {
	f := Frame{
		At:          now,
		Viewport:    s.sync.State(),
		History:     s.history,
		Aggregates:  s.aggregates,
		Path:        s.path,
		GeometryErr: s.pathErr,
	}
	if s.current == nil {
		return f
	}
	cur := *s.current
	f.Transfer = &cur
	f.Progress = s.clock.Progress(cur.ID)
	f.Marker, f.HasMarker = geo.PositionAt(s.path, f.Progress)
	return f
}

// onRegistryChange re-derives the views and retargets the animation when the
// animating transfer changes.
func (s *Session) onRegistryChange(snap []transfer.Transfer) {
	history := transfer.SortedHistory(snap)
	if len(history) > s.cfg.HistorySize {
		history = history[:s.cfg.HistorySize]
	}
	s.history = history
	s.aggregates = transfer.Summarize(snap)

	next, ok := transfer.Animating(snap)
	if !ok {
		if s.current != nil {
			if t, found := s.registry.Get(s.current.ID); found {
				s.current = &t
			}
		}
		return
	}
	if s.current != nil && s.current.ID == next.ID {
		s.current = &next
		return
	}

	now := s.sched.Now()
	s.current = &next
	s.path, s.pathErr = s.arcs.Build(next.From, next.To)
	if s.pathErr != nil {
		if !errors.Is(s.pathErr, geo.ErrInvalidGeometry) {
			log.Error().Err(s.pathErr).Msg("unexpected arc failure")
		}
		log.Debug().Err(s.pathErr).Str("transfer_id", next.ID.String()).Msg("rendering corridor as a single point")
		s.path = []geo.LngLat{next.From}
	}
	s.clock.Start(next.ID, now)
	s.sync.Follow(next.From, next.To, now)
}

func (s *Session) onAnimationComplete(id uuid.UUID) {
	s.lifecycle.AnimationFinished(id)
	s.sync.Settle()
}
