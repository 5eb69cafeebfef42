// Package viewport keeps the map camera on the animating corridor without
// fighting the user. Every write carries its provenance; the synchronizer
// drops notifications that merely echo its own programmatic writes.
package viewport

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sudorandom/transfer-map/pkg/geo"
)

const (
	PositionTolerance = 1e-6
	ZoomTolerance     = 1e-3
)

// State is the camera. Bearing and Pitch are carried through untouched.
type State struct {
	Center  geo.LngLat `json:"center"`
	Zoom    float64    `json:"zoom"`
	Bearing float64    `json:"bearing,omitempty"`
	Pitch   float64    `json:"pitch,omitempty"`
}

// Equal compares center and zoom within the update tolerances.
func (s State) Equal(o State) bool {
	return math.Abs(s.Center.Lng-o.Center.Lng) <= PositionTolerance &&
		math.Abs(s.Center.Lat-o.Center.Lat) <= PositionTolerance &&
		math.Abs(s.Zoom-o.Zoom) <= ZoomTolerance
}

type Source int

const (
	SourceProgrammatic Source = iota
	SourceUser
)

func (s Source) String() string {
	if s == SourceUser {
		return "user"
	}
	return "programmatic"
}

// Change is a camera movement reported by the rendering surface.
type Change struct {
	State         State
	UserInitiated bool
	At            time.Time
}

type Config struct {
	MinZoom float64
	MaxZoom float64
	// WorldSpan is the corridor length in degrees that fits the map at MinZoom.
	WorldSpan float64
	// EchoWindow is how long after a programmatic write an identical
	// notification is treated as its echo.
	EchoWindow time.Duration
}

func DefaultConfig() Config {
	return Config{MinZoom: 1, MaxZoom: 6, WorldSpan: 180, EchoWindow: 250 * time.Millisecond}
}

// Verify replaces unusable values with the defaults.
func (c *Config) Verify() error {
	def := DefaultConfig()
	if c.MinZoom <= 0 {
		c.MinZoom = def.MinZoom
	}
	if c.MaxZoom < c.MinZoom {
		c.MaxZoom = math.Max(def.MaxZoom, c.MinZoom)
	}
	if c.WorldSpan <= 0 {
		c.WorldSpan = def.WorldSpan
	}
	if c.EchoWindow <= 0 {
		c.EchoWindow = def.EchoWindow
	}
	return nil
}

type write struct {
	state State
	at    time.Time
}

// Synchronizer owns the shared camera state.
type Synchronizer struct {
	cfg       Config
	state     State
	last      *write
	writes    int
	ignored   int
	listeners []func(State, Source)
}

func NewSynchronizer(cfg Config, initial State) *Synchronizer {
	_ = cfg.Verify()
	if initial.Zoom < cfg.MinZoom {
		initial.Zoom = cfg.MinZoom
	}
	return &Synchronizer{cfg: cfg, state: initial}
}

// Subscribe registers fn for every accepted change of the camera state.
func (s *Synchronizer) Subscribe(fn func(State, Source)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Synchronizer) State() State { return s.state }

// Writes counts programmatic writes.
func (s *Synchronizer) Writes() int { return s.writes }

// Ignored counts notifications dropped as echoes.
func (s *Synchronizer) Ignored() int { return s.ignored }

// Target is the camera framing a corridor: centered on the midpoint and zoomed
// in further the shorter the corridor is.
func (s *Synchronizer) Target(from, to geo.LngLat) State {
	dist := math.Max(geo.Distance(from, to), 1e-9)
	zoom := s.cfg.MinZoom + math.Log2(s.cfg.WorldSpan/dist)
	zoom = math.Min(math.Max(zoom, s.cfg.MinZoom), s.cfg.MaxZoom)
	return State{
		Center:  geo.Midpoint(from, to),
		Zoom:    zoom,
		Bearing: s.state.Bearing,
		Pitch:   s.state.Pitch,
	}
}

// Follow writes the target for a corridor unless the camera is already there.
// It reports whether a write happened.
func (s *Synchronizer) Follow(from, to geo.LngLat, now time.Time) bool {
	target := s.Target(from, to)
	if target.Equal(s.state) {
		return false
	}
	s.state = target
	s.last = &write{state: target, at: now}
	s.writes++
	log.Debug().
		Float64("lng", target.Center.Lng).
		Float64("lat", target.Center.Lat).
		Float64("zoom", target.Zoom).
		Msg("viewport follows corridor")
	s.notify(SourceProgrammatic)
	return true
}

// HandleChange applies a notification from the rendering surface. Only
// user-initiated changes that are not echoes of the last programmatic write
// are accepted.
func (s *Synchronizer) HandleChange(ch Change) bool {
	if !ch.UserInitiated {
		s.ignored++
		return false
	}
	if s.last != nil && ch.At.Sub(s.last.at) < s.cfg.EchoWindow && ch.State.Equal(s.last.state) {
		s.ignored++
		return false
	}
	if ch.State.Equal(s.state) {
		return false
	}
	s.state = ch.State
	s.notify(SourceUser)
	return true
}

// Settle closes the echo window once the corridor animation is over.
func (s *Synchronizer) Settle() {
	s.last = nil
}

func (s *Synchronizer) notify(src Source) {
	for _, fn := range s.listeners {
		fn(s.state, src)
	}
}
