package flowengine

import (
	"math"
	"time"

	"github.com/sudorandom/transfer-map/pkg/geo"
	"github.com/sudorandom/transfer-map/pkg/viewport"
)

// Camera is what is actually on screen. It eases toward the synchronizer's
// state and reports every step back as a non-user change, the way a map
// widget echoes programmatic moves.
type Camera struct {
	State viewport.State
	// HalfLife is how long it takes to cover half the remaining distance.
	HalfLife time.Duration
	MinZoom  float64
	MaxZoom  float64
}

func NewCamera(initial viewport.State, cfg viewport.Config) *Camera {
	return &Camera{State: initial, HalfLife: 180 * time.Millisecond, MinZoom: cfg.MinZoom, MaxZoom: cfg.MaxZoom}
}

// Step moves the camera toward target over dt and reports whether it moved.
// It snaps once within tolerance so the echo compares equal.
func (c *Camera) Step(target viewport.State, dt time.Duration) bool {
	if c.State.Equal(target) {
		if c.State == target {
			return false
		}
		c.State = target
		return true
	}
	f := 1.0
	if c.HalfLife > 0 && dt < 20*c.HalfLife {
		f = 1 - math.Pow(0.5, float64(dt)/float64(c.HalfLife))
	}
	next := viewport.State{
		Center: geo.LngLat{
			Lng: c.State.Center.Lng + (target.Center.Lng-c.State.Center.Lng)*f,
			Lat: c.State.Center.Lat + (target.Center.Lat-c.State.Center.Lat)*f,
		},
		Zoom:    c.State.Zoom + (target.Zoom-c.State.Zoom)*f,
		Bearing: c.State.Bearing + (target.Bearing-c.State.Bearing)*f,
		Pitch:   c.State.Pitch + (target.Pitch-c.State.Pitch)*f,
	}
	if next.Equal(target) {
		next = target
	}
	c.State = next
	return true
}

// Pan shifts the center so the point under (fromX, fromY) ends up under (toX, toY).
func (c *Camera) Pan(p *geo.Projector, fromX, fromY, toX, toY float64) {
	k := geo.Magnification(c.State.Zoom)
	cx, cy := p.Project(c.State.Center.Lat, c.State.Center.Lng)
	c.State.Center = p.Unproject(cx-(toX-fromX)/k, cy-(toY-fromY)/k)
}

// ZoomBy changes zoom by delta levels, clamped to the configured range.
func (c *Camera) ZoomBy(delta float64) {
	z := c.State.Zoom + delta
	if z < c.MinZoom {
		z = c.MinZoom
	}
	if z > c.MaxZoom {
		z = c.MaxZoom
	}
	c.State.Zoom = z
}
