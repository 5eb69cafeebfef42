package flowengine

import (
	"math"
	"testing"
	"time"

	"github.com/sudorandom/transfer-map/pkg/geo"
	"github.com/sudorandom/transfer-map/pkg/viewport"
)

func TestCameraStepConverges(t *testing.T) {
	cfg := viewport.DefaultConfig()
	c := NewCamera(viewport.State{Zoom: 1}, cfg)
	target := viewport.State{Center: geo.LngLat{Lng: 40, Lat: 20}, Zoom: 4}

	if !c.Step(target, 180*time.Millisecond) {
		t.Fatal("expected the camera to move")
	}
	if math.Abs(c.State.Center.Lng-20) > 1e-9 || math.Abs(c.State.Zoom-2.5) > 1e-9 {
		t.Errorf("after one half-life: %+v", c.State)
	}

	for i := 0; i < 1000 && c.State != target; i++ {
		c.Step(target, 16*time.Millisecond)
	}
	if c.State != target {
		t.Fatalf("camera did not settle on target: %+v", c.State)
	}
	if c.Step(target, 16*time.Millisecond) {
		t.Error("settled camera should not report movement")
	}
}

func TestCameraStepLongGapSnaps(t *testing.T) {
	c := NewCamera(viewport.State{Zoom: 1}, viewport.DefaultConfig())
	target := viewport.State{Center: geo.LngLat{Lng: -70, Lat: -30}, Zoom: 6}
	c.Step(target, time.Minute)
	if c.State != target {
		t.Errorf("expected snap to target, got %+v", c.State)
	}
}

func TestCameraPan(t *testing.T) {
	p := geo.NewProjector(1000, 500, 200)
	c := NewCamera(viewport.State{Zoom: 1}, viewport.DefaultConfig())
	under := p.FromScreen(600, 250, c.State.Center, c.State.Zoom)

	c.Pan(p, 600, 250, 500, 250)

	x, y := p.ToScreen(under, c.State.Center, c.State.Zoom)
	if math.Abs(x-500) > 1e-6 || math.Abs(y-250) > 1e-6 {
		t.Errorf("dragged point landed at (%f, %f), want (500, 250)", x, y)
	}
}

func TestCameraZoomClamped(t *testing.T) {
	c := NewCamera(viewport.State{Zoom: 1}, viewport.DefaultConfig())
	c.ZoomBy(-3)
	if c.State.Zoom != 1 {
		t.Errorf("zoom below min: %f", c.State.Zoom)
	}
	c.ZoomBy(10)
	if c.State.Zoom != 6 {
		t.Errorf("zoom above max: %f", c.State.Zoom)
	}
}
