package geo

import (
	"math"
	"testing"
)

func TestProject(t *testing.T) {
	g := NewProjector(1920, 1080, 380.0)

	tests := []struct {
		lat, lng     float64
		wantX, wantY float64
	}{
		{0, 0, 960, 540},
		{90, 0, 960, 3.14},      // Near North Pole
		{-90, 0, 960, 1076.86},  // Near South Pole
		{0, 180, 2034.72, 540},  // Far East
		{0, -180, -114.72, 540}, // Far West
	}

	for _, tt := range tests {
		x, y := g.Project(tt.lat, tt.lng)
		if math.Abs(x-tt.wantX) > 1.0 || math.Abs(y-tt.wantY) > 1.0 {
			t.Errorf("Project(%f, %f) = (%f, %f); want (%f, %f)", tt.lat, tt.lng, x, y, tt.wantX, tt.wantY)
		}
	}
}

func TestUnprojectRoundTrip(t *testing.T) {
	g := NewProjector(1920, 1080, 380.0)
	for _, p := range []LngLat{{0, 0}, {-95.71, 37.09}, {138.25, 36.20}, {-63.62, -38.42}} {
		x, y := g.Project(p.Lat, p.Lng)
		got := g.Unproject(x, y)
		if math.Abs(got.Lng-p.Lng) > 1e-6 || math.Abs(got.Lat-p.Lat) > 1e-6 {
			t.Errorf("Unproject(Project(%v)) = %v", p, got)
		}
	}
}

func TestToScreenCentersCamera(t *testing.T) {
	g := NewProjector(1920, 1080, 300.0)
	center := LngLat{Lng: 10.45, Lat: 51.17}
	for _, zoom := range []float64{1, 2.5, 6} {
		x, y := g.ToScreen(center, center, zoom)
		if math.Abs(x-960) > 1e-9 || math.Abs(y-540) > 1e-9 {
			t.Errorf("ToScreen(center, zoom=%v) = (%f, %f); want (960, 540)", zoom, x, y)
		}
		back := g.FromScreen(1200, 300, center, zoom)
		bx, by := g.ToScreen(back, center, zoom)
		if math.Abs(bx-1200) > 1e-6 || math.Abs(by-300) > 1e-6 {
			t.Errorf("FromScreen/ToScreen at zoom %v = (%f, %f); want (1200, 300)", zoom, bx, by)
		}
	}
}
