package geo

import (
	"encoding/json"
	"math"
	"testing"
)

func straightPath(n int) []LngLat {
	path := make([]LngLat, n)
	for i := range path {
		path[i] = LngLat{Lng: float64(i), Lat: 0}
	}
	return path
}

func TestVisiblePath(t *testing.T) {
	path := straightPath(51)
	tests := []struct {
		fraction float64
		wantLen  int
		wantEnd  float64
	}{
		{0, 1, 0},
		{0.001, 2, 0.05},
		{0.5, 26, 25},
		{0.51, 27, 25.5},
		{1, 51, 50},
		{1.5, 51, 50},
	}
	for _, tt := range tests {
		got := VisiblePath(path, tt.fraction)
		if len(got) != tt.wantLen {
			t.Errorf("VisiblePath(%v) has %d points; want %d", tt.fraction, len(got), tt.wantLen)
			continue
		}
		if end := got[len(got)-1].Lng; math.Abs(end-tt.wantEnd) > 1e-9 {
			t.Errorf("VisiblePath(%v) ends at %f; want %f", tt.fraction, end, tt.wantEnd)
		}
	}
}

func TestPositionAt(t *testing.T) {
	path := straightPath(51)
	if p, _ := PositionAt(path, 0.25); math.Abs(p.Lng-12.5) > 1e-9 {
		t.Errorf("PositionAt(0.25) = %v; want lng 12.5", p)
	}
	if _, ok := PositionAt(nil, 0.5); ok {
		t.Error("PositionAt(nil) reported a position")
	}
	single := []LngLat{{3, 4}}
	if p, ok := PositionAt(single, 0.7); !ok || p != single[0] {
		t.Errorf("PositionAt(single) = %v, %v; want %v", p, ok, single[0])
	}
}

func TestFrameCollection(t *testing.T) {
	fc := FrameCollection("abc", straightPath(51), 0.5)
	if len(fc.Features) != 3 {
		t.Fatalf("got %d features; want 3", len(fc.Features))
	}
	kinds := []string{KindCorridor, KindVisible, KindMarker}
	for i, f := range fc.Features {
		if got := f.PropertyMustString("kind"); got != kinds[i] {
			t.Errorf("feature %d kind = %q; want %q", i, got, kinds[i])
		}
	}
	if got := fc.Features[2].Geometry.Point; got[0] != 25 || got[1] != 0 {
		t.Errorf("marker = %v; want [25 0]", got)
	}

	raw, err := fc.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != "FeatureCollection" || decoded.Features[0].Geometry.Type != "LineString" || decoded.Features[2].Geometry.Type != "Point" {
		t.Errorf("unexpected encoding: %s", raw)
	}

	degenerate := FrameCollection("abc", []LngLat{{1, 1}}, 0.5)
	if len(degenerate.Features) != 1 || !degenerate.Features[0].Geometry.IsPoint() {
		t.Errorf("single-point frame = %d features; want one marker", len(degenerate.Features))
	}
}

func TestEncodeDecodePath(t *testing.T) {
	path, err := NewArcBuilder(nil).Build(LngLat{-95.71, 37.09}, LngLat{-3.44, 55.38})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := EncodePath(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodePath(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(path) || got[10] != path[10] {
		t.Errorf("DecodePath returned %d points; want %d identical points", len(got), len(path))
	}
	if _, err := DecodePath([]byte(`{"type":"Point","coordinates":[1,2]}`)); err == nil {
		t.Error("DecodePath accepted a Point geometry")
	}
}
