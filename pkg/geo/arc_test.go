package geo

import (
	"errors"
	"math"
	"testing"
)

func TestBuildEndpointsAndSampleCount(t *testing.T) {
	b := NewArcBuilder(nil)
	tests := []struct {
		name       string
		start, end LngLat
	}{
		{"US to GB", LngLat{-95.71, 37.09}, LngLat{-3.44, 55.38}},
		{"short hop", LngLat{4.47, 50.50}, LngLat{5.29, 52.13}},
		{"southbound", LngLat{0, 40}, LngLat{0, -30}},
		{"westbound", LngLat{120, 0}, LngLat{-60, 0}},
	}
	for _, tt := range tests {
		path, err := b.Build(tt.start, tt.end)
		if err != nil {
			t.Fatalf("%s: Build returned %v", tt.name, err)
		}
		if len(path) != DefaultArcSamples {
			t.Errorf("%s: len(path) = %d; want %d", tt.name, len(path), DefaultArcSamples)
		}
		if Distance(path[0], tt.start) > 1e-9 || Distance(path[len(path)-1], tt.end) > 1e-9 {
			t.Errorf("%s: endpoints = %v, %v; want %v, %v", tt.name, path[0], path[len(path)-1], tt.start, tt.end)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b := NewArcBuilder(nil)
	start, end := LngLat{-95.71, 37.09}, LngLat{138.25, 36.20}
	first, err := b.Build(start, end)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(start, end)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs: %v != %v", i, first[i], second[i])
		}
	}
}

func TestBuildBulgesNorth(t *testing.T) {
	b := NewArcBuilder(nil)
	start, end := LngLat{0, 0}, LngLat{40, 0}
	path, err := b.Build(start, end)
	if err != nil {
		t.Fatal(err)
	}
	mid := path[len(path)/2]
	want := Distance(start, end) * DefaultArcElevation
	if math.Abs(mid.Lat-want) > 1e-6 || math.Abs(mid.Lng-20) > 1e-6 {
		t.Errorf("midpoint = %v; want (20, %f)", mid, want)
	}
	for i, p := range path[1 : len(path)-1] {
		if p.Lat <= 0 {
			t.Errorf("sample %d = %v; want latitude above the chord", i+1, p)
		}
	}
}

func TestBuildDegenerate(t *testing.T) {
	b := NewArcBuilder(nil)
	tests := []struct {
		name       string
		start, end LngLat
	}{
		{"identical", LngLat{2.21, 46.23}, LngLat{2.21, 46.23}},
		{"nan", LngLat{math.NaN(), 0}, LngLat{1, 1}},
		{"inf", LngLat{0, 0}, LngLat{math.Inf(1), 1}},
	}
	for _, tt := range tests {
		if _, err := b.Build(tt.start, tt.end); !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("%s: Build error = %v; want ErrInvalidGeometry", tt.name, err)
		}
	}
}

func TestBuild3D(t *testing.T) {
	b := NewArcBuilder(nil)
	start := LngLat{-95.71, 37.09}.Vec3()
	end := LngLat{-3.44, 55.38}.Vec3()
	path, err := b.Build3D(start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != DefaultArcSamples {
		t.Fatalf("len(path) = %d; want %d", len(path), DefaultArcSamples)
	}
	if path[0] != start || path[len(path)-1] != end {
		t.Errorf("endpoints = %v, %v; want %v, %v", path[0], path[len(path)-1], start, end)
	}
	if peak := path[len(path)/2].Len(); peak <= 1 {
		t.Errorf("midpoint radius = %f; want > 1", peak)
	}

	antipodal, err := b.Build3D(Vec3{X: 1}, Vec3{X: -1})
	if err != nil {
		t.Fatalf("antipodal Build3D returned %v", err)
	}
	if r := antipodal[len(antipodal)/2].Len(); math.Abs(r-2*DefaultArcElevation) > 1e-6 {
		t.Errorf("antipodal midpoint radius = %f; want %f", r, 2*DefaultArcElevation)
	}

	if _, err := b.Build3D(start, start); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("Build3D(start, start) error = %v; want ErrInvalidGeometry", err)
	}
}

type mapCache map[ArcKey][]LngLat

func (m mapCache) Get(k ArcKey) ([]LngLat, bool) {
	p, ok := m[k]
	return p, ok
}

func (m mapCache) Put(k ArcKey, p []LngLat) { m[k] = p }

func TestBuildUsesCache(t *testing.T) {
	cache := mapCache{}
	b := NewArcBuilder(cache)
	start, end := LngLat{0, 0}, LngLat{10, 10}
	if _, err := b.Build(start, end); err != nil {
		t.Fatal(err)
	}
	if len(cache) != 1 {
		t.Fatalf("cache has %d entries; want 1", len(cache))
	}
	key := ArcKey{Start: start, End: end, Samples: DefaultArcSamples, Elevation: DefaultArcElevation}
	stub := make([]LngLat, DefaultArcSamples)
	stub[0], stub[len(stub)-1] = start, end
	cache[key] = stub
	got, err := b.Build(start, end)
	if err != nil {
		t.Fatal(err)
	}
	if &got[0] != &stub[0] {
		t.Error("Build did not return the cached path")
	}
}

func TestSharedCacheKeepsSettingsApart(t *testing.T) {
	cache := mapCache{}
	low := &ArcBuilder{Samples: DefaultArcSamples, Elevation: 0.1, Cache: cache}
	high := &ArcBuilder{Samples: DefaultArcSamples, Elevation: 0.5, Cache: cache}
	start, end := LngLat{0, 0}, LngLat{40, 0}

	a, err := low.Build(start, end)
	if err != nil {
		t.Fatal(err)
	}
	b, err := high.Build(start, end)
	if err != nil {
		t.Fatal(err)
	}
	mid := DefaultArcSamples / 2
	if a[mid].Lat >= b[mid].Lat {
		t.Errorf("elevation 0.1 peak %v not below elevation 0.5 peak %v", a[mid], b[mid])
	}
	if len(cache) != 2 {
		t.Errorf("cache has %d entries; want 2", len(cache))
	}
}

func TestCachedPathWithOtherEndpointsIsRebuilt(t *testing.T) {
	cache := mapCache{}
	b := NewArcBuilder(cache)
	start, end := LngLat{0, 0}, LngLat{10, 10}
	key := ArcKey{Start: start, End: end, Samples: DefaultArcSamples, Elevation: DefaultArcElevation}
	wrong := make([]LngLat, DefaultArcSamples)
	wrong[0], wrong[len(wrong)-1] = LngLat{0.0000001, 0}, end
	cache[key] = wrong

	got, err := b.Build(start, end)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != start || got[len(got)-1] != end {
		t.Errorf("Build returned endpoints %v -> %v; want %v -> %v", got[0], got[len(got)-1], start, end)
	}
}

func TestArcKeyString(t *testing.T) {
	base := ArcKey{Start: LngLat{1.0000001, 2}, End: LngLat{3, 4}, Samples: 51, Elevation: 0.3}
	tests := []struct {
		name  string
		other ArcKey
	}{
		{"sub-micro endpoint shift", ArcKey{Start: LngLat{1.0000002, 2}, End: LngLat{3, 4}, Samples: 51, Elevation: 0.3}},
		{"samples", ArcKey{Start: base.Start, End: base.End, Samples: 21, Elevation: 0.3}},
		{"elevation", ArcKey{Start: base.Start, End: base.End, Samples: 51, Elevation: 0.25}},
	}
	for _, tt := range tests {
		if base.String() == tt.other.String() {
			t.Errorf("%s: keys collide: %s", tt.name, base.String())
		}
	}
}
