package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultArcSamples is the number of points in a corridor path (50 interpolation steps).
	DefaultArcSamples = 51
	// DefaultArcElevation raises the midpoint by this fraction of the chord length.
	DefaultArcElevation = 0.3
)

// ArcKey identifies a built path: its endpoints and the builder settings
// that shaped it.
type ArcKey struct {
	Start, End LngLat
	Samples    int
	Elevation  float64
}

// String renders the key with full float precision, so distinct endpoints
// never share a key.
func (k ArcKey) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return strings.Join([]string{
		f(k.Start.Lng), f(k.Start.Lat), f(k.End.Lng), f(k.End.Lat),
		strconv.Itoa(k.Samples), f(k.Elevation),
	}, ",")
}

// PathCache stores built 2D paths.
type PathCache interface {
	Get(key ArcKey) ([]LngLat, bool)
	Put(key ArcKey, path []LngLat)
}

// ArcBuilder produces raised, smooth corridor paths between two points.
// Builds are deterministic, so results may be cached by ArcKey.
type ArcBuilder struct {
	Samples   int
	Elevation float64
	Cache     PathCache
}

func NewArcBuilder(cache PathCache) *ArcBuilder {
	return &ArcBuilder{Samples: DefaultArcSamples, Elevation: DefaultArcElevation, Cache: cache}
}

// Build returns the flat-map path from start to end, bulging towards the
// northern side of the chord.
func (b *ArcBuilder) Build(start, end LngLat) ([]LngLat, error) {
	if !start.IsFinite() || !end.IsFinite() {
		return nil, fmt.Errorf("%w: non-finite endpoint %v -> %v", ErrInvalidGeometry, start, end)
	}
	if Distance(start, end) < 1e-12 {
		return nil, fmt.Errorf("%w: identical endpoints %v", ErrInvalidGeometry, start)
	}
	key := ArcKey{Start: start, End: end, Samples: b.samples(), Elevation: b.elevation()}
	if b.Cache != nil {
		if path, ok := b.Cache.Get(key); ok && len(path) == key.Samples && path[0] == start && path[len(path)-1] == end {
			return path, nil
		}
	}

	chord := Distance(start, end)
	nx, ny := -(end.Lat-start.Lat)/chord, (end.Lng-start.Lng)/chord
	if ny < 0 || (ny == 0 && nx < 0) {
		nx, ny = -nx, -ny
	}
	mid := Midpoint(start, end)
	lift := chord * b.elevation()
	peak := Vec3{X: mid.Lng + nx*lift, Y: mid.Lat + ny*lift}

	a, c := Vec3{X: start.Lng, Y: start.Lat}, Vec3{X: end.Lng, Y: end.Lat}
	samples := sampleSpline(a, peak, c, b.samples())
	path := make([]LngLat, len(samples))
	for i, s := range samples {
		path[i] = LngLat{Lng: s.X, Lat: s.Y}
	}
	path[0], path[len(path)-1] = start, end

	if b.Cache != nil {
		b.Cache.Put(key, path)
	}
	return path, nil
}

// Build3D returns the globe path between two points, displacing the midpoint
// outward from the origin.
func (b *ArcBuilder) Build3D(start, end Vec3) ([]Vec3, error) {
	if !start.IsFinite() || !end.IsFinite() {
		return nil, fmt.Errorf("%w: non-finite endpoint %v -> %v", ErrInvalidGeometry, start, end)
	}
	chord := start.distance(end)
	if chord < 1e-12 {
		return nil, fmt.Errorf("%w: identical endpoints %v", ErrInvalidGeometry, start)
	}

	mid := start.Add(end).Scale(0.5)
	dir := mid.Normalize()
	if mid.Len() < 1e-9 {
		// Antipodal endpoints: lift along any axis perpendicular to the chord.
		dir = end.Sub(start).Cross(Vec3{Y: 1})
		if dir.Len() < 1e-9 {
			dir = end.Sub(start).Cross(Vec3{X: 1})
		}
		dir = dir.Normalize()
	}
	peak := mid.Add(dir.Scale(chord * b.elevation()))

	path := sampleSpline(start, peak, end, b.samples())
	path[0], path[len(path)-1] = start, end
	return path, nil
}

func (b *ArcBuilder) samples() int {
	if b.Samples < 2 {
		return DefaultArcSamples
	}
	return b.Samples
}

func (b *ArcBuilder) elevation() float64 {
	if b.Elevation <= 0 || !isFinite(b.Elevation) {
		return DefaultArcElevation
	}
	return b.Elevation
}

// sampleSpline samples a centripetal Catmull-Rom curve through a, m and c at n
// uniformly spaced parameter values. The outer control points are mirrored.
func sampleSpline(a, m, c Vec3, n int) []Vec3 {
	pts := []Vec3{a.Scale(2).Sub(m), a, m, c, c.Scale(2).Sub(m)}
	segments := 2
	out := make([]Vec3, n)
	for i := 0; i < n; i++ {
		p := float64(segments) * float64(i) / float64(n-1)
		seg := int(math.Floor(p))
		w := p - float64(seg)
		if seg >= segments {
			seg, w = segments-1, 1
		}
		out[i] = centripetal(pts[seg], pts[seg+1], pts[seg+2], pts[seg+3], w)
	}
	return out
}

// centripetal evaluates the segment between p1 and p2 at u in [0,1] using the
// Barry-Goldman pyramid with alpha 0.5.
func centripetal(p0, p1, p2, p3 Vec3, u float64) Vec3 {
	knot := func(a, b Vec3) float64 {
		d := math.Sqrt(a.distance(b))
		if d < 1e-4 {
			return 1
		}
		return d
	}
	t0 := 0.0
	t1 := t0 + knot(p0, p1)
	t2 := t1 + knot(p1, p2)
	t3 := t2 + knot(p2, p3)
	t := t1 + (t2-t1)*u

	mix := func(a, b Vec3, ta, tb float64) Vec3 {
		return a.Scale((tb - t) / (tb - ta)).Add(b.Scale((t - ta) / (tb - ta)))
	}
	a1 := mix(p0, p1, t0, t1)
	a2 := mix(p1, p2, t1, t2)
	a3 := mix(p2, p3, t2, t3)
	b1 := mix(a1, a2, t0, t2)
	b2 := mix(a2, a3, t1, t3)
	return mix(b1, b2, t1, t2)
}
