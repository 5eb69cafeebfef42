// Package geo holds the geographic primitives used to draw transfer corridors:
// coordinates, country resolution, arc geometry, projection and the GeoJSON
// exchange format consumed by the rendering surface.
package geo

import (
	"errors"
	"math"
)

// ErrInvalidGeometry is returned when a path cannot be built between two points,
// either because they coincide or because a coordinate is not finite.
var ErrInvalidGeometry = errors.New("invalid geometry")

// LngLat is a geographic coordinate in degrees. Longitude comes first to match
// the GeoJSON [lng, lat] ordering.
type LngLat struct {
	Lng, Lat float64
}

// Coords returns the point as a GeoJSON position.
func (p LngLat) Coords() []float64 { return []float64{p.Lng, p.Lat} }

func (p LngLat) IsFinite() bool {
	return isFinite(p.Lng) && isFinite(p.Lat)
}

// Midpoint is the plain coordinate average of two points.
func Midpoint(a, b LngLat) LngLat {
	return LngLat{Lng: (a.Lng + b.Lng) / 2, Lat: (a.Lat + b.Lat) / 2}
}

// Distance is the planar distance between two points in degrees.
func Distance(a, b LngLat) float64 {
	return math.Hypot(b.Lng-a.Lng, b.Lat-a.Lat)
}

func lerp(a, b LngLat, t float64) LngLat {
	return LngLat{Lng: a.Lng + (b.Lng-a.Lng)*t, Lat: a.Lat + (b.Lat-a.Lat)*t}
}

// Vec3 is a point in the globe's Cartesian space, unit sphere centered at the origin.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Cross(o Vec3) Vec3 { return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X} }
func (v Vec3) IsFinite() bool { return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z) }
func (v Vec3) distance(o Vec3) float64 { return v.Sub(o).Len() }

func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Vec3 places the coordinate on the unit sphere. Y points to the north pole.
func (p LngLat) Vec3() Vec3 {
	lat, lng := p.Lat*math.Pi/180, p.Lng*math.Pi/180
	return Vec3{
		X: math.Cos(lat) * math.Sin(lng),
		Y: math.Sin(lat),
		Z: math.Cos(lat) * math.Cos(lng),
	}
}

// FromVec3 is the inverse of LngLat.Vec3. The vector does not need to be normalized.
func FromVec3(v Vec3) LngLat {
	n := v.Normalize()
	return LngLat{
		Lng: math.Atan2(n.X, n.Z) * 180 / math.Pi,
		Lat: math.Asin(clamp(n.Y, -1, 1)) * 180 / math.Pi,
	}
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
