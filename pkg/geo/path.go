package geo

import (
	"fmt"
	"math"

	geojson "github.com/paulmach/go.geojson"
)

// Feature kinds carried in the "kind" property of frame features.
const (
	KindCorridor = "corridor"
	KindVisible  = "visible"
	KindMarker   = "marker"
	KindCountry  = "country"
)

func fractionIndex(n int, fraction float64) (int, float64) {
	if math.IsNaN(fraction) || fraction <= 0 {
		return 0, 0
	}
	if fraction >= 1 {
		return n - 1, 0
	}
	pos := fraction * float64(n-1)
	idx := int(math.Floor(pos))
	return idx, pos - float64(idx)
}

// VisiblePath returns the portion of path covered by fraction, ending at an
// interpolated point between samples. A one-point path is returned as is.
func VisiblePath(path []LngLat, fraction float64) []LngLat {
	if len(path) < 2 {
		return append([]LngLat(nil), path...)
	}
	idx, rem := fractionIndex(len(path), fraction)
	out := make([]LngLat, 0, idx+2)
	out = append(out, path[:idx+1]...)
	if rem > 0 {
		out = append(out, lerp(path[idx], path[idx+1], rem))
	}
	return out
}

// PositionAt is the marker position after travelling fraction of the path.
func PositionAt(path []LngLat, fraction float64) (LngLat, bool) {
	switch len(path) {
	case 0:
		return LngLat{}, false
	case 1:
		return path[0], true
	}
	idx, rem := fractionIndex(len(path), fraction)
	if rem == 0 {
		return path[idx], true
	}
	return lerp(path[idx], path[idx+1], rem), true
}

func lineCoords(path []LngLat) [][]float64 {
	coords := make([][]float64, len(path))
	for i, p := range path {
		coords[i] = p.Coords()
	}
	return coords
}

// FrameCollection is the feature collection handed to the rendering surface for
// one animation frame: the whole corridor, the visible part and the marker.
func FrameCollection(transferID string, path []LngLat, fraction float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fraction = clamp(fraction, 0, 1)
	if len(path) >= 2 {
		corridor := geojson.NewLineStringFeature(lineCoords(path))
		corridor.SetProperty("kind", KindCorridor)
		corridor.SetProperty("transferId", transferID)
		fc.AddFeature(corridor)

		if visible := VisiblePath(path, fraction); len(visible) >= 2 {
			f := geojson.NewLineStringFeature(lineCoords(visible))
			f.SetProperty("kind", KindVisible)
			f.SetProperty("transferId", transferID)
			f.SetProperty("visibleFraction", fraction)
			fc.AddFeature(f)
		}
	}
	if pos, ok := PositionAt(path, fraction); ok {
		marker := geojson.NewPointFeature(pos.Coords())
		marker.SetProperty("kind", KindMarker)
		marker.SetProperty("transferId", transferID)
		fc.AddFeature(marker)
	}
	return fc
}

// CountryCollection renders highlighted countries as point features.
func CountryCollection(r *Resolver, codes []string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, cc := range codes {
		p, err := r.Resolve(cc)
		if err != nil {
			continue
		}
		f := geojson.NewPointFeature(p.Coords())
		f.SetProperty("kind", KindCountry)
		f.SetProperty("country", cc)
		fc.AddFeature(f)
	}
	return fc
}

// EncodePath serializes a path as a GeoJSON LineString geometry.
func EncodePath(path []LngLat) ([]byte, error) {
	return geojson.NewLineStringGeometry(lineCoords(path)).MarshalJSON()
}

// DecodePath parses a GeoJSON LineString geometry produced by EncodePath.
func DecodePath(data []byte) ([]LngLat, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, err
	}
	if !g.IsLineString() {
		return nil, fmt.Errorf("expected LineString, got %s", g.Type)
	}
	path := make([]LngLat, len(g.LineString))
	for i, c := range g.LineString {
		if len(c) < 2 {
			return nil, fmt.Errorf("position %d has %d coordinates", i, len(c))
		}
		path[i] = LngLat{Lng: c[0], Lat: c[1]}
	}
	return path, nil
}
