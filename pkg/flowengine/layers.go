package flowengine

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/transfer-map/pkg/geo"
)

// shape is a frame feature in screen space.
type shape struct {
	Kind    string
	Country string
	Points  [][2]float64
}

// projectFeatures turns the line and point features of fc into screen shapes.
// Other geometry types are skipped.
func projectFeatures(fc *geojson.FeatureCollection, toScreen func(geo.LngLat) (float64, float64)) []shape {
	var out []shape
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		var coords [][]float64
		switch {
		case f.Geometry.IsLineString():
			coords = f.Geometry.LineString
		case f.Geometry.IsPoint():
			coords = [][]float64{f.Geometry.Point}
		default:
			continue
		}
		s := shape{
			Kind:    f.PropertyMustString("kind", ""),
			Country: f.PropertyMustString("country", ""),
			Points:  make([][2]float64, 0, len(coords)),
		}
		for _, c := range coords {
			if len(c) < 2 {
				continue
			}
			x, y := toScreen(geo.LngLat{Lng: c[0], Lat: c[1]})
			s.Points = append(s.Points, [2]float64{x, y})
		}
		if len(s.Points) > 0 {
			out = append(out, s)
		}
	}
	return out
}
