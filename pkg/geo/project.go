package geo

import "math"

// Projector maps coordinates onto a Mollweide world map of the given size.
// Scale is the sphere radius in pixels at zoom level 1.
type Projector struct {
	Width, Height int
	Scale         float64
}

func NewProjector(width, height int, scale float64) *Projector {
	return &Projector{Width: width, Height: height, Scale: scale}
}

// Project returns the base (zoom 1, centered on 0,0) pixel position.
func (g *Projector) Project(lat, lng float64) (x, y float64) {
	if lat > 89.5 {
		lat = 89.5
	}
	if lat < -89.5 {
		lat = -89.5
	}

	latRad, lngRad := lat*math.Pi/180, lng*math.Pi/180
	theta := latRad
	for i := 0; i < 10; i++ {
		denom := 2 + 2*math.Cos(2*theta)
		if math.Abs(denom) < 1e-9 {
			break
		}
		delta := (2*theta + math.Sin(2*theta) - math.Pi*math.Sin(latRad)) / denom
		theta -= delta
		if math.Abs(delta) < 1e-7 {
			break
		}
	}
	r := g.Scale
	x = (float64(g.Width) / 2) + r*(2*math.Sqrt(2)/math.Pi)*lngRad*math.Cos(theta)
	y = (float64(g.Height) / 2) - r*math.Sqrt(2)*math.Sin(theta)
	return x, y
}

// Unproject is the inverse of Project. Points off the ellipse are clamped to its edge.
func (g *Projector) Unproject(x, y float64) LngLat {
	r := g.Scale
	dy := (float64(g.Height)/2 - y) / (r * math.Sqrt(2))
	theta := math.Asin(clamp(dy, -1, 1))
	lat := math.Asin(clamp((2*theta+math.Sin(2*theta))/math.Pi, -1, 1))
	cos := math.Cos(theta)
	if cos < 1e-9 {
		return LngLat{Lng: 0, Lat: lat * 180 / math.Pi}
	}
	lng := math.Pi * (x - float64(g.Width)/2) / (2 * math.Sqrt(2) * r * cos)
	return LngLat{Lng: clamp(lng*180/math.Pi, -180, 180), Lat: lat * 180 / math.Pi}
}

// Magnification is the pixel scale factor applied at a zoom level. Zoom 1 is the base map.
func Magnification(zoom float64) float64 {
	return math.Pow(2, zoom-1)
}

// ToScreen projects p for a camera looking at center with the given zoom.
func (g *Projector) ToScreen(p, center LngLat, zoom float64) (x, y float64) {
	px, py := g.Project(p.Lat, p.Lng)
	cx, cy := g.Project(center.Lat, center.Lng)
	k := Magnification(zoom)
	return (px-cx)*k + float64(g.Width)/2, (py-cy)*k + float64(g.Height)/2
}

// FromScreen is the inverse of ToScreen.
func (g *Projector) FromScreen(x, y float64, center LngLat, zoom float64) LngLat {
	cx, cy := g.Project(center.Lat, center.Lng)
	k := Magnification(zoom)
	return g.Unproject((x-float64(g.Width)/2)/k+cx, (y-float64(g.Height)/2)/k+cy)
}
