package flowengine

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/transfer-map/pkg/geo"
)

// basemap rasterizes geographic shapes onto a CPU image at zoom 1. All
// coordinates go through proj, so the result lines up with what
// Projector.ToScreen produces for the same center.
type basemap struct {
	img  *image.RGBA
	proj *geo.Projector
}

func newBasemap(proj *geo.Projector, width, height int, bg color.RGBA) *basemap {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	return &basemap{img: img, proj: proj}
}

func (b *basemap) project(p geo.LngLat) (float64, float64) {
	return b.proj.Project(p.Lat, p.Lng)
}

// fill paints the area enclosed by rings using the even-odd rule, so inner
// rings punch holes. Each row is sampled at its pixel center.
func (b *basemap) fill(rings [][]geo.LngLat, c color.RGBA) {
	type edge struct{ x0, y0, x1, y1 float64 }
	var edges []edge
	top, bottom := math.Inf(1), math.Inf(-1)
	for _, ring := range rings {
		for i := 0; i+1 < len(ring); i++ {
			x0, y0 := b.project(ring[i])
			x1, y1 := b.project(ring[i+1])
			if y0 == y1 {
				continue
			}
			edges = append(edges, edge{x0, y0, x1, y1})
			top, bottom = math.Min(top, math.Min(y0, y1)), math.Max(bottom, math.Max(y0, y1))
		}
	}
	if len(edges) == 0 {
		return
	}
	bounds := b.img.Bounds()
	first := max(int(math.Floor(top)), bounds.Min.Y)
	last := min(int(math.Ceil(bottom)), bounds.Max.Y-1)
	var xs []float64
	for y := first; y <= last; y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]
		for _, e := range edges {
			if (e.y0 <= cy) == (e.y1 <= cy) {
				continue
			}
			t := (cy - e.y0) / (e.y1 - e.y0)
			xs = append(xs, e.x0+t*(e.x1-e.x0))
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			b.span(y, int(math.Round(xs[i])), int(math.Round(xs[i+1])), c)
		}
	}
}

// span sets pixels [x0, x1) of row y.
func (b *basemap) span(y, x0, x1 int, c color.RGBA) {
	bounds := b.img.Bounds()
	x0, x1 = max(x0, bounds.Min.X), min(x1, bounds.Max.X)
	for x := x0; x < x1; x++ {
		b.img.SetRGBA(x, y, c)
	}
}

// stroke draws the polyline through ring, one pixel wide.
func (b *basemap) stroke(ring []geo.LngLat, c color.RGBA) {
	for i := 0; i+1 < len(ring); i++ {
		x0, y0 := b.project(ring[i])
		x1, y1 := b.project(ring[i+1])
		b.segment(x0, y0, x1, y1, c)
	}
}

// segment steps along the longer axis, one pixel per step.
func (b *basemap) segment(x0, y0, x1, y1 float64, c color.RGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps == 0 {
		b.plot(x0, y0, c)
		return
	}
	dx, dy := (x1-x0)/float64(steps), (y1-y0)/float64(steps)
	for i := 0; i <= steps; i++ {
		b.plot(x0+dx*float64(i), y0+dy*float64(i), c)
	}
}

func (b *basemap) plot(x, y float64, c color.RGBA) {
	p := image.Pt(int(math.Floor(x)), int(math.Floor(y)))
	if p.In(b.img.Bounds()) {
		b.img.SetRGBA(p.X, p.Y, c)
	}
}

// marker draws a 3x3 square centered on p.
func (b *basemap) marker(p geo.LngLat, c color.RGBA) {
	x, y := b.project(p)
	for oy := -1.0; oy <= 1; oy++ {
		for ox := -1.0; ox <= 1; ox++ {
			b.plot(x+ox, y+oy, c)
		}
	}
}

// geometry fills and outlines polygon and multipolygon geometries. Other
// geometry types are ignored.
func (b *basemap) geometry(g *geojson.Geometry, fill, outline color.RGBA) {
	if g == nil {
		return
	}
	var polygons [][][][]float64
	switch {
	case g.IsPolygon():
		polygons = [][][][]float64{g.Polygon}
	case g.IsMultiPolygon():
		polygons = g.MultiPolygon
	}
	for _, poly := range polygons {
		rings := polygonRings(poly)
		b.fill(rings, fill)
		for _, ring := range rings {
			b.stroke(ring, outline)
		}
	}
}

// polygonRings converts GeoJSON [lng, lat] positions, skipping malformed ones.
func polygonRings(poly [][][]float64) [][]geo.LngLat {
	rings := make([][]geo.LngLat, 0, len(poly))
	for _, coords := range poly {
		ring := make([]geo.LngLat, 0, len(coords))
		for _, c := range coords {
			if len(c) < 2 {
				continue
			}
			ring = append(ring, geo.LngLat{Lng: c[0], Lat: c[1]})
		}
		rings = append(rings, ring)
	}
	return rings
}

// mapEdge traces the boundary of the projected world, closed.
func mapEdge() []geo.LngLat {
	var ring []geo.LngLat
	for lat := -90.0; lat <= 90; lat += 2 {
		ring = append(ring, geo.LngLat{Lng: 180, Lat: lat})
	}
	for lat := 90.0; lat >= -90; lat -= 2 {
		ring = append(ring, geo.LngLat{Lng: -180, Lat: lat})
	}
	return append(ring, ring[0])
}

// graticule returns meridians and parallels every step degrees.
func graticule(step float64) [][]geo.LngLat {
	var lines [][]geo.LngLat
	for lng := -180 + step; lng < 180; lng += step {
		var line []geo.LngLat
		for lat := -90.0; lat <= 90; lat += 2 {
			line = append(line, geo.LngLat{Lng: lng, Lat: lat})
		}
		lines = append(lines, line)
	}
	for lat := -90 + step; lat < 90; lat += step {
		var line []geo.LngLat
		for lng := -180.0; lng <= 180; lng += 2 {
			line = append(line, geo.LngLat{Lng: lng, Lat: lat})
		}
		lines = append(lines, line)
	}
	return lines
}

// ringSprite returns size x size RGBA pixels of a white ring whose
// brightness peaks at radius peak (as a fraction of the half-size) and fades
// to zero at inner and at the sprite edge.
func ringSprite(size int, inner, peak float64) []byte {
	pixels := make([]byte, size*size*4)
	half := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r := math.Hypot(float64(x)+0.5-half, float64(y)+0.5-half) / half
			a := ringAlpha(r, inner, peak)
			if a == 0 {
				continue
			}
			off := (y*size + x) * 4
			pixels[off], pixels[off+1], pixels[off+2] = 255, 255, 255
			pixels[off+3] = uint8(math.Round(a * 255))
		}
	}
	return pixels
}

// ringAlpha eases in from inner to peak and out from peak to 1.
func ringAlpha(r, inner, peak float64) float64 {
	switch {
	case r <= inner || r >= 1:
		return 0
	case r <= peak:
		return math.Sin((r - inner) / (peak - inner) * math.Pi / 2)
	default:
		return math.Cos((r - peak) / (1 - peak) * math.Pi / 2)
	}
}
