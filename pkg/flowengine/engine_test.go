package flowengine

import (
	"image"
	"image/color"
	"testing"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/transfer-map/pkg/geo"
	"github.com/sudorandom/transfer-map/pkg/session"
)

func newTestEngine(t *testing.T, w, h int) *Engine {
	t.Helper()
	r, err := geo.NewResolver()
	if err != nil {
		t.Fatal(err)
	}
	sess := session.New(session.DefaultConfig(), r, nil, time.Unix(0, 0))
	return &Engine{
		Width:     w,
		Height:    h,
		session:   sess,
		projector: geo.NewProjector(w, h, float64(w)/(4*1.4142135623730951)*0.95),
	}
}

func pixelAt(img *image.RGBA, x, y float64) color.RGBA {
	return img.RGBAAt(int(x), int(y))
}

func (e *Engine) pixelAtGeo(img *image.RGBA, lat, lng float64) color.RGBA {
	x, y := e.projector.Project(lat, lng)
	return pixelAt(img, x, y)
}

func TestGenerateBackgroundWorld(t *testing.T) {
	e := newTestEngine(t, 800, 400)
	world := geojson.NewFeatureCollection()
	world.AddFeature(geojson.NewPolygonFeature([][][]float64{{
		{-20, -20}, {20, -20}, {20, 20}, {-20, 20}, {-20, -20},
	}}))
	img := e.generateBackground(world)

	if got := pixelAt(img, 1, 1); got != colorBackground {
		t.Errorf("corner = %v; want background", got)
	}
	if got := e.pixelAtGeo(img, 10, 10); got != colorLand {
		t.Errorf("inside polygon = %v; want land", got)
	}
	if got := e.pixelAtGeo(img, 50, 100); got != colorSea {
		t.Errorf("open ocean = %v; want sea", got)
	}
}

func TestGenerateBackgroundGraticule(t *testing.T) {
	e := newTestEngine(t, 800, 400)
	img := e.generateBackground(nil)

	if got := e.pixelAtGeo(img, 0, 0); got != colorOutline {
		t.Errorf("equator at prime meridian = %v; want graticule line", got)
	}
	if got := pixelAt(img, 1, 1); got != colorBackground {
		t.Errorf("corner = %v; want background", got)
	}
}

func TestConfigVerify(t *testing.T) {
	c := Config{}
	if err := c.Verify(); err != nil {
		t.Fatal(err)
	}
	if c.Width != 1920 || c.Height != 1080 || c.Scale <= 0 {
		t.Errorf("defaults not applied: %+v", c)
	}

	c = Config{Width: 100, Height: 100, Scale: 10, WorldPath: "does/not/exist.geojson"}
	if err := c.Verify(); err == nil {
		t.Error("expected missing world file to fail")
	}
}
