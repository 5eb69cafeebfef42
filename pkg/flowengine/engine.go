// Package flowengine draws the transfer map with ebiten. Update is the event
// loop: each tick advances the session, applies mouse input as user camera
// moves and eases the on-screen camera toward where the session wants it.
package flowengine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	geojson "github.com/paulmach/go.geojson"
	"github.com/rs/zerolog/log"
	"github.com/sudorandom/transfer-map/pkg/feed"
	"github.com/sudorandom/transfer-map/pkg/geo"
	"github.com/sudorandom/transfer-map/pkg/session"
	"github.com/sudorandom/transfer-map/pkg/utils"
	"github.com/sudorandom/transfer-map/pkg/viewport"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	ColorPending   = color.RGBA{255, 191, 0, 255}  // Amber
	ColorActive    = color.RGBA{0, 191, 255, 255}  // Sky Blue
	ColorCompleted = color.RGBA{173, 255, 47, 255} // Lime Green
	ColorCorridor  = color.RGBA{90, 100, 120, 255}
	ColorCountry   = color.RGBA{255, 255, 255, 255}

	colorBackground = color.RGBA{8, 10, 15, 255}
	colorSea        = color.RGBA{14, 17, 23, 255}
	colorLand       = color.RGBA{26, 29, 35, 255}
	colorOutline    = color.RGBA{36, 42, 53, 255}
)

type Config struct {
	Width, Height int
	// Scale is the Mollweide sphere radius in pixels at zoom 1.
	Scale float64
	// WorldPath optionally names a GeoJSON file or URL of country outlines.
	WorldPath string
	// CacheDir holds downloaded outlines.
	CacheDir string
}

func DefaultConfig() Config {
	return Config{Width: 1920, Height: 1080, Scale: 320, CacheDir: "data/cache"}
}

// Verify replaces unusable values with the defaults.
func (c *Config) Verify() error {
	def := DefaultConfig()
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = def.Width, def.Height
	}
	if c.Scale <= 0 {
		c.Scale = float64(c.Width) / (4 * math.Sqrt2) * 0.95
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.WorldPath != "" && !utils.IsURL(c.WorldPath) {
		if _, err := os.Stat(c.WorldPath); err != nil {
			return fmt.Errorf("world outlines: %w", err)
		}
	}
	return nil
}

type Engine struct {
	Width, Height int
	// Feed, when set, backs the "new transfer" key.
	Feed *feed.Generator

	cfg       Config
	session   *session.Session
	projector *geo.Projector
	camera    *Camera

	frame      session.Frame
	lastUpdate time.Time

	dragging     bool
	dragX, dragY float64

	bgImage    *ebiten.Image
	pulseImage *ebiten.Image
	fontSource *text.GoTextFaceSource
	monoSource *text.GoTextFaceSource
}

func NewEngine(cfg Config, sess *session.Session) (*Engine, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	m, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		return nil, err
	}
	return &Engine{
		Width:      cfg.Width,
		Height:     cfg.Height,
		cfg:        cfg,
		session:    sess,
		projector:  geo.NewProjector(cfg.Width, cfg.Height, cfg.Scale),
		camera:     NewCamera(sess.Viewport().State(), sess.Config().Viewport),
		fontSource: s,
		monoSource: m,
	}, nil
}

func (e *Engine) Update() error {
	now := time.Now()
	dt := time.Duration(0)
	if !e.lastUpdate.IsZero() {
		dt = now.Sub(e.lastUpdate)
	}
	e.lastUpdate = now

	e.handleInput(now)
	e.frame = e.session.Tick(now)
	if e.camera.Step(e.frame.Viewport, dt) {
		e.session.HandleViewportChange(viewport.Change{State: e.camera.State, At: now})
	}
	return nil
}

func (e *Engine) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	cam := e.camera.State
	k := geo.Magnification(cam.Zoom)
	if e.bgImage != nil {
		cx, cy := e.projector.Project(cam.Center.Lat, cam.Center.Lng)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-cx, -cy)
		op.GeoM.Scale(k, k)
		op.GeoM.Translate(float64(e.Width)/2, float64(e.Height)/2)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(e.bgImage, op)
	}

	toScreen := func(p geo.LngLat) (float64, float64) {
		return e.projector.ToScreen(p, cam.Center, cam.Zoom)
	}
	e.drawCountries(screen, projectFeatures(geo.CountryCollection(e.session.Resolver(), e.frame.Aggregates.Highlighted), toScreen))
	e.drawCorridor(screen, projectFeatures(e.frame.FeatureCollection(), toScreen))

	e.drawLegend(screen)
	e.drawStatus(screen)
	e.drawMetrics(screen)
}

func (e *Engine) Layout(w, h int) (int, int) { return e.Width, e.Height }

func (e *Engine) InitPulseTexture() {
	size, inner, peak := 128, 0.8, 0.9
	if e.Width > 2000 {
		size, inner, peak = 256, 0.88, 0.94
	}
	e.pulseImage = ebiten.NewImage(size, size)
	e.pulseImage.WritePixels(ringSprite(size, inner, peak))
}

// LoadData builds the static background: the configured world outlines when
// present, otherwise a graticule with a dot per known country.
func (e *Engine) LoadData(ctx context.Context) error {
	var world *geojson.FeatureCollection
	if e.cfg.WorldPath != "" {
		rc, err := utils.OutlineSource{CacheDir: e.cfg.CacheDir}.Open(ctx, e.cfg.WorldPath)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return err
		}
		world, err = geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", e.cfg.WorldPath, err)
		}
		log.Info().Str("path", e.cfg.WorldPath).Int("features", len(world.Features)).Msg("loaded world outlines")
	}
	e.bgImage = ebiten.NewImageFromImage(e.generateBackground(world))
	return nil
}

func (e *Engine) generateBackground(world *geojson.FeatureCollection) *image.RGBA {
	m := newBasemap(e.projector, e.Width, e.Height, colorBackground)
	edge := mapEdge()
	m.fill([][]geo.LngLat{edge}, colorSea)
	if world == nil {
		for _, line := range graticule(30) {
			m.stroke(line, colorOutline)
		}
		for _, cc := range e.session.Resolver().Codes() {
			if p, err := e.session.Resolver().Resolve(cc); err == nil {
				m.marker(p, colorOutline)
			}
		}
	} else {
		for _, f := range world.Features {
			m.geometry(f.Geometry, colorLand, colorOutline)
		}
	}
	m.stroke(edge, colorOutline)
	return m.img
}
