package flowengine

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sudorandom/transfer-map/pkg/geo"
	"github.com/sudorandom/transfer-map/pkg/transfer"
)

func statusColor(s transfer.Status) color.RGBA {
	switch s {
	case transfer.StatusPending:
		return ColorPending
	case transfer.StatusActive:
		return ColorActive
	case transfer.StatusCompleted:
		return ColorCompleted
	}
	return ColorCorridor
}

func (e *Engine) drawPulse(screen *ebiten.Image, x, y, diameter float64, c color.RGBA, alpha float64) {
	if e.pulseImage == nil {
		return
	}
	imgW := e.pulseImage.Bounds().Dx()
	halfW := float64(imgW) / 2
	op := &ebiten.DrawImageOptions{}
	op.Blend = ebiten.BlendLighter
	scale := diameter / float64(imgW)
	op.GeoM.Translate(-halfW, -halfW)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	r, g, b := float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0
	op.ColorScale.Scale(float32(r*alpha), float32(g*alpha), float32(b*alpha), float32(alpha))
	screen.DrawImage(e.pulseImage, op)
}

func (e *Engine) drawCountries(screen *ebiten.Image, shapes []shape) {
	phase := math.Mod(float64(time.Now().UnixMilli())/1500.0, 1)
	for _, s := range shapes {
		if s.Kind != geo.KindCountry {
			continue
		}
		p := s.Points[0]
		vector.DrawFilledCircle(screen, float32(p[0]), float32(p[1]), 3, ColorCountry, true)
		e.drawPulse(screen, p[0], p[1], 12+phase*28, ColorCountry, 0.5*(1-phase))
	}
}

func (e *Engine) drawCorridor(screen *ebiten.Image, shapes []shape) {
	t := e.frame.Transfer
	if t == nil {
		return
	}
	col := statusColor(t.Status)
	width := float32(2)
	if e.Width > 2000 {
		width = 4
	}
	for _, s := range shapes {
		switch s.Kind {
		case geo.KindCorridor:
			strokePolyline(screen, s.Points, width/2, ColorCorridor)
		case geo.KindVisible:
			strokePolyline(screen, s.Points, width, col)
		}
	}
	for _, s := range shapes {
		if s.Kind != geo.KindMarker {
			continue
		}
		p := s.Points[0]
		e.drawPulse(screen, p[0], p[1], 36, col, 0.8)
		vector.DrawFilledCircle(screen, float32(p[0]), float32(p[1]), width*2, col, true)
		e.drawBadge(screen, p[0], p[1], t)
	}
}

func strokePolyline(screen *ebiten.Image, pts [][2]float64, width float32, c color.RGBA) {
	for i := 0; i+1 < len(pts); i++ {
		vector.StrokeLine(screen, float32(pts[i][0]), float32(pts[i][1]), float32(pts[i+1][0]), float32(pts[i+1][1]), width, c, true)
	}
}

// drawBadge labels the marker with the amount in flight.
func (e *Engine) drawBadge(screen *ebiten.Image, x, y float64, t *transfer.Transfer) {
	fontSize := 16.0
	if e.Width > 2000 {
		fontSize = 32.0
	}
	face := &text.GoTextFace{Source: e.monoSource, Size: fontSize}
	label := fmt.Sprintf("%s %s", t.Amount.StringFixed(2), t.SourceCurrency)
	tw, th := text.Measure(label, face, 0)
	bx, by := x+14, y-th-14
	vector.DrawFilledRect(screen, float32(bx-6), float32(by-4), float32(tw+12), float32(th+8), color.RGBA{0, 0, 0, 160}, false)
	vector.StrokeRect(screen, float32(bx-6), float32(by-4), float32(tw+12), float32(th+8), 1, statusColor(t.Status), false)
	op := &text.DrawOptions{}
	op.GeoM.Translate(bx, by)
	text.Draw(screen, label, face, op)
}
