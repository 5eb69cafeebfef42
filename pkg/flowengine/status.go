package flowengine

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sudorandom/transfer-map/pkg/geo"
)

var (
	colorBox       = color.RGBA{0, 0, 0, 100}
	colorBoxStroke = color.RGBA{36, 42, 53, 255}
)

// displayName shortens a country name for the HUD.
func displayName(cc string, maxLen int) string {
	name := geo.CountryName(cc)
	if idx := strings.Index(name, " ("); idx != -1 {
		name = name[:idx]
	}
	if idx := strings.Index(name, ", "); idx != -1 {
		name = name[:idx]
	}
	if maxLen > 3 && len(name) > maxLen {
		name = name[:maxLen-3] + "..."
	}
	return name
}

func (e *Engine) hudMetrics() (margin, fontSize float64) {
	if e.Width > 2000 {
		return 80.0, 36.0
	}
	return 40.0, 18.0
}

// drawBox draws a titled panel whose first content row sits at y.
func (e *Engine) drawBox(screen *ebiten.Image, x, y, w, h, fontSize float64, title string, accent color.RGBA) {
	vector.DrawFilledRect(screen, float32(x-10), float32(y-fontSize-15), float32(w), float32(h), colorBox, false)
	vector.StrokeRect(screen, float32(x-10), float32(y-fontSize-15), float32(w), float32(h), 1, colorBoxStroke, false)
	vector.DrawFilledRect(screen, float32(x-10), float32(y-fontSize-15), 4, float32(fontSize+10), accent, false)

	titleFace := &text.GoTextFace{Source: e.fontSource, Size: fontSize * 0.8}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x+5, y-fontSize-5)
	op.ColorScale.Scale(1, 1, 1, 0.5)
	text.Draw(screen, title, titleFace, op)
}

func (e *Engine) drawLegend(screen *ebiten.Image) {
	if e.fontSource == nil {
		return
	}
	margin, fontSize := e.hudMetrics()
	spacing, swatchSize := fontSize*2, fontSize
	items := []struct {
		Label string
		Color color.RGBA
	}{
		{"Pending", ColorPending},
		{"Active", ColorActive},
		{"Completed", ColorCompleted},
	}
	lx := margin
	ly := float64(e.Height) - margin - float64(len(items))*spacing
	face := &text.GoTextFace{Source: e.fontSource, Size: fontSize}
	for i, it := range items {
		ty := ly + float64(i)*spacing
		e.drawPulse(screen, lx+swatchSize/2, ty+swatchSize/2, swatchSize*1.8, it.Color, 0.6)
		e.drawPulse(screen, lx+swatchSize/2, ty+swatchSize/2, swatchSize*0.9, it.Color, 0.6)
		op := &text.DrawOptions{}
		op.GeoM.Translate(lx+swatchSize+15, ty+(swatchSize/2)-(fontSize/2))
		op.ColorScale.Scale(1, 1, 1, 0.8)
		text.Draw(screen, it.Label, face, op)
	}
}

// drawStatus lists the transfer history, in flight first.
func (e *Engine) drawStatus(screen *ebiten.Image) {
	if e.fontSource == nil || len(e.frame.History) == 0 {
		return
	}
	margin, fontSize := e.hudMetrics()
	rowH := fontSize + 10
	boxW := fontSize * 24
	boxH := float64(len(e.frame.History))*rowH + fontSize + 30
	x, y := margin, margin+fontSize+15
	e.drawBox(screen, x, y, boxW, boxH, fontSize, "TRANSFERS", ColorActive)

	face := &text.GoTextFace{Source: e.fontSource, Size: fontSize}
	mono := &text.GoTextFace{Source: e.monoSource, Size: fontSize * 0.9}
	for i, t := range e.frame.History {
		ry := y + float64(i)*rowH
		col := statusColor(t.Status)
		cr, cg, cb := float32(col.R)/255.0, float32(col.G)/255.0, float32(col.B)/255.0

		vector.DrawFilledCircle(screen, float32(x+fontSize/3), float32(ry+fontSize/2), float32(fontSize/4), col, true)

		corridor := fmt.Sprintf("%s → %s", displayName(t.FromCountry, 12), displayName(t.ToCountry, 12))
		op := &text.DrawOptions{}
		op.GeoM.Translate(x+fontSize, ry)
		op.ColorScale.Scale(1, 1, 1, 0.8)
		text.Draw(screen, corridor, face, op)

		amount := fmt.Sprintf("%s %s", t.Amount.StringFixed(2), t.SourceCurrency)
		tw, _ := text.Measure(amount, mono, 0)
		aop := &text.DrawOptions{}
		aop.GeoM.Translate(x+boxW-tw-25, ry)
		aop.ColorScale.Scale(cr, cg, cb, 0.9)
		text.Draw(screen, amount, mono, aop)
	}
}

// drawMetrics shows the running totals and the busiest countries.
func (e *Engine) drawMetrics(screen *ebiten.Image) {
	if e.fontSource == nil {
		return
	}
	margin, fontSize := e.hudMetrics()
	agg := e.frame.Aggregates
	top := agg.TopCountries(5)
	rowH := fontSize + 10
	boxW := fontSize * 16
	boxH := float64(2+len(top))*rowH + fontSize + 40
	x := float64(e.Width) - margin - boxW + 10
	y := margin + fontSize + 15
	e.drawBox(screen, x, y, boxW, boxH, fontSize, "TOTALS", ColorCompleted)

	face := &text.GoTextFace{Source: e.fontSource, Size: fontSize}
	mono := &text.GoTextFace{Source: e.monoSource, Size: fontSize * 0.9}
	type row struct {
		label, value string
		col          color.RGBA
	}
	rows := []row{
		{"Completed", agg.CompletedTotal.StringFixed(2), ColorCompleted},
		{"Pending", agg.PendingTotal.StringFixed(2), ColorPending},
	}
	for _, cc := range top {
		rows = append(rows, row{displayName(cc.Country, 18), fmt.Sprintf("%d", cc.Count), ColorCountry})
	}
	for i, r := range rows {
		ry := y + float64(i)*rowH
		if i >= 2 {
			ry += 10
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(x, ry)
		op.ColorScale.Scale(1, 1, 1, 0.8)
		text.Draw(screen, r.label, face, op)

		tw, _ := text.Measure(r.value, mono, 0)
		vop := &text.DrawOptions{}
		vop.GeoM.Translate(x+boxW-tw-25, ry)
		cr, cg, cb := float32(r.col.R)/255.0, float32(r.col.G)/255.0, float32(r.col.B)/255.0
		vop.ColorScale.Scale(cr, cg, cb, 0.9)
		text.Draw(screen, r.value, mono, vop)
	}
}
