package flowengine

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog/log"
	"github.com/sudorandom/transfer-map/pkg/viewport"
)

const wheelZoomStep = 0.25

// handleInput turns mouse drags and wheel turns into user camera moves and
// handles the keyboard shortcuts.
func (e *Engine) handleInput(now time.Time) {
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)

	moved := false
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		e.dragging, e.dragX, e.dragY = true, x, y
	}
	if e.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && (x != e.dragX || y != e.dragY) {
		e.camera.Pan(e.projector, e.dragX, e.dragY, x, y)
		e.dragX, e.dragY = x, y
		moved = true
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		e.dragging = false
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		e.camera.ZoomBy(wy * wheelZoomStep)
		moved = true
	}
	if moved {
		e.session.HandleViewportChange(viewport.Change{State: e.camera.State, UserInitiated: true, At: now})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		e.session.Post(func() {
			if e.session.Reset() {
				log.Info().Msg("transfer reset from keyboard")
			}
		})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && e.Feed != nil {
		e.session.PostSubmit(e.Feed.Next(), nil)
	}
}
