package session

import (
	"time"

	"github.com/sudorandom/transfer-map/pkg/animation"
	"github.com/sudorandom/transfer-map/pkg/geo"
	"github.com/sudorandom/transfer-map/pkg/transfer"
	"github.com/sudorandom/transfer-map/pkg/viewport"
)

type Config struct {
	Timings           transfer.Timings
	AnimationDuration time.Duration
	ArcSamples        int
	ArcElevation      float64
	Viewport          viewport.Config
	// HistorySize caps the sorted history kept on each frame.
	HistorySize int
}

func DefaultConfig() Config {
	return Config{
		Timings:           transfer.DefaultTimings(),
		AnimationDuration: animation.DefaultDuration,
		ArcSamples:        geo.DefaultArcSamples,
		ArcElevation:      geo.DefaultArcElevation,
		Viewport:          viewport.DefaultConfig(),
		HistorySize:       8,
	}
}

// Verify replaces unusable values with the defaults.
func (c *Config) Verify() error {
	def := DefaultConfig()
	if err := c.Timings.Verify(); err != nil {
		return err
	}
	if err := c.Viewport.Verify(); err != nil {
		return err
	}
	if c.AnimationDuration <= 0 {
		c.AnimationDuration = def.AnimationDuration
	}
	if c.ArcSamples < 2 {
		c.ArcSamples = def.ArcSamples
	}
	if c.ArcElevation <= 0 {
		c.ArcElevation = def.ArcElevation
	}
	if c.HistorySize <= 0 {
		c.HistorySize = def.HistorySize
	}
	return nil
}
