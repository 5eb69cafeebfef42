package main

import (
	"context"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"github.com/sudorandom/transfer-map/pkg/feed"
	"github.com/sudorandom/transfer-map/pkg/flowengine"
	"github.com/sudorandom/transfer-map/pkg/geo"
	"github.com/sudorandom/transfer-map/pkg/session"
	"github.com/sudorandom/transfer-map/pkg/utils"
)

var cli struct {
	Headless     bool          `help:"Run without a local window (Xvfb rendering active)."`
	Width        int           `default:"1920" help:"Internal rendering width."`
	Height       int           `default:"1080" help:"Internal rendering height."`
	Scale        float64       `default:"0" help:"Map radius in pixels at zoom 1 (0 fits the width)."`
	WindowWidth  int           `default:"1280" help:"Initial window width (non-headless only)."`
	WindowHeight int           `default:"720" help:"Initial window height (non-headless only)."`
	TPS          int           `name:"tps" default:"30" help:"Ticks per second (engine updates)."`
	World        string        `help:"GeoJSON file or URL with country outlines for the background."`
	CacheDir     string        `default:"data/cache" help:"Where downloaded outlines are kept."`
	DemoInterval time.Duration `default:"6s" help:"Submit a random transfer this often (0 disables)."`
	Seed         int64         `default:"1" help:"Seed for the demo feed."`
	Debug        bool          `help:"Enable debug logging."`
}

func main() {
	kong.Parse(&cli, kong.Description("Animated map of money transfers between countries."))

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cli.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli})

	resolver, err := geo.NewResolver()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load country positions")
	}
	cache, err := utils.OpenPathCache()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open path cache")
	}
	defer cache.Close()

	sess := session.New(session.DefaultConfig(), resolver, cache, time.Now())
	engine, err := flowengine.NewEngine(flowengine.Config{
		Width:     cli.Width,
		Height:    cli.Height,
		Scale:     cli.Scale,
		WorldPath: cli.World,
		CacheDir:  cli.CacheDir,
	}, sess)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine")
	}
	engine.Feed = feed.NewGenerator(resolver, cli.Seed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine.InitPulseTexture()
	if err := engine.LoadData(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize engine data")
	}
	if cli.DemoInterval > 0 {
		go feed.NewGenerator(resolver, cli.Seed+1).Run(ctx, sess, cli.DemoInterval)
	}

	ebiten.SetTPS(cli.TPS)
	if cli.Headless {
		log.Info().Msg("Running in HEADLESS mode (Rendering active).")
	} else {
		ebiten.SetWindowSize(cli.WindowWidth, cli.WindowHeight)
		ebiten.SetWindowTitle("Transfer Map")
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if err := ebiten.RunGame(engine); err != nil {
		log.Error().Err(err).Msg("Game loop exited")
	}
	log.Info().Int("transfers", sess.Registry().Len()).Int("stale_timers", sess.Lifecycle().StaleDiscards()).Msg("Shutting down")
}
