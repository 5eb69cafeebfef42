package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sudorandom/transfer-map/pkg/utils"
)

var cli struct {
	Script   string        `arg:"" optional:"" help:"Script file to replay (default: built-in scenario, - for stdin)."`
	Step     time.Duration `default:"250ms" help:"Interval between emitted frames."`
	Duration time.Duration `default:"10s" help:"Simulated time to run for."`
	Features bool          `default:"true" negatable:"" help:"Include GeoJSON features in frames."`
	Debug    bool          `help:"Enable debug logging."`
}

func main() {
	kong.Parse(&cli, kong.Description("Replay a transfer script on simulated time and print JSON lines."))

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cli.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var src io.Reader = strings.NewReader(defaultScript)
	switch cli.Script {
	case "":
	case "-":
		src = os.Stdin
	default:
		f, err := os.Open(cli.Script)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open script")
		}
		defer f.Close()
		src = f
	}
	steps, err := parseScript(src)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse script")
	}
	if cli.Step <= 0 {
		log.Fatal().Dur("step", cli.Step).Msg("Step must be positive")
	}

	cache, err := utils.OpenPathCache()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open path cache")
	}
	defer cache.Close()

	err = replay(os.Stdout, steps, options{Step: cli.Step, Duration: cli.Duration, Features: cli.Features, Cache: cache})
	if err != nil {
		log.Error().Err(err).Msg("Replay failed")
	}
}
