package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sudorandom/transfer-map/pkg/geo"
	"github.com/sudorandom/transfer-map/pkg/transfer"
	"github.com/sudorandom/transfer-map/pkg/viewport"
)

// defaultScript submits a transfer, supersedes it before it completes, resets
// the second one, pans the map by hand and lets a third run to completion.
const defaultScript = `
0s    submit US GB 2500.00 USD GBP
2s    submit JP BR 120000 JPY BRL
3s    reset
3.5s  pan 10 45 2
5s    submit DE FR 99.95 EUR EUR
`

type stepKind int

const (
	stepSubmit stepKind = iota
	stepReset
	stepPan
)

type step struct {
	At   time.Duration
	Kind stepKind
	Req  transfer.Request
	View viewport.State
}

var errScript = errors.New("invalid script")

// parseScript reads one step per line: an offset from the start followed by
// "submit FROM TO AMOUNT FROM_CURRENCY TO_CURRENCY", "reset" or
// "pan LNG LAT ZOOM". Blank lines and lines starting with # are skipped.
// Offsets must not decrease.
func parseScript(r io.Reader) ([]step, error) {
	var steps []step
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		st, err := parseStep(strings.Fields(text))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", errScript, line, err)
		}
		if n := len(steps); n > 0 && st.At < steps[n-1].At {
			return nil, fmt.Errorf("%w: line %d: offset %s before %s", errScript, line, st.At, steps[n-1].At)
		}
		steps = append(steps, st)
	}
	return steps, sc.Err()
}

func parseStep(fields []string) (step, error) {
	if len(fields) < 2 {
		return step{}, errors.New("expected an offset and an action")
	}
	at, err := time.ParseDuration(fields[0])
	if err != nil {
		return step{}, err
	}
	if at < 0 {
		return step{}, fmt.Errorf("negative offset %s", at)
	}
	args := fields[2:]
	switch fields[1] {
	case "submit":
		if len(args) != 5 {
			return step{}, fmt.Errorf("submit takes 5 arguments, got %d", len(args))
		}
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return step{}, fmt.Errorf("amount %q: %v", args[2], err)
		}
		return step{At: at, Kind: stepSubmit, Req: transfer.Request{
			FromCountry:  args[0],
			ToCountry:    args[1],
			Amount:       amount,
			FromCurrency: args[3],
			ToCurrency:   args[4],
		}}, nil
	case "reset":
		return step{At: at, Kind: stepReset}, nil
	case "pan":
		if len(args) != 3 {
			return step{}, fmt.Errorf("pan takes 3 arguments, got %d", len(args))
		}
		var v [3]float64
		for i, a := range args {
			if v[i], err = strconv.ParseFloat(a, 64); err != nil {
				return step{}, err
			}
		}
		return step{At: at, Kind: stepPan, View: viewport.State{Center: geo.LngLat{Lng: v[0], Lat: v[1]}, Zoom: v[2]}}, nil
	}
	return step{}, fmt.Errorf("unknown action %q", fields[1])
}
