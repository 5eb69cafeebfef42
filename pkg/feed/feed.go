// Package feed produces synthetic transfer requests for demo mode.
package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/biter777/countries"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sudorandom/transfer-map/pkg/transfer"
)

// Codes lists the countries a Generator may pick from.
type Codes interface {
	Codes() []string
}

// Submitter accepts requests from outside the event loop.
type Submitter interface {
	PostSubmit(req transfer.Request, done func(uuid.UUID, error))
}

type Generator struct {
	codes []string
	rng   *rand.Rand
	// InvalidRate is the fraction of requests deliberately sent with a zero amount.
	InvalidRate float64
}

func NewGenerator(src Codes, seed int64) *Generator {
	return &Generator{codes: src.Codes(), rng: rand.New(rand.NewSource(seed))}
}

// Next returns a random request between two distinct known countries. Amounts
// run from 1.00 to 50,000.00 and currencies follow each country's own.
func (g *Generator) Next() transfer.Request {
	if len(g.codes) == 0 {
		return transfer.Request{}
	}
	from := g.codes[g.rng.Intn(len(g.codes))]
	to := from
	for len(g.codes) > 1 && to == from {
		to = g.codes[g.rng.Intn(len(g.codes))]
	}
	amount := decimal.New(g.rng.Int63n(4_999_901)+100, -2)
	if g.InvalidRate > 0 && g.rng.Float64() < g.InvalidRate {
		amount = decimal.Zero
	}
	return transfer.Request{
		FromCountry:  from,
		ToCountry:    to,
		Amount:       amount,
		FromCurrency: currencyOf(from),
		ToCurrency:   currencyOf(to),
	}
}

func currencyOf(code string) string {
	cur := countries.ByName(code).Currency()
	if cur == countries.CurrencyUnknown || !cur.IsValid() {
		return "USD"
	}
	return cur.Alpha()
}

// Run posts a new request to s every interval until ctx is done.
func (g *Generator) Run(ctx context.Context, s Submitter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req := g.Next()
			s.PostSubmit(req, func(id uuid.UUID, err error) {
				if err != nil {
					return
				}
				log.Debug().Str("transfer_id", id.String()).Str("from", req.FromCountry).Str("to", req.ToCountry).Msg("demo transfer submitted")
			})
		}
	}
}
