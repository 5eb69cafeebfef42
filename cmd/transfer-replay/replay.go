package main

import (
	"encoding/json"
	"io"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sudorandom/transfer-map/pkg/geo"
	"github.com/sudorandom/transfer-map/pkg/session"
	"github.com/sudorandom/transfer-map/pkg/transfer"
	"github.com/sudorandom/transfer-map/pkg/viewport"
)

type options struct {
	Step     time.Duration
	Duration time.Duration
	Features bool
	Cache    geo.PathCache
}

// record is one output line.
type record struct {
	Type       string               `json:"type"`
	OffsetMS   int64                `json:"offsetMs"`
	Transition *transfer.Transition `json:"transition,omitempty"`
	Error      string               `json:"error,omitempty"`

	TransferID     string                     `json:"transferId,omitempty"`
	Status         *transfer.Status           `json:"status,omitempty"`
	Progress       *float64                   `json:"progress,omitempty"`
	Viewport       *viewport.State            `json:"viewport,omitempty"`
	CompletedTotal *decimal.Decimal           `json:"completedTotal,omitempty"`
	PendingTotal   *decimal.Decimal           `json:"pendingTotal,omitempty"`
	Features       *geojson.FeatureCollection `json:"features,omitempty"`
}

// replay runs steps against a session on simulated time, writing lifecycle
// transitions as they happen and a frame every opts.Step up to opts.Duration.
func replay(w io.Writer, steps []step, opts options) error {
	resolver, err := geo.NewResolver()
	if err != nil {
		return err
	}
	start := time.Unix(0, 0).UTC()
	sess := session.New(session.DefaultConfig(), resolver, opts.Cache, start)

	enc := json.NewEncoder(w)
	var encErr error
	emit := func(r record) {
		if encErr == nil {
			encErr = enc.Encode(r)
		}
	}
	offset := func(t time.Time) int64 { return t.Sub(start).Milliseconds() }

	sess.Lifecycle().Subscribe(func(tr transfer.Transition) {
		emit(record{Type: "transition", OffsetMS: offset(tr.At), Transition: &tr})
	})

	frame := func(at time.Duration) {
		f := sess.Tick(start.Add(at))
		r := record{
			Type:           "frame",
			OffsetMS:       at.Milliseconds(),
			Viewport:       &f.Viewport,
			CompletedTotal: &f.Aggregates.CompletedTotal,
			PendingTotal:   &f.Aggregates.PendingTotal,
		}
		if f.Transfer != nil {
			r.TransferID = f.Transfer.ID.String()
			r.Status = &f.Transfer.Status
			r.Progress = &f.Progress
		}
		if opts.Features {
			r.Features = f.FeatureCollection()
		}
		emit(r)
	}

	next := time.Duration(0)
	for _, st := range steps {
		for ; next < st.At && next <= opts.Duration; next += opts.Step {
			frame(next)
		}
		now := start.Add(st.At)
		sess.Tick(now)
		switch st.Kind {
		case stepSubmit:
			if _, err := sess.Submit(st.Req); err != nil {
				log.Warn().Err(err).Str("from", st.Req.FromCountry).Str("to", st.Req.ToCountry).Msg("transfer rejected")
				emit(record{Type: "rejected", OffsetMS: st.At.Milliseconds(), Error: err.Error()})
			}
		case stepReset:
			sess.Reset()
		case stepPan:
			sess.HandleViewportChange(viewport.Change{State: st.View, UserInitiated: true, At: now})
		}
	}
	for ; next <= opts.Duration; next += opts.Step {
		frame(next)
	}
	log.Debug().Int("transfers", sess.Registry().Len()).Int("stale_timers", sess.Lifecycle().StaleDiscards()).Msg("replay finished")
	return encErr
}
