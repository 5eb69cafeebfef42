package transfer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sudorandom/transfer-map/pkg/geo"
)

// Resolver turns a country code into a map position.
type Resolver interface {
	Resolve(code string) (geo.LngLat, error)
}

// Registry is the in-memory source of truth for transfers. The most recently
// submitted transfer comes first in iteration order. At most one transfer is
// Pending or Active at any time.
type Registry struct {
	resolver  Resolver
	transfers []*Transfer
	byID      map[uuid.UUID]*Transfer
	inFlight  *Transfer
	listeners []func([]Transfer)
	newID     func() uuid.UUID
}

func NewRegistry(resolver Resolver) *Registry {
	return &Registry{
		resolver: resolver,
		byID:     make(map[uuid.UUID]*Transfer),
		newID:    uuid.New,
	}
}

// Subscribe registers fn to receive a fresh snapshot after every mutation.
func (r *Registry) Subscribe(fn func([]Transfer)) {
	r.listeners = append(r.listeners, fn)
}

func (r *Registry) notify() {
	if len(r.listeners) == 0 {
		return
	}
	snap := r.All()
	for _, fn := range r.listeners {
		fn(snap)
	}
}

// Validate checks a request and returns the resolved, normalized endpoints.
func (r *Registry) Validate(req Request) (Transfer, error) {
	if !req.Amount.IsPositive() {
		return Transfer{}, fmt.Errorf("%w: amount %s must be positive", ErrInvalidTransferRequest, req.Amount)
	}
	if req.FromCountry == "" || req.ToCountry == "" {
		return Transfer{}, fmt.Errorf("%w: missing country", ErrInvalidTransferRequest)
	}
	for _, cur := range []string{req.FromCurrency, req.ToCurrency} {
		if !geo.ValidCurrency(cur) {
			return Transfer{}, fmt.Errorf("%w: unknown currency %q", ErrInvalidTransferRequest, cur)
		}
	}
	from, err := r.resolver.Resolve(req.FromCountry)
	if err != nil {
		return Transfer{}, fmt.Errorf("%w: source: %w", ErrInvalidTransferRequest, err)
	}
	to, err := r.resolver.Resolve(req.ToCountry)
	if err != nil {
		return Transfer{}, fmt.Errorf("%w: destination: %w", ErrInvalidTransferRequest, err)
	}
	fromCC, _ := geo.Normalize(req.FromCountry)
	toCC, _ := geo.Normalize(req.ToCountry)
	return Transfer{
		FromCountry:    fromCC,
		ToCountry:      toCC,
		From:           from,
		To:             to,
		Amount:         req.Amount,
		SourceCurrency: req.FromCurrency,
		TargetCurrency: req.ToCurrency,
	}, nil
}

// Submit validates req, force-completes any in-flight transfer and inserts
// the new transfer as Pending at the head of the registry.
func (r *Registry) Submit(req Request, now time.Time) (uuid.UUID, error) {
	t, err := r.Validate(req)
	if err != nil {
		return uuid.Nil, err
	}
	if r.inFlight != nil {
		r.setStatus(r.inFlight, StatusCompleted, now)
	}

	t.ID = r.newID()
	t.Status = StatusPending
	t.CreatedAt = now
	t.UpdatedAt = now
	r.insert(&t)
	r.notify()
	return t.ID, nil
}

// Seed loads a finished transfer, e.g. history shown at startup. Only
// Completed transfers are accepted: in-flight transfers are started through
// the lifecycle so their timers exist. Amount, countries and currencies are
// checked like a submission, and positions are re-resolved from the countries.
func (r *Registry) Seed(t Transfer) error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("%w: seeded transfer needs an id", ErrInvalidTransferRequest)
	}
	if _, ok := r.byID[t.ID]; ok {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidTransferRequest, t.ID)
	}
	if t.Status != StatusCompleted || t.CompletedAt == nil {
		return fmt.Errorf("%w: only completed transfers can be seeded, got %s", ErrInvalidTransferRequest, t.Status)
	}
	if t.CompletedAt.Before(t.CreatedAt) {
		return fmt.Errorf("%w: completedAt %v before createdAt %v", ErrInvalidTransferRequest, *t.CompletedAt, t.CreatedAt)
	}
	v, err := r.Validate(Request{
		FromCountry:  t.FromCountry,
		ToCountry:    t.ToCountry,
		Amount:       t.Amount,
		FromCurrency: t.SourceCurrency,
		ToCurrency:   t.TargetCurrency,
	})
	if err != nil {
		return err
	}

	v.ID = t.ID
	v.Status = StatusCompleted
	v.CreatedAt = t.CreatedAt
	v.UpdatedAt = t.UpdatedAt
	if v.UpdatedAt.Before(*t.CompletedAt) {
		v.UpdatedAt = *t.CompletedAt
	}
	at := *t.CompletedAt
	v.CompletedAt = &at
	r.insert(&v)
	r.notify()
	return nil
}

func (r *Registry) insert(t *Transfer) {
	r.transfers = append([]*Transfer{t}, r.transfers...)
	r.byID[t.ID] = t
	if t.Status.InFlight() {
		r.inFlight = t
	}
}

// Advance moves a transfer forward to status. Moving sideways or backwards
// fails with ErrIllegalTransition.
func (r *Registry) Advance(id uuid.UUID, status Status, now time.Time) error {
	t, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if status <= t.Status || status > StatusCompleted {
		return fmt.Errorf("%w: %s -> %s for %s", ErrIllegalTransition, t.Status, status, id)
	}
	r.setStatus(t, status, now)
	r.notify()
	return nil
}

func (r *Registry) setStatus(t *Transfer, status Status, now time.Time) {
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	log.Debug().
		Str("transfer_id", t.ID.String()).
		Stringer("from", t.Status).
		Stringer("to", status).
		Msg("transfer status changed")
	t.Status = status
	t.UpdatedAt = now
	if status == StatusCompleted {
		at := now
		t.CompletedAt = &at
		if r.inFlight == t {
			r.inFlight = nil
		}
	}
}

// Get returns a copy of the transfer with the given id.
func (r *Registry) Get(id uuid.UUID) (Transfer, bool) {
	t, ok := r.byID[id]
	if !ok {
		return Transfer{}, false
	}
	return t.clone(), true
}

// InFlight returns the Pending or Active transfer, if any.
func (r *Registry) InFlight() (Transfer, bool) {
	if r.inFlight == nil {
		return Transfer{}, false
	}
	return r.inFlight.clone(), true
}

// All returns copies of every transfer, newest submission first.
func (r *Registry) All() []Transfer {
	out := make([]Transfer, len(r.transfers))
	for i, t := range r.transfers {
		out[i] = t.clone()
	}
	return out
}

func (r *Registry) Len() int { return len(r.transfers) }
