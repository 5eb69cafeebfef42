// Package transfer models money transfers moving between countries: the
// registry that owns them, the views derived from it, and the lifecycle that
// walks each transfer from Pending through Active to Completed.
package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sudorandom/transfer-map/pkg/geo"
)

// Status of a transfer. Values only ever increase.
type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusActive
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Priority orders statuses for the history view: active first, then pending,
// then completed.
func (s Status) Priority() int {
	switch s {
	case StatusActive:
		return 0
	case StatusPending:
		return 1
	case StatusCompleted:
		return 2
	}
	return 3
}

// InFlight reports whether the status occupies the single in-flight slot.
func (s Status) InFlight() bool {
	return s == StatusPending || s == StatusActive
}

// Request is the submission record for a new transfer.
type Request struct {
	FromCountry  string          `json:"fromCountry"`
	ToCountry    string          `json:"toCountry"`
	Amount       decimal.Decimal `json:"amount"`
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
}

type Transfer struct {
	ID             uuid.UUID       `json:"id"`
	FromCountry    string          `json:"fromCountry"`
	ToCountry      string          `json:"toCountry"`
	From           geo.LngLat      `json:"from"`
	To             geo.LngLat      `json:"to"`
	Amount         decimal.Decimal `json:"amount"`
	SourceCurrency string          `json:"sourceCurrency"`
	TargetCurrency string          `json:"targetCurrency"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
}

// Corridor is the country pair a transfer travels along.
func (t Transfer) Corridor() string {
	return t.FromCountry + "-" + t.ToCountry
}

func (t Transfer) clone() Transfer {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}
