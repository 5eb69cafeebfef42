package transfer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sudorandom/transfer-map/pkg/geo"
	"github.com/sudorandom/transfer-map/pkg/tasks"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := geo.NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return NewRegistry(r)
}

func newTestLifecycle(t *testing.T) (*Lifecycle, *tasks.Scheduler) {
	t.Helper()
	sched := tasks.NewScheduler(epoch)
	return NewLifecycle(newTestRegistry(t), sched, DefaultTimings()), sched
}

func request(from, to string, amount int64) Request {
	return Request{
		FromCountry:  from,
		ToCountry:    to,
		Amount:       decimal.NewFromInt(amount),
		FromCurrency: "USD",
		ToCurrency:   "GBP",
	}
}

// checkInvariants asserts the registry-wide rules that must hold after every step.
func checkInvariants(t *testing.T, r *Registry) {
	t.Helper()
	inFlight := 0
	for _, tr := range r.All() {
		if tr.Status.InFlight() {
			inFlight++
		}
		if (tr.Status == StatusCompleted) != (tr.CompletedAt != nil) {
			t.Errorf("transfer %s: status %s with completedAt %v", tr.ID, tr.Status, tr.CompletedAt)
		}
		if tr.UpdatedAt.Before(tr.CreatedAt) {
			t.Errorf("transfer %s: updatedAt %v before createdAt %v", tr.ID, tr.UpdatedAt, tr.CreatedAt)
		}
	}
	if inFlight > 1 {
		t.Errorf("%d transfers in flight; want at most 1", inFlight)
	}
}
