package transfer

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SortedHistory orders transfers by status priority (active, pending,
// completed), most recently updated first within a status.
func SortedHistory(ts []Transfer) []Transfer {
	out := append([]Transfer(nil), ts...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Status.Priority(), out[j].Status.Priority()
		if pi != pj {
			return pi < pj
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Animating selects the transfer the map animates: the first Active one,
// otherwise the first Pending one.
func Animating(ts []Transfer) (Transfer, bool) {
	for _, want := range []Status{StatusActive, StatusPending} {
		for _, t := range ts {
			if t.Status == want {
				return t, true
			}
		}
	}
	return Transfer{}, false
}

// CountryCount is the number of transfers a country took part in.
type CountryCount struct {
	Country string
	Count   int
}

type Aggregates struct {
	CompletedTotal decimal.Decimal
	PendingTotal   decimal.Decimal
	// CountryCounts counts each transfer once for its source and once for its destination.
	CountryCounts map[string]int
	// Highlighted lists the countries of every transfer that is not completed, sorted.
	Highlighted []string
}

// Summarize computes the aggregate views over a registry snapshot.
func Summarize(ts []Transfer) Aggregates {
	agg := Aggregates{
		CompletedTotal: decimal.Zero,
		PendingTotal:   decimal.Zero,
		CountryCounts:  make(map[string]int),
	}
	highlighted := make(map[string]struct{})
	for _, t := range ts {
		switch t.Status {
		case StatusCompleted:
			agg.CompletedTotal = agg.CompletedTotal.Add(t.Amount)
		case StatusPending:
			agg.PendingTotal = agg.PendingTotal.Add(t.Amount)
		}
		agg.CountryCounts[t.FromCountry]++
		agg.CountryCounts[t.ToCountry]++
		if t.Status != StatusCompleted {
			highlighted[t.FromCountry] = struct{}{}
			highlighted[t.ToCountry] = struct{}{}
		}
	}
	for cc := range highlighted {
		agg.Highlighted = append(agg.Highlighted, cc)
	}
	sort.Strings(agg.Highlighted)
	return agg
}

// TopCountries returns the n busiest countries, ties broken by code.
func (a Aggregates) TopCountries(n int) []CountryCount {
	out := make([]CountryCount, 0, len(a.CountryCounts))
	for cc, c := range a.CountryCounts {
		out = append(out, CountryCount{Country: cc, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
