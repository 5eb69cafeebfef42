package geo

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/biter777/countries"
)

//go:embed data/countries.csv
var countryCentroidsCSV []byte

// ErrUnknownCountry is returned when a country code has no known position.
var ErrUnknownCountry = errors.New("unknown country")

// Resolver maps country codes to a representative position.
type Resolver struct {
	positions map[string]LngLat
}

// NewResolver loads the embedded centroid table.
func NewResolver() (*Resolver, error) {
	return LoadResolver(bytes.NewReader(countryCentroidsCSV))
}

// LoadResolver reads an alpha2,lat,lng table with a header row.
func LoadResolver(r io.Reader) (*Resolver, error) {
	res := &Resolver{positions: make(map[string]LngLat)}
	csvReader := csv.NewReader(r)
	if _, err := csvReader.Read(); err != nil {
		return nil, fmt.Errorf("reading centroid header: %w", err)
	}
	for {
		rec, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading centroid table: %w", err)
		}
		cc := countries.ByName(rec[0])
		if cc == countries.Unknown {
			return nil, fmt.Errorf("%w: %q in centroid table", ErrUnknownCountry, rec[0])
		}
		lat, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("latitude for %s: %w", rec[0], err)
		}
		lng, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("longitude for %s: %w", rec[0], err)
		}
		res.positions[cc.Alpha2()] = LngLat{Lng: lng, Lat: lat}
	}
	return res, nil
}

// Normalize turns an alpha-2, alpha-3 or English country name into its alpha-2 code.
func Normalize(code string) (string, bool) {
	cc := countries.ByName(code)
	if cc == countries.Unknown || !cc.IsValid() {
		return "", false
	}
	return cc.Alpha2(), true
}

// Resolve returns the position for a country code in any form Normalize accepts.
func (r *Resolver) Resolve(code string) (LngLat, error) {
	alpha2, ok := Normalize(code)
	if !ok {
		return LngLat{}, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}
	p, ok := r.positions[alpha2]
	if !ok {
		return LngLat{}, fmt.Errorf("%w: no position for %s", ErrUnknownCountry, alpha2)
	}
	return p, nil
}

// Codes lists the resolvable alpha-2 codes in sorted order.
func (r *Resolver) Codes() []string {
	codes := make([]string, 0, len(r.positions))
	for cc := range r.positions {
		codes = append(codes, cc)
	}
	sort.Strings(codes)
	return codes
}

// ValidCurrency reports whether code is a known ISO 4217 alphabetic code.
func ValidCurrency(code string) bool {
	cur := countries.CurrencyCodeByName(code)
	return cur != countries.CurrencyUnknown && cur.IsValid()
}

// CountryName is the display name for an alpha-2 code, falling back to the code.
func CountryName(code string) string {
	name := countries.ByName(code).String()
	if name == "Unknown" || name == "" {
		return code
	}
	return name
}
