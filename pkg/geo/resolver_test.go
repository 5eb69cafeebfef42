package geo

import (
	"errors"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	tests := []struct {
		code string
		want LngLat
	}{
		{"US", LngLat{-95.71, 37.09}},
		{"usa", LngLat{-95.71, 37.09}},
		{"GB", LngLat{-3.44, 55.38}},
		{"JP", LngLat{138.25, 36.20}},
	}
	for _, tt := range tests {
		got, err := r.Resolve(tt.code)
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", tt.code, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %v; want %v", tt.code, got, tt.want)
		}
	}

	for _, code := range []string{"", "QQ", "Atlantis"} {
		if _, err := r.Resolve(code); !errors.Is(err, ErrUnknownCountry) {
			t.Errorf("Resolve(%q) error = %v; want ErrUnknownCountry", code, err)
		}
	}
}

func TestLoadResolverRejectsBadRows(t *testing.T) {
	if _, err := LoadResolver(strings.NewReader("alpha2,lat,lng\nQQ,1,2\n")); !errors.Is(err, ErrUnknownCountry) {
		t.Errorf("unknown code error = %v; want ErrUnknownCountry", err)
	}
	if _, err := LoadResolver(strings.NewReader("alpha2,lat,lng\nFR,north,2\n")); err == nil {
		t.Error("LoadResolver accepted a non-numeric latitude")
	}
	r, err := LoadResolver(strings.NewReader("alpha2,lat,lng\nFR,46.23,2.21\n"))
	if err != nil {
		t.Fatal(err)
	}
	if codes := r.Codes(); len(codes) != 1 || codes[0] != "FR" {
		t.Errorf("Codes() = %v; want [FR]", codes)
	}
}

func TestValidCurrency(t *testing.T) {
	for _, code := range []string{"USD", "GBP", "EUR", "JPY"} {
		if !ValidCurrency(code) {
			t.Errorf("ValidCurrency(%q) = false; want true", code)
		}
	}
	for _, code := range []string{"", "XYZQ", "dollarz"} {
		if ValidCurrency(code) {
			t.Errorf("ValidCurrency(%q) = true; want false", code)
		}
	}
}
