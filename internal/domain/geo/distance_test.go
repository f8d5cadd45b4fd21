package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	if a > b {
		return a-b < eps
	}
	return b-a < eps
}

func TestHaversine_SamePoint(t *testing.T) {
	d := Haversine(40.7128, -74.0060, 40.7128, -74.0060)
	if d != 0 {
		t.Fatalf("want 0, got %f", d)
	}
}

func TestHaversine_NewYork_London(t *testing.T) {
	// NYC to London: ~5,570 km
	d := Haversine(40.7128, -74.0060, 51.5074, -0.1278)
	expected := 5_570_000.0
	if !almost(d, expected, 30_000) { // 30km tolerance (spherical approx)
		t.Fatalf("want ~%.0fm, got %.0fm", expected, d)
	}
}

func TestHaversine_Antipodal(t *testing.T) {
	d := Haversine(0, 0, 0, 180)
	expected := math.Pi * EarthRadiusMeters
	if !almost(d, expected, 1) {
		t.Fatalf("want ~%.0fm, got %.0fm", expected, d)
	}
}

func TestMilesTo(t *testing.T) {
	london := Location{Latitude: 51.5074, Longitude: -0.1278}
	paris := Location{Latitude: 48.8566, Longitude: 2.3522}
	// ~214 miles
	if d := london.MilesTo(paris); !almost(d, 214, 3) {
		t.Fatalf("want ~214mi, got %.1f", d)
	}
}

func TestDistance_Miles(t *testing.T) {
	if got := NewDistance(10, Miles).Miles(); got != 10 {
		t.Errorf("10mi = %f", got)
	}
	if got := NewDistance(1.609344, Kilometres).Miles(); !almost(got, 1, 1e-9) {
		t.Errorf("1.609344km = %f mi", got)
	}
	if got := FromMiles(1, Kilometres); !almost(got, 1.609344, 1e-9) {
		t.Errorf("1mi = %f km", got)
	}
	if got := FromMiles(3, Miles); got != 3 {
		t.Errorf("3mi = %f mi", got)
	}
}

func TestParseUnit(t *testing.T) {
	tests := map[string]Unit{"": Miles, "Miles": Miles, "km": Kilometres, "kilometres": Kilometres}
	for in, want := range tests {
		got, err := ParseUnit(in)
		if err != nil || got != want {
			t.Errorf("ParseUnit(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseUnit("furlongs"); err == nil {
		t.Error("expected error for unknown unit")
	}
}

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("51.5|-0.12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Latitude != 51.5 || loc.Longitude != -0.12 {
		t.Errorf("got %+v", loc)
	}
	if loc.String() != "51.5|-0.12" {
		t.Errorf("String() = %q", loc.String())
	}
}

func TestParseLocation_Invalid(t *testing.T) {
	for _, s := range []string{"", "51.5", "x|1", "1|y", "91|0", "0|181"} {
		if _, err := ParseLocation(s); err == nil {
			t.Errorf("ParseLocation(%q) expected error", s)
		}
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.1, 0, false},
		{0, -180.1, false},
	}
	for _, tc := range tests {
		if got := ValidateCoordinates(tc.lat, tc.lon); got != tc.want {
			t.Errorf("ValidateCoordinates(%v,%v) = %v", tc.lat, tc.lon, got)
		}
	}
}
