package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

const metersPerMile = 1609.344

// Unit is a linear distance unit.
type Unit string

// Supported units.
const (
	Miles      Unit = "miles"
	Kilometres Unit = "km"
)

// ParseUnit reads a unit name. Empty means miles.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(s) {
	case "", "mi", "mile", "miles":
		return Miles, nil
	case "km", "kms", "kilometre", "kilometres", "kilometer", "kilometers":
		return Kilometres, nil
	}
	return "", fmt.Errorf("unknown distance unit %q", s)
}

// Distance is a length with its unit.
type Distance struct {
	Value float64
	Unit  Unit
}

// NewDistance creates a distance.
func NewDistance(value float64, unit Unit) Distance {
	return Distance{Value: value, Unit: unit}
}

// Miles returns the distance in miles.
func (d Distance) Miles() float64 {
	if d.Unit == Kilometres {
		return d.Value * 1000 / metersPerMile
	}
	return d.Value
}

// FromMiles converts a length in miles into unit u.
func FromMiles(miles float64, u Unit) float64 {
	if u == Kilometres {
		return miles * metersPerMile / 1000
	}
	return miles
}

// Location is a point in degrees.
type Location struct {
	Latitude  float64
	Longitude float64
}

// NewLocation validates and creates a Location.
func NewLocation(lat, lng float64) (Location, error) {
	if !ValidateCoordinates(lat, lng) {
		return Location{}, fmt.Errorf("coordinates out of range: %g,%g", lat, lng)
	}
	return Location{Latitude: lat, Longitude: lng}, nil
}

// ParseLocation reads the "lat|lng" stored form.
func ParseLocation(s string) (Location, error) {
	latStr, lngStr, ok := strings.Cut(s, "|")
	if !ok {
		return Location{}, fmt.Errorf("location %q: missing separator", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Location{}, fmt.Errorf("location %q: latitude: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return Location{}, fmt.Errorf("location %q: longitude: %w", s, err)
	}
	return NewLocation(lat, lng)
}

// String returns the "lat|lng" stored form.
func (l Location) String() string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "|" + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// MilesTo returns the great-circle distance to other in miles.
func (l Location) MilesTo(other Location) float64 {
	return Haversine(l.Latitude, l.Longitude, other.Latitude, other.Longitude) / metersPerMile
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
