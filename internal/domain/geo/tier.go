package geo

import "math"

// Tier bounds. Tier t divides the globe into cells of 180/2^t degrees.
const (
	MinTier = 2
	MaxTier = 15
)

const milesPerDegree = math.Pi / 180 * EarthRadiusMeters / metersPerMile

// CellDegrees returns the cell edge of tier t in degrees.
func CellDegrees(t int) float64 {
	return 180 / float64(uint(1)<<uint(t))
}

// BestFitTier returns the finest tier whose cells are at least as tall as radiusMiles,
// so a radius box touches a handful of cells per axis.
func BestFitTier(radiusMiles float64) int {
	for t := MaxTier; t > MinTier; t-- {
		if CellDegrees(t)*milesPerDegree >= radiusMiles {
			return t
		}
	}
	return MinTier
}

// Span is an inclusive interval in degrees.
type Span struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in the span.
func (s Span) Contains(v float64) bool { return v >= s.Min && v <= s.Max }

// Box is the grid-snapped candidate region around a circle. Longitude is one span,
// or two when the region crosses the antimeridian.
type Box struct {
	Lat Span
	Lng []Span
}

// Contains reports whether loc falls inside the box.
func (b Box) Contains(loc Location) bool {
	if !b.Lat.Contains(loc.Latitude) {
		return false
	}
	for _, s := range b.Lng {
		if s.Contains(loc.Longitude) {
			return true
		}
	}
	return false
}

// Filter is a radius constraint around a center point.
type Filter struct {
	Center      Location
	RadiusMiles float64
	Unit        Unit // unit for reported distances
	Tier        int
	Box         Box
}

// NewFilter plans the tiered candidate box for a circle of radiusMiles around center.
func NewFilter(center Location, radiusMiles float64, unit Unit) *Filter {
	if unit == "" {
		unit = Miles
	}
	tier := BestFitTier(radiusMiles)
	return &Filter{
		Center:      center,
		RadiusMiles: radiusMiles,
		Unit:        unit,
		Tier:        tier,
		Box:         boundingBox(center, radiusMiles, CellDegrees(tier)),
	}
}

// Match returns the distance to loc in the filter's unit and whether loc lies within the radius.
func (f *Filter) Match(loc Location) (float64, bool) {
	miles := f.Center.MilesTo(loc)
	if miles > f.RadiusMiles {
		return 0, false
	}
	return FromMiles(miles, f.Unit), true
}

func boundingBox(c Location, radiusMiles, cell float64) Box {
	d := radiusMiles / milesPerDegree // angular radius, degrees
	minLat := snapDown(c.Latitude-d, cell)
	maxLat := snapUp(c.Latitude+d, cell)

	box := Box{Lat: Span{Min: math.Max(minLat, -90), Max: math.Min(maxLat, 90)}}

	// a pole inside the circle or a circle wider than the parallel covers every longitude
	if c.Latitude+d >= 90 || c.Latitude-d <= -90 {
		box.Lng = []Span{{Min: -180, Max: 180}}
		return box
	}
	sinRatio := math.Sin(d*math.Pi/180) / math.Cos(c.Latitude*math.Pi/180)
	if sinRatio >= 1 {
		box.Lng = []Span{{Min: -180, Max: 180}}
		return box
	}
	dLng := math.Asin(sinRatio) * 180 / math.Pi

	minLng := snapDown(c.Longitude-dLng, cell)
	maxLng := snapUp(c.Longitude+dLng, cell)
	switch {
	case maxLng-minLng >= 360:
		box.Lng = []Span{{Min: -180, Max: 180}}
	case minLng < -180:
		box.Lng = []Span{{Min: minLng + 360, Max: 180}, {Min: -180, Max: maxLng}}
	case maxLng > 180:
		box.Lng = []Span{{Min: minLng, Max: 180}, {Min: -180, Max: maxLng - 360}}
	default:
		box.Lng = []Span{{Min: minLng, Max: maxLng}}
	}
	return box
}

func snapDown(v, cell float64) float64 { return math.Floor(v/cell) * cell }

func snapUp(v, cell float64) float64 { return math.Ceil(v/cell) * cell }
