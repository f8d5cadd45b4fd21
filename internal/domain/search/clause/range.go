package clause

import "fmt"

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRange validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRange(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// Between is an inclusive range, the common case for dates and geo boxes.
func Between(lo, hi float64) Range {
	return Range{gte: &lo, lte: &hi}
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Min returns the lower bound and whether it is inclusive.
func (r Range) Min() (*float64, bool) {
	if r.gte != nil {
		return r.gte, true
	}
	return r.gt, false
}

// Max returns the upper bound and whether it is inclusive.
func (r Range) Max() (*float64, bool) {
	if r.lte != nil {
		return r.lte, true
	}
	return r.lt, false
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	if r.gt != nil && v <= *r.gt {
		return false
	}
	if r.gte != nil && v < *r.gte {
		return false
	}
	if r.lt != nil && v >= *r.lt {
		return false
	}
	if r.lte != nil && v > *r.lte {
		return false
	}
	return true
}
