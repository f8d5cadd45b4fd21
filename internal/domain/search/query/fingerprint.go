package query

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/item"
	"github.com/kailas-cloud/lookdex/internal/domain/tag"
)

// Fingerprint is a canonical encoding of every slot of a Query. Two queries with equal
// fingerprints compile to the same plan. nil and empty slices encode differently and
// slice order is significant.
type Fingerprint []byte

// Equal reports whether two fingerprints are identical.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f != nil && other != nil && bytes.Equal(f, other)
}

// Sum returns the 64-bit xxhash of the fingerprint.
func (f Fingerprint) Sum() uint64 { return xxhash.Sum64(f) }

// slot markers
const (
	absent  byte = 0
	present byte = 1
)

// Fingerprint encodes the current slot values.
func (q *Query) Fingerprint() Fingerprint {
	var e encoder

	if n := q.NodeQuery; e.presence(n != nil) {
		e.putStrings(publishedTypes(n.Types))
		e.putInt(int64(n.Detached))
		e.putStrings(n.Cultures)
		e.putStrings(n.Aliases)
		e.putStrings(n.Keys)
		e.putInts(n.NotIDs)
		e.putStrings(n.NotKeys)
	}
	if t := q.TextQuery; e.presence(t != nil) {
		e.putString(t.SearchText)
		e.putFloat(t.Fuzziness)
		e.putBool(t.GetText)
		e.putInt(int64(t.HighlightFragments))
		e.putString(t.HighlightSeparator)
	}
	if t := q.TagQuery; e.presence(t != nil) {
		e.putTags(t.All)
		e.putTags(t.Any)
		e.putTags(t.Not)
		e.putStrings(t.GetFacets)
		e.putBool(t.GetTags)
	}
	if d := q.DateQuery; e.presence(d != nil) {
		e.putTime(d.After)
		e.putTime(d.Before)
	}
	if n := q.NameQuery; e.presence(n != nil) {
		e.putString(n.Is)
		e.putString(n.StartsWith)
		e.putString(n.EndsWith)
		e.putString(n.Contains)
	}
	if l := q.LocationQuery; e.presence(l != nil) {
		e.putLocation(l.Location)
		e.putDistance(l.MaxDistance)
	}
	e.putString(q.RawQuery)
	e.putString(string(q.SortOn))

	return Fingerprint(e.buf)
}

type encoder struct {
	buf []byte
}

func (e *encoder) presence(ok bool) bool {
	if ok {
		e.buf = append(e.buf, present)
	} else {
		e.buf = append(e.buf, absent)
	}
	return ok
}

func (e *encoder) putBool(v bool) { e.presence(v) }

func (e *encoder) putInt(v int64) { e.buf = binary.AppendVarint(e.buf, v) }

func (e *encoder) putFloat(v float64) { e.buf = binary.BigEndian.AppendUint64(e.buf, math.Float64bits(v)) }

func (e *encoder) putString(s string) {
	e.buf = binary.AppendUvarint(e.buf, uint64(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) putStrings(ss []string) {
	if !e.presence(ss != nil) {
		return
	}
	e.buf = binary.AppendUvarint(e.buf, uint64(len(ss)))
	for _, s := range ss {
		e.putString(s)
	}
}

func (e *encoder) putInts(vs []int) {
	if !e.presence(vs != nil) {
		return
	}
	e.buf = binary.AppendUvarint(e.buf, uint64(len(vs)))
	for _, v := range vs {
		e.putInt(int64(v))
	}
}

func (e *encoder) putTags(ts []tag.Tag) {
	if !e.presence(ts != nil) {
		return
	}
	e.buf = binary.AppendUvarint(e.buf, uint64(len(ts)))
	for _, t := range ts {
		e.putString(t.Group)
		e.putString(t.Name)
	}
}

func (e *encoder) putTime(t *time.Time) {
	if !e.presence(t != nil) {
		return
	}
	e.putInt(t.UnixNano())
}

func (e *encoder) putLocation(l *geo.Location) {
	if !e.presence(l != nil) {
		return
	}
	e.putFloat(l.Latitude)
	e.putFloat(l.Longitude)
}

func (e *encoder) putDistance(d *geo.Distance) {
	if !e.presence(d != nil) {
		return
	}
	e.putFloat(d.Value)
	e.putString(string(d.Unit))
}

func publishedTypes(ts []item.PublishedType) []string {
	if ts == nil {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}
