// Package ranking holds the ordered hit list produced by executing a compiled query.
package ranking

// Hit is one ranked document.
type Hit struct {
	ID    string
	Score float64
}

// Ranking is the capped, ordered hit list of a query and its exact total.
type Ranking struct {
	Total     int
	Hits      []Hit
	distances map[string]float64
}

// New creates a ranking without distances.
func New(total int, hits []Hit) *Ranking {
	return &Ranking{Total: total, Hits: hits}
}

// NewWithDistances creates a ranking of radius survivors. distances is keyed by document id
// and holds values in the query's unit.
func NewWithDistances(total int, hits []Hit, distances map[string]float64) *Ranking {
	if distances == nil {
		distances = map[string]float64{}
	}
	return &Ranking{Total: total, Hits: hits, distances: distances}
}

// Distance returns the distance of a radius survivor.
func (r *Ranking) Distance(id string) (float64, bool) {
	d, ok := r.distances[id]
	return d, ok
}

// HasDistances reports whether the ranking came from a radius query.
func (r *Ranking) HasDistances() bool { return r.distances != nil }

// IDs returns the hit ids in rank order.
func (r *Ranking) IDs() []string {
	ids := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.ID
	}
	return ids
}
