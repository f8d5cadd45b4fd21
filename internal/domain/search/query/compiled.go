package query

import (
	"github.com/kailas-cloud/lookdex/internal/domain/geo"
	"github.com/kailas-cloud/lookdex/internal/domain/search/clause"
)

// Compiled is the executable form of a Query. It is immutable and may be shared between
// queries with equal fingerprints.
type Compiled struct {
	fingerprint Fingerprint

	// Clause is the engine-neutral boolean tree.
	Clause clause.Node
	// Prepared is Clause rendered by the active driver.
	Prepared clause.Prepared
	// Geo is the radius filter applied after the engine query, nil without a location.
	Geo  *geo.Filter
	Sort SortOn
}

// NewCompiled creates a compiled query for fingerprint fp.
func NewCompiled(fp Fingerprint, node clause.Node, prepared clause.Prepared, filter *geo.Filter, sort SortOn) *Compiled {
	return &Compiled{
		fingerprint: fp,
		Clause:      node,
		Prepared:    prepared,
		Geo:         filter,
		Sort:        sort.Normalize(),
	}
}

// Fingerprint returns the fingerprint of the query values this plan was compiled from.
func (c *Compiled) Fingerprint() Fingerprint { return c.fingerprint }

// Matches reports whether this plan was compiled from a query whose values encode to fp.
func (c *Compiled) Matches(fp Fingerprint) bool { return c.fingerprint.Equal(fp) }
