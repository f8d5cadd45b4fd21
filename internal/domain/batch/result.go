// Package batch reports per-document outcomes of bulk index writes.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of writing or removing one node.
type Result struct {
	nodeID int
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(nodeID int) Result { return Result{nodeID: nodeID, status: StatusOK} }

// NewError creates a failed batch result.
func NewError(nodeID int, err error) Result {
	return Result{nodeID: nodeID, status: StatusError, err: err}
}

// NodeID returns the node the result is about.
func (r Result) NodeID() int { return r.nodeID }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Failed returns the failed results, in input order.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.status == StatusError {
			out = append(out, r)
		}
	}
	return out
}
