package lookdex

import (
	"errors"
	"fmt"

	dombatch "github.com/kailas-cloud/lookdex/internal/domain/batch"
)

func batchResults(op string, results []dombatch.Result) ([]BatchResult, error) {
	out := make([]BatchResult, len(results))
	var errs []error
	for i, r := range results {
		out[i] = BatchResult{NodeID: r.NodeID(), Err: r.Err()}
		if r.Err() != nil {
			errs = append(errs, fmt.Errorf("node %d: %w", r.NodeID(), r.Err()))
		}
	}
	if len(errs) > 0 {
		return out, fmt.Errorf("%s: %d of %d failed: %w", op, len(errs), len(results), errors.Join(errs...))
	}
	return out, nil
}
