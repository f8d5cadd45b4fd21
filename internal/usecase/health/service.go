package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates the engine is up but the index is absent.
	CheckMissing CheckResult = "missing"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	index IndexChecker
	name  string
}

// New creates a Service. index can be nil, which skips the index check.
func New(db DBPinger, index IndexChecker, indexName string) *Service {
	return &Service{db: db, index: index, name: indexName}
}

// Check runs health checks against all components. An unreachable engine is Unhealthy;
// a reachable engine without the index is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["engine"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["engine"] = CheckOK

	status := Healthy
	if s.index != nil {
		exists, err := s.index.IndexExists(ctx, s.name)
		switch {
		case err != nil:
			checks["index"] = CheckError
			status = Degraded
		case !exists:
			checks["index"] = CheckMissing
			status = Degraded
		default:
			checks["index"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
