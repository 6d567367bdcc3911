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
)

// Check is one dependency probe outcome.
type Check struct {
	Result  CheckResult
	Message string
}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]Check
}

// Service coordinates health checks over the service's dependencies: the
// vector store, the spatial store, and the LLM provider.
type Service struct {
	vector  Pinger
	spatial Pinger
	llm     ProviderChecker
}

// New creates a Service. Any checker can be nil; its check is then skipped.
// Callers must pass a literal nil, not a typed nil pointer in the interface.
func New(vector, spatial Pinger, llm ProviderChecker) *Service {
	return &Service{vector: vector, spatial: spatial, llm: llm}
}

// Check runs all configured dependency probes.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]Check)

	if s.vector != nil {
		checks["vector_store"] = probe(s.vector.Ping(ctx))
	}
	if s.spatial != nil {
		checks["spatial_store"] = probe(s.spatial.Ping(ctx))
	}
	if s.llm != nil {
		checks["llm"] = probe(s.llm.HealthCheck(ctx))
	}

	return Report{Status: overall(checks), Checks: checks}
}

func probe(err error) Check {
	if err != nil {
		return Check{Result: CheckError, Message: err.Error()}
	}
	return Check{Result: CheckOK}
}

// overall is ok when every check passes, error when none do, degraded in
// between.
func overall(checks map[string]Check) Status {
	if len(checks) == 0 {
		return Healthy
	}

	failed := 0
	for _, c := range checks {
		if c.Result == CheckError {
			failed++
		}
	}

	switch failed {
	case 0:
		return Healthy
	case len(checks):
		return Unhealthy
	default:
		return Degraded
	}
}
