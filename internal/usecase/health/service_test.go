package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockProviderChecker struct {
	err error
}

func (m *mockProviderChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{}, &mockProviderChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"vector_store", "spatial_store", "llm"} {
		if r.Checks[name].Result != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name].Result)
		}
		if r.Checks[name].Message != "" {
			t.Errorf("expected empty message for passing %s, got %q", name, r.Checks[name].Message)
		}
	}
}

func TestCheck_VectorStoreError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockPinger{}, &mockProviderChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["vector_store"].Result != CheckError {
		t.Errorf("expected vector_store %q, got %q", CheckError, r.Checks["vector_store"].Result)
	}
	if r.Checks["vector_store"].Message != "conn refused" {
		t.Errorf("expected failure message, got %q", r.Checks["vector_store"].Message)
	}
	if r.Checks["spatial_store"].Result != CheckOK {
		t.Errorf("expected spatial_store %q, got %q", CheckOK, r.Checks["spatial_store"].Result)
	}
}

func TestCheck_LLMError(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{}, &mockProviderChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["llm"].Result != CheckError {
		t.Errorf("expected llm %q, got %q", CheckError, r.Checks["llm"].Result)
	}
}

func TestCheck_AllFail(t *testing.T) {
	svc := New(
		&mockPinger{err: errors.New("redis down")},
		&mockPinger{err: errors.New("postgres down")},
		&mockProviderChecker{err: errors.New("provider down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q when everything fails, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NilCheckersSkipped(t *testing.T) {
	svc := New(&mockPinger{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 1 {
		t.Fatalf("expected a single check, got %d", len(r.Checks))
	}
	if _, ok := r.Checks["vector_store"]; !ok {
		t.Error("expected vector_store check to be present")
	}
}

func TestCheck_SingleCheckerFailureIsUnhealthy(t *testing.T) {
	// With one configured dependency, its failure means total failure.
	svc := New(&mockPinger{err: errors.New("fail")}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NoCheckers(t *testing.T) {
	svc := New(nil, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q with nothing to check, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 0 {
		t.Errorf("expected no checks, got %d", len(r.Checks))
	}
}
