package geocode

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/domain/geo"
	"github.com/kailas-cloud/geodex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, location string) (geo.BoundingBox, error)
	calls     int
}

func (m *mockGeocoder) Geocode(ctx context.Context, location string) (geo.BoundingBox, error) {
	m.calls++
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, location)
	}
	return geo.BoundingBox{}, nil
}

func fastConfig(attempts int) Config {
	return Config{Attempts: attempts, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestResolve_Success(t *testing.T) {
	want, err := geo.NewBoundingBox(45.7, 45.9, 15.8, 16.1)
	if err != nil {
		t.Fatalf("build box: %v", err)
	}

	mg := &mockGeocoder{
		geocodeFn: func(_ context.Context, location string) (geo.BoundingBox, error) {
			if location != "Zagreb" {
				t.Errorf("location = %q", location)
			}
			return want, nil
		},
	}
	r := New(mg, fastConfig(3), zap.NewNop())

	box, err := r.Resolve(context.Background(), "Zagreb")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if box != want {
		t.Errorf("box = %+v, expected %+v", box, want)
	}
	if mg.calls != 1 {
		t.Errorf("expected 1 call, got %d", mg.calls)
	}
}

func TestResolve_NotFoundIsPermanent(t *testing.T) {
	mg := &mockGeocoder{
		geocodeFn: func(_ context.Context, _ string) (geo.BoundingBox, error) {
			return geo.BoundingBox{}, domain.ErrLocationNotFound
		},
	}
	r := New(mg, fastConfig(3), zap.NewNop())

	_, err := r.Resolve(context.Background(), "Atlantis")
	if !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
	if mg.calls != 1 {
		t.Errorf("not-found must not retry, got %d calls", mg.calls)
	}
}

func TestResolve_TransientRetriesThenSucceeds(t *testing.T) {
	want, _ := geo.NewBoundingBox(45.0, 46.0, 15.0, 16.0)

	mg := &mockGeocoder{}
	mg.geocodeFn = func(_ context.Context, _ string) (geo.BoundingBox, error) {
		if mg.calls < 3 {
			return geo.BoundingBox{}, domain.ErrGeocoderUnavailable
		}
		return want, nil
	}
	r := New(mg, fastConfig(3), zap.NewNop())

	box, err := r.Resolve(context.Background(), "Zagreb")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if box != want {
		t.Errorf("box = %+v", box)
	}
	if mg.calls != 3 {
		t.Errorf("expected 3 calls, got %d", mg.calls)
	}
}

func TestResolve_ExhaustedRetries(t *testing.T) {
	mg := &mockGeocoder{
		geocodeFn: func(_ context.Context, _ string) (geo.BoundingBox, error) {
			return geo.BoundingBox{}, domain.ErrGeocoderUnavailable
		},
	}
	r := New(mg, fastConfig(3), zap.NewNop())

	_, err := r.Resolve(context.Background(), "Zagreb")
	if !errors.Is(err, domain.ErrGeocoderUnavailable) {
		t.Fatalf("expected wrapped ErrGeocoderUnavailable, got %v", err)
	}
	if mg.calls != 3 {
		t.Errorf("expected 3 calls, got %d", mg.calls)
	}
}

func TestResolve_OtherErrorsArePermanent(t *testing.T) {
	mg := &mockGeocoder{
		geocodeFn: func(_ context.Context, _ string) (geo.BoundingBox, error) {
			return geo.BoundingBox{}, errors.New("malformed bounding box")
		},
	}
	r := New(mg, fastConfig(3), zap.NewNop())

	if _, err := r.Resolve(context.Background(), "Zagreb"); err == nil {
		t.Fatal("expected error")
	}
	if mg.calls != 1 {
		t.Errorf("unclassified errors must not retry, got %d calls", mg.calls)
	}
}

func TestResolve_ContextCancelledDuringBackoff(t *testing.T) {
	mg := &mockGeocoder{
		geocodeFn: func(_ context.Context, _ string) (geo.BoundingBox, error) {
			return geo.BoundingBox{}, domain.ErrGeocoderUnavailable
		},
	}
	r := New(mg, Config{Attempts: 5, BaseBackoff: time.Hour, MaxBackoff: time.Hour}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.Resolve(ctx, "Zagreb")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mg.calls != 1 {
		t.Errorf("expected 1 call before cancelled backoff, got %d", mg.calls)
	}
}

func TestNew_Defaults(t *testing.T) {
	r := New(&mockGeocoder{}, Config{}, zap.NewNop())
	if r.attempts != defaultAttempts {
		t.Errorf("attempts = %d, expected %d", r.attempts, defaultAttempts)
	}
	if r.baseBackoff != defaultBaseBackoff || r.maxBackoff != defaultMaxBackoff {
		t.Errorf("backoff = %v/%v", r.baseBackoff, r.maxBackoff)
	}
}
