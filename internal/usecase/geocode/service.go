package geocode

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/domain/geo"
	"github.com/kailas-cloud/geodex/internal/metrics"
)

const (
	defaultAttempts    = 3
	defaultBaseBackoff = 500 * time.Millisecond
	defaultMaxBackoff  = 8 * time.Second
)

// Config holds retry settings for location resolution.
type Config struct {
	Attempts    int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// Resolver resolves place names with retries around a geocoding provider.
type Resolver struct {
	geocoder    Geocoder
	attempts    int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	logger      *zap.Logger
}

// New creates a resolver. Zero config fields fall back to defaults.
func New(g Geocoder, cfg Config, logger *zap.Logger) *Resolver {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = defaultAttempts
	}
	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = defaultBaseBackoff
	}
	maxBackoff := cfg.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxBackoff
	}

	return &Resolver{
		geocoder:    g,
		attempts:    attempts,
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
		logger:      logger,
	}
}

// Resolve geocodes a place name. Transient provider failures are retried with
// exponential backoff and jitter; a definitive no-match
// (domain.ErrLocationNotFound) and other permanent failures return immediately.
func (r *Resolver) Resolve(ctx context.Context, place string) (geo.BoundingBox, error) {
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			if err := r.wait(ctx, attempt-1); err != nil {
				return geo.BoundingBox{}, fmt.Errorf("geocode %q: %w", place, err)
			}
		}

		box, err := r.geocoder.Geocode(ctx, place)
		if err == nil {
			metrics.GeocodeRequestsTotal.WithLabelValues("success").Inc()
			return box, nil
		}

		if errors.Is(err, domain.ErrLocationNotFound) {
			metrics.GeocodeRequestsTotal.WithLabelValues("not_found").Inc()
			return geo.BoundingBox{}, err
		}
		if !errors.Is(err, domain.ErrGeocoderUnavailable) {
			metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
			return geo.BoundingBox{}, err
		}

		lastErr = err
		r.logger.Warn("Geocoding attempt failed",
			zap.String("place", place),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.attempts),
			zap.Error(err))
	}

	metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
	return geo.BoundingBox{}, fmt.Errorf("geocode %q after %d attempts: %w", place, r.attempts, lastErr)
}

// wait sleeps for an exponentially growing, jittered interval or until the
// context is done.
func (r *Resolver) wait(ctx context.Context, retry int) error {
	backoff := r.baseBackoff << (retry - 1)
	if backoff > r.maxBackoff {
		backoff = r.maxBackoff
	}
	// Up to +50% jitter to avoid synchronized retries against the provider.
	backoff += time.Duration(rand.Int63n(int64(backoff)/2 + 1))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}
