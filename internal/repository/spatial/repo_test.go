package spatial

import (
	"context"
	"testing"

	"github.com/kailas-cloud/geodex/internal/db"
	"github.com/kailas-cloud/geodex/internal/domain/geo"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	intersectingFn func(ctx context.Context, west, south, east, north float64) ([]string, error)
	upsertFn       func(ctx context.Context, datasetID, title, wkt string) error
	ensureFn       func(ctx context.Context) error
}

func (m *mockStore) IntersectingIDs(ctx context.Context, west, south, east, north float64) ([]string, error) {
	if m.intersectingFn != nil {
		return m.intersectingFn(ctx, west, south, east, north)
	}
	return nil, nil
}

func (m *mockStore) UpsertGeometry(ctx context.Context, datasetID, title, wkt string) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, datasetID, title, wkt)
	}
	return nil
}

func (m *mockStore) EnsureSchema(ctx context.Context) error {
	if m.ensureFn != nil {
		return m.ensureFn(ctx)
	}
	return nil
}

func TestIntersectingIDs_PassesEnvelopeCorners(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)

	var gotWest, gotSouth, gotEast, gotNorth float64
	ms.intersectingFn = func(_ context.Context, west, south, east, north float64) ([]string, error) {
		gotWest, gotSouth, gotEast, gotNorth = west, south, east, north
		return []string{"ds-1"}, nil
	}

	box, err := geo.NewBoundingBox(45.0, 46.5, 15.5, 16.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids, err := repo.IntersectingIDs(context.Background(), box)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "ds-1" {
		t.Errorf("unexpected ids: %v", ids)
	}
	if gotWest != 15.5 || gotSouth != 45.0 || gotEast != 16.5 || gotNorth != 46.5 {
		t.Errorf("corner order mismatch: west=%v south=%v east=%v north=%v",
			gotWest, gotSouth, gotEast, gotNorth)
	}
}

func TestIntersectingIDs_Error(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)

	ms.intersectingFn = func(_ context.Context, _, _, _, _ float64) ([]string, error) {
		return nil, &db.Error{Op: db.OpPgQuery, Err: context.DeadlineExceeded}
	}

	box, _ := geo.NewBoundingBox(45.0, 46.5, 15.5, 16.5)
	if _, err := repo.IntersectingIDs(context.Background(), box); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpsertExtent(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)

	var gotID, gotWKT string
	ms.upsertFn = func(_ context.Context, datasetID, _, wkt string) error {
		gotID, gotWKT = datasetID, wkt
		return nil
	}

	err := repo.UpsertExtent(context.Background(), "ds-1", "Rivers",
		"POLYGON((15.5 45 ,16.5 45,16.5 46.5,15.5 46.5,15.5 45))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "ds-1" || gotWKT == "" {
		t.Errorf("unexpected upsert args: %s %s", gotID, gotWKT)
	}
}
