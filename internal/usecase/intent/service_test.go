package intent

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain"
)

type mockCompleter struct {
	completeFn func(ctx context.Context, req domain.CompletionRequest, schemaName string, out any) (domain.CompletionResult, error)
	calls      int
}

func (m *mockCompleter) CompleteStructured(
	ctx context.Context, req domain.CompletionRequest, schemaName string, out any,
) (domain.CompletionResult, error) {
	m.calls++
	if m.completeFn != nil {
		return m.completeFn(ctx, req, schemaName, out)
	}
	return domain.CompletionResult{}, nil
}

func fillIntent(out any, dto intentDTO) {
	*(out.(*intentDTO)) = dto
}

func TestParse_Success(t *testing.T) {
	mc := &mockCompleter{
		completeFn: func(_ context.Context, req domain.CompletionRequest, schemaName string, out any) (domain.CompletionResult, error) {
			if schemaName != "query_intent" {
				t.Errorf("schema name = %q", schemaName)
			}
			if req.System == "" {
				t.Error("expected a system prompt")
			}
			fillIntent(out, intentDTO{
				RawTheme:  "air quality",
				Locations: []string{"Zagreb", "Split"},
				Themes:    []string{"environment", "pollution"},
				Language:  "English",
			})
			return domain.CompletionResult{TotalTokens: 80}, nil
		},
	}
	s := New(mc, zap.NewNop())

	parsed, err := s.Parse(context.Background(), "air quality datasets around Zagreb")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if parsed.RawTheme() != "air quality" {
		t.Errorf("RawTheme = %q", parsed.RawTheme())
	}
	if !parsed.HasLocation() || parsed.PrimaryLocation() != "Zagreb" {
		t.Errorf("unexpected locations: %v", parsed.Locations())
	}
	terms := parsed.CoreSearchTerms()
	if len(terms) != 3 || terms[0] != "air quality" || terms[1] != "environment" {
		t.Errorf("CoreSearchTerms = %v", terms)
	}
}

func TestParse_EmptyQuery(t *testing.T) {
	mc := &mockCompleter{}
	s := New(mc, zap.NewNop())

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := s.Parse(context.Background(), q)
		if !errors.Is(err, domain.ErrEmptyQuery) {
			t.Errorf("query %q: expected ErrEmptyQuery, got %v", q, err)
		}
	}
	if mc.calls != 0 {
		t.Errorf("completer called %d times for empty queries", mc.calls)
	}
}

func TestParse_CompleterError(t *testing.T) {
	mc := &mockCompleter{
		completeFn: func(_ context.Context, _ domain.CompletionRequest, _ string, _ any) (domain.CompletionResult, error) {
			return domain.CompletionResult{}, errors.New("provider down")
		},
	}
	s := New(mc, zap.NewNop())

	if _, err := s.Parse(context.Background(), "rivers in Croatia"); err == nil {
		t.Fatal("expected error from completer")
	}
	if mc.calls != 1 {
		t.Errorf("expected exactly 1 call (no retries), got %d", mc.calls)
	}
}

func TestParse_EmptyRawTheme(t *testing.T) {
	mc := &mockCompleter{
		completeFn: func(_ context.Context, _ domain.CompletionRequest, _ string, out any) (domain.CompletionResult, error) {
			fillIntent(out, intentDTO{RawTheme: "   "})
			return domain.CompletionResult{}, nil
		},
	}
	s := New(mc, zap.NewNop())

	_, err := s.Parse(context.Background(), "rivers")
	if !errors.Is(err, domain.ErrIntentMalformed) {
		t.Errorf("expected ErrIntentMalformed for blank raw_theme, got %v", err)
	}
}

func TestParse_TracksUsage(t *testing.T) {
	mc := &mockCompleter{
		completeFn: func(_ context.Context, _ domain.CompletionRequest, _ string, out any) (domain.CompletionResult, error) {
			fillIntent(out, intentDTO{RawTheme: "rivers"})
			return domain.CompletionResult{TotalTokens: 55}, nil
		},
	}
	s := New(mc, zap.NewNop())

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := s.Parse(ctx, "rivers"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if usage.TotalTokens != 55 {
		t.Errorf("usage TotalTokens = %d, expected 55", usage.TotalTokens)
	}
	if !usage.Used {
		t.Error("expected usage marked Used")
	}
}
