package intent

import (
	"context"

	"github.com/kailas-cloud/geodex/internal/domain"
)

// StructuredCompleter produces schema-constrained completions.
type StructuredCompleter interface {
	CompleteStructured(ctx context.Context, req domain.CompletionRequest, schemaName string, out any) (domain.CompletionResult, error)
}
