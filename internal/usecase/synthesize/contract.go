package synthesize

import (
	"context"

	"github.com/kailas-cloud/geodex/internal/domain"
)

// Completer produces chat completions for answer generation.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}
