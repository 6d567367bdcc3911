package domain

import "context"

// CompletionRequest is a single chat exchange: an optional system prompt plus
// the user prompt. Model and temperature are fixed per completer instance.
type CompletionRequest struct {
	System string
	User   string
}

// CompletionResult carries the completion text and token usage through the decorator chain.
type CompletionResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completer is the shared chat completion contract between layers.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// StructuredCompleter constrains the completion to a JSON schema generated
// from out, which must be a pointer to a json-tagged struct. The raw payload
// is unmarshaled into out; Content carries it verbatim.
type StructuredCompleter interface {
	CompleteStructured(ctx context.Context, req CompletionRequest, schemaName string, out any) (CompletionResult, error)
}
