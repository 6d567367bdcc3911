package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank or whitespace-only user query.
	ErrEmptyQuery = errors.New("empty query")
	// ErrIntentMalformed signals an intent completion that could not be parsed.
	ErrIntentMalformed = errors.New("malformed intent payload")
	// ErrLocationNotFound signals that the geocoder has no match for the place name.
	ErrLocationNotFound = errors.New("location not found")
	// ErrGeocoderUnavailable signals a transient geocoder failure.
	ErrGeocoderUnavailable = errors.New("geocoder unavailable")
	// ErrDatasetNotFound signals a missing dataset document.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrLLMQuotaExceeded signals an exhausted LLM token budget.
	ErrLLMQuotaExceeded = errors.New("llm token quota exceeded")
	// ErrLLMProviderError signals an LLM provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
)
