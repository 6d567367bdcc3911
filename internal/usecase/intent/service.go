package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain"
	domintent "github.com/kailas-cloud/geodex/internal/domain/intent"
)

const systemPrompt = `You are a geospatial query specialist that helps users find spatial datasets. You excel at understanding what users are looking for in terms of geographic locations, data themes, and publishers.`

const userPromptFmt = `Extract from this dataset search query:
1. raw_theme: the core search topic or phrase, in the user's exact wording
2. locations: place names for geocoding - cities, countries, regions, anything geocodable
3. themes: implied themes, keywords or topics not explicitly stated, in the same language as raw_theme (e.g. traffic, weather, population, transportation, environment)
4. publishers: organizations, agencies, or data publishers mentioned (e.g. "city of Berlin", "European Space Agency")
5. language: the language of the query (e.g. English)

Query: %s`

// intentDTO is the JSON shape the parsing model fills in.
type intentDTO struct {
	RawTheme   string   `json:"raw_theme"`
	Locations  []string `json:"locations,omitempty"`
	Themes     []string `json:"themes,omitempty"`
	Publishers []string `json:"publishers,omitempty"`
	Language   string   `json:"language,omitempty"`
}

// Service extracts structured intent from natural-language queries.
type Service struct {
	completer StructuredCompleter
	logger    *zap.Logger
}

// New creates an intent extraction service.
func New(completer StructuredCompleter, logger *zap.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Parse extracts a structured intent from the user query. An empty query
// fails with domain.ErrEmptyQuery before any model call; a completion the
// intent schema cannot be read from fails with domain.ErrIntentMalformed.
// There are no retries: the caller decides how to degrade.
func (s *Service) Parse(ctx context.Context, query string) (domintent.Intent, error) {
	if strings.TrimSpace(query) == "" {
		return domintent.Intent{}, domain.ErrEmptyQuery
	}

	var dto intentDTO
	result, err := s.completer.CompleteStructured(ctx, domain.CompletionRequest{
		System: systemPrompt,
		User:   fmt.Sprintf(userPromptFmt, query),
	}, "query_intent", &dto)
	if err != nil {
		return domintent.Intent{}, fmt.Errorf("extract intent: %w", err)
	}

	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)

	parsed, err := domintent.New(dto.RawTheme, dto.Locations, dto.Themes, dto.Publishers, dto.Language)
	if err != nil {
		return domintent.Intent{}, fmt.Errorf("%w: %v", domain.ErrIntentMalformed, err)
	}

	s.logger.Debug("Parsed query intent",
		zap.String("raw_theme", parsed.RawTheme()),
		zap.Strings("locations", parsed.Locations()),
		zap.Strings("themes", parsed.Themes()),
		zap.String("language", parsed.Language()))

	return parsed, nil
}
