package synthesize

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/domain/answer"
	"github.com/kailas-cloud/geodex/internal/domain/search/result"
)

const systemPrompt = `You are a helpful assistant for a spatial data search system.
Based on the user's query and the retrieved datasets, provide a concise, informative response.

Guidelines:
- Directly address the user's query.
- Recommend the most relevant datasets.
- Mention location context if applicable.
- Be helpful and specific.`

// noResultsAnswer is returned for an empty result list; the model is not
// called when there is nothing to summarize.
const noResultsAnswer = "I couldn't find any datasets matching your query. " +
	"Try rephrasing the topic or broadening the location."

// maxExcerptRunes caps how much indexed text each result contributes to the
// completion prompt.
const maxExcerptRunes = 280

// Service turns retrieved datasets into a conversational answer.
type Service struct {
	completer Completer
	logger    *zap.Logger
}

// New creates an answer synthesizer.
func New(completer Completer, logger *zap.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Synthesize builds the final response for a query. It never fails: when a
// completion cannot be produced the answer degrades to a template, but the
// source attributions always reflect the results that were actually retrieved.
func (s *Service) Synthesize(ctx context.Context, query string, results []result.Result) answer.Response {
	sources := toSources(results)

	if len(results) == 0 {
		return answer.NewResponse(noResultsAnswer, sources)
	}

	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		System: systemPrompt,
		User:   renderPrompt(query, results),
	})
	if err != nil {
		s.logger.Error("Answer synthesis failed, falling back to template",
			zap.Error(err),
			zap.Int("results", len(results)))
		return answer.NewResponse(fallbackAnswer(len(results)), sources)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	text := strings.TrimSpace(res.Content)
	if text == "" {
		s.logger.Warn("Synthesizer returned an empty completion, falling back to template")
		return answer.NewResponse(fallbackAnswer(len(results)), sources)
	}

	return answer.NewResponse(text, sources)
}

// renderPrompt lays the results out as a compact numbered list the model can
// cite from.
func renderPrompt(query string, results []result.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User Query: %s\n\nRetrieved Datasets:\n", query)

	for i := range results {
		r := &results[i]
		fmt.Fprintf(&b, "%d. %s", i+1, r.DatasetID())
		if r.HasScore() {
			fmt.Fprintf(&b, " (relevance %.2f)", r.Score())
		}
		b.WriteByte('\n')

		if title := r.Metadata().Title(); title != "" {
			fmt.Fprintf(&b, "   Title: %s\n", title)
		}
		if text := excerpt(r.Content()); text != "" {
			fmt.Fprintf(&b, "   Excerpt: %s\n", text)
		}
	}

	b.WriteString("\nPlease provide a helpful response that addresses the user's query and recommends relevant datasets.")
	return b.String()
}

// excerpt collapses whitespace and truncates on a rune boundary.
func excerpt(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= maxExcerptRunes {
		return content
	}
	return string(runes[:maxExcerptRunes]) + "..."
}

// fallbackAnswer stands in for the model when completion fails; the caller
// still receives the matched datasets as sources.
func fallbackAnswer(count int) string {
	if count == 1 {
		return "I found 1 dataset matching your query. See the sources below for details."
	}
	return fmt.Sprintf("I found %d datasets matching your query. See the sources below for details.", count)
}

func toSources(results []result.Result) []answer.Source {
	sources := make([]answer.Source, 0, len(results))
	for i := range results {
		r := &results[i]
		sources = append(sources, answer.NewSource(r.DatasetID(), r.Score(), r.HasScore(), r.Metadata()))
	}
	return sources
}
