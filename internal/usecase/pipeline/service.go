package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain/answer"
	domintent "github.com/kailas-cloud/geodex/internal/domain/intent"
	"github.com/kailas-cloud/geodex/internal/domain/search/result"
	"github.com/kailas-cloud/geodex/internal/logger"
	"github.com/kailas-cloud/geodex/internal/metrics"
)

// apologyAnswer is the fixed response when the pipeline cannot make sense of
// the query at all.
const apologyAnswer = "I encountered an error processing your query. Please try again"

// DefaultMaxResults bounds retrieval when the caller does not ask for a count.
const DefaultMaxResults = 5

// Stage labels for duration metrics.
const (
	stageIntent     = "intent"
	stageGeocode    = "geocode"
	stageSpatial    = "spatial"
	stageRetrieve   = "retrieve"
	stageSynthesize = "synthesize"
)

// Service runs the full query pipeline: intent extraction, optional geocoding
// and spatial filtering, semantic retrieval, answer synthesis.
type Service struct {
	intents     IntentParser
	geocoder    Geocoder
	spatial     SpatialFilter
	retriever   Retriever
	synthesizer Synthesizer
	defaultMax  int
	logger      *zap.Logger
}

// New creates a pipeline service. defaultMax is used when a request does not
// specify how many results it wants; non-positive falls back to
// DefaultMaxResults.
func New(
	intents IntentParser,
	geocoder Geocoder,
	spatial SpatialFilter,
	retriever Retriever,
	synthesizer Synthesizer,
	defaultMax int,
	log *zap.Logger,
) *Service {
	if defaultMax <= 0 {
		defaultMax = DefaultMaxResults
	}
	return &Service{
		intents:     intents,
		geocoder:    geocoder,
		spatial:     spatial,
		retriever:   retriever,
		synthesizer: synthesizer,
		defaultMax:  defaultMax,
		logger:      log,
	}
}

// Process answers a user query. It never fails: every stage degrades to a
// valid (possibly empty) result, so the caller always receives a well-formed
// response. Only intent extraction is fatal for the run, and even that
// collapses to a fixed apology answer rather than an error.
func (s *Service) Process(ctx context.Context, userQuery string, maxResults int) answer.Response {
	log := logger.FromContext(ctx)
	if maxResults <= 0 {
		maxResults = s.defaultMax
	}
	log.Info("Processing query",
		zap.String("query", userQuery),
		zap.Int("max_results", maxResults))

	start := time.Now()
	qIntent, err := s.intents.Parse(ctx, userQuery)
	metrics.PipelineStageDuration.WithLabelValues(stageIntent).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("Intent extraction failed", zap.Error(err))
		metrics.PipelineRequestsTotal.WithLabelValues("degraded").Inc()
		return answer.NewResponse(apologyAnswer, nil)
	}

	var results []result.Result
	if qIntent.HasLocation() {
		results = s.locationSearch(ctx, log, qIntent, maxResults)
	} else {
		results = s.semanticSearch(ctx, log, qIntent, userQuery, maxResults)
	}

	start = time.Now()
	resp := s.synthesizer.Synthesize(ctx, userQuery, results)
	metrics.PipelineStageDuration.WithLabelValues(stageSynthesize).Observe(time.Since(start).Seconds())

	metrics.PipelineRequestsTotal.WithLabelValues("ok").Inc()
	metrics.PipelineResultsReturned.Observe(float64(len(results)))
	return resp
}

// locationSearch narrows retrieval to datasets whose extent intersects the
// geocoded area. Every failure along the way collapses to an empty result
// list: the user still gets an answer, just one that found nothing. There is
// no fallback to unfiltered search, a query about Zagreb must not surface
// datasets about somewhere else.
func (s *Service) locationSearch(ctx context.Context, log *zap.Logger, qi domintent.Intent, maxResults int) []result.Result {
	location := qi.PrimaryLocation()
	log.Debug("Processing location-based query", zap.String("location", location))

	start := time.Now()
	box, err := s.geocoder.Resolve(ctx, location)
	metrics.PipelineStageDuration.WithLabelValues(stageGeocode).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn("No valid bounding box found",
			zap.String("location", location),
			zap.Error(err))
		return nil
	}

	start = time.Now()
	ids, err := s.spatial.IntersectingIDs(ctx, box)
	metrics.PipelineStageDuration.WithLabelValues(stageSpatial).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SpatialFilterTotal.WithLabelValues("error").Inc()
		log.Error("Spatial filter failed", zap.Error(err))
		return nil
	}
	if len(ids) == 0 {
		metrics.SpatialFilterTotal.WithLabelValues("empty").Inc()
		log.Info("No datasets intersect the query bounding box",
			zap.String("location", location))
		return nil
	}
	metrics.SpatialFilterTotal.WithLabelValues("hit").Inc()

	searchText := strings.Join(qi.CoreSearchTerms(), " ")
	return s.retrieveStage(ctx, searchText, maxResults, ids)
}

// semanticSearch runs unrestricted retrieval over the whole index, falling
// back to the raw user query when intent produced no usable search terms.
func (s *Service) semanticSearch(ctx context.Context, log *zap.Logger, qi domintent.Intent, userQuery string, maxResults int) []result.Result {
	log.Debug("Processing semantic-only query")

	searchText := strings.Join(qi.CoreSearchTerms(), " ")
	if strings.TrimSpace(searchText) == "" {
		searchText = userQuery
	}
	return s.retrieveStage(ctx, searchText, maxResults, nil)
}

func (s *Service) retrieveStage(ctx context.Context, text string, maxResults int, restrictTo []string) []result.Result {
	start := time.Now()
	results := s.retriever.Search(ctx, text, maxResults, restrictTo)
	metrics.PipelineStageDuration.WithLabelValues(stageRetrieve).Observe(time.Since(start).Seconds())
	return results
}
