package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/domain/answer"
	domusage "github.com/kailas-cloud/geodex/internal/domain/usage"
	healthuc "github.com/kailas-cloud/geodex/internal/usecase/health"
)

// Pipeline answers one user query end to end. It has no error return;
// degradation happens inside the pipeline.
type Pipeline interface {
	Process(ctx context.Context, userQuery string, maxResults int) answer.Response
}

// UsageReporter builds token usage reports.
type UsageReporter interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthChecker probes the service dependencies.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server exposes the query pipeline over HTTP.
type Server struct {
	pipeline   Pipeline
	usage      UsageReporter
	health     HealthChecker
	maxResults int
	logger     *zap.Logger
}

// NewServer creates an HTTP API server. maxResults caps the per-request
// result count; non-positive means no cap.
func NewServer(pipeline Pipeline, usage UsageReporter, health HealthChecker, maxResults int, logger *zap.Logger) *Server {
	return &Server{
		pipeline:   pipeline,
		usage:      usage,
		health:     health,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Routes mounts the API handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/search", s.Search)
	r.Get("/api/v1/usage", s.GetUsage)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// searchRequest is the POST /api/v1/search body.
type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// searchResponse is the POST /api/v1/search reply.
type searchResponse struct {
	Answer         string          `json:"answer"`
	SourceDatasets []sourceDataset `json:"source_datasets"`
}

type sourceDataset struct {
	DatasetID      string         `json:"dataset_id"`
	RelevanceScore *float64       `json:"relevance_score"`
	Metadata       map[string]any `json:"metadata"`
}

// Search handles POST /api/v1/search. Only a malformed body is a transport
// error; everything else, including an empty query, flows through the
// pipeline and comes back as a well-formed degraded answer.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("Malformed search request", zap.Error(err))
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.MaxResults < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "max_results must not be negative")
		return
	}

	maxResults := req.MaxResults
	if s.maxResults > 0 && maxResults > s.maxResults {
		maxResults = s.maxResults
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp := s.pipeline.Process(ctx, req.Query, maxResults)

	setLLMUsageHeader(w, usage)
	writeJSON(w, http.StatusOK, responseToWire(resp))
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := domusage.PeriodMonth
	switch r.URL.Query().Get("period") {
	case "", "month":
	case "day":
		period = domusage.PeriodDay
	case "total":
		period = domusage.PeriodTotal
	default:
		writeError(w, http.StatusBadRequest, codeValidationFailed, "period must be day, month or total")
		return
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := usageResponse{
		Period:   string(report.Period()),
		Provider: report.Provider(),
		Usage: usageMetrics{
			Tokens: report.Metrics().Tokens(),
		},
		Budget: budgetStatus{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
		},
	}
	if report.PeriodStart() > 0 {
		resp.PeriodStartMs = report.PeriodStart()
		resp.PeriodEndMs = report.PeriodEnd()
	}
	if report.Budget().ResetsAt() > 0 {
		resp.Budget.ResetsAtMs = report.Budget().ResetsAt()
	}

	writeJSON(w, http.StatusOK, resp)
}

type usageResponse struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider,omitempty"`
	PeriodStartMs int64        `json:"period_start_ms,omitempty"`
	PeriodEndMs   int64        `json:"period_end_ms,omitempty"`
	Usage         usageMetrics `json:"usage"`
	Budget        budgetStatus `json:"budget"`
}

type usageMetrics struct {
	Tokens int `json:"tokens"`
}

type budgetStatus struct {
	TokensLimit     int   `json:"tokens_limit"`
	TokensRemaining int   `json:"tokens_remaining"`
	IsExhausted     bool  `json:"is_exhausted"`
	ResetsAtMs      int64 `json:"resets_at_ms,omitempty"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]healthCheck, len(report.Checks))
	for name, c := range report.Checks {
		checks[name] = healthCheck{Status: string(c.Result), Message: c.Message}
	}

	// Degraded still serves queries, so it stays 200 for the load balancer.
	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

type healthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]healthCheck `json:"checks"`
}

type healthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func responseToWire(resp answer.Response) searchResponse {
	sources := resp.Sources()
	out := searchResponse{
		Answer:         resp.Answer(),
		SourceDatasets: make([]sourceDataset, 0, len(sources)),
	}
	for _, src := range sources {
		item := sourceDataset{
			DatasetID: src.DatasetID(),
			Metadata:  metadataToWire(src),
		}
		if src.HasScore() {
			score := src.Score()
			item.RelevanceScore = &score
		}
		out.SourceDatasets = append(out.SourceDatasets, item)
	}
	return out
}

// metadataToWire flattens dataset metadata into the response object: residual
// harvester fields first, then the named DCAT fields so they win on collision.
func metadataToWire(src answer.Source) map[string]any {
	meta := src.Metadata()
	out := make(map[string]any)
	for k, v := range meta.Extra() {
		out[k] = v
	}
	if meta.Title() != "" {
		out["title"] = meta.Title()
	}
	if len(meta.Keywords()) > 0 {
		out["keywords"] = meta.Keywords()
	}
	if len(meta.AccessURLs()) > 0 {
		out["access_urls"] = meta.AccessURLs()
	}
	return out
}

func setLLMUsageHeader(w http.ResponseWriter, usage *domain.LLMUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-LLM-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}
