package edp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/usecase/harvest"
)

const (
	defaultBaseURL = "https://data.europa.eu"
	defaultTimeout = 15 * time.Second

	searchPath = "/api/hub/search/datasets"
	repoPath   = "/api/hub/repo/datasets"
)

// Client reads catalogue listings and DCAT metadata from the data.europa.eu hub.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds the hub client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a data.europa.eu hub client.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

// ListDatasets returns the dataset IDs of a catalogue, up to limit.
func (c *Client) ListDatasets(ctx context.Context, catalogue string, limit int) ([]string, error) {
	query := url.Values{}
	query.Set("catalogue", catalogue)
	query.Set("limit", fmt.Sprintf("%d", limit))

	body, err := c.get(ctx, c.baseURL+searchPath+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("list catalogue %s: %w", catalogue, err)
	}

	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("parse catalogue listing: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("Fetched catalogue listing",
			zap.String("catalogue", catalogue), zap.Int("datasets", len(ids)))
	}
	return ids, nil
}

// FetchDataset retrieves and flattens the JSON-LD metadata of one dataset.
// Literals are picked in the requested language with a fallback to any
// language; absent fields get N/A placeholders the way the catalogue's own
// tooling renders them.
func (c *Client) FetchDataset(ctx context.Context, id, language string) (harvest.Record, error) {
	body, err := c.get(ctx, c.baseURL+repoPath+"/"+url.PathEscape(id)+".jsonld")
	if err != nil {
		return harvest.Record{}, fmt.Errorf("fetch dataset %s: %w", id, err)
	}

	nodes, err := graphNodes(body)
	if err != nil {
		return harvest.Record{}, fmt.Errorf("dataset %s: %w", id, err)
	}

	var dataset map[string]any
	for _, node := range nodes {
		if isType(node, "dcat:Dataset") {
			dataset = node
			break
		}
	}
	if dataset == nil {
		return harvest.Record{}, fmt.Errorf("dataset %s: no dcat:Dataset node in metadata", id)
	}

	rec := harvest.Record{
		ID:          id,
		Title:       orNA(literalByLang(values(dataset, "dct:title"), language)),
		Description: orNA(literalByLang(values(dataset, "dct:description"), language)),
		Keywords:    literalsByLang(values(dataset, "dcat:keyword"), language),
	}
	if len(rec.Keywords) == 0 {
		rec.Keywords = []string{harvest.NA}
	}

	rec.SpatialExtent = extractSpatialExtent(nodes, dataset)
	rec.AccessURLs, rec.DownloadURLs = extractDistributionURLs(nodes, dataset)

	return rec, nil
}

// extractSpatialExtent resolves dct:spatial to its geometry literal. The hub
// publishes either dcat:bbox or locn:geometry on the referenced node; some
// catalogues inline the literal directly.
func extractSpatialExtent(nodes []map[string]any, dataset map[string]any) string {
	raw := values(dataset, "dct:spatial")

	// Inline literal (rare, but some catalogues do this).
	if text := firstLiteral(raw); text != "" {
		return text
	}

	for _, ref := range refIDs(raw) {
		node := nodeByID(nodes, ref)
		if node == nil {
			continue
		}
		if bbox := firstLiteral(values(node, "dcat:bbox")); bbox != "" {
			return bbox
		}
		if geometry := firstLiteral(values(node, "locn:geometry")); geometry != "" {
			return geometry
		}
	}

	return harvest.NA
}

// extractDistributionURLs collects access and download URLs from the
// dataset's distributions.
func extractDistributionURLs(nodes []map[string]any, dataset map[string]any) (access, download []string) {
	for _, ref := range refIDs(values(dataset, "dcat:distribution")) {
		dist := nodeByID(nodes, ref)
		if dist == nil {
			continue
		}
		access = append(access, refIDs(values(dist, "dcat:accessURL"))...)
		download = append(download, refIDs(values(dist, "dcat:downloadURL"))...)
	}

	if len(access) == 0 {
		access = []string{harvest.NA}
	}
	if len(download) == 0 {
		download = []string{harvest.NA}
	}
	return access, download
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func orNA(s string) string {
	if s == "" {
		return harvest.NA
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
