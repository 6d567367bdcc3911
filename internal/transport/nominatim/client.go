package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/domain/geo"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "geodex/1.0 (dataset search service)"
	defaultTimeout   = 10 * time.Second
)

// Client resolves place names to bounding boxes via the Nominatim search API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds the geocoder settings.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewClient creates a Nominatim geocoding client.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	// Nominatim usage policy requires an identifying User-Agent.
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

// place mirrors one entry of the Nominatim search response.
// boundingbox holds [south, north, west, east] as decimal strings.
type place struct {
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"`
}

// Geocode resolves a place name to its bounding box. A location with no match
// returns domain.ErrLocationNotFound; transient failures (network, 429, 5xx)
// return domain.ErrGeocoderUnavailable so the caller can retry.
func (c *Client) Geocode(ctx context.Context, location string) (geo.BoundingBox, error) {
	query := url.Values{}
	query.Set("q", location)
	query.Set("format", "json")
	query.Set("limit", "1")

	reqURL := c.baseURL + "/search?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return geo.BoundingBox{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geo.BoundingBox{}, fmt.Errorf("geocode %q: %v: %w", location, err, domain.ErrGeocoderUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return geo.BoundingBox{}, fmt.Errorf("read geocode response: %v: %w", err, domain.ErrGeocoderUnavailable)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return geo.BoundingBox{}, fmt.Errorf("geocode %q: HTTP %d: %w",
				location, resp.StatusCode, domain.ErrGeocoderUnavailable)
		}
		return geo.BoundingBox{}, fmt.Errorf("geocode %q: HTTP %d: %s", location, resp.StatusCode, string(body))
	}

	var places []place
	if err := json.Unmarshal(body, &places); err != nil {
		return geo.BoundingBox{}, fmt.Errorf("parse geocode response: %w", err)
	}

	if len(places) == 0 {
		return geo.BoundingBox{}, fmt.Errorf("geocode %q: %w", location, domain.ErrLocationNotFound)
	}

	box, err := parseBoundingBox(places[0].BoundingBox)
	if err != nil {
		return geo.BoundingBox{}, fmt.Errorf("geocode %q: %w", location, err)
	}

	if c.logger != nil {
		c.logger.Debug("Geocoded location",
			zap.String("location", location),
			zap.String("display_name", places[0].DisplayName),
			zap.Float64("south", box.South()),
			zap.Float64("north", box.North()),
			zap.Float64("west", box.West()),
			zap.Float64("east", box.East()))
	}

	return box, nil
}

// parseBoundingBox converts Nominatim's [south, north, west, east] strings
// into a validated bounding box.
func parseBoundingBox(bbox []string) (geo.BoundingBox, error) {
	if len(bbox) != 4 {
		return geo.BoundingBox{}, fmt.Errorf("bounding box has %d corners, expected 4", len(bbox))
	}

	coords := make([]float64, 4)
	for i, s := range bbox {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return geo.BoundingBox{}, fmt.Errorf("parse bounding box corner %q: %w", s, err)
		}
		coords[i] = v
	}

	box, err := geo.NewBoundingBox(coords[0], coords[1], coords[2], coords[3])
	if err != nil {
		return geo.BoundingBox{}, fmt.Errorf("invalid bounding box: %w", err)
	}
	return box, nil
}
