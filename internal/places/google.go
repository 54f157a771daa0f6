package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/FranksOps/namevet/internal/metrics"
	"github.com/FranksOps/namevet/pkg/httpclient"
)

const (
	DefaultEndpoint   = "https://places.googleapis.com/v1/places:searchText"
	DefaultLanguage   = "es"
	DefaultJoiner     = "en"
	DefaultMaxResults = 5
	DefaultTimeout    = 10 * time.Second

	fieldMask     = "places.displayName,places.formattedAddress,places.types,places.rating,places.userRatingCount"
	maxCategories = 3
)

// Config configures a Client. Zero values get defaults.
type Config struct {
	APIKey   string
	Endpoint string
	Language string
	// Joiner sits between name and locality in the query text.
	Joiner     string
	MaxResults int
	Timeout    time.Duration
	Client     *httpclient.Client
	Logger     *slog.Logger
}

// Client searches the Google Places text search API.
type Client struct {
	cfg    Config
	client *httpclient.Client
	logger *slog.Logger
}

var _ Searcher = (*Client)(nil)

// NewClient builds a Client. A missing API key still yields a usable Client
// whose searches return nothing, alongside ErrNoAPIKey so callers can warn.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Joiner == "" {
		cfg.Joiner = DefaultJoiner
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Client == nil {
		client, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
		if err != nil {
			return nil, fmt.Errorf("places: %w", err)
		}
		cfg.Client = client
	}

	c := &Client{cfg: cfg, client: cfg.Client, logger: cfg.Logger}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return c, ErrNoAPIKey
	}
	return c, nil
}

// Query builds the free-text query for name and locality.
func (c *Client) Query(name, locality string) string {
	name = strings.TrimSpace(name)
	locality = strings.TrimSpace(locality)
	if locality == "" {
		return name
	}
	return name + " " + c.cfg.Joiner + " " + locality
}

type searchRequest struct {
	TextQuery      string `json:"textQuery"`
	LanguageCode   string `json:"languageCode"`
	MaxResultCount int    `json:"maxResultCount"`
}

type searchResponse struct {
	Places []struct {
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string   `json:"formattedAddress"`
		Types            []string `json:"types"`
		Rating           *float64 `json:"rating"`
		UserRatingCount  int      `json:"userRatingCount"`
	} `json:"places"`
}

// Search returns up to MaxResults businesses. Names shorter than two
// characters, a missing key and every failure all yield an empty slice.
func (c *Client) Search(ctx context.Context, name, locality string) []BusinessMatch {
	if len([]rune(strings.TrimSpace(name))) < 2 || strings.TrimSpace(c.cfg.APIKey) == "" {
		metrics.RecordSearch("skipped")
		return []BusinessMatch{}
	}

	matches, err := c.search(ctx, c.Query(name, locality))
	if err != nil {
		metrics.RecordSearch("error")
		c.logger.Debug("directory search failed", "name", name, "err", err)
		return []BusinessMatch{}
	}
	metrics.RecordSearch("ok")
	c.logger.Debug("directory search", "name", name, "results", len(matches))
	return matches
}

func (c *Client) search(ctx context.Context, query string) ([]BusinessMatch, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(searchRequest{
		TextQuery:      query,
		LanguageCode:   c.cfg.Language,
		MaxResultCount: c.cfg.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.cfg.APIKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer httpclient.Drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("places: unexpected status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("places: decode: %w", err)
	}

	matches := make([]BusinessMatch, 0, len(decoded.Places))
	for _, p := range decoded.Places {
		if len(matches) == c.cfg.MaxResults {
			break
		}
		cats := p.Types
		if len(cats) > maxCategories {
			cats = cats[:maxCategories]
		}
		if cats == nil {
			cats = []string{}
		}
		matches = append(matches, BusinessMatch{
			Name:        p.DisplayName.Text,
			Address:     p.FormattedAddress,
			Rating:      p.Rating,
			RatingCount: p.UserRatingCount,
			Categories:  cats,
		})
	}
	return matches, nil
}
