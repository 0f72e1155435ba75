package statsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	appctx "github.com/afisha-events/afisha/internal/pkg/context"
	"github.com/afisha-events/afisha/internal/pkg/logger"
	"github.com/google/uuid"
)

const (
	appName  = "afisha-main"
	timeFmt  = "2006-01-02 15:04:05"
	statsEra = "2000-01-01 00:00:00" // hits are counted since forever
)

// ViewsCache fronts the stats service for repeated lookups.
type ViewsCache interface {
	GetEventViews(ctx context.Context, eventID uuid.UUID) (int64, error)
	SetEventViews(ctx context.Context, eventID uuid.UUID, views int64) error
}

// Client talks to the hit-statistics service. Every call is best-effort:
// event rendering must survive a down stats service, so failures are
// logged and swallowed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      ViewsCache
}

func New(baseURL string, cache ViewsCache) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Second,
		},
		cache: cache,
	}
}

type hitBody struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type viewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// TrackHit records one request against a public URI.
func (c *Client) TrackHit(ctx context.Context, uri, clientIP string) {
	body, _ := json.Marshal(hitBody{
		App:       appName,
		URI:       uri,
		IP:        clientIP,
		Timestamp: time.Now().UTC().Format(timeFmt),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if reqID := appctx.GetRequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Logger.Warn().Err(err).Str("uri", uri).Msg("stats hit dropped")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		logger.Logger.Warn().Int("status", resp.StatusCode).Str("uri", uri).Msg("stats hit rejected")
	}
}

// Views resolves unique view counts for a set of events. Cache hits are
// served locally; the rest go to the stats service in one query. Events
// the service knows nothing about come back as zero.
func (c *Client) Views(ctx context.Context, eventIDs []uuid.UUID) map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return out
	}

	var misses []uuid.UUID
	for _, id := range eventIDs {
		out[id] = 0
		if c.cache == nil {
			misses = append(misses, id)
			continue
		}
		if v, err := c.cache.GetEventViews(ctx, id); err == nil {
			out[id] = v
		} else {
			misses = append(misses, id)
		}
	}
	if len(misses) == 0 {
		return out
	}

	stats, err := c.fetchStats(ctx, misses)
	if err != nil {
		logger.Logger.Warn().Err(err).Int("events", len(misses)).Msg("stats query failed")
		return out
	}

	fetched := make(map[uuid.UUID]int64, len(misses))
	for _, s := range stats {
		id, ok := eventIDFromURI(s.URI)
		if !ok {
			continue
		}
		fetched[id] = s.Hits
	}
	for _, id := range misses {
		v := fetched[id] // zero when the service never saw the uri
		out[id] = v
		if c.cache != nil {
			_ = c.cache.SetEventViews(ctx, id, v)
		}
	}
	return out
}

func (c *Client) fetchStats(ctx context.Context, eventIDs []uuid.UUID) ([]viewStats, error) {
	q := url.Values{}
	q.Set("start", statsEra)
	q.Set("end", time.Now().UTC().Format(timeFmt))
	q.Set("unique", "true")
	for _, id := range eventIDs {
		q.Add("uris", "/events/"+id.String())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if reqID := appctx.GetRequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service returned %d", resp.StatusCode)
	}

	var stats []viewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func eventIDFromURI(uri string) (uuid.UUID, bool) {
	const prefix = "/events/"
	if !strings.HasPrefix(uri, prefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
