package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

const supadataEndpoint = "https://api.supadata.ai/v1/transcript"

// SupadataProvider fetches transcripts from the Supadata API. Quota-metered,
// so it only runs when the free scrape failed. Skipped entirely when no
// SUPADATA_API_KEY is set.
type SupadataProvider struct{}

func (SupadataProvider) Name() Source { return SourceSupadata }

type supadataResp struct {
	Content []struct {
		Text     string `json:"text"`
		Offset   int64  `json:"offset"`   // ms
		Duration int64  `json:"duration"` // ms
	} `json:"content"`
	Lang  string `json:"lang"`
	Error string `json:"error,omitempty"`
}

func (SupadataProvider) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	key := engine.Cfg.SupadataAPIKey
	if key == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("url", "https://www.youtube.com/watch?v="+videoID)
	q.Set("lang", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, supadataEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", key)
	req.Header.Set("Accept", "application/json")

	resp, err := engine.HTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("supadata request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		return nil, fmt.Errorf("supadata quota: %w", engine.ErrQuotaExceeded)
	case http.StatusNotFound:
		return nil, fmt.Errorf("supadata: no transcript for video")
	default:
		return nil, fmt.Errorf("supadata HTTP %d", resp.StatusCode)
	}

	var sr supadataResp
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode supadata response: %w", err)
	}
	if sr.Error != "" {
		return nil, fmt.Errorf("supadata: %s", sr.Error)
	}

	segments := make([]Segment, 0, len(sr.Content))
	for _, c := range sr.Content {
		if c.Text == "" {
			continue
		}
		segments = append(segments, Segment{Text: c.Text, Offset: c.Offset, Duration: c.Duration})
	}
	return segments, nil
}
