package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// dataAPIBase is overridable in tests.
var dataAPIBase = "https://www.googleapis.com/youtube/v3"

const commentPageSize = 100

// apiError is the Data API error envelope. The reason string distinguishes
// quota exhaustion from disabled comments, both of which arrive as 403.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func (e *apiError) reason() string {
	if len(e.Error.Errors) > 0 {
		return e.Error.Errors[0].Reason
	}
	return ""
}

type videosListResp struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			ChannelID    string `json:"channelId"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type commentThreadsResp struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			TotalReplyCount int64 `json:"totalReplyCount"`
			TopLevelComment struct {
				Snippet struct {
					TextDisplay       string `json:"textDisplay"`
					AuthorDisplayName string `json:"authorDisplayName"`
					LikeCount         int64  `json:"likeCount"`
					PublishedAt       string `json:"publishedAt"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

// FetchVideoData scrapes metadata and top-level comments for one video.
// Comments arrive in relevance order, capped at cfg.MaxComments. Disabled
// comments are not an error: the result simply has none.
func FetchVideoData(ctx context.Context, urlOrID string) (*ScrapedData, error) {
	videoID := engine.ExtractVideoID(urlOrID)
	if videoID == "" {
		return nil, fmt.Errorf("%w: no video ID in %q", engine.ErrInvalidInput, urlOrID)
	}
	if engine.Cfg.YouTubeAPIKey == "" {
		return nil, fmt.Errorf("%w: YOUTUBE_API_KEY not set", engine.ErrUpstream)
	}

	engine.IncrScrape()

	cacheKey := engine.CacheKey("scrape", videoID)
	if cached, ok := engine.CacheLoadJSON[*ScrapedData](ctx, cacheKey); ok && cached != nil {
		return cached, nil
	}

	data, err := fetchVideoMeta(ctx, videoID)
	if err != nil {
		return nil, err
	}

	comments, err := fetchComments(ctx, videoID)
	if err != nil {
		return nil, err
	}
	data.Comments = comments
	data.ScrapedAt = time.Now().UTC()

	slog.Info("video scraped",
		"video_id", videoID,
		"title", data.Title,
		"comments", len(comments))

	engine.CacheStoreJSON(ctx, cacheKey, data)
	return data, nil
}

func fetchVideoMeta(ctx context.Context, videoID string) (*ScrapedData, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", videoID)

	body, err := dataAPIGet(ctx, "/videos", params)
	if err != nil {
		return nil, err
	}

	var vr videosListResp
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("%w: decode videos.list: %v", engine.ErrUpstream, err)
	}
	if len(vr.Items) == 0 {
		return nil, fmt.Errorf("%w: video %s", engine.ErrNotFound, videoID)
	}

	item := vr.Items[0]
	return &ScrapedData{
		VideoID:      videoID,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ChannelName:  item.Snippet.ChannelTitle,
		ChannelID:    item.Snippet.ChannelID,
		PublishedAt:  item.Snippet.PublishedAt,
		ViewCount:    atoi64(item.Statistics.ViewCount),
		LikeCount:    atoi64(item.Statistics.LikeCount),
		CommentCount: atoi64(item.Statistics.CommentCount),
		Duration:     item.ContentDetails.Duration,
		ThumbnailURL: item.Snippet.Thumbnails.High.URL,
	}, nil
}

// fetchComments pages through commentThreads.list until the cap or the last
// page. A commentsDisabled rejection stops pagination without failing the
// scrape.
func fetchComments(ctx context.Context, videoID string) ([]Comment, error) {
	maxComments := engine.Cfg.MaxComments
	if maxComments <= 0 {
		maxComments = 2000
	}

	comments := make([]Comment, 0, commentPageSize)
	pageToken := ""
	for len(comments) < maxComments {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("videoId", videoID)
		params.Set("maxResults", strconv.Itoa(commentPageSize))
		params.Set("order", "relevance")
		params.Set("textFormat", "plainText")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		body, err := dataAPIGet(ctx, "/commentThreads", params)
		if err != nil {
			if isCommentsDisabled(err) {
				slog.Info("comments disabled", "video_id", videoID)
				break
			}
			return nil, err
		}
		engine.IncrCommentPage()

		var cr commentThreadsResp
		if err := json.Unmarshal(body, &cr); err != nil {
			return nil, fmt.Errorf("%w: decode commentThreads.list: %v", engine.ErrUpstream, err)
		}
		for _, item := range cr.Items {
			s := item.Snippet.TopLevelComment.Snippet
			comments = append(comments, Comment{
				Text:        s.TextDisplay,
				Author:      s.AuthorDisplayName,
				Likes:       s.LikeCount,
				Replies:     item.Snippet.TotalReplyCount,
				PublishedAt: s.PublishedAt,
			})
			if len(comments) >= maxComments {
				break
			}
		}
		if cr.NextPageToken == "" {
			break
		}
		pageToken = cr.NextPageToken
	}
	return comments, nil
}

// commentsDisabledError wraps the Data API commentsDisabled rejection so
// fetchComments can treat it as a soft stop.
type commentsDisabledError struct{ msg string }

func (e *commentsDisabledError) Error() string { return e.msg }

func isCommentsDisabled(err error) bool {
	var cd *commentsDisabledError
	return errors.As(err, &cd)
}

// dataAPIGet performs one Data API GET, trying the fallback key when the
// primary hits its daily quota.
func dataAPIGet(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	keys := []string{engine.Cfg.YouTubeAPIKey}
	if engine.Cfg.YouTubeAPIKeyFallback != "" {
		keys = append(keys, engine.Cfg.YouTubeAPIKeyFallback)
	}

	if lim := engine.Cfg.DataAPILimit; lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for i, key := range keys {
		params.Set("key", key)
		fetchURL := dataAPIBase + endpoint + "?" + params.Encode()

		resp, err := engine.FetchWithBackoff(ctx, fetchURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", engine.ErrUpstream, err)
		}
		body, err := engine.ReadResponseBody(resp)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", engine.ErrUpstream, err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		var ae apiError
		_ = json.Unmarshal(body, &ae)
		reason := ae.reason()

		switch {
		case resp.StatusCode == http.StatusForbidden && reason == "commentsDisabled":
			return nil, &commentsDisabledError{msg: ae.Error.Message}
		case resp.StatusCode == http.StatusForbidden && isQuotaReason(reason),
			resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("%w: %s", engine.ErrQuotaExceeded, reason)
			if i < len(keys)-1 {
				slog.Warn("data api quota hit, switching key", "endpoint", endpoint)
				continue
			}
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", engine.ErrNotFound, endpoint)
		default:
			return nil, fmt.Errorf("%w: data api HTTP %d: %s", engine.ErrUpstream, resp.StatusCode, ae.Error.Message)
		}
	}
	return nil, lastErr
}

func isQuotaReason(reason string) bool {
	switch reason {
	case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "userRateLimitExceeded":
		return true
	}
	return false
}

func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
