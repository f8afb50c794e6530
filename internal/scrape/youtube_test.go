package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

const videosOKBody = `{
  "items": [{
    "id": "dQw4w9WgXcQ",
    "snippet": {
      "title": "Test Video",
      "description": "A description",
      "channelTitle": "Test Channel",
      "channelId": "UC123",
      "publishedAt": "2024-01-15T00:00:00Z",
      "thumbnails": {"high": {"url": "https://img.example/hq.jpg"}}
    },
    "statistics": {"viewCount": "150000", "likeCount": "7500", "commentCount": "320"},
    "contentDetails": {"duration": "PT12M34S"}
  }]
}`

func commentsPage(n int, nextToken string) string {
	items := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			items += ","
		}
		items += fmt.Sprintf(`{
  "snippet": {
    "totalReplyCount": 2,
    "topLevelComment": {"snippet": {
      "textDisplay": "comment %d",
      "authorDisplayName": "user%d",
      "likeCount": %d,
      "publishedAt": "2024-02-01T00:00:00Z"
    }}
  }
}`, i, i, i)
	}
	token := ""
	if nextToken != "" {
		token = fmt.Sprintf(`"nextPageToken": %q,`, nextToken)
	}
	return fmt.Sprintf(`{%s "items": [%s]}`, token, items)
}

func setupTest(t *testing.T, handler http.Handler) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	oldBase := dataAPIBase
	dataAPIBase = srv.URL
	t.Cleanup(func() { dataAPIBase = oldBase })

	engine.Init(engine.Config{
		YouTubeAPIKey: "primary-key",
		MaxComments:   2000,
		HTTPClient:    srv.Client(),
	})
	t.Cleanup(func() { engine.Init(engine.Config{}) })
}

func TestFetchVideoData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, videosOKBody)
	})
	mux.HandleFunc("/commentThreads", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("order") != "relevance" {
			t.Errorf("order = %q, want relevance", r.URL.Query().Get("order"))
		}
		fmt.Fprint(w, commentsPage(3, ""))
	})
	setupTest(t, mux)

	data, err := FetchVideoData(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatal(err)
	}
	if data.Title != "Test Video" || data.ChannelName != "Test Channel" {
		t.Errorf("metadata: %+v", data)
	}
	if data.ViewCount != 150000 || data.LikeCount != 7500 {
		t.Errorf("counts: views=%d likes=%d", data.ViewCount, data.LikeCount)
	}
	if data.Duration != "PT12M34S" {
		t.Errorf("duration = %q", data.Duration)
	}
	if len(data.Comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(data.Comments))
	}
	if data.Comments[1].Author != "user1" || data.Comments[1].Replies != 2 {
		t.Errorf("comment[1]: %+v", data.Comments[1])
	}
}

func TestFetchVideoDataPagination(t *testing.T) {
	pages := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, videosOKBody)
	})
	mux.HandleFunc("/commentThreads", func(w http.ResponseWriter, r *http.Request) {
		pages++
		if r.URL.Query().Get("pageToken") == "" {
			fmt.Fprint(w, commentsPage(100, "page2"))
			return
		}
		fmt.Fprint(w, commentsPage(50, ""))
	})
	setupTest(t, mux)

	data, err := FetchVideoData(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatal(err)
	}
	if pages != 2 {
		t.Errorf("fetched %d pages, want 2", pages)
	}
	if len(data.Comments) != 150 {
		t.Errorf("got %d comments, want 150", len(data.Comments))
	}
}

func TestFetchVideoDataCommentCap(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, videosOKBody)
	})
	mux.HandleFunc("/commentThreads", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, commentsPage(100, "more"))
	})
	setupTest(t, mux)
	engine.Cfg.MaxComments = 250

	data, err := FetchVideoData(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Comments) != 250 {
		t.Errorf("got %d comments, want cap of 250", len(data.Comments))
	}
}

func TestFetchVideoDataNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": []}`)
	})
	setupTest(t, mux)

	_, err := FetchVideoData(context.Background(), "aaaaaaaaaaa")
	if !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchVideoDataInvalidInput(t *testing.T) {
	setupTest(t, http.NewServeMux())

	_, err := FetchVideoData(context.Background(), "definitely not a url")
	if !errors.Is(err, engine.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestFetchVideoDataCommentsDisabled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, videosOKBody)
	})
	mux.HandleFunc("/commentThreads", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": 403, "message": "disabled", "errors": [{"reason": "commentsDisabled"}]}}`)
	})
	setupTest(t, mux)

	data, err := FetchVideoData(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("comments disabled should not fail the scrape: %v", err)
	}
	if len(data.Comments) != 0 {
		t.Errorf("got %d comments, want 0", len(data.Comments))
	}
}

func TestFetchVideoDataKeyFallback(t *testing.T) {
	var keysSeen []string
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		keysSeen = append(keysSeen, key)
		if key == "primary-key" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error": {"code": 403, "message": "quota", "errors": [{"reason": "quotaExceeded"}]}}`)
			return
		}
		fmt.Fprint(w, videosOKBody)
	})
	mux.HandleFunc("/commentThreads", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, commentsPage(1, ""))
	})
	setupTest(t, mux)
	engine.Cfg.YouTubeAPIKeyFallback = "fallback-key"

	data, err := FetchVideoData(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatal(err)
	}
	if data.Title != "Test Video" {
		t.Errorf("title = %q", data.Title)
	}
	if len(keysSeen) < 2 || keysSeen[1] != "fallback-key" {
		t.Errorf("keys seen: %v", keysSeen)
	}
}

func TestFetchVideoDataQuotaExhausted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": 403, "message": "quota", "errors": [{"reason": "quotaExceeded"}]}}`)
	})
	setupTest(t, mux)

	_, err := FetchVideoData(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, engine.ErrQuotaExceeded) {
		t.Errorf("err = %v, want ErrQuotaExceeded", err)
	}
}

// An HTTP 429 is quota exhaustion: mapped to ErrQuotaExceeded after a
// single attempt per key, never retried into a generic upstream error.
func TestFetchVideoDataHTTP429(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"code": 429, "message": "rate limited", "errors": [{"reason": "rateLimitExceeded"}]}}`)
	})
	setupTest(t, mux)

	_, err := FetchVideoData(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, engine.ErrQuotaExceeded) {
		t.Errorf("err = %v, want ErrQuotaExceeded", err)
	}
	if requests != 1 {
		t.Errorf("made %d requests, want 1", requests)
	}
}

func TestAtoi64(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"150000", 150000},
		{"", 0},
		{"junk", 0},
	}
	for _, tt := range tests {
		if got := atoi64(tt.in); got != tt.want {
			t.Errorf("atoi64(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
