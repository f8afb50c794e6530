// Package scrape collects video metadata and viewer comments through the
// YouTube Data API v3. It is the mandatory first stage of every analysis:
// transcripts are optional, comments are not.
package scrape

import "time"

// Comment is one top-level viewer comment, plain text.
type Comment struct {
	Text        string `json:"text"`
	Author      string `json:"author"`
	Likes       int64  `json:"likes"`
	Replies     int64  `json:"replies"`
	PublishedAt string `json:"publishedAt"`
}

// ScrapedData is the full scrape output for one video.
type ScrapedData struct {
	VideoID      string    `json:"videoId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ChannelName  string    `json:"channelName"`
	ChannelID    string    `json:"channelId"`
	PublishedAt  string    `json:"publishedAt"`
	ViewCount    int64     `json:"viewCount"`
	LikeCount    int64     `json:"likeCount"`
	CommentCount int64     `json:"commentCount"`
	Duration     string    `json:"duration"` // ISO 8601, as reported by the API
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Comments     []Comment `json:"comments"`
	ScrapedAt    time.Time `json:"scrapedAt"`
}
