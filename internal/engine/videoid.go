package engine

import "regexp"

// Video IDs are exactly 11 characters of [A-Za-z0-9_-]. The URL pattern
// covers watch, short (youtu.be), embed, /v/ and shorts links; a bare ID
// is accepted as-is.
var (
	videoURLRe  = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`)
	bareVideoRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractVideoID pulls the 11-char video ID from any supported YouTube URL
// shape, or returns the input unchanged if it already is a bare ID.
// Returns "" when no identifier can be extracted.
func ExtractVideoID(urlOrID string) string {
	if bareVideoRe.MatchString(urlOrID) {
		return urlOrID
	}
	if m := videoURLRe.FindStringSubmatch(urlOrID); len(m) >= 2 {
		return m[1]
	}
	return ""
}
