// Package history persists analysis reports so past runs can be listed
// and reopened. SQLite is the default backend; Postgres is used when a
// DATABASE_URL is configured.
package history

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// Record is one saved analysis. Report holds the full report JSON;
// List omits it to keep listings cheap.
type Record struct {
	ID            string          `json:"id"`
	VideoID       string          `json:"videoId"`
	VideoTitle    string          `json:"videoTitle"`
	Channel       string          `json:"videoChannel"`
	VideoURL      string          `json:"videoUrl"`
	Model         string          `json:"modelUsed"`
	TotalComments int             `json:"totalComments"`
	CreatedAt     time.Time       `json:"createdAt"`
	Report        json.RawMessage `json:"analysis,omitempty"`
}

// Store is the persistence interface. Writes are last-write-wins; there
// are no cross-record transactions.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	List(ctx context.Context, limit int) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open picks the backend: Postgres when databaseURL is set, else SQLite
// at sqlitePath.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		return openPostgres(ctx, databaseURL)
	}
	return openSQLite(sqlitePath)
}

func newID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("h%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func prepareRecord(rec *Record) {
	if rec.ID == "" {
		rec.ID = newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	engine.IncrHistoryWrite()
}
