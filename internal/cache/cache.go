package cache

import (
	"context"
	"time"

	"github.com/01101011010/Martin-Simonson/internal/sheet"
)

// Snapshot is the payload stored per category: the records of exactly
// one fetch, stamped with when it happened. A snapshot is never a
// partial merge of old and new rows; it is overwritten wholesale.
type Snapshot struct {
	FetchedAt time.Time      `json:"fetched_at"`
	Records   []sheet.Record `json:"records"`
}

// Store persists one snapshot per logical key.
//
// Load returns (nil, nil) on a miss. A stored entry that cannot be
// decoded is returned as an error; callers treat it as a miss.
type Store interface {
	Load(ctx context.Context, key string) (*Snapshot, error)
	Save(ctx context.Context, key string, snap *Snapshot) error
	Close() error
}
