package content

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/01101011010/Martin-Simonson/internal/cache"
	"github.com/01101011010/Martin-Simonson/internal/monitoring"
	"github.com/01101011010/Martin-Simonson/internal/sheet"
)

// Category is one of the three logical cache keys.
type Category string

const (
	Books Category = "books"
	Talks Category = "talks"
	News  Category = "news"
)

func Categories() []Category {
	return []Category{Books, Talks, News}
}

// Fetcher downloads a sheet; it degrades to an empty sequence on any
// failure rather than returning an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) []sheet.Record
}

// Archive optionally records every fetch outcome for the site operator.
type Archive interface {
	RecordFetch(ctx context.Context, category string, fetchedAt time.Time, rows int) error
}

// Service is the cache-or-fetch layer between the renderers and the
// sheet endpoints. A snapshot younger than the freshness window is
// served verbatim with no network access; otherwise the category is
// refetched and the snapshot overwritten, even when the fetch came
// back empty, so a failing endpoint is not hammered on every page load.
type Service struct {
	store   cache.Store
	fetcher Fetcher
	urls    map[Category]string
	window  time.Duration
	metrics *monitoring.Metrics
	archive Archive // may be nil
	logger  *zap.Logger
	group   singleflight.Group
	now     func() time.Time
}

func NewService(store cache.Store, fetcher Fetcher, urls map[Category]string, window time.Duration,
	m *monitoring.Metrics, archive Archive, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
		urls:    urls,
		window:  window,
		metrics: m,
		archive: archive,
		logger:  logger,
		now:     time.Now,
	}
}

// Records returns the category's records, from the cache when fresh.
func (s *Service) Records(ctx context.Context, cat Category) []sheet.Record {
	snap, err := s.store.Load(ctx, string(cat))
	if err != nil {
		// A snapshot we can't read is a miss, not a failure.
		s.logger.Warn("unreadable cache entry", zap.String("category", string(cat)), zap.Error(err))
		snap = nil
	}

	if snap != nil && s.now().Sub(snap.FetchedAt) < s.window {
		s.metrics.IncCacheLookup(string(cat), "hit")
		return snap.Records
	}

	s.metrics.IncCacheLookup(string(cat), "miss")
	return s.refresh(ctx, cat)
}

// Refresh refetches the category, bypassing the freshness check when
// forced.
func (s *Service) Refresh(ctx context.Context, cat Category, force bool) []sheet.Record {
	if !force {
		return s.Records(ctx, cat)
	}
	return s.refresh(ctx, cat)
}

func (s *Service) refresh(ctx context.Context, cat Category) []sheet.Record {
	// Concurrent refreshes of the same key collapse into one fetch;
	// snapshots are idempotent full copies, so last-writer-wins is safe.
	v, _, _ := s.group.Do(string(cat), func() (interface{}, error) {
		records := s.fetcher.Fetch(ctx, s.urls[cat])

		result := "ok"
		if len(records) == 0 {
			result = "empty"
		}
		s.metrics.IncSheetFetch(string(cat), result)

		now := s.now()
		snap := &cache.Snapshot{FetchedAt: now, Records: records}
		if err := s.store.Save(ctx, string(cat), snap); err != nil {
			s.logger.Error("failed to save snapshot", zap.String("category", string(cat)), zap.Error(err))
		}

		if s.archive != nil {
			if err := s.archive.RecordFetch(ctx, string(cat), now, len(records)); err != nil {
				s.logger.Error("failed to archive fetch", zap.String("category", string(cat)), zap.Error(err))
			}
		}

		return records, nil
	})

	records, _ := v.([]sheet.Record)
	return records
}

// CategoryStatus describes one cached snapshot for the status endpoint.
type CategoryStatus struct {
	Category   string     `json:"category"`
	Rows       int        `json:"rows"`
	FetchedAt  *time.Time `json:"fetched_at,omitempty"`
	AgeSeconds float64    `json:"age_seconds,omitempty"`
	Fresh      bool       `json:"fresh"`
}

// Status reports the age and size of every cached snapshot without
// triggering any fetch.
func (s *Service) Status(ctx context.Context) []CategoryStatus {
	statuses := make([]CategoryStatus, 0, len(Categories()))
	for _, cat := range Categories() {
		st := CategoryStatus{Category: string(cat)}
		snap, err := s.store.Load(ctx, string(cat))
		if err != nil {
			s.logger.Warn("unreadable cache entry", zap.String("category", string(cat)), zap.Error(err))
		} else if snap != nil {
			age := s.now().Sub(snap.FetchedAt)
			fetchedAt := snap.FetchedAt
			st.Rows = len(snap.Records)
			st.FetchedAt = &fetchedAt
			st.AgeSeconds = age.Seconds()
			st.Fresh = age < s.window
		}
		statuses = append(statuses, st)
	}
	return statuses
}
