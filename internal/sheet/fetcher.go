package sheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxBodySize caps how much of a sheet export is read. Published CSVs
// are a few KB; anything near this limit is not a sheet.
const maxBodySize = 10 << 20

// Fetcher downloads a published CSV endpoint and decodes it into
// records. It is the one deliberate fail-soft boundary in the system:
// any network, status, or decode failure is logged and degrades to an
// empty record sequence, never an error.
type Fetcher struct {
	client  *http.Client
	decoder Decoder
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewFetcher(timeout time.Duration, decoder Decoder, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		decoder: decoder,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
		logger:  logger,
	}
}

// Fetch returns the decoded records of the sheet at url. An empty url
// returns immediately with no network call.
func (f *Fetcher) Fetch(ctx context.Context, url string) []Record {
	if url == "" {
		f.logger.Warn("sheet URL not configured, skipping fetch")
		return nil
	}

	records, err := f.fetch(ctx, url)
	if err != nil {
		f.logger.Warn("failed to fetch sheet", zap.String("url", url), zap.Error(err))
		return nil
	}
	return records
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]Record, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	records, err := f.decoder.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	return records, nil
}
