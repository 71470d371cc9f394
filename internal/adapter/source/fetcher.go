// Package source retrieves the US avalanche accident listing page and parses
// it into bronze rows.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
	"github.com/couchcryptid/avalanche-accident-etl/internal/observability"
)

const (
	// userAgent mimics a desktop browser; the source rejects default Go clients.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

	accidentTableSelector = "table.us_acc_table"
	unknownSeason         = "Season Unknown"
	minCells              = 5
)

// Fetcher implements pipeline.Extractor by scraping the accident page.
type Fetcher struct {
	url        string
	httpClient *http.Client
	maxRetries uint64
	backoff    func() backoff.BackOff
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher with a per-request timeout and bounded retries
// for transient failures.
func NewFetcher(url string, timeout time.Duration, maxRetries int, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: uint64(maxRetries),
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			return b
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch downloads and parses the accident page. Any failure is a
// *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.AccidentRaw, error) {
	var records []domain.AccidentRaw

	op := func() error {
		body, err := f.get(ctx)
		if err != nil {
			return err
		}
		defer body.Close()

		records, err = Parse(body)
		if err != nil {
			return backoff.Permanent(&domain.FetchError{URL: f.url, Err: err})
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		f.metrics.SourceFetchAttempts.WithLabelValues("retry").Inc()
		f.logger.Warn("source fetch failed, retrying", "url", f.url, "error", err, "wait", wait)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(f.backoff(), f.maxRetries), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		f.metrics.SourceFetchAttempts.WithLabelValues("error").Inc()
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			err = &domain.FetchError{URL: f.url, Err: err}
		}
		return nil, err
	}

	f.metrics.SourceFetchAttempts.WithLabelValues("success").Inc()
	f.logger.Info("source page parsed", "url", f.url, "records", len(records))
	return records, nil
}

// get performs one GET. Network errors, 429, and 5xx responses are
// retryable; any other non-200 status is permanent.
func (f *Fetcher) get(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, backoff.Permanent(&domain.FetchError{URL: f.url, Err: err})
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: f.url, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		fetchErr := &domain.FetchError{URL: f.url, StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, fetchErr
		}
		return nil, backoff.Permanent(fetchErr)
	}
	return resp.Body, nil
}

// Parse extracts accident rows from the listing page. Each accident table is
// labelled by the nearest preceding <h2> sibling ("2023-24 SEASON" ->
// "2023-24"). The first row of each table is its header; remaining rows with
// fewer than five cells are skipped. Output keeps document order.
func Parse(r io.Reader) ([]domain.AccidentRaw, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var records []domain.AccidentRaw
	doc.Find(accidentTableSelector).Each(func(_ int, table *goquery.Selection) {
		season := seasonLabel(table)

		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			cells := row.Find("td")
			if i == 0 || cells.Length() < minCells {
				return
			}
			cell := func(n int) string {
				return strings.TrimSpace(cells.Eq(n).Text())
			}
			records = append(records, domain.AccidentRaw{
				Season:      season,
				Date:        cell(0),
				State:       cell(1),
				Location:    cell(2),
				Description: cell(3),
				Fatalities:  cell(4),
			})
		})
	})
	return records, nil
}

func seasonLabel(table *goquery.Selection) string {
	for s := table.Prev(); s.Length() > 0; s = s.Prev() {
		if goquery.NodeName(s) == "h2" {
			before, _, _ := strings.Cut(s.Text(), " SEASON")
			return strings.TrimSpace(before)
		}
	}
	return unknownSeason
}
