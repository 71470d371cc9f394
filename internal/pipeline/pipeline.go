// Package pipeline runs one extract, load, transform pass over the accident
// listing and records its outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
	"github.com/couchcryptid/avalanche-accident-etl/internal/observability"
)

// Extractor returns every accident currently listed at the source, in
// document order.
type Extractor interface {
	Fetch(ctx context.Context) ([]domain.AccidentRaw, error)
}

// Transformer converts a stored bronze row into its curated form.
type Transformer interface {
	Transform(ctx context.Context, raw domain.AccidentRaw) (domain.AccidentCurated, error)
}

// Store is the persistence port for bronze rows, silver rows and run logs.
type Store interface {
	CountRaw(ctx context.Context) (int64, error)
	// WithinTx runs fn in one transaction, rolling back on any error.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	InsertRunLog(ctx context.Context, l domain.RunLog) error
}

// Tx is the set of writes that must commit together.
type Tx interface {
	AppendRaw(ctx context.Context, rows []domain.AccidentRaw) error
	// ListRaw returns every bronze row ordered by id, including rows
	// appended earlier in the same transaction.
	ListRaw(ctx context.Context) ([]domain.AccidentRaw, error)
	AppendCurated(ctx context.Context, rows []domain.AccidentCurated) error
}

// Invalidator tells the read API its cached data is stale.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Publisher fans committed accidents out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, jobID string, accidents []domain.AccidentCurated) error
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

const defaultRunLogTimeout = 10 * time.Second

// Option configures optional pipeline collaborators and behaviour.
type Option func(*Pipeline)

// WithInvalidator sets the cache invalidator called after a run that wrote data.
func WithInvalidator(inv Invalidator) Option {
	return func(p *Pipeline) { p.invalidator = inv }
}

// WithPublisher sets the publisher that receives newly curated accidents.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithFailOnSourceShrink makes a run fail when the source lists fewer
// accidents than the bronze table holds. By default the run succeeds with
// nothing ingested.
func WithFailOnSourceShrink(fail bool) Option {
	return func(p *Pipeline) { p.failOnShrink = fail }
}

// WithRunLogTimeout bounds the final run log write.
func WithRunLogTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.runLogTimeout = d }
}

// Pipeline orchestrates one ELT run at a time.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	store       Store
	invalidator Invalidator
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics

	failOnShrink  bool
	runLogTimeout time.Duration

	running atomic.Bool
	ready   atomic.Bool
	mu      sync.Mutex
	last    *Result
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, s Store, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:     e,
		transformer:   t,
		store:         s,
		logger:        logger,
		metrics:       metrics,
		runLogTimeout: defaultRunLogTimeout,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ErrRunInProgress is returned by Run when another run has not finished.
var ErrRunInProgress = errors.New("an ELT run is already in progress")

// Run performs one complete execution under jobID and returns its outcome.
// Every execution writes exactly one run log row, whatever fails before it.
// A call made while another run is active returns ErrRunInProgress without
// touching the store.
func (p *Pipeline) Run(ctx context.Context, jobID string) Result {
	res := Result{JobID: jobID, StartTime: domain.Clock().Now()}
	if !p.running.CompareAndSwap(false, true) {
		res.EndTime = res.StartTime
		res.Status = domain.RunStatusFailure
		res.Err = ErrRunInProgress
		return res
	}
	defer p.running.Store(false)

	logger := p.logger.With("job_id", jobID)
	logger.Info("elt run started")

	curated, err := p.execute(ctx, logger, &res)
	res.EndTime = domain.Clock().Now()
	if err != nil {
		res.Status = domain.RunStatusFailure
		res.Err = err
		res.DataCount = 0
		logger.Error("elt run failed", "error", err, "duration", res.Duration())
	} else {
		res.Status = domain.RunStatusSuccess
		res.DataCount = len(curated)
		logger.Info("elt run succeeded", "data_count", res.DataCount, "duration", res.Duration())
	}

	if res.Status == domain.RunStatusSuccess && res.DataCount > 0 {
		p.invalidateCache(ctx, logger)
		p.publish(ctx, logger, jobID, curated)
	}

	p.recordMetrics(res)
	p.writeRunLog(ctx, logger, res)

	p.mu.Lock()
	p.last = &res
	p.mu.Unlock()
	p.ready.Store(true)
	return res
}

// execute runs extract, reconcile and the transactional load/transform. It
// returns the curated rows committed by this run.
func (p *Pipeline) execute(ctx context.Context, logger *slog.Logger, res *Result) ([]domain.AccidentCurated, error) {
	scraped, err := p.extractor.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	res.Scraped = len(scraped)
	p.metrics.RecordsScraped.Set(float64(len(scraped)))

	stored, err := p.store.CountRaw(ctx)
	if err != nil {
		return nil, err
	}
	res.Stored = stored

	rec := domain.Reconcile(scraped, stored)
	res.New = len(rec.New)
	logger.Info("source reconciled", "scraped", rec.Scraped, "stored", rec.Stored, "new", len(rec.New))

	if rec.Shrunk {
		res.Shrunk = true
		p.metrics.SourceShrinks.Inc()
		logger.Warn("source lists fewer accidents than stored", "scraped", rec.Scraped, "stored", rec.Stored)
		if p.failOnShrink {
			return nil, fmt.Errorf("%w: scraped %d, stored %d", domain.ErrSourceShrunk, rec.Scraped, rec.Stored)
		}
	}
	if len(rec.New) == 0 {
		return nil, nil
	}

	var curated []domain.AccidentCurated
	err = p.store.WithinTx(ctx, func(tx Tx) error {
		var txErr error
		curated, txErr = p.loadAndTransform(ctx, tx, rec.New)
		return txErr
	})
	if err != nil {
		// The transaction was rolled back; the cause stays reachable via
		// errors.As so row-level failures remain identifiable.
		return nil, &domain.PersistenceError{Err: err}
	}
	return curated, nil
}

// loadAndTransform appends the new bronze rows, re-reads the bronze table and
// curates the last len(fresh) rows of that view, which are the rows just
// appended. Any row failure aborts the whole batch.
func (p *Pipeline) loadAndTransform(ctx context.Context, tx Tx, fresh []domain.AccidentRaw) ([]domain.AccidentCurated, error) {
	if err := tx.AppendRaw(ctx, fresh); err != nil {
		return nil, err
	}

	all, err := tx.ListRaw(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) < len(fresh) {
		return nil, fmt.Errorf("bronze table holds %d rows after appending %d", len(all), len(fresh))
	}
	appended := all[len(all)-len(fresh):]

	curated := make([]domain.AccidentCurated, 0, len(appended))
	for _, raw := range appended {
		acc, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			return nil, err
		}
		curated = append(curated, acc)
	}

	if err := tx.AppendCurated(ctx, curated); err != nil {
		return nil, err
	}
	return curated, nil
}

func (p *Pipeline) invalidateCache(ctx context.Context, logger *slog.Logger) {
	if p.invalidator == nil {
		return
	}
	if err := p.invalidator.Invalidate(ctx); err != nil {
		p.metrics.CacheInvalidations.WithLabelValues("error").Inc()
		logger.Warn("cache invalidation failed", "error", err)
		return
	}
	p.metrics.CacheInvalidations.WithLabelValues("success").Inc()
	logger.Info("cache invalidated")
}

func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, jobID string, curated []domain.AccidentCurated) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, jobID, curated); err != nil {
		logger.Warn("publish accidents failed", "error", err, "count", len(curated))
		return
	}
	p.metrics.AccidentsPublished.Add(float64(len(curated)))
}

func (p *Pipeline) recordMetrics(res Result) {
	p.metrics.Runs.WithLabelValues(string(res.Status)).Inc()
	p.metrics.RunDuration.Observe(res.Duration().Seconds())
	if res.Status == domain.RunStatusSuccess {
		p.metrics.RecordsIngested.Add(float64(res.DataCount))
		p.metrics.LastSuccess.Set(float64(res.EndTime.Unix()))
	}
}

// writeRunLog detaches from ctx so a cancelled or timed-out run is still
// recorded.
func (p *Pipeline) writeRunLog(ctx context.Context, logger *slog.Logger, res Result) {
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.runLogTimeout)
	defer cancel()

	if err := p.store.InsertRunLog(logCtx, res.RunLog()); err != nil {
		logger.Error("write run log failed", "error", err)
	}
}

// CheckReadiness returns nil once the pipeline has completed a run and the
// store, if it can, answers a ping.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	if pinger, ok := p.store.(Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			return fmt.Errorf("database unreachable: %w", err)
		}
	}
	return nil
}

// LastResult returns the outcome of the most recent completed run.
func (p *Pipeline) LastResult() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Result{}, false
	}
	return *p.last, true
}
