package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
)

// RunEvery runs immediately and then once per interval until ctx is
// cancelled. Runs never overlap: a tick that fires during a run is dropped by
// the ticker. jobID is called once per run.
func (p *Pipeline) RunEvery(ctx context.Context, interval time.Duration, jobID func() string) error {
	p.logger.Info("scheduler started", "interval", interval)

	ticker := domain.Clock().NewTicker(interval)
	defer ticker.Stop()

	for ctx.Err() == nil {
		p.Run(ctx, jobID())

		select {
		case <-ctx.Done():
		case <-ticker.Chan():
		}
	}
	p.logger.Info("scheduler stopping", "reason", ctx.Err())
	return nil
}
