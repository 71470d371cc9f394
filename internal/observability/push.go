package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJobName groups one-shot runs on the Pushgateway.
const PushJobName = "avalanche_etl"

// Push sends the job's metrics to a Prometheus Pushgateway, replacing the
// previous push for the same job and instance. One-shot runs exit before a
// scrape could see them, so this is how their metrics survive.
func (m *Metrics) Push(ctx context.Context, gatewayURL, instance string) error {
	p := push.New(gatewayURL, PushJobName).Grouping("instance", instance)
	for _, c := range m.collectors() {
		p = p.Collector(c)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
