package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
)

// AccidentTransformer implements Transformer using the domain curation
// functions followed by an optional geocoding lookup.
type AccidentTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates an AccidentTransformer. Pass a nil geocoder to
// leave coordinates unset.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger) *AccidentTransformer {
	return &AccidentTransformer{
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *AccidentTransformer) Transform(ctx context.Context, raw domain.AccidentRaw) (domain.AccidentCurated, error) {
	acc, err := domain.CurateAccident(raw)
	if err != nil {
		return domain.AccidentCurated{}, err
	}
	return domain.EnrichWithGeocoding(ctx, acc, t.geocoder, t.logger)
}
