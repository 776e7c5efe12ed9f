package warehouse

import (
	"context"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

// NoopSink discards readiness reports. Used when no warehouse is
// configured; History always comes back empty.
type NoopSink struct{}

func NewNoopSink() *NoopSink { return &NoopSink{} }

func (s *NoopSink) RecordReport(ctx context.Context, report *domain.ReadinessReport) error {
	return nil
}

func (s *NoopSink) History(ctx context.Context, unitID string, limit int) ([]domain.ReadinessSample, error) {
	return []domain.ReadinessSample{}, nil
}
