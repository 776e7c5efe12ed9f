package application

import (
	"context"
	"fmt"
	"time"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/cloudevents"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/kafka"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/metrics"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

// EventProducer publishes CloudEvents to the message broker
type EventProducer interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.CloudEvent) error
	PublishEventAsync(ctx context.Context, topic string, event *cloudevents.CloudEvent, callback func(error))
}

// ReadinessApplicationService evaluates unit readiness on demand
type ReadinessApplicationService struct {
	unitRepo       domain.UnitRepository
	personnelRepo  domain.PersonnelRepository
	assignmentRepo domain.AssignmentRepository
	sink           domain.ReadinessSink
	producer       EventProducer
	eventFactory   *cloudevents.EventFactory
	metrics        *metrics.Metrics
	logger         *logging.Logger
	clock          Clock
}

// NewReadinessApplicationService creates a new ReadinessApplicationService
func NewReadinessApplicationService(
	unitRepo domain.UnitRepository,
	personnelRepo domain.PersonnelRepository,
	assignmentRepo domain.AssignmentRepository,
	sink domain.ReadinessSink,
	producer EventProducer,
	eventFactory *cloudevents.EventFactory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ReadinessApplicationService {
	return &ReadinessApplicationService{
		unitRepo:       unitRepo,
		personnelRepo:  personnelRepo,
		assignmentRepo: assignmentRepo,
		sink:           sink,
		producer:       producer,
		eventFactory:   eventFactory,
		metrics:        m,
		logger:         logger,
		clock:          systemClock{},
	}
}

// WithClock overrides the time source, for tests
func (s *ReadinessApplicationService) WithClock(clock Clock) *ReadinessApplicationService {
	s.clock = clock
	return s
}

// GetUnitReadiness evaluates a single unit's readiness right now
func (s *ReadinessApplicationService) GetUnitReadiness(ctx context.Context, query GetUnitReadinessQuery) (*domain.ReadinessReport, error) {
	unit, err := s.unitRepo.FindByID(ctx, query.UnitID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get unit", "unitId", query.UnitID)
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	if unit == nil {
		return nil, errors.ErrUnitNotFound(query.UnitID)
	}

	return s.evaluate(ctx, unit)
}

// CheckAllUnits evaluates every active unit. Units that fail to
// evaluate are skipped so one bad unit cannot hide the rest of the
// dashboard.
func (s *ReadinessApplicationService) CheckAllUnits(ctx context.Context) ([]domain.ReadinessReport, error) {
	units, err := s.unitRepo.FindActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list active units")
		return nil, fmt.Errorf("failed to list active units: %w", err)
	}

	reports := make([]domain.ReadinessReport, 0, len(units))
	for _, unit := range units {
		report, err := s.evaluate(ctx, unit)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping unit in readiness sweep", "unitId", unit.UnitID)
			continue
		}
		reports = append(reports, *report)
	}

	return reports, nil
}

// GetReadinessHistory fetches historical readiness samples from the
// analytics warehouse
func (s *ReadinessApplicationService) GetReadinessHistory(ctx context.Context, query GetReadinessHistoryQuery) ([]domain.ReadinessSample, error) {
	unit, err := s.unitRepo.FindByID(ctx, query.UnitID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get unit", "unitId", query.UnitID)
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	if unit == nil {
		return nil, errors.ErrUnitNotFound(query.UnitID)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	samples, err := s.sink.History(ctx, query.UnitID, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch readiness history", "unitId", query.UnitID)
		return nil, fmt.Errorf("failed to fetch readiness history: %w", err)
	}

	return samples, nil
}

func (s *ReadinessApplicationService) evaluate(ctx context.Context, unit *domain.Unit) (*domain.ReadinessReport, error) {
	start := time.Now()
	now := s.clock.Now()

	assignments, err := s.assignmentRepo.FindByUnit(ctx, unit.UnitID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list assignments", "unitId", unit.UnitID)
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	members := make([]domain.AssignedMember, 0, len(assignments))
	for _, assignment := range assignments {
		if !assignment.IsActiveAt(now) {
			continue
		}
		person, err := s.personnelRepo.FindByID(ctx, assignment.PersonnelID)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to load assigned personnel",
				"unitId", unit.UnitID, "personnelId", assignment.PersonnelID)
			continue
		}
		if person == nil {
			// Dangling assignment; the responder was deleted
			continue
		}
		members = append(members, domain.AssignedMember{Person: person, Assignment: assignment})
	}

	report := domain.ComputeReadiness(unit, members, now)

	if s.metrics != nil {
		s.metrics.RecordReadinessEvaluation(unit.UnitID, float64(report.ReadinessScore), report.IsUnderstaffed)
	}
	s.logger.ReadinessEvaluated(ctx, unit.UnitID, report.ReadinessScore, report.IsUnderstaffed, time.Since(start))

	if s.sink != nil {
		if err := s.sink.RecordReport(ctx, report); err != nil {
			s.logger.WithError(err).Warn("Failed to record readiness report", "unitId", unit.UnitID)
		}
	}

	if s.producer != nil && s.eventFactory != nil {
		event := s.eventFactory.CreateReadinessEvaluatedEvent(ctx,
			unit.UnitID,
			report.ReadinessScore,
			report.StaffRequired,
			report.StaffPresent,
			report.IsUnderstaffed,
			report.Timestamp,
		)
		event.WithStation(unit.StationID)
		s.producer.PublishEventAsync(ctx, kafka.Topics.ReadinessEvents, event, nil)
	}

	return report, nil
}
