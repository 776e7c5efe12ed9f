package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/cloudevents"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/kafka"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/metrics"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

const defaultExpiryWindowDays = 30

// CertificationApplicationService handles certification catalog and
// expiry tracking use cases
type CertificationApplicationService struct {
	certRepo       domain.CertificationRepository
	personnelRepo  domain.PersonnelRepository
	assignmentRepo domain.AssignmentRepository
	notifier       ReadinessNotifier
	producer       EventProducer
	eventFactory   *cloudevents.EventFactory
	metrics        *metrics.Metrics
	logger         *logging.Logger
	clock          Clock
}

// NewCertificationApplicationService creates a new CertificationApplicationService
func NewCertificationApplicationService(
	certRepo domain.CertificationRepository,
	personnelRepo domain.PersonnelRepository,
	assignmentRepo domain.AssignmentRepository,
	notifier ReadinessNotifier,
	producer EventProducer,
	eventFactory *cloudevents.EventFactory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *CertificationApplicationService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &CertificationApplicationService{
		certRepo:       certRepo,
		personnelRepo:  personnelRepo,
		assignmentRepo: assignmentRepo,
		notifier:       notifier,
		producer:       producer,
		eventFactory:   eventFactory,
		metrics:        m,
		logger:         logger,
		clock:          systemClock{},
	}
}

// WithClock overrides the time source, for tests
func (s *CertificationApplicationService) WithClock(clock Clock) *CertificationApplicationService {
	s.clock = clock
	return s
}

// CreateCertification adds an entry to the certification catalog
func (s *CertificationApplicationService) CreateCertification(ctx context.Context, cmd CreateCertificationCommand) (*CertificationDTO, error) {
	cert, err := domain.NewCertification(uuid.New().String(), cmd.Name, cmd.Description, cmd.Category, cmd.TypicalValidityDays)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.certRepo.Save(ctx, cert); err != nil {
		s.logger.WithError(err).Error("Failed to save certification", "certificationId", cert.CertificationID)
		return nil, fmt.Errorf("failed to save certification: %w", err)
	}

	s.logger.Info("Created certification", "certificationId", cert.CertificationID, "name", cert.Name)
	return ToCertificationDTO(cert), nil
}

// ListCertifications retrieves the certification catalog
func (s *CertificationApplicationService) ListCertifications(ctx context.Context) ([]CertificationDTO, error) {
	certs, err := s.certRepo.FindAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list certifications")
		return nil, fmt.Errorf("failed to list certifications: %w", err)
	}
	return ToCertificationDTOs(certs), nil
}

// ListExpiring finds certifications expiring within the window
func (s *CertificationApplicationService) ListExpiring(ctx context.Context, query ListExpiringQuery) ([]ExpiringCertificationDTO, error) {
	daysAhead := query.DaysAhead
	if daysAhead <= 0 {
		daysAhead = defaultExpiryWindowDays
	}

	people, err := s.personnelRepo.FindWithExpirations(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list personnel with expirations")
		return nil, fmt.Errorf("failed to list personnel: %w", err)
	}

	now := s.clock.Now()
	cutoff := now.AddDate(0, 0, daysAhead)

	// Already-expired certifications are included with negative
	// days_until_expiry so one listing covers the whole window.
	expiring := make([]ExpiringCertificationDTO, 0)
	for _, person := range people {
		for cert, expires := range person.CertExpirations {
			if expires.IsZero() || expires.After(cutoff) {
				continue
			}
			days := int(math.Floor(expires.Sub(now).Hours() / 24))
			expiring = append(expiring, ExpiringCertificationDTO{
				PersonnelID:     person.PersonnelID,
				PersonnelName:   person.Name,
				Certification:   cert,
				ExpiresAt:       expires,
				DaysUntilExpiry: days,
				IsExpired:       days < 0,
			})
		}
	}

	sort.Slice(expiring, func(i, j int) bool {
		if !expiring[i].ExpiresAt.Equal(expiring[j].ExpiresAt) {
			return expiring[i].ExpiresAt.Before(expiring[j].ExpiresAt)
		}
		if expiring[i].PersonnelID != expiring[j].PersonnelID {
			return expiring[i].PersonnelID < expiring[j].PersonnelID
		}
		return expiring[i].Certification < expiring[j].Certification
	})

	return expiring, nil
}

// ListExpired finds certifications already past their expiry
func (s *CertificationApplicationService) ListExpired(ctx context.Context) ([]ExpiredCertificationDTO, error) {
	people, err := s.personnelRepo.FindWithExpirations(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list personnel with expirations")
		return nil, fmt.Errorf("failed to list personnel: %w", err)
	}

	now := s.clock.Now()

	expired := make([]ExpiredCertificationDTO, 0)
	for _, person := range people {
		for cert, expires := range person.CertExpirations {
			if expires.IsZero() || !expires.Before(now) {
				continue
			}
			expired = append(expired, ExpiredCertificationDTO{
				PersonnelID:   person.PersonnelID,
				PersonnelName: person.Name,
				Certification: cert,
				ExpiredAt:     expires,
				DaysExpired:   int(now.Sub(expires).Hours() / 24),
			})
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		if !expired[i].ExpiredAt.Equal(expired[j].ExpiredAt) {
			return expired[i].ExpiredAt.Before(expired[j].ExpiredAt)
		}
		if expired[i].PersonnelID != expired[j].PersonnelID {
			return expired[i].PersonnelID < expired[j].PersonnelID
		}
		return expired[i].Certification < expired[j].Certification
	})

	return expired, nil
}

// RunExpiryScan finds responders with expired certifications on record,
// takes them off duty, and refreshes every unit with an on-shift crew
func (s *CertificationApplicationService) RunExpiryScan(ctx context.Context) (*ExpiryScanResultDTO, error) {
	start := time.Now()

	people, err := s.personnelRepo.FindWithExpirations(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list personnel with expirations")
		return nil, fmt.Errorf("failed to list personnel: %w", err)
	}

	now := s.clock.Now()
	expiredFound := 0
	marked := 0

	for _, person := range people {
		expired := person.ExpiredCertifications(now)
		if len(expired) == 0 {
			continue
		}
		expiredFound += len(expired)

		person.MarkUnqualified(expired)
		if err := s.personnelRepo.Save(ctx, person); err != nil {
			s.logger.WithError(err).Warn("Failed to mark personnel unqualified", "personnelId", person.PersonnelID)
			continue
		}
		marked++
	}

	// Every unit with someone on shift gets a refresh, whether or not
	// its readiness actually changed.
	affected := s.unitsOnShift(ctx)

	for _, unitID := range affected {
		s.notifier.UnitChanged(unitID)
	}

	if s.metrics != nil {
		s.metrics.RecordExpiryScan(marked)
	}
	s.logger.ExpiryScan(ctx, expiredFound, marked, len(affected), time.Since(start))

	if s.producer != nil && s.eventFactory != nil {
		event := s.eventFactory.CreateExpiryScanCompletedEvent(ctx, expiredFound, marked, affected, now)
		s.producer.PublishEventAsync(ctx, kafka.Topics.CertificationsEvents, event, nil)
	}

	return &ExpiryScanResultDTO{
		ExpiredFound:      expiredFound,
		MarkedUnqualified: marked,
		AffectedUnits:     affected,
		ScannedAt:         now.Format(time.RFC3339),
	}, nil
}

func (s *CertificationApplicationService) unitsOnShift(ctx context.Context) []string {
	assignments, err := s.assignmentRepo.FindOnShift(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list on-shift assignments for refresh")
		return []string{}
	}

	unitSet := make(map[string]struct{})
	for _, assignment := range assignments {
		unitSet[assignment.UnitID] = struct{}{}
	}

	units := make([]string, 0, len(unitSet))
	for unitID := range unitSet {
		units = append(units, unitID)
	}
	sort.Strings(units)
	return units
}
