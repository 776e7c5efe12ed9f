package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/metrics"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

// ReadinessNotifier is told when a unit's readiness may have changed so
// live subscribers can be refreshed. Implementations must not block.
type ReadinessNotifier interface {
	UnitChanged(unitID string)
}

// NoopNotifier discards change notifications
type NoopNotifier struct{}

func (NoopNotifier) UnitChanged(string) {}

// RosterApplicationService handles personnel, unit, and assignment use cases
type RosterApplicationService struct {
	personnelRepo  domain.PersonnelRepository
	unitRepo       domain.UnitRepository
	assignmentRepo domain.AssignmentRepository
	notifier       ReadinessNotifier
	metrics        *metrics.Metrics
	logger         *logging.Logger
}

// NewRosterApplicationService creates a new RosterApplicationService
func NewRosterApplicationService(
	personnelRepo domain.PersonnelRepository,
	unitRepo domain.UnitRepository,
	assignmentRepo domain.AssignmentRepository,
	notifier ReadinessNotifier,
	m *metrics.Metrics,
	logger *logging.Logger,
) *RosterApplicationService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &RosterApplicationService{
		personnelRepo:  personnelRepo,
		unitRepo:       unitRepo,
		assignmentRepo: assignmentRepo,
		notifier:       notifier,
		metrics:        m,
		logger:         logger,
	}
}

// RegisterPersonnel registers a new responder
func (s *RosterApplicationService) RegisterPersonnel(ctx context.Context, cmd RegisterPersonnelCommand) (*PersonnelDTO, error) {
	person, err := domain.NewPersonnel(uuid.New().String(), cmd.Name, cmd.Rank, cmd.Role, cmd.StationID)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if len(cmd.Certifications) > 0 || len(cmd.CertExpirations) > 0 {
		person.SetCertifications(cmd.Certifications, cmd.CertExpirations)
	}

	if cmd.Availability != "" && cmd.Availability != person.Availability {
		if err := person.SetAvailability(cmd.Availability); err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
	}

	if err := s.personnelRepo.Save(ctx, person); err != nil {
		s.logger.WithError(err).Error("Failed to save personnel", "personnelId", person.PersonnelID)
		return nil, fmt.Errorf("failed to save personnel: %w", err)
	}

	s.logger.Info("Registered personnel", "personnelId", person.PersonnelID, "role", person.Role)
	return ToPersonnelDTO(person), nil
}

// GetPersonnel retrieves a responder by ID
func (s *RosterApplicationService) GetPersonnel(ctx context.Context, query GetPersonnelQuery) (*PersonnelDTO, error) {
	person, err := s.findPersonnel(ctx, query.PersonnelID)
	if err != nil {
		return nil, err
	}
	return ToPersonnelDTO(person), nil
}

// ListPersonnel retrieves responders, optionally filtered by availability
func (s *RosterApplicationService) ListPersonnel(ctx context.Context, query ListPersonnelQuery) ([]PersonnelDTO, error) {
	if query.Availability != "" {
		status := domain.AvailabilityStatus(strings.ToUpper(query.Availability))
		if !status.IsValid() {
			return nil, errors.ErrValidation(fmt.Sprintf("invalid availability status: %s", query.Availability))
		}
		people, err := s.personnelRepo.FindByAvailability(ctx, status)
		if err != nil {
			s.logger.WithError(err).Error("Failed to list personnel by availability", "availability", status)
			return nil, fmt.Errorf("failed to list personnel: %w", err)
		}
		return ToPersonnelDTOs(people), nil
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	people, err := s.personnelRepo.FindAll(ctx, limit, query.Offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list personnel")
		return nil, fmt.Errorf("failed to list personnel: %w", err)
	}
	return ToPersonnelDTOs(people), nil
}

// UpdatePersonnel updates a responder's profile
func (s *RosterApplicationService) UpdatePersonnel(ctx context.Context, cmd UpdatePersonnelCommand) (*PersonnelDTO, error) {
	person, err := s.findPersonnel(ctx, cmd.PersonnelID)
	if err != nil {
		return nil, err
	}

	if err := person.UpdateProfile(cmd.Name, cmd.Rank, cmd.Role, cmd.StationID); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.personnelRepo.Save(ctx, person); err != nil {
		s.logger.WithError(err).Error("Failed to save personnel", "personnelId", cmd.PersonnelID)
		return nil, fmt.Errorf("failed to save personnel: %w", err)
	}

	s.logger.Info("Updated personnel", "personnelId", cmd.PersonnelID)
	return ToPersonnelDTO(person), nil
}

// SetAvailability changes a responder's availability status. Live
// subscribers of the responder's current unit are refreshed.
func (s *RosterApplicationService) SetAvailability(ctx context.Context, cmd SetAvailabilityCommand) (*PersonnelDTO, error) {
	person, err := s.findPersonnel(ctx, cmd.PersonnelID)
	if err != nil {
		return nil, err
	}

	if err := person.SetAvailability(cmd.Availability); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.personnelRepo.Save(ctx, person); err != nil {
		s.logger.WithError(err).Error("Failed to save personnel", "personnelId", cmd.PersonnelID)
		return nil, fmt.Errorf("failed to save personnel: %w", err)
	}

	if person.CurrentUnitID != nil {
		s.notifier.UnitChanged(*person.CurrentUnitID)
	}

	s.logger.Info("Changed availability", "personnelId", cmd.PersonnelID, "availability", cmd.Availability)
	return ToPersonnelDTO(person), nil
}

// CheckIn records a responder check-in
func (s *RosterApplicationService) CheckIn(ctx context.Context, cmd CheckInCommand) (*PersonnelDTO, error) {
	person, err := s.findPersonnel(ctx, cmd.PersonnelID)
	if err != nil {
		return nil, err
	}

	person.CheckIn()

	if err := s.personnelRepo.Save(ctx, person); err != nil {
		s.logger.WithError(err).Error("Failed to save personnel", "personnelId", cmd.PersonnelID)
		return nil, fmt.Errorf("failed to save personnel: %w", err)
	}

	return ToPersonnelDTO(person), nil
}

// SetCertifications replaces a responder's certifications
func (s *RosterApplicationService) SetCertifications(ctx context.Context, cmd SetCertificationsCommand) (*PersonnelDTO, error) {
	person, err := s.findPersonnel(ctx, cmd.PersonnelID)
	if err != nil {
		return nil, err
	}

	person.SetCertifications(cmd.Certifications, cmd.CertExpirations)

	if err := s.personnelRepo.Save(ctx, person); err != nil {
		s.logger.WithError(err).Error("Failed to save personnel", "personnelId", cmd.PersonnelID)
		return nil, fmt.Errorf("failed to save personnel: %w", err)
	}

	if person.CurrentUnitID != nil {
		s.notifier.UnitChanged(*person.CurrentUnitID)
	}

	s.logger.Info("Updated certifications", "personnelId", cmd.PersonnelID, "count", len(cmd.Certifications))
	return ToPersonnelDTO(person), nil
}

// CreateUnit creates a new response unit
func (s *RosterApplicationService) CreateUnit(ctx context.Context, cmd CreateUnitCommand) (*UnitDTO, error) {
	unitType := domain.UnitType(strings.ToUpper(cmd.Type))
	unit, err := domain.NewUnit(uuid.New().String(), cmd.Name, unitType, cmd.MinimumStaff, cmd.RequiredCertifications, cmd.StationID)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		s.logger.WithError(err).Error("Failed to save unit", "unitId", unit.UnitID)
		return nil, fmt.Errorf("failed to save unit: %w", err)
	}

	s.logger.Info("Created unit", "unitId", unit.UnitID, "unitType", unit.Type)
	return ToUnitDTO(unit), nil
}

// GetUnit retrieves a unit by ID
func (s *RosterApplicationService) GetUnit(ctx context.Context, query GetUnitQuery) (*UnitDTO, error) {
	unit, err := s.findUnit(ctx, query.UnitID)
	if err != nil {
		return nil, err
	}
	return ToUnitDTO(unit), nil
}

// ListUnits retrieves units
func (s *RosterApplicationService) ListUnits(ctx context.Context, query ListUnitsQuery) ([]UnitDTO, error) {
	if query.ActiveOnly {
		units, err := s.unitRepo.FindActive(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Failed to list active units")
			return nil, fmt.Errorf("failed to list units: %w", err)
		}
		return ToUnitDTOs(units), nil
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	units, err := s.unitRepo.FindAll(ctx, limit, query.Offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list units")
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return ToUnitDTOs(units), nil
}

// UpdateUnit updates a unit's configuration. Subscribers are refreshed
// since staffing thresholds may have changed.
func (s *RosterApplicationService) UpdateUnit(ctx context.Context, cmd UpdateUnitCommand) (*UnitDTO, error) {
	unit, err := s.findUnit(ctx, cmd.UnitID)
	if err != nil {
		return nil, err
	}

	if err := unit.UpdateConfiguration(cmd.Name, cmd.MinimumStaff, cmd.RequiredCertifications); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		s.logger.WithError(err).Error("Failed to save unit", "unitId", cmd.UnitID)
		return nil, fmt.Errorf("failed to save unit: %w", err)
	}

	s.notifier.UnitChanged(cmd.UnitID)

	s.logger.Info("Updated unit", "unitId", cmd.UnitID)
	return ToUnitDTO(unit), nil
}

// DeactivateUnit takes a unit out of service
func (s *RosterApplicationService) DeactivateUnit(ctx context.Context, cmd DeactivateUnitCommand) (*UnitDTO, error) {
	unit, err := s.findUnit(ctx, cmd.UnitID)
	if err != nil {
		return nil, err
	}

	unit.Deactivate()

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		s.logger.WithError(err).Error("Failed to save unit", "unitId", cmd.UnitID)
		return nil, fmt.Errorf("failed to save unit: %w", err)
	}

	s.logger.Info("Deactivated unit", "unitId", cmd.UnitID)
	return ToUnitDTO(unit), nil
}

// CreateAssignment places a responder on a unit shift. The responder
// must hold every certification the unit requires.
func (s *RosterApplicationService) CreateAssignment(ctx context.Context, cmd CreateAssignmentCommand) (*AssignmentDTO, error) {
	person, err := s.findPersonnel(ctx, cmd.PersonnelID)
	if err != nil {
		return nil, err
	}

	unit, err := s.findUnit(ctx, cmd.UnitID)
	if err != nil {
		return nil, err
	}

	if !unit.Active {
		return nil, errors.ErrValidation(fmt.Sprintf("unit %s is not active", cmd.UnitID))
	}

	missing := make([]string, 0)
	for _, cert := range unit.RequiredCertifications {
		if !person.HasCertification(cert) {
			missing = append(missing, cert)
		}
	}
	if len(missing) > 0 {
		appErr := errors.ErrValidation(fmt.Sprintf("personnel missing required certifications: %s", strings.Join(missing, ", ")))
		return nil, appErr.WithDetail("missing_certifications", strings.Join(missing, ", "))
	}

	assignment, err := domain.NewUnitAssignment(uuid.New().String(), cmd.UnitID, cmd.PersonnelID, person.Role, cmd.ShiftStart, cmd.ShiftEnd)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.assignmentRepo.Save(ctx, assignment); err != nil {
		s.logger.WithError(err).Error("Failed to save assignment", "unitId", cmd.UnitID, "personnelId", cmd.PersonnelID)
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}

	person.Deploy(cmd.UnitID)
	if err := s.personnelRepo.Save(ctx, person); err != nil {
		s.logger.WithError(err).Error("Failed to save personnel", "personnelId", cmd.PersonnelID)
		return nil, fmt.Errorf("failed to save personnel: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordAssignmentCreated(string(unit.Type))
	}
	s.notifier.UnitChanged(cmd.UnitID)

	s.logger.Info("Created assignment",
		"assignmentId", assignment.AssignmentID,
		"unitId", cmd.UnitID,
		"personnelId", cmd.PersonnelID)
	return ToAssignmentDTO(assignment), nil
}

// EndAssignment ends a shift early and releases the responder
func (s *RosterApplicationService) EndAssignment(ctx context.Context, cmd EndAssignmentCommand) (*AssignmentDTO, error) {
	assignment, err := s.findAssignment(ctx, cmd.AssignmentID)
	if err != nil {
		return nil, err
	}

	if err := assignment.EndEarly(); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.assignmentRepo.Save(ctx, assignment); err != nil {
		s.logger.WithError(err).Error("Failed to save assignment", "assignmentId", cmd.AssignmentID)
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}

	s.releasePersonnel(ctx, assignment.PersonnelID)
	s.notifier.UnitChanged(assignment.UnitID)

	s.logger.Info("Ended assignment", "assignmentId", cmd.AssignmentID, "unitId", assignment.UnitID)
	return ToAssignmentDTO(assignment), nil
}

// MarkAbsent marks an assigned responder absent for the shift
func (s *RosterApplicationService) MarkAbsent(ctx context.Context, cmd MarkAbsentCommand) (*AssignmentDTO, error) {
	assignment, err := s.findAssignment(ctx, cmd.AssignmentID)
	if err != nil {
		return nil, err
	}

	if err := assignment.MarkAbsent(); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.assignmentRepo.Save(ctx, assignment); err != nil {
		s.logger.WithError(err).Error("Failed to save assignment", "assignmentId", cmd.AssignmentID)
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}

	s.notifier.UnitChanged(assignment.UnitID)

	s.logger.Info("Marked assignment absent", "assignmentId", cmd.AssignmentID, "unitId", assignment.UnitID)
	return ToAssignmentDTO(assignment), nil
}

// ListAssignments retrieves assignments for a unit or responder
func (s *RosterApplicationService) ListAssignments(ctx context.Context, query ListAssignmentsQuery) ([]AssignmentDTO, error) {
	switch {
	case query.UnitID != "":
		assignments, err := s.assignmentRepo.FindByUnit(ctx, query.UnitID)
		if err != nil {
			s.logger.WithError(err).Error("Failed to list assignments", "unitId", query.UnitID)
			return nil, fmt.Errorf("failed to list assignments: %w", err)
		}
		return ToAssignmentDTOs(assignments), nil
	case query.PersonnelID != "":
		assignments, err := s.assignmentRepo.FindByPersonnel(ctx, query.PersonnelID)
		if err != nil {
			s.logger.WithError(err).Error("Failed to list assignments", "personnelId", query.PersonnelID)
			return nil, fmt.Errorf("failed to list assignments: %w", err)
		}
		return ToAssignmentDTOs(assignments), nil
	default:
		return nil, errors.ErrValidation("unit_id or personnel_id filter is required")
	}
}

// CountPersonnel returns the total roster size
func (s *RosterApplicationService) CountPersonnel(ctx context.Context) (int64, error) {
	return s.personnelRepo.Count(ctx)
}

// CountUnits returns the total number of units
func (s *RosterApplicationService) CountUnits(ctx context.Context) (int64, error) {
	return s.unitRepo.Count(ctx)
}

func (s *RosterApplicationService) findPersonnel(ctx context.Context, personnelID string) (*domain.Personnel, error) {
	person, err := s.personnelRepo.FindByID(ctx, personnelID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get personnel", "personnelId", personnelID)
		return nil, fmt.Errorf("failed to get personnel: %w", err)
	}
	if person == nil {
		return nil, errors.ErrPersonnelNotFound(personnelID)
	}
	return person, nil
}

func (s *RosterApplicationService) findUnit(ctx context.Context, unitID string) (*domain.Unit, error) {
	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get unit", "unitId", unitID)
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	if unit == nil {
		return nil, errors.ErrUnitNotFound(unitID)
	}
	return unit, nil
}

func (s *RosterApplicationService) findAssignment(ctx context.Context, assignmentID string) (*domain.UnitAssignment, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get assignment", "assignmentId", assignmentID)
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return nil, errors.ErrAssignmentNotFound(assignmentID)
	}
	return assignment, nil
}

// releasePersonnel clears the responder's unit link after a shift ends.
// Failures are logged, not returned: the assignment state change is the
// authoritative part of the operation.
func (s *RosterApplicationService) releasePersonnel(ctx context.Context, personnelID string) {
	person, err := s.personnelRepo.FindByID(ctx, personnelID)
	if err != nil || person == nil {
		s.logger.Warn("Could not load personnel for release", "personnelId", personnelID, "error", err)
		return
	}

	person.ReleaseFromUnit()
	if err := s.personnelRepo.Save(ctx, person); err != nil {
		s.logger.WithError(err).Warn("Failed to release personnel from unit", "personnelId", personnelID)
	}
}
