package application

import (
	"context"
	"strings"
	"testing"
	"time"

	sharedErrors "github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

func newTestRosterService(
	personnelRepo domain.PersonnelRepository,
	unitRepo domain.UnitRepository,
	assignmentRepo domain.AssignmentRepository,
	notifier ReadinessNotifier,
) *RosterApplicationService {
	logger := logging.New(logging.DefaultConfig("test"))
	return NewRosterApplicationService(personnelRepo, unitRepo, assignmentRepo, notifier, nil, logger)
}

func medicPersonnel(t *testing.T) *domain.Personnel {
	t.Helper()
	person, err := domain.NewPersonnel("p-1", "Dana Cole", "Lieutenant", "Paramedic", "station-4")
	if err != nil {
		t.Fatalf("unexpected personnel err: %v", err)
	}
	person.SetCertifications([]string{"EMT-P", "ACLS"}, map[string]time.Time{
		"EMT-P": time.Now().UTC().AddDate(1, 0, 0),
	})
	person.ClearDomainEvents()
	return person
}

func medicUnit(t *testing.T) *domain.Unit {
	t.Helper()
	unit, err := domain.NewUnit("unit-1", "Medic 12", domain.UnitTypeMedic, 2, []string{"EMT-P"}, "station-4")
	if err != nil {
		t.Fatalf("unexpected unit err: %v", err)
	}
	unit.ClearDomainEvents()
	return unit
}

func TestRosterService_RegisterPersonnel(t *testing.T) {
	var saved *domain.Personnel
	personnelRepo := &stubPersonnelRepo{
		SaveFn: func(_ context.Context, person *domain.Personnel) error {
			saved = person
			return nil
		},
	}
	service := newTestRosterService(personnelRepo, &stubUnitRepo{}, &stubAssignmentRepo{}, nil)

	dto, err := service.RegisterPersonnel(context.Background(), RegisterPersonnelCommand{
		Name:           "Dana Cole",
		Rank:           "Lieutenant",
		Role:           "Paramedic",
		Certifications: []string{"EMT-P"},
		StationID:      "station-4",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if saved == nil {
		t.Fatal("expected personnel to be saved")
	}
	if dto == nil || dto.Name != "Dana Cole" || dto.Role != "Paramedic" {
		t.Fatalf("unexpected dto: %#v", dto)
	}
	if dto.Availability != string(domain.AvailabilityAvailable) {
		t.Fatalf("expected default availability AVAILABLE, got %s", dto.Availability)
	}
}

func TestRosterService_RegisterPersonnel_MissingName(t *testing.T) {
	service := newTestRosterService(&stubPersonnelRepo{}, &stubUnitRepo{}, &stubAssignmentRepo{}, nil)

	_, err := service.RegisterPersonnel(context.Background(), RegisterPersonnelCommand{
		Role: "Paramedic",
	})
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	appErr, ok := sharedErrors.AsAppError(err)
	if !ok || appErr.Code != sharedErrors.CodeValidationError {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRosterService_GetPersonnel_NotFound(t *testing.T) {
	service := newTestRosterService(&stubPersonnelRepo{}, &stubUnitRepo{}, &stubAssignmentRepo{}, nil)

	_, err := service.GetPersonnel(context.Background(), GetPersonnelQuery{PersonnelID: "missing"})
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := sharedErrors.AsAppError(err)
	if !ok || appErr.Code != sharedErrors.CodePersonnelNotFound {
		t.Fatalf("expected personnel not found, got %v", err)
	}
}

func TestRosterService_SetAvailability_NotifiesCurrentUnit(t *testing.T) {
	person := medicPersonnel(t)
	person.Deploy("unit-1")
	person.ClearDomainEvents()

	personnelRepo := &stubPersonnelRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Personnel, error) {
			return person, nil
		},
	}
	notifier := &recordingNotifier{}
	service := newTestRosterService(personnelRepo, &stubUnitRepo{}, &stubAssignmentRepo{}, notifier)

	dto, err := service.SetAvailability(context.Background(), SetAvailabilityCommand{
		PersonnelID:  "p-1",
		Availability: domain.AvailabilityOnCall,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if dto.Availability != string(domain.AvailabilityOnCall) {
		t.Fatalf("unexpected availability: %s", dto.Availability)
	}
	changed := notifier.changed()
	if len(changed) != 1 || changed[0] != "unit-1" {
		t.Fatalf("expected unit-1 notification, got %v", changed)
	}
}

func TestRosterService_SetAvailability_Invalid(t *testing.T) {
	person := medicPersonnel(t)
	personnelRepo := &stubPersonnelRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Personnel, error) {
			return person, nil
		},
	}
	service := newTestRosterService(personnelRepo, &stubUnitRepo{}, &stubAssignmentRepo{}, nil)

	_, err := service.SetAvailability(context.Background(), SetAvailabilityCommand{
		PersonnelID:  "p-1",
		Availability: "NAPPING",
	})
	if err == nil {
		t.Fatal("expected error for invalid availability")
	}
	appErr, ok := sharedErrors.AsAppError(err)
	if !ok || appErr.Code != sharedErrors.CodeValidationError {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRosterService_CreateUnit(t *testing.T) {
	var saved *domain.Unit
	unitRepo := &stubUnitRepo{
		SaveFn: func(_ context.Context, unit *domain.Unit) error {
			saved = unit
			return nil
		},
	}
	service := newTestRosterService(&stubPersonnelRepo{}, unitRepo, &stubAssignmentRepo{}, nil)

	dto, err := service.CreateUnit(context.Background(), CreateUnitCommand{
		Name:                   "Engine 7",
		Type:                   "engine",
		MinimumStaff:           4,
		RequiredCertifications: []string{"FF1"},
		StationID:              "station-7",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if saved == nil {
		t.Fatal("expected unit to be saved")
	}
	if dto.Type != "ENGINE" || dto.MinimumStaff != 4 || !dto.Active {
		t.Fatalf("unexpected dto: %#v", dto)
	}
}

func TestRosterService_CreateUnit_InvalidType(t *testing.T) {
	service := newTestRosterService(&stubPersonnelRepo{}, &stubUnitRepo{}, &stubAssignmentRepo{}, nil)

	_, err := service.CreateUnit(context.Background(), CreateUnitCommand{
		Name:         "Sub 1",
		Type:         "SUBMARINE",
		MinimumStaff: 3,
	})
	if err == nil {
		t.Fatal("expected error for invalid unit type")
	}
}

func TestRosterService_CreateAssignment_MissingCertifications(t *testing.T) {
	person := medicPersonnel(t)
	unit, err := domain.NewUnit("unit-2", "Rescue 3", domain.UnitTypeRescue, 2, []string{"ROPE-RESCUE", "CONFINED-SPACE"}, "station-4")
	if err != nil {
		t.Fatalf("unexpected unit err: %v", err)
	}

	personnelRepo := &stubPersonnelRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Personnel, error) { return person, nil },
	}
	unitRepo := &stubUnitRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Unit, error) { return unit, nil },
	}
	saveCalled := false
	assignmentRepo := &stubAssignmentRepo{
		SaveFn: func(_ context.Context, _ *domain.UnitAssignment) error {
			saveCalled = true
			return nil
		},
	}
	service := newTestRosterService(personnelRepo, unitRepo, assignmentRepo, nil)

	now := time.Now().UTC()
	_, err = service.CreateAssignment(context.Background(), CreateAssignmentCommand{
		PersonnelID: "p-1",
		UnitID:      "unit-2",
		ShiftStart:  now,
		ShiftEnd:    now.Add(12 * time.Hour),
	})
	if err == nil {
		t.Fatal("expected error for missing certifications")
	}
	appErr, ok := sharedErrors.AsAppError(err)
	if !ok || appErr.Code != sharedErrors.CodeValidationError {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(appErr.Message, "ROPE-RESCUE") || !strings.Contains(appErr.Message, "CONFINED-SPACE") {
		t.Fatalf("expected missing certs in message, got %q", appErr.Message)
	}
	if saveCalled {
		t.Fatal("expected no assignment save")
	}
}

func TestRosterService_CreateAssignment(t *testing.T) {
	person := medicPersonnel(t)
	unit := medicUnit(t)

	var savedPerson *domain.Personnel
	personnelRepo := &stubPersonnelRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Personnel, error) { return person, nil },
		SaveFn: func(_ context.Context, p *domain.Personnel) error {
			savedPerson = p
			return nil
		},
	}
	unitRepo := &stubUnitRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Unit, error) { return unit, nil },
	}
	var savedAssignment *domain.UnitAssignment
	assignmentRepo := &stubAssignmentRepo{
		SaveFn: func(_ context.Context, a *domain.UnitAssignment) error {
			savedAssignment = a
			return nil
		},
	}
	notifier := &recordingNotifier{}
	service := newTestRosterService(personnelRepo, unitRepo, assignmentRepo, notifier)

	now := time.Now().UTC()
	dto, err := service.CreateAssignment(context.Background(), CreateAssignmentCommand{
		PersonnelID: "p-1",
		UnitID:      "unit-1",
		ShiftStart:  now,
		ShiftEnd:    now.Add(12 * time.Hour),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if savedAssignment == nil {
		t.Fatal("expected assignment to be saved")
	}
	if dto.Status != string(domain.AssignmentOnShift) || dto.UnitID != "unit-1" {
		t.Fatalf("unexpected dto: %#v", dto)
	}
	if savedPerson == nil || savedPerson.Availability != domain.AvailabilityDeployed {
		t.Fatalf("expected personnel deployed, got %#v", savedPerson)
	}
	changed := notifier.changed()
	if len(changed) != 1 || changed[0] != "unit-1" {
		t.Fatalf("expected unit-1 notification, got %v", changed)
	}
}

func TestRosterService_CreateAssignment_InactiveUnit(t *testing.T) {
	person := medicPersonnel(t)
	unit := medicUnit(t)
	unit.Deactivate()

	personnelRepo := &stubPersonnelRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Personnel, error) { return person, nil },
	}
	unitRepo := &stubUnitRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Unit, error) { return unit, nil },
	}
	service := newTestRosterService(personnelRepo, unitRepo, &stubAssignmentRepo{}, nil)

	now := time.Now().UTC()
	_, err := service.CreateAssignment(context.Background(), CreateAssignmentCommand{
		PersonnelID: "p-1",
		UnitID:      "unit-1",
		ShiftStart:  now,
		ShiftEnd:    now.Add(8 * time.Hour),
	})
	if err == nil {
		t.Fatal("expected error for inactive unit")
	}
}

func TestRosterService_EndAssignment(t *testing.T) {
	now := time.Now().UTC()
	assignment, err := domain.NewUnitAssignment("a-1", "unit-1", "p-1", "Paramedic", now, now.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("unexpected assignment err: %v", err)
	}
	assignment.ClearDomainEvents()

	person := medicPersonnel(t)
	person.Deploy("unit-1")
	person.ClearDomainEvents()

	personnelRepo := &stubPersonnelRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Personnel, error) { return person, nil },
	}
	assignmentRepo := &stubAssignmentRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.UnitAssignment, error) { return assignment, nil },
	}
	notifier := &recordingNotifier{}
	service := newTestRosterService(personnelRepo, &stubUnitRepo{}, assignmentRepo, notifier)

	dto, err := service.EndAssignment(context.Background(), EndAssignmentCommand{AssignmentID: "a-1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if dto.Status != string(domain.AssignmentEarlyOff) {
		t.Fatalf("expected EARLY_OFF, got %s", dto.Status)
	}
	if person.CurrentUnitID != nil {
		t.Fatal("expected personnel released from unit")
	}
	changed := notifier.changed()
	if len(changed) != 1 || changed[0] != "unit-1" {
		t.Fatalf("expected unit-1 notification, got %v", changed)
	}
}

func TestRosterService_MarkAbsent(t *testing.T) {
	now := time.Now().UTC()
	assignment, err := domain.NewUnitAssignment("a-1", "unit-1", "p-1", "Paramedic", now, now.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("unexpected assignment err: %v", err)
	}

	assignmentRepo := &stubAssignmentRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.UnitAssignment, error) { return assignment, nil },
	}
	service := newTestRosterService(&stubPersonnelRepo{}, &stubUnitRepo{}, assignmentRepo, nil)

	dto, err := service.MarkAbsent(context.Background(), MarkAbsentCommand{AssignmentID: "a-1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if dto.Status != string(domain.AssignmentAbsent) {
		t.Fatalf("expected ABSENT, got %s", dto.Status)
	}
}

func TestRosterService_ListPersonnel_InvalidAvailability(t *testing.T) {
	service := newTestRosterService(&stubPersonnelRepo{}, &stubUnitRepo{}, &stubAssignmentRepo{}, nil)

	_, err := service.ListPersonnel(context.Background(), ListPersonnelQuery{Availability: "SLEEPING"})
	if err == nil {
		t.Fatal("expected error for invalid availability filter")
	}
}

func TestRosterService_ListAssignments_RequiresFilter(t *testing.T) {
	service := newTestRosterService(&stubPersonnelRepo{}, &stubUnitRepo{}, &stubAssignmentRepo{}, nil)

	_, err := service.ListAssignments(context.Background(), ListAssignmentsQuery{})
	if err == nil {
		t.Fatal("expected error for missing filter")
	}
}
