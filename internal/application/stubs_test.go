package application

import (
	"context"
	"sync"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

type stubPersonnelRepo struct {
	SaveFn                func(ctx context.Context, person *domain.Personnel) error
	FindByIDFn            func(ctx context.Context, personnelID string) (*domain.Personnel, error)
	FindAllFn             func(ctx context.Context, limit, offset int) ([]*domain.Personnel, error)
	CountFn               func(ctx context.Context) (int64, error)
	FindByAvailabilityFn  func(ctx context.Context, status domain.AvailabilityStatus) ([]*domain.Personnel, error)
	FindWithExpirationsFn func(ctx context.Context) ([]*domain.Personnel, error)
}

func (s *stubPersonnelRepo) Save(ctx context.Context, person *domain.Personnel) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, person)
	}
	return nil
}

func (s *stubPersonnelRepo) FindByID(ctx context.Context, personnelID string) (*domain.Personnel, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, personnelID)
	}
	return nil, nil
}

func (s *stubPersonnelRepo) FindAll(ctx context.Context, limit, offset int) ([]*domain.Personnel, error) {
	if s.FindAllFn != nil {
		return s.FindAllFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *stubPersonnelRepo) Count(ctx context.Context) (int64, error) {
	if s.CountFn != nil {
		return s.CountFn(ctx)
	}
	return 0, nil
}

func (s *stubPersonnelRepo) FindByAvailability(ctx context.Context, status domain.AvailabilityStatus) ([]*domain.Personnel, error) {
	if s.FindByAvailabilityFn != nil {
		return s.FindByAvailabilityFn(ctx, status)
	}
	return nil, nil
}

func (s *stubPersonnelRepo) FindWithExpirations(ctx context.Context) ([]*domain.Personnel, error) {
	if s.FindWithExpirationsFn != nil {
		return s.FindWithExpirationsFn(ctx)
	}
	return nil, nil
}

type stubUnitRepo struct {
	SaveFn       func(ctx context.Context, unit *domain.Unit) error
	FindByIDFn   func(ctx context.Context, unitID string) (*domain.Unit, error)
	FindAllFn    func(ctx context.Context, limit, offset int) ([]*domain.Unit, error)
	CountFn      func(ctx context.Context) (int64, error)
	FindActiveFn func(ctx context.Context) ([]*domain.Unit, error)
}

func (s *stubUnitRepo) Save(ctx context.Context, unit *domain.Unit) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, unit)
	}
	return nil
}

func (s *stubUnitRepo) FindByID(ctx context.Context, unitID string) (*domain.Unit, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, unitID)
	}
	return nil, nil
}

func (s *stubUnitRepo) FindAll(ctx context.Context, limit, offset int) ([]*domain.Unit, error) {
	if s.FindAllFn != nil {
		return s.FindAllFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *stubUnitRepo) Count(ctx context.Context) (int64, error) {
	if s.CountFn != nil {
		return s.CountFn(ctx)
	}
	return 0, nil
}

func (s *stubUnitRepo) FindActive(ctx context.Context) ([]*domain.Unit, error) {
	if s.FindActiveFn != nil {
		return s.FindActiveFn(ctx)
	}
	return nil, nil
}

type stubAssignmentRepo struct {
	SaveFn            func(ctx context.Context, assignment *domain.UnitAssignment) error
	FindByIDFn        func(ctx context.Context, assignmentID string) (*domain.UnitAssignment, error)
	FindByUnitFn      func(ctx context.Context, unitID string) ([]*domain.UnitAssignment, error)
	FindByPersonnelFn func(ctx context.Context, personnelID string) ([]*domain.UnitAssignment, error)
	FindOnShiftFn     func(ctx context.Context) ([]*domain.UnitAssignment, error)
}

func (s *stubAssignmentRepo) Save(ctx context.Context, assignment *domain.UnitAssignment) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, assignment)
	}
	return nil
}

func (s *stubAssignmentRepo) FindByID(ctx context.Context, assignmentID string) (*domain.UnitAssignment, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, assignmentID)
	}
	return nil, nil
}

func (s *stubAssignmentRepo) FindByUnit(ctx context.Context, unitID string) ([]*domain.UnitAssignment, error) {
	if s.FindByUnitFn != nil {
		return s.FindByUnitFn(ctx, unitID)
	}
	return nil, nil
}

func (s *stubAssignmentRepo) FindByPersonnel(ctx context.Context, personnelID string) ([]*domain.UnitAssignment, error) {
	if s.FindByPersonnelFn != nil {
		return s.FindByPersonnelFn(ctx, personnelID)
	}
	return nil, nil
}

func (s *stubAssignmentRepo) FindOnShift(ctx context.Context) ([]*domain.UnitAssignment, error) {
	if s.FindOnShiftFn != nil {
		return s.FindOnShiftFn(ctx)
	}
	return nil, nil
}

type stubCertRepo struct {
	SaveFn     func(ctx context.Context, cert *domain.Certification) error
	FindByIDFn func(ctx context.Context, certificationID string) (*domain.Certification, error)
	FindAllFn  func(ctx context.Context) ([]*domain.Certification, error)
}

func (s *stubCertRepo) Save(ctx context.Context, cert *domain.Certification) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, cert)
	}
	return nil
}

func (s *stubCertRepo) FindByID(ctx context.Context, certificationID string) (*domain.Certification, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, certificationID)
	}
	return nil, nil
}

func (s *stubCertRepo) FindAll(ctx context.Context) ([]*domain.Certification, error) {
	if s.FindAllFn != nil {
		return s.FindAllFn(ctx)
	}
	return nil, nil
}

type stubSink struct {
	RecordReportFn func(ctx context.Context, report *domain.ReadinessReport) error
	HistoryFn      func(ctx context.Context, unitID string, limit int) ([]domain.ReadinessSample, error)
}

func (s *stubSink) RecordReport(ctx context.Context, report *domain.ReadinessReport) error {
	if s.RecordReportFn != nil {
		return s.RecordReportFn(ctx, report)
	}
	return nil
}

func (s *stubSink) History(ctx context.Context, unitID string, limit int) ([]domain.ReadinessSample, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, unitID, limit)
	}
	return nil, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	units []string
}

func (n *recordingNotifier) UnitChanged(unitID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.units = append(n.units, unitID)
}

func (n *recordingNotifier) changed() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.units))
	copy(out, n.units)
	return out
}
