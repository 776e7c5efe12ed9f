package domain

import (
	"context"
	"time"
)

// PersonnelRepository defines the interface for personnel persistence
type PersonnelRepository interface {
	Save(ctx context.Context, person *Personnel) error
	FindByID(ctx context.Context, personnelID string) (*Personnel, error)
	FindAll(ctx context.Context, limit, offset int) ([]*Personnel, error)
	Count(ctx context.Context) (int64, error)
	FindByAvailability(ctx context.Context, status AvailabilityStatus) ([]*Personnel, error)
	FindWithExpirations(ctx context.Context) ([]*Personnel, error)
}

// UnitRepository defines the interface for unit persistence
type UnitRepository interface {
	Save(ctx context.Context, unit *Unit) error
	FindByID(ctx context.Context, unitID string) (*Unit, error)
	FindAll(ctx context.Context, limit, offset int) ([]*Unit, error)
	Count(ctx context.Context) (int64, error)
	FindActive(ctx context.Context) ([]*Unit, error)
}

// AssignmentRepository defines the interface for assignment persistence
type AssignmentRepository interface {
	Save(ctx context.Context, assignment *UnitAssignment) error
	FindByID(ctx context.Context, assignmentID string) (*UnitAssignment, error)
	FindByUnit(ctx context.Context, unitID string) ([]*UnitAssignment, error)
	FindByPersonnel(ctx context.Context, personnelID string) ([]*UnitAssignment, error)
	FindOnShift(ctx context.Context) ([]*UnitAssignment, error)
}

// CertificationRepository defines the interface for the certification catalog
type CertificationRepository interface {
	Save(ctx context.Context, cert *Certification) error
	FindByID(ctx context.Context, certificationID string) (*Certification, error)
	FindAll(ctx context.Context) ([]*Certification, error)
}

// ReadinessSample is a historical readiness data point from the
// analytics warehouse.
type ReadinessSample struct {
	UnitID       string    `json:"unit_id"`
	Score        int       `json:"readiness_score"`
	StaffPresent int       `json:"staff_present"`
	Understaffed bool      `json:"is_understaffed"`
	Timestamp    time.Time `json:"timestamp"`
}

// ReadinessSink records computed readiness reports for later analysis.
// Implementations may write to a warehouse or discard everything.
type ReadinessSink interface {
	RecordReport(ctx context.Context, report *ReadinessReport) error
	History(ctx context.Context, unitID string, limit int) ([]ReadinessSample, error)
}
