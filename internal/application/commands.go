package application

import (
	"time"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

// RegisterPersonnelCommand registers a new responder
type RegisterPersonnelCommand struct {
	Name            string
	Rank            string
	Role            string
	Certifications  []string
	CertExpirations map[string]time.Time
	Availability    domain.AvailabilityStatus
	StationID       string
}

// UpdatePersonnelCommand updates profile fields of a responder
type UpdatePersonnelCommand struct {
	PersonnelID string
	Name        string
	Rank        string
	Role        string
	StationID   string
}

// SetAvailabilityCommand changes a responder's availability status
type SetAvailabilityCommand struct {
	PersonnelID  string
	Availability domain.AvailabilityStatus
}

// CheckInCommand records a responder check-in
type CheckInCommand struct {
	PersonnelID string
}

// SetCertificationsCommand replaces a responder's certifications
type SetCertificationsCommand struct {
	PersonnelID     string
	Certifications  []string
	CertExpirations map[string]time.Time
}

// GetPersonnelQuery retrieves a responder by ID
type GetPersonnelQuery struct {
	PersonnelID string
}

// ListPersonnelQuery retrieves responders with optional availability filter
type ListPersonnelQuery struct {
	Availability string
	Limit        int
	Offset       int
}

// CreateUnitCommand creates a new response unit
type CreateUnitCommand struct {
	Name                   string
	Type                   string
	MinimumStaff           int
	RequiredCertifications []string
	StationID              string
}

// UpdateUnitCommand updates a unit's configuration
type UpdateUnitCommand struct {
	UnitID                 string
	Name                   string
	MinimumStaff           int
	RequiredCertifications []string
}

// DeactivateUnitCommand takes a unit out of service
type DeactivateUnitCommand struct {
	UnitID string
}

// GetUnitQuery retrieves a unit by ID
type GetUnitQuery struct {
	UnitID string
}

// ListUnitsQuery retrieves units
type ListUnitsQuery struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

// CreateAssignmentCommand places a responder on a unit shift
type CreateAssignmentCommand struct {
	PersonnelID string
	UnitID      string
	ShiftStart  time.Time
	ShiftEnd    time.Time
}

// EndAssignmentCommand ends a shift early
type EndAssignmentCommand struct {
	AssignmentID string
}

// MarkAbsentCommand marks an assigned responder absent
type MarkAbsentCommand struct {
	AssignmentID string
}

// ListAssignmentsQuery retrieves assignments for a unit or responder
type ListAssignmentsQuery struct {
	UnitID      string
	PersonnelID string
}

// GetUnitReadinessQuery evaluates a single unit
type GetUnitReadinessQuery struct {
	UnitID string
}

// GetReadinessHistoryQuery fetches historical readiness for a unit
type GetReadinessHistoryQuery struct {
	UnitID string
	Limit  int
}

// ListExpiringQuery finds certifications expiring within a window
type ListExpiringQuery struct {
	DaysAhead int
}

// CreateCertificationCommand adds an entry to the certification catalog
type CreateCertificationCommand struct {
	Name                string
	Description         string
	Category            string
	TypicalValidityDays int
}
