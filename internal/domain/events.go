package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// PersonnelRegisteredEvent is published when a person joins the roster
type PersonnelRegisteredEvent struct {
	PersonnelID  string    `json:"personnel_id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	StationID    string    `json:"station_id,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (e *PersonnelRegisteredEvent) EventType() string     { return "readiness.personnel.registered" }
func (e *PersonnelRegisteredEvent) OccurredAt() time.Time { return e.RegisteredAt }

// PersonnelAvailabilityChangedEvent is published when availability changes
type PersonnelAvailabilityChangedEvent struct {
	PersonnelID string    `json:"personnel_id"`
	Previous    string    `json:"previous"`
	Current     string    `json:"current"`
	ChangedAt   time.Time `json:"changed_at"`
}

func (e *PersonnelAvailabilityChangedEvent) EventType() string {
	return "readiness.personnel.availability-changed"
}
func (e *PersonnelAvailabilityChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// PersonnelMarkedUnqualifiedEvent is published when an expiry scan takes
// a person off duty
type PersonnelMarkedUnqualifiedEvent struct {
	PersonnelID           string    `json:"personnel_id"`
	ExpiredCertifications []string  `json:"expired_certifications"`
	MarkedAt              time.Time `json:"marked_at"`
}

func (e *PersonnelMarkedUnqualifiedEvent) EventType() string {
	return "readiness.personnel.marked-unqualified"
}
func (e *PersonnelMarkedUnqualifiedEvent) OccurredAt() time.Time { return e.MarkedAt }

// UnitCreatedEvent is published when a unit is created
type UnitCreatedEvent struct {
	UnitID       string    `json:"unit_id"`
	Name         string    `json:"unit_name"`
	UnitType     string    `json:"unit_type"`
	MinimumStaff int       `json:"minimum_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

func (e *UnitCreatedEvent) EventType() string     { return "readiness.unit.created" }
func (e *UnitCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// UnitConfigurationChangedEvent is published when staffing or
// certification requirements change
type UnitConfigurationChangedEvent struct {
	UnitID       string    `json:"unit_id"`
	MinimumStaff int       `json:"minimum_staff"`
	ChangedAt    time.Time `json:"changed_at"`
}

func (e *UnitConfigurationChangedEvent) EventType() string {
	return "readiness.unit.configuration-changed"
}
func (e *UnitConfigurationChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// AssignmentCreatedEvent is published when a person is assigned to a unit shift
type AssignmentCreatedEvent struct {
	AssignmentID string    `json:"assignment_id"`
	UnitID       string    `json:"unit_id"`
	PersonnelID  string    `json:"personnel_id"`
	ShiftStart   time.Time `json:"shift_start"`
	ShiftEnd     time.Time `json:"shift_end"`
	AssignedAt   time.Time `json:"assigned_at"`
}

func (e *AssignmentCreatedEvent) EventType() string     { return "readiness.assignment.created" }
func (e *AssignmentCreatedEvent) OccurredAt() time.Time { return e.AssignedAt }

// AssignmentEndedEvent is published when an assignment ends before its shift end
type AssignmentEndedEvent struct {
	AssignmentID string    `json:"assignment_id"`
	UnitID       string    `json:"unit_id"`
	PersonnelID  string    `json:"personnel_id"`
	EndedAt      time.Time `json:"ended_at"`
}

func (e *AssignmentEndedEvent) EventType() string     { return "readiness.assignment.ended" }
func (e *AssignmentEndedEvent) OccurredAt() time.Time { return e.EndedAt }
