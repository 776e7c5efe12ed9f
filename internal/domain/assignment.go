package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrShiftEndBeforeStart  = errors.New("shift end must be after shift start")
	ErrAssignmentNotOnShift = errors.New("assignment is not on shift")
)

// AssignmentStatus represents the state of a unit assignment
type AssignmentStatus string

const (
	AssignmentOnShift  AssignmentStatus = "ON_SHIFT"
	AssignmentPending  AssignmentStatus = "PENDING"
	AssignmentAbsent   AssignmentStatus = "ABSENT"
	AssignmentEarlyOff AssignmentStatus = "EARLY_OFF"
)

// IsValid reports whether the status is a known assignment status
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentOnShift, AssignmentPending, AssignmentAbsent, AssignmentEarlyOff:
		return true
	}
	return false
}

// UnitAssignment is the aggregate root binding a person to a unit shift
type UnitAssignment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	AssignmentID string             `bson:"assignmentId"`
	UnitID       string             `bson:"unitId"`
	PersonnelID  string             `bson:"personnelId"`
	Role         string             `bson:"role,omitempty"`
	ShiftStart   time.Time          `bson:"shiftStart"`
	ShiftEnd     time.Time          `bson:"shiftEnd"`
	Status       AssignmentStatus   `bson:"assignmentStatus"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
	DomainEvents []DomainEvent      `bson:"-"`
}

// NewUnitAssignment creates a new UnitAssignment aggregate. Shift bounds
// are normalized to UTC; the end must come after the start.
func NewUnitAssignment(assignmentID, unitID, personnelID, role string, shiftStart, shiftEnd time.Time) (*UnitAssignment, error) {
	shiftStart = shiftStart.UTC()
	shiftEnd = shiftEnd.UTC()
	if !shiftEnd.After(shiftStart) {
		return nil, ErrShiftEndBeforeStart
	}

	now := time.Now().UTC()
	a := &UnitAssignment{
		AssignmentID: assignmentID,
		UnitID:       unitID,
		PersonnelID:  personnelID,
		Role:         role,
		ShiftStart:   shiftStart,
		ShiftEnd:     shiftEnd,
		Status:       AssignmentOnShift,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}

	a.AddDomainEvent(&AssignmentCreatedEvent{
		AssignmentID: assignmentID,
		UnitID:       unitID,
		PersonnelID:  personnelID,
		ShiftStart:   shiftStart,
		ShiftEnd:     shiftEnd,
		AssignedAt:   now,
	})

	return a, nil
}

// IsActiveAt reports whether the assignment counts toward unit staffing
// at the given instant. An on-shift assignment is active while the
// instant falls inside the shift window, or when the shift starts at
// any point during the current UTC day.
func (a *UnitAssignment) IsActiveAt(now time.Time) bool {
	if a.Status != AssignmentOnShift {
		return false
	}

	now = now.UTC()
	if !now.Before(a.ShiftStart) && !now.After(a.ShiftEnd) {
		return true
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Microsecond)
	return !a.ShiftStart.Before(dayStart) && !a.ShiftStart.After(dayEnd)
}

// MarkAbsent flags the person as absent for this shift
func (a *UnitAssignment) MarkAbsent() error {
	if a.Status != AssignmentOnShift && a.Status != AssignmentPending {
		return ErrAssignmentNotOnShift
	}
	a.Status = AssignmentAbsent
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// EndEarly ends the assignment before the scheduled shift end
func (a *UnitAssignment) EndEarly() error {
	if a.Status != AssignmentOnShift {
		return ErrAssignmentNotOnShift
	}

	now := time.Now().UTC()
	a.Status = AssignmentEarlyOff
	a.UpdatedAt = now

	a.AddDomainEvent(&AssignmentEndedEvent{
		AssignmentID: a.AssignmentID,
		UnitID:       a.UnitID,
		PersonnelID:  a.PersonnelID,
		EndedAt:      now,
	})

	return nil
}

// AddDomainEvent adds a domain event to the aggregate
func (a *UnitAssignment) AddDomainEvent(event DomainEvent) {
	a.DomainEvents = append(a.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (a *UnitAssignment) ClearDomainEvents() {
	a.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (a *UnitAssignment) GetDomainEvents() []DomainEvent {
	return a.DomainEvents
}
