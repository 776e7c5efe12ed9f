package domain

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrUnitNameRequired    = errors.New("unit name is required")
	ErrInvalidUnitType     = errors.New("invalid unit type")
	ErrInvalidMinimumStaff = errors.New("minimum staff must be greater than zero")
	ErrUnitInactive        = errors.New("unit is not active")
)

// UnitType represents the kind of emergency response unit
type UnitType string

const (
	UnitTypeEngine  UnitType = "ENGINE"
	UnitTypeLadder  UnitType = "LADDER"
	UnitTypeRescue  UnitType = "RESCUE"
	UnitTypeMedic   UnitType = "MEDIC"
	UnitTypeSARTeam UnitType = "SAR_TEAM"
)

// IsValid reports whether the type is a known unit type
func (t UnitType) IsValid() bool {
	switch t {
	case UnitTypeEngine, UnitTypeLadder, UnitTypeRescue, UnitTypeMedic, UnitTypeSARTeam:
		return true
	}
	return false
}

// Unit is the aggregate root for an emergency response unit
type Unit struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty"`
	UnitID                 string             `bson:"unitId"`
	Name                   string             `bson:"unitName"`
	Type                   UnitType           `bson:"type"`
	MinimumStaff           int                `bson:"minimumStaff"`
	RequiredCertifications []string           `bson:"requiredCertifications"`
	StationID              string             `bson:"stationId,omitempty"`
	Active                 bool               `bson:"active"`
	CreatedAt              time.Time          `bson:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt"`
	DomainEvents           []DomainEvent      `bson:"-"`
}

// NewUnit creates a new Unit aggregate. MinimumStaff must be positive;
// a unit that needs nobody is not a unit.
func NewUnit(unitID, name string, unitType UnitType, minimumStaff int, requiredCerts []string, stationID string) (*Unit, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrUnitNameRequired
	}
	if !unitType.IsValid() {
		return nil, ErrInvalidUnitType
	}
	if minimumStaff <= 0 {
		return nil, ErrInvalidMinimumStaff
	}
	if requiredCerts == nil {
		requiredCerts = make([]string, 0)
	}

	now := time.Now().UTC()
	u := &Unit{
		UnitID:                 unitID,
		Name:                   name,
		Type:                   unitType,
		MinimumStaff:           minimumStaff,
		RequiredCertifications: requiredCerts,
		StationID:              stationID,
		Active:                 true,
		CreatedAt:              now,
		UpdatedAt:              now,
		DomainEvents:           make([]DomainEvent, 0),
	}

	u.AddDomainEvent(&UnitCreatedEvent{
		UnitID:       unitID,
		Name:         name,
		UnitType:     string(unitType),
		MinimumStaff: minimumStaff,
		CreatedAt:    now,
	})

	return u, nil
}

// UpdateConfiguration updates staffing and certification requirements
func (u *Unit) UpdateConfiguration(name string, minimumStaff int, requiredCerts []string) error {
	if strings.TrimSpace(name) == "" {
		return ErrUnitNameRequired
	}
	if minimumStaff <= 0 {
		return ErrInvalidMinimumStaff
	}
	if requiredCerts == nil {
		requiredCerts = make([]string, 0)
	}

	now := time.Now().UTC()
	u.Name = name
	u.MinimumStaff = minimumStaff
	u.RequiredCertifications = requiredCerts
	u.UpdatedAt = now

	u.AddDomainEvent(&UnitConfigurationChangedEvent{
		UnitID:       u.UnitID,
		MinimumStaff: minimumStaff,
		ChangedAt:    now,
	})

	return nil
}

// Activate puts the unit back in service
func (u *Unit) Activate() {
	u.Active = true
	u.UpdatedAt = time.Now().UTC()
}

// Deactivate takes the unit out of service
func (u *Unit) Deactivate() {
	u.Active = false
	u.UpdatedAt = time.Now().UTC()
}

// AddDomainEvent adds a domain event to the aggregate
func (u *Unit) AddDomainEvent(event DomainEvent) {
	u.DomainEvents = append(u.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (u *Unit) ClearDomainEvents() {
	u.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (u *Unit) GetDomainEvents() []DomainEvent {
	return u.DomainEvents
}
