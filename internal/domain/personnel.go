package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrPersonnelNameRequired = errors.New("personnel name is required")
	ErrPersonnelRoleRequired = errors.New("personnel role is required")
	ErrInvalidAvailability   = errors.New("invalid availability status")
	ErrPersonnelDeployed     = errors.New("personnel is already deployed to a unit")
)

// AvailabilityStatus represents the duty availability of a person
type AvailabilityStatus string

const (
	AvailabilityAvailable  AvailabilityStatus = "AVAILABLE"
	AvailabilityOff        AvailabilityStatus = "OFF"
	AvailabilityInTraining AvailabilityStatus = "IN_TRAINING"
	AvailabilityDeployed   AvailabilityStatus = "DEPLOYED"
	AvailabilityOnCall     AvailabilityStatus = "ON_CALL"
)

// IsValid reports whether the status is a known availability value
func (s AvailabilityStatus) IsValid() bool {
	switch s {
	case AvailabilityAvailable, AvailabilityOff, AvailabilityInTraining, AvailabilityDeployed, AvailabilityOnCall:
		return true
	}
	return false
}

// Personnel is the aggregate root for emergency service staff
type Personnel struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	PersonnelID     string               `bson:"personnelId"`
	Name            string               `bson:"name"`
	Rank            string               `bson:"rank,omitempty"`
	Role            string               `bson:"role"`
	Certifications  []string             `bson:"certifications"`
	CertExpirations map[string]time.Time `bson:"certExpirations"`
	Availability    AvailabilityStatus   `bson:"availabilityStatus"`
	LastCheckIn     *time.Time           `bson:"lastCheckIn,omitempty"`
	StationID       string               `bson:"stationId,omitempty"`
	CurrentUnitID   *string              `bson:"currentUnitId,omitempty"`
	Notes           string               `bson:"notes,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
	DomainEvents    []DomainEvent        `bson:"-"`
}

// NewPersonnel creates a new Personnel aggregate
func NewPersonnel(personnelID, name, rank, role, stationID string) (*Personnel, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrPersonnelNameRequired
	}
	if strings.TrimSpace(role) == "" {
		return nil, ErrPersonnelRoleRequired
	}

	now := time.Now().UTC()
	p := &Personnel{
		PersonnelID:     personnelID,
		Name:            name,
		Rank:            rank,
		Role:            role,
		Certifications:  make([]string, 0),
		CertExpirations: make(map[string]time.Time),
		Availability:    AvailabilityAvailable,
		StationID:       stationID,
		CreatedAt:       now,
		UpdatedAt:       now,
		DomainEvents:    make([]DomainEvent, 0),
	}

	p.AddDomainEvent(&PersonnelRegisteredEvent{
		PersonnelID:  personnelID,
		Name:         name,
		Role:         role,
		StationID:    stationID,
		RegisteredAt: now,
	})

	return p, nil
}

// UpdateProfile updates the mutable profile fields
func (p *Personnel) UpdateProfile(name, rank, role, stationID string) error {
	if strings.TrimSpace(name) == "" {
		return ErrPersonnelNameRequired
	}
	if strings.TrimSpace(role) == "" {
		return ErrPersonnelRoleRequired
	}

	p.Name = name
	p.Rank = rank
	p.Role = role
	p.StationID = stationID
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// SetCertifications replaces the certification list and expiration map.
// Expirations are keyed by certification name and must already be
// normalized to UTC instants by the caller.
func (p *Personnel) SetCertifications(certs []string, expirations map[string]time.Time) {
	if certs == nil {
		certs = make([]string, 0)
	}
	normalized := make(map[string]time.Time, len(expirations))
	for cert, exp := range expirations {
		normalized[cert] = exp.UTC()
	}

	p.Certifications = certs
	p.CertExpirations = normalized
	p.UpdatedAt = time.Now().UTC()
}

// HasCertification reports whether the person holds the named certification.
// Comparison is an exact string match.
func (p *Personnel) HasCertification(cert string) bool {
	for _, c := range p.Certifications {
		if c == cert {
			return true
		}
	}
	return false
}

// ExpiredCertifications returns every certification with a recorded
// expiration strictly before now, in sorted order. Certifications with
// no recorded expiration never expire. The walk covers all recorded
// expirations, held or not, so it matches the expiry view used by
// readiness scoring.
func (p *Personnel) ExpiredCertifications(now time.Time) []string {
	expired := make([]string, 0)
	for cert, exp := range p.CertExpirations {
		if exp.IsZero() || !exp.Before(now) {
			continue
		}
		expired = append(expired, cert)
	}
	sort.Strings(expired)
	return expired
}

// SetAvailability changes the availability status
func (p *Personnel) SetAvailability(status AvailabilityStatus) error {
	if !status.IsValid() {
		return ErrInvalidAvailability
	}
	if p.Availability == status {
		return nil
	}

	previous := p.Availability
	now := time.Now().UTC()
	p.Availability = status
	p.UpdatedAt = now

	p.AddDomainEvent(&PersonnelAvailabilityChangedEvent{
		PersonnelID: p.PersonnelID,
		Previous:    string(previous),
		Current:     string(status),
		ChangedAt:   now,
	})

	return nil
}

// CheckIn records a duty check-in
func (p *Personnel) CheckIn() {
	now := time.Now().UTC()
	p.LastCheckIn = &now
	p.UpdatedAt = now
}

// Deploy attaches the person to a unit and marks them deployed
func (p *Personnel) Deploy(unitID string) {
	now := time.Now().UTC()
	previous := p.Availability
	p.CurrentUnitID = &unitID
	p.Availability = AvailabilityDeployed
	p.UpdatedAt = now

	if previous != AvailabilityDeployed {
		p.AddDomainEvent(&PersonnelAvailabilityChangedEvent{
			PersonnelID: p.PersonnelID,
			Previous:    string(previous),
			Current:     string(AvailabilityDeployed),
			ChangedAt:   now,
		})
	}
}

// ReleaseFromUnit detaches the person from their current unit
func (p *Personnel) ReleaseFromUnit() {
	p.CurrentUnitID = nil
	if p.Availability == AvailabilityDeployed {
		p.Availability = AvailabilityAvailable
	}
	p.UpdatedAt = time.Now().UTC()
}

// MarkUnqualified takes a person off duty because of expired
// certifications. The notes field is overwritten with the current
// expired list, so repeated scans converge on the same record.
func (p *Personnel) MarkUnqualified(expired []string) {
	now := time.Now().UTC()
	p.Notes = fmt.Sprintf("Unqualified: Expired certifications: %s", strings.Join(expired, ", "))
	p.Availability = AvailabilityOff
	p.UpdatedAt = now

	p.AddDomainEvent(&PersonnelMarkedUnqualifiedEvent{
		PersonnelID:           p.PersonnelID,
		ExpiredCertifications: expired,
		MarkedAt:              now,
	})
}

// AddDomainEvent adds a domain event to the aggregate
func (p *Personnel) AddDomainEvent(event DomainEvent) {
	p.DomainEvents = append(p.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (p *Personnel) ClearDomainEvents() {
	p.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (p *Personnel) GetDomainEvents() []DomainEvent {
	return p.DomainEvents
}
