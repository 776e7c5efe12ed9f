package application

import "time"

// PersonnelDTO represents a responder in responses
type PersonnelDTO struct {
	PersonnelID     string               `json:"personnel_id"`
	Name            string               `json:"name"`
	Rank            string               `json:"rank,omitempty"`
	Role            string               `json:"role"`
	Certifications  []string             `json:"certifications"`
	CertExpirations map[string]time.Time `json:"cert_expirations"`
	Availability    string               `json:"availability"`
	LastCheckIn     *time.Time           `json:"last_check_in,omitempty"`
	StationID       string               `json:"station_id,omitempty"`
	CurrentUnitID   *string              `json:"current_unit_id,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// UnitDTO represents a response unit
type UnitDTO struct {
	UnitID                 string    `json:"unit_id"`
	Name                   string    `json:"unit_name"`
	Type                   string    `json:"unit_type"`
	MinimumStaff           int       `json:"minimum_staff"`
	RequiredCertifications []string  `json:"required_certifications"`
	StationID              string    `json:"station_id,omitempty"`
	Active                 bool      `json:"active"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// AssignmentDTO represents a unit shift assignment
type AssignmentDTO struct {
	AssignmentID string    `json:"assignment_id"`
	PersonnelID  string    `json:"personnel_id"`
	UnitID       string    `json:"unit_id"`
	ShiftStart   time.Time `json:"shift_start"`
	ShiftEnd     time.Time `json:"shift_end"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CertificationDTO represents a certification catalog entry
type CertificationDTO struct {
	CertificationID     string    `json:"certification_id"`
	Name                string    `json:"name"`
	Description         string    `json:"description,omitempty"`
	Category            string    `json:"category,omitempty"`
	TypicalValidityDays int       `json:"typical_validity_days,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// ExpiringCertificationDTO is a certification approaching its expiry
type ExpiringCertificationDTO struct {
	PersonnelID     string    `json:"personnel_id"`
	PersonnelName   string    `json:"personnel_name"`
	Certification   string    `json:"certification"`
	ExpiresAt       time.Time `json:"expiration_date"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	IsExpired       bool      `json:"is_expired"`
}

// ExpiredCertificationDTO is a certification past its expiry
type ExpiredCertificationDTO struct {
	PersonnelID   string    `json:"personnel_id"`
	PersonnelName string    `json:"personnel_name"`
	Certification string    `json:"certification"`
	ExpiredAt     time.Time `json:"expiration_date"`
	DaysExpired   int       `json:"days_expired"`
}

// ExpiryScanResultDTO summarizes a certification expiry scan
type ExpiryScanResultDTO struct {
	ExpiredFound      int      `json:"expired_found"`
	MarkedUnqualified int      `json:"marked_unqualified"`
	AffectedUnits     []string `json:"affected_units"`
	ScannedAt         string   `json:"scanned_at"`
}
