package application

import (
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

// ToPersonnelDTO converts a domain Personnel to PersonnelDTO
func ToPersonnelDTO(person *domain.Personnel) *PersonnelDTO {
	if person == nil {
		return nil
	}

	certs := person.Certifications
	if certs == nil {
		certs = []string{}
	}

	return &PersonnelDTO{
		PersonnelID:     person.PersonnelID,
		Name:            person.Name,
		Rank:            person.Rank,
		Role:            person.Role,
		Certifications:  certs,
		CertExpirations: person.CertExpirations,
		Availability:    string(person.Availability),
		LastCheckIn:     person.LastCheckIn,
		StationID:       person.StationID,
		CurrentUnitID:   person.CurrentUnitID,
		Notes:           person.Notes,
		CreatedAt:       person.CreatedAt,
		UpdatedAt:       person.UpdatedAt,
	}
}

// ToPersonnelDTOs converts a slice of domain Personnel to DTOs
func ToPersonnelDTOs(people []*domain.Personnel) []PersonnelDTO {
	dtos := make([]PersonnelDTO, 0, len(people))
	for _, person := range people {
		if dto := ToPersonnelDTO(person); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToUnitDTO converts a domain Unit to UnitDTO
func ToUnitDTO(unit *domain.Unit) *UnitDTO {
	if unit == nil {
		return nil
	}

	required := unit.RequiredCertifications
	if required == nil {
		required = []string{}
	}

	return &UnitDTO{
		UnitID:                 unit.UnitID,
		Name:                   unit.Name,
		Type:                   string(unit.Type),
		MinimumStaff:           unit.MinimumStaff,
		RequiredCertifications: required,
		StationID:              unit.StationID,
		Active:                 unit.Active,
		CreatedAt:              unit.CreatedAt,
		UpdatedAt:              unit.UpdatedAt,
	}
}

// ToUnitDTOs converts a slice of domain Units to DTOs
func ToUnitDTOs(units []*domain.Unit) []UnitDTO {
	dtos := make([]UnitDTO, 0, len(units))
	for _, unit := range units {
		if dto := ToUnitDTO(unit); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToAssignmentDTO converts a domain UnitAssignment to AssignmentDTO
func ToAssignmentDTO(assignment *domain.UnitAssignment) *AssignmentDTO {
	if assignment == nil {
		return nil
	}

	return &AssignmentDTO{
		AssignmentID: assignment.AssignmentID,
		PersonnelID:  assignment.PersonnelID,
		UnitID:       assignment.UnitID,
		ShiftStart:   assignment.ShiftStart,
		ShiftEnd:     assignment.ShiftEnd,
		Status:       string(assignment.Status),
		CreatedAt:    assignment.CreatedAt,
		UpdatedAt:    assignment.UpdatedAt,
	}
}

// ToAssignmentDTOs converts a slice of assignments to DTOs
func ToAssignmentDTOs(assignments []*domain.UnitAssignment) []AssignmentDTO {
	dtos := make([]AssignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		if dto := ToAssignmentDTO(assignment); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToCertificationDTO converts a domain Certification to CertificationDTO
func ToCertificationDTO(cert *domain.Certification) *CertificationDTO {
	if cert == nil {
		return nil
	}

	return &CertificationDTO{
		CertificationID:     cert.CertificationID,
		Name:                cert.Name,
		Description:         cert.Description,
		Category:            cert.Category,
		TypicalValidityDays: cert.TypicalValidityDays,
		CreatedAt:           cert.CreatedAt,
	}
}

// ToCertificationDTOs converts a slice of certifications to DTOs
func ToCertificationDTOs(certs []*domain.Certification) []CertificationDTO {
	dtos := make([]CertificationDTO, 0, len(certs))
	for _, cert := range certs {
		if dto := ToCertificationDTO(cert); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}
