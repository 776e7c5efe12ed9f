package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AssignedMember pairs a person with the assignment that puts them on a unit
type AssignedMember struct {
	Person     *Personnel
	Assignment *UnitAssignment
}

// RosterEntry is one person in a readiness report
type RosterEntry struct {
	PersonnelID    string   `json:"personnel_id"`
	Name           string   `json:"name"`
	Role           string   `json:"role"`
	Certifications []string `json:"certifications"`
}

// ReadinessReport is the externally visible readiness snapshot of a unit.
// The JSON field set is consumed by dashboards and websocket clients and
// must stay stable.
type ReadinessReport struct {
	UnitID                string        `json:"unit_id"`
	UnitName              string        `json:"unit_name"`
	UnitType              string        `json:"unit_type"`
	ReadinessScore        int           `json:"readiness_score"`
	StaffRequired         int           `json:"staff_required"`
	StaffPresent          int           `json:"staff_present"`
	CertificationsMissing []string      `json:"certifications_missing"`
	ExpiredCertifications []string      `json:"expired_certifications"`
	IsUnderstaffed        bool          `json:"is_understaffed"`
	Issues                []string      `json:"issues"`
	AssignedPersonnel     []RosterEntry `json:"assigned_personnel"`
	Timestamp             time.Time     `json:"timestamp"`
}

// Scoring penalties, in points per finding
const (
	missingCertPenalty = 15
	expiredCertPenalty = 20
)

// ComputeReadiness scores a unit against its active roster at the given
// instant. The function is pure: no clock reads, no I/O, and the same
// inputs always produce the same report.
//
// The score starts from staffing coverage (present/required, capped at
// 100), then loses 15 points per required certification nobody on the
// roster holds and 20 points per expired certification on the roster,
// floored at 0.
func ComputeReadiness(unit *Unit, members []AssignedMember, now time.Time) *ReadinessReport {
	now = now.UTC()

	staffRequired := unit.MinimumStaff
	staffPresent := 0
	for _, m := range members {
		if m.Assignment != nil && m.Assignment.Status == AssignmentOnShift {
			staffPresent++
		}
	}

	missing := make([]string, 0)
	for _, required := range unit.RequiredCertifications {
		held := false
		for _, m := range members {
			if m.Person != nil && m.Person.HasCertification(required) {
				held = true
				break
			}
		}
		if !held {
			missing = append(missing, required)
		}
	}

	expired := make([]string, 0)
	for _, m := range members {
		if m.Person == nil {
			continue
		}
		names := make([]string, 0, len(m.Person.CertExpirations))
		for cert := range m.Person.CertExpirations {
			names = append(names, cert)
		}
		sort.Strings(names)
		for _, cert := range names {
			exp := m.Person.CertExpirations[cert]
			if exp.IsZero() {
				continue
			}
			if exp.Before(now) {
				expired = append(expired, fmt.Sprintf("%s: %s", m.Person.Name, cert))
			}
		}
	}

	var staffingScore float64
	if staffRequired == 0 {
		staffingScore = 100
	} else {
		staffingScore = float64(staffPresent) / float64(staffRequired) * 100
		if staffingScore > 100 {
			staffingScore = 100
		}
	}

	score := int(staffingScore - float64(missingCertPenalty*len(missing)) - float64(expiredCertPenalty*len(expired)))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	isUnderstaffed := staffPresent < staffRequired || len(missing) > 0 || len(expired) > 0

	issues := make([]string, 0)
	if staffPresent < staffRequired {
		issues = append(issues, fmt.Sprintf("Understaffed: %d/%d", staffPresent, staffRequired))
	}
	if len(missing) > 0 {
		issues = append(issues, fmt.Sprintf("Missing certifications: %s", strings.Join(missing, ", ")))
	}
	if len(expired) > 0 {
		issues = append(issues, fmt.Sprintf("Expired certifications: %s", strings.Join(expired, ", ")))
	}

	roster := make([]RosterEntry, 0, len(members))
	for _, m := range members {
		if m.Person == nil {
			continue
		}
		certs := m.Person.Certifications
		if certs == nil {
			certs = make([]string, 0)
		}
		roster = append(roster, RosterEntry{
			PersonnelID:    m.Person.PersonnelID,
			Name:           m.Person.Name,
			Role:           m.Person.Role,
			Certifications: certs,
		})
	}

	return &ReadinessReport{
		UnitID:                unit.UnitID,
		UnitName:              unit.Name,
		UnitType:              string(unit.Type),
		ReadinessScore:        score,
		StaffRequired:         staffRequired,
		StaffPresent:          staffPresent,
		CertificationsMissing: missing,
		ExpiredCertifications: expired,
		IsUnderstaffed:        isUnderstaffed,
		Issues:                issues,
		AssignedPersonnel:     roster,
		Timestamp:             now,
	}
}
