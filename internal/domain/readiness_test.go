package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUnit(t *testing.T, minStaff int, requiredCerts []string) *Unit {
	t.Helper()
	unit, err := NewUnit("UNIT-001", "Engine 1", UnitTypeEngine, minStaff, requiredCerts, "STATION-1")
	require.NoError(t, err)
	return unit
}

func testMember(t *testing.T, id, name string, certs []string, expirations map[string]time.Time) AssignedMember {
	t.Helper()
	person, err := NewPersonnel(id, name, "FF", "Firefighter", "STATION-1")
	require.NoError(t, err)
	person.SetCertifications(certs, expirations)

	now := time.Now().UTC()
	assignment, err := NewUnitAssignment("ASSIGN-"+id, "UNIT-001", id, "Firefighter", now.Add(-time.Hour), now.Add(7*time.Hour))
	require.NoError(t, err)

	return AssignedMember{Person: person, Assignment: assignment}
}

// TestComputeReadinessUnderstaffedMissingCert covers a unit that is both
// short-handed and missing a required certification
func TestComputeReadinessUnderstaffedMissingCert(t *testing.T) {
	unit := testUnit(t, 4, []string{"EMT-B"})
	members := []AssignedMember{
		testMember(t, "P-001", "Alice Ray", []string{"FF1"}, nil),
		testMember(t, "P-002", "Bob Cole", []string{"FF2"}, nil),
	}

	report := ComputeReadiness(unit, members, time.Now().UTC())

	// 2/4 staffing is 50 points, minus 15 for the missing cert
	assert.Equal(t, 35, report.ReadinessScore)
	assert.Equal(t, 4, report.StaffRequired)
	assert.Equal(t, 2, report.StaffPresent)
	assert.Equal(t, []string{"EMT-B"}, report.CertificationsMissing)
	assert.Empty(t, report.ExpiredCertifications)
	assert.True(t, report.IsUnderstaffed)
	assert.Equal(t, []string{
		"Understaffed: 2/4",
		"Missing certifications: EMT-B",
	}, report.Issues)
}

// TestComputeReadinessExpiredCert covers a fully staffed unit dragged
// down by one expired certification
func TestComputeReadinessExpiredCert(t *testing.T) {
	now := time.Now().UTC()
	unit := testUnit(t, 2, []string{"EMT-P"})
	members := []AssignedMember{
		testMember(t, "P-001", "Alice Ray", []string{"EMT-P"}, map[string]time.Time{
			"EMT-P": now.Add(-24 * time.Hour),
		}),
		testMember(t, "P-002", "Bob Cole", []string{"FF1"}, nil),
	}

	report := ComputeReadiness(unit, members, now)

	assert.Equal(t, 80, report.ReadinessScore)
	assert.Equal(t, 2, report.StaffPresent)
	assert.Empty(t, report.CertificationsMissing)
	assert.Equal(t, []string{"Alice Ray: EMT-P"}, report.ExpiredCertifications)
	assert.True(t, report.IsUnderstaffed)
	assert.Equal(t, []string{"Expired certifications: Alice Ray: EMT-P"}, report.Issues)
}

// TestComputeReadinessFullyReady covers the healthy path
func TestComputeReadinessFullyReady(t *testing.T) {
	now := time.Now().UTC()
	unit := testUnit(t, 2, []string{"FF1"})
	members := []AssignedMember{
		testMember(t, "P-001", "Alice Ray", []string{"FF1"}, map[string]time.Time{
			"FF1": now.Add(365 * 24 * time.Hour),
		}),
		testMember(t, "P-002", "Bob Cole", []string{"FF1"}, nil),
	}

	report := ComputeReadiness(unit, members, now)

	assert.Equal(t, 100, report.ReadinessScore)
	assert.False(t, report.IsUnderstaffed)
	assert.Empty(t, report.Issues)
	assert.Len(t, report.AssignedPersonnel, 2)
	assert.Equal(t, "P-001", report.AssignedPersonnel[0].PersonnelID)
	assert.Equal(t, "Firefighter", report.AssignedPersonnel[0].Role)
}

// TestComputeReadinessScoreFloor verifies the score never goes negative
func TestComputeReadinessScoreFloor(t *testing.T) {
	now := time.Now().UTC()
	unit := testUnit(t, 4, []string{"EMT-B", "FF1", "HAZMAT", "RIT"})
	members := []AssignedMember{
		testMember(t, "P-001", "Alice Ray", []string{"SCUBA"}, map[string]time.Time{
			"SCUBA": now.Add(-48 * time.Hour),
			"ROPE":  now.Add(-24 * time.Hour),
		}),
	}

	report := ComputeReadiness(unit, members, now)

	assert.Equal(t, 0, report.ReadinessScore)
	assert.True(t, report.IsUnderstaffed)
}

// TestComputeReadinessOverstaffedCapped verifies staffing coverage is
// capped at 100 points
func TestComputeReadinessOverstaffedCapped(t *testing.T) {
	unit := testUnit(t, 1, nil)
	members := []AssignedMember{
		testMember(t, "P-001", "Alice Ray", nil, nil),
		testMember(t, "P-002", "Bob Cole", nil, nil),
		testMember(t, "P-003", "Cam Diaz", nil, nil),
	}

	report := ComputeReadiness(unit, members, time.Now().UTC())

	assert.Equal(t, 100, report.ReadinessScore)
	assert.Equal(t, 3, report.StaffPresent)
	assert.False(t, report.IsUnderstaffed)
}

// TestComputeReadinessEmptyRoster covers a unit with nobody assigned
func TestComputeReadinessEmptyRoster(t *testing.T) {
	unit := testUnit(t, 3, []string{"EMT-B"})

	report := ComputeReadiness(unit, nil, time.Now().UTC())

	assert.Equal(t, 0, report.ReadinessScore)
	assert.Equal(t, 0, report.StaffPresent)
	assert.True(t, report.IsUnderstaffed)
	assert.Equal(t, []string{"EMT-B"}, report.CertificationsMissing)
	assert.NotNil(t, report.AssignedPersonnel)
	assert.Empty(t, report.AssignedPersonnel)
}

// TestComputeReadinessZeroMinimumStaff covers the staffing edge where a
// unit carries no minimum. Construction forbids it, so the calculator's
// guard is exercised with a bare struct.
func TestComputeReadinessZeroMinimumStaff(t *testing.T) {
	unit := &Unit{
		UnitID: "UNIT-001",
		Name:   "Engine 1",
		Type:   UnitTypeEngine,
		Active: true,
	}

	report := ComputeReadiness(unit, nil, time.Now().UTC())

	assert.Equal(t, 100, report.ReadinessScore)
	assert.False(t, report.IsUnderstaffed)
	assert.Empty(t, report.Issues)
}

// TestComputeReadinessDeterministic verifies repeated evaluation with a
// fixed instant produces identical reports
func TestComputeReadinessDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	unit := testUnit(t, 2, []string{"EMT-B"})
	members := []AssignedMember{
		testMember(t, "P-001", "Alice Ray", []string{"EMT-B"}, map[string]time.Time{
			"EMT-B": now.Add(-time.Hour),
			"FF1":   now.Add(-2 * time.Hour),
		}),
	}

	first := ComputeReadiness(unit, members, now)
	second := ComputeReadiness(unit, members, now)

	assert.Equal(t, first, second)
	assert.Equal(t, now, first.Timestamp)
	// Expired entries come out in a stable order
	assert.Equal(t, []string{"Alice Ray: EMT-B", "Alice Ray: FF1"}, first.ExpiredCertifications)
}

// TestComputeReadinessPendingNotCounted verifies non-on-shift
// assignments do not count toward staffing
func TestComputeReadinessPendingNotCounted(t *testing.T) {
	unit := testUnit(t, 2, nil)
	active := testMember(t, "P-001", "Alice Ray", nil, nil)
	pending := testMember(t, "P-002", "Bob Cole", nil, nil)
	pending.Assignment.Status = AssignmentPending

	report := ComputeReadiness(unit, []AssignedMember{active, pending}, time.Now().UTC())

	assert.Equal(t, 1, report.StaffPresent)
	assert.True(t, report.IsUnderstaffed)
}
