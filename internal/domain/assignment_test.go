package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssignment(t *testing.T, start, end time.Time) *UnitAssignment {
	t.Helper()
	a, err := NewUnitAssignment("ASSIGN-001", "UNIT-001", "P-001", "Firefighter", start, end)
	require.NoError(t, err)
	return a
}

// TestNewUnitAssignment tests assignment creation
func TestNewUnitAssignment(t *testing.T) {
	start := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	a := newTestAssignment(t, start, start.Add(12*time.Hour))

	assert.Equal(t, AssignmentOnShift, a.Status)
	assert.Equal(t, start, a.ShiftStart)

	events := a.GetDomainEvents()
	require.Len(t, events, 1)
	_, ok := events[0].(*AssignmentCreatedEvent)
	assert.True(t, ok)
}

// TestNewUnitAssignmentRejectsInvertedShift tests the shift window invariant
func TestNewUnitAssignmentRejectsInvertedShift(t *testing.T) {
	start := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	_, err := NewUnitAssignment("ASSIGN-001", "UNIT-001", "P-001", "", start, start.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrShiftEndBeforeStart)

	_, err = NewUnitAssignment("ASSIGN-001", "UNIT-001", "P-001", "", start, start)
	assert.ErrorIs(t, err, ErrShiftEndBeforeStart)
}

// TestAssignmentIsActiveAt tests the staffing window rules
func TestAssignmentIsActiveAt(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		start  time.Time
		end    time.Time
		status AssignmentStatus
		active bool
	}{
		{
			name:   "inside shift window",
			start:  now.Add(-4 * time.Hour),
			end:    now.Add(8 * time.Hour),
			status: AssignmentOnShift,
			active: true,
		},
		{
			name:   "future shift starting today",
			start:  now.Add(6 * time.Hour),
			end:    now.Add(18 * time.Hour),
			status: AssignmentOnShift,
			active: true,
		},
		{
			name:   "shift starting tomorrow",
			start:  now.Add(13 * time.Hour),
			end:    now.Add(25 * time.Hour),
			status: AssignmentOnShift,
			active: false,
		},
		{
			name:   "shift ended yesterday",
			start:  now.Add(-30 * time.Hour),
			end:    now.Add(-18 * time.Hour),
			status: AssignmentOnShift,
			active: false,
		},
		{
			name:   "absent inside window",
			start:  now.Add(-4 * time.Hour),
			end:    now.Add(8 * time.Hour),
			status: AssignmentAbsent,
			active: false,
		},
		{
			name:   "early off inside window",
			start:  now.Add(-4 * time.Hour),
			end:    now.Add(8 * time.Hour),
			status: AssignmentEarlyOff,
			active: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAssignment(t, tt.start, tt.end)
			a.Status = tt.status
			assert.Equal(t, tt.active, a.IsActiveAt(now))
		})
	}
}

// TestAssignmentMarkAbsent tests the absent transition
func TestAssignmentMarkAbsent(t *testing.T) {
	start := time.Now().UTC()
	a := newTestAssignment(t, start, start.Add(8*time.Hour))

	require.NoError(t, a.MarkAbsent())
	assert.Equal(t, AssignmentAbsent, a.Status)

	assert.ErrorIs(t, a.MarkAbsent(), ErrAssignmentNotOnShift)
}

// TestAssignmentEndEarly tests the early-off transition and event
func TestAssignmentEndEarly(t *testing.T) {
	start := time.Now().UTC()
	a := newTestAssignment(t, start, start.Add(8*time.Hour))
	a.ClearDomainEvents()

	require.NoError(t, a.EndEarly())
	assert.Equal(t, AssignmentEarlyOff, a.Status)

	events := a.GetDomainEvents()
	require.Len(t, events, 1)
	_, ok := events[0].(*AssignmentEndedEvent)
	assert.True(t, ok)

	assert.ErrorIs(t, a.EndEarly(), ErrAssignmentNotOnShift)
}
