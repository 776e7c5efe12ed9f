package handlers

import (
	"context"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/application"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

// RosterService is the roster operations the HTTP layer needs
type RosterService interface {
	RegisterPersonnel(ctx context.Context, cmd application.RegisterPersonnelCommand) (*application.PersonnelDTO, error)
	GetPersonnel(ctx context.Context, query application.GetPersonnelQuery) (*application.PersonnelDTO, error)
	ListPersonnel(ctx context.Context, query application.ListPersonnelQuery) ([]application.PersonnelDTO, error)
	CountPersonnel(ctx context.Context) (int64, error)
	UpdatePersonnel(ctx context.Context, cmd application.UpdatePersonnelCommand) (*application.PersonnelDTO, error)
	SetAvailability(ctx context.Context, cmd application.SetAvailabilityCommand) (*application.PersonnelDTO, error)
	CheckIn(ctx context.Context, cmd application.CheckInCommand) (*application.PersonnelDTO, error)
	SetCertifications(ctx context.Context, cmd application.SetCertificationsCommand) (*application.PersonnelDTO, error)
	CreateUnit(ctx context.Context, cmd application.CreateUnitCommand) (*application.UnitDTO, error)
	GetUnit(ctx context.Context, query application.GetUnitQuery) (*application.UnitDTO, error)
	ListUnits(ctx context.Context, query application.ListUnitsQuery) ([]application.UnitDTO, error)
	CountUnits(ctx context.Context) (int64, error)
	UpdateUnit(ctx context.Context, cmd application.UpdateUnitCommand) (*application.UnitDTO, error)
	DeactivateUnit(ctx context.Context, cmd application.DeactivateUnitCommand) (*application.UnitDTO, error)
	CreateAssignment(ctx context.Context, cmd application.CreateAssignmentCommand) (*application.AssignmentDTO, error)
	EndAssignment(ctx context.Context, cmd application.EndAssignmentCommand) (*application.AssignmentDTO, error)
	MarkAbsent(ctx context.Context, cmd application.MarkAbsentCommand) (*application.AssignmentDTO, error)
	ListAssignments(ctx context.Context, query application.ListAssignmentsQuery) ([]application.AssignmentDTO, error)
}

// ReadinessService is the readiness operations the HTTP layer needs
type ReadinessService interface {
	GetUnitReadiness(ctx context.Context, query application.GetUnitReadinessQuery) (*domain.ReadinessReport, error)
	CheckAllUnits(ctx context.Context) ([]domain.ReadinessReport, error)
	GetReadinessHistory(ctx context.Context, query application.GetReadinessHistoryQuery) ([]domain.ReadinessSample, error)
}

// CertificationService is the certification operations the HTTP layer
// needs
type CertificationService interface {
	CreateCertification(ctx context.Context, cmd application.CreateCertificationCommand) (*application.CertificationDTO, error)
	ListCertifications(ctx context.Context) ([]application.CertificationDTO, error)
	ListExpiring(ctx context.Context, query application.ListExpiringQuery) ([]application.ExpiringCertificationDTO, error)
	ListExpired(ctx context.Context) ([]application.ExpiredCertificationDTO, error)
	RunExpiryScan(ctx context.Context) (*application.ExpiryScanResultDTO, error)
}
