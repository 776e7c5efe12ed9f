package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/middleware"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/application"
)

type mockRosterService struct {
	registerPersonnelFn func(ctx context.Context, cmd application.RegisterPersonnelCommand) (*application.PersonnelDTO, error)
	getPersonnelFn      func(ctx context.Context, query application.GetPersonnelQuery) (*application.PersonnelDTO, error)
	listPersonnelFn     func(ctx context.Context, query application.ListPersonnelQuery) ([]application.PersonnelDTO, error)
	countPersonnelFn    func(ctx context.Context) (int64, error)
	updatePersonnelFn   func(ctx context.Context, cmd application.UpdatePersonnelCommand) (*application.PersonnelDTO, error)
	setAvailabilityFn   func(ctx context.Context, cmd application.SetAvailabilityCommand) (*application.PersonnelDTO, error)
	checkInFn           func(ctx context.Context, cmd application.CheckInCommand) (*application.PersonnelDTO, error)
	setCertificationsFn func(ctx context.Context, cmd application.SetCertificationsCommand) (*application.PersonnelDTO, error)
	createUnitFn        func(ctx context.Context, cmd application.CreateUnitCommand) (*application.UnitDTO, error)
	getUnitFn           func(ctx context.Context, query application.GetUnitQuery) (*application.UnitDTO, error)
	listUnitsFn         func(ctx context.Context, query application.ListUnitsQuery) ([]application.UnitDTO, error)
	countUnitsFn        func(ctx context.Context) (int64, error)
	updateUnitFn        func(ctx context.Context, cmd application.UpdateUnitCommand) (*application.UnitDTO, error)
	deactivateUnitFn    func(ctx context.Context, cmd application.DeactivateUnitCommand) (*application.UnitDTO, error)
	createAssignmentFn  func(ctx context.Context, cmd application.CreateAssignmentCommand) (*application.AssignmentDTO, error)
	endAssignmentFn     func(ctx context.Context, cmd application.EndAssignmentCommand) (*application.AssignmentDTO, error)
	markAbsentFn        func(ctx context.Context, cmd application.MarkAbsentCommand) (*application.AssignmentDTO, error)
	listAssignmentsFn   func(ctx context.Context, query application.ListAssignmentsQuery) ([]application.AssignmentDTO, error)
}

func (m *mockRosterService) RegisterPersonnel(ctx context.Context, cmd application.RegisterPersonnelCommand) (*application.PersonnelDTO, error) {
	if m.registerPersonnelFn == nil {
		panic("RegisterPersonnel not implemented")
	}
	return m.registerPersonnelFn(ctx, cmd)
}

func (m *mockRosterService) GetPersonnel(ctx context.Context, query application.GetPersonnelQuery) (*application.PersonnelDTO, error) {
	if m.getPersonnelFn == nil {
		panic("GetPersonnel not implemented")
	}
	return m.getPersonnelFn(ctx, query)
}

func (m *mockRosterService) ListPersonnel(ctx context.Context, query application.ListPersonnelQuery) ([]application.PersonnelDTO, error) {
	if m.listPersonnelFn == nil {
		panic("ListPersonnel not implemented")
	}
	return m.listPersonnelFn(ctx, query)
}

func (m *mockRosterService) CountPersonnel(ctx context.Context) (int64, error) {
	if m.countPersonnelFn == nil {
		panic("CountPersonnel not implemented")
	}
	return m.countPersonnelFn(ctx)
}

func (m *mockRosterService) UpdatePersonnel(ctx context.Context, cmd application.UpdatePersonnelCommand) (*application.PersonnelDTO, error) {
	if m.updatePersonnelFn == nil {
		panic("UpdatePersonnel not implemented")
	}
	return m.updatePersonnelFn(ctx, cmd)
}

func (m *mockRosterService) SetAvailability(ctx context.Context, cmd application.SetAvailabilityCommand) (*application.PersonnelDTO, error) {
	if m.setAvailabilityFn == nil {
		panic("SetAvailability not implemented")
	}
	return m.setAvailabilityFn(ctx, cmd)
}

func (m *mockRosterService) CheckIn(ctx context.Context, cmd application.CheckInCommand) (*application.PersonnelDTO, error) {
	if m.checkInFn == nil {
		panic("CheckIn not implemented")
	}
	return m.checkInFn(ctx, cmd)
}

func (m *mockRosterService) SetCertifications(ctx context.Context, cmd application.SetCertificationsCommand) (*application.PersonnelDTO, error) {
	if m.setCertificationsFn == nil {
		panic("SetCertifications not implemented")
	}
	return m.setCertificationsFn(ctx, cmd)
}

func (m *mockRosterService) CreateUnit(ctx context.Context, cmd application.CreateUnitCommand) (*application.UnitDTO, error) {
	if m.createUnitFn == nil {
		panic("CreateUnit not implemented")
	}
	return m.createUnitFn(ctx, cmd)
}

func (m *mockRosterService) GetUnit(ctx context.Context, query application.GetUnitQuery) (*application.UnitDTO, error) {
	if m.getUnitFn == nil {
		panic("GetUnit not implemented")
	}
	return m.getUnitFn(ctx, query)
}

func (m *mockRosterService) ListUnits(ctx context.Context, query application.ListUnitsQuery) ([]application.UnitDTO, error) {
	if m.listUnitsFn == nil {
		panic("ListUnits not implemented")
	}
	return m.listUnitsFn(ctx, query)
}

func (m *mockRosterService) CountUnits(ctx context.Context) (int64, error) {
	if m.countUnitsFn == nil {
		panic("CountUnits not implemented")
	}
	return m.countUnitsFn(ctx)
}

func (m *mockRosterService) UpdateUnit(ctx context.Context, cmd application.UpdateUnitCommand) (*application.UnitDTO, error) {
	if m.updateUnitFn == nil {
		panic("UpdateUnit not implemented")
	}
	return m.updateUnitFn(ctx, cmd)
}

func (m *mockRosterService) DeactivateUnit(ctx context.Context, cmd application.DeactivateUnitCommand) (*application.UnitDTO, error) {
	if m.deactivateUnitFn == nil {
		panic("DeactivateUnit not implemented")
	}
	return m.deactivateUnitFn(ctx, cmd)
}

func (m *mockRosterService) CreateAssignment(ctx context.Context, cmd application.CreateAssignmentCommand) (*application.AssignmentDTO, error) {
	if m.createAssignmentFn == nil {
		panic("CreateAssignment not implemented")
	}
	return m.createAssignmentFn(ctx, cmd)
}

func (m *mockRosterService) EndAssignment(ctx context.Context, cmd application.EndAssignmentCommand) (*application.AssignmentDTO, error) {
	if m.endAssignmentFn == nil {
		panic("EndAssignment not implemented")
	}
	return m.endAssignmentFn(ctx, cmd)
}

func (m *mockRosterService) MarkAbsent(ctx context.Context, cmd application.MarkAbsentCommand) (*application.AssignmentDTO, error) {
	if m.markAbsentFn == nil {
		panic("MarkAbsent not implemented")
	}
	return m.markAbsentFn(ctx, cmd)
}

func (m *mockRosterService) ListAssignments(ctx context.Context, query application.ListAssignmentsQuery) ([]application.AssignmentDTO, error) {
	if m.listAssignmentsFn == nil {
		panic("ListAssignments not implemented")
	}
	return m.listAssignmentsFn(ctx, query)
}

func newRosterTestRouter(service RosterService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.InitValidator()
	router := gin.New()
	logger := logging.New(logging.DefaultConfig("test"))
	NewPersonnelHandlers(service, logger).RegisterRoutes(router.Group("/api/v1"))
	NewUnitHandlers(service, logger).RegisterRoutes(router.Group("/api/v1"))
	NewAssignmentHandlers(service, logger).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func performRequest(router *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPersonnelHandlers_RegisterPersonnel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockRosterService{
			registerPersonnelFn: func(ctx context.Context, cmd application.RegisterPersonnelCommand) (*application.PersonnelDTO, error) {
				if cmd.Name != "Dana Cole" {
					t.Fatalf("Name = %s", cmd.Name)
				}
				if len(cmd.Certifications) != 2 {
					t.Fatalf("Certifications = %v", cmd.Certifications)
				}
				return &application.PersonnelDTO{PersonnelID: "p-1", Name: cmd.Name, Availability: "AVAILABLE"}, nil
			},
		}
		router := newRosterTestRouter(service)

		body := `{"name":"Dana Cole","rank":"Lieutenant","role":"Paramedic","certifications":["EMT-P","ACLS"]}`
		rec := performRequest(router, http.MethodPost, "/api/v1/personnel", body)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var resp application.PersonnelDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.PersonnelID != "p-1" {
			t.Errorf("PersonnelID = %s", resp.PersonnelID)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		router := newRosterTestRouter(&mockRosterService{})

		rec := performRequest(router, http.MethodPost, "/api/v1/personnel", `{"role":"Paramedic"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("invalid availability rejected at binding", func(t *testing.T) {
		router := newRosterTestRouter(&mockRosterService{})

		body := `{"name":"Dana Cole","availability":"NAPPING"}`
		rec := performRequest(router, http.MethodPost, "/api/v1/personnel", body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "VALIDATION_ERROR") {
			t.Errorf("expected VALIDATION_ERROR code, body = %s", rec.Body.String())
		}
	})
}

func TestPersonnelHandlers_GetPersonnel(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		service := &mockRosterService{
			getPersonnelFn: func(ctx context.Context, query application.GetPersonnelQuery) (*application.PersonnelDTO, error) {
				return nil, errors.ErrPersonnelNotFound(query.PersonnelID)
			},
		}
		router := newRosterTestRouter(service)

		rec := performRequest(router, http.MethodGet, "/api/v1/personnel/p-404", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "PERSONNEL_NOT_FOUND") {
			t.Errorf("expected PERSONNEL_NOT_FOUND code, body = %s", rec.Body.String())
		}
	})
}

func TestPersonnelHandlers_ListPersonnel(t *testing.T) {
	t.Run("paginated", func(t *testing.T) {
		service := &mockRosterService{
			listPersonnelFn: func(ctx context.Context, query application.ListPersonnelQuery) ([]application.PersonnelDTO, error) {
				if query.Limit != 10 {
					t.Fatalf("Limit = %d", query.Limit)
				}
				if query.Offset != 10 {
					t.Fatalf("Offset = %d", query.Offset)
				}
				return []application.PersonnelDTO{{PersonnelID: "p-11"}}, nil
			},
			countPersonnelFn: func(ctx context.Context) (int64, error) {
				return 21, nil
			},
		}
		router := newRosterTestRouter(service)

		rec := performRequest(router, http.MethodGet, "/api/v1/personnel?page=2&pageSize=10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp struct {
			Data       []application.PersonnelDTO `json:"data"`
			TotalItems int64                      `json:"totalItems"`
			TotalPages int64                      `json:"totalPages"`
			HasNext    bool                       `json:"hasNext"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(resp.Data) != 1 || resp.TotalItems != 21 || resp.TotalPages != 3 || !resp.HasNext {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("filtered by availability", func(t *testing.T) {
		service := &mockRosterService{
			listPersonnelFn: func(ctx context.Context, query application.ListPersonnelQuery) ([]application.PersonnelDTO, error) {
				if query.Availability != "AVAILABLE" {
					t.Fatalf("Availability = %s", query.Availability)
				}
				return []application.PersonnelDTO{{PersonnelID: "p-1"}}, nil
			},
		}
		router := newRosterTestRouter(service)

		rec := performRequest(router, http.MethodGet, "/api/v1/personnel?availability=AVAILABLE", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestPersonnelHandlers_SetAvailability(t *testing.T) {
	service := &mockRosterService{
		setAvailabilityFn: func(ctx context.Context, cmd application.SetAvailabilityCommand) (*application.PersonnelDTO, error) {
			if cmd.PersonnelID != "p-1" {
				t.Fatalf("PersonnelID = %s", cmd.PersonnelID)
			}
			if string(cmd.Availability) != "OFF" {
				t.Fatalf("Availability = %s", cmd.Availability)
			}
			return &application.PersonnelDTO{PersonnelID: "p-1", Availability: "OFF"}, nil
		},
	}
	router := newRosterTestRouter(service)

	rec := performRequest(router, http.MethodPut, "/api/v1/personnel/p-1/availability", `{"availability":"OFF"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestUnitHandlers_CreateUnit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockRosterService{
			createUnitFn: func(ctx context.Context, cmd application.CreateUnitCommand) (*application.UnitDTO, error) {
				if cmd.Type != "ENGINE" {
					t.Fatalf("Type = %s", cmd.Type)
				}
				if cmd.MinimumStaff != 4 {
					t.Fatalf("MinimumStaff = %d", cmd.MinimumStaff)
				}
				return &application.UnitDTO{UnitID: "unit-1", Name: cmd.Name, Type: cmd.Type, Active: true}, nil
			},
		}
		router := newRosterTestRouter(service)

		body := `{"unit_name":"Engine 7","unit_type":"ENGINE","minimum_staff":4}`
		rec := performRequest(router, http.MethodPost, "/api/v1/units", body)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		router := newRosterTestRouter(&mockRosterService{})

		rec := performRequest(router, http.MethodPost, "/api/v1/units", `{"unit_name":"Engine 7"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("invalid unit type rejected at binding", func(t *testing.T) {
		router := newRosterTestRouter(&mockRosterService{})

		body := `{"unit_name":"Boat 1","unit_type":"BOAT","minimum_staff":2}`
		rec := performRequest(router, http.MethodPost, "/api/v1/units", body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "VALIDATION_ERROR") {
			t.Errorf("expected VALIDATION_ERROR code, body = %s", rec.Body.String())
		}
	})
}

func TestUnitHandlers_ListUnits(t *testing.T) {
	service := &mockRosterService{
		listUnitsFn: func(ctx context.Context, query application.ListUnitsQuery) ([]application.UnitDTO, error) {
			if !query.ActiveOnly {
				t.Fatal("expected ActiveOnly")
			}
			return []application.UnitDTO{{UnitID: "unit-1"}}, nil
		},
	}
	router := newRosterTestRouter(service)

	rec := performRequest(router, http.MethodGet, "/api/v1/units?active=true", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUnitHandlers_DeactivateUnit(t *testing.T) {
	service := &mockRosterService{
		deactivateUnitFn: func(ctx context.Context, cmd application.DeactivateUnitCommand) (*application.UnitDTO, error) {
			if cmd.UnitID != "unit-1" {
				t.Fatalf("UnitID = %s", cmd.UnitID)
			}
			return &application.UnitDTO{UnitID: "unit-1", Active: false}, nil
		},
	}
	router := newRosterTestRouter(service)

	rec := performRequest(router, http.MethodPost, "/api/v1/units/unit-1/deactivate", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAssignmentHandlers_CreateAssignment(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockRosterService{
			createAssignmentFn: func(ctx context.Context, cmd application.CreateAssignmentCommand) (*application.AssignmentDTO, error) {
				if cmd.UnitID != "unit-1" || cmd.PersonnelID != "p-1" {
					t.Fatalf("cmd = %+v", cmd)
				}
				return &application.AssignmentDTO{AssignmentID: "a-1", UnitID: cmd.UnitID, PersonnelID: cmd.PersonnelID, Status: "ON_SHIFT"}, nil
			},
		}
		router := newRosterTestRouter(service)

		body := `{"personnel_id":"p-1","unit_id":"unit-1","shift_start":"2026-03-10T08:00:00Z","shift_end":"2026-03-10T20:00:00Z"}`
		rec := performRequest(router, http.MethodPost, "/api/v1/assignments", body)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing certifications", func(t *testing.T) {
		service := &mockRosterService{
			createAssignmentFn: func(ctx context.Context, cmd application.CreateAssignmentCommand) (*application.AssignmentDTO, error) {
				return nil, errors.ErrValidation("personnel missing required certifications: EMT-P")
			},
		}
		router := newRosterTestRouter(service)

		body := `{"personnel_id":"p-1","unit_id":"unit-1","shift_start":"2026-03-10T08:00:00Z","shift_end":"2026-03-10T20:00:00Z"}`
		rec := performRequest(router, http.MethodPost, "/api/v1/assignments", body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "EMT-P") {
			t.Errorf("expected missing certification in body, got %s", rec.Body.String())
		}
	})
}

func TestAssignmentHandlers_EndAssignment(t *testing.T) {
	service := &mockRosterService{
		endAssignmentFn: func(ctx context.Context, cmd application.EndAssignmentCommand) (*application.AssignmentDTO, error) {
			if cmd.AssignmentID != "a-1" {
				t.Fatalf("AssignmentID = %s", cmd.AssignmentID)
			}
			return &application.AssignmentDTO{AssignmentID: "a-1", Status: "EARLY_OFF"}, nil
		},
	}
	router := newRosterTestRouter(service)

	rec := performRequest(router, http.MethodPost, "/api/v1/assignments/a-1/end", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAssignmentHandlers_ListAssignments(t *testing.T) {
	t.Run("requires filter", func(t *testing.T) {
		service := &mockRosterService{
			listAssignmentsFn: func(ctx context.Context, query application.ListAssignmentsQuery) ([]application.AssignmentDTO, error) {
				return nil, errors.ErrValidation("unit_id or personnel_id is required")
			},
		}
		router := newRosterTestRouter(service)

		rec := performRequest(router, http.MethodGet, "/api/v1/assignments", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("by unit", func(t *testing.T) {
		service := &mockRosterService{
			listAssignmentsFn: func(ctx context.Context, query application.ListAssignmentsQuery) ([]application.AssignmentDTO, error) {
				if query.UnitID != "unit-1" {
					t.Fatalf("UnitID = %s", query.UnitID)
				}
				return []application.AssignmentDTO{{AssignmentID: "a-1"}}, nil
			},
		}
		router := newRosterTestRouter(service)

		rec := performRequest(router, http.MethodGet, "/api/v1/assignments?unit_id=unit-1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}
