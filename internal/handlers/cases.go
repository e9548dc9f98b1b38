package handlers

import (
	"net/http"

	"github.com/caseboard/visit-scheduler/internal/grid"
	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/services"
	"github.com/go-chi/chi/v5"
)

type CaseHandler struct {
	intakeService     *services.IntakeService
	schedulingService *services.SchedulingService
}

func NewCaseHandler(intakeService *services.IntakeService, schedulingService *services.SchedulingService) *CaseHandler {
	return &CaseHandler{
		intakeService:     intakeService,
		schedulingService: schedulingService,
	}
}

func (handler *CaseHandler) ListUnassigned(w http.ResponseWriter, r *http.Request) {
	status := models.UnassignedStatus(r.URL.Query().Get("status"))

	pool, err := handler.intakeService.ListUnassigned(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	if pool == nil {
		pool = []models.UnassignedCase{}
	}
	writeJSON(w, http.StatusOK, pool)
}

func (handler *CaseHandler) GetUnassigned(w http.ResponseWriter, r *http.Request) {
	pending, err := handler.intakeService.GetUnassigned(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

func (handler *CaseHandler) CreateUnassigned(w http.ResponseWriter, r *http.Request) {
	var input services.UnassignedCaseInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	pending, err := handler.intakeService.CreateUnassignedCase(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pending)
}

func (handler *CaseHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StaffID string `json:"staffId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.StaffID == "" {
		writeError(w, &services.ValidationError{Fields: map[string]string{"staffId": "is required"}})
		return
	}

	caseID, err := handler.schedulingService.AssignCase(r.Context(), chi.URLParam(r, "id"), body.StaffID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"caseId": caseID})
}

func (handler *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := handler.schedulingService.GetCase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (handler *CaseHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var input services.CaseInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	caseID := chi.URLParam(r, "id")
	if err := handler.schedulingService.EditCase(r.Context(), caseID, input); err != nil {
		writeError(w, err)
		return
	}

	view, err := handler.schedulingService.GetCase(r.Context(), caseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (handler *CaseHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	if err := handler.schedulingService.UnassignCase(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *CaseHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := handler.schedulingService.DeactivateCase(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Grid returns the weekly board. The optional area parameter limits it to
// one area by name.
func (handler *CaseHandler) Grid(w http.ResponseWriter, r *http.Request) {
	filter := grid.AreaFilter(r.URL.Query().Get("area"))

	rects, err := handler.schedulingService.GetWeeklyGrid(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dayStart":    grid.DayStart.String(),
		"slotMinutes": grid.SlotMinutes,
		"slotsPerDay": grid.SlotsPerDay,
		"rects":       rects,
	})
}
