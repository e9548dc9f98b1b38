package handlers

import (
	"net/http"

	"github.com/caseboard/visit-scheduler/internal/services"
	"github.com/go-chi/chi/v5"
)

type AreaHandler struct {
	intakeService *services.IntakeService
}

func NewAreaHandler(intakeService *services.IntakeService) *AreaHandler {
	return &AreaHandler{intakeService: intakeService}
}

func (handler *AreaHandler) List(w http.ResponseWriter, r *http.Request) {
	areas, err := handler.intakeService.ListAreas(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}

func (handler *AreaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.AreaInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	area, err := handler.intakeService.CreateArea(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, area)
}

func (handler *AreaHandler) CreateDistrict(w http.ResponseWriter, r *http.Request) {
	var input services.AreaInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	district, err := handler.intakeService.CreateDistrict(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, district)
}
