package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/services"
	"github.com/caseboard/visit-scheduler/internal/timetext"
	"github.com/go-chi/chi/v5"
)

type StaffHandler struct {
	staffService      *services.StaffService
	matcherService    *services.MatcherService
	schedulingService *services.SchedulingService
}

func NewStaffHandler(
	staffService *services.StaffService,
	matcherService *services.MatcherService,
	schedulingService *services.SchedulingService,
) *StaffHandler {
	return &StaffHandler{
		staffService:      staffService,
		matcherService:    matcherService,
		schedulingService: schedulingService,
	}
}

func (handler *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	members, err := handler.staffService.ListStaff(r.Context(), includeInactive)
	if err != nil {
		writeError(w, err)
		return
	}
	if members == nil {
		members = []models.Staff{}
	}
	writeJSON(w, http.StatusOK, members)
}

// Search reads its criteria from the query string:
// region, ageMin, ageMax, gender, days, time, interests (comma separated)
// and excludeOccupied.
func (handler *StaffHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	ageMin, err := queryInt(r, "ageMin")
	if err != nil {
		writeError(w, err)
		return
	}
	ageMax, err := queryInt(r, "ageMax")
	if err != nil {
		writeError(w, err)
		return
	}

	criteria := services.Criteria{
		Region:          query.Get("region"),
		AgeMin:          ageMin,
		AgeMax:          ageMax,
		Gender:          query.Get("gender"),
		Days:            timetext.NormalizeDays(query.Get("days")),
		ExcludeOccupied: query.Get("excludeOccupied") == "true",
	}
	if timeText := query.Get("time"); timeText != "" {
		criteria.TimeRange, err = timetext.Normalize(timeText)
		if err != nil {
			writeError(w, &services.ValidationError{Fields: map[string]string{"time": err.Error()}})
			return
		}
	}
	if interests := query.Get("interests"); interests != "" {
		criteria.Interests = strings.Split(interests, ",")
	}

	members, err := handler.matcherService.Search(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (handler *StaffHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := handler.staffService.Statistics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (handler *StaffHandler) Regions(w http.ResponseWriter, r *http.Request) {
	regions, err := handler.staffService.Regions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if regions == nil {
		regions = []string{}
	}
	writeJSON(w, http.StatusOK, regions)
}

func (handler *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	staff, err := handler.staffService.GetStaff(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

func (handler *StaffHandler) Cases(w http.ResponseWriter, r *http.Request) {
	cases, err := handler.schedulingService.GetStaffCases(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

// Calendar serves the staff member's schedule as an iCalendar feed anchored
// on the current week.
func (handler *StaffHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	feed, err := handler.schedulingService.StaffCalendar(r.Context(), chi.URLParam(r, "id"), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="schedule.ics"`)
	if _, err := w.Write([]byte(feed)); err != nil {
		slog.Error("writing calendar feed", "error", err)
	}
}

func (handler *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.StaffInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	staff, err := handler.staffService.AddStaff(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, staff)
}

func (handler *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch services.StaffPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	staff, err := handler.staffService.UpdateStaff(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

func (handler *StaffHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := handler.staffService.DeactivateStaff(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *StaffHandler) AddBlock(w http.ResponseWriter, r *http.Request) {
	var input services.BlockInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	entries, err := handler.schedulingService.AddBlock(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entries)
}
