package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/caseboard/visit-scheduler/internal/config"
	"github.com/caseboard/visit-scheduler/internal/middleware"
	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/services"
	"github.com/caseboard/visit-scheduler/internal/testutil"
	"github.com/go-chi/chi/v5"
)

type testEnv struct {
	store  *repository.Store
	admin  models.User
	router *chi.Mux
	staff  *services.StaffService
	intake *services.IntakeService
}

func setupHandlers(t *testing.T) testEnv {
	t.Helper()
	store := testutil.NewTestStore(t)

	authService, err := services.NewAuthService(context.Background(), config.Config{SessionSecret: "test-secret"}, store.Users, store.APITokens)
	if err != nil {
		t.Fatalf("creating auth service: %v", err)
	}

	admin, err := store.Users.Create(context.Background(), models.User{
		OIDCSubject: "sub-" + time.Now().String(),
		Email:       "admin@example.com",
		Name:        "Admin",
		Role:        models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}

	staffService := services.NewStaffService(store.Staff, store)
	matcherService := services.NewMatcherService(store.Staff, store.ScheduleEntries, false)
	intakeService := services.NewIntakeService(store.Areas, store.UnassignedCases, store)
	schedulingService := services.NewSchedulingService(store.Repositories, store, services.NewConflictResolver(false))

	staffHandler := NewStaffHandler(staffService, matcherService, schedulingService)
	caseHandler := NewCaseHandler(intakeService, schedulingService)
	areaHandler := NewAreaHandler(intakeService)
	adminHandler := NewAdminHandler(authService)

	router := chi.NewRouter()
	router.Get("/api/staff", staffHandler.List)
	router.Post("/api/staff", staffHandler.Create)
	router.Get("/api/staff/search", staffHandler.Search)
	router.Get("/api/staff/regions", staffHandler.Regions)
	router.Get("/api/staff/{id}", staffHandler.Get)
	router.Patch("/api/staff/{id}", staffHandler.Update)
	router.Post("/api/staff/{id}/blocks", staffHandler.AddBlock)
	router.Get("/api/staff/{id}/schedule.ics", staffHandler.Calendar)
	router.Get("/api/unassigned-cases", caseHandler.ListUnassigned)
	router.Post("/api/unassigned-cases", caseHandler.CreateUnassigned)
	router.Post("/api/unassigned-cases/{id}/assign", caseHandler.Assign)
	router.Get("/api/cases/{id}", caseHandler.Get)
	router.Put("/api/cases/{id}", caseHandler.Edit)
	router.Post("/api/cases/{id}/unassign", caseHandler.Unassign)
	router.Get("/api/grid", caseHandler.Grid)
	router.Get("/api/areas", areaHandler.List)
	router.Post("/api/areas", areaHandler.Create)
	router.Get("/api/tokens", adminHandler.Tokens)
	router.Post("/api/tokens", adminHandler.CreateToken)
	router.Delete("/api/tokens/{id}", adminHandler.DeleteToken)
	router.Post("/api/users/{id}/demote", adminHandler.DemoteUser)

	return testEnv{
		store:  store,
		admin:  admin,
		router: router,
		staff:  staffService,
		intake: intakeService,
	}
}

func requestWithUser(request *http.Request, user models.User) *http.Request {
	ctx := context.WithValue(request.Context(), middleware.UserContextKey, user)
	return request.WithContext(ctx)
}

func (env testEnv) do(t *testing.T, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, path, nil)
	} else {
		request = httptest.NewRequest(method, path, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	}
	request = requestWithUser(request, env.admin)

	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("decoding body %q: %v", recorder.Body.String(), err)
	}
}

func (env testEnv) addStaff(t *testing.T, name string, workDays string, workHours string) models.Staff {
	t.Helper()
	staff, err := env.staff.AddStaff(context.Background(), services.StaffInput{
		Name:      name,
		Age:       30,
		Region:    "Kita",
		WorkDays:  workDays,
		WorkHours: workHours,
	})
	if err != nil {
		t.Fatalf("adding staff: %v", err)
	}
	return staff
}
