package server

import (
	"log/slog"
	"net/http"

	"github.com/caseboard/visit-scheduler/internal/config"
	"github.com/caseboard/visit-scheduler/internal/handlers"
	"github.com/caseboard/visit-scheduler/internal/middleware"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(store *repository.Store, cfg config.Config, authService *services.AuthService) *Server {
	resolver := services.NewConflictResolver(cfg.StrictTimeMatching)

	staffService := services.NewStaffService(store.Staff, store)
	matcherService := services.NewMatcherService(store.Staff, store.ScheduleEntries, cfg.StrictTimeMatching)
	intakeService := services.NewIntakeService(store.Areas, store.UnassignedCases, store)
	schedulingService := services.NewSchedulingService(store.Repositories, store, resolver)

	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(authService)
	staffHandler := handlers.NewStaffHandler(staffService, matcherService, schedulingService)
	caseHandler := handlers.NewCaseHandler(intakeService, schedulingService)
	areaHandler := handlers.NewAreaHandler(intakeService)

	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Get("/login", authHandler.Login)
	router.Get("/auth/callback", authHandler.Callback)
	router.Get("/logout", authHandler.Logout)
	if !authService.OIDCConfigured() {
		router.Post("/auth/dev", authHandler.DevLogin)
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))

		r.Post("/api/unassigned-cases", caseHandler.CreateUnassigned)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIScope)

			r.Get("/api/staff", staffHandler.List)
			r.Get("/api/staff/search", staffHandler.Search)
			r.Get("/api/staff/stats", staffHandler.Statistics)
			r.Get("/api/staff/regions", staffHandler.Regions)
			r.Get("/api/staff/{id}", staffHandler.Get)
			r.Get("/api/staff/{id}/cases", staffHandler.Cases)
			r.Get("/api/staff/{id}/schedule.ics", staffHandler.Calendar)

			r.Get("/api/unassigned-cases", caseHandler.ListUnassigned)
			r.Get("/api/unassigned-cases/{id}", caseHandler.GetUnassigned)
			r.Post("/api/unassigned-cases/{id}/assign", caseHandler.Assign)

			r.Get("/api/cases/{id}", caseHandler.Get)
			r.Put("/api/cases/{id}", caseHandler.Edit)
			r.Post("/api/cases/{id}/unassign", caseHandler.Unassign)

			r.Get("/api/grid", caseHandler.Grid)
			r.Get("/api/areas", areaHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/api/staff", staffHandler.Create)
				r.Patch("/api/staff/{id}", staffHandler.Update)
				r.Post("/api/staff/{id}/deactivate", staffHandler.Deactivate)
				r.Post("/api/staff/{id}/blocks", staffHandler.AddBlock)

				r.Post("/api/cases/{id}/deactivate", caseHandler.Deactivate)

				r.Post("/api/areas", areaHandler.Create)
				r.Post("/api/areas/{id}/districts", areaHandler.CreateDistrict)

				r.Get("/api/users", adminHandler.Users)
				r.Post("/api/users/{id}/promote", adminHandler.PromoteUser)
				r.Post("/api/users/{id}/demote", adminHandler.DemoteUser)

				r.Get("/api/tokens", adminHandler.Tokens)
				r.Post("/api/tokens", adminHandler.CreateToken)
				r.Delete("/api/tokens/{id}", adminHandler.DeleteToken)
			})
		})
	})

	server := &Server{
		router: router,
		config: cfg,
	}

	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}
