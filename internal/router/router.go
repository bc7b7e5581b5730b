package router

import (
	"net/http"

	"badgehub/internal/config"
	"badgehub/internal/handlers/api/v1/assessments"
	"badgehub/internal/handlers/api/v1/badges"
	"badgehub/internal/handlers/api/v1/projects"
	"badgehub/internal/handlers/api/v1/users"
	"badgehub/internal/middleware"
	"badgehub/internal/response"
	"badgehub/internal/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(
	serviceCollection *services.ServiceCollection,
	cfg *config.Config,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Middleware order matters: request IDs first so every later stage
	// logs with correlation, recovery before anything that can panic.
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityConfig()))
	r.Use(middleware.StructuredLogger(logger))
	r.Use(response.Middleware(responseBuilder))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
	}

	rateLimiter := middleware.NewRateLimiter(serviceCollection.Cache, middleware.DefaultRateLimiterConfig(), logger)
	r.Use(rateLimiter.Middleware())

	registerOperationalRoutes(r, serviceCollection, cfg, responseBuilder)
	registerAPIRoutes(r, serviceCollection, responseBuilder, logger)

	return r
}

func registerOperationalRoutes(
	r *mux.Router,
	serviceCollection *services.ServiceCollection,
	cfg *config.Config,
	responseBuilder *response.Builder,
) {
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		health, err := serviceCollection.HealthCheck(req.Context())
		if err != nil {
			responseBuilder.WriteError(w, req, err)
			return
		}
		if health.Status != "healthy" {
			responseBuilder.WriteJSON(w, req, responseBuilder.Success(req.Context(), health), http.StatusServiceUnavailable)
			return
		}
		responseBuilder.WriteSuccess(w, req, health)
	}).Methods(http.MethodGet)

	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler()).Methods(http.MethodGet)
	}
}

func registerAPIRoutes(
	r *mux.Router,
	serviceCollection *services.ServiceCollection,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) {
	api := r.PathPrefix("/api/v1").Subrouter()

	badgeController := badges.NewBadgeController(serviceCollection, logger, responseBuilder)
	projectController := projects.NewProjectController(serviceCollection, logger, responseBuilder)
	userController := users.NewUserController(serviceCollection, logger, responseBuilder)
	assessmentController := assessments.NewAssessmentController(serviceCollection, logger, responseBuilder)

	// Badges
	api.HandleFunc("/badges", badgeController.CreateBadge).Methods(http.MethodPost)
	api.HandleFunc("/badges", badgeController.ListBadges).Methods(http.MethodGet)
	api.HandleFunc("/badges/slug/{slug}", badgeController.GetBadgeBySlug).Methods(http.MethodGet)
	api.HandleFunc("/badges/{id:[0-9]+}", badgeController.GetBadge).Methods(http.MethodGet)
	api.HandleFunc("/badges/{id:[0-9]+}", badgeController.UpdateBadge).Methods(http.MethodPut)
	api.HandleFunc("/badges/{id:[0-9]+}/projects/{projectID:[0-9]+}", badgeController.AttachToProject).Methods(http.MethodPost)
	api.HandleFunc("/badges/{id:[0-9]+}/submissions", badgeController.SubmitForBadge).Methods(http.MethodPost)
	api.HandleFunc("/badges/{id:[0-9]+}/submissions/pending", badgeController.ListPendingSubmissions).Methods(http.MethodGet)
	api.HandleFunc("/badges/{id:[0-9]+}/awards", badgeController.ListBadgeAwards).Methods(http.MethodGet)
	api.HandleFunc("/badges/{id:[0-9]+}/image", badgeController.UploadBadgeImage).Methods(http.MethodPost)

	// Assessments
	api.HandleFunc("/assessments", assessmentController.SubmitAssessment).Methods(http.MethodPost)
	api.HandleFunc("/assessments/{id:[0-9]+}", assessmentController.GetAssessment).Methods(http.MethodGet)
	api.HandleFunc("/assessments/{id:[0-9]+}/ratings", assessmentController.SubmitRating).Methods(http.MethodPost)
	api.HandleFunc("/badges/{badgeID:[0-9]+}/users/{userID:[0-9]+}/assessments", assessmentController.ListUserAssessments).Methods(http.MethodGet)

	// Projects
	api.HandleFunc("/projects", projectController.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects", projectController.ListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects/slug/{slug}", projectController.GetProjectBySlug).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id:[0-9]+}", projectController.GetProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id:[0-9]+}/join", projectController.JoinProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id:[0-9]+}/participants/{userID:[0-9]+}", projectController.LeaveProject).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{id:[0-9]+}/peers", projectController.GetPeers).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id:[0-9]+}/tasks", projectController.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID:[0-9]+}/badges", badgeController.ListProjectBadges).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID:[0-9]+}/badge-board", badgeController.GetProjectBadgeBoard).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id:[0-9]+}/toggle", projectController.ToggleTask).Methods(http.MethodPost)

	// Users
	api.HandleFunc("/users", userController.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users", userController.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/username/{username}", userController.GetUserByUsername).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", userController.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/awards", userController.ListUserAwards).Methods(http.MethodGet)
}
