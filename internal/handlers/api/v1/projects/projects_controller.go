// ===============================
// FILE: internal/handlers/api/v1/projects/projects_controller.go
// ===============================

package projects

import (
	"encoding/json"
	"net/http"
	"strconv"

	"badgehub/internal/response"
	"badgehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ProjectController handles project, participation and task endpoints.
type ProjectController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
	paginationParser  *response.PaginationParser
}

// NewProjectController creates a new project controller
func NewProjectController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *ProjectController {
	return &ProjectController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
		paginationParser:  response.NewPaginationParser(response.DefaultPaginationConfig()),
	}
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreateProject handles POST /api/v1/projects
func (c *ProjectController) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode create project request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body format", nil))
		return
	}

	project, err := c.serviceCollection.ProjectService.CreateProject(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, project)
}

// GetProject handles GET /api/v1/projects/{id}
func (c *ProjectController) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	project, err := c.serviceCollection.ProjectService.GetProjectByID(r.Context(), id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, project)
}

// GetProjectBySlug handles GET /api/v1/projects/slug/{slug}
func (c *ProjectController) GetProjectBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	project, err := c.serviceCollection.ProjectService.GetProjectBySlug(r.Context(), slug)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, project)
}

// ListProjects handles GET /api/v1/projects
func (c *ProjectController) ListProjects(w http.ResponseWriter, r *http.Request) {
	params := c.paginationParser.Parse(r)

	result, err := c.serviceCollection.ProjectService.ListProjects(r.Context(), params)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, result.Data, &result.Pagination)
}

// ===============================
// PARTICIPATION
// ===============================

// JoinProject handles POST /api/v1/projects/{id}/join
func (c *ProjectController) JoinProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.JoinProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode join project request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body format", nil))
		return
	}
	req.ProjectID = projectID

	participation, err := c.serviceCollection.ProjectService.JoinProject(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, participation)
}

// LeaveProject handles DELETE /api/v1/projects/{id}/participants/{userID}
func (c *ProjectController) LeaveProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if err := c.serviceCollection.ProjectService.LeaveProject(r.Context(), projectID, userID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteNoContent(w, r)
}

// GetPeers handles GET /api/v1/projects/{id}/peers
func (c *ProjectController) GetPeers(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var excludeUserID int64
	if raw := r.URL.Query().Get("exclude_user_id"); raw != "" {
		if excludeUserID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid exclude_user_id parameter", nil))
			return
		}
	}

	peers, err := c.serviceCollection.ProjectService.GetPeers(r.Context(), projectID, excludeUserID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, peers)
}

// ===============================
// TASKS
// ===============================

// CreateTask handles POST /api/v1/projects/{id}/tasks
func (c *ProjectController) CreateTask(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode create task request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body format", nil))
		return
	}
	req.ProjectID = projectID

	task, err := c.serviceCollection.ProjectService.CreateTask(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, task)
}

// ToggleTask handles POST /api/v1/tasks/{id}/toggle
//
// Checking the last listed task can trigger badge awards; any awards
// issued as a side effect are returned alongside the toggle result.
func (c *ProjectController) ToggleTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.ToggleTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode toggle task request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body format", nil))
		return
	}
	req.TaskID = taskID

	awards, err := c.serviceCollection.ProjectService.ToggleTaskCompletion(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{
		"checked": req.Checked,
		"awards":  awards,
	})
}

// ===============================
// HELPERS
// ===============================

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError("Invalid "+name+" parameter", nil)
	}
	return id, nil
}
