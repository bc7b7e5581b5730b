// ===============================
// FILE: internal/handlers/api/v1/badges/badges_controller.go
// ===============================

package badges

import (
	"encoding/json"
	"net/http"
	"strconv"

	"badgehub/internal/models"
	"badgehub/internal/response"
	"badgehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// BadgeController handles badge API endpoints.
type BadgeController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
	paginationParser  *response.PaginationParser
}

// NewBadgeController creates a new badge controller
func NewBadgeController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *BadgeController {
	return &BadgeController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
		paginationParser:  response.NewPaginationParser(response.DefaultPaginationConfig()),
	}
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreateBadge handles POST /api/v1/badges
func (c *BadgeController) CreateBadge(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode create badge request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body format", nil))
		return
	}

	badge, err := c.serviceCollection.BadgeService.CreateBadge(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, badge)
}

// GetBadge handles GET /api/v1/badges/{id}
func (c *BadgeController) GetBadge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	badge, err := c.serviceCollection.BadgeService.GetBadgeByID(r.Context(), id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, badge)
}

// GetBadgeBySlug handles GET /api/v1/badges/slug/{slug}
func (c *BadgeController) GetBadgeBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	badge, err := c.serviceCollection.BadgeService.GetBadgeBySlug(r.Context(), slug)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, badge)
}

// UpdateBadge handles PUT /api/v1/badges/{id}
func (c *BadgeController) UpdateBadge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.UpdateBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode update badge request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body format", nil))
		return
	}
	req.BadgeID = id

	badge, err := c.serviceCollection.BadgeService.UpdateBadge(r.Context(), id, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, badge)
}

// ListBadges handles GET /api/v1/badges
func (c *BadgeController) ListBadges(w http.ResponseWriter, r *http.Request) {
	params := c.paginationParser.Parse(r)

	result, err := c.serviceCollection.BadgeService.ListBadges(r.Context(), params)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, result.Data, &result.Pagination)
}

// ===============================
// PROJECT ATTACHMENT & BOARD
// ===============================

// AttachToProject handles POST /api/v1/badges/{id}/projects/{projectID}
func (c *BadgeController) AttachToProject(w http.ResponseWriter, r *http.Request) {
	badgeID, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if err := c.serviceCollection.BadgeService.AttachBadgeToProject(r.Context(), badgeID, projectID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteNoContent(w, r)
}

// ListProjectBadges handles GET /api/v1/projects/{projectID}/badges
func (c *BadgeController) ListProjectBadges(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	filter := models.BadgeFilter{
		OnlySelfCompletion: r.URL.Query().Get("self_completion") == "true",
	}

	badges, err := c.serviceCollection.BadgeService.GetProjectBadges(r.Context(), projectID, filter)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, badges)
}

// GetProjectBadgeBoard handles GET /api/v1/projects/{projectID}/badge-board
func (c *BadgeController) GetProjectBadgeBoard(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	userID, err := queryID(r, "user_id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	board, err := c.serviceCollection.BadgeService.GetProjectBadgeBoard(r.Context(), projectID, userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, board)
}

// ===============================
// SUBMISSIONS
// ===============================

// SubmitForBadge handles POST /api/v1/badges/{id}/submissions
func (c *BadgeController) SubmitForBadge(w http.ResponseWriter, r *http.Request) {
	badgeID, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode submission request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body format", nil))
		return
	}
	req.BadgeID = badgeID

	submission, err := c.serviceCollection.BadgeService.SubmitForBadge(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, submission)
}

// ListPendingSubmissions handles GET /api/v1/badges/{id}/submissions/pending
func (c *BadgeController) ListPendingSubmissions(w http.ResponseWriter, r *http.Request) {
	badgeID, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	viewerID, err := queryID(r, "viewer_id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	submissions, err := c.serviceCollection.BadgeService.ListPendingSubmissions(r.Context(), badgeID, viewerID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, submissions)
}

// ===============================
// AWARDS
// ===============================

// ListBadgeAwards handles GET /api/v1/badges/{id}/awards
func (c *BadgeController) ListBadgeAwards(w http.ResponseWriter, r *http.Request) {
	badgeID, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	awards, err := c.serviceCollection.AwardService.ListBadgeAwards(r.Context(), badgeID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, awards)
}

// ===============================
// IMAGE UPLOAD
// ===============================

const maxUploadMemory = 10 << 20 // 10 MB

// UploadBadgeImage handles POST /api/v1/badges/{id}/image
func (c *BadgeController) UploadBadgeImage(w http.ResponseWriter, r *http.Request) {
	badgeID, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if c.serviceCollection.FileService == nil {
		c.responseBuilder.WriteError(w, r,
			services.NewServiceUnavailableError("image uploads are not configured"))
		return
	}

	uploaderID, err := queryID(r, "uploader_id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid multipart form", nil))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Missing image file", nil))
		return
	}
	defer file.Close()

	result, err := c.serviceCollection.FileService.UploadBadgeImage(r.Context(), &services.FileUploadRequest{
		File:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		UploaderID:  uploaderID,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	badge, err := c.serviceCollection.BadgeService.GetBadgeByID(r.Context(), badgeID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	badge, err = c.serviceCollection.BadgeService.UpdateBadge(r.Context(), badgeID, &services.UpdateBadgeRequest{
		BadgeID:     badgeID,
		Name:        badge.Name,
		Description: badge.Description,
		Unique:      badge.Unique,
		ImageURL:    &result.URL,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{
		"badge":  badge,
		"upload": result,
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

func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError("Invalid "+name+" parameter", nil)
	}
	return id, nil
}
