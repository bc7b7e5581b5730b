// ===============================
// FILE: internal/handlers/api/v1/assessments/assessments_controller.go
// ===============================

package assessments

import (
	"encoding/json"
	"net/http"
	"strconv"

	"badgehub/internal/response"
	"badgehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AssessmentController handles assessment and rating endpoints.
type AssessmentController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewAssessmentController creates a new assessment controller
func NewAssessmentController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AssessmentController {
	return &AssessmentController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// SubmitAssessment handles POST /api/v1/assessments
func (c *AssessmentController) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode submit assessment request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body format", nil))
		return
	}

	assessment, err := c.serviceCollection.AssessmentService.SubmitAssessment(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, assessment)
}

// SubmitRating handles POST /api/v1/assessments/{id}/ratings
func (c *AssessmentController) SubmitRating(w http.ResponseWriter, r *http.Request) {
	assessmentID, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.SubmitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode submit rating request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body format", nil))
		return
	}
	req.AssessmentID = assessmentID

	rating, err := c.serviceCollection.AssessmentService.SubmitRating(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, rating)
}

// GetAssessment handles GET /api/v1/assessments/{id}
func (c *AssessmentController) GetAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	assessment, err := c.serviceCollection.AssessmentService.GetAssessment(r.Context(), id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, assessment)
}

// ListUserAssessments handles GET /api/v1/badges/{badgeID}/users/{userID}/assessments
func (c *AssessmentController) ListUserAssessments(w http.ResponseWriter, r *http.Request) {
	badgeID, err := pathID(r, "badgeID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	assessments, err := c.serviceCollection.AssessmentService.ListUserAssessments(r.Context(), badgeID, userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, assessments)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError("Invalid "+name+" parameter", nil)
	}
	return id, nil
}
