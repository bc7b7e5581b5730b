// file: internal/services/types.go
package services

import (
	"io"
)

// ===============================
// BADGE SERVICE TYPES
// ===============================

// LogicSpec carries the threshold configuration for a new badge.
type LogicSpec struct {
	MinQualifiedAdopterVotes int `json:"min_qualified_adopter_votes" validate:"min=0"`
	MinQualifiedVotes        int `json:"min_qualified_votes" validate:"min=0"`
	MinRating                int `json:"min_rating" validate:"min=0,max=4"`
}

// CreateBadgeRequest carries everything needed to mint a badge.
type CreateBadgeRequest struct {
	Name           string  `json:"name" validate:"required,max=225"`
	Description    string  `json:"description" validate:"required,max=225"`
	AssessmentType string  `json:"assessment_type" validate:"required,oneof=self peer stealth"`
	BadgeType      string  `json:"badge_type" validate:"required,oneof=completion skill community stealth other"`
	Unique         bool    `json:"unique"`
	CreatorID      *int64  `json:"creator_id,omitempty"`
	ImageURL       *string `json:"image_url,omitempty"`
	ImagePublicID  *string `json:"image_public_id,omitempty"`

	Logic         *LogicSpec `json:"logic,omitempty"`
	Rubrics       []string   `json:"rubrics,omitempty"`
	Prerequisites []int64    `json:"prerequisites,omitempty"`
	ProjectIDs    []int64    `json:"project_ids,omitempty"`
}

// UpdateBadgeRequest updates a badge's mutable fields.
type UpdateBadgeRequest struct {
	BadgeID     int64   `json:"badge_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=225"`
	Description string  `json:"description" validate:"required,max=225"`
	Unique      bool    `json:"unique"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// CreateSubmissionRequest is a user's application for a badge.
type CreateSubmissionRequest struct {
	BadgeID  int64  `json:"badge_id" validate:"required"`
	AuthorID int64  `json:"author_id" validate:"required"`
	Content  string `json:"content" validate:"required"`
	URL      string `json:"url" validate:"omitempty,url,max=1023"`
}

// ===============================
// ASSESSMENT SERVICE TYPES
// ===============================

// SubmitAssessmentRequest records one reviewer's judgment of a candidate.
type SubmitAssessmentRequest struct {
	BadgeID      int64  `json:"badge_id" validate:"required"`
	AssessorID   int64  `json:"assessor_id" validate:"required"`
	AssessedID   int64  `json:"assessed_id" validate:"required"`
	Comment      string `json:"comment" validate:"required"`
	SubmissionID *int64 `json:"submission_id,omitempty"`
}

// SubmitRatingRequest appends a rubric score to an assessment.
type SubmitRatingRequest struct {
	AssessmentID int64 `json:"assessment_id" validate:"required"`
	RubricID     int64 `json:"rubric_id" validate:"required"`
	Score        int   `json:"score" validate:"required,min=1,max=4"`
}

// ===============================
// PROJECT SERVICE TYPES
// ===============================

// CreateProjectRequest creates a project with the creator as organizer.
type CreateProjectRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	Category         string `json:"category" validate:"required,oneof='study group' course challenge"`
	ShortDescription string `json:"short_description" validate:"required,max=150"`
	LongDescription  string `json:"long_description" validate:"omitempty,max=700"`
	UnderDevelopment bool   `json:"under_development"`
	NotListed        bool   `json:"not_listed"`
	CreatorID        int64  `json:"creator_id" validate:"required"`
}

// JoinProjectRequest adds a user to a project.
type JoinProjectRequest struct {
	ProjectID  int64 `json:"project_id" validate:"required"`
	UserID     int64 `json:"user_id" validate:"required"`
	Organizing bool  `json:"organizing"`
	Adopter    bool  `json:"adopter"`
}

// CreateTaskRequest adds a task to a project.
type CreateTaskRequest struct {
	ProjectID int64  `json:"project_id" validate:"required"`
	Title     string `json:"title" validate:"required,max=100"`
	Listed    bool   `json:"listed"`
}

// ToggleTaskRequest checks or unchecks a task for a user.
type ToggleTaskRequest struct {
	TaskID  int64   `json:"task_id" validate:"required"`
	UserID  int64   `json:"user_id" validate:"required"`
	Checked bool    `json:"checked"`
	URL     *string `json:"url,omitempty" validate:"omitempty,url,max=1023"`
}

// ===============================
// USER SERVICE TYPES
// ===============================

// CreateUserRequest registers a user profile.
type CreateUserRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email       string  `json:"email" validate:"required,email,max=320"`
	DisplayName string  `json:"display_name" validate:"omitempty,max=100"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
}

// ===============================
// FILE SERVICE TYPES
// ===============================

// FileUploadRequest uploads a badge image.
type FileUploadRequest struct {
	File        io.Reader `json:"-"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploaderID  int64     `json:"uploader_id"`
}

// FileUploadResult describes a stored badge image.
type FileUploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Size     int64  `json:"size"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// ===============================
// EMAIL SERVICE TYPES
// ===============================

// SendTemplateEmailRequest sends a templated notification.
type SendTemplateEmailRequest struct {
	To           []string               `json:"to" validate:"required,min=1"`
	TemplateID   string                 `json:"template_id" validate:"required"`
	TemplateData map[string]interface{} `json:"template_data,omitempty"`
}
