// file: internal/models/validation.go
package models

import (
	"fmt"
	"regexp"
)

// ===============================
// VALIDATION ERRORS
// ===============================

// ValidationError represents a validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("validation failed with %d errors", len(e))
}

// Add adds a validation error
func (e *ValidationErrors) Add(field, message, code string, value interface{}) {
	*e = append(*e, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
		Value:   value,
	})
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// GetField returns all errors for a specific field
func (e ValidationErrors) GetField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range e {
		if err.Field == field {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// ===============================
// VALIDATOR INTERFACE
// ===============================

// Validator defines the validation interface
type Validator interface {
	Validate() ValidationErrors
}

// ===============================
// DOMAIN VALIDATORS
// ===============================

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ScoreValidator validates an ordinal rubric score.
func ScoreValidator(field string, value int) *ValidationError {
	if value < RatingNever || value > RatingAlways {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("score must be between %d and %d", RatingNever, RatingAlways),
			Code:    "out_of_range",
			Value:   value,
		}
	}
	return nil
}

// SlugValidator validates a generated slug.
func SlugValidator(field string, value string) *ValidationError {
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: "slug is required",
			Code:    "required",
			Value:   value,
		}
	}
	if len(value) > 110 {
		return &ValidationError{
			Field:   field,
			Message: "slug must be 110 characters or less",
			Code:    "too_long",
			Value:   value,
		}
	}
	if !slugRegex.MatchString(value) {
		return &ValidationError{
			Field:   field,
			Message: "slug can only contain lowercase letters, numbers, and hyphens",
			Code:    "invalid_characters",
			Value:   value,
		}
	}
	return nil
}

// Validate implements Validator for Rating.
func (r *Rating) Validate() ValidationErrors {
	var errs ValidationErrors
	if err := ScoreValidator("score", r.Score); err != nil {
		errs = append(errs, *err)
	}
	if r.AssessmentID == 0 {
		errs.Add("assessment_id", "assessment is required", "required", r.AssessmentID)
	}
	if r.RubricID == 0 {
		errs.Add("rubric_id", "rubric is required", "required", r.RubricID)
	}
	return errs
}

// Validate implements Validator for Badge.
func (b *Badge) Validate() ValidationErrors {
	var errs ValidationErrors
	if b.Name == "" {
		errs.Add("name", "name is required", "required", b.Name)
	}
	if len(b.Name) > 225 {
		errs.Add("name", "name must be 225 characters or less", "too_long", b.Name)
	}
	if b.Description == "" {
		errs.Add("description", "description is required", "required", b.Description)
	}
	switch b.AssessmentType {
	case AssessmentSelf, AssessmentPeer, AssessmentStealth:
	default:
		errs.Add("assessment_type", "unknown assessment type", "invalid_choice", b.AssessmentType)
	}
	switch b.BadgeType {
	case BadgeCompletion, BadgeSkill, BadgeCommunity, BadgeStealth, BadgeOther:
	default:
		errs.Add("badge_type", "unknown badge type", "invalid_choice", b.BadgeType)
	}
	if b.Slug != "" {
		if err := SlugValidator("slug", b.Slug); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

// Validate implements Validator for Logic.
func (l *Logic) Validate() ValidationErrors {
	var errs ValidationErrors
	if l.MinQualifiedAdopterVotes < 0 {
		errs.Add("min_qualified_adopter_votes", "must not be negative", "out_of_range", l.MinQualifiedAdopterVotes)
	}
	if l.MinQualifiedVotes < 0 {
		errs.Add("min_qualified_votes", "must not be negative", "out_of_range", l.MinQualifiedVotes)
	}
	if l.MinRating < 0 || l.MinRating > RatingAlways {
		errs.Add("min_rating", "must be between 0 and 4", "out_of_range", l.MinRating)
	}
	return errs
}
