// file: internal/validation/validation_test.go
package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submissionPayload struct {
	BadgeID  int64  `json:"badge_id" validate:"required"`
	Content  string `json:"content" validate:"required"`
	URL      string `json:"url" validate:"omitempty,url"`
	Internal string `json:"-" validate:"omitempty,max=3"`
}

func TestValidateStructPasses(t *testing.T) {
	assert.NoError(t, ValidateStruct(&submissionPayload{BadgeID: 1, Content: "please review"}))
	assert.NoError(t, ValidateStruct(nil))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&submissionPayload{URL: "not a url"})

	require.Error(t, err)
	var fieldErrs FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	require.Len(t, fieldErrs, 3)

	byField := make(map[string]FieldError, len(fieldErrs))
	for _, fe := range fieldErrs {
		byField[fe.Field] = fe
	}
	assert.Equal(t, "required", byField["badge_id"].Rule)
	assert.Equal(t, "required", byField["content"].Rule)
	assert.Equal(t, "url", byField["url"].Rule)
	assert.Contains(t, err.Error(), "badge_id violates required")
}

func TestValidateStructUsesStructNameForUntaggedFields(t *testing.T) {
	err := ValidateStruct(&submissionPayload{BadgeID: 1, Content: "ok", Internal: "toolong"})

	require.Error(t, err)
	var fieldErrs FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "Internal", fieldErrs[0].Field)
	assert.Equal(t, "max", fieldErrs[0].Rule)
	assert.Equal(t, "3", fieldErrs[0].Param)
}

func TestValidateStructRejectsNonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")

	require.Error(t, err)
	var fieldErrs FieldErrors
	assert.False(t, errors.As(err, &fieldErrs))
}
