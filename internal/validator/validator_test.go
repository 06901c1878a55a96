package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,user_role"`
}

type coursePayload struct {
	Title string `form:"courseTitle" validate:"required"`
	Level string `json:"level" validate:"omitempty,course_level"`
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&registerPayload{Email: "not-an-email", Role: "admin"})
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, errs, 2)

	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "must be a valid email address", errs[0].Message)
	assert.Equal(t, "role", errs[1].Field)
	assert.Equal(t, "user_role", errs[1].Rule)
}

func TestValidate_FallsBackToFormName(t *testing.T) {
	v := New()

	err := v.Validate(&coursePayload{})
	require.Error(t, err)

	errs := err.(ValidationErrors)
	require.Len(t, errs, 1)
	assert.Equal(t, "courseTitle", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
}

func TestValidate_CourseLevel(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&coursePayload{Title: "Go", Level: "Beginner"}))
	assert.NoError(t, v.Validate(&coursePayload{Title: "Go"}))
	assert.Error(t, v.Validate(&coursePayload{Title: "Go", Level: "Expert"}))
}

func TestValidate_InstructorRoleAccepted(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&registerPayload{Email: "a@b.co", Role: "instructor"}))
	assert.NoError(t, v.Validate(&registerPayload{Email: "a@b.co"}))
}
