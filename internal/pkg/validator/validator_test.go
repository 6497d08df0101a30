package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/landmark-guide/internal/pkg/errors"
	"github.com/landmark-guide/internal/pkg/validator"
)

type modeRequest struct {
	Mode string `validate:"required,mode"`
}

type permissionRequest struct {
	Kind string `validate:"required,permission_kind"`
}

func TestValidate_Mode(t *testing.T) {
	assert.NoError(t, validator.Validate(&modeRequest{Mode: "adventure"}))
	assert.NoError(t, validator.Validate(&modeRequest{Mode: "virtual_tour"}))
	assert.Error(t, validator.Validate(&modeRequest{Mode: "hiking"}))
	assert.Error(t, validator.Validate(&modeRequest{}))
}

func TestValidate_PermissionKind(t *testing.T) {
	assert.NoError(t, validator.Validate(&permissionRequest{Kind: "foreground"}))
	assert.NoError(t, validator.Validate(&permissionRequest{Kind: "always"}))
	assert.Error(t, validator.Validate(&permissionRequest{Kind: "sometimes"}))
}

func TestValidate_ReturnsInvalidRequest(t *testing.T) {
	err := validator.Validate(&modeRequest{Mode: "hiking"})

	assert.ErrorIs(t, err, errors.ErrInvalidRequest)
	appErr, ok := errors.As(err)
	assert.True(t, ok)
	assert.Equal(t, "mode", appErr.Details["Mode"])
}
