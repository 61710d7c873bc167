package serverutils

import (
	"testing"

	"notevault-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestValidateRequest_ImportRequest(t *testing.T) {
	err := ValidateRequest(dto.ImportRequest{Source: "backup.json", Policy: "UPDATE"})
	assert.NoError(t, err)

	err = ValidateRequest(dto.ImportRequest{Policy: "UPDATE"})
	require.Error(t, err)
	fiberErr, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusBadRequest, fiberErr.Code)

	err = ValidateRequest(dto.ImportRequest{Source: "backup.json"})
	assert.Error(t, err)
}

func TestValidateRequest_ExportRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(dto.ExportRequest{Destination: "out.json"}))
	assert.Error(t, ValidateRequest(dto.ExportRequest{}))
}

func TestValidateRequest_ChangePasswordRequest(t *testing.T) {
	// set, clear, change
	assert.NoError(t, ValidateRequest(dto.ChangePasswordRequest{NewPassword: strptr("secret")}))
	assert.NoError(t, ValidateRequest(dto.ChangePasswordRequest{OldPassword: strptr("secret")}))
	assert.NoError(t, ValidateRequest(dto.ChangePasswordRequest{OldPassword: strptr("old"), NewPassword: strptr("new")}))

	assert.Error(t, ValidateRequest(dto.ChangePasswordRequest{}))
	assert.Error(t, ValidateRequest(dto.ChangePasswordRequest{NewPassword: strptr("")}))
}

func TestValidateRequest_CategoryRequests(t *testing.T) {
	assert.NoError(t, ValidateRequest(dto.CreateCategoryRequest{Name: "Work"}))
	assert.Error(t, ValidateRequest(dto.CreateCategoryRequest{}))

	assert.NoError(t, ValidateRequest(dto.UpdateCategoryRequest{Id: 3, Name: "Work"}))
	assert.Error(t, ValidateRequest(dto.UpdateCategoryRequest{Id: 3}))
	assert.Error(t, ValidateRequest(dto.UpdateCategoryRequest{Name: "Work"}))
}

func TestValidateRequest_NoteRequests(t *testing.T) {
	assert.NoError(t, ValidateRequest(dto.CreateNoteRequest{Content: "hello"}))
	assert.NoError(t, ValidateRequest(dto.UpdateNoteRequest{Id: 7, Content: "hello"}))
	assert.Error(t, ValidateRequest(dto.UpdateNoteRequest{Content: "hello"}))
}
