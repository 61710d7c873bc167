package dto

// ChangePasswordRequest covers all three transitions: set (no old, new),
// clear (old, no new), and change (both).
type ChangePasswordRequest struct {
	OldPassword *string `json:"oldPassword,omitempty" validate:"required_without=NewPassword"`
	NewPassword *string `json:"newPassword,omitempty" validate:"required_without=OldPassword,omitempty,min=1"`
}
