package user

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=60"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,password"`
	Address  string `json:"address" binding:"omitempty,max=400"`
	Role     Role   `json:"role" binding:"omitempty,oneof=user store_owner"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=60"`
	Address *string `json:"address" binding:"omitempty,max=400"`
}

func (r UpdateProfileRequest) Patch() ProfilePatch {
	return ProfilePatch{Name: r.Name, Address: r.Address}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,password"`
}
