package dto

// SupervisorLoginRequest carries the two-factor identity check for supervisors.
// Both values may arrive with stray separators or spreadsheet artifacts; the
// service normalizes them to bare digits before matching.
type SupervisorLoginRequest struct {
	NationalID  string `form:"national_id" json:"national_id" validate:"required"`
	MobileLast4 string `form:"mobile_last4" json:"mobile_last4" validate:"required"`
}

// ManagerLoginRequest carries the shared access key for the manager console.
type ManagerLoginRequest struct {
	AccessKey string `form:"access_key" json:"access_key" validate:"required"`
}

// LoginResponse is returned on successful authentication for either role.
type LoginResponse struct {
	Token     string              `json:"token"`
	Role      string              `json:"role"`
	ExpiresIn int64               `json:"expires_in"`
	Profile   *SupervisorResponse `json:"profile,omitempty"`
}
