package dto

// UpdateSettingRequest changes the value of a global setting.
type UpdateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}
