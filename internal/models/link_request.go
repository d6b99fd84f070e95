package models

// CreateLinkRequest represents the request body for creating a short link
type CreateLinkRequest struct {
	URL        string `json:"url" binding:"required"` // Validated further in the service (absolute, http/https)
	CustomCode string `json:"customCode,omitempty"`   // Optional, must match [A-Za-z0-9]{6,8} if set
}
