package model

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// AttributeDefinitionInput is the create/update body. Pointer fields fall
// back to their defaults when omitted.
type AttributeDefinitionInput struct {
	Name           string   `json:"name"`
	Label          string   `json:"label"`
	Unit           *string  `json:"unit"`
	Category       *string  `json:"category"`
	Active         *bool    `json:"active"`
	DefaultVisible *bool    `json:"default_visible"`
	Weight         *float64 `json:"weight"`
	DayPeriod      string   `json:"day_period"`
}

type EntryInput struct {
	Date       string      `json:"date"`
	Visibility string      `json:"visibility"`
	DayPeriod  string      `json:"day_period"`
	Attributes []Attribute `json:"attributes"`
}

type VisibilityRequest struct {
	Visibility string `json:"visibility"`
}

type NoteRequest struct {
	Content string `json:"content"`
}

type NoteResponse struct {
	Note Note `json:"note"`
}

// EntryCreatedResponse is the created entry with a confirmation message
// alongside its fields.
type EntryCreatedResponse struct {
	Entry
	Message string `json:"message"`
}

type WhoopStatus struct {
	Connected       bool   `json:"connected"`
	Message         string `json:"message"`
	ExpiresIn       int64  `json:"expires_in,omitempty"`
	HasRefreshToken bool   `json:"has_refresh_token"`
}

type WhoopAuthURL struct {
	AuthURL string `json:"auth_url"`
}

type WhoopCallbackResponse struct {
	Message         string `json:"message"`
	HasRefreshToken bool   `json:"has_refresh_token"`
}

type SyncResult struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SyncResponse struct {
	Message   string                `json:"message"`
	Details   map[string]SyncResult `json:"details"`
	Timestamp string                `json:"timestamp"`
}

type FullSyncResponse struct {
	Message string         `json:"message"`
	Summary map[string]int `json:"summary"`
}
