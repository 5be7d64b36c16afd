package dto

import "time"

type UpsertPluginSecretRequest struct {
	Payload map[string]interface{} `json:"payload" validate:"required"`
}

// PluginCredentialResponse never carries the secret itself, only the fact
// that one is stored.
type PluginCredentialResponse struct {
	Service   string    `json:"service"`
	Stored    bool      `json:"stored"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
