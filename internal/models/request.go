package models

import "encoding/json"

type CreateProjectRequest struct {
	UserID      string          `json:"user_id"`
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Snapshot    json.RawMessage `json:"snapshot,omitempty"`
}

// UpdateProjectRequest is a partial update: only non-null fields overwrite.
type UpdateProjectRequest struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Snapshot    json.RawMessage `json:"snapshot,omitempty"`
	IconURL     *string         `json:"icon_url,omitempty"`
}

// Fields returns the columns to write. An empty map means there is nothing
// to update.
func (r UpdateProjectRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if !isJSONNull(r.Snapshot) {
		fields["snapshot"] = r.Snapshot
	}
	if r.IconURL != nil {
		fields["icon_url"] = *r.IconURL
	}
	return fields
}

// GenerateImageRequest is the body of POST /api/generate-image. ImageData is
// base64, optionally as a data URI. SaveData defaults to true when omitted.
type GenerateImageRequest struct {
	Prompt    string  `json:"prompt"`
	ImageData *string `json:"image_data,omitempty"`
	ProjectID *string `json:"project_id,omitempty"`
	Type      string  `json:"type,omitempty"`
	SaveData  *bool   `json:"save_data,omitempty"`
}

type IconGenerationRequest struct {
	Prompt    string `json:"prompt"`
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Style     string `json:"style,omitempty"`
}
