package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ImagePair is one input/output image combination produced by a generation
// call, linked to a project.
type ImagePair struct {
	ID             string          `json:"id"`
	ProjectID      string          `json:"project_id"`
	InputURL       string          `json:"input_url"`
	InputMimeType  *string         `json:"input_mime_type"`
	InputWidth     *int            `json:"input_width"`
	InputHeight    *int            `json:"input_height"`
	OutputURL      *string         `json:"output_url"`
	OutputMimeType *string         `json:"output_mime_type"`
	OutputWidth    *int            `json:"output_width"`
	OutputHeight   *int            `json:"output_height"`
	PromptText     *string         `json:"prompt_text"`
	Metadata       json.RawMessage `json:"metadata"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

const ImagePairColumns = "id,project_id,input_url,input_mime_type,input_width,input_height," +
	"output_url,output_mime_type,output_width,output_height,prompt_text,metadata,created_at,updated_at"

// NewImagePair is the insert payload for the image_pairs table; id and
// timestamps are assigned by the database.
type NewImagePair struct {
	ProjectID      string                 `json:"project_id"`
	InputURL       string                 `json:"input_url"`
	InputMimeType  string                 `json:"input_mime_type"`
	InputWidth     int                    `json:"input_width"`
	InputHeight    int                    `json:"input_height"`
	OutputURL      string                 `json:"output_url"`
	OutputMimeType string                 `json:"output_mime_type"`
	OutputWidth    int                    `json:"output_width"`
	OutputHeight   int                    `json:"output_height"`
	PromptText     string                 `json:"prompt_text"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Description returns metadata.description when present.
func (p *ImagePair) Description() string {
	if isJSONNull(p.Metadata) {
		return ""
	}
	var meta struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(p.Metadata, &meta); err != nil {
		return ""
	}
	return meta.Description
}

func (p *ImagePair) validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("image pair row missing id")
	case p.ProjectID == "":
		return fmt.Errorf("image pair %s row missing project_id", p.ID)
	case p.InputURL == "":
		return fmt.Errorf("image pair %s row missing input_url", p.ID)
	case p.CreatedAt.IsZero():
		return fmt.Errorf("image pair %s row missing created_at", p.ID)
	case p.UpdatedAt.IsZero():
		return fmt.Errorf("image pair %s row missing updated_at", p.ID)
	}
	return nil
}

func DecodeImagePairs(data []byte) ([]ImagePair, error) {
	var pairs []ImagePair
	if err := decodeStrict(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to decode image pair rows: %w", err)
	}
	for i := range pairs {
		if err := pairs[i].validate(); err != nil {
			return nil, err
		}
	}
	return pairs, nil
}
