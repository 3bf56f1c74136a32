package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Project is a user-owned drawing workspace, as stored in the projects table.
type Project struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Snapshot    json.RawMessage `json:"snapshot"`
	IconURL     *string         `json:"icon_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProjectColumns is the exhaustive column list selected for a Project row.
const ProjectColumns = "id,user_id,name,description,snapshot,icon_url,created_at,updated_at"

func (p *Project) HasIcon() bool {
	return p.IconURL != nil && *p.IconURL != ""
}

func (p *Project) validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("project row missing id")
	case p.UserID == "":
		return fmt.Errorf("project %s row missing user_id", p.ID)
	case p.CreatedAt.IsZero():
		return fmt.Errorf("project %s row missing created_at", p.ID)
	case p.UpdatedAt.IsZero():
		return fmt.Errorf("project %s row missing updated_at", p.ID)
	}
	return nil
}

// DecodeProjects decodes a JSON array of project rows. Unknown columns and
// rows without their required fields are rejected.
func DecodeProjects(data []byte) ([]Project, error) {
	var projects []Project
	if err := decodeStrict(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode project rows: %w", err)
	}
	for i := range projects {
		if err := projects[i].validate(); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected trailing data")
	}
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
