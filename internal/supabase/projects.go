package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"whisprdraw-backend/internal/apperror"
	"whisprdraw-backend/internal/models"
)

const projectsTable = "projects"

type ProjectStore struct {
	clients *ClientFactory
}

func NewProjectStore(clients *ClientFactory) *ProjectStore {
	return &ProjectStore{clients: clients}
}

// ListByUser returns the user's projects, most recently updated first.
func (s *ProjectStore) ListByUser(ctx context.Context, token, userID string) ([]models.Project, error) {
	client, err := s.clients.ForToken(token)
	if err != nil {
		return nil, apperror.Downstream("failed to fetch projects", err)
	}

	data, _, err := client.From(projectsTable).
		Select(models.ProjectColumns, "", false).
		Eq("user_id", userID).
		Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteWithContext(ctx)
	if err != nil {
		return nil, apperror.Downstream("failed to fetch projects", err)
	}

	projects, err := models.DecodeProjects(data)
	if err != nil {
		return nil, apperror.Downstream("failed to fetch projects", err)
	}
	return projects, nil
}

func (s *ProjectStore) Get(ctx context.Context, token, projectID string) (*models.Project, error) {
	client, err := s.clients.ForToken(token)
	if err != nil {
		return nil, apperror.Downstream("failed to fetch project", err)
	}

	data, _, err := client.From(projectsTable).
		Select(models.ProjectColumns, "", false).
		Eq("id", projectID).
		Limit(1, "").
		ExecuteWithContext(ctx)
	if err != nil {
		return nil, apperror.Downstream("failed to fetch project", err)
	}

	projects, err := models.DecodeProjects(data)
	if err != nil {
		return nil, apperror.Downstream("failed to fetch project", err)
	}
	if len(projects) == 0 {
		return nil, apperror.NotFound("project not found")
	}
	return &projects[0], nil
}

// Create inserts a project with a freshly generated id.
func (s *ProjectStore) Create(ctx context.Context, token string, req models.CreateProjectRequest) (*models.Project, error) {
	client, err := s.clients.ForToken(token)
	if err != nil {
		return nil, apperror.Downstream("failed to create project", err)
	}

	row := map[string]interface{}{
		"id":          uuid.New().String(),
		"user_id":     req.UserID,
		"name":        req.Name,
		"description": req.Description,
		"snapshot":    nullableJSON(req.Snapshot),
	}

	data, _, err := client.From(projectsTable).
		Insert(row, false, "", "representation", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return nil, apperror.Downstream("failed to create project", err)
	}

	projects, err := models.DecodeProjects(data)
	if err != nil {
		return nil, apperror.Downstream("failed to create project", err)
	}
	if len(projects) == 0 {
		return nil, apperror.Downstream("failed to create project", fmt.Errorf("no data returned"))
	}

	return &projects[0], nil
}

// Update applies fields to the project only when both id and owner match.
func (s *ProjectStore) Update(ctx context.Context, token, projectID, userID string, fields map[string]interface{}) (*models.Project, error) {
	if len(fields) == 0 {
		return nil, apperror.Validation("", "no fields to update")
	}

	client, err := s.clients.ForToken(token)
	if err != nil {
		return nil, apperror.Downstream("failed to update project", err)
	}

	data, _, err := client.From(projectsTable).
		Update(fields, "representation", "").
		Eq("id", projectID).
		Eq("user_id", userID).
		ExecuteWithContext(ctx)
	if err != nil {
		return nil, apperror.Downstream("failed to update project", err)
	}

	projects, err := models.DecodeProjects(data)
	if err != nil {
		return nil, apperror.Downstream("failed to update project", err)
	}
	if len(projects) == 0 {
		return nil, apperror.NotFound("project not found or unauthorized")
	}
	return &projects[0], nil
}

// SetIconIfUnset writes iconURL only while the project has no icon. It
// reports whether this call won.
func (s *ProjectStore) SetIconIfUnset(ctx context.Context, token, projectID, userID, iconURL string) (bool, error) {
	client, err := s.clients.ForToken(token)
	if err != nil {
		return false, apperror.Downstream("failed to set project icon", err)
	}

	data, _, err := client.From(projectsTable).
		Update(map[string]interface{}{"icon_url": iconURL}, "representation", "").
		Eq("id", projectID).
		Eq("user_id", userID).
		Is("icon_url", "null").
		ExecuteWithContext(ctx)
	if err != nil {
		return false, apperror.Downstream("failed to set project icon", err)
	}

	projects, err := models.DecodeProjects(data)
	if err != nil {
		return false, apperror.Downstream("failed to set project icon", err)
	}
	return len(projects) > 0, nil
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
