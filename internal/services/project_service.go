package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"whisprdraw-backend/internal/apperror"
	"whisprdraw-backend/internal/imaging"
	"whisprdraw-backend/internal/models"
)

// IconStyle is appended to icon prompts when the caller gives no style.
const IconStyle = "3D render, isometric, clean background, modern, professional graphic"

type ProjectService struct {
	projects   ProjectRepository
	pairs      ImagePairRepository
	renderer   IconRenderer
	summarizer TopicSummarizer
}

func NewProjectService(projects ProjectRepository, pairs ImagePairRepository, renderer IconRenderer, summarizer TopicSummarizer) *ProjectService {
	return &ProjectService{
		projects:   projects,
		pairs:      pairs,
		renderer:   renderer,
		summarizer: summarizer,
	}
}

func (s *ProjectService) ListProjects(ctx context.Context, token, userID string) ([]models.Project, error) {
	if err := requireUUID("user_id", userID); err != nil {
		return nil, err
	}
	return s.projects.ListByUser(ctx, token, userID)
}

func (s *ProjectService) CreateProject(ctx context.Context, token string, req models.CreateProjectRequest) (*models.Project, error) {
	if err := requireUUID("user_id", req.UserID); err != nil {
		return nil, err
	}
	return s.projects.Create(ctx, token, req)
}

// UpdateProject applies the non-null fields of req. An empty patch is
// rejected before the store is touched.
func (s *ProjectService) UpdateProject(ctx context.Context, token, projectID, userID string, req models.UpdateProjectRequest) (*models.Project, error) {
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, apperror.Validation("", "no fields to update")
	}
	if err := requireUUID("project_id", projectID); err != nil {
		return nil, err
	}
	if err := requireUUID("user_id", userID); err != nil {
		return nil, err
	}
	return s.projects.Update(ctx, token, projectID, userID, fields)
}

func (s *ProjectService) ListImagePairs(ctx context.Context, token, projectID string) ([]models.ImagePair, error) {
	if err := requireUUID("project_id", projectID); err != nil {
		return nil, err
	}
	return s.pairs.ListByProject(ctx, token, projectID)
}

// GenerateIcon renders an icon for a project. A blank prompt is replaced by
// the project's topic label, which is also returned as the description.
func (s *ProjectService) GenerateIcon(ctx context.Context, token string, req models.IconGenerationRequest) (*models.IconGenerationResponse, error) {
	if err := requireUUID("project_id", req.ProjectID); err != nil {
		return nil, err
	}
	if err := requireUUID("user_id", req.UserID); err != nil {
		return nil, err
	}

	resp := &models.IconGenerationResponse{}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = s.summarizer.Summarize(ctx, token, req.ProjectID)
		resp.Description = prompt
	}

	style := strings.TrimSpace(req.Style)
	if style == "" {
		style = IconStyle
	}

	log := zerolog.Ctx(ctx)
	log.Info().Str("project_id", req.ProjectID).Str("prompt", prompt).Msg("generating project icon")

	url, err := s.renderer.Render(ctx, prompt+", "+style)
	if err != nil {
		return nil, err
	}
	resp.ImageURL = url

	if strings.HasPrefix(url, "data:") {
		data, err := imaging.DecodeBase64(url)
		if err != nil {
			return nil, apperror.Downstream("icon generation failed", err)
		}
		resp.ImageData = imaging.EncodeBase64(data)
	}

	return resp, nil
}
