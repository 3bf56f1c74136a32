package services

import (
	"context"

	"whisprdraw-backend/internal/gemini"
	"whisprdraw-backend/internal/models"
	"whisprdraw-backend/internal/supabase"
)

type ProjectRepository interface {
	ListByUser(ctx context.Context, token, userID string) ([]models.Project, error)
	Get(ctx context.Context, token, projectID string) (*models.Project, error)
	Create(ctx context.Context, token string, req models.CreateProjectRequest) (*models.Project, error)
	Update(ctx context.Context, token, projectID, userID string, fields map[string]interface{}) (*models.Project, error)
	SetIconIfUnset(ctx context.Context, token, projectID, userID, iconURL string) (bool, error)
}

type ImagePairRepository interface {
	ListByProject(ctx context.Context, token, projectID string) ([]models.ImagePair, error)
	Insert(ctx context.Context, token string, pair models.NewImagePair) (*models.ImagePair, error)
}

type ImageUploader interface {
	UploadImage(token string, data []byte, folder string) (*supabase.UploadedImage, error)
}

type ImageGenerator interface {
	Generate(ctx context.Context, req gemini.Request) (*gemini.Result, error)
	Model() string
}

type IconRenderer interface {
	Render(ctx context.Context, prompt string) (string, error)
	DownloadFile(ctx context.Context, url string) ([]byte, error)
}

type TopicSummarizer interface {
	Summarize(ctx context.Context, token, projectID string) string
}
