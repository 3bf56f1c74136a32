package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	"whisprdraw-backend/internal/apperror"
	"whisprdraw-backend/internal/models"
)

const imagePairsTable = "image_pairs"

type ImagePairStore struct {
	clients *ClientFactory
}

func NewImagePairStore(clients *ClientFactory) *ImagePairStore {
	return &ImagePairStore{clients: clients}
}

// ListByProject returns every pair of the project, newest first.
func (s *ImagePairStore) ListByProject(ctx context.Context, token, projectID string) ([]models.ImagePair, error) {
	return s.list(ctx, token, projectID, 0)
}

// ListRecent returns at most n pairs of the project, newest first.
func (s *ImagePairStore) ListRecent(ctx context.Context, token, projectID string, n int) ([]models.ImagePair, error) {
	return s.list(ctx, token, projectID, n)
}

func (s *ImagePairStore) list(ctx context.Context, token, projectID string, limit int) ([]models.ImagePair, error) {
	client, err := s.clients.ForToken(token)
	if err != nil {
		return nil, apperror.Downstream("failed to fetch image pairs", err)
	}

	query := client.From(imagePairsTable).
		Select(models.ImagePairColumns, "", false).
		Eq("project_id", projectID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})
	if limit > 0 {
		query = query.Limit(limit, "")
	}

	data, _, err := query.ExecuteWithContext(ctx)
	if err != nil {
		return nil, apperror.Downstream("failed to fetch image pairs", err)
	}

	pairs, err := models.DecodeImagePairs(data)
	if err != nil {
		return nil, apperror.Downstream("failed to fetch image pairs", err)
	}
	return pairs, nil
}

func (s *ImagePairStore) Insert(ctx context.Context, token string, pair models.NewImagePair) (*models.ImagePair, error) {
	client, err := s.clients.ForToken(token)
	if err != nil {
		return nil, apperror.Downstream("failed to save image pair", err)
	}

	data, _, err := client.From(imagePairsTable).
		Insert(pair, false, "", "representation", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return nil, apperror.Downstream("failed to save image pair", err)
	}

	pairs, err := models.DecodeImagePairs(data)
	if err != nil {
		return nil, apperror.Downstream("failed to save image pair", err)
	}
	if len(pairs) == 0 {
		return nil, apperror.Downstream("failed to save image pair", fmt.Errorf("no data returned"))
	}

	return &pairs[0], nil
}
