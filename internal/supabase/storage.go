package supabase

import (
	"bytes"
	"fmt"
	"path"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
	"whisprdraw-backend/internal/apperror"
	"whisprdraw-backend/internal/imaging"
)

const (
	FolderPairInputs  = "image_pairs/input"
	FolderPairOutputs = "image_pairs/output"
	FolderIcons       = "project_icons"
)

// UploadedImage is the result of a successful upload.
type UploadedImage struct {
	Path     string
	URL      string
	MimeType string
	Width    int
	Height   int
}

type StorageGateway struct {
	clients *ClientFactory
	bucket  string
}

func NewStorageGateway(clients *ClientFactory, bucket string) *StorageGateway {
	return &StorageGateway{
		clients: clients,
		bucket:  bucket,
	}
}

// UploadImage stores data under folder/<uuid>.<ext> and returns its public
// URL, MIME type and pixel dimensions.
func (g *StorageGateway) UploadImage(token string, data []byte, folder string) (*UploadedImage, error) {
	info, err := imaging.Inspect(data)
	if err != nil {
		return nil, apperror.Downstream("failed to upload image", err)
	}

	client, err := g.clients.ForToken(token)
	if err != nil {
		return nil, apperror.Downstream("failed to upload image", err)
	}

	storagePath := path.Join(folder, fmt.Sprintf("%s.%s", uuid.New().String(), info.Extension))
	contentType := info.MimeType
	_, err = client.Storage.UploadFile(g.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return nil, apperror.Downstream("failed to upload image", err)
	}

	publicURL := g.PublicURL(storagePath)

	return &UploadedImage{
		Path:     storagePath,
		URL:      publicURL,
		MimeType: info.MimeType,
		Width:    info.Width,
		Height:   info.Height,
	}, nil
}

func (g *StorageGateway) PublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", g.clients.URL(), g.bucket, storagePath)
}
