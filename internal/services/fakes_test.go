package services_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"whisprdraw-backend/internal/apperror"
	"whisprdraw-backend/internal/gemini"
	"whisprdraw-backend/internal/imaging"
	"whisprdraw-backend/internal/models"
	"whisprdraw-backend/internal/supabase"
	"whisprdraw-backend/internal/tasks"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

type fakeProjects struct {
	mu         sync.Mutex
	projects   map[string]*models.Project
	updates    int
	iconWrites int
	lastFields map[string]interface{}
	err        error
}

func newFakeProjects(projects ...*models.Project) *fakeProjects {
	f := &fakeProjects{projects: make(map[string]*models.Project)}
	for _, p := range projects {
		f.projects[p.ID] = p
	}
	return f
}

func (f *fakeProjects) ListByUser(ctx context.Context, token, userID string) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, f.err
}

func (f *fakeProjects) Get(ctx context.Context, token, projectID string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.projects[projectID]
	if !ok {
		return nil, apperror.NotFound("project not found")
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProjects) Create(ctx context.Context, token string, req models.CreateProjectRequest) (*models.Project, error) {
	return &models.Project{ID: "created", UserID: req.UserID, Name: req.Name}, f.err
}

func (f *fakeProjects) Update(ctx context.Context, token, projectID, userID string, fields map[string]interface{}) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.lastFields = fields
	p, ok := f.projects[projectID]
	if !ok || p.UserID != userID {
		return nil, apperror.NotFound("project not found or unauthorized")
	}
	if name, ok := fields["name"].(string); ok {
		p.Name = &name
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProjects) SetIconIfUnset(ctx context.Context, token, projectID, userID, iconURL string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.iconWrites++
	p, ok := f.projects[projectID]
	if !ok || p.UserID != userID || p.HasIcon() {
		return false, nil
	}
	p.IconURL = &iconURL
	return true, nil
}

func (f *fakeProjects) icon(projectID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.projects[projectID]; p != nil && p.IconURL != nil {
		return *p.IconURL
	}
	return ""
}

type fakePairs struct {
	mu       sync.Mutex
	inserted []models.NewImagePair
	listed   []models.ImagePair
	err      error
}

func (f *fakePairs) ListByProject(ctx context.Context, token, projectID string) ([]models.ImagePair, error) {
	return f.listed, nil
}

func (f *fakePairs) Insert(ctx context.Context, token string, pair models.NewImagePair) (*models.ImagePair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.inserted = append(f.inserted, pair)
	return &models.ImagePair{ID: fmt.Sprintf("pair-%d", len(f.inserted)), ProjectID: pair.ProjectID}, nil
}

func (f *fakePairs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeUploader struct {
	mu      sync.Mutex
	folders []string
	urls    []string
	err     error
	// failAfter makes every upload after the first failAfter ones fail.
	failAfter int
}

func (f *fakeUploader) UploadImage(token string, data []byte, folder string) (*supabase.UploadedImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.failAfter > 0 && len(f.folders) >= f.failAfter {
		return nil, apperror.Downstream("failed to upload image", errors.New("storage unavailable"))
	}
	info, err := imaging.Inspect(data)
	if err != nil {
		return nil, apperror.Downstream("failed to upload image", err)
	}
	f.folders = append(f.folders, folder)
	path := fmt.Sprintf("%s/%d.%s", folder, len(f.folders), info.Extension)
	f.urls = append(f.urls, "https://storage.test/"+path)
	return &supabase.UploadedImage{
		Path:     path,
		URL:      "https://storage.test/" + path,
		MimeType: info.MimeType,
		Width:    info.Width,
		Height:   info.Height,
	}, nil
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.folders)
}

type fakeGenerator struct {
	mu       sync.Mutex
	output   []byte
	text     string
	err      error
	requests []gemini.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req gemini.Request) (*gemini.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &gemini.Result{Image: f.output, MimeType: "image/png", Text: f.text}, nil
}

func (f *fakeGenerator) Model() string { return "test-image-model" }

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeRenderer struct {
	barrier *sync.WaitGroup
	mu      sync.Mutex
	prompts []string
	icon    []byte
	url     string
	err     error
}

func (f *fakeRenderer) Render(ctx context.Context, prompt string) (string, error) {
	if f.barrier != nil {
		f.barrier.Done()
		f.barrier.Wait()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if f.url != "" {
		return f.url, nil
	}
	return fmt.Sprintf("https://fal.test/icon-%d.png", len(f.prompts)), nil
}

func (f *fakeRenderer) DownloadFile(ctx context.Context, url string) ([]byte, error) {
	return f.icon, nil
}

func (f *fakeRenderer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeSummarizer struct {
	label string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, token, projectID string) string {
	return f.label
}

// recordingQueue captures tasks without running them.
type recordingQueue struct {
	mu    sync.Mutex
	tasks []tasks.Task
	err   error
}

func (q *recordingQueue) Enqueue(ctx context.Context, task tasks.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) Start(handler tasks.Handler) {}

func (q *recordingQueue) Close(ctx context.Context) error { return nil }

func (q *recordingQueue) kinds() []tasks.Kind {
	q.mu.Lock()
	defer q.mu.Unlock()
	var kinds []tasks.Kind
	for _, task := range q.tasks {
		kinds = append(kinds, task.Kind)
	}
	return kinds
}
