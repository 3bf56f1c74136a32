package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"whisprdraw-backend/internal/apperror"
	"whisprdraw-backend/internal/gemini"
	"whisprdraw-backend/internal/imaging"
	"whisprdraw-backend/internal/models"
	"whisprdraw-backend/internal/supabase"
	"whisprdraw-backend/internal/tasks"
)

const defaultIconPrompt = "abstract 3D icon"

// GenerationService runs image generation synchronously and schedules the
// follow-up persistence work on the task queue.
type GenerationService struct {
	generator ImageGenerator
	renderer  IconRenderer
	uploader  ImageUploader
	projects  ProjectRepository
	pairs     ImagePairRepository
	queue     tasks.Queue
}

func NewGenerationService(
	generator ImageGenerator,
	renderer IconRenderer,
	uploader ImageUploader,
	projects ProjectRepository,
	pairs ImagePairRepository,
	queue tasks.Queue,
) *GenerationService {
	return &GenerationService{
		generator: generator,
		renderer:  renderer,
		uploader:  uploader,
		projects:  projects,
		pairs:     pairs,
		queue:     queue,
	}
}

func (s *GenerationService) Generate(ctx context.Context, token string, req models.GenerateImageRequest) (*models.GenerateImageResponse, error) {
	log := zerolog.Ctx(ctx)

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, apperror.Validation("prompt", "prompt is required")
	}

	mode, ok := gemini.ParseMode(req.Type)
	if !ok {
		return nil, apperror.Validation("type", "type must be 'generate' or 'edit'")
	}

	var input []byte
	var inputMime string
	if req.ImageData != nil && strings.TrimSpace(*req.ImageData) != "" {
		data, err := imaging.DecodeBase64(*req.ImageData)
		if err != nil {
			return nil, apperror.Validation("image_data", "image_data is not valid base64")
		}
		info, err := imaging.Inspect(data)
		if err != nil {
			return nil, apperror.Validation("image_data", "image_data is not a supported image (png, jpeg, webp, gif)")
		}
		input, inputMime = data, info.MimeType
	}
	if mode == gemini.ModeEdit && input == nil {
		return nil, apperror.Validation("image_data", "image_data is required for edit")
	}

	projectID := ""
	if req.ProjectID != nil {
		projectID = strings.TrimSpace(*req.ProjectID)
	}
	if projectID != "" {
		if err := requireUUID("project_id", projectID); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("mode", string(mode)).
		Bool("has_image", input != nil).
		Str("project_id", projectID).
		Msg("generating image")

	result, err := s.generator.Generate(ctx, gemini.Request{
		Prompt:        prompt,
		Mode:          mode,
		Image:         input,
		ImageMimeType: inputMime,
	})
	if err != nil {
		return nil, err
	}

	resp := &models.GenerateImageResponse{ImageData: imaging.EncodeBase64(result.Image)}
	if result.Text != "" {
		text := result.Text
		resp.TextResponse = &text
	}

	saveData := req.SaveData == nil || *req.SaveData
	switch {
	case !saveData:
		log.Debug().Msg("save_data is false, skipping persistence")
	case projectID == "":
		log.Warn().Msg("save_data requested without project_id, skipping persistence")
	default:
		s.schedule(ctx, tasks.Task{
			Kind:      tasks.KindAutoIcon,
			Token:     token,
			ProjectID: projectID,
		})
		if input == nil {
			log.Info().Str("project_id", projectID).Msg("no input image, skipping image pair persistence")
		} else {
			s.schedule(ctx, tasks.Task{
				Kind:        tasks.KindPersistPair,
				Token:       token,
				ProjectID:   projectID,
				Mode:        string(mode),
				Model:       s.generator.Model(),
				Prompt:      prompt,
				InputImage:  input,
				OutputImage: result.Image,
			})
		}
	}

	return resp, nil
}

// schedule hands task to the queue. Scheduling failures never reach the
// caller.
func (s *GenerationService) schedule(ctx context.Context, task tasks.Task) {
	if err := s.queue.Enqueue(context.WithoutCancel(ctx), task); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("kind", string(task.Kind)).
			Str("project_id", task.ProjectID).
			Msg("failed to schedule deferred task")
	}
}

// HandleTask is the task queue handler for both deferred task kinds.
func (s *GenerationService) HandleTask(ctx context.Context, task tasks.Task) error {
	switch task.Kind {
	case tasks.KindPersistPair:
		return s.persistPair(ctx, task)
	case tasks.KindAutoIcon:
		return s.autoIcon(ctx, task)
	}
	return fmt.Errorf("unknown task kind %q", task.Kind)
}

func (s *GenerationService) persistPair(ctx context.Context, task tasks.Task) error {
	if len(task.InputImage) == 0 {
		zerolog.Ctx(ctx).Warn().Msg("no input image provided, skipping image pair")
		return nil
	}

	input, err := s.uploader.UploadImage(task.Token, task.InputImage, supabase.FolderPairInputs)
	if err != nil {
		return fmt.Errorf("failed to upload input image: %w", err)
	}
	output, err := s.uploader.UploadImage(task.Token, task.OutputImage, supabase.FolderPairOutputs)
	if err != nil {
		logOrphans(ctx, input.Path)
		return fmt.Errorf("failed to upload output image: %w", err)
	}

	pair, err := s.pairs.Insert(ctx, task.Token, models.NewImagePair{
		ProjectID:      task.ProjectID,
		InputURL:       input.URL,
		InputMimeType:  input.MimeType,
		InputWidth:     input.Width,
		InputHeight:    input.Height,
		OutputURL:      output.URL,
		OutputMimeType: output.MimeType,
		OutputWidth:    output.Width,
		OutputHeight:   output.Height,
		PromptText:     task.Prompt,
		Metadata: map[string]interface{}{
			"mode":  task.Mode,
			"model": task.Model,
		},
	})
	if err != nil {
		logOrphans(ctx, input.Path, output.Path)
		return err
	}

	zerolog.Ctx(ctx).Info().Str("image_pair_id", pair.ID).Msg("saved image pair")
	return nil
}

// logOrphans records stored objects that no image pair row points to.
func logOrphans(ctx context.Context, paths ...string) {
	zerolog.Ctx(ctx).Warn().Strs("orphaned_paths", paths).Msg("image pair not saved, uploaded objects left in storage")
}

func (s *GenerationService) autoIcon(ctx context.Context, task tasks.Task) error {
	log := zerolog.Ctx(ctx)

	project, err := s.projects.Get(ctx, task.Token, task.ProjectID)
	if err != nil {
		return err
	}
	if project.HasIcon() {
		log.Debug().Msg("project already has an icon, skipping")
		return nil
	}

	prompt := defaultIconPrompt
	if project.Name != nil && strings.TrimSpace(*project.Name) != "" {
		prompt = strings.TrimSpace(*project.Name)
	}

	renderedURL, err := s.renderer.Render(ctx, prompt+", "+IconStyle)
	if err != nil {
		return err
	}
	data, err := s.renderer.DownloadFile(ctx, renderedURL)
	if err != nil {
		return apperror.Downstream("failed to download icon", err)
	}
	uploaded, err := s.uploader.UploadImage(task.Token, data, supabase.FolderIcons)
	if err != nil {
		return err
	}

	won, err := s.projects.SetIconIfUnset(ctx, task.Token, project.ID, project.UserID, uploaded.URL)
	if err != nil {
		return err
	}
	if !won {
		log.Info().Str("icon_url", uploaded.URL).Msg("icon was set concurrently, keeping existing icon")
		return nil
	}

	log.Info().Str("icon_url", uploaded.URL).Msg("saved project icon")
	return nil
}
