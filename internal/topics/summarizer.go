package topics

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"whisprdraw-backend/internal/models"
)

const (
	// FallbackNoContext is returned when the project has nothing to summarize.
	FallbackNoContext = "Untitled Project"
	// FallbackFailure is returned when any step of summarization fails.
	FallbackFailure = "Creative Project"

	recentPairs = 3
	minWords    = 2
	maxWords    = 6
)

const systemPrompt = "You name drawing projects. Reply with a short topic label of 2 to 6 words " +
	"that captures what the project is about. Reply with the label only, without quotes or punctuation."

type ProjectReader interface {
	Get(ctx context.Context, token, projectID string) (*models.Project, error)
}

type ImagePairReader interface {
	ListRecent(ctx context.Context, token, projectID string, n int) ([]models.ImagePair, error)
}

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zerolog.Logger
}

// Summarizer produces a short topic label for a project. It never fails:
// every error path resolves to a fixed fallback label.
type Summarizer struct {
	projects ProjectReader
	pairs    ImagePairReader
	client   *openai.Client
	model    string
	logger   zerolog.Logger
}

func NewSummarizer(projects ProjectReader, pairs ImagePairReader, opts Options) *Summarizer {
	var client *openai.Client
	if opts.APIKey != "" {
		cfg := openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			cfg.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
		}
		client = openai.NewClientWithConfig(cfg)
	}

	model := opts.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Summarizer{
		projects: projects,
		pairs:    pairs,
		client:   client,
		model:    model,
		logger:   logger.With().Str("component", "topics").Logger(),
	}
}

func (s *Summarizer) Summarize(ctx context.Context, token, projectID string) string {
	projectContext, err := s.collectContext(ctx, token, projectID)
	if err != nil {
		s.logger.Warn().Err(err).Str("project_id", projectID).Msg("failed to collect project context")
		return FallbackFailure
	}
	if projectContext == "" {
		return FallbackNoContext
	}

	if s.client == nil {
		s.logger.Warn().Msg("OPENAI_API_KEY is not configured, using fallback topic")
		return FallbackFailure
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: projectContext},
		},
		MaxTokens:   20,
		Temperature: 0.3,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("project_id", projectID).Msg("topic completion failed")
		return FallbackFailure
	}
	if len(resp.Choices) == 0 {
		s.logger.Warn().Str("project_id", projectID).Msg("topic completion returned no choices")
		return FallbackFailure
	}

	label, ok := CleanLabel(resp.Choices[0].Message.Content)
	if !ok {
		s.logger.Warn().
			Str("project_id", projectID).
			Str("answer", resp.Choices[0].Message.Content).
			Msg("topic completion returned an unusable label")
		return FallbackFailure
	}
	return label
}

func (s *Summarizer) collectContext(ctx context.Context, token, projectID string) (string, error) {
	project, err := s.projects.Get(ctx, token, projectID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch project: %w", err)
	}

	pairs, err := s.pairs.ListRecent(ctx, token, projectID, recentPairs)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image pairs: %w", err)
	}

	var lines []string
	if project.Name != nil && strings.TrimSpace(*project.Name) != "" {
		lines = append(lines, "Project name: "+strings.TrimSpace(*project.Name))
	}
	if project.Description != nil && strings.TrimSpace(*project.Description) != "" {
		lines = append(lines, "Project description: "+strings.TrimSpace(*project.Description))
	}
	for _, pair := range pairs {
		if pair.PromptText != nil && strings.TrimSpace(*pair.PromptText) != "" {
			lines = append(lines, "Drawing prompt: "+strings.TrimSpace(*pair.PromptText))
		}
		if desc := strings.TrimSpace(pair.Description()); desc != "" {
			lines = append(lines, "Drawing description: "+desc)
		}
	}

	return strings.Join(lines, "\n"), nil
}

// CleanLabel normalizes a model answer into a label of at most six words.
// Answers shorter than two words are rejected.
func CleanLabel(answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if idx := strings.IndexAny(answer, "\r\n"); idx >= 0 {
		answer = answer[:idx]
	}
	answer = strings.TrimPrefix(answer, "Topic:")
	answer = strings.Trim(answer, " \t\"'`*")
	answer = strings.TrimRight(answer, ".!?,;:")

	words := strings.Fields(answer)
	if len(words) < minWords {
		return "", false
	}
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " "), true
}
