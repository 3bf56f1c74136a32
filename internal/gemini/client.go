package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
	"whisprdraw-backend/internal/apperror"
)

type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client calls a Gemini image model for sketch generation and editing.
type Client struct {
	genai  *genai.Client
	model  string
	logger zerolog.Logger
}

type Request struct {
	Prompt        string
	Mode          Mode
	Image         []byte
	ImageMimeType string
}

type Result struct {
	Image    []byte
	MimeType string
	Text     string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-image-preview"
	}

	cc := &genai.ClientConfig{
		APIKey:     strings.TrimSpace(opts.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		genai:  client,
		model:  model,
		logger: logger.With().Str("component", "gemini").Logger(),
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// Generate sends the templated prompt, plus the input image when present, and
// returns the first image the model answers with.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	parts := []*genai.Part{genai.NewPartFromText(BuildPrompt(req.Mode, req.Prompt))}
	if len(req.Image) > 0 {
		mimeType := req.ImageMimeType
		if mimeType == "" {
			mimeType = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(req.Image, mimeType))
	}

	c.logger.Debug().
		Str("mode", string(req.Mode)).
		Bool("has_image", len(req.Image) > 0).
		Msg("calling image model")

	resp, err := c.genai.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	)
	if err != nil {
		return nil, apperror.Downstream("image generation failed", err)
	}

	result := &Result{}
	var texts []string
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.Text != "" {
				texts = append(texts, part.Text)
			}
			if result.Image == nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				result.Image = part.InlineData.Data
				result.MimeType = part.InlineData.MIMEType
			}
		}
	}

	if result.Image == nil {
		return nil, apperror.Downstream("image generation failed",
			fmt.Errorf("model %s returned no image", c.model))
	}
	result.Text = strings.TrimSpace(strings.Join(texts, "\n"))
	return result, nil
}
