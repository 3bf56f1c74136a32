package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"whisprdraw-backend/internal/middleware"
	"whisprdraw-backend/internal/models"
)

type ImageGenerationService interface {
	Generate(ctx context.Context, token string, req models.GenerateImageRequest) (*models.GenerateImageResponse, error)
}

type GenerateHandler struct {
	service ImageGenerationService
}

func NewGenerateHandler(service ImageGenerationService) *GenerateHandler {
	return &GenerateHandler{service: service}
}

// GenerateImage godoc
// @Summary     Generate or edit an image
// @Description Runs the image model synchronously. With save_data (default true) and a project_id, the input/output pair and a project icon are saved in the background.
// @Tags        generate
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.GenerateImageRequest true "Generation request"
// @Success     200 {object} models.GenerateImageResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/generate-image [post]
func (h *GenerateHandler) GenerateImage(c *gin.Context) {
	var req models.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	resp, err := h.service.Generate(c.Request.Context(), middleware.Token(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
