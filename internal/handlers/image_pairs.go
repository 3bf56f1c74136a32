package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"whisprdraw-backend/internal/middleware"
	"whisprdraw-backend/internal/models"
)

type ImagePairLister interface {
	ListImagePairs(ctx context.Context, token, projectID string) ([]models.ImagePair, error)
}

type ImagePairsHandler struct {
	service ImagePairLister
}

func NewImagePairsHandler(service ImagePairLister) *ImagePairsHandler {
	return &ImagePairsHandler{service: service}
}

// ListImagePairs godoc
// @Summary     List a project's image pairs
// @Tags        image-pairs
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.ImagePairListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/image-pairs/{project_id} [get]
func (h *ImagePairsHandler) ListImagePairs(c *gin.Context) {
	pairs, err := h.service.ListImagePairs(c.Request.Context(), middleware.Token(c), c.Param("project_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if pairs == nil {
		pairs = []models.ImagePair{}
	}

	c.JSON(http.StatusOK, models.ImagePairListResponse{ImagePairs: pairs})
}
