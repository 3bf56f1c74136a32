package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"whisprdraw-backend/internal/apperror"
	"whisprdraw-backend/internal/models"
)

const unexpectedErrorMessage = "An unexpected error occurred"

// writeError maps an error to its HTTP status. Validation and not-found
// errors carry their message, downstream errors pass through their message
// and cause, and anything else is hidden behind a fixed message.
func writeError(c *gin.Context, err error) {
	log := zerolog.Ctx(c.Request.Context())

	var appErr *apperror.AppError
	message := unexpectedErrorMessage
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch {
	case apperror.IsValidation(err):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "validation_error", Detail: message})
	case apperror.IsNotFound(err):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not_found", Detail: message})
	case apperror.IsDownstream(err):
		log.Error().Err(err).Msg("downstream service error")
		if appErr != nil {
			message = appErr.Error()
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "downstream_error", Detail: message})
	default:
		log.Error().Err(err).Msg("unexpected error")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Detail: unexpectedErrorMessage})
	}
}

func badRequestBody(c *gin.Context, err error) {
	zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("invalid request body")
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "validation_error", Detail: "invalid request body"})
}
