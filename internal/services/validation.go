package services

import (
	"strings"

	"github.com/google/uuid"
	"whisprdraw-backend/internal/apperror"
)

func requireUUID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.Validation(field, field+" is required")
	}
	if _, err := uuid.Parse(value); err != nil {
		return apperror.Validation(field, field+" must be a valid UUID")
	}
	return nil
}
