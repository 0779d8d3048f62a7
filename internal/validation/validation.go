// Package validation checks incoming requests at the API edge, reporting
// problems per field before anything touches the service layer.
package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
)

// Error carries one message per invalid field of a request.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ErrEmptyID
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidUUID, id)
	}
	return nil
}
