package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// formatValidationError converts validator errors into user-facing
// messages. Field names are lowered to match their JSON form.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				return "invalid request: " + field + " is required"
			case "notblank":
				return "invalid request: " + field + " cannot be whitespace only"
			case "max":
				return "invalid request: " + field + " exceeds maximum length"
			case "gte":
				return "invalid request: " + field + " must be at least " + fe.Param()
			case "oneof":
				return "invalid request: " + field + " must be one of " + fe.Param()
			case "email":
				return "invalid request: " + field + " must be a valid email address"
			default:
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}
