package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
)

// BindAndValidate decodes the JSON body into obj and maps validator
// failures onto a field-keyed validation error. Non-validation decode
// failures (malformed JSON, wrong types) come back as a bad request.
func BindAndValidate(c *gin.Context, obj interface{}) *errors.AppError {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrBadRequest(fmt.Sprintf("invalid request body: %v", err))
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fieldName(fe)] = fieldMessage(fe)
	}
	return errors.ErrValidationWithFields("validation failed", fields)
}

func fieldName(fe validator.FieldError) string {
	field := fe.Field()
	if len(field) > 0 {
		field = strings.ToLower(field[:1]) + field[1:]
	}
	return field
}

func fieldMessage(fe validator.FieldError) string {
	field := fieldName(fe)

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "unit_type":
		return fmt.Sprintf("%s must be one of: ENGINE, LADDER, RESCUE, MEDIC, SAR_TEAM", field)
	case "availability":
		return fmt.Sprintf("%s must be one of: AVAILABLE, OFF, IN_TRAINING, DEPLOYED, ON_CALL", field)
	case "assignment_status":
		return fmt.Sprintf("%s must be one of: ON_SHIFT, PENDING, ABSENT, EARLY_OFF", field)
	case "cert_name":
		return fmt.Sprintf("%s must be a valid certification name", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
