package middleware

import (
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
)

var registerOnce sync.Once

// InitValidator registers the domain's enum validators on Gin's binding
// engine and switches error field names to their JSON tags. Safe to call
// from multiple setup paths; registration happens once.
func InitValidator() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		_ = v.RegisterValidation("unit_type", validateUnitType)
		_ = v.RegisterValidation("availability", validateAvailability)
		_ = v.RegisterValidation("assignment_status", validateAssignmentStatus)
		_ = v.RegisterValidation("cert_name", validateCertName)
		_ = v.RegisterValidation("safe_string", validateSafeString)

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			return name
		})
	})
}

var (
	unitTypeRegex         = regexp.MustCompile(`^(ENGINE|LADDER|RESCUE|MEDIC|SAR_TEAM)$`)
	availabilityRegex     = regexp.MustCompile(`^(AVAILABLE|OFF|IN_TRAINING|DEPLOYED|ON_CALL)$`)
	assignmentStatusRegex = regexp.MustCompile(`^(ON_SHIFT|PENDING|ABSENT|EARLY_OFF)$`)
	certNameRegex         = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\s\-./]{0,99}$`)
	safeStringRegex       = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,!?@#$%&*()+=:;'"<>\/\[\]{}|\\~\x60]+$`)
)

func validateUnitType(fl validator.FieldLevel) bool {
	return unitTypeRegex.MatchString(fl.Field().String())
}

func validateAvailability(fl validator.FieldLevel) bool {
	return availabilityRegex.MatchString(fl.Field().String())
}

func validateAssignmentStatus(fl validator.FieldLevel) bool {
	return assignmentStatusRegex.MatchString(fl.Field().String())
}

func validateCertName(fl validator.FieldLevel) bool {
	return certNameRegex.MatchString(fl.Field().String())
}

func validateSafeString(fl validator.FieldLevel) bool {
	return safeStringRegex.MatchString(fl.Field().String())
}

// InputSanitizer strips null bytes and surrounding whitespace from query
// parameters before handlers see them.
func InputSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		for key, values := range query {
			for i, v := range values {
				v = strings.ReplaceAll(v, "\x00", "")
				values[i] = strings.TrimSpace(v)
			}
			query[key] = values
		}
		c.Request.URL.RawQuery = query.Encode()

		c.Next()
	}
}

// ContentType rejects mutating requests whose body is not JSON. Empty bodies
// pass, since several endpoints take no payload.
func ContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := c.GetHeader("Content-Type")
			if !strings.HasPrefix(contentType, "application/json") && c.Request.ContentLength > 0 {
				AbortWithAppError(c, &errors.AppError{
					Code:       "INVALID_CONTENT_TYPE",
					Message:    "Content-Type must be application/json",
					HTTPStatus: http.StatusUnsupportedMediaType,
				})
				return
			}
		}
		c.Next()
	}
}
