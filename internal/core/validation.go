// AngelaMos | 2026
// validation.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const maxBodyBytes = 1 << 20

// NewValidator reports field errors under their JSON names. Besides the
// built-in tags it knows notblank and uploadpath.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	//nolint:errcheck // only fails on an empty tag or nil func
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	//nolint:errcheck // only fails on an empty tag or nil func
	_ = v.RegisterValidation("uploadpath", func(fl validator.FieldLevel) bool {
		return ValidUploadPath(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidUploadPath accepts an empty value or a relative path inside the
// uploads directory. Absolute URLs and parent segments are refused.
func ValidUploadPath(p string) bool {
	if p == "" {
		return true
	}
	if strings.Contains(p, "://") || strings.HasPrefix(p, "//") || strings.Contains(p, "..") {
		return false
	}
	return strings.HasPrefix(strings.TrimPrefix(p, "/"), "uploads/")
}

// DecodeAndValidate reads a JSON body into dst and runs struct validation.
// The returned error is already an *AppError carrying a client message.
func DecodeAndValidate(
	w http.ResponseWriter,
	r *http.Request,
	v *validator.Validate,
	dst any,
) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return BadRequestError("invalid request body")
	}

	if err := v.Struct(dst); err != nil {
		return BadRequestError(FormatValidationError(err))
	}

	return nil
}

func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "validation failed"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}

	return strings.Join(msgs, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be blank"
	case "uploadpath":
		return field + " must be a path under uploads/"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "latitude", "longitude":
		return field + " must be a valid " + fe.Tag()
	default:
		return field + " is invalid"
	}
}
