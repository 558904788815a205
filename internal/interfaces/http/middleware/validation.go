package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/cookbook/api/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes validation errors report JSON field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// BindJSON decodes and validates the request body into obj. An empty body is
// validated as an empty object. On failure the 400 response is written and
// false is returned.
func BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return true
	}
	HandleValidationError(c, err)
	return false
}

// HandleValidationError writes the response for a body that failed to bind
func HandleValidationError(c *gin.Context, err error) {
	var (
		validationErrs validator.ValidationErrors
		typeErr        *json.UnmarshalTypeError
		tooLarge       *http.MaxBytesError
	)
	switch {
	case errors.As(err, &validationErrs):
		c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(validationErrs))
	case errors.As(err, &typeErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.FieldErrors{typeErrorField(typeErr): {typeMessage(typeErr)}})
	case errors.As(err, &tooLarge):
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewDetail(dto.MsgBodyTooLarge))
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.JSONParseError(err))
	}
}

// FormatValidationErrors converts validator errors to the field error body
func FormatValidationErrors(errs validator.ValidationErrors) dto.FieldErrors {
	out := dto.FieldErrors{}
	for _, e := range errs {
		out.Add(e.Field(), validationMessage(e))
	}
	return out
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return dto.MsgRequired
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", e.Param())
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", e.Param())
	case "url", "http_url":
		return dto.MsgInvalidURL
	case "gt", "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", e.Param())
	default:
		return dto.MsgInvalidValue
	}
}

// typeErrorField names the offending JSON key. encoding/json reports the path
// through embedded structs with their Go names ("AssociationIDs.cuisine_ids"),
// and request bodies have no nested objects, so the last segment is the key.
func typeErrorField(e *json.UnmarshalTypeError) string {
	path := e.Field
	if i := strings.LastIndex(path, "."); i >= 0 {
		path = path[i+1:]
	}
	return path
}

func typeMessage(e *json.UnmarshalTypeError) string {
	switch e.Type.Kind() {
	case reflect.String:
		return "Not a valid string."
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Uint32:
		return "A valid integer is required."
	case reflect.Slice:
		return fmt.Sprintf("Expected a list of items but got type %q.", e.Value)
	default:
		return dto.MsgInvalidValue
	}
}
