// Package validation turns binding failures into the API's 400 body.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Languages accepted for translations and user preferences.
var Languages = []string{"en", "ar", "fr", "ja", "es", "de"}

// Statuses accepted for manga publication status.
var Statuses = []string{"ongoing", "completed", "hiatus", "cancelled"}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of a 400 validation response.
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register installs the field naming and the custom tags on v.
//
//	language  one of Languages
//	username  letters, digits, _ and -
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return IsLanguage(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

// fieldName reports fields by their json, form or uri name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// IsLanguage reports whether lang is a supported language code.
func IsLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Fields converts a binding error into field errors.
func Fields(err error) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fieldPath(fe), Message: message(fe)})
		}
		return out
	}
	return []FieldError{{Field: "request", Message: err.Error()}}
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s%s", fe.Param(), unit(fe.Kind()))
	case "max":
		return fmt.Sprintf("must be at most %s%s", fe.Param(), unit(fe.Kind()))
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "uuid":
		return "must be a valid UUID"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "language":
		return "must be one of: " + strings.Join(Languages, ", ")
	case "username":
		return "may only contain letters, digits, _ and -"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func unit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	default:
		return ""
	}
}

// Abort writes a 400 response listing the invalid fields.
func Abort(c *gin.Context, message string, errs []FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Message: message, Errors: errs})
}

// AbortWithError writes a 400 response for a binding error.
func AbortWithError(c *gin.Context, message string, err error) {
	Abort(c, message, Fields(err))
}
