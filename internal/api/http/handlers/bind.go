package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/campus-fixit/issue-service/internal/domain"
	"github.com/campus-fixit/issue-service/internal/service"
	apperrors "github.com/campus-fixit/issue-service/pkg/util/errorutil"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with json field names and the issue
// enum rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return sf.Name
			}
			return name
		})
		_ = v.RegisterValidation("issue_category", func(fl validator.FieldLevel) bool {
			return domain.IssueCategory(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("issue_status", func(fl validator.FieldLevel) bool {
			return domain.IssueStatus(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// BindJSON decodes the body into out and validates it. An empty body decodes
// as an empty object.
func BindJSON(c *fiber.Ctx, out interface{}) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewValidationError("invalid request body", parseDecodeError(err))
	}
	return ValidateStruct(out)
}

// ValidateStruct runs struct tag validation and renders failures as field errors.
func ValidateStruct(out interface{}) error {
	err := Validator().Struct(out)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.NewValidationError("invalid request body", map[string]any{"reason": err.Error()})
	}
	fields := make([]service.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, service.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: validationMessage(fe.Tag(), fe.Param()),
		})
	}
	return service.NewFieldValidationError(fields)
}

func parseDecodeError(err error) map[string]any {
	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) {
		return map[string]any{"json": "invalid_json_syntax"}
	}
	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		return map[string]any{
			"json": "invalid_json_type",
			"fields": []service.FieldError{{
				Field:   typeError.Field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeError.Type.String()),
			}},
		}
	}
	return map[string]any{"reason": err.Error()}
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "issue_category":
		return "must be one of Electrical, Water, Internet, Infrastructure"
	case "issue_status":
		return "must be one of Open, In Progress, Resolved"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
