package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"task-management/internal/apperror"
	"task-management/internal/config"
	"task-management/internal/models"
	"task-management/pkg/logger"
)

// respond writes the standard envelope.
func respond(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{
		"message": message,
		"success": status < 400,
		"status":  status,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// respondError maps err to its status code. Validation errors carry the
// field messages, and input (if not nil) echoes the submitted form.
func respondError(c *fiber.Ctx, err error, input any) error {
	status := apperror.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		logger.ErrorLogger.Error("Request failed",
			zap.String("method", c.Method()), zap.String("url", c.OriginalURL()), zap.Error(err))
		return respond(c, status, "Internal server error", nil)
	}
	body := fiber.Map{
		"message": apperrorMessage(err),
		"success": false,
		"status":  status,
	}
	if fields := apperror.Fields(err); len(fields) > 0 {
		body["errors"] = fields
		if input != nil {
			body["input"] = input
		}
	}
	return c.Status(status).JSON(body)
}

func apperrorMessage(err error) string {
	var e *apperror.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// bindRequest parses the body (JSON or form) into req and runs the struct
// validator on it.
func bindRequest(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		logger.RequestLogger.Warn("Bad request body", zap.String("url", c.OriginalURL()), zap.Error(err))
		return apperror.New(apperror.Validation, "Bad request")
	}
	if err := config.Validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError turns validator errors into per-field messages.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.New(apperror.Validation, "Bad request")
	}
	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return apperror.NewValidation(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "excludesall":
		return "This field contains invalid characters."
	default:
		return "Invalid value."
	}
}

// paramID reads a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewNotFound("Not found.")
	}
	return id, nil
}

// hoursInput holds worked hours as sent, either a JSON number, a JSON
// string or a form value.
type hoursInput struct {
	raw string
	set bool
}

func (h *hoursInput) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	h.raw, h.set = strings.Trim(s, `"`), true
	return nil
}

func (h *hoursInput) UnmarshalText(b []byte) error {
	h.raw, h.set = string(b), true
	return nil
}

func (h hoursInput) MarshalJSON() ([]byte, error) {
	if !h.set {
		return []byte("null"), nil
	}
	return json.Marshal(h.raw)
}

// parse returns nil if the field was not sent. Panel forms always send the
// field, so blankUnset treats an empty value as not sent.
func (h hoursInput) parse(blankUnset bool) (*decimal.Decimal, error) {
	if !h.set || (blankUnset && strings.TrimSpace(h.raw) == "") {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(h.raw))
	if err != nil {
		return nil, apperror.FieldError("worked_hours", "A valid number is required.")
	}
	return &d, nil
}

// parseDate accepts "YYYY-MM-DD". A nil pointer means the field was not sent.
func parseDate(s *string) (*models.Date, error) {
	if s == nil {
		return nil, nil
	}
	if strings.TrimSpace(*s) == "" {
		return nil, apperror.FieldError("due_date", "This field is required.")
	}
	d, err := models.ParseDate(*s)
	if err != nil {
		return nil, apperror.FieldError("due_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	return &d, nil
}

// parseStatus returns nil if s is nil or blank.
func parseStatus(s *string) *models.Status {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	st := models.Status(strings.TrimSpace(*s))
	return &st
}

// idInput is an optional account id sent as a JSON number, a JSON string or
// a form value. Blank and null mean "none".
type idInput struct {
	raw string
}

func (i *idInput) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	i.raw = strings.Trim(s, `"`)
	return nil
}

func (i *idInput) UnmarshalText(b []byte) error {
	i.raw = string(b)
	return nil
}

func (i idInput) MarshalJSON() ([]byte, error) {
	if strings.TrimSpace(i.raw) == "" {
		return []byte("null"), nil
	}
	return json.Marshal(i.raw)
}

// parse returns nil for a blank id. field names the form field in the error.
func (i idInput) parse(field string) (*int64, error) {
	s := strings.TrimSpace(i.raw)
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperror.FieldError(field, "Select a valid choice.")
	}
	return &id, nil
}

// mergeFieldErrors combines validation errors from several parsers.
func mergeFieldErrors(errs ...error) error {
	if len(errs) == 0 {
		return nil
	}
	fields := map[string]string{}
	for _, err := range errs {
		for k, v := range apperror.Fields(err) {
			fields[k] = v
		}
	}
	return apperror.NewValidation(fields)
}
