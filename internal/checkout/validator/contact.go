package validator

import (
	"fmt"
	"strings"
	"time"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ContactValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewContactValidator(log *logger.Logger) *ContactValidator {
	v := validator.New()

	if err := v.RegisterValidation("two_words", validateTwoWords); err != nil {
		log.Fatal("Failed to register 'two_words' validator", "error", err)
	}
	if err := v.RegisterValidation("min_digits", validateMinDigits); err != nil {
		log.Fatal("Failed to register 'min_digits' validator", "error", err)
	}
	if err := v.RegisterValidation("iso_date", validateISODate); err != nil {
		log.Fatal("Failed to register 'iso_date' validator", "error", err)
	}
	if err := v.RegisterValidation("wall_clock", validateWallClock); err != nil {
		log.Fatal("Failed to register 'wall_clock' validator", "error", err)
	}

	return &ContactValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks the customer contact block. Failures are field-level and
// recoverable: they block submission but nothing else.
func (cv *ContactValidator) Validate(c *model.Customer) error {
	err := cv.validate.Struct(c)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "customer", Message: err.Error()}}
	}

	var out ValidationErrors
	for _, fe := range invalid {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "two_words":
		return "must contain at least two words"
	case "email":
		return "must be a valid email address"
	case "min_digits":
		return fmt.Sprintf("must contain at least %s digits", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func validateTwoWords(fl validator.FieldLevel) bool {
	words := strings.Fields(fl.Field().String())
	return len(words) >= 2
}

func validateMinDigits(fl validator.FieldLevel) bool {
	want := 0
	if _, err := fmt.Sscanf(fl.Param(), "%d", &want); err != nil {
		return false
	}
	return sanitizer.DigitCount(fl.Field().String()) >= want
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateWallClock(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
