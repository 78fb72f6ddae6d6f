package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)
	mentionQueryPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

	registerOnce sync.Once
	registerErr  error
)

func IsValidUsername(value string) bool {
	return usernamePattern.MatchString(value)
}

// IsValidMentionQuery accepts the partial handle typed after "@".
func IsValidMentionQuery(value string) bool {
	return mentionQueryPattern.MatchString(value)
}

// RegisterValidators adds the custom tags to gin's binding validator.
func RegisterValidators() error {
	registerOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin binding engine is not go-playground validator")
			return
		}

		registerErr = Register(engine)
	})

	return registerErr
}

func Register(engine *validator.Validate) error {
	if err := engine.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register username validator: %w", err)
	}

	if err := engine.RegisterValidation("mention_query", func(fl validator.FieldLevel) bool {
		return IsValidMentionQuery(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register mention_query validator: %w", err)
	}

	return nil
}

// FormatValidationError turns the first failed rule into a short client message.
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Invalid request format"
	}

	first := validationErrors[0]

	switch first.Tag() {
	case "required":
		return first.Field() + " is required"
	case "email":
		return first.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", first.Field(), first.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", first.Field(), first.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", first.Field(), first.Param())
	case "username":
		return first.Field() + " must be 3-32 characters of letters, digits, '_' or '-'"
	case "mention_query":
		return first.Field() + " must be 1-32 characters of letters, digits, '_' or '-'"
	default:
		return first.Field() + " is invalid"
	}
}
