package validation

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "anime-tracker-backend/internal/common/errors"
)

const (
	// Максимальные длины для различных полей
	MaxTitleLength      = 200
	MaxUsernameLength   = 64
	MaxCommentLength    = 1000
	MaxTelegramIDLength = 64

	ProfileIDLength = 8
)

var profileIDRegex = regexp.MustCompile(`^[0-9a-f]{8}$`)

// ValidateTitle проверяет название аниме
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty")
	}

	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title cannot exceed %d characters", MaxTitleLength)
	}

	return nil
}

// ValidateUsername проверяет отображаемое имя. Это не Telegram-хэндл,
// поэтому допускаются пробелы и любые буквы.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("username cannot exceed %d characters", MaxUsernameLength)
	}

	return nil
}

func ValidateComment(comment string) error {
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return fmt.Errorf("comment cannot exceed %d characters", MaxCommentLength)
	}
	return nil
}

// ValidateTelegramID проверяет внешний идентификатор пользователя
func ValidateTelegramID(id string) error {
	if id == "" {
		return fmt.Errorf("telegram id cannot be empty")
	}

	if len(id) > MaxTelegramIDLength {
		return fmt.Errorf("telegram id cannot exceed %d characters", MaxTelegramIDLength)
	}

	if strings.ContainsAny(id, " \t\r\n/:") {
		return fmt.Errorf("telegram id contains forbidden characters")
	}

	return nil
}

// IsValidProfileID reports whether id has the shape of a generated profile id.
func IsValidProfileID(id string) bool {
	return profileIDRegex.MatchString(id)
}

// IsOneOf проверяет, что значение входит в список допустимых
func IsOneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// RegisterOneOf registers a binding tag on gin's validator engine that accepts
// only the listed string values, e.g. `binding:"required,anime_status"`.
func RegisterOneOf(tag string, allowed ...string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	values := append([]string(nil), allowed...)
	return v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return IsOneOf(fl.Field().String(), values...)
	})
}

// FromBindingError converts a gin binding failure into a validation AppError.
func FromBindingError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewValidationError(jsonFieldName(fe), reasonFor(fe))
	}
	return apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body")
}

func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.StructField()
	}
	// AnimeTitle -> animeTitle
	return strings.ToLower(name[:1]) + name[1:]
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("invalid value %q (%s)", fmt.Sprint(fe.Value()), fe.Tag())
	}
}
