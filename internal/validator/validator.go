package validator

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"taman-digital/internal/domain"
	"taman-digital/internal/repository"
)

const (
	maxCommentWords  = 500
	maxMessageLength = 2000
	maxPenNameLength = 60
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	validStatus   = []interface{}{domain.StatusDraft, domain.StatusPublished}
	validThemes   = []interface{}{domain.ThemeLight, domain.ThemeDark}
)

// Validator provides validation methods for edit buffers and user input.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDraft checks an edit buffer before it is committed.
func (v *Validator) ValidateDraft(d *domain.Draft) error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Title,
			validation.By(notBlank("title_required")),
		),
		validation.Field(&d.Content,
			validation.By(notBlank("content_required")),
		),
		validation.Field(&d.Status,
			validation.Required.Error("status_required"),
			validation.In(validStatus...).Error("invalid_status"),
		),
	)
}

// ValidateStatus checks a requested post status.
func (v *Validator) ValidateStatus(status domain.PostStatus) error {
	return validation.Errors{
		"status": validation.Validate(status,
			validation.Required.Error("status_required"),
			validation.In(validStatus...).Error("invalid_status"),
		),
	}.Filter()
}

// ValidateRegistration checks the fields a new account needs.
func (v *Validator) ValidateRegistration(r *repository.Registration) error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required.Error("username_required"),
			validation.Match(usernameRegex).Error("invalid_username_format"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password_required"),
		),
		validation.Field(&r.Name,
			validation.Required.Error("name_required"),
		),
		validation.Field(&r.Email,
			is.Email.Error("invalid_email_format"),
		),
		validation.Field(&r.PenName,
			validation.RuneLength(0, maxPenNameLength).Error("pen_name_too_long"),
		),
	)
}

// ValidateProfile checks an edited profile.
func (v *Validator) ValidateProfile(u *domain.User) error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Name,
			validation.Required.Error("name_required"),
		),
		validation.Field(&u.Email,
			is.Email.Error("invalid_email_format"),
		),
		validation.Field(&u.PenName,
			validation.RuneLength(0, maxPenNameLength).Error("pen_name_too_long"),
		),
		validation.Field(&u.PreferredTheme,
			validation.In(validThemes...).Error("invalid_theme"),
		),
		validation.Field(&u.ProfilePicture,
			is.URL.Error("invalid_picture_url"),
		),
	)
}

// ValidateComment checks a comment body.
func (v *Validator) ValidateComment(body string) error {
	return validation.Validate(body,
		validation.By(notBlank("body_required")),
		validation.By(wordCountRule(maxCommentWords)),
	)
}

// ValidateMessage checks a direct message body.
func (v *Validator) ValidateMessage(content string) error {
	return validation.Validate(content,
		validation.By(notBlank("content_required")),
		validation.RuneLength(0, maxMessageLength).Error("content_too_long"),
	)
}

// ValidateIdea checks the text of a quick idea.
func (v *Validator) ValidateIdea(text string) error {
	return validation.Validate(text,
		validation.By(notBlank("idea_required")),
	)
}

// notBlank rejects strings that are empty after trimming whitespace.
func notBlank(code string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError(code, code)
		}
		return nil
	}
}

// wordCountRule creates a validation rule for max word count.
func wordCountRule(maxWords int) validation.RuleFunc {
	return func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		if domain.WordCount(s) > maxWords {
			return validation.NewError("body_too_long", "body exceeds word limit")
		}
		return nil
	}
}

// FieldErrors flattens a validation error into field -> message pairs.
// Errors that are not tied to a field are reported under "value".
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validation.Errors
	if errors.As(err, &ve) {
		for field, fieldErr := range ve {
			out[field] = fieldErr.Error()
		}
		return out
	}
	if err != nil {
		out["value"] = err.Error()
	}
	return out
}

// IsValidationError reports whether err came from one of the Validate methods.
func IsValidationError(err error) bool {
	var ve validation.Errors
	if errors.As(err, &ve) {
		return true
	}
	var e validation.Error
	return errors.As(err, &e)
}
