package auth

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used to parse phone numbers written without a
// country prefix.
const DefaultPhoneRegion = "IN"

// ErrValidation is returned when a payload fails its rules. Per field
// messages are available through ValidationDetails.
var ErrValidation = goerrors.New("Validation error", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeValidation)

// FieldError is a single failed rule, Field is a dotted JSON path
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validatable is implemented by every request payload
type Validatable interface {
	Validate() error
}

// ValidatePayload runs the payload rules and converts a failure into
// ErrValidation carrying the flattened field errors.
func ValidatePayload(p Validatable) error {
	if p == nil {
		return nil
	}
	return NewValidationError(p.Validate())
}

// NewValidationError converts ozzo validation errors into ErrValidation
func NewValidationError(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) && internal.InternalError() != nil {
		return internalError(internal.InternalError(), "validation rule failed")
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return derive(ErrValidation, ErrValidation.Message, map[string]any{
			"details": []FieldError{{Message: err.Error()}},
		})
	}

	details := flattenValidationErrors("", errs, nil)
	return derive(ErrValidation, ErrValidation.Message, map[string]any{
		"details": details,
	})
}

// ValidationDetails returns the field errors attached by NewValidationError
func ValidationDetails(err error) []FieldError {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Metadata == nil {
		return nil
	}
	details, _ := richErr.Metadata["details"].([]FieldError)
	return details
}

func flattenValidationErrors(prefix string, errs validation.Errors, out []FieldError) []FieldError {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		var nested validation.Errors
		if errors.As(errs[k], &nested) {
			out = flattenValidationErrors(path, nested, out)
			continue
		}
		out = append(out, FieldError{Field: path, Message: errs[k].Error()})
	}
	return out
}

// NormalizePhone returns the E.164 form of a valid number. Numbers that
// parse but are not valid for their region are kept as written.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if region == "" {
		region = DefaultPhoneRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", err
	}

	if phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164), nil
	}
	return raw, nil
}

func phoneRule(value any) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case *string:
		if v == nil {
			return nil
		}
		raw = *v
	default:
		return nil
	}

	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, err := NormalizePhone(raw, DefaultPhoneRegion); err != nil {
		return errors.New("Invalid phone number")
	}
	return nil
}

func passwordRule(value any) error {
	pw, _ := value.(string)
	if res := AssessPasswordStrength(pw); !res.Valid {
		return errors.New(res.Reason)
	}
	return nil
}
