package auth

import "unicode/utf8"

const minPasswordLength = 8

// Password strength failure reasons, in evaluation order
const (
	ReasonPasswordTooShort  = "Password must be at least 8 characters long"
	ReasonPasswordUppercase = "Password must contain at least one uppercase letter"
	ReasonPasswordLowercase = "Password must contain at least one lowercase letter"
	ReasonPasswordDigit     = "Password must contain at least one number"
)

// PasswordStrength is the outcome of AssessPasswordStrength
type PasswordStrength struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// AssessPasswordStrength checks length, then uppercase, lowercase, and
// digit classes. The first failing rule is reported.
func AssessPasswordStrength(password string) PasswordStrength {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return PasswordStrength{Reason: ReasonPasswordTooShort}
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}

	switch {
	case !upper:
		return PasswordStrength{Reason: ReasonPasswordUppercase}
	case !lower:
		return PasswordStrength{Reason: ReasonPasswordLowercase}
	case !digit:
		return PasswordStrength{Reason: ReasonPasswordDigit}
	}

	return PasswordStrength{Valid: true}
}
