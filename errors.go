package auth

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidation         = "VALIDATION_ERROR"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeAccountDisabled    = "ACCOUNT_DEACTIVATED"
	TextCodeCompanyNotApproved = "COMPANY_NOT_APPROVED"
	TextCodeNotFound           = "NOT_FOUND"
	TextCodeConflict           = "CONFLICT"
	TextCodeDuplicate          = "DUPLICATE_VALUE"
	TextCodeInvalidPlan        = "INVALID_PLAN"
	TextCodeInvalidStatus      = "INVALID_STATUS"
	TextCodeInvalidTransition  = "INVALID_COMPANY_STATE_TRANSITION"
	TextCodeTokenInvalid       = "TOKEN_INVALID"
	TextCodeRateLimited        = "TOO_MANY_ATTEMPTS"
	TextCodeInternal           = "INTERNAL_ERROR"
)

// ErrInvalidCredentials is shared by unknown identities and wrong passwords
var ErrInvalidCredentials = goerrors.New("Invalid email or password", goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode(TextCodeInvalidCredentials)

// ErrUserDeactivated is returned when a tenant user has isActive=false
var ErrUserDeactivated = goerrors.New("This user account has been deactivated", goerrors.CategoryAuthz).
	WithCode(http.StatusForbidden).
	WithTextCode(TextCodeAccountDisabled)

// ErrAdminDeactivated is returned when a platform admin has isActive=false
var ErrAdminDeactivated = goerrors.New("This admin account has been deactivated", goerrors.CategoryAuthz).
	WithCode(http.StatusForbidden).
	WithTextCode(TextCodeAccountDisabled)

// ErrCompanyNotApproved is the base for login attempts against a company
// that is not approved. See CompanyNotApprovedError for the status message.
var ErrCompanyNotApproved = goerrors.New("company is not approved", goerrors.CategoryAuthz).
	WithCode(http.StatusForbidden).
	WithTextCode(TextCodeCompanyNotApproved)

var ErrCompanyEmailTaken = goerrors.New("A company with this email already exists", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode(TextCodeConflict)

var ErrAdminEmailTaken = goerrors.New("Admin with this email already exists", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode(TextCodeConflict)

var ErrCompanyNotFound = notFound("Company not found")
var ErrUserNotFound = notFound("User not found")
var ErrAdminNotFound = notFound("Admin not found")
var ErrCustomerNotFound = notFound("Customer not found")
var ErrProductNotFound = notFound("Product not found")

// ErrCustomerEmailTaken keeps the 400 status the API has always used for
// per company duplicates.
var ErrCustomerEmailTaken = goerrors.New("Email already exists for this company", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeDuplicate)

var ErrProductSKUTaken = goerrors.New("SKU already exists for this company", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeDuplicate)

var ErrInvalidPlan = goerrors.New("Plan must be one of: starter, pro", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeInvalidPlan)

var ErrInvalidStatus = goerrors.New("Status must be one of: pending, approved, rejected, suspended", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeInvalidStatus)

var ErrInvalidCompanyTransition = goerrors.New("invalid company status transition", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeInvalidTransition)

var ErrRefreshTokenRequired = goerrors.New("Refresh token is required", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeValidation)

var ErrInvalidRefreshToken = goerrors.New("Invalid or expired refresh token", goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode(TextCodeTokenInvalid)

var ErrTooManyLoginAttempts = goerrors.New("Too many login attempts. Please try again later.", goerrors.CategoryRateLimit).
	WithCode(http.StatusTooManyRequests).
	WithTextCode(TextCodeRateLimited)

var ErrNoFileProvided = badInput("No file provided")
var ErrLogoNotImage = badInput("Only image files are allowed")
var ErrLogoTooLarge = badInput("File too large")

func badInput(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeValidation)
}

func notFound(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeNotFound)
}

// CompanyNotApprovedError reports the current status of the company
func CompanyNotApprovedError(status CompanyStatus) error {
	return derive(ErrCompanyNotApproved,
		fmt.Sprintf("Your company is currently %s. Please wait for admin approval.", status),
		map[string]any{"status": string(status)},
	)
}

// derive clones base with a new message, keeping base as the source so
// errors.Is still matches it.
func derive(base *goerrors.Error, msg string, meta map[string]any) *goerrors.Error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	clone.Message = msg
	clone.Source = base
	if len(meta) > 0 {
		clone.WithMetadata(meta)
	}
	return clone
}

// internalError wraps unexpected store failures
func internalError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeInternal)
}

// HTTPStatus resolves the response status for any error
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.Code > 0 {
			return richErr.Code
		}
		return statusForCategory(richErr.Category)
	}
	return http.StatusInternalServerError
}

func statusForCategory(c goerrors.Category) int {
	switch c {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the client facing message of a rich error, or ""
// for anything else.
func ErrorMessage(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Message
	}
	return ""
}
