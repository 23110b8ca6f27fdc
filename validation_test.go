package auth_test

import (
	"errors"
	"testing"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
		reason   string
	}{
		{"Short1", false, auth.ReasonPasswordTooShort},
		{"alllowercase1", false, auth.ReasonPasswordUppercase},
		{"ALLUPPERCASE1", false, auth.ReasonPasswordLowercase},
		{"NoDigitsHere", false, auth.ReasonPasswordDigit},
		{"short", false, auth.ReasonPasswordTooShort},
		{"Secret123", true, ""},
		{"Pässwörd1", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			got := auth.AssessPasswordStrength(tt.password)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	got, err := auth.NormalizePhone("+1 650-253-0000", "IN")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	got, err = auth.NormalizePhone("   ", "IN")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = auth.NormalizePhone("call me maybe", "IN")
	assert.Error(t, err)
}

func TestNewValidationError_Plain(t *testing.T) {
	assert.NoError(t, auth.NewValidationError(nil))

	err := auth.NewValidationError(errors.New("boom"))
	assert.ErrorIs(t, err, auth.ErrValidation)
	assert.Equal(t, []auth.FieldError{{Message: "boom"}}, auth.ValidationDetails(err))
}

func TestCompanyStatusRequest_Validate(t *testing.T) {
	tests := []struct {
		status string
		msg    string
	}{
		{"", "Status is required"},
		{"archived", "Status must be one of: pending, approved, rejected, suspended"},
		{"approved", ""},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			err := auth.CompanyStatusRequest{Status: tt.status}.Validate()
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			details := auth.ValidationDetails(auth.NewValidationError(err))
			require.Len(t, details, 1)
			assert.Equal(t, auth.FieldError{Field: "status", Message: tt.msg}, details[0])
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 200},
		{"plain", errors.New("x"), 500},
		{"credentials", auth.ErrInvalidCredentials, 401},
		{"deactivated", auth.ErrUserDeactivated, 403},
		{"not approved", auth.CompanyNotApprovedError(auth.CompanyStatusRejected), 403},
		{"not found", auth.ErrCustomerNotFound, 404},
		{"company conflict", auth.ErrCompanyEmailTaken, 409},
		{"sku duplicate", auth.ErrProductSKUTaken, 400},
		{"throttled", auth.ErrTooManyLoginAttempts, 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.HTTPStatus(tt.err))
		})
	}
}

func TestCompanyNotApprovedError(t *testing.T) {
	err := auth.CompanyNotApprovedError(auth.CompanyStatusRejected)
	assert.ErrorIs(t, err, auth.ErrCompanyNotApproved)
	assert.Equal(t, "Your company is currently rejected. Please wait for admin approval.", auth.ErrorMessage(err))
	assert.Equal(t, "company is not approved", auth.ErrCompanyNotApproved.Message)
}
