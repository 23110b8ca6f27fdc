package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserType discriminates the two identity variants carried in tokens
type UserType string

const (
	UserTypePlatformAdmin UserType = "platform_admin"
	UserTypeCompanyUser   UserType = "company_user"
)

// Valid reports whether t is a known identity variant
func (t UserType) Valid() bool {
	return t == UserTypePlatformAdmin || t == UserTypeCompanyUser
}

// AccessClaims are embedded in access tokens. CompanyID and CompanyStatus
// are only present for company users.
type AccessClaims struct {
	UserID        string        `json:"userId"`
	Email         string        `json:"email"`
	UserType      UserType      `json:"userType"`
	Role          string        `json:"role"`
	CompanyID     string        `json:"companyId,omitempty"`
	CompanyStatus CompanyStatus `json:"companyStatus,omitempty"`
	jwt.RegisteredClaims
}

// IsPlatformAdmin checks the user type discriminant
func (c *AccessClaims) IsPlatformAdmin() bool {
	return c != nil && c.UserType == UserTypePlatformAdmin
}

// IsCompanyUser checks the user type discriminant
func (c *AccessClaims) IsCompanyUser() bool {
	return c != nil && c.UserType == UserTypeCompanyUser
}

// HasRole reports whether the role claim is one of roles
func (c *AccessClaims) HasRole(roles ...string) bool {
	if c == nil {
		return false
	}
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// Expires returns the expiration time, zero if absent
func (c *AccessClaims) Expires() time.Time {
	return numericTime(c.ExpiresAt)
}

// IssuedTime returns the issue time, zero if absent
func (c *AccessClaims) IssuedTime() time.Time {
	return numericTime(c.IssuedAt)
}

// RefreshClaims are embedded in refresh tokens
type RefreshClaims struct {
	UserID   string   `json:"userId"`
	UserType UserType `json:"userType"`
	jwt.RegisteredClaims
}

// Expires returns the expiration time, zero if absent
func (c *RefreshClaims) Expires() time.Time {
	return numericTime(c.ExpiresAt)
}

// AccessClaimsForUser builds the claims for a tenant user session
func AccessClaimsForUser(user UserProfile, company CompanySummary) AccessClaims {
	return AccessClaims{
		UserID:        user.ID.String(),
		Email:         user.Email,
		UserType:      UserTypeCompanyUser,
		Role:          user.Role,
		CompanyID:     user.CompanyID.String(),
		CompanyStatus: company.Status,
	}
}

// AccessClaimsForAdmin builds the claims for a platform admin session
func AccessClaimsForAdmin(admin AdminProfile) AccessClaims {
	return AccessClaims{
		UserID:   admin.ID.String(),
		Email:    admin.Email,
		UserType: UserTypePlatformAdmin,
		Role:     string(admin.Role),
	}
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
