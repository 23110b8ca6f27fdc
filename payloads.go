package auth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	msgInvalidEmail     = "Invalid email address"
	msgCompanyNameMin   = "Company name must be at least 2 characters"
	msgCompanyNameMax   = "Company name must be at most 100 characters"
	msgUserNameMin      = "Name must be at least 2 characters"
	msgUserNameMax      = "Name must be at most 100 characters"
	msgCurrencyLength   = "Currency code must be 3 characters (e.g., USD)"
	msgPasswordRequired = "Password is required"
	msgInvalidURL       = "Invalid URL"
)

// RegisterCompanyInput is the company half of a registration request
type RegisterCompanyInput struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone,omitempty"`
	GSTTINNumber        string `json:"gstTinNumber,omitempty"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode"`
}

// Validate implements Validatable
func (r RegisterCompanyInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error(msgCompanyNameMin),
			validation.Length(2, 0).Error(msgCompanyNameMin),
			validation.Length(0, 100).Error(msgCompanyNameMax),
		),
		validation.Field(&r.Email,
			validation.Required.Error(msgInvalidEmail),
			is.Email.Error(msgInvalidEmail),
		),
		validation.Field(&r.Phone, validation.By(phoneRule)),
		validation.Field(&r.DefaultCurrencyCode,
			validation.Required.Error(msgCurrencyLength),
			validation.Length(3, 3).Error(msgCurrencyLength),
		),
	)
}

// RegisterUserInput is the first user half of a registration request
type RegisterUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validatable
func (r RegisterUserInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error(msgUserNameMin),
			validation.Length(2, 0).Error(msgUserNameMin),
			validation.Length(0, 100).Error(msgUserNameMax),
		),
		validation.Field(&r.Email,
			validation.Required.Error(msgInvalidEmail),
			is.Email.Error(msgInvalidEmail),
		),
		validation.Field(&r.Password, validation.By(passwordRule)),
	)
}

// RegisterCompanyRequest is the body of POST /auth/register-company
type RegisterCompanyRequest struct {
	Company RegisterCompanyInput `json:"company"`
	User    RegisterUserInput    `json:"user"`
}

// Validate implements Validatable
func (r RegisterCompanyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Company),
		validation.Field(&r.User),
	)
}

// LoginRequest is the body of both login endpoints
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validatable
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error(msgInvalidEmail),
			is.Email.Error(msgInvalidEmail),
		),
		validation.Field(&r.Password, validation.Required.Error(msgPasswordRequired)),
	)
}

// RefreshRequest is the body of both refresh endpoints
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// CompanyStatusRequest is the body of PUT /admin/companies/:id/status
type CompanyStatusRequest struct {
	Status string `json:"status"`
}

// Validate implements Validatable
func (r CompanyStatusRequest) Validate() error {
	allowed := make([]any, 0, len(CompanyStatuses))
	for _, s := range CompanyStatuses {
		allowed = append(allowed, string(s))
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required.Error("Status is required"),
			validation.In(allowed...).Error(ErrInvalidStatus.Message),
		),
	)
}

// CompanyPlanRequest is the body of PUT /admin/companies/:id/plan. Plan
// membership is checked by the service so the store is never touched
// with an unknown plan.
type CompanyPlanRequest struct {
	Plan string `json:"plan"`
}

// Validate implements Validatable
func (r CompanyPlanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Plan, validation.Required.Error("Plan is required")),
	)
}

// Validate implements Validatable
func (b BankAccount) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.BankName, validation.Required.Error("Bank name is required")),
		validation.Field(&b.AccountHolder, validation.Required.Error("Account holder is required")),
		validation.Field(&b.AccountNumber, validation.Required.Error("Account number is required")),
		validation.Field(&b.IFSCCode, validation.Required.Error("IFSC code is required")),
	)
}

// Validate implements Validatable
func (s SocialLinks) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Facebook, is.URL.Error(msgInvalidURL)),
		validation.Field(&s.Instagram, is.URL.Error(msgInvalidURL)),
		validation.Field(&s.LinkedIn, is.URL.Error(msgInvalidURL)),
		validation.Field(&s.Twitter, is.URL.Error(msgInvalidURL)),
	)
}

// CompanyProfileUpdate is a partial update of the company profile. A nil
// field is left unchanged.
type CompanyProfileUpdate struct {
	Name                  *string        `json:"name,omitempty"`
	Email                 *string        `json:"email,omitempty"`
	Phone                 *string        `json:"phone,omitempty"`
	Website               *string        `json:"website,omitempty"`
	LogoURL               *string        `json:"logoUrl,omitempty"`
	GSTTINNumber          *string        `json:"gstTinNumber,omitempty"`
	DefaultCurrencyCode   *string        `json:"defaultCurrencyCode,omitempty"`
	HeaderNote            *string        `json:"headerNote,omitempty"`
	FooterNote            *string        `json:"footerNote,omitempty"`
	DefaultTerms          *string        `json:"defaultTerms,omitempty"`
	DefaultInvoiceTerms   *string        `json:"defaultInvoiceTerms,omitempty"`
	DefaultQuotationTerms *string        `json:"defaultQuotationTerms,omitempty"`
	Address               *Address       `json:"address,omitempty"`
	SocialLinks           *SocialLinks   `json:"socialLinks,omitempty"`
	BankAccounts          *[]BankAccount `json:"bankAccounts,omitempty"`
}

// Validate implements Validatable
func (r CompanyProfileUpdate) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(2, 100).Error(msgCompanyNameMin)),
		validation.Field(&r.Email, is.Email.Error(msgInvalidEmail)),
		validation.Field(&r.Phone, validation.By(phoneRule)),
		validation.Field(&r.Website, is.URL.Error(msgInvalidURL)),
		validation.Field(&r.LogoURL, is.URL.Error(msgInvalidURL)),
		validation.Field(&r.DefaultCurrencyCode, validation.Length(3, 3).Error(msgCurrencyLength)),
		validation.Field(&r.SocialLinks),
		validation.Field(&r.BankAccounts),
	)
}

// CustomerInput is the body of POST /customers
type CustomerInput struct {
	Name          string   `json:"name"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Website       string   `json:"website,omitempty"`
	GSTTINNumber  string   `json:"gstTinNumber,omitempty"`
	ContactPerson string   `json:"contactPerson,omitempty"`
	Designation   string   `json:"designation,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	Address       *Address `json:"address,omitempty"`
	IsActive      *bool    `json:"isActive,omitempty"`
}

// Validate implements Validatable
func (r CustomerInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("Customer name is required"),
			validation.Length(0, 200).Error("Customer name must be at most 200 characters"),
		),
		validation.Field(&r.Email, is.Email.Error(msgInvalidEmail)),
		validation.Field(&r.Phone, validation.By(phoneRule)),
		validation.Field(&r.Website, is.URL.Error(msgInvalidURL)),
	)
}

// CustomerUpdate is a partial customer update; nil fields are kept
type CustomerUpdate struct {
	Name          *string  `json:"name,omitempty"`
	Email         *string  `json:"email,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	Website       *string  `json:"website,omitempty"`
	GSTTINNumber  *string  `json:"gstTinNumber,omitempty"`
	ContactPerson *string  `json:"contactPerson,omitempty"`
	Designation   *string  `json:"designation,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	Address       *Address `json:"address,omitempty"`
	IsActive      *bool    `json:"isActive,omitempty"`
}

// Validate implements Validatable
func (r CustomerUpdate) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.NilOrNotEmpty.Error("Customer name is required"),
			validation.Length(0, 200).Error("Customer name must be at most 200 characters"),
		),
		validation.Field(&r.Email, is.Email.Error(msgInvalidEmail)),
		validation.Field(&r.Phone, validation.By(phoneRule)),
		validation.Field(&r.Website, is.URL.Error(msgInvalidURL)),
	)
}

// ProductInput is the body of POST /products
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	SKU         string   `json:"sku,omitempty"`
	UnitPrice   *float64 `json:"unitPrice"`
	TaxRate     *float64 `json:"taxRate,omitempty"`
	Category    string   `json:"category,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// Validate implements Validatable
func (r ProductInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("Product name is required"),
			validation.Length(0, 200).Error("Product name must be at most 200 characters"),
		),
		validation.Field(&r.UnitPrice,
			validation.NotNil.Error("Unit price is required"),
			validation.Min(0.0).Error("Unit price must be 0 or more"),
		),
		validation.Field(&r.TaxRate,
			validation.Min(0.0).Error("Tax rate must be between 0 and 100"),
			validation.Max(100.0).Error("Tax rate must be between 0 and 100"),
		),
	)
}

// ProductUpdate is a partial product update; nil fields are kept
type ProductUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	SKU         *string  `json:"sku,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
	TaxRate     *float64 `json:"taxRate,omitempty"`
	Category    *string  `json:"category,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// Validate implements Validatable
func (r ProductUpdate) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.NilOrNotEmpty.Error("Product name is required"),
			validation.Length(0, 200).Error("Product name must be at most 200 characters"),
		),
		validation.Field(&r.UnitPrice, validation.Min(0.0).Error("Unit price must be 0 or more")),
		validation.Field(&r.TaxRate,
			validation.Min(0.0).Error("Tax rate must be between 0 and 100"),
			validation.Max(100.0).Error("Tax rate must be between 0 and 100"),
		),
	)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
