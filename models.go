package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CompanyStatus is the approval lifecycle state of a company
type CompanyStatus string

const (
	CompanyStatusPending   CompanyStatus = "pending"
	CompanyStatusApproved  CompanyStatus = "approved"
	CompanyStatusRejected  CompanyStatus = "rejected"
	CompanyStatusSuspended CompanyStatus = "suspended"
)

// CompanyStatuses lists every status in display order
var CompanyStatuses = []CompanyStatus{
	CompanyStatusPending,
	CompanyStatusApproved,
	CompanyStatusRejected,
	CompanyStatusSuspended,
}

// Valid reports whether s is a known status
func (s CompanyStatus) Valid() bool {
	for _, st := range CompanyStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// CompanyPlan is the subscription tier
type CompanyPlan string

const (
	PlanStarter CompanyPlan = "starter"
	PlanPro     CompanyPlan = "pro"
)

// CompanyPlans lists every plan
var CompanyPlans = []CompanyPlan{PlanStarter, PlanPro}

// Valid reports whether p is a known plan
func (p CompanyPlan) Valid() bool {
	return p == PlanStarter || p == PlanPro
}

// UserRole is a tenant user's role
type UserRole = string

const (
	// RoleAdmin is the role given to the user that registers a company
	RoleAdmin UserRole = "admin"
	// RoleMember is a regular tenant user
	RoleMember UserRole = "member"
)

// AdminRole is a platform admin's role
type AdminRole string

const (
	AdminRoleSuperAdmin AdminRole = "super_admin"
	AdminRoleSupport    AdminRole = "support"
)

// Valid reports whether r is a known admin role
func (r AdminRole) Valid() bool {
	return r == AdminRoleSuperAdmin || r == AdminRoleSupport
}

// Address is stored as a JSON document
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// SocialLinks is stored as a JSON document
type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
}

// BankAccount is one entry of Company.BankAccounts
type BankAccount struct {
	BankName      string `json:"bankName"`
	AccountHolder string `json:"accountHolder"`
	AccountNumber string `json:"accountNumber"`
	IFSCCode      string `json:"ifscCode"`
	BranchName    string `json:"branchName,omitempty"`
}

// Company is the tenant model
type Company struct {
	bun.BaseModel         `bun:"table:companies,alias:cmp"`
	ID                    uuid.UUID     `bun:"id,pk,type:uuid" json:"id"`
	Name                  string        `bun:"name,notnull" json:"name"`
	Email                 string        `bun:"email,notnull,unique" json:"email"`
	Phone                 string        `bun:"phone,nullzero" json:"phone,omitempty"`
	Website               string        `bun:"website,nullzero" json:"website,omitempty"`
	LogoURL               string        `bun:"logo_url,nullzero" json:"logoUrl,omitempty"`
	GSTTINNumber          string        `bun:"gst_tin_number,nullzero" json:"gstTinNumber,omitempty"`
	DefaultCurrencyCode   string        `bun:"default_currency_code,notnull" json:"defaultCurrencyCode"`
	HeaderNote            string        `bun:"header_note,nullzero" json:"headerNote,omitempty"`
	FooterNote            string        `bun:"footer_note,nullzero" json:"footerNote,omitempty"`
	DefaultTerms          string        `bun:"default_terms,nullzero" json:"defaultTerms,omitempty"`
	DefaultInvoiceTerms   string        `bun:"default_invoice_terms,nullzero" json:"defaultInvoiceTerms,omitempty"`
	DefaultQuotationTerms string        `bun:"default_quotation_terms,nullzero" json:"defaultQuotationTerms,omitempty"`
	Address               *Address      `bun:"address" json:"address,omitempty"`
	SocialLinks           *SocialLinks  `bun:"social_links" json:"socialLinks,omitempty"`
	BankAccounts          []BankAccount `bun:"bank_accounts" json:"bankAccounts,omitempty"`
	Status                CompanyStatus `bun:"status,notnull" json:"status"`
	Plan                  CompanyPlan   `bun:"plan,notnull" json:"plan"`
	ApprovedAt            *time.Time    `bun:"approved_at" json:"approvedAt"`
	ApprovedByID          *uuid.UUID    `bun:"approved_by_id,type:uuid" json:"approvedById"`
	CreatedAt             time.Time     `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt             time.Time     `bun:"updated_at,notnull" json:"updatedAt"`
}

// IsApproved reports whether the company may use tenant resources
func (c *Company) IsApproved() bool {
	return c != nil && c.Status == CompanyStatusApproved
}

// User is a tenant user; email is unique within its company
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	CompanyID     uuid.UUID `bun:"company_id,notnull,type:uuid" json:"companyId"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,notnull" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	Role          UserRole  `bun:"role,notnull" json:"role"`
	IsActive      bool      `bun:"is_active,notnull" json:"isActive"`
	EmailVerified bool      `bun:"email_verified,notnull" json:"emailVerified"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updatedAt"`

	Company *Company `bun:"rel:belongs-to,join:company_id=id" json:"-"`
}

// PlatformAdmin operates the platform; email is globally unique
type PlatformAdmin struct {
	bun.BaseModel `bun:"table:platform_admins,alias:pad"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	Role          AdminRole `bun:"role,notnull" json:"role"`
	IsActive      bool      `bun:"is_active,notnull" json:"isActive"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// Sequence holds document numbering state for a company
type Sequence struct {
	bun.BaseModel       `bun:"table:sequences,alias:seq"`
	ID                  uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	CompanyID           uuid.UUID `bun:"company_id,notnull,unique,type:uuid" json:"companyId"`
	InvoicePrefix       string    `bun:"invoice_prefix,notnull" json:"invoicePrefix"`
	QuotationPrefix     string    `bun:"quotation_prefix,notnull" json:"quotationPrefix"`
	NextInvoiceNumber   int       `bun:"next_invoice_number,notnull" json:"nextInvoiceNumber"`
	NextQuotationNumber int       `bun:"next_quotation_number,notnull" json:"nextQuotationNumber"`
	CreatedAt           time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt           time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

const (
	DefaultInvoicePrefix   = "INV"
	DefaultQuotationPrefix = "QT"
)

// NewSequence returns the numbering defaults for a new company
func NewSequence(companyID uuid.UUID, now time.Time) *Sequence {
	return &Sequence{
		ID:                  uuid.New(),
		CompanyID:           companyID,
		InvoicePrefix:       DefaultInvoicePrefix,
		QuotationPrefix:     DefaultQuotationPrefix,
		NextInvoiceNumber:   1,
		NextQuotationNumber: 1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Customer belongs to a company; email is unique within it when present
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:cus"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	CompanyID     uuid.UUID `bun:"company_id,notnull,type:uuid" json:"companyId"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,nullzero" json:"email,omitempty"`
	Phone         string    `bun:"phone,nullzero" json:"phone,omitempty"`
	Website       string    `bun:"website,nullzero" json:"website,omitempty"`
	GSTTINNumber  string    `bun:"gst_tin_number,nullzero" json:"gstTinNumber,omitempty"`
	ContactPerson string    `bun:"contact_person,nullzero" json:"contactPerson,omitempty"`
	Designation   string    `bun:"designation,nullzero" json:"designation,omitempty"`
	Notes         string    `bun:"notes,nullzero" json:"notes,omitempty"`
	Address       *Address  `bun:"address" json:"address,omitempty"`
	IsActive      bool      `bun:"is_active,notnull" json:"isActive"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// Product belongs to a company; SKU is unique within it when present
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	CompanyID     uuid.UUID `bun:"company_id,notnull,type:uuid" json:"companyId"`
	Name          string    `bun:"name,notnull" json:"name"`
	Description   string    `bun:"description,nullzero" json:"description,omitempty"`
	SKU           string    `bun:"sku,nullzero" json:"sku,omitempty"`
	UnitPrice     float64   `bun:"unit_price,notnull" json:"unitPrice"`
	TaxRate       float64   `bun:"tax_rate,notnull" json:"taxRate"`
	Category      string    `bun:"category,nullzero" json:"category,omitempty"`
	IsActive      bool      `bun:"is_active,notnull" json:"isActive"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// UserProfile is the public projection of a tenant user
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CompanyID uuid.UUID `json:"companyId"`
}

// CompanySummary is the public projection of the company returned with a user
type CompanySummary struct {
	ID     uuid.UUID     `json:"id"`
	Name   string        `json:"name"`
	Status CompanyStatus `json:"status"`
	Plan   CompanyPlan   `json:"plan"`
}

// UserWithCompany pairs the two public projections
type UserWithCompany struct {
	User    UserProfile    `json:"user"`
	Company CompanySummary `json:"company"`
}

// AdminProfile is the public projection of a platform admin
type AdminProfile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  AdminRole `json:"role"`
}

// CompanyListItem is the admin listing projection
type CompanyListItem struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone,omitempty"`
	Status       CompanyStatus `json:"status"`
	Plan         CompanyPlan   `json:"plan"`
	CreatedAt    time.Time     `json:"createdAt"`
	ApprovedAt   *time.Time    `json:"approvedAt"`
	ApprovedByID *uuid.UUID    `json:"approvedById"`
}

// CompanyDetail is the admin detail projection
type CompanyDetail struct {
	CompanyListItem
	Website      string `json:"website,omitempty"`
	GSTTINNumber string `json:"gstTinNumber,omitempty"`
}

// ToProfile projects a user
func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CompanyID: u.CompanyID,
	}
}

// ToSummary projects a company for session payloads
func (c *Company) ToSummary() CompanySummary {
	return CompanySummary{
		ID:     c.ID,
		Name:   c.Name,
		Status: c.Status,
		Plan:   c.Plan,
	}
}

// ToListItem projects a company for admin listings
func (c *Company) ToListItem() CompanyListItem {
	return CompanyListItem{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Status:       c.Status,
		Plan:         c.Plan,
		CreatedAt:    c.CreatedAt,
		ApprovedAt:   c.ApprovedAt,
		ApprovedByID: c.ApprovedByID,
	}
}

// ToDetail projects a company for the admin detail view
func (c *Company) ToDetail() CompanyDetail {
	return CompanyDetail{
		CompanyListItem: c.ToListItem(),
		Website:         c.Website,
		GSTTINNumber:    c.GSTTINNumber,
	}
}

// ToProfile projects a platform admin
func (a *PlatformAdmin) ToProfile() AdminProfile {
	return AdminProfile{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
		Role:  a.Role,
	}
}

// CompanyProfile is the projection a tenant sees and edits
type CompanyProfile struct {
	ID                    uuid.UUID     `json:"id"`
	Name                  string        `json:"name"`
	Email                 string        `json:"email"`
	Phone                 string        `json:"phone,omitempty"`
	Website               string        `json:"website,omitempty"`
	LogoURL               string        `json:"logoUrl,omitempty"`
	GSTTINNumber          string        `json:"gstTinNumber,omitempty"`
	DefaultCurrencyCode   string        `json:"defaultCurrencyCode"`
	HeaderNote            string        `json:"headerNote,omitempty"`
	FooterNote            string        `json:"footerNote,omitempty"`
	DefaultTerms          string        `json:"defaultTerms,omitempty"`
	DefaultInvoiceTerms   string        `json:"defaultInvoiceTerms,omitempty"`
	DefaultQuotationTerms string        `json:"defaultQuotationTerms,omitempty"`
	Address               *Address      `json:"address,omitempty"`
	SocialLinks           *SocialLinks  `json:"socialLinks,omitempty"`
	BankAccounts          []BankAccount `json:"bankAccounts"`
	Status                CompanyStatus `json:"status"`
	Plan                  CompanyPlan   `json:"plan"`
	CreatedAt             time.Time     `json:"createdAt"`
}

// ToProfile projects a company for its own users
func (c *Company) ToProfile() CompanyProfile {
	accounts := c.BankAccounts
	if accounts == nil {
		accounts = []BankAccount{}
	}
	return CompanyProfile{
		ID:                    c.ID,
		Name:                  c.Name,
		Email:                 c.Email,
		Phone:                 c.Phone,
		Website:               c.Website,
		LogoURL:               c.LogoURL,
		GSTTINNumber:          c.GSTTINNumber,
		DefaultCurrencyCode:   c.DefaultCurrencyCode,
		HeaderNote:            c.HeaderNote,
		FooterNote:            c.FooterNote,
		DefaultTerms:          c.DefaultTerms,
		DefaultInvoiceTerms:   c.DefaultInvoiceTerms,
		DefaultQuotationTerms: c.DefaultQuotationTerms,
		Address:               c.Address,
		SocialLinks:           c.SocialLinks,
		BankAccounts:          accounts,
		Status:                c.Status,
		Plan:                  c.Plan,
		CreatedAt:             c.CreatedAt,
	}
}
