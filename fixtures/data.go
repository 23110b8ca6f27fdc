package fixtures

import auth "github.com/goliatone/go-tenant-auth"

const (
	AdminEmail    = "admin@techverin.com"
	AdminPassword = "admin123"

	DemoCompanyEmail = "demo@company.com"
	DemoUserEmail    = "user@democompany.com"
	DemoUserPassword = "Demo123!"

	PendingCompanyEmail = "pending@company.com"
	PendingUserEmail    = "user@pendingcompany.com"
	PendingUserPassword = "Pending123!"
)

// DefaultAdmins is the platform admin used to approve the demo company
func DefaultAdmins() []AdminFixture {
	return []AdminFixture{
		{
			Name:     "Admin User",
			Email:    AdminEmail,
			Password: AdminPassword,
			Role:     auth.AdminRoleSuperAdmin,
		},
	}
}

// DefaultCompanies is one approved pro company and one pending starter
func DefaultCompanies() []CompanyFixture {
	return []CompanyFixture{
		{
			Company: auth.Company{
				Name:                DemoCompanyName,
				Email:               DemoCompanyEmail,
				Phone:               "+1234567890",
				Website:             "https://democompany.com",
				GSTTINNumber:        "GST123456789",
				DefaultCurrencyCode: "USD",
				HeaderNote:          "Thank you for your business",
				FooterNote:          "Payment Terms: Net 30",
				DefaultTerms:        "Payment due within 30 days",
				Status:              auth.CompanyStatusApproved,
				Plan:                auth.PlanPro,
			},
			UserName:     "Demo User (Pro)",
			UserEmail:    DemoUserEmail,
			UserPassword: DemoUserPassword,
			UserVerified: true,
			ApprovedBy:   AdminEmail,
		},
		{
			Company: auth.Company{
				Name:                PendingCompanyName,
				Email:               PendingCompanyEmail,
				Phone:               "+9876543210",
				Website:             "https://pendingcompany.com",
				GSTTINNumber:        "GST987654321",
				DefaultCurrencyCode: "USD",
				HeaderNote:          "Waiting for approval",
				FooterNote:          "This is a pending company",
				Status:              auth.CompanyStatusPending,
				Plan:                auth.PlanStarter,
			},
			UserName:     "Pending User (Starter)",
			UserEmail:    PendingUserEmail,
			UserPassword: PendingUserPassword,
		},
	}
}

const (
	DemoCompanyName    = "Demo Pro Company"
	PendingCompanyName = "Pending Starter Company"
)
