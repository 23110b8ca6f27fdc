// Package fixtures seeds a platform admin and two demo companies. Ids are
// derived from emails so running the seed twice is a no-op.
package fixtures

import (
	"context"
	"fmt"
	"time"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AdminFixture is a platform admin to create
type AdminFixture struct {
	Name     string
	Email    string
	Password string
	Role     auth.AdminRole
}

// CompanyFixture is a company with its first user
type CompanyFixture struct {
	Company      auth.Company
	UserName     string
	UserEmail    string
	UserPassword string
	UserVerified bool
	// ApprovedBy names the admin fixture stamped as approver when the
	// company status is approved.
	ApprovedBy string
}

// Report lists what a run created and what already existed
type Report struct {
	Created []string
	Skipped []string
}

func (r *Report) String() string {
	return fmt.Sprintf("created=%d skipped=%d", len(r.Created), len(r.Skipped))
}

// Seeder writes fixtures straight through the stores, without payload
// validation.
type Seeder struct {
	repo      auth.RepositoryManager
	hasher    auth.PasswordHasher
	logger    auth.Logger
	now       func() time.Time
	admins    []AdminFixture
	companies []CompanyFixture
}

// NewSeeder returns a seeder loaded with the default fixtures
func NewSeeder(repo auth.RepositoryManager) *Seeder {
	return &Seeder{
		repo:      repo,
		hasher:    auth.BcryptHasher{},
		logger:    auth.NoopLogger{},
		now:       func() time.Time { return time.Now().UTC() },
		admins:    DefaultAdmins(),
		companies: DefaultCompanies(),
	}
}

func (s *Seeder) WithLogger(logger auth.Logger) *Seeder {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Seeder) WithPasswordHasher(hasher auth.PasswordHasher) *Seeder {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithClock injects a custom clock (useful for tests)
func (s *Seeder) WithClock(now func() time.Time) *Seeder {
	if now != nil {
		s.now = now
	}
	return s
}

// WithFixtures replaces the default data set
func (s *Seeder) WithFixtures(admins []AdminFixture, companies []CompanyFixture) *Seeder {
	s.admins = admins
	s.companies = companies
	return s
}

// ID returns the stable id seeded for email
func ID(email string) uuid.UUID {
	id, err := hashid.NewUUID(email)
	if err != nil {
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(email))
	}
	return id
}

// Run creates every missing fixture
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	adminIDs := map[string]uuid.UUID{}

	for _, fx := range s.admins {
		id, err := s.seedAdmin(ctx, fx, report)
		if err != nil {
			return report, err
		}
		adminIDs[fx.Email] = id
	}

	for _, fx := range s.companies {
		if err := s.seedCompany(ctx, fx, adminIDs, report); err != nil {
			return report, err
		}
	}

	s.logger.Info("seed finished", "created", len(report.Created), "skipped", len(report.Skipped))
	return report, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, fx AdminFixture, report *Report) (uuid.UUID, error) {
	existing, err := s.repo.PlatformAdmins().GetByEmail(ctx, fx.Email)
	if err == nil {
		report.Skipped = append(report.Skipped, "admin:"+fx.Email)
		return existing.ID, nil
	}
	if !auth.IsNotFound(err) {
		return uuid.Nil, fmt.Errorf("lookup admin %s: %w", fx.Email, err)
	}

	hash, err := s.hasher.HashPassword(fx.Password)
	if err != nil {
		return uuid.Nil, err
	}

	role := fx.Role
	if role == "" {
		role = auth.AdminRoleSuperAdmin
	}

	created, err := s.repo.PlatformAdmins().Create(ctx, &auth.PlatformAdmin{
		ID:           ID(fx.Email),
		Name:         fx.Name,
		Email:        fx.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create admin %s: %w", fx.Email, err)
	}

	s.logger.Info("seeded platform admin", "email", fx.Email)
	report.Created = append(report.Created, "admin:"+fx.Email)
	return created.ID, nil
}

func (s *Seeder) seedCompany(ctx context.Context, fx CompanyFixture, adminIDs map[string]uuid.UUID, report *Report) error {
	email := fx.Company.Email
	existing, err := s.repo.Companies().GetByEmail(ctx, email)
	if err == nil {
		report.Skipped = append(report.Skipped, "company:"+email)
		return s.restoreCompanyUser(ctx, existing.ID, fx, report)
	}
	if !auth.IsNotFound(err) {
		return fmt.Errorf("lookup company %s: %w", email, err)
	}

	now := s.now()
	company := fx.Company
	company.ID = ID(email)
	if company.Status == auth.CompanyStatusApproved {
		company.ApprovedAt = &now
		if adminID, ok := adminIDs[fx.ApprovedBy]; ok {
			company.ApprovedByID = &adminID
		}
	}

	user, err := s.companyUser(company.ID, fx)
	if err != nil {
		return err
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.Companies().CreateTx(ctx, tx, &company); err != nil {
			return fmt.Errorf("create company %s: %w", email, err)
		}
		if _, err := s.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return fmt.Errorf("create user %s: %w", fx.UserEmail, err)
		}
		if _, err := s.repo.Sequences().CreateTx(ctx, tx, auth.NewSequence(company.ID, now)); err != nil {
			return fmt.Errorf("create sequence for %s: %w", email, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("seeded company", "email", email, "status", string(company.Status))
	report.Created = append(report.Created, "company:"+email)
	return nil
}

// restoreCompanyUser recreates the fixture user of a company that was
// seeded before but lost it.
func (s *Seeder) restoreCompanyUser(ctx context.Context, companyID uuid.UUID, fx CompanyFixture, report *Report) error {
	taken, err := s.repo.Users().EmailTakenInCompany(ctx, companyID, fx.UserEmail)
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", fx.UserEmail, err)
	}
	if taken {
		report.Skipped = append(report.Skipped, "user:"+fx.UserEmail)
		return nil
	}

	user, err := s.companyUser(companyID, fx)
	if err != nil {
		return err
	}
	if _, err := s.repo.Users().Create(ctx, user); err != nil {
		return fmt.Errorf("create user %s: %w", fx.UserEmail, err)
	}

	s.logger.Info("restored company user", "email", fx.UserEmail)
	report.Created = append(report.Created, "user:"+fx.UserEmail)
	return nil
}

func (s *Seeder) companyUser(companyID uuid.UUID, fx CompanyFixture) (*auth.User, error) {
	hash, err := s.hasher.HashPassword(fx.UserPassword)
	if err != nil {
		return nil, err
	}
	return &auth.User{
		ID:            ID(fx.UserEmail),
		CompanyID:     companyID,
		Name:          fx.UserName,
		Email:         fx.UserEmail,
		PasswordHash:  hash,
		Role:          auth.RoleAdmin,
		IsActive:      true,
		EmailVerified: fx.UserVerified,
	}, nil
}
