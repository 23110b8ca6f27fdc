package fixtures_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/goliatone/go-tenant-auth/config"
	"github.com/goliatone/go-tenant-auth/database"
	"github.com/goliatone/go-tenant-auth/fixtures"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainHasher struct{}

func (plainHasher) HashPassword(pw string) (string, error) { return "plain:" + pw, nil }
func (plainHasher) VerifyPassword(pw, hash string) bool   { return hash == "plain:"+pw }

func newRepo(t *testing.T) auth.RepositoryManager {
	t.Helper()
	db, err := database.OpenAndMigrate(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return auth.NewRepositoryManager(db)
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	seeder := fixtures.NewSeeder(repo).
		WithPasswordHasher(plainHasher{}).
		WithClock(func() time.Time { return now })

	report, err := seeder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"admin:" + fixtures.AdminEmail,
		"company:" + fixtures.DemoCompanyEmail,
		"company:" + fixtures.PendingCompanyEmail,
	}, report.Created)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, "created=3 skipped=0", report.String())

	admin, err := repo.PlatformAdmins().GetByEmail(ctx, fixtures.AdminEmail)
	require.NoError(t, err)
	assert.Equal(t, fixtures.ID(fixtures.AdminEmail), admin.ID)
	assert.Equal(t, "plain:"+fixtures.AdminPassword, admin.PasswordHash)

	demo, err := repo.Companies().GetByEmail(ctx, fixtures.DemoCompanyEmail)
	require.NoError(t, err)
	assert.Equal(t, auth.CompanyStatusApproved, demo.Status)
	assert.Equal(t, auth.PlanPro, demo.Plan)
	require.NotNil(t, demo.ApprovedByID)
	assert.Equal(t, admin.ID, *demo.ApprovedByID)
	require.NotNil(t, demo.ApprovedAt)
	assert.WithinDuration(t, now, *demo.ApprovedAt, time.Second)

	pending, err := repo.Companies().GetByEmail(ctx, fixtures.PendingCompanyEmail)
	require.NoError(t, err)
	assert.Equal(t, auth.CompanyStatusPending, pending.Status)
	assert.Nil(t, pending.ApprovedAt)
	assert.Nil(t, pending.ApprovedByID)

	seq, err := repo.Sequences().GetByCompany(ctx, demo.ID)
	require.NoError(t, err)
	assert.Equal(t, demo.ID, seq.CompanyID)

	user, err := repo.Users().FindFirstByEmail(ctx, fixtures.DemoUserEmail)
	require.NoError(t, err)
	assert.Equal(t, demo.ID, user.CompanyID)
	assert.True(t, user.EmailVerified)
}

func TestSeeder_RunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	seeder := fixtures.NewSeeder(repo).WithPasswordHasher(plainHasher{})

	_, err := seeder.Run(ctx)
	require.NoError(t, err)

	report, err := seeder.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Created)
	assert.Equal(t, []string{
		"admin:" + fixtures.AdminEmail,
		"company:" + fixtures.DemoCompanyEmail,
		"user:" + fixtures.DemoUserEmail,
		"company:" + fixtures.PendingCompanyEmail,
		"user:" + fixtures.PendingUserEmail,
	}, report.Skipped)

	page, err := auth.NewAdminCompanyService(repo).WithLogger(auth.NoopLogger{}).List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestSeeder_RestoresMissingCompanyUser(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := fixtures.NewSeeder(repo).WithPasswordHasher(plainHasher{}).Run(ctx)
	require.NoError(t, err)

	companies := fixtures.DefaultCompanies()[:1]
	companies[0].UserEmail = "second@democompany.com"

	report, err := fixtures.NewSeeder(repo).
		WithPasswordHasher(plainHasher{}).
		WithFixtures(fixtures.DefaultAdmins(), companies).
		Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"user:second@democompany.com"}, report.Created)

	demo, err := repo.Companies().GetByEmail(ctx, fixtures.DemoCompanyEmail)
	require.NoError(t, err)

	user, err := repo.Users().FindFirstByEmail(ctx, "second@democompany.com")
	require.NoError(t, err)
	assert.Equal(t, demo.ID, user.CompanyID)

	taken, err := repo.Users().EmailTakenInCompany(ctx, demo.ID, fixtures.DemoUserEmail)
	require.NoError(t, err)
	assert.True(t, taken)

	pending, err := repo.Companies().GetByEmail(ctx, fixtures.PendingCompanyEmail)
	require.NoError(t, err)
	taken, err = repo.Users().EmailTakenInCompany(ctx, pending.ID, fixtures.DemoUserEmail)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestSeeder_SeededUsersCanLogIn(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	_, err := fixtures.NewSeeder(repo).WithPasswordHasher(plainHasher{}).Run(ctx)
	require.NoError(t, err)

	tokens := auth.NewTokenService([]byte("access"), []byte("refresh"), auth.WithTokenLogger(auth.NoopLogger{}))
	svc := auth.NewAuthService(repo, tokens).
		WithLogger(auth.NoopLogger{}).
		WithPasswordHasher(plainHasher{})

	session, err := svc.Login(ctx, auth.LoginRequest{Email: fixtures.DemoUserEmail, Password: fixtures.DemoUserPassword})
	require.NoError(t, err)
	assert.Equal(t, fixtures.DemoCompanyName, session.Company.Name)

	_, err = svc.Login(ctx, auth.LoginRequest{Email: fixtures.PendingUserEmail, Password: fixtures.PendingUserPassword})
	assert.ErrorIs(t, err, auth.ErrCompanyNotApproved)
}

func TestID(t *testing.T) {
	assert.Equal(t, fixtures.ID("a@b.test"), fixtures.ID("a@b.test"))
	assert.NotEqual(t, fixtures.ID("a@b.test"), fixtures.ID("c@d.test"))
	assert.NotEqual(t, uuid.Nil, fixtures.ID("a@b.test"))
}
