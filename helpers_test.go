package auth_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/goliatone/go-tenant-auth/config"
	"github.com/goliatone/go-tenant-auth/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

const testPassword = "Secret123"

var (
	testAccessSecret  = []byte("access-secret")
	testRefreshSecret = []byte("refresh-secret")
)

// newTestDB opens a private in-memory sqlite database with the
// migrations applied.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	return db
}

func newTestRepo(t *testing.T) auth.RepositoryManager {
	t.Helper()
	return auth.NewRepositoryManager(newTestDB(t))
}

func newTestTokens() *auth.TokenService {
	return auth.NewTokenService(testAccessSecret, testRefreshSecret,
		auth.WithTokenLogger(auth.NoopLogger{}),
	)
}

func newTestAuthService(repo auth.RepositoryManager) *auth.AuthService {
	return auth.NewAuthService(repo, newTestTokens()).
		WithLogger(auth.NoopLogger{}).
		WithPasswordHasher(plainHasher{})
}

// plainHasher keeps tests fast; bcrypt has its own tests
type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	return "plain:" + password, nil
}

func (plainHasher) VerifyPassword(password, hash string) bool {
	return hash == "plain:"+password
}

type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) Types() []auth.ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]auth.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

func registerRequest(companyEmail, userEmail string) auth.RegisterCompanyRequest {
	return auth.RegisterCompanyRequest{
		Company: auth.RegisterCompanyInput{
			Name:                "Acme Traders",
			Email:               companyEmail,
			Phone:               "9876543210",
			DefaultCurrencyCode: "INR",
		},
		User: auth.RegisterUserInput{
			Name:     "Asha Rao",
			Email:    userEmail,
			Password: testPassword,
		},
	}
}

// registerCompany creates a company through the service and returns the
// created ids.
func registerCompany(t *testing.T, svc *auth.AuthService, companyEmail, userEmail string) auth.RegisterCompanyResult {
	t.Helper()
	res, err := svc.RegisterCompany(context.Background(), registerRequest(companyEmail, userEmail))
	require.NoError(t, err)
	return res
}

func setCompanyStatus(t *testing.T, repo auth.RepositoryManager, companyID uuid.UUID, status auth.CompanyStatus) {
	t.Helper()
	record := &auth.Company{ID: companyID, Status: status}
	if status == auth.CompanyStatusApproved {
		now := time.Now().UTC()
		record.ApprovedAt = &now
	}
	_, err := repo.Companies().UpdateStatus(context.Background(), record)
	require.NoError(t, err)
}

func createAdmin(t *testing.T, repo auth.RepositoryManager, email string, active bool) *auth.PlatformAdmin {
	t.Helper()
	hash, _ := plainHasher{}.HashPassword(testPassword)
	admin, err := repo.PlatformAdmins().Create(context.Background(), &auth.PlatformAdmin{
		Name:         "Platform Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         auth.AdminRoleSuperAdmin,
		IsActive:     active,
	})
	require.NoError(t, err)
	return admin
}

func ptr[T any](v T) *T {
	return &v
}

// countingHasher records every comparison
type countingHasher struct {
	plainHasher
	verified int
}

func (h *countingHasher) VerifyPassword(password, hash string) bool {
	h.verified++
	return h.plainHasher.VerifyPassword(password, hash)
}

var errSequenceDown = errors.New("sequence store down")

// brokenSequences fails the last write of a registration
type brokenSequences struct {
	auth.Sequences
}

func (brokenSequences) CreateTx(context.Context, bun.IDB, *auth.Sequence) (*auth.Sequence, error) {
	return nil, errSequenceDown
}

type brokenSequenceRepo struct {
	auth.RepositoryManager
}

func (r brokenSequenceRepo) Sequences() auth.Sequences {
	return brokenSequences{r.RepositoryManager.Sequences()}
}
