package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RegisterCompanyMessage creates a pending company with its first admin user
type RegisterCompanyMessage struct {
	Company RegisterCompanyInput
	User    RegisterUserInput
}

func (e RegisterCompanyMessage) Type() string { return "company.register" }

// Validate implements Validatable
func (e RegisterCompanyMessage) Validate() error {
	return RegisterCompanyRequest{Company: e.Company, User: e.User}.Validate()
}

// RegisterCompanyResult identifies the rows created by a registration
type RegisterCompanyResult struct {
	CompanyID uuid.UUID `json:"companyId"`
	UserID    uuid.UUID `json:"userId"`
}

// RegisterCompanyHandler writes the company, its admin user and its
// numbering sequence in a single transaction.
type RegisterCompanyHandler struct {
	repo        RepositoryManager
	hasher      PasswordHasher
	phoneRegion string
	now         func() time.Time
}

// NewRegisterCompanyHandler returns a handler using bcrypt and the default
// phone region.
func NewRegisterCompanyHandler(repo RepositoryManager) *RegisterCompanyHandler {
	return &RegisterCompanyHandler{
		repo:        repo,
		hasher:      BcryptHasher{},
		phoneRegion: DefaultPhoneRegion,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (h *RegisterCompanyHandler) Execute(ctx context.Context, event RegisterCompanyMessage) (RegisterCompanyResult, error) {
	select {
	case <-ctx.Done():
		return RegisterCompanyResult{}, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during company registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterCompanyHandler) execute(ctx context.Context, event RegisterCompanyMessage) (RegisterCompanyResult, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	companyEmail := normalizeEmail(event.Company.Email)

	taken, err := h.repo.Companies().EmailTaken(ctx, companyEmail, uuid.Nil)
	if err != nil {
		return RegisterCompanyResult{}, internalError(err, "failed to check company email")
	}
	if taken {
		return RegisterCompanyResult{}, ErrCompanyEmailTaken
	}

	phone, err := NormalizePhone(event.Company.Phone, h.phoneRegion)
	if err != nil {
		phone = event.Company.Phone
	}

	hash, err := h.hasher.HashPassword(event.User.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return RegisterCompanyResult{}, goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return RegisterCompanyResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	now := h.now()
	company := &Company{
		Name:                event.Company.Name,
		Email:               companyEmail,
		Phone:               phone,
		GSTTINNumber:        event.Company.GSTTINNumber,
		DefaultCurrencyCode: event.Company.DefaultCurrencyCode,
		Status:              CompanyStatusPending,
		Plan:                PlanStarter,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	user := &User{
		Name:          event.User.Name,
		Email:         normalizeEmail(event.User.Email),
		PasswordHash:  hash,
		Role:          RoleAdmin,
		IsActive:      true,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := h.repo.Companies().CreateTx(ctx, tx, company)
		if err != nil {
			if IsUniqueViolation(err) {
				return ErrCompanyEmailTaken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create company")
		}

		user.CompanyID = created.ID
		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
		}

		if _, err := h.repo.Sequences().CreateTx(ctx, tx, NewSequence(created.ID, now)); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create sequence")
		}

		company = created
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return RegisterCompanyResult{}, richErr
		}

		return RegisterCompanyResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "company registration transaction failed")
	}

	return RegisterCompanyResult{
		CompanyID: company.ID,
		UserID:    user.ID,
	}, nil
}
