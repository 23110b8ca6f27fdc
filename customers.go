package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// CustomerService manages the customers of one company at a time. Every
// method takes the companyID resolved from the access token.
type CustomerService struct {
	repo        RepositoryManager
	logger      Logger
	phoneRegion string
}

// NewCustomerService returns a new CustomerService
func NewCustomerService(repo RepositoryManager) *CustomerService {
	return &CustomerService{
		repo:        repo,
		logger:      defLogger{},
		phoneRegion: DefaultPhoneRegion,
	}
}

func (s *CustomerService) WithLogger(logger Logger) *CustomerService {
	s.logger = normalizeLogger(logger)
	return s
}

func (s *CustomerService) WithPhoneRegion(region string) *CustomerService {
	if region != "" {
		s.phoneRegion = region
	}
	return s
}

// List returns the company customers, newest first
func (s *CustomerService) List(ctx context.Context, companyID uuid.UUID) ([]*Customer, error) {
	records, err := s.repo.Customers().List(ctx, companyID)
	if err != nil {
		return nil, internalError(err, "Failed to fetch customers")
	}
	return records, nil
}

func (s *CustomerService) Get(ctx context.Context, companyID, id uuid.UUID) (*Customer, error) {
	record, err := s.repo.Customers().Get(ctx, companyID, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, internalError(err, "Failed to fetch customer")
	}
	return record, nil
}

// Create adds a customer. A non-empty email must be unique in the company.
func (s *CustomerService) Create(ctx context.Context, companyID uuid.UUID, in CustomerInput) (*Customer, error) {
	if err := ValidatePayload(in); err != nil {
		return nil, err
	}

	email := normalizeEmail(in.Email)
	if email != "" {
		if err := s.ensureEmailFree(ctx, companyID, email); err != nil {
			return nil, err
		}
	}

	record := &Customer{
		CompanyID:     companyID,
		Name:          strings.TrimSpace(in.Name),
		Email:         email,
		Phone:         s.phone(in.Phone),
		Website:       in.Website,
		GSTTINNumber:  in.GSTTINNumber,
		ContactPerson: in.ContactPerson,
		Designation:   in.Designation,
		Notes:         in.Notes,
		Address:       in.Address,
		IsActive:      true,
	}
	if in.IsActive != nil {
		record.IsActive = *in.IsActive
	}

	created, err := s.repo.Customers().Create(ctx, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrCustomerEmailTaken
		}
		return nil, internalError(err, "Failed to create customer")
	}
	return created, nil
}

// Update applies the fields present in the payload
func (s *CustomerService) Update(ctx context.Context, companyID, id uuid.UUID, in CustomerUpdate) (*Customer, error) {
	if err := ValidatePayload(in); err != nil {
		return nil, err
	}

	record, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != "" && email != record.Email {
			if err := s.ensureEmailFree(ctx, companyID, email); err != nil {
				return nil, err
			}
		}
		record.Email = email
	}

	setString(&record.Name, in.Name)
	setString(&record.Website, in.Website)
	setString(&record.GSTTINNumber, in.GSTTINNumber)
	setString(&record.ContactPerson, in.ContactPerson)
	setString(&record.Designation, in.Designation)
	setString(&record.Notes, in.Notes)
	if in.Phone != nil {
		record.Phone = s.phone(*in.Phone)
	}
	if in.Address != nil {
		record.Address = in.Address
	}
	if in.IsActive != nil {
		record.IsActive = *in.IsActive
	}

	updated, err := s.repo.Customers().Update(ctx, record)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrCustomerNotFound
		}
		if IsUniqueViolation(err) {
			return nil, ErrCustomerEmailTaken
		}
		return nil, internalError(err, "Failed to update customer")
	}
	return updated, nil
}

func (s *CustomerService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if err := s.repo.Customers().Delete(ctx, companyID, id); err != nil {
		if IsNotFound(err) {
			return ErrCustomerNotFound
		}
		return internalError(err, "Failed to delete customer")
	}
	return nil
}

func (s *CustomerService) ensureEmailFree(ctx context.Context, companyID uuid.UUID, email string) error {
	taken, err := s.repo.Customers().EmailTaken(ctx, companyID, email)
	if err != nil {
		return internalError(err, "Failed to check customer email")
	}
	if taken {
		return ErrCustomerEmailTaken
	}
	return nil
}

func (s *CustomerService) phone(raw string) string {
	normalized, err := NormalizePhone(raw, s.phoneRegion)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return normalized
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
