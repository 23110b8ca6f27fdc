package auth

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxLogoSize is the largest accepted logo upload
const MaxLogoSize = 5 * 1024 * 1024

// CompanyProfileService lets tenant users read and edit their own company
type CompanyProfileService struct {
	repo        RepositoryManager
	storage     LogoStorage
	logger      Logger
	phoneRegion string
	now         func() time.Time
}

// NewCompanyProfileService returns a new CompanyProfileService
func NewCompanyProfileService(repo RepositoryManager) *CompanyProfileService {
	return &CompanyProfileService{
		repo:        repo,
		logger:      defLogger{},
		phoneRegion: DefaultPhoneRegion,
		now:         time.Now,
	}
}

func (s *CompanyProfileService) WithLogger(logger Logger) *CompanyProfileService {
	s.logger = normalizeLogger(logger)
	return s
}

// WithLogoStorage sets where uploaded logos are written
func (s *CompanyProfileService) WithLogoStorage(storage LogoStorage) *CompanyProfileService {
	s.storage = storage
	return s
}

func (s *CompanyProfileService) WithPhoneRegion(region string) *CompanyProfileService {
	if region != "" {
		s.phoneRegion = region
	}
	return s
}

// WithClock injects a custom clock (useful for tests)
func (s *CompanyProfileService) WithClock(clock func() time.Time) *CompanyProfileService {
	if clock != nil {
		s.now = clock
	}
	return s
}

func (s *CompanyProfileService) Get(ctx context.Context, companyID uuid.UUID) (*CompanyProfile, error) {
	company, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}
	profile := company.ToProfile()
	return &profile, nil
}

// Update applies a partial profile update. Simple strings are only
// applied when non-empty, logoUrl and the note fields whenever present.
func (s *CompanyProfileService) Update(ctx context.Context, companyID uuid.UUID, in CompanyProfileUpdate) (*CompanyProfile, error) {
	if err := ValidatePayload(in); err != nil {
		return nil, err
	}

	company, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var columns []string
	set := func(column string, dst *string, value string) {
		*dst = value
		columns = append(columns, column)
	}

	if v := nonEmpty(in.Name); v != "" {
		set("name", &company.Name, v)
	}
	if v := nonEmpty(in.Email); v != "" && v != company.Email {
		taken, err := s.repo.Companies().EmailTaken(ctx, v, companyID)
		if err != nil {
			return nil, internalError(err, "Failed to check company email")
		}
		if taken {
			return nil, ErrCompanyEmailTaken
		}
		set("email", &company.Email, v)
	}
	if v := nonEmpty(in.Phone); v != "" {
		phone, err := NormalizePhone(v, s.phoneRegion)
		if err != nil {
			phone = v
		}
		set("phone", &company.Phone, phone)
	}
	if v := nonEmpty(in.Website); v != "" {
		set("website", &company.Website, v)
	}
	if v := nonEmpty(in.GSTTINNumber); v != "" {
		set("gst_tin_number", &company.GSTTINNumber, v)
	}
	if v := nonEmpty(in.DefaultCurrencyCode); v != "" {
		set("default_currency_code", &company.DefaultCurrencyCode, v)
	}
	if in.LogoURL != nil {
		set("logo_url", &company.LogoURL, strings.TrimSpace(*in.LogoURL))
	}
	if in.HeaderNote != nil {
		set("header_note", &company.HeaderNote, *in.HeaderNote)
	}
	if in.FooterNote != nil {
		set("footer_note", &company.FooterNote, *in.FooterNote)
	}
	if in.DefaultTerms != nil {
		set("default_terms", &company.DefaultTerms, *in.DefaultTerms)
	}
	if in.DefaultInvoiceTerms != nil {
		set("default_invoice_terms", &company.DefaultInvoiceTerms, *in.DefaultInvoiceTerms)
	}
	if in.DefaultQuotationTerms != nil {
		set("default_quotation_terms", &company.DefaultQuotationTerms, *in.DefaultQuotationTerms)
	}
	if in.Address != nil {
		company.Address = in.Address
		columns = append(columns, "address")
	}
	if in.SocialLinks != nil {
		company.SocialLinks = in.SocialLinks
		columns = append(columns, "social_links")
	}
	if in.BankAccounts != nil {
		company.BankAccounts = *in.BankAccounts
		columns = append(columns, "bank_accounts")
	}

	updated, err := s.repo.Companies().UpdateColumns(ctx, company, columns...)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrCompanyNotFound
		}
		if IsUniqueViolation(err) {
			return nil, ErrCompanyEmailTaken
		}
		return nil, internalError(err, "Failed to update company profile")
	}

	profile := updated.ToProfile()
	return &profile, nil
}

// UploadLogo stores an image and points the company logo at it
func (s *CompanyProfileService) UploadLogo(ctx context.Context, companyID uuid.UUID, filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoFileProvided
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrLogoNotImage
	}
	if len(data) > MaxLogoSize {
		return "", ErrLogoTooLarge
	}

	if _, err := s.find(ctx, companyID); err != nil {
		return "", err
	}

	if s.storage == nil {
		return "", internalError(fmt.Errorf("logo storage is not configured"), "Failed to upload logo")
	}

	key := LogoKey(companyID, s.now(), filename)
	url, err := s.storage.Upload(ctx, key, contentType, data)
	if err != nil {
		s.logger.Error("logo upload failed", "company_id", companyID.String(), "key", key, "error", err)
		return "", internalError(err, "Failed to upload logo")
	}

	if _, err := s.repo.Companies().UpdateColumns(ctx, &Company{ID: companyID, LogoURL: url}, "logo_url"); err != nil {
		return "", internalError(err, "Failed to upload logo")
	}

	return url, nil
}

// LogoKey builds the storage key logos/{companyId}-{unixMillis}-{name}
func LogoKey(companyID uuid.UUID, at time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "logo"
	}
	return fmt.Sprintf("logos/%s-%d-%s", companyID, at.UnixMilli(), name)
}

func (s *CompanyProfileService) find(ctx context.Context, companyID uuid.UUID) (*Company, error) {
	company, err := s.repo.Companies().GetByID(ctx, companyID)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrCompanyNotFound
		}
		return nil, internalError(err, "Failed to fetch company")
	}
	return company, nil
}

func nonEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
