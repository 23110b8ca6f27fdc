package auth

import (
	"context"

	"github.com/google/uuid"
)

const (
	DefaultPage      = 1
	DefaultPageLimit = 10
)

// CompanyPage is one page of the admin company listing
type CompanyPage struct {
	Data       []CompanyListItem `json:"data"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

// AdminCompanyService lets platform admins review companies and change
// their status and plan.
type AdminCompanyService struct {
	repo         RepositoryManager
	machine      CompanyStateMachine
	logger       Logger
	activitySink ActivitySink
}

// NewAdminCompanyService returns a new AdminCompanyService
func NewAdminCompanyService(repo RepositoryManager) *AdminCompanyService {
	s := &AdminCompanyService{
		repo:         repo,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
	s.machine = s.newMachine()
	return s
}

func (s *AdminCompanyService) WithLogger(logger Logger) *AdminCompanyService {
	s.logger = normalizeLogger(logger)
	s.machine = s.newMachine()
	return s
}

// WithActivitySink configures where status and plan changes are recorded
func (s *AdminCompanyService) WithActivitySink(sink ActivitySink) *AdminCompanyService {
	s.activitySink = normalizeActivitySink(sink)
	s.machine = s.newMachine()
	return s
}

// WithStateMachine replaces the default company lifecycle
func (s *AdminCompanyService) WithStateMachine(machine CompanyStateMachine) *AdminCompanyService {
	if machine != nil {
		s.machine = machine
	}
	return s
}

func (s *AdminCompanyService) newMachine() CompanyStateMachine {
	return NewCompanyStateMachine(s.repo.Companies(),
		WithStateMachineLogger(s.logger),
		WithStateMachineActivitySink(s.activitySink),
	)
}

// List returns companies newest first. Non-positive page or limit fall
// back to the defaults.
func (s *AdminCompanyService) List(ctx context.Context, page, limit int) (*CompanyPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}

	records, total, err := s.repo.Companies().List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, internalError(err, "Failed to fetch companies")
	}

	items := make([]CompanyListItem, 0, len(records))
	for _, c := range records {
		items = append(items, c.ToListItem())
	}

	return &CompanyPage{
		Data:       items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Detail returns a single company
func (s *AdminCompanyService) Detail(ctx context.Context, companyID uuid.UUID) (*CompanyDetail, error) {
	company, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}
	detail := company.ToDetail()
	return &detail, nil
}

// UpdateCompanyStatus moves the company through its lifecycle. Approving
// stamps approvedAt and approvedById; any other status clears them.
func (s *AdminCompanyService) UpdateCompanyStatus(ctx context.Context, companyID uuid.UUID, status CompanyStatus, adminID uuid.UUID, opts ...TransitionOption) (*CompanyListItem, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	company, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}

	actor := ActorRef{ID: adminID.String(), Type: ActorTypePlatformAdmin}
	updated, err := s.machine.Transition(ctx, actor, company, status, opts...)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrCompanyNotFound
		}
		s.logger.Warn("company status update failed", "company_id", companyID.String(), "error", err)
		return nil, internalError(err, "Failed to update company status")
	}

	item := updated.ToListItem()
	return &item, nil
}

// UpdateCompanyPlan changes the subscription plan
func (s *AdminCompanyService) UpdateCompanyPlan(ctx context.Context, companyID uuid.UUID, plan CompanyPlan) (*CompanyListItem, error) {
	company, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if !plan.Valid() {
		return nil, ErrInvalidPlan
	}

	updated, err := s.repo.Companies().UpdatePlan(ctx, companyID, plan)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrCompanyNotFound
		}
		return nil, internalError(err, "Failed to update company plan")
	}

	if company.Plan != plan {
		emitActivity(ctx, s.activitySink, s.logger, ActivityEvent{
			EventType: ActivityEventCompanyPlanChanged,
			CompanyID: companyID.String(),
			Metadata: map[string]any{
				"from": string(company.Plan),
				"to":   string(plan),
			},
		})
	}

	item := updated.ToListItem()
	return &item, nil
}

func (s *AdminCompanyService) find(ctx context.Context, companyID uuid.UUID) (*Company, error) {
	company, err := s.repo.Companies().GetByID(ctx, companyID)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrCompanyNotFound
		}
		return nil, internalError(err, "Failed to fetch company")
	}
	return company, nil
}
