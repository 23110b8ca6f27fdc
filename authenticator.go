package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenPair is returned by login and refresh
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserSession is the login response for tenant users
type UserSession struct {
	User         UserProfile    `json:"user"`
	Company      CompanySummary `json:"company"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

// AuthService handles tenant registration, login and session refresh
type AuthService struct {
	repo         RepositoryManager
	tokens       TokenIssuer
	hasher       PasswordHasher
	throttle     LoginThrottle
	logger       Logger
	activitySink ActivitySink
	register     *RegisterCompanyHandler
}

// NewAuthService returns a new AuthService
func NewAuthService(repo RepositoryManager, tokens TokenIssuer) *AuthService {
	return &AuthService{
		repo:         repo,
		tokens:       tokens,
		hasher:       BcryptHasher{},
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		register:     NewRegisterCompanyHandler(repo),
	}
}

func (s *AuthService) WithLogger(logger Logger) *AuthService {
	s.logger = normalizeLogger(logger)
	return s
}

// WithPasswordHasher replaces bcrypt, mostly for tests
func (s *AuthService) WithPasswordHasher(hasher PasswordHasher) *AuthService {
	if hasher != nil {
		s.hasher = hasher
		s.register.hasher = hasher
	}
	return s
}

// WithLoginThrottle enables failed login counting
func (s *AuthService) WithLoginThrottle(throttle LoginThrottle) *AuthService {
	s.throttle = throttle
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *AuthService) WithActivitySink(sink ActivitySink) *AuthService {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithPhoneRegion sets the region used to normalize company phone numbers
func (s *AuthService) WithPhoneRegion(region string) *AuthService {
	if region != "" {
		s.register.phoneRegion = region
	}
	return s
}

// RegisterCompany creates a pending starter company, its admin user and a
// numbering sequence atomically.
func (s *AuthService) RegisterCompany(ctx context.Context, req RegisterCompanyRequest) (RegisterCompanyResult, error) {
	if err := ValidatePayload(req); err != nil {
		return RegisterCompanyResult{}, err
	}

	res, err := s.register.Execute(ctx, RegisterCompanyMessage{
		Company: req.Company,
		User:    req.User,
	})
	if err != nil {
		s.logger.Warn("company registration failed", "email", req.Company.Email, "error", err)
		return RegisterCompanyResult{}, err
	}

	s.emitAuthEvent(ctx, ActivityEventCompanyRegistered, ActorRef{
		ID:   res.UserID.String(),
		Type: string(UserTypeCompanyUser),
	}, res.UserID.String(), res.CompanyID.String(), map[string]any{
		"email": req.Company.Email,
	})

	return res, nil
}

// AuthenticateUser checks tenant credentials. Unknown emails and wrong
// passwords share ErrInvalidCredentials.
func (s *AuthService) AuthenticateUser(ctx context.Context, email, password string) (*UserWithCompany, error) {
	email = normalizeEmail(email)
	key := throttleKey(UserTypeCompanyUser, email)

	if err := s.checkThrottle(ctx, key); err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", "", map[string]any{
			"identifier": email,
			"error":      err.Error(),
		})
		return nil, err
	}

	user, err := s.repo.Users().FindFirstByEmail(ctx, email)
	if err != nil {
		if !IsNotFound(err) {
			s.logger.Error("Login find user error", "error", err)
			return nil, internalError(err, "Authentication failed")
		}
		s.hasher.VerifyPassword(password, decoyHash())
		s.loginFailed(ctx, key, email, "", ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.VerifyPassword(password, user.PasswordHash) {
		s.loginFailed(ctx, key, email, user.ID.String(), ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.loginFailed(ctx, "", email, user.ID.String(), ErrUserDeactivated)
		return nil, ErrUserDeactivated
	}

	company := user.Company
	if company == nil {
		if company, err = s.repo.Companies().GetByID(ctx, user.CompanyID); err != nil {
			s.logger.Error("Login company lookup error", "error", err)
			return nil, internalError(err, "Authentication failed")
		}
	}

	if !company.IsApproved() {
		err := CompanyNotApprovedError(company.Status)
		s.logger.Warn("Login blocked due to company status", "status", company.Status)
		s.loginFailed(ctx, "", email, user.ID.String(), err)
		return nil, err
	}

	s.resetThrottle(ctx, key)
	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, actorForUser(user), user.ID.String(), company.ID.String(), map[string]any{
		"identifier": email,
	})

	return &UserWithCompany{
		User:    user.ToProfile(),
		Company: company.ToSummary(),
	}, nil
}

// GetUserWithCompany returns nil without error when the user does not exist
func (s *AuthService) GetUserWithCompany(ctx context.Context, id uuid.UUID) (*UserWithCompany, error) {
	user, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, internalError(err, "Failed to retrieve user")
	}

	company := user.Company
	if company == nil {
		if company, err = s.repo.Companies().GetByID(ctx, user.CompanyID); err != nil {
			return nil, internalError(err, "Failed to retrieve user")
		}
	}

	return &UserWithCompany{
		User:    user.ToProfile(),
		Company: company.ToSummary(),
	}, nil
}

// Login authenticates and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*UserSession, error) {
	if err := ValidatePayload(req); err != nil {
		return nil, err
	}

	uwc, err := s.AuthenticateUser(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := s.issue(uwc)
	if err != nil {
		return nil, err
	}

	return &UserSession{
		User:         uwc.User,
		Company:      uwc.Company,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh verifies a company user refresh token and issues a new pair
// from the current user and company state.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrRefreshTokenRequired
	}

	claims := s.tokens.VerifyRefresh(refreshToken)
	if claims == nil || claims.UserType != UserTypeCompanyUser {
		return nil, ErrInvalidRefreshToken
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	uwc, err := s.GetUserWithCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if uwc == nil {
		return nil, ErrUserNotFound
	}

	return s.issue(uwc)
}

func (s *AuthService) issue(uwc *UserWithCompany) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(AccessClaimsForUser(uwc.User, uwc.Company))
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.IssueRefresh(RefreshClaims{
		UserID:   uwc.User.ID.String(),
		UserType: UserTypeCompanyUser,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) checkThrottle(ctx context.Context, key string) error {
	return checkThrottle(ctx, s.throttle, s.logger, key)
}

func (s *AuthService) resetThrottle(ctx context.Context, key string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, key); err != nil {
		s.logger.Warn("login throttle reset failed", "error", err)
	}
}

// loginFailed counts the attempt when key is set and records the event
func (s *AuthService) loginFailed(ctx context.Context, key, email, userID string, cause error) {
	if key != "" && s.throttle != nil {
		if err := s.throttle.Failure(ctx, key); err != nil {
			s.logger.Warn("login throttle failure count error", "error", err)
		}
	}
	actor := ActorRef{Type: "unknown"}
	if userID != "" {
		actor = ActorRef{ID: userID, Type: string(UserTypeCompanyUser)}
	}
	s.emitAuthEvent(ctx, ActivityEventLoginFailure, actor, userID, "", map[string]any{
		"identifier": email,
		"error":      cause.Error(),
	})
}

func (s *AuthService) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID, companyID string, metadata map[string]any) {
	emitActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		CompanyID: companyID,
		Metadata:  metadata,
	})
}

func actorForUser(user *User) ActorRef {
	return ActorRef{ID: user.ID.String(), Type: string(UserTypeCompanyUser)}
}

func throttleKey(kind UserType, email string) string {
	return string(kind) + ":" + strings.ToLower(email)
}

func checkThrottle(ctx context.Context, throttle LoginThrottle, logger Logger, key string) error {
	if throttle == nil {
		return nil
	}
	allowed, err := throttle.Allow(ctx, key)
	if err != nil {
		// an unavailable counter must not lock everyone out
		logger.Warn("login throttle unavailable", "error", err)
		return nil
	}
	if !allowed {
		return ErrTooManyLoginAttempts
	}
	return nil
}

func emitActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := normalizeActivitySink(sink).Record(ctx, event); err != nil {
		logger.Warn("activity sink error", "event", string(event.EventType), "error", err)
	}
}
