package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// AdminSession is the login response for platform admins
type AdminSession struct {
	User         AdminProfile `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// PlatformAdminService handles platform admin login and management
type PlatformAdminService struct {
	repo         RepositoryManager
	tokens       TokenIssuer
	hasher       PasswordHasher
	throttle     LoginThrottle
	logger       Logger
	activitySink ActivitySink
}

// NewPlatformAdminService returns a new PlatformAdminService
func NewPlatformAdminService(repo RepositoryManager, tokens TokenIssuer) *PlatformAdminService {
	return &PlatformAdminService{
		repo:         repo,
		tokens:       tokens,
		hasher:       BcryptHasher{},
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *PlatformAdminService) WithLogger(logger Logger) *PlatformAdminService {
	s.logger = normalizeLogger(logger)
	return s
}

func (s *PlatformAdminService) WithPasswordHasher(hasher PasswordHasher) *PlatformAdminService {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

func (s *PlatformAdminService) WithLoginThrottle(throttle LoginThrottle) *PlatformAdminService {
	s.throttle = throttle
	return s
}

func (s *PlatformAdminService) WithActivitySink(sink ActivitySink) *PlatformAdminService {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// Authenticate checks admin credentials. Only isActive is gated.
func (s *PlatformAdminService) Authenticate(ctx context.Context, email, password string) (*AdminProfile, error) {
	email = normalizeEmail(email)
	key := throttleKey(UserTypePlatformAdmin, email)

	if err := checkThrottle(ctx, s.throttle, s.logger, key); err != nil {
		s.emit(ctx, ActivityEventAdminLoginFailure, ActorRef{Type: "unknown"}, map[string]any{
			"identifier": email,
			"error":      err.Error(),
		})
		return nil, err
	}

	admin, err := s.repo.PlatformAdmins().GetByEmail(ctx, email)
	if err != nil {
		if !IsNotFound(err) {
			s.logger.Error("Admin login lookup error", "error", err)
			return nil, internalError(err, "Authentication failed")
		}
		s.hasher.VerifyPassword(password, decoyHash())
		s.failed(ctx, key, email, ActorRef{Type: "unknown"}, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	actor := ActorRef{ID: admin.ID.String(), Type: ActorTypePlatformAdmin}

	if !s.hasher.VerifyPassword(password, admin.PasswordHash) {
		s.failed(ctx, key, email, actor, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if !admin.IsActive {
		s.failed(ctx, "", email, actor, ErrAdminDeactivated)
		return nil, ErrAdminDeactivated
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, key); err != nil {
			s.logger.Warn("login throttle reset failed", "error", err)
		}
	}

	s.emit(ctx, ActivityEventAdminLoginSuccess, actor, map[string]any{
		"identifier": email,
	})

	profile := admin.ToProfile()
	return &profile, nil
}

// GetByID returns nil without error when the admin does not exist
func (s *PlatformAdminService) GetByID(ctx context.Context, id uuid.UUID) (*AdminProfile, error) {
	admin, err := s.repo.PlatformAdmins().GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, internalError(err, "Failed to retrieve admin")
	}
	profile := admin.ToProfile()
	return &profile, nil
}

// Create adds an active platform admin. Role defaults to super_admin.
func (s *PlatformAdminService) Create(ctx context.Context, name, email, password string, role AdminRole) (*AdminProfile, error) {
	email = normalizeEmail(email)
	if role == "" {
		role = AdminRoleSuperAdmin
	}
	if !role.Valid() {
		return nil, derive(ErrValidation, ErrValidation.Message, map[string]any{
			"details": []FieldError{{Field: "role", Message: "Role must be one of: super_admin, support"}},
		})
	}

	if _, err := s.repo.PlatformAdmins().GetByEmail(ctx, email); err == nil {
		return nil, ErrAdminEmailTaken
	} else if !IsNotFound(err) {
		return nil, internalError(err, "Failed to create admin")
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin, err := s.repo.PlatformAdmins().Create(ctx, &PlatformAdmin{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrAdminEmailTaken
		}
		return nil, internalError(err, "Failed to create admin")
	}

	profile := admin.ToProfile()
	return &profile, nil
}

// Login authenticates and issues a token pair
func (s *PlatformAdminService) Login(ctx context.Context, req LoginRequest) (*AdminSession, error) {
	if err := ValidatePayload(req); err != nil {
		return nil, err
	}

	profile, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := s.issue(*profile)
	if err != nil {
		return nil, err
	}

	return &AdminSession{
		User:         *profile,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh verifies a platform admin refresh token and issues a new pair
func (s *PlatformAdminService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrRefreshTokenRequired
	}

	claims := s.tokens.VerifyRefresh(refreshToken)
	if claims == nil || claims.UserType != UserTypePlatformAdmin {
		return nil, ErrInvalidRefreshToken
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	profile, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrAdminNotFound
	}

	return s.issue(*profile)
}

func (s *PlatformAdminService) issue(profile AdminProfile) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(AccessClaimsForAdmin(profile))
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.IssueRefresh(RefreshClaims{
		UserID:   profile.ID.String(),
		UserType: UserTypePlatformAdmin,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *PlatformAdminService) failed(ctx context.Context, key, email string, actor ActorRef, cause error) {
	if key != "" && s.throttle != nil {
		if err := s.throttle.Failure(ctx, key); err != nil {
			s.logger.Warn("login throttle failure count error", "error", err)
		}
	}
	s.emit(ctx, ActivityEventAdminLoginFailure, actor, map[string]any{
		"identifier": email,
		"error":      cause.Error(),
	})
}

func (s *PlatformAdminService) emit(ctx context.Context, eventType ActivityEventType, actor ActorRef, metadata map[string]any) {
	emitActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    actor.ID,
		Metadata:  metadata,
	})
}
