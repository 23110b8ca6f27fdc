package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

const (
	DefaultAccessTokenTTL  = 7 * 24 * time.Hour
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// TokenIssuer is the token contract used by services and middleware
type TokenIssuer interface {
	IssueAccess(claims AccessClaims) (string, error)
	IssueRefresh(claims RefreshClaims) (string, error)
	VerifyAccess(token string) *AccessClaims
	VerifyRefresh(token string) *RefreshClaims
}

// TokenService signs and verifies access and refresh tokens using two
// distinct HMAC secrets.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
	logger        Logger
}

var _ TokenIssuer = (*TokenService)(nil)

// TokenOption customizes a TokenService
type TokenOption func(*TokenService)

// WithAccessTTL overrides the access token lifetime
func WithAccessTTL(ttl time.Duration) TokenOption {
	return func(ts *TokenService) {
		if ttl > 0 {
			ts.accessTTL = ttl
		}
	}
}

// WithRefreshTTL overrides the refresh token lifetime
func WithRefreshTTL(ttl time.Duration) TokenOption {
	return func(ts *TokenService) {
		if ttl > 0 {
			ts.refreshTTL = ttl
		}
	}
}

// WithIssuer sets the iss claim and requires it on verification
func WithIssuer(issuer string) TokenOption {
	return func(ts *TokenService) {
		ts.issuer = issuer
	}
}

// WithTokenClock injects the clock used for iat, exp and verification
func WithTokenClock(now func() time.Time) TokenOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithTokenLogger sets the logger
func WithTokenLogger(logger Logger) TokenOption {
	return func(ts *TokenService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(accessSecret, refreshSecret []byte, opts ...TokenOption) *TokenService {
	ts := &TokenService{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     DefaultAccessTokenTTL,
		refreshTTL:    DefaultRefreshTokenTTL,
		now:           time.Now,
		logger:        defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}
	return ts
}

// AccessTTL returns the configured access token lifetime
func (ts *TokenService) AccessTTL() time.Duration { return ts.accessTTL }

// RefreshTTL returns the configured refresh token lifetime
func (ts *TokenService) RefreshTTL() time.Duration { return ts.refreshTTL }

// IssueAccess signs claims with the access secret. Registered claims on the
// input are replaced.
func (ts *TokenService) IssueAccess(claims AccessClaims) (string, error) {
	claims.RegisteredClaims = ts.registered(ts.accessTTL)
	return ts.sign(&claims, ts.accessSecret)
}

// IssueRefresh signs claims with the refresh secret
func (ts *TokenService) IssueRefresh(claims RefreshClaims) (string, error) {
	claims.RegisteredClaims = ts.registered(ts.refreshTTL)
	return ts.sign(&claims, ts.refreshSecret)
}

// VerifyAccess returns nil on any failure: expired, malformed, wrong
// signature or wrong algorithm. A token is expired once now >= exp.
func (ts *TokenService) VerifyAccess(token string) *AccessClaims {
	claims := &AccessClaims{}
	if err := ts.parse(token, claims, ts.accessSecret); err != nil {
		ts.logger.Debug("access token rejected", "error", err)
		return nil
	}
	if claims.UserID == "" || !claims.UserType.Valid() {
		ts.logger.Debug("access token rejected", "error", "missing identity claims")
		return nil
	}
	return claims
}

// VerifyRefresh mirrors VerifyAccess using the refresh secret
func (ts *TokenService) VerifyRefresh(token string) *RefreshClaims {
	claims := &RefreshClaims{}
	if err := ts.parse(token, claims, ts.refreshSecret); err != nil {
		ts.logger.Debug("refresh token rejected", "error", err)
		return nil
	}
	if claims.UserID == "" || !claims.UserType.Valid() {
		ts.logger.Debug("refresh token rejected", "error", "missing identity claims")
		return nil
	}
	return claims
}

func (ts *TokenService) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := ts.now()
	return jwt.RegisteredClaims{
		Issuer:    ts.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (ts *TokenService) sign(claims jwt.Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", goerrors.New("token secret is not configured", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT").
			WithCode(http.StatusInternalServerError)
	}

	return signed, nil
}

func (ts *TokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	if token == "" {
		return jwt.ErrTokenMalformed
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		opts = append(opts, jwt.WithIssuer(ts.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return err
	}

	if !parsed.Valid {
		return jwt.ErrTokenUnverifiable
	}

	return nil
}

// ExtractBearer parses an Authorization header value of the exact form
// "Bearer <token>". Any other shape yields ok=false.
func ExtractBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
