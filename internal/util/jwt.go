package util

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/naimur978/Expense-Tracker/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType separates access, refresh and OAuth state tokens signed with the same key.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
	TokenState   TokenType = "state"
)

const stateTTL = 10 * time.Minute

// Claims is the JWT payload.
type Claims struct {
	UserID    uint      `json:"user_id,omitempty"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is returned on login and registration.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService signs and parses HS256 tokens. It holds no state besides the
// key, so a single instance is shared by all requests.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret, issuer string, accessTTL, refreshTTL time.Duration, opts ...TokenOption) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 5 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	s := &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a new access/refresh pair for user.
func (s *TokenService) Issue(user *models.User) (TokenPair, error) {
	access, err := s.sign(user.ID, TokenAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(user.ID, TokenRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token and mints a new access token for its user.
// It fails with ErrExpiredToken past expiry and ErrInvalidToken otherwise.
func (s *TokenService) Refresh(refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken, TokenRefresh)
	if err != nil {
		return "", err
	}
	return s.sign(claims.UserID, TokenAccess, s.accessTTL)
}

// ParseAccess fully verifies an access token.
func (s *TokenService) ParseAccess(token string) (*Claims, error) {
	return s.parse(token, TokenAccess)
}

// Verify only checks that header carries a Bearer credential; the token
// itself is not validated.
func (s *TokenService) Verify(header string) bool {
	_, ok := BearerToken(header)
	return ok
}

// IssueState signs a short-lived OAuth state value.
func (s *TokenService) IssueState() (string, error) {
	return s.sign(0, TokenState, stateTTL)
}

// CheckState validates a state value produced by IssueState.
func (s *TokenService) CheckState(state string) error {
	_, err := s.parse(state, TokenState)
	return err
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func (s *TokenService) sign(userID uint, typ TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:    userID,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (s *TokenService) parse(tokenStr string, want TokenType) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken.Wrap(err)
		}
		return nil, ErrInvalidToken.Wrap(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken.Wrap(jwt.ErrTokenInvalidClaims)
	}
	if claims.TokenType != want {
		return nil, ErrInvalidToken.Wrap(fmt.Errorf("token type %q, want %q", claims.TokenType, want))
	}
	return claims, nil
}
