package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/naimur978/Expense-Tracker/internal/logging"
	"github.com/naimur978/Expense-Tracker/internal/models"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 8

// AuthService owns user credentials and hands out token pairs.
type AuthService struct {
	DB         *gorm.DB
	Tokens     *util.TokenService
	BcryptCost int
	Log        *logging.Logger
}

func NewAuthService(db *gorm.DB, tokens *util.TokenService, bcryptCost int, log *logging.Logger) *AuthService {
	return &AuthService{
		DB:         db,
		Tokens:     tokens,
		BcryptCost: bcryptCost,
		Log:        log.WithComponent("auth"),
	}
}

// Register creates a user and signs a token pair for it.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (_ *models.User, _ util.TokenPair, err error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	defer func() {
		if err != nil {
			s.Log.WarnContext(ctx, "register failed", "username", username, logging.FieldError, err)
		}
	}()

	if username == "" || email == "" || password == "" {
		return nil, util.TokenPair{}, util.ErrMissingField
	}

	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, util.TokenPair{}, fmt.Errorf("count users by username: %w", err)
	}
	if count > 0 {
		return nil, util.TokenPair{}, util.ErrDuplicateUsername
	}

	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, util.TokenPair{}, fmt.Errorf("count users by email: %w", err)
	}
	if count > 0 {
		return nil, util.TokenPair{}, util.ErrDuplicateEmail
	}

	hash, err := s.hashPassword(password, "password")
	if err != nil {
		return nil, util.TokenPair{}, err
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if err := db.Create(user).Error; err != nil {
		// a concurrent registration won the race past the checks above
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.TokenPair{}, util.ErrUserCreation.Wrap(err)
		}
		return nil, util.TokenPair{}, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, util.TokenPair{}, err
	}

	s.Log.InfoContext(ctx, "user registered", logging.FieldUserID, user.ID)
	return user, tokens, nil
}

// Authenticate checks username and password and signs a token pair.
// Every failure, including lookup and signing errors, is reported as
// ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, util.TokenPair, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.Log.ErrorContext(ctx, "query user failed", logging.FieldError, err)
		}
		return nil, util.TokenPair{}, util.ErrInvalidCredentials.Wrap(err)
	}

	if !util.CheckPassword(password, user.PasswordHash) {
		return nil, util.TokenPair{}, util.ErrInvalidCredentials
	}

	tokens, err := s.Tokens.Issue(&user)
	if err != nil {
		s.Log.ErrorContext(ctx, "issue tokens failed", logging.FieldUserID, user.ID, logging.FieldError, err)
		return nil, util.TokenPair{}, util.ErrInvalidCredentials.Wrap(err)
	}
	return &user, tokens, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	return s.Tokens.Refresh(refreshToken)
}

// UserFromAccessToken verifies token and loads its user.
func (s *AuthService) UserFromAccessToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.Tokens.ParseAccess(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidToken.Wrap(err)
		}
		return nil, fmt.Errorf("load user %d: %w", claims.UserID, err)
	}
	return &user, nil
}

// ChangePassword replaces user's password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	if !util.CheckPassword(oldPassword, user.PasswordHash) {
		return &util.AppError{Kind: util.KindAuth, Message: "Old password is incorrect"}
	}
	if utf8.RuneCountInString(newPassword) < minPasswordLen {
		return util.NewValidationError(map[string]string{
			"new_password": fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLen),
		})
	}

	hash, err := s.hashPassword(newPassword, "new_password")
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	user.PasswordHash = hash

	s.Log.InfoContext(ctx, "password changed", logging.FieldUserID, user.ID)
	return nil
}

// FindOrCreateByEmail returns the user with email, creating one with an
// unusable password when none exists. Used by social login.
func (s *AuthService) FindOrCreateByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, util.NewValidationError(map[string]string{"email": "Identity provider returned no email."})
	}
	db := s.DB.WithContext(ctx)

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("query user by email: %w", err)
	}

	username, err := s.freeUsername(ctx, usernameFromEmail(email))
	if err != nil {
		return nil, err
	}

	secret, err := util.RandomString(32)
	if err != nil {
		return nil, err
	}
	hash, err := util.HashPassword(secret, s.BcryptCost)
	if err != nil {
		return nil, err
	}

	user = models.User{Username: username, Email: email, PasswordHash: hash}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrUserCreation.Wrap(err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.Log.InfoContext(ctx, "user created from social login", logging.FieldUserID, user.ID)
	return &user, nil
}

// hashPassword reports a password bcrypt cannot take as a validation error
// on field.
func (s *AuthService) hashPassword(password, field string) (string, error) {
	hash, err := util.HashPassword(password, s.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", util.NewValidationError(map[string]string{
			field: fmt.Sprintf("Ensure this field has no more than %d bytes.", util.MaxPasswordBytes),
		}).Wrap(err)
	}
	return hash, err
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "user"
	}
	return local
}

// freeUsername appends a numeric suffix until base is unused.
func (s *AuthService) freeUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= 100; i++ {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", fmt.Errorf("count users by username: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", util.ErrUserCreation
}
