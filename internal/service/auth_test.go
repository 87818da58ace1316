package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/naimur978/Expense-Tracker/internal/logging"
	"github.com/naimur978/Expense-Tracker/internal/models"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type AuthServiceSuite struct {
	suite.Suite
	db    *gorm.DB
	clock *testClock
	svc   *AuthService
	ctx   context.Context
}

func (s *AuthServiceSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.clock = &testClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.svc = NewAuthService(s.db, newTestTokens(s.clock), testBcryptCost, logging.Nop())
	s.ctx = context.Background()
}

func (s *AuthServiceSuite) userCount() int64 {
	var n int64
	require.NoError(s.T(), s.db.Model(&models.User{}).Count(&n).Error)
	return n
}

func (s *AuthServiceSuite) TestRegister_Success() {
	user, tokens, err := s.svc.Register(s.ctx, " testuser ", "test@example.com", "testpass123")
	s.Require().NoError(err)

	s.NotZero(user.ID)
	s.Equal("testuser", user.Username)
	s.Equal("test@example.com", user.Email)
	s.NotEqual("testpass123", user.PasswordHash)

	claims, err := s.svc.Tokens.ParseAccess(tokens.Access)
	s.Require().NoError(err)
	s.Equal(user.ID, claims.UserID)

	access, err := s.svc.Refresh(tokens.Refresh)
	s.Require().NoError(err)
	claims, err = s.svc.Tokens.ParseAccess(access)
	s.Require().NoError(err)
	s.Equal(user.ID, claims.UserID)
}

func (s *AuthServiceSuite) TestRegister_MissingFields() {
	cases := [][3]string{
		{"", "a@example.com", "pw"},
		{"a", "", "pw"},
		{"a", "a@example.com", ""},
		{"   ", "a@example.com", "pw"},
	}
	for _, c := range cases {
		_, _, err := s.svc.Register(s.ctx, c[0], c[1], c[2])
		s.ErrorIs(err, util.ErrMissingField, "%v", c)
	}
	s.Zero(s.userCount())
}

func (s *AuthServiceSuite) TestRegister_Duplicates() {
	_, _, err := s.svc.Register(s.ctx, "alice", "alice@example.com", "pw123456")
	s.Require().NoError(err)

	_, _, err = s.svc.Register(s.ctx, "alice", "new@example.com", "pw123456")
	s.ErrorIs(err, util.ErrDuplicateUsername)

	_, _, err = s.svc.Register(s.ctx, "bob", "alice@example.com", "pw123456")
	s.ErrorIs(err, util.ErrDuplicateEmail)

	s.Equal(int64(1), s.userCount())
}

func (s *AuthServiceSuite) TestRegister_UniquenessRace() {
	// Insert a conflicting row inside the create transaction, after the
	// pre-checks have passed, as a concurrent registration would.
	err := s.db.Callback().Create().Before("gorm:create").Register("test:race", func(tx *gorm.DB) {
		u, ok := tx.Statement.Dest.(*models.User)
		if !ok || u.Username != "racer" {
			return
		}
		now := time.Now()
		_, _ = tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			"racer", "first@example.com", "x", now, now)
	})
	s.Require().NoError(err)

	_, _, err = s.svc.Register(s.ctx, "racer", "second@example.com", "pw123456")
	s.ErrorIs(err, util.ErrUserCreation)

	ae, ok := util.AsAppError(err)
	s.Require().True(ok)
	s.Equal(util.KindDuplicate, ae.Kind)
}

func (s *AuthServiceSuite) TestRegister_PasswordTooLong() {
	_, _, err := s.svc.Register(s.ctx, "alice", "alice@example.com", strings.Repeat("p", 80))
	s.Require().Error(err)

	ae, ok := util.AsAppError(err)
	s.Require().True(ok, "got %v", err)
	s.Equal(util.KindValidation, ae.Kind)
	s.Contains(ae.Fields, "password")
	s.Zero(s.userCount())

	// exactly at the limit is fine
	_, _, err = s.svc.Register(s.ctx, "alice", "alice@example.com", strings.Repeat("p", util.MaxPasswordBytes))
	s.NoError(err)
}

func (s *AuthServiceSuite) TestAuthenticate() {
	registered, _, err := s.svc.Register(s.ctx, "carol", "carol@example.com", "s3cretpass")
	s.Require().NoError(err)

	user, tokens, err := s.svc.Authenticate(s.ctx, "carol", "s3cretpass")
	s.Require().NoError(err)
	s.Equal(registered.ID, user.ID)
	s.NotEmpty(tokens.Access)
	s.NotEmpty(tokens.Refresh)

	_, _, err = s.svc.Authenticate(s.ctx, "carol", "wrong")
	s.ErrorIs(err, util.ErrInvalidCredentials)

	_, _, err = s.svc.Authenticate(s.ctx, "nobody", "s3cretpass")
	s.ErrorIs(err, util.ErrInvalidCredentials)
}

func (s *AuthServiceSuite) TestUserFromAccessToken() {
	registered, tokens, err := s.svc.Register(s.ctx, "dave", "dave@example.com", "pw123456")
	s.Require().NoError(err)

	user, err := s.svc.UserFromAccessToken(s.ctx, tokens.Access)
	s.Require().NoError(err)
	s.Equal(registered.ID, user.ID)

	_, err = s.svc.UserFromAccessToken(s.ctx, tokens.Refresh)
	s.ErrorIs(err, util.ErrInvalidToken)

	s.clock.Advance(6 * time.Minute)
	_, err = s.svc.UserFromAccessToken(s.ctx, tokens.Access)
	s.ErrorIs(err, util.ErrExpiredToken)

	// token for a user that no longer exists
	ghost, err := s.svc.Tokens.Issue(&models.User{ID: 999})
	s.Require().NoError(err)
	_, err = s.svc.UserFromAccessToken(s.ctx, ghost.Access)
	s.ErrorIs(err, util.ErrInvalidToken)
}

func (s *AuthServiceSuite) TestChangePassword() {
	user, _, err := s.svc.Register(s.ctx, "erin", "erin@example.com", "oldpassword")
	s.Require().NoError(err)

	err = s.svc.ChangePassword(s.ctx, user, "not-it", "newpassword")
	s.Require().Error(err)
	ae, _ := util.AsAppError(err)
	s.Equal(util.KindAuth, ae.Kind)

	err = s.svc.ChangePassword(s.ctx, user, "oldpassword", "short")
	ae, _ = util.AsAppError(err)
	s.Require().NotNil(ae)
	s.Equal(util.KindValidation, ae.Kind)
	s.Contains(ae.Fields, "new_password")

	err = s.svc.ChangePassword(s.ctx, user, "oldpassword", strings.Repeat("n", 100))
	ae, _ = util.AsAppError(err)
	s.Require().NotNil(ae)
	s.Equal(util.KindValidation, ae.Kind)
	s.Contains(ae.Fields, "new_password")

	s.Require().NoError(s.svc.ChangePassword(s.ctx, user, "oldpassword", "newpassword"))

	_, _, err = s.svc.Authenticate(s.ctx, "erin", "oldpassword")
	s.ErrorIs(err, util.ErrInvalidCredentials)
	_, _, err = s.svc.Authenticate(s.ctx, "erin", "newpassword")
	s.NoError(err)
}

func (s *AuthServiceSuite) TestFindOrCreateByEmail() {
	existing, _, err := s.svc.Register(s.ctx, "frank", "frank@example.com", "pw123456")
	s.Require().NoError(err)

	got, err := s.svc.FindOrCreateByEmail(s.ctx, "frank@example.com")
	s.Require().NoError(err)
	s.Equal(existing.ID, got.ID)

	// local part collides with an existing username
	created, err := s.svc.FindOrCreateByEmail(s.ctx, "frank@other.org")
	s.Require().NoError(err)
	s.Equal("frank1", created.Username)
	s.Equal("frank@other.org", created.Email)

	// social accounts cannot log in with a password
	_, _, err = s.svc.Authenticate(s.ctx, "frank1", "")
	s.ErrorIs(err, util.ErrInvalidCredentials)

	_, err = s.svc.FindOrCreateByEmail(s.ctx, "")
	s.Error(err)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "jane.doe", usernameFromEmail("jane.doe@example.com"))
	assert.Equal(t, "user", usernameFromEmail("@example.com"))
}
