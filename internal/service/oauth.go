package service

import (
	"context"
	"fmt"

	"github.com/naimur978/Expense-Tracker/internal/config"
	"github.com/naimur978/Expense-Tracker/internal/logging"
	"github.com/naimur978/Expense-Tracker/internal/models"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Identity is what the provider tells us about the signed-in account.
type Identity struct {
	Email         string
	EmailVerified bool
}

// IdentityFetcher resolves the account behind an OAuth2 token.
type IdentityFetcher func(ctx context.Context, ts oauth2.TokenSource) (Identity, error)

var errGoogleLogin = &util.AppError{Kind: util.KindAuth, Message: "Google login failed"}

// GoogleLogin implements the authorization-code flow against Google and maps
// the Google account to a local user by email.
type GoogleLogin struct {
	OAuth    *oauth2.Config
	Auth     *AuthService
	Identify IdentityFetcher
	Log      *logging.Logger
}

// NewGoogleLogin returns nil when cfg has no client id.
func NewGoogleLogin(cfg config.GoogleConfig, auth *AuthService, log *logging.Logger) *GoogleLogin {
	if cfg.ClientID == "" {
		return nil
	}
	return &GoogleLogin{
		OAuth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				googleoauth2.OpenIDScope,
				googleoauth2.UserinfoEmailScope,
				googleoauth2.UserinfoProfileScope,
			},
		},
		Auth:     auth,
		Identify: GoogleUserinfo,
		Log:      log.WithComponent("oauth"),
	}
}

// GoogleUserinfo queries the Google userinfo endpoint.
func GoogleUserinfo(ctx context.Context, ts oauth2.TokenSource) (Identity, error) {
	svc, err := googleoauth2.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return Identity{}, fmt.Errorf("new oauth2 service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Identity{}, fmt.Errorf("get userinfo: %w", err)
	}
	return Identity{
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail != nil && *info.VerifiedEmail,
	}, nil
}

// AuthURL returns the consent page URL with a signed state.
func (g *GoogleLogin) AuthURL() (string, error) {
	if g == nil {
		return "", util.ErrOAuthDisabled
	}
	state, err := g.Auth.Tokens.IssueState()
	if err != nil {
		return "", err
	}
	return g.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Callback completes the flow and signs a token pair for the local user.
func (g *GoogleLogin) Callback(ctx context.Context, code, state string) (*models.User, util.TokenPair, error) {
	if g == nil {
		return nil, util.TokenPair{}, util.ErrOAuthDisabled
	}
	if err := g.Auth.Tokens.CheckState(state); err != nil {
		return nil, util.TokenPair{}, err
	}
	if code == "" {
		return nil, util.TokenPair{}, util.NewValidationError(map[string]string{"code": "This field is required."})
	}

	tok, err := g.OAuth.Exchange(ctx, code)
	if err != nil {
		g.Log.WarnContext(ctx, "code exchange failed", logging.FieldError, err)
		return nil, util.TokenPair{}, errGoogleLogin.Wrap(err)
	}

	id, err := g.Identify(ctx, g.OAuth.TokenSource(ctx, tok))
	if err != nil {
		g.Log.WarnContext(ctx, "identity lookup failed", logging.FieldError, err)
		return nil, util.TokenPair{}, errGoogleLogin.Wrap(err)
	}
	if !id.EmailVerified {
		return nil, util.TokenPair{}, errGoogleLogin.Wrap(fmt.Errorf("email %q not verified", id.Email))
	}

	user, err := g.Auth.FindOrCreateByEmail(ctx, id.Email)
	if err != nil {
		return nil, util.TokenPair{}, err
	}
	tokens, err := g.Auth.Tokens.Issue(user)
	if err != nil {
		return nil, util.TokenPair{}, err
	}
	return user, tokens, nil
}
