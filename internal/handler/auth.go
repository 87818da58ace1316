package handler

import (
	"net/http"
	"strings"

	"github.com/naimur978/Expense-Tracker/internal/models"
	"github.com/naimur978/Expense-Tracker/internal/service"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, token and social login endpoints.
type AuthHandler struct {
	Auth   *service.AuthService
	Google *service.GoogleLogin
}

// NewAuthHandler builds the handler. google may be nil when social login is off.
func NewAuthHandler(auth *service.AuthService, google *service.GoogleLogin) *AuthHandler {
	return &AuthHandler{Auth: auth, Google: google}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, util.ErrMissingField.Wrap(err))
		return
	}

	user, tokens, err := h.Auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusCreated, authResponse(user, tokens))
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges username and password for a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	_ = c.ShouldBindJSON(&req)

	fields := map[string]string{}
	if strings.TrimSpace(req.Username) == "" {
		fields["username"] = "This field is required."
	}
	if req.Password == "" {
		fields["password"] = "This field is required."
	}
	if len(fields) > 0 {
		util.Fail(c, util.NewValidationError(fields))
		return
	}

	user, tokens, err := h.Auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, authResponse(user, tokens))
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		util.Fail(c, util.NewValidationError(map[string]string{"refresh": "This field is required."}))
		return
	}

	access, err := h.Auth.Refresh(req.Refresh)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, util.Response{"access": access})
}

// VerifyToken only checks that a Bearer credential is present.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	if !h.Auth.Tokens.Verify(c.GetHeader("Authorization")) {
		util.Fail(c, util.ErrUnauthenticated)
		return
	}
	util.Success(c, http.StatusOK, util.Response{"valid": true})
}

func HealthCheck(c *gin.Context) {
	util.Success(c, http.StatusOK, util.Response{"status": "ok"})
}

// GoogleLogin returns the consent page URL for the client to redirect to.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	url, err := h.Google.AuthURL()
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, util.Response{"auth_url": url})
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	user, tokens, err := h.Google.Callback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, authResponse(user, tokens))
}

func authResponse(user *models.User, tokens util.TokenPair) util.Response {
	return util.Response{
		"tokens": tokens,
		"user":   user.Public(),
	}
}
