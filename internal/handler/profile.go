package handler

import (
	"net/http"

	"github.com/naimur978/Expense-Tracker/internal/logging"
	"github.com/naimur978/Expense-Tracker/internal/models"
	"github.com/naimur978/Expense-Tracker/internal/service"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser returns the user stored by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Fail(c, util.ErrUnauthenticated)
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Fail(c, util.ErrUnauthenticated)
		return nil, false
	}
	return user, true
}

func logRequestError(c *gin.Context, msg string, err error) {
	ctx := c.Request.Context()
	logging.FromContext(ctx).ErrorContext(ctx, msg, logging.FieldPath, c.Request.URL.Path, logging.FieldError, err)
}

// GetMe returns the authenticated user.
func GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	util.Success(c, http.StatusOK, user)
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword lets the current user set a new password.
func ChangePassword(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req changePasswordReq
		_ = c.ShouldBindJSON(&req)
		fields := map[string]string{}
		if req.OldPassword == "" {
			fields["old_password"] = "This field is required."
		}
		if req.NewPassword == "" {
			fields["new_password"] = "This field is required."
		}
		if len(fields) > 0 {
			util.Fail(c, util.NewValidationError(fields))
			return
		}

		if err := auth.ChangePassword(c.Request.Context(), user, req.OldPassword, req.NewPassword); err != nil {
			util.Fail(c, err)
			return
		}
		util.Success(c, http.StatusOK, util.Response{"message": "Password updated"})
	}
}
