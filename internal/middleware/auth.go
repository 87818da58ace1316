package middleware

import (
	"github.com/naimur978/Expense-Tracker/internal/logging"
	"github.com/naimur978/Expense-Tracker/internal/service"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"github.com/gin-gonic/gin"
)

type authOptions struct {
	queryToken bool
}

// AuthOption tunes AuthMiddleware.
type AuthOption func(*authOptions)

// AllowQueryToken also accepts ?token=... when there is no Authorization
// header. For file downloads started by a plain link.
func AllowQueryToken() AuthOption {
	return func(o *authOptions) { o.queryToken = true }
}

// AuthMiddleware verifies the Bearer access token and puts the user in the
// context under "currentUser".
func AuthMiddleware(auth *service.AuthService, opts ...AuthOption) gin.HandlerFunc {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		token, ok := util.BearerToken(c.GetHeader("Authorization"))
		if !ok && o.queryToken && c.GetHeader("Authorization") == "" {
			token = c.Query("token")
			ok = token != ""
		}
		if !ok {
			util.Abort(c, util.ErrUnauthenticated)
			return
		}

		user, err := auth.UserFromAccessToken(c.Request.Context(), token)
		if err != nil {
			util.Abort(c, err)
			return
		}

		c.Set("currentUser", user)
		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(logging.NewContext(ctx, logging.FromContext(ctx).With(logging.FieldUserID, user.ID)))
		c.Next()
	}
}
