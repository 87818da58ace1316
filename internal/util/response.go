package util

import (
	"net/http"

	"github.com/naimur978/Expense-Tracker/internal/logging"

	"github.com/gin-gonic/gin"
)

// Response is the body of a successful JSON reply.
type Response map[string]any

// Success writes data with the given status.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// Error writes {"error": msg}.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"error": msg})
}

// Fail maps err to a status code and error body. Errors that are not
// AppErrors are logged and reported as a generic 500.
func Fail(c *gin.Context, err error) {
	ae, ok := AsAppError(err)
	if !ok || ae.Kind == KindInternal {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			logging.FieldMethod, c.Request.Method,
			logging.FieldPath, c.Request.URL.Path,
			logging.FieldError, err,
		)
		Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	body := gin.H{"error": ae.Message}
	if len(ae.Fields) > 0 {
		body["fields"] = ae.Fields
	}
	c.JSON(ae.Kind.Status(), body)
}

// Abort is Fail followed by c.Abort, for middleware.
func Abort(c *gin.Context, err error) {
	Fail(c, err)
	c.Abort()
}
