package router

import (
	"github.com/naimur978/Expense-Tracker/internal/config"
	"github.com/naimur978/Expense-Tracker/internal/handler"
	"github.com/naimur978/Expense-Tracker/internal/logging"
	"github.com/naimur978/Expense-Tracker/internal/middleware"
	"github.com/naimur978/Expense-Tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Auth     *service.AuthService
	Expenses *service.ExpenseService
	Google   *service.GoogleLogin // nil when Google login is not configured
	Log      *logging.Logger
}

// SetupRouter configures the gin engine with all API routes.
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(deps.Log), middleware.Recovery())

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Google)
	api.POST("/register/", authHandler.Register)
	api.POST("/token/", authHandler.Login)
	api.POST("/token/refresh/", authHandler.Refresh)
	api.POST("/verify-token/", authHandler.VerifyToken)
	api.GET("/health-check/", handler.HealthCheck)
	api.GET("/auth/google/", authHandler.GoogleLogin)
	api.GET("/auth/google/callback/", authHandler.GoogleCallback)

	// everything below needs a valid access token
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))

	protected.GET("/me/", handler.GetMe)
	protected.POST("/me/password/", handler.ChangePassword(deps.Auth))

	expenseHandler := handler.NewExpenseHandler(deps.Expenses)
	protected.GET("/expenses/", expenseHandler.List)
	protected.POST("/expenses/", expenseHandler.Create)
	protected.GET("/expenses/summary/", expenseHandler.Summary)
	protected.GET("/expenses/:id/", expenseHandler.Get)
	protected.PUT("/expenses/:id/", expenseHandler.Update)
	protected.PATCH("/expenses/:id/", expenseHandler.Patch)
	protected.DELETE("/expenses/:id/", expenseHandler.Delete)

	// downloads may carry the access token in ?token=
	downloads := api.Group("/expenses/export")
	downloads.Use(middleware.AuthMiddleware(deps.Auth, middleware.AllowQueryToken()))
	downloads.GET("/csv/", expenseHandler.ExportCSV)
	downloads.GET("/xlsx/", expenseHandler.ExportXLSX)

	return r
}
