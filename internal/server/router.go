// Package server wires the HTTP API: routing, middleware, request
// DTOs, and error mapping.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitpot/splitpot/internal/auth"
	"github.com/splitpot/splitpot/internal/service"
)

// Services bundles the service-layer dependencies of the router.
type Services struct {
	Auth     *service.AuthService
	Groups   *service.GroupService
	Expenses *service.ExpenseService
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(jwtManager *auth.JWTManager, svcs Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), Metrics())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := NewAuthHandler(svcs.Auth)
	groupHandler := NewGroupHandler(svcs.Groups)
	expenseHandler := NewExpenseHandler(svcs.Expenses)

	api := router.Group("/api/v1")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("", RequireAuth(jwtManager))
	authed.GET("/auth/me", authHandler.Me)

	authed.POST("/groups", groupHandler.Create)
	authed.GET("/groups", groupHandler.List)
	authed.GET("/groups/:id", groupHandler.Get)
	authed.PUT("/groups/:id", groupHandler.Update)
	authed.DELETE("/groups/:id", groupHandler.Delete)

	authed.POST("/groups/:id/expenses", expenseHandler.Add)
	authed.GET("/groups/:id/expenses", expenseHandler.List)
	authed.GET("/groups/:id/balances", expenseHandler.Balances)
	authed.GET("/expenses/:id", expenseHandler.Get)
	authed.PUT("/expenses/:id", expenseHandler.Update)
	authed.DELETE("/expenses/:id", expenseHandler.Delete)

	return router
}
