// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/roadshare/carpool-backend/internal/handler"
	"github.com/roadshare/carpool-backend/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account endpoints. Register, login and the
// verification flows live under /v1/auth without a session; profile
// endpoints require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/verify", a.VerifyEmail)
	g.POST("/resend-code", a.ResendCode)
	g.POST("/reset-password", a.ResetPassword)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PUT("/me", a.UpdateProfile)
	auth.PATCH("/me", a.UpdateProfile)
}

// RegisterDriver registers the driver-scoped endpoints under /v1. All
// routes require a valid JWT; ownership checks happen in the services.
func RegisterDriver(e *echo.Echo, d *handler.DriverHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/rides", d.PostRide)
	g.PUT("/rides/:id", d.UpdateRide)
	g.PATCH("/rides/:id", d.UpdateRide)
	g.GET("/my-rides", d.MyRides)

	g.GET("/rides/:id/requests", d.ListRequests)
	g.POST("/rides/:id/requests/:request_id/accept", d.AcceptRequest)
	g.POST("/rides/:id/requests/:request_id/reject", d.RejectRequest)

	g.POST("/rides/:id/start", d.StartRide)
	g.POST("/rides/:id/end", d.EndRide)
}

// RegisterPassenger registers the passenger-scoped endpoints under /v1.
func RegisterPassenger(e *echo.Echo, p *handler.PassengerHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/rides/search", p.SearchRides)
	g.GET("/rides/:id", p.GetRide)
	g.POST("/rides/:id/join", p.JoinRide)
	g.GET("/my-requests", p.MyRequests)
}

// RegisterRatings registers the rating endpoints under /v1.
func RegisterRatings(e *echo.Echo, r *handler.RatingHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.GET("/ratings/pending", r.Pending)
	g.POST("/ratings/:id", r.Rate)
	g.DELETE("/ratings/:id", r.Dismiss)
	g.GET("/users/:id/rating", r.UserRating)
}
