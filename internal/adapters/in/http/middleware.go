package http

import (
	"net/http"

	"dispatch/internal/adapters/in/auth"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

const actorContextKey = "dispatch.actor"

// TokenVerifier authenticates a bearer token.
type TokenVerifier interface {
	Verify(token string) (kernel.Actor, error)
}

// Authenticate rejects requests without a valid bearer token with 401 and stores
// the verified actor on the echo context.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, Error{Code: "unauthenticated", Message: err.Error()})
			}
			actor, err := verifier.Verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, Error{Code: "unauthenticated", Message: "invalid token"})
			}
			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// actorOf returns the actor stored by Authenticate. Routes are only reachable
// through the middleware, so a missing value yields the zero Actor, which every
// command constructor rejects.
func actorOf(c echo.Context) kernel.Actor {
	actor, _ := c.Get(actorContextKey).(kernel.Actor)
	return actor
}
