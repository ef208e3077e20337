package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"campusdesk/internal/access"
	"campusdesk/internal/auth"
	apperrors "campusdesk/internal/errors"
)

const identityKey = "identity"

// IdentityResolver resolves a session subject to a directory identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, clerkID string) (access.Identity, error)
}

// ResolveIdentity resolves the verified session subject once per request and stores
// the identity for handlers. It must run after the session middleware.
func ResolveIdentity(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, err := sessionSubject(c)
			if err != nil {
				return fail(c, err)
			}
			identity, err := resolver.Resolve(c.Request().Context(), subject)
			if err != nil {
				return fail(c, err)
			}
			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// sessionSubject returns the external id carried by the verified session token.
func sessionSubject(c echo.Context) (string, error) {
	claims, ok := c.Get("user").(*auth.SessionClaims)
	if !ok || claims.Subject == "" {
		return "", apperrors.ErrUnauthenticated
	}
	return claims.Subject, nil
}

// caller returns the identity stored by ResolveIdentity.
func caller(c echo.Context) access.Identity {
	identity, _ := c.Get(identityKey).(access.Identity)
	return identity
}

// fail maps err onto the error taxonomy. Unexpected failures are logged with the
// request id and reported without detail.
func fail(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusInternalServerError {
		logUnexpected(c, err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func logUnexpected(c echo.Context, err error) {
	log.Printf("request %s: %s %s: %v", requestID(c), c.Request().Method, c.Path(), err)
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	return nil
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// firstError returns the first error of a joined error, or err itself.
func firstError(err error) error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return errs[0]
		}
	}
	return err
}
