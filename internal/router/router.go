package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"campusdesk/internal/auth"
	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/handler"
)

// Handlers groups the endpoint handlers the router mounts.
type Handlers struct {
	Identity     *handler.IdentityHandler
	Staff        *handler.StaffHandler
	Issue        *handler.IssueHandler
	Announcement *handler.AnnouncementHandler
	Project      *handler.ProjectHandler
	Upload       *handler.UploadHandler
}

// Options configures the parts of the router that depend on deployment.
type Options struct {
	// FilesDir is served under /files when uploads are kept on local disk.
	FilesDir string
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	verifier *auth.SessionVerifier,
	resolver handler.IdentityResolver,
	h Handlers,
	opts Options,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if opts.FilesDir != "" {
		e.Static("/files", opts.FilesDir)
	}

	api := e.Group("/api")

	// Public routes
	api.GET("/public-issues", h.Announcement.List)

	// Session routes: a verified session is enough, no profile required yet.
	session := api.Group("", SessionMiddleware(verifier))
	session.POST("/onboarding", h.Identity.Onboard)

	// Secured routes (session + resolved identity)
	secured := api.Group("", SessionMiddleware(verifier), handler.ResolveIdentity(resolver))

	secured.GET("/me", h.Identity.Me)
	secured.GET("/staff/me", h.Identity.StaffMe)

	// Issue routes
	secured.POST("/issues", h.Issue.Create)
	secured.GET("/issues", h.Issue.List)
	secured.PATCH("/issues", h.Issue.Update)

	// Announcement routes
	secured.POST("/public-issues", h.Announcement.Create)

	// Project routes
	secured.POST("/projects", h.Project.Create)
	secured.GET("/projects", h.Project.List)
	secured.POST("/projects/feedback", h.Project.AddFeedback)
	secured.GET("/projects/:id/feedback", h.Project.ListFeedback)

	// Staff directory routes (admin only)
	secured.GET("/staff/search", h.Staff.SearchUser)
	secured.POST("/staff", h.Staff.Promote)

	// Upload routes
	secured.POST("/uploads", h.Upload.Upload)
}

// SessionMiddleware verifies the identity provider's session token from the
// Authorization header or the __session cookie.
func SessionMiddleware(verifier *auth.SessionVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:__session",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return verifier.Verify(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "a valid session is required",
				Code:  "UNAUTHENTICATED",
			})
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
