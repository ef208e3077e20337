package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"campusdesk/internal/model"
	"campusdesk/internal/service"
)

// IdentityHandler handles onboarding and "who am I" endpoints.
type IdentityHandler struct {
	directoryService service.DirectoryService
}

// NewIdentityHandler creates a new identity handler.
func NewIdentityHandler(directoryService service.DirectoryService) *IdentityHandler {
	return &IdentityHandler{directoryService: directoryService}
}

// OnboardRequest represents the profile submitted after first sign-in.
type OnboardRequest struct {
	FirstName string `json:"firstName" validate:"required,max=255"`
	LastName  string `json:"lastName" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email"`
}

// UserResponse wraps a single user profile.
type UserResponse struct {
	User *model.User `json:"user"`
}

// StaffMeResponse reports whether the caller is a staff member.
type StaffMeResponse struct {
	IsStaff bool         `json:"isStaff"`
	Staff   *model.Staff `json:"staff,omitempty"`
}

// Onboard godoc
// @Summary Complete onboarding as a student
// @Tags identity
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OnboardRequest true "Profile"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /onboarding [post]
func (h *IdentityHandler) Onboard(c echo.Context) error {
	var req OnboardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	subject, err := sessionSubject(c)
	if err != nil {
		return fail(c, err)
	}

	user, err := h.directoryService.Onboard(c.Request().Context(), subject, service.OnboardInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, UserResponse{User: user})
}

// Me godoc
// @Summary Resolve the caller's identity
// @Description Kind is anonymous until onboarding is complete.
// @Tags identity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} access.Identity
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *IdentityHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, caller(c))
}

// StaffMe godoc
// @Summary Report whether the caller is staff
// @Tags identity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StaffMeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /staff/me [get]
func (h *IdentityHandler) StaffMe(c echo.Context) error {
	id := caller(c)
	if !id.IsStaff() {
		return c.JSON(http.StatusOK, StaffMeResponse{IsStaff: false})
	}
	return c.JSON(http.StatusOK, StaffMeResponse{IsStaff: true, Staff: id.Staff})
}
