package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"campusdesk/internal/model"
	"campusdesk/internal/service"
)

// StaffHandler handles admin-only staff directory endpoints.
type StaffHandler struct {
	directoryService service.DirectoryService
}

// NewStaffHandler creates a new staff handler.
func NewStaffHandler(directoryService service.DirectoryService) *StaffHandler {
	return &StaffHandler{directoryService: directoryService}
}

// PromoteRequest represents a promotion of a User to Staff.
type PromoteRequest struct {
	ClerkID    string `json:"clerkId" validate:"required"`
	FirstName  string `json:"firstName" validate:"required,max=255"`
	LastName   string `json:"lastName" validate:"required,max=255"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required,max=191"`
	Role       string `json:"role" validate:"omitempty,oneof=staff admin"`
}

// PromoteResponse represents a completed promotion.
type PromoteResponse struct {
	Success bool         `json:"success"`
	Staff   *model.Staff `json:"staff"`
}

// SearchUser godoc
// @Summary Find a user by e-mail
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param email query string true "E-mail address"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /staff/search [get]
func (h *StaffHandler) SearchUser(c echo.Context) error {
	user, err := h.directoryService.SearchUserByEmail(c.Request().Context(), caller(c), c.QueryParam("email"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

// Promote godoc
// @Summary Promote a user to staff
// @Description Creates the Staff record and removes the User record in one transaction.
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PromoteRequest true "Staff profile"
// @Success 201 {object} PromoteResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /staff [post]
func (h *StaffHandler) Promote(c echo.Context) error {
	var req PromoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	staff, err := h.directoryService.PromoteToStaff(c.Request().Context(), caller(c), service.PromoteInput{
		ClerkID:    req.ClerkID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Department: req.Department,
		Role:       model.StaffRole(req.Role),
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, PromoteResponse{Success: true, Staff: staff})
}
