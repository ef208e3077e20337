package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/model"
	"campusdesk/internal/service"
)

// IssueHandler handles helpdesk issue endpoints.
type IssueHandler struct {
	issueService service.IssueService
}

// NewIssueHandler creates a new issue handler.
func NewIssueHandler(issueService service.IssueService) *IssueHandler {
	return &IssueHandler{issueService: issueService}
}

// CreateIssueRequest represents a new issue.
type CreateIssueRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	IssueType   string   `json:"issueType" validate:"omitempty,max=50"`
	Department  string   `json:"department" validate:"required,max=191"`
	Attachments []string `json:"attachments" validate:"omitempty,max=10,dive,required"`
}

// UpdateIssueRequest represents a combined issue update. Every part is optional.
type UpdateIssueRequest struct {
	IssueID       uint   `json:"issueId"`
	Status        string `json:"status"`
	Comment       string `json:"comment"`
	CommentID     uint   `json:"commentId"`
	UpdateComment string `json:"updateComment"`
}

// IssueResponse wraps a single issue.
type IssueResponse struct {
	Issue *model.Issue `json:"issue"`
}

// IssueListResponse wraps an issue listing.
type IssueListResponse struct {
	Issues []model.Issue `json:"issues"`
}

// UpdateIssueResponse reports a successful combined update.
type UpdateIssueResponse struct {
	Message string `json:"message"`
	*service.UpdateResult
}

// PartialUpdateResponse reports a combined update where some parts failed. Result
// lists what was applied anyway.
type PartialUpdateResponse struct {
	apperrors.ErrorResponse
	Result *service.UpdateResult `json:"result"`
}

// Create godoc
// @Summary Raise a new issue
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIssueRequest true "Issue"
// @Success 201 {object} IssueResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /issues [post]
func (h *IssueHandler) Create(c echo.Context) error {
	var req CreateIssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	issue, err := h.issueService.Create(c.Request().Context(), caller(c), service.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		IssueType:   req.IssueType,
		Department:  req.Department,
		Attachments: req.Attachments,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, IssueResponse{Issue: issue})
}

// List godoc
// @Summary List issues
// @Description Students see their own issues; staff and admins see all. Newest first, comments oldest first.
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department"
// @Param status query string false "pending, reviewing or resolved; other values are ignored"
// @Param startDate query string false "RFC 3339 or YYYY-MM-DD"
// @Param endDate query string false "RFC 3339 or YYYY-MM-DD (whole day)"
// @Success 200 {object} IssueListResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /issues [get]
func (h *IssueHandler) List(c echo.Context) error {
	q, err := parseIssueQuery(c.QueryParams())
	if err != nil {
		return fail(c, err)
	}

	issues, err := h.issueService.List(c.Request().Context(), caller(c), q)
	if err != nil {
		return fail(c, err)
	}
	if issues == nil {
		issues = []model.Issue{}
	}

	return c.JSON(http.StatusOK, IssueListResponse{Issues: issues})
}

// Update godoc
// @Summary Change status, add a comment or edit a comment
// @Description Status changes are staff-only. How partial failures are handled depends on UPDATE_MODE.
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateIssueRequest true "Update"
// @Success 200 {object} UpdateIssueResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} PartialUpdateResponse
// @Failure 404 {object} PartialUpdateResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /issues [patch]
func (h *IssueHandler) Update(c echo.Context) error {
	var req UpdateIssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.issueService.Update(c.Request().Context(), caller(c), service.UpdateIssueInput{
		IssueID:       req.IssueID,
		Status:        req.Status,
		Comment:       req.Comment,
		CommentID:     req.CommentID,
		UpdateComment: req.UpdateComment,
	})
	if err != nil {
		if result == nil {
			return fail(c, err)
		}
		// the first failing part decides the status code
		httpErr := apperrors.MapErrorToHTTP(firstError(err))
		message := err.Error()
		if httpErr.StatusCode == http.StatusInternalServerError {
			logUnexpected(c, err)
			message = httpErr.Message
		}
		return c.JSON(httpErr.StatusCode, PartialUpdateResponse{
			ErrorResponse: apperrors.ErrorResponse{Error: message, Code: httpErr.Code},
			Result:        result,
		})
	}

	return c.JSON(http.StatusOK, UpdateIssueResponse{Message: "Update successful", UpdateResult: result})
}
