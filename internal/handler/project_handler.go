package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/model"
	"campusdesk/internal/service"
)

// ProjectHandler handles project submission and review endpoints.
type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProjectRequest represents a project submission.
type CreateProjectRequest struct {
	FirstName          string `json:"firstName" validate:"required,max=255"`
	LastName           string `json:"lastName" validate:"required,max=255"`
	RegistrationNumber string `json:"registrationNumber" validate:"required,max=100"`
	FileURL            string `json:"fileUrl" validate:"required,max=1024"`
	ProjectURL         string `json:"projecturl" validate:"omitempty,max=1024"`
}

// FeedbackRequest represents a message on a project thread.
type FeedbackRequest struct {
	ProjectID uint   `json:"projectId" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// ProjectResponse wraps a single project.
type ProjectResponse struct {
	Project *model.Project `json:"project"`
}

// ProjectListResponse wraps a project listing.
type ProjectListResponse struct {
	Projects []model.Project `json:"projects"`
}

// FeedbackResponse wraps a single feedback entry.
type FeedbackResponse struct {
	Feedback *model.Feedback `json:"feedback"`
}

// FeedbackListResponse wraps a feedback thread.
type FeedbackListResponse struct {
	Feedback []model.Feedback `json:"feedback"`
}

// Create godoc
// @Summary Submit a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProjectRequest true "Project"
// @Success 201 {object} ProjectResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req CreateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.projectService.Create(c.Request().Context(), caller(c), service.CreateProjectInput{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		RegistrationNumber: req.RegistrationNumber,
		FileURL:            req.FileURL,
		ProjectURL:         req.ProjectURL,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, ProjectResponse{Project: project})
}

// List godoc
// @Summary List projects with their feedback
// @Description Staff and admins see every project; students see their own.
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProjectListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.projectService.List(c.Request().Context(), caller(c))
	if err != nil {
		return fail(c, err)
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return c.JSON(http.StatusOK, ProjectListResponse{Projects: projects})
}

// AddFeedback godoc
// @Summary Post feedback on a project
// @Description The sender is "lecturer" for staff and "student" otherwise.
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FeedbackRequest true "Feedback"
// @Success 201 {object} FeedbackResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/feedback [post]
func (h *ProjectHandler) AddFeedback(c echo.Context) error {
	var req FeedbackRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	feedback, err := h.projectService.AddFeedback(c.Request().Context(), caller(c), service.FeedbackInput{
		ProjectID: req.ProjectID,
		Message:   req.Message,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, FeedbackResponse{Feedback: feedback})
}

// ListFeedback godoc
// @Summary List feedback on a project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} FeedbackListResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/{id}/feedback [get]
func (h *ProjectHandler) ListFeedback(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, apperrors.Invalid("invalid project id"))
	}

	feedback, err := h.projectService.ListFeedback(c.Request().Context(), caller(c), uint(id))
	if err != nil {
		return fail(c, err)
	}
	if feedback == nil {
		feedback = []model.Feedback{}
	}
	return c.JSON(http.StatusOK, FeedbackListResponse{Feedback: feedback})
}
