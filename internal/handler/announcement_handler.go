package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/service"
)

// AnnouncementHandler handles the public announcement board.
type AnnouncementHandler struct {
	announcementService service.AnnouncementService
}

// NewAnnouncementHandler creates a new announcement handler.
func NewAnnouncementHandler(announcementService service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// CreateAnnouncementRequest represents a new announcement.
type CreateAnnouncementRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Content     string   `json:"content" validate:"required"`
	IssueType   string   `json:"issuetype" validate:"required,max=100"`
	Attachments []string `json:"attachments" validate:"omitempty,max=10,dive,required"`
	IsAnonymous bool     `json:"isAnonymous"`
}

// AnnouncementResponse wraps a single announcement.
type AnnouncementResponse struct {
	Announcement *service.Announcement `json:"announcement"`
}

// AnnouncementListResponse wraps the announcement feed.
type AnnouncementListResponse struct {
	Announcements []service.Announcement `json:"announcements"`
}

// Create godoc
// @Summary Post a public announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAnnouncementRequest true "Announcement"
// @Success 201 {object} AnnouncementResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /public-issues [post]
func (h *AnnouncementHandler) Create(c echo.Context) error {
	var req CreateAnnouncementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	announcement, err := h.announcementService.Create(c.Request().Context(), caller(c), service.CreateAnnouncementInput{
		Title:       req.Title,
		Content:     req.Content,
		IssueType:   req.IssueType,
		Attachments: req.Attachments,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, AnnouncementResponse{Announcement: announcement})
}

// List godoc
// @Summary Latest public announcements
// @Description Public. Authors of anonymous announcements are never included.
// @Tags announcements
// @Produce json
// @Param limit query int false "Number of announcements (1-50)"
// @Success 200 {object} AnnouncementListResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /public-issues [get]
func (h *AnnouncementHandler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fail(c, apperrors.Invalid("limit %q is not a number", raw))
		}
		limit = n
	}

	announcements, err := h.announcementService.List(c.Request().Context(), limit)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, AnnouncementListResponse{Announcements: announcements})
}
