package handler

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"campusdesk/internal/access"
	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/upload"
)

// Uploader stores a batch of files and returns their URLs.
type Uploader interface {
	Upload(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
}

// UploadHandler handles file uploads.
type UploadHandler struct {
	uploader Uploader
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploader Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// UploadResponse lists the stored file URLs in request order.
type UploadResponse struct {
	URLs []string `json:"urls"`
}

// maxUploadBody bounds the whole multipart request.
const maxUploadBody = (upload.MaxImages + upload.MaxPDFs) * (upload.MaxFileSize + 64<<10)

// Upload godoc
// @Summary Upload images and PDFs
// @Description Up to 6 images and 4 PDFs per request, 4 MiB each. Type is detected from content.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "Files"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /uploads [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	if err := access.RequireResolved(caller(c)); err != nil {
		return fail(c, err)
	}

	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxUploadBody)
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, apperrors.Invalid("expected a multipart form with a files field"))
	}
	defer form.RemoveAll()

	urls, err := h.uploader.Upload(req.Context(), form.File["files"])
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, UploadResponse{URLs: urls})
}
