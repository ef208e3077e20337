// Package upload accepts issue, announcement and project files, checks them and hands
// them to an object store. Records only ever keep the returned URLs.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	apperrors "campusdesk/internal/errors"
)

// Limits applied to a single upload request.
const (
	MaxFileSize = 4 << 20
	MaxImages   = 6
	MaxPDFs     = 4
)

// Kind is the accepted category of an uploaded file.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

// Storage persists an object under key and returns its public URL.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// Remover is implemented by storages that can delete an object they stored. Uploads
// that fail partway remove what they already stored when the storage allows it.
type Remover interface {
	Remove(ctx context.Context, key string) error
}

// rasterImages lists the accepted image types. SVG is excluded because files are served
// from the API origin and SVG can carry script.
var rasterImages = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// File is an uploaded file whose content has been read and classified.
type File struct {
	Name        string
	Kind        Kind
	ContentType string
	Extension   string
	Data        []byte
}

// Gateway validates uploads and forwards them to Storage.
type Gateway struct {
	storage Storage
}

// NewGateway creates a new upload gateway.
func NewGateway(storage Storage) *Gateway {
	return &Gateway{storage: storage}
}

// Upload stores every file and returns their URLs in request order. All files are
// checked before the first one is stored.
func (g *Gateway) Upload(ctx context.Context, headers []*multipart.FileHeader) ([]string, error) {
	if len(headers) == 0 {
		return nil, apperrors.Invalid("at least one file is required")
	}

	files := make([]File, 0, len(headers))
	for _, h := range headers {
		f, err := readFile(h)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if err := checkCounts(files); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(files))
	keys := make([]string, 0, len(files))
	for _, f := range files {
		key := uuid.NewString() + f.Extension
		url, err := g.storage.Put(ctx, key, f.ContentType, bytes.NewReader(f.Data), int64(len(f.Data)))
		if err != nil {
			g.discard(ctx, keys)
			return nil, fmt.Errorf("store %s: %w", f.Name, err)
		}
		urls = append(urls, url)
		keys = append(keys, key)
	}
	return urls, nil
}

func (g *Gateway) discard(ctx context.Context, keys []string) {
	remover, ok := g.storage.(Remover)
	if !ok {
		if len(keys) > 0 {
			log.Printf("upload: storage cannot remove objects, %d orphaned: %v", len(keys), keys)
		}
		return
	}
	for _, key := range keys {
		if err := remover.Remove(ctx, key); err != nil {
			log.Printf("upload: remove %s: %v", key, err)
		}
	}
}

func readFile(h *multipart.FileHeader) (File, error) {
	if h.Size > MaxFileSize {
		return File{}, tooLarge(h.Filename)
	}

	src, err := h.Open()
	if err != nil {
		return File{}, fmt.Errorf("open %s: %w", h.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", h.Filename, err)
	}
	if len(data) > MaxFileSize {
		return File{}, tooLarge(h.Filename)
	}
	if len(data) == 0 {
		return File{}, apperrors.Invalid("%s is empty", h.Filename)
	}

	return Classify(h.Filename, data)
}

// Classify sniffs data and accepts raster images and PDFs only. The declared name
// and content type are not trusted.
func Classify(name string, data []byte) (File, error) {
	mtype := mimetype.Detect(data)
	f := File{
		Name:        name,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
		Data:        data,
	}
	switch {
	case mtype.Is("application/pdf"):
		f.Kind = KindPDF
	case mimetype.EqualsAny(mtype.String(), rasterImages...):
		f.Kind = KindImage
	default:
		return File{}, apperrors.Invalid("%s has unsupported type %s, only JPEG, PNG, GIF, WebP and PDF files are accepted", name, mtype.String())
	}
	return f, nil
}

func checkCounts(files []File) error {
	var images, pdfs int
	for _, f := range files {
		switch f.Kind {
		case KindImage:
			images++
		case KindPDF:
			pdfs++
		}
	}
	if images > MaxImages {
		return apperrors.Invalid("at most %d images per upload, got %d", MaxImages, images)
	}
	if pdfs > MaxPDFs {
		return apperrors.Invalid("at most %d PDFs per upload, got %d", MaxPDFs, pdfs)
	}
	return nil
}

func tooLarge(name string) error {
	return apperrors.Invalid("%s exceeds the %s size limit", name, humanize.IBytes(MaxFileSize))
}
