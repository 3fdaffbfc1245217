package upload

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// FormField is the multipart field carrying attachments.
const FormField = "documents"

const genericMIME = "application/octet-stream"

var allowedMIMETypes = map[string]struct{}{
	"image/jpeg":               {},
	"image/jpg":                {},
	"image/png":                {},
	"application/pdf":          {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/json": {},
	"video/mp4":        {},
}

// Resolver turns multipart file headers into document descriptors. File contents are only
// read to sniff a MIME type; storing the bytes is left to whatever serves URLPrefix.
type Resolver struct {
	maxFileBytes int64
	maxFiles     int
	urlPrefix    string
	now          func() time.Time
	newID        func() string
}

// NewResolver builds a resolver from the upload configuration.
func NewResolver(cfg config.UploadConfig) *Resolver {
	return &Resolver{
		maxFileBytes: cfg.MaxFileBytes,
		maxFiles:     cfg.MaxFiles,
		urlPrefix:    strings.TrimRight(cfg.URLPrefix, "/"),
		now:          time.Now,
		newID:        func() string { return "doc_" + uuid.NewString() },
	}
}

// Resolve validates files against the upload policy and describes each one. No files is
// not an error.
func (r *Resolver) Resolve(files []*multipart.FileHeader) ([]domain.Document, error) {
	if len(files) == 0 {
		return []domain.Document{}, nil
	}
	if r.maxFiles > 0 && len(files) > r.maxFiles {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Too many files. A maximum of %d files is allowed", r.maxFiles),
			map[string]any{"files": len(files), "maxFiles": r.maxFiles})
	}

	docs := make([]domain.Document, 0, len(files))
	for _, fh := range files {
		doc, err := r.describe(fh)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *Resolver) describe(fh *multipart.FileHeader) (domain.Document, error) {
	name := filepath.Base(strings.TrimSpace(fh.Filename))
	ext := strings.ToLower(filepath.Ext(name))
	if r.maxFileBytes > 0 && fh.Size > r.maxFileBytes {
		return domain.Document{}, apperrors.NewValidationError(
			fmt.Sprintf("File %s exceeds the maximum size of %d bytes", name, r.maxFileBytes),
			map[string]any{"file": name, "size": fh.Size, "maxFileBytes": r.maxFileBytes})
	}

	mimeType, err := contentType(fh)
	if err != nil {
		return domain.Document{}, err
	}
	if _, ok := allowedMIMETypes[mimeType]; !ok {
		return domain.Document{}, apperrors.NewValidationError(
			fmt.Sprintf("File type %s is not allowed", mimeType),
			map[string]any{"file": name, "mimeType": mimeType})
	}

	id := r.newID()
	return domain.Document{
		ID:         id,
		Name:       name,
		Type:       domain.DocumentTypeFromMIME(mimeType),
		Size:       fh.Size,
		URL:        fmt.Sprintf("%s/%s%s", r.urlPrefix, id, ext),
		UploadedAt: r.now(),
	}, nil
}

// contentType prefers the declared part type and sniffs the content when it is missing
// or generic. Parameters such as charset are dropped.
func contentType(fh *multipart.FileHeader) (string, error) {
	declared := mediaType(fh.Header.Get("Content-Type"))
	if declared != "" && declared != genericMIME {
		return declared, nil
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect mime type of %s: %w", fh.Filename, err)
	}
	return mediaType(detected.String()), nil
}

func mediaType(value string) string {
	base, _, _ := strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
