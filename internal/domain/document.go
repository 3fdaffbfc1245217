package domain

import (
	"strings"
	"time"
)

// DocumentType classifies an attachment by its MIME type.
type DocumentType string

const (
	DocumentTypePDF         DocumentType = "pdf"
	DocumentTypeImage       DocumentType = "image"
	DocumentTypeDocument    DocumentType = "document"
	DocumentTypeVideo       DocumentType = "video"
	DocumentTypeSpreadsheet DocumentType = "spreadsheet"
	DocumentTypeJSON        DocumentType = "json"
	DocumentTypeOther       DocumentType = "other"
)

// Document describes an uploaded attachment. The bytes live elsewhere.
type Document struct {
	ID         string       `json:"id" bson:"id"`
	Name       string       `json:"name" bson:"name"`
	Type       DocumentType `json:"type" bson:"type"`
	Size       int64        `json:"size" bson:"size"`
	URL        string       `json:"url" bson:"url"`
	UploadedAt time.Time    `json:"uploadedAt" bson:"uploadedAt"`
}

// DocumentTypeFromMIME maps a MIME type to a DocumentType. The first matching rule wins.
func DocumentTypeFromMIME(mimeType string) DocumentType {
	switch {
	case strings.Contains(mimeType, "pdf"):
		return DocumentTypePDF
	case strings.Contains(mimeType, "image"):
		return DocumentTypeImage
	case strings.Contains(mimeType, "video"):
		return DocumentTypeVideo
	case strings.Contains(mimeType, "spreadsheet"), strings.Contains(mimeType, "excel"):
		return DocumentTypeSpreadsheet
	case strings.Contains(mimeType, "json"):
		return DocumentTypeJSON
	default:
		return DocumentTypeDocument
	}
}
