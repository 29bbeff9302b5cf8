package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"casedocs/internal/apperr"
	"casedocs/internal/http/middleware"
	"casedocs/internal/model"
	"casedocs/internal/service"
)

// addDocumentRequest is the body of POST /api/docs.
type addDocumentRequest struct {
	SubjectID   int64                 `json:"subjectId" example:"42"`
	JobID       int64                 `json:"jobId" example:"7"`
	Type        *model.DocumentType   `json:"type" swaggertype:"string" example:"assetDeclaration"`
	Status      *model.DocumentStatus `json:"status" swaggertype:"string" example:"waitingOCR"`
	Date        string                `json:"date" example:"2024-05-17"`
	Name        string                `json:"name" example:"Declaration 2024"`
	DownloadURL string                `json:"downloadUrl" example:"https://example.org/decl.pdf"`
}

// updateDocumentRequest is the body of PUT /api/docs/:docId.
type updateDocumentRequest struct {
	JobID  int64                 `json:"jobId" example:"7"`
	Type   *model.DocumentType   `json:"type" swaggertype:"string" example:"assetDeclaration"`
	Status *model.DocumentStatus `json:"status" swaggertype:"string" example:"validated"`
	Date   string                `json:"date" example:"2024-05-17"`
	Name   string                `json:"name" example:"Declaration 2024"`
}

// updateDataRequest is the body of PUT /api/docs/:docId/data. Data holds a JSON document.
type updateDataRequest struct {
	Data *string `json:"data" example:"{\"assets\":[]}"`
}

type originalURLResponse struct {
	URL string `json:"url"`
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func requiredEnums(t *model.DocumentType, s *model.DocumentStatus) []apperr.FieldError {
	var fields []apperr.FieldError
	if t == nil {
		fields = append(fields, apperr.FieldError{Field: "type", Message: "is required"})
	}
	if s == nil {
		fields = append(fields, apperr.FieldError{Field: "status", Message: "is required"})
	}
	return fields
}

func (r addDocumentRequest) toInput(userID int64) (service.AddDocumentInput, error) {
	fields := requiredEnums(r.Type, r.Status)
	date, ok := parseDate(r.Date)
	if !ok {
		fields = append(fields, apperr.FieldError{Field: "date", Message: "must be YYYY-MM-DD or RFC 3339"})
	}
	if len(fields) > 0 {
		return service.AddDocumentInput{}, apperr.Validation.WithDetails(fields)
	}
	return service.AddDocumentInput{
		SubjectID:   r.SubjectID,
		JobID:       r.JobID,
		Type:        *r.Type,
		Status:      *r.Status,
		Date:        date,
		Name:        r.Name,
		DownloadURL: strings.TrimSpace(r.DownloadURL),
		UserID:      userID,
	}, nil
}

func (r updateDocumentRequest) toInput(userID int64) (service.UpdateDocumentInput, error) {
	fields := requiredEnums(r.Type, r.Status)
	date, ok := parseDate(r.Date)
	if !ok {
		fields = append(fields, apperr.FieldError{Field: "date", Message: "must be YYYY-MM-DD or RFC 3339"})
	}
	if len(fields) > 0 {
		return service.UpdateDocumentInput{}, apperr.Validation.WithDetails(fields)
	}
	return service.UpdateDocumentInput{
		JobID:  r.JobID,
		Type:   *r.Type,
		Status: *r.Status,
		Date:   date,
		Name:   r.Name,
		UserID: userID,
	}, nil
}

// parseBody decodes the JSON body; enum and syntax errors become VALIDATION_ERROR.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation.WithDetails([]apperr.FieldError{{Field: "body", Message: err.Error()}})
	}
	return nil
}

// docID returns the :docId route param once it is a valid uuid.
func docID(c *fiber.Ctx) (string, error) {
	id := c.Params("docId")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.InvalidID
	}
	return id, nil
}

func userID(c *fiber.Ctx) int64 {
	id, _ := middleware.IdentityFrom(c)
	return id.UserID
}
