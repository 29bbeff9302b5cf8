package handler

import (
	"database/sql"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"casedocs/internal/apperr"
	"casedocs/internal/database"
	"casedocs/internal/service"
)

// HealthCheck godoc
// @Summary Readiness probe
// @Description Checks database connectivity
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.Healthy(c.UserContext(), db); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is the backward-compatible simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments godoc
// @Summary List the documents of a subject
// @Tags documents
// @Produce json
// @Param subjectId query int true "Subject id"
// @Success 200 {array} model.Document
// @Failure 400 {object} errorPayload
// @Router /api/docs [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjectID, err := strconv.ParseInt(c.Query("subjectId"), 10, 64)
		if err != nil {
			return apperr.Validation.WithDetails([]apperr.FieldError{{Field: "subjectId", Message: "must be a positive integer"}})
		}
		docs, err := docSvc.List(c.UserContext(), subjectID)
		if err != nil {
			return err
		}
		return c.JSON(docs)
	}
}

// AddDocument godoc
// @Summary Ingest a document from a url
// @Description Downloads the file, stores it and queues it for OCR
// @Tags documents
// @Accept json
// @Produce json
// @Param body body addDocumentRequest true "Document"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Failure 504 {object} errorPayload
// @Router /api/docs [post]
func AddDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addDocumentRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		in, err := req.toInput(userID(c))
		if err != nil {
			return err
		}
		doc, err := docSvc.Add(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument godoc
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param docId path string true "Document id"
// @Success 200 {object} model.Document
// @Failure 404 {object} errorPayload
// @Router /api/docs/{docId} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := docID(c)
		if err != nil {
			return err
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

// UpdateDocument godoc
// @Summary Edit document metadata
// @Tags documents
// @Accept json
// @Produce json
// @Param docId path string true "Document id"
// @Param body body updateDocumentRequest true "Metadata"
// @Success 200 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/docs/{docId} [put]
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := docID(c)
		if err != nil {
			return err
		}
		var req updateDocumentRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		in, err := req.toInput(userID(c))
		if err != nil {
			return err
		}
		doc, err := docSvc.Update(c.UserContext(), id, in)
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

// DeleteDocument godoc
// @Summary Delete a document
// @Description The record is marked deleted, the stored file is kept
// @Tags documents
// @Param docId path string true "Document id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /api/docs/{docId} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := docID(c)
		if err != nil {
			return err
		}
		if err := docSvc.Delete(c.UserContext(), id, userID(c)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UpdateDocumentData godoc
// @Summary Store the processed data of a document
// @Tags documents
// @Accept json
// @Param docId path string true "Document id"
// @Param body body updateDataRequest true "Data"
// @Success 200
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/docs/{docId}/data [put]
func UpdateDocumentData(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := docID(c)
		if err != nil {
			return err
		}
		var req updateDataRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if req.Data == nil {
			return apperr.Validation.WithDetails([]apperr.FieldError{{Field: "data", Message: "is required"}})
		}
		if err := docSvc.UpdateData(c.UserContext(), id, userID(c), *req.Data); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	}
}

// GetDocumentData godoc
// @Summary Get the processed data of a document
// @Tags documents
// @Produce json
// @Param docId path string true "Document id"
// @Success 200 {object} model.DocumentData
// @Failure 404 {object} errorPayload
// @Router /api/docs/{docId}/data [get]
func GetDocumentData(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := docID(c)
		if err != nil {
			return err
		}
		d, err := docSvc.GetData(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

// GetDocumentDataRaw godoc
// @Summary Get the raw OCR output of a document
// @Tags documents
// @Produce json
// @Param docId path string true "Document id"
// @Success 200 {object} model.DocumentDataRaw
// @Failure 404 {object} errorPayload
// @Router /api/docs/{docId}/dataraw [get]
func GetDocumentDataRaw(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := docID(c)
		if err != nil {
			return err
		}
		d, err := docSvc.GetDataRaw(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

// GetOriginalDocument godoc
// @Summary Get a signed url of the original file
// @Tags documents
// @Produce json
// @Param docId path string true "Document id"
// @Success 200 {object} originalURLResponse
// @Failure 404 {object} errorPayload
// @Router /api/docs/{docId}/odoc [get]
func GetOriginalDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := docID(c)
		if err != nil {
			return err
		}
		u, err := docSvc.GetOriginalURL(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(originalURLResponse{URL: u})
	}
}

// ResubmitDocument godoc
// @Summary Queue a document for OCR again
// @Description Only documents still waiting for OCR can be resubmitted
// @Tags documents
// @Param docId path string true "Document id"
// @Success 202
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /api/docs/{docId}/resubmit [post]
func ResubmitDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := docID(c)
		if err != nil {
			return err
		}
		if err := docSvc.Resubmit(c.UserContext(), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusAccepted)
	}
}
