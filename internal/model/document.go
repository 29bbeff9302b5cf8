package model

import "time"

// Document is an ingested declaration file plus its processing status.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage, ocr) without coupling to persistence.
type Document struct {
	ID           string         `json:"id"`
	SubjectID    int64          `json:"subjectId"`
	JobID        int64          `json:"jobId"`
	Type         DocumentType   `json:"type"`
	Status       DocumentStatus `json:"status"`
	Date         time.Time      `json:"date"`
	Name         string         `json:"name"`
	ContentHash  string         `json:"contentHash"`
	DownloadURL  string         `json:"downloadedUrl"`
	OriginalPath string         `json:"originalPath"`
	Data         *string        `json:"data,omitempty"`
	DataRaw      *string        `json:"dataRaw,omitempty"`
	CreatedBy    int64          `json:"createdBy"`
	CreatedAt    time.Time      `json:"created"`
	UpdatedBy    *int64         `json:"updatedBy,omitempty"`
	UpdatedAt    *time.Time     `json:"updated,omitempty"`
}

// DocumentMetadata holds the user-editable fields of a document.
// Content hash, download URL and storage path are never part of a metadata edit.
type DocumentMetadata struct {
	JobID     int64
	Type      DocumentType
	Status    DocumentStatus
	Date      time.Time
	Name      string
	UpdatedBy int64
}

// DocumentData is the processed (validated) payload of a document.
type DocumentData struct {
	ID   string  `json:"id"`
	Data *string `json:"data"`
}

// DocumentDataRaw is the unprocessed OCR output (or error marker) of a document.
type DocumentDataRaw struct {
	ID      string  `json:"id"`
	DataRaw *string `json:"dataRaw"`
}
