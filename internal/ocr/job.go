package ocr

import (
	"casedocs/internal/model"
	"casedocs/internal/storage"
)

// JobDescriptor is the message placed on the input queue for the OCR engine.
type JobDescriptor struct {
	DocumentID        string             `json:"documentId"`
	DocumentType      model.DocumentType `json:"documentType"`
	FormVersion       string             `json:"formVersion"`
	StorageType       string             `json:"storageType"`
	InPath            string             `json:"inPath"`
	InFilename        string             `json:"inFilename"`
	OutPath           string             `json:"outPath"`
	OutTableFilename  string             `json:"outTableFilename"`
	OutCustomFilename string             `json:"outCustomFilename"`
}

// NewJobDescriptor derives the input and output locations of a document from its subject.
func NewJobDescriptor(doc model.Document, subject model.Subject, storageType, formVersion string) JobDescriptor {
	return JobDescriptor{
		DocumentID:        doc.ID,
		DocumentType:      doc.Type,
		FormVersion:       formVersion,
		StorageType:       storageType,
		InPath:            storage.SubjectTypeDir(subject, doc.Type),
		InFilename:        doc.ID,
		OutPath:           storage.OCROutputDir(subject, doc.Type),
		OutTableFilename:  doc.ID + "_table.json",
		OutCustomFilename: doc.ID + "_custom.json",
	}
}
