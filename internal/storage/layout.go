package storage

import (
	"path"

	"casedocs/internal/model"
)

// TypeFolder returns the per-type folder name: DA for asset and DI for interest declarations.
func TypeFolder(t model.DocumentType) string {
	if t == model.DocumentTypeInterestDeclaration {
		return "DI"
	}
	return "DA"
}

// SubjectTypeDir is {subject folder}/{DA|DI}.
func SubjectTypeDir(s model.Subject, t model.DocumentType) string {
	return path.Join(s.Folder(), TypeFolder(t))
}

// DocumentPath is the key under which the original file of a document is stored.
func DocumentPath(s model.Subject, t model.DocumentType, docID string) string {
	return path.Join(SubjectTypeDir(s, t), docID)
}

// OCROutputDir is where the OCR engine writes its result files for a subject and type.
func OCROutputDir(s model.Subject, t model.DocumentType) string {
	return path.Join(SubjectTypeDir(s, t), "ocr")
}
