package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"casedocs/internal/model"
)

func TestLayout(t *testing.T) {
	s := model.Subject{ID: 1, Token: "abc123", FirstName: "John", LastName: "Doe"}

	assert.Equal(t, "DA", TypeFolder(model.DocumentTypeAssetDeclaration))
	assert.Equal(t, "DI", TypeFolder(model.DocumentTypeInterestDeclaration))
	assert.Equal(t, "Doe-John-abc123/DI", SubjectTypeDir(s, model.DocumentTypeInterestDeclaration))
	assert.Equal(t, "Doe-John-abc123/DA/d-1", DocumentPath(s, model.DocumentTypeAssetDeclaration, "d-1"))
	assert.Equal(t, "Doe-John-abc123/DA/ocr", OCROutputDir(s, model.DocumentTypeAssetDeclaration))
}

func TestDirKey(t *testing.T) {
	assert.Equal(t, "a/b/", dirKey("a/b"))
	assert.Equal(t, "a/b/", dirKey("a/b//"))
}
