package mocks

import (
	"context"

	"casedocs/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, subjectID int64) ([]model.Document, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockDocumentRepository) Exists(ctx context.Context, contentHash, downloadURL string) (bool, error) {
	args := m.Called(ctx, contentHash, downloadURL)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) UpdateMetadata(ctx context.Context, id string, expected model.DocumentStatus, meta model.DocumentMetadata) error {
	args := m.Called(ctx, id, expected, meta)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateData(ctx context.Context, id string, userID int64, data string) error {
	args := m.Called(ctx, id, userID, data)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, dataRaw *string) error {
	args := m.Called(ctx, id, status, dataRaw)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindData(ctx context.Context, id string) (*model.DocumentData, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentData), args.Error(1)
}

func (m *MockDocumentRepository) FindDataRaw(ctx context.Context, id string) (*model.DocumentDataRaw, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentDataRaw), args.Error(1)
}

func (m *MockDocumentRepository) FindOriginalPath(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type MockSubjectRepository struct {
	mock.Mock
}

func (m *MockSubjectRepository) FindByID(ctx context.Context, id int64) (*model.Subject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subject), args.Error(1)
}
