package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DocumentType identifies the kind of declaration a document holds.
type DocumentType int16

const (
	DocumentTypeAssetDeclaration    DocumentType = 0
	DocumentTypeInterestDeclaration DocumentType = 1
)

var documentTypeNames = map[DocumentType]string{
	DocumentTypeAssetDeclaration:    "assetDeclaration",
	DocumentTypeInterestDeclaration: "interestDeclaration",
}

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	_, ok := documentTypeNames[t]
	return ok
}

func (t DocumentType) String() string {
	if n, ok := documentTypeNames[t]; ok {
		return n
	}
	return "documentType(" + strconv.Itoa(int(t)) + ")"
}

func (t DocumentType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown document type %d", int(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either the type name or its numeric value.
func (t *DocumentType) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, documentTypeNames)
	if err != nil {
		return fmt.Errorf("document type: %w", err)
	}
	*t = v
	return nil
}

// DocumentStatus is the processing state of a document.
type DocumentStatus int16

const (
	StatusWaitingOCR             DocumentStatus = 0
	StatusOCRCompleted           DocumentStatus = 1
	StatusValidated              DocumentStatus = 2
	StatusOCRError               DocumentStatus = 3
	StatusOCROutputNotFound      DocumentStatus = 4
	StatusOCROutputDownloadError DocumentStatus = 5
	StatusOCRDeadLetter          DocumentStatus = 6
)

var documentStatusNames = map[DocumentStatus]string{
	StatusWaitingOCR:             "waitingOCR",
	StatusOCRCompleted:           "ocrCompleted",
	StatusValidated:              "validated",
	StatusOCRError:               "ocrError",
	StatusOCROutputNotFound:      "ocrOutputNotFound",
	StatusOCROutputDownloadError: "ocrOutputDownloadError",
	StatusOCRDeadLetter:          "ocrDeadLetter",
}

// Valid reports whether s is a known status.
func (s DocumentStatus) Valid() bool {
	_, ok := documentStatusNames[s]
	return ok
}

func (s DocumentStatus) String() string {
	if n, ok := documentStatusNames[s]; ok {
		return n
	}
	return "documentStatus(" + strconv.Itoa(int(s)) + ")"
}

func (s DocumentStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown document status %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts either the status name or its numeric value.
func (s *DocumentStatus) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, documentStatusNames)
	if err != nil {
		return fmt.Errorf("document status: %w", err)
	}
	*s = v
	return nil
}

// IsOCROutcome reports whether s is a status the OCR reconciler may record.
func (s DocumentStatus) IsOCROutcome() bool {
	switch s {
	case StatusOCRCompleted, StatusOCRError, StatusOCROutputNotFound,
		StatusOCROutputDownloadError, StatusOCRDeadLetter:
		return true
	}
	return false
}

// CanTransition reports whether a document may move from one status to another.
//
// Rules:
//   - staying in the same status is always allowed (redelivery, repeated edits)
//   - nothing re-enters waitingOCR once it has been left
//   - validated is terminal
//   - validated is reachable only from ocrCompleted
//   - OCR outcomes are reachable from any other non-validated status
func CanTransition(from, to DocumentStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	switch {
	case from == to:
		return true
	case to == StatusWaitingOCR:
		return false
	case from == StatusValidated:
		return false
	case to == StatusValidated:
		return from == StatusOCRCompleted
	}
	return to.IsOCROutcome()
}

func decodeEnum[T ~int16](b []byte, names map[T]string) (T, error) {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		for v, n := range names {
			if n == name {
				return v, nil
			}
		}
		return 0, fmt.Errorf("unknown value %q", name)
	}
	var num int16
	if err := json.Unmarshal(b, &num); err != nil {
		return 0, fmt.Errorf("expected name or number, got %s", string(b))
	}
	v := T(num)
	if _, ok := names[v]; !ok {
		return 0, fmt.Errorf("unknown value %d", num)
	}
	return v, nil
}
