package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResult(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		outcome Outcome
		errors  int
	}{
		{"list shape no errors", `{"documentId":"d","outPath":"p","outCustomFilename":"d_custom.json","errors":[]}`, OutcomeSuccess, 0},
		{"list shape with errors", `{"documentId":"d","errors":[{"code":"E1","message":"unreadable"}]}`, OutcomeFailure, 1},
		{"info messages only", `{"documentId":"d","messages":[{"type":"info","message":"2 pages"}]}`, OutcomeSuccess, 0},
		{"error typed message", `{"documentId":"d","messages":[{"type":"Error","message":"bad form"}]}`, OutcomeFailure, 1},
		{"code string ok", `{"documentId":"d","result":"OK"}`, OutcomeSuccess, 0},
		{"code string completed", `{"documentId":"d","result":"completed"}`, OutcomeSuccess, 0},
		{"code zero", `{"documentId":"d","result":0}`, OutcomeSuccess, 0},
		{"code true", `{"documentId":"d","result":true}`, OutcomeSuccess, 0},
		{"code non zero", `{"documentId":"d","result":3}`, OutcomeFailure, 1},
		{"code false", `{"documentId":"d","result":false}`, OutcomeFailure, 1},
		{"code unknown string", `{"documentId":"d","result":"timeout"}`, OutcomeFailure, 1},
		{"empty errors with failed code", `{"documentId":"d","outPath":"p","outCustomFilename":"f","errors":[],"result":"failed"}`, OutcomeFailure, 1},
		{"empty errors with ok code", `{"documentId":"d","errors":[],"result":"ok"}`, OutcomeSuccess, 0},
		{"listed error and failed code", `{"documentId":"d","errors":[{"code":"E1","message":"x"}],"result":2}`, OutcomeFailure, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DecodeResult([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, "d", res.DocumentID)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Len(t, res.Errors, tt.errors)
		})
	}
}

func TestDecodeResult_Malformed(t *testing.T) {
	bodies := map[string]string{
		"not json":        `nope`,
		"no shape":        `{"documentId":"d","outPath":"p"}`,
		"null shapes":     `{"documentId":"d","errors":null,"result":null}`,
		"missing id":      `{"result":"ok"}`,
		"errors not list": `{"documentId":"d","errors":"boom"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeResult([]byte(body))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestResult_OutputKey(t *testing.T) {
	r := Result{OutPath: "Doe-John-abc123/DA/ocr", OutCustomFilename: "d_custom.json"}
	assert.Equal(t, "Doe-John-abc123/DA/ocr/d_custom.json", r.OutputKey())
	assert.Empty(t, Result{OutPath: "x"}.OutputKey())
}

func TestPeekDocumentID(t *testing.T) {
	assert.Equal(t, "d", PeekDocumentID([]byte(`{"documentId":"d","result":{}}`)))
	assert.Empty(t, PeekDocumentID([]byte(`garbage`)))
}
