package ocr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrMalformed is returned for result messages that carry neither a list nor a code outcome.
var ErrMalformed = errors.New("malformed ocr result message")

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

// ResultError is one problem reported by the OCR engine.
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the normalized form of a message from the output queue.
type Result struct {
	DocumentID        string
	OutPath           string
	OutCustomFilename string
	Outcome           Outcome
	Errors            []ResultError
}

// OutputKey is the storage key of the custom output file, empty when the message lacks it.
func (r Result) OutputKey() string {
	if r.OutPath == "" || r.OutCustomFilename == "" {
		return ""
	}
	return path.Join(r.OutPath, r.OutCustomFilename)
}

type resultNote struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type resultEnvelope struct {
	DocumentID        string          `json:"documentId"`
	OutPath           string          `json:"outPath"`
	OutCustomFilename string          `json:"outCustomFilename"`
	Errors            json.RawMessage `json:"errors"`
	Messages          json.RawMessage `json:"messages"`
	Result            json.RawMessage `json:"result"`
}

// DecodeResult parses a result message. Two shapes are accepted:
//
//	{"errors":[{"code","message"}], "messages":[{"type","message"}]}  list shape
//	{"result": "success" | 0 | true | ...}                           code shape
//
// In the list shape any entry in errors, or any message of type "error", is a failure.
// A result code other than a success value is a failure whichever shape carries it.
func DecodeResult(body []byte) (Result, error) {
	var env resultEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.DocumentID == "" {
		return Result{}, fmt.Errorf("%w: missing documentId", ErrMalformed)
	}

	res := Result{
		DocumentID:        env.DocumentID,
		OutPath:           env.OutPath,
		OutCustomFilename: env.OutCustomFilename,
	}

	listShape := present(env.Errors) || present(env.Messages)
	if !listShape && !present(env.Result) {
		return Result{}, fmt.Errorf("%w: neither errors/messages nor result", ErrMalformed)
	}
	if listShape {
		failures, err := listFailures(env.Errors, env.Messages)
		if err != nil {
			return Result{}, err
		}
		res.Errors = failures
	}
	// both shapes may be present, a failure in either one wins
	if present(env.Result) && !codeSucceeded(env.Result) {
		res.Errors = append(res.Errors, ResultError{Code: string(env.Result), Message: "ocr engine reported failure"})
	}

	if len(res.Errors) > 0 {
		res.Outcome = OutcomeFailure
	}
	return res, nil
}

// PeekDocumentID extracts documentId without validating the rest of the message.
func PeekDocumentID(body []byte) string {
	var env struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.DocumentID
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func listFailures(errs, msgs json.RawMessage) ([]ResultError, error) {
	var out []ResultError
	if present(errs) {
		var list []ResultError
		if err := json.Unmarshal(errs, &list); err != nil {
			return nil, fmt.Errorf("%w: errors: %v", ErrMalformed, err)
		}
		out = append(out, list...)
	}
	if present(msgs) {
		var notes []resultNote
		if err := json.Unmarshal(msgs, &notes); err != nil {
			return nil, fmt.Errorf("%w: messages: %v", ErrMalformed, err)
		}
		for _, n := range notes {
			if strings.EqualFold(n.Type, "error") {
				out = append(out, ResultError{Code: n.Code, Message: n.Message})
			}
		}
	}
	return out, nil
}

func codeSucceeded(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "success", "ok", "completed":
			return true
		}
	case float64:
		return t == 0
	case bool:
		return t
	}
	return false
}
