package requester

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNotJSON is returned when decoding a text payload into a structure
var ErrNotJSON = errors.New("payload is not JSON")

// Payload is a response body, either JSON or raw text
type Payload struct {
	Raw         []byte
	ContentType string
}

// IsJSON reports whether the response declared a JSON body
func (p Payload) IsJSON() bool {
	return strings.Contains(p.ContentType, contentTypeJSON)
}

// Text returns the body as a string
func (p Payload) Text() string {
	return string(p.Raw)
}

// Get reads a gjson path out of a JSON payload. Text payloads yield an empty result.
func (p Payload) Get(path string) gjson.Result {
	if !p.IsJSON() {
		return gjson.Result{}
	}
	return gjson.GetBytes(p.Raw, path)
}

// Decode unmarshals a JSON payload into v. A text payload can only be decoded
// into a *string.
func (p Payload) Decode(v any) error {
	if !p.IsJSON() {
		if s, ok := v.(*string); ok {
			*s = p.Text()
			return nil
		}
		return ErrNotJSON
	}
	if err := json.Unmarshal(p.Raw, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// ErrorKind classifies a failed outcome
type ErrorKind string

const (
	// KindNetwork covers transport failures and unparseable responses
	KindNetwork ErrorKind = "network"
	// KindAPI is a non-2xx response from the backend
	KindAPI ErrorKind = "api"
	// KindValidation is a request rejected before it reached the network
	KindValidation ErrorKind = "validation"
)

const networkErrorMessage = "Network error"

// Error is the failure side of an Outcome
type Error struct {
	Kind   ErrorKind
	Status int
	Body   Payload
	Err    error
}

// NetworkError wraps a transport or parse failure
func NetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

// ValidationError wraps a client side validation failure
func ValidationError(err error) *Error {
	return &Error{Kind: KindValidation, Err: err}
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNetwork:
		return networkErrorMessage
	case KindValidation:
		return e.Err.Error()
	default:
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message())
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the backend error code, e.g. token_not_valid
func (e *Error) Code() string {
	return e.Body.Get("code").String()
}

// Message returns a human readable description of the failure: the backend
// detail or message when present, otherwise the raw body.
func (e *Error) Message() string {
	switch e.Kind {
	case KindNetwork:
		return networkErrorMessage
	case KindValidation:
		return e.Err.Error()
	}
	for _, field := range []string{"detail", "message", "error"} {
		if v := e.Body.Get(field); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	if text := strings.TrimSpace(e.Body.Text()); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Outcome is the result of a request: exactly one of Data and Error is set
type Outcome struct {
	Data  *Payload
	Error *Error
}

// OK reports whether the request succeeded
func (o Outcome) OK() bool {
	return o.Error == nil
}

func success(p Payload) Outcome {
	return Outcome{Data: &p}
}

func failure(err *Error) Outcome {
	return Outcome{Error: err}
}
