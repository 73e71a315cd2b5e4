package requester

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

const contentTypeJSON = "application/json"

// Init carries the per-call options of a request
type Init struct {
	// Method defaults to GET
	Method string
	// Headers are merged over the computed ones, the caller wins
	Headers map[string]string
	// Body is nil, JSON(...), RawJSON or a *Form
	Body Body
}

// Body is a request payload. It is encoded once per call so that the
// refresh retry resends exactly the same bytes.
type Body interface {
	encode() (data []byte, contentType string, err error)
}

type jsonBody struct {
	value any
}

// JSON encodes v as the JSON request body
func JSON(v any) Body {
	return jsonBody{value: v}
}

func (b jsonBody) encode() ([]byte, string, error) {
	data, err := json.Marshal(b.value)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, contentTypeJSON, nil
}

// RawJSON is an already encoded JSON request body
type RawJSON []byte

func (b RawJSON) encode() ([]byte, string, error) {
	return []byte(b), contentTypeJSON, nil
}

// FormFile is a file part of a multipart form
type FormFile struct {
	FieldName string
	FileName  string
	Content   io.Reader
}

type formField struct {
	name  string
	value string
}

// Form is a multipart/form-data request body. The multipart boundary is
// chosen when the form is encoded, the JSON content type is never applied.
type Form struct {
	fields []formField
	files  []FormFile
}

// NewForm creates an empty Form
func NewForm() *Form {
	return &Form{}
}

// Add appends a text field
func (f *Form) Add(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile appends a file part, content is read when the form is encoded
func (f *Form) AddFile(fieldName, fileName string, content io.Reader) *Form {
	f.files = append(f.files, FormFile{FieldName: fieldName, FileName: fileName, Content: content})
	return f
}

// Fields returns the text fields as a map, later values win
func (f *Form) Fields() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, field := range f.fields {
		out[field.name] = field.value
	}
	return out
}

func (f *Form) encode() ([]byte, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, file := range f.files {
		part, err := writer.CreateFormFile(file.FieldName, file.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("failed to copy file: %w", err)
		}
	}

	for _, field := range f.fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body.Bytes(), writer.FormDataContentType(), nil
}
