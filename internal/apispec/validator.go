// Package apispec holds the OpenAPI description of the accounts endpoints and
// checks outgoing JSON bodies against it.
package apispec

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed accounts.yaml
var accountsSpec []byte

// SchemaError is a request body that does not match the described schema
type SchemaError struct {
	Field  string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Validator checks request bodies against the embedded document
type Validator struct {
	router routers.Router
}

// NewValidator loads and validates the embedded document
func NewValidator() (*Validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(accountsSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts spec: %w", err)
	}

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	return &Validator{router: router}, nil
}

// Describes reports whether method and path are part of the document
func (v *Validator) Describes(method, path string) bool {
	req, err := http.NewRequest(method, path, nil)
	if err != nil {
		return false
	}
	_, _, err = v.router.FindRoute(req)
	return err == nil
}

// ValidateJSON checks body as the JSON request body of method and path.
// Operations the document does not describe always pass.
func (v *Validator) ValidateJSON(ctx context.Context, method, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request for validation: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	route, pathParams, err := v.router.FindRoute(req)
	if err != nil {
		var routeErr *routers.RouteError
		if errors.As(err, &routeErr) {
			return nil
		}
		return fmt.Errorf("failed to find route: %w", err)
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	if err := openapi3filter.ValidateRequest(ctx, input); err != nil {
		return toSchemaError(err)
	}
	return nil
}

func toSchemaError(err error) *SchemaError {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return &SchemaError{
			Field:  strings.Join(schemaErr.JSONPointer(), "."),
			Reason: schemaErr.Reason,
			Err:    err,
		}
	}

	var requestErr *openapi3filter.RequestError
	if errors.As(err, &requestErr) {
		reason := requestErr.Reason
		if reason == "" && requestErr.Err != nil {
			reason = requestErr.Err.Error()
		}
		return &SchemaError{Reason: reason, Err: err}
	}

	return &SchemaError{Reason: err.Error(), Err: err}
}
