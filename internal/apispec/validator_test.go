package apispec_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/brizzai/dishom-client/internal/apispec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateJSON(t *testing.T) {
	validator, err := apispec.NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		method    string
		path      string
		body      string
		wantErr   bool
		wantField string
	}{
		{
			name:   "valid login",
			method: http.MethodPost,
			path:   "/api/accounts/login/",
			body:   `{"mobile_number":"1234567890","password":"password123"}`,
		},
		{
			name:      "login without password",
			method:    http.MethodPost,
			path:      "/api/accounts/login/",
			body:      `{"mobile_number":"1234567890"}`,
			wantErr:   true,
			wantField: "password",
		},
		{
			name:      "login with empty mobile number",
			method:    http.MethodPost,
			path:      "/api/accounts/login/",
			body:      `{"mobile_number":"","password":"x"}`,
			wantErr:   true,
			wantField: "mobile_number",
		},
		{
			name:   "valid registration",
			method: http.MethodPost,
			path:   "/api/accounts/register/",
			body:   `{"full_name":"Asha Rao","mobile_number":"1234567890","password":"secret1"}`,
		},
		{
			name:    "password reset with malformed email",
			method:  http.MethodPost,
			path:    "/api/accounts/password/reset/",
			body:    `{"email":"not-an-email"}`,
			wantErr: true,
		},
		{
			name:   "profile update keeps unknown fields",
			method: http.MethodPut,
			path:   "/api/accounts/me/",
			body:   `{"full_name":"Asha Rao","pincode":"","school":"GHS"}`,
		},
		{
			name:      "profile update with short phone",
			method:    http.MethodPut,
			path:      "/api/accounts/me/",
			body:      `{"mobile_number":"12345"}`,
			wantErr:   true,
			wantField: "mobile_number",
		},
		{
			name:   "undescribed path passes",
			method: http.MethodGet,
			path:   "/api/dashboard/metrics/?range=24h",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateJSON(context.Background(), tt.method, tt.path, []byte(tt.body))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var schemaErr *apispec.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, schemaErr.Field)
			}
		})
	}
}

func TestValidator_Describes(t *testing.T) {
	validator, err := apispec.NewValidator()
	require.NoError(t, err)

	assert.True(t, validator.Describes(http.MethodGet, "/api/accounts/me/"))
	assert.True(t, validator.Describes(http.MethodPut, "/api/accounts/me/"))
	assert.False(t, validator.Describes(http.MethodDelete, "/api/accounts/me/"))
	assert.False(t, validator.Describes(http.MethodGet, "/api/dashboard/metrics/"))
}
