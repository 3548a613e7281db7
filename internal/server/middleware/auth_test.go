package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator struct {
	validTokens map[string]uuid.UUID
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]uuid.UUID)}
}

func (v *testTokenValidator) ValidateToken(tokenString string) (CompanyIDGetter, error) {
	companyID, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(companyID), nil
}

type testClaims uuid.UUID

func (c testClaims) GetCompanyID() uuid.UUID {
	return uuid.UUID(c)
}

func serve(t *testing.T, validator TokenValidator, authHeader string) (*httptest.ResponseRecorder, bool, uuid.UUID) {
	t.Helper()
	called := false
	var seen uuid.UUID
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, err := GetCompanyID(r)
		require.NoError(t, err)
		seen = id
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	AuthMiddleware(validator)(handler).ServeHTTP(w, req)
	return w, called, seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	validator := newTestTokenValidator()
	companyID := uuid.New()
	validator.validTokens["valid-test-token-123"] = companyID

	for _, header := range []string{"Bearer valid-test-token-123", "bearer valid-test-token-123", "BeArEr  valid-test-token-123"} {
		t.Run(header, func(t *testing.T) {
			w, called, seen := serve(t, validator, header)
			assert.True(t, called)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, companyID, seen)
		})
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["good"] = uuid.New()

	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "missing header", authHeader: ""},
		{name: "missing Bearer prefix", authHeader: "good"},
		{name: "only Bearer", authHeader: "Bearer"},
		{name: "basic auth", authHeader: "Basic good"},
		{name: "extra parts", authHeader: "Bearer good extra"},
		{name: "unknown token", authHeader: "Bearer not.a.valid.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, called, _ := serve(t, validator, tt.authHeader)
			assert.False(t, called, "handler should not be called")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error": "unauthorized"}`, w.Body.String())
		})
	}
}

func TestGetCompanyID(t *testing.T) {
	companyID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req = req.WithContext(WithCompanyID(req.Context(), companyID))

	got, err := GetCompanyID(req)
	require.NoError(t, err)
	assert.Equal(t, companyID, got)
}

func TestGetCompanyID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)

	got, err := GetCompanyID(req)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, got)
	assert.Contains(t, err.Error(), "company ID not found")
}

func TestGetCompanyID_InvalidType(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req = req.WithContext(context.WithValue(req.Context(), companyIDKey, "not-a-uuid"))

	_, err := GetCompanyID(req)
	assert.Error(t, err)
}
