package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/db/dbtest"
	"github.com/jonathan/interview-agent/internal/server/middleware"
	"github.com/jonathan/interview-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestAuthHandler creates an AuthHandler backed by an in-memory store.
func setupTestAuthHandler(_ *testing.T) (*AuthHandler, *JWTService) {
	jwtSvc := NewJWTService(&config.JWTConfig{
		Secret:          testJWTSecret,
		Issuer:          "interview-agent",
		ExpirationHours: 24,
	})
	userSvc := NewUserService(dbtest.NewStore(), fastPasswords)
	return NewAuthHandler(userSvc, jwtSvc), jwtSvc
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any, companyID *uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if companyID != nil {
		req = req.WithContext(middleware.WithCompanyID(req.Context(), *companyID))
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func registerBody() map[string]string {
	return map[string]string{
		"name":         "Grace Hopper",
		"company_name": "Acme",
		"email":        "Grace@Acme.test",
		"password":     "correct-horse",
	}
}

func TestAuthHandler_Register(t *testing.T) {
	handler, jwtSvc := setupTestAuthHandler(t)

	w := postJSON(t, handler.Register, "/auth/register", registerBody(), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "grace@acme.test", resp.User.Email)
	assert.Equal(t, "Acme", resp.User.CompanyName)
	assert.True(t, resp.User.PasswordSet)

	claims, err := jwtSvc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.CompanyID)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)

	require.Equal(t, http.StatusCreated, postJSON(t, handler.Register, "/auth/register", registerBody(), nil).Code)
	w := postJSON(t, handler.Register, "/auth/register", registerBody(), nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)

	w := postJSON(t, handler.Register, "/auth/register", "invalid json", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		wantMsg string
	}{
		{"missing email", func(b map[string]string) { delete(b, "email") }, "Email - required"},
		{"invalid email", func(b map[string]string) { b["email"] = "not-an-email" }, "Email - email"},
		{"short password", func(b map[string]string) { b["password"] = "short" }, "Password - min"},
		{"missing company", func(b map[string]string) { delete(b, "company_name") }, "CompanyName - required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := setupTestAuthHandler(t)
			body := registerBody()
			tt.mutate(body)

			w := postJSON(t, handler.Register, "/auth/register", body, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantMsg)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)
	require.Equal(t, http.StatusCreated, postJSON(t, handler.Register, "/auth/register", registerBody(), nil).Code)

	t.Run("valid credentials", func(t *testing.T) {
		w := postJSON(t, handler.Login, "/auth/login", map[string]string{"email": "grace@acme.test", "password": "correct-horse"}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp types.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postJSON(t, handler.Login, "/auth/login", map[string]string{"email": "grace@acme.test", "password": "wrong-horse"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		w := postJSON(t, handler.Login, "/auth/login", map[string]string{"email": "nobody@acme.test", "password": "correct-horse"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		w := postJSON(t, handler.Login, "/auth/login", "{", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)
	w := postJSON(t, handler.Register, "/auth/register", registerBody(), nil)
	var reg types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.WithCompanyID(req.Context(), reg.User.ID))
	w = httptest.NewRecorder()
	handler.Me(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var user types.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, reg.User.ID, user.ID)

	t.Run("unknown account", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(middleware.WithCompanyID(req.Context(), uuid.New()))
		w := httptest.NewRecorder()
		handler.Me(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)
	w := postJSON(t, handler.Register, "/auth/register", registerBody(), nil)
	var reg types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	id := reg.User.ID

	t.Run("missing company", func(t *testing.T) {
		w := postJSON(t, handler.UpdatePassword, "/auth/password", map[string]string{"current_password": "correct-horse", "new_password": "battery-staple"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong current password", func(t *testing.T) {
		w := postJSON(t, handler.UpdatePassword, "/auth/password", map[string]string{"current_password": "nope-nope", "new_password": "battery-staple"}, &id)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("short new password", func(t *testing.T) {
		w := postJSON(t, handler.UpdatePassword, "/auth/password", map[string]string{"current_password": "correct-horse", "new_password": "short"}, &id)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		w := postJSON(t, handler.UpdatePassword, "/auth/password", map[string]string{"current_password": "correct-horse", "new_password": "battery-staple"}, &id)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Password updated successfully")

		w = postJSON(t, handler.Login, "/auth/login", map[string]string{"email": "grace@acme.test", "password": "battery-staple"}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
