package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserRequest_Validation(t *testing.T) {
	v := validator.New()

	valid := func() CreateUserRequest {
		return CreateUserRequest{
			Name:        "John Doe",
			CompanyName: "Acme Hiring",
			Email:       "john@example.com",
			Password:    "password123",
			Phone:       "555-0100",
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateUserRequest)
		wantErr bool
		errMsg  string
	}{
		{name: "valid request", mutate: func(r *CreateUserRequest) {}},
		{name: "valid request without phone", mutate: func(r *CreateUserRequest) { r.Phone = "" }},
		{name: "missing name", mutate: func(r *CreateUserRequest) { r.Name = "" }, wantErr: true, errMsg: "required"},
		{name: "missing company name", mutate: func(r *CreateUserRequest) { r.CompanyName = "" }, wantErr: true, errMsg: "CompanyName"},
		{name: "missing email", mutate: func(r *CreateUserRequest) { r.Email = "" }, wantErr: true, errMsg: "required"},
		{name: "invalid email format", mutate: func(r *CreateUserRequest) { r.Email = "not-an-email" }, wantErr: true, errMsg: "email"},
		{name: "missing password", mutate: func(r *CreateUserRequest) { r.Password = "" }, wantErr: true, errMsg: "required"},
		{name: "password too short", mutate: func(r *CreateUserRequest) { r.Password = "short" }, wantErr: true, errMsg: "min"},
		{name: "password exactly 8 characters", mutate: func(r *CreateUserRequest) { r.Password = "12345678" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			err := v.Struct(req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoginRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request LoginRequest
		wantErr bool
	}{
		{name: "valid request", request: LoginRequest{Email: "john@example.com", Password: "password123"}},
		{name: "missing email", request: LoginRequest{Password: "password123"}, wantErr: true},
		{name: "invalid email format", request: LoginRequest{Email: "not-an-email", Password: "password123"}, wantErr: true},
		{name: "missing password", request: LoginRequest{Email: "john@example.com"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUpdatePasswordRequest_Validate(t *testing.T) {
	req := UpdatePasswordRequest{CurrentPassword: "oldpassword123", NewPassword: "newpassword456"}
	require.NoError(t, req.Validate())

	req.NewPassword = "short"
	require.Error(t, req.Validate())

	req.CurrentPassword = ""
	req.NewPassword = "12345678"
	require.Error(t, req.Validate())
}

func TestLoginResponse_Serialization(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	response := LoginResponse{
		User: &User{
			ID:          userID,
			Name:        "John Doe",
			CompanyName: "Acme Hiring",
			Email:       "john@example.com",
			PasswordSet: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Token: "test-jwt-token-12345",
	}

	jsonBytes, err := json.Marshal(response)
	require.NoError(t, err)

	jsonStr := string(jsonBytes)
	assert.Contains(t, jsonStr, userID.String())
	assert.Contains(t, jsonStr, `"company_name":"Acme Hiring"`)
	assert.NotContains(t, jsonStr, "password_hash")

	var unmarshaled LoginResponse
	require.NoError(t, json.Unmarshal(jsonBytes, &unmarshaled))
	assert.Equal(t, "test-jwt-token-12345", unmarshaled.Token)
	require.NotNil(t, unmarshaled.User)
	assert.Equal(t, userID, unmarshaled.User.ID)
}
