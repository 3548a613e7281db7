package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/interview-agent/internal/types"
)

// AuthHandler handles company account registration, login and password changes.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
	}
}

// Register handles company registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "register", err)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		writeError(w, "register", err)
		return
	}
	h.issueToken(w, http.StatusCreated, user)
}

// Login handles login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "login", err)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	h.issueToken(w, http.StatusOK, user)
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		writeError(w, "issue token", fmt.Errorf("failed to generate token: %w", err))
		return
	}
	jsonResponse(w, status, types.LoginResponse{User: user, Token: token})
}

// Me returns the authenticated company account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Me(r.Context(), companyID)
	if err != nil {
		writeError(w, "get account", err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// UpdatePassword changes the authenticated account's password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}

	var req types.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "update password", err)
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), companyID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, "update password", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		// Return first validation error for simplicity
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
