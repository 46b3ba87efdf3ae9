package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Credentials is the payload of register and login submissions.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DecodeCredentialsRequestBody is a helper function to read the content of a register or login request.
func DecodeCredentialsRequestBody(r *http.Request, creds *Credentials) error {
	if r.Body == nil {
		return errors.New("invalid credentials request body")
	}
	return json.NewDecoder(r.Body).Decode(creds)
}

// RegisterForm answers the register route with the expected fields.
func (api *APIHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	resp := GenericResponse(requestID, http.StatusOK, "Registration form available.", nil, map[string]interface{}{
		"fields": []string{"username", "password"},
	})
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// LoginForm answers the login route. Denied or anonymous users are
// redirected here by the permission gate.
func (api *APIHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	resp := GenericResponse(requestID, http.StatusOK, "Authentication required. Submit username and password.", nil, map[string]interface{}{
		"fields": []string{"username", "password"},
	})
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// Register creates a new account. Accounts register as Member, the
// Admin role comes from the auth configuration.
func (api *APIHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	err := DecodeCredentialsRequestBody(r, &creds)
	if err != nil {
		api.logger.Error("failed to register user", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to register the user", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	fieldErrs := ValidateUser(User{Username: creds.Username, Role: RoleMember})
	if strings.TrimSpace(creds.Password) == "" {
		if fieldErrs == nil {
			fieldErrs = make(map[string]string, 1)
		}
		fieldErrs["password"] = "must be provided"
	}
	if fieldErrs != nil {
		api.logger.Error("failed to register user: invalid fields", zap.String("request.id", requestID), zap.Any("fields", fieldErrs))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to register the user", fieldErrs)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	user, err := api.accounts.Register(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, ErrUserExists) {
		api.logger.Error("failed to register user: username taken", zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to register the user", map[string]string{"username": "is already taken"})
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to register user", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to register the user", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to register user", zap.String("user.id", user.ID), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusCreated, "User registered successfully.", nil, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// Login opens a session and hands the session cookie to the client.
func (api *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	err := DecodeCredentialsRequestBody(r, &creds)
	if err != nil {
		api.logger.Error("failed to login user", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to login", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	session, err := api.accounts.Login(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		api.logger.Error("failed to login user: invalid credentials", zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusUnauthorized, "failed to login", map[string]string{"credentials": "are not valid"})
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to login user", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to login", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     api.config.Auth.CookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  api.clock.Now().Add(api.config.Auth.SessionTTL),
	})
	api.logger.Info("success to login user", zap.String("user.id", session.UserID), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Logged in successfully.", nil, map[string]interface{}{
		"username": session.Username,
		"role":     session.Role,
	})
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// Logout destroys the current session and clears the cookie. Anonymous
// callers are redirected to the login route.
func (api *APIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := api.accounts.Logout(r.Context(), session.ID); err != nil {
		api.logger.Error("failed to logout user", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to logout", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     api.config.Auth.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	api.logger.Info("success to logout user", zap.String("user.id", session.UserID), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Logged out successfully.", nil, EmptyData)
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
