// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/sailmap/internal/auth"
	"github.com/tomtom215/sailmap/internal/database"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50,username"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DisplayName string `json:"displayName" validate:"max=100"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserView is the public part of an account.
type UserView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

func userView(u *database.User) *UserView {
	return &UserView{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName}
}

// Register creates an account and logs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Password, req.DisplayName)
	if errors.Is(err, database.ErrUsernameTaken) {
		respondError(w, r, http.StatusConflict, CodeConflict, "Username already exists", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to create account", err)
		return
	}

	if _, err := h.sessions.StartSession(w, r, user.ID); err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to create account", err)
		return
	}
	respondData(w, r, http.StatusCreated, userView(user))
}

// Login verifies credentials and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondError(w, r, http.StatusUnauthorized, CodeUnauthorized, "Invalid username or password", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to login", err)
		return
	}

	if _, err := h.sessions.StartSession(w, r, user.ID); err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to login", err)
		return
	}
	respondData(w, r, http.StatusOK, userView(user))
}

// Logout ends the session. Logging out without a session succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.EndSession(w, r); err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to logout", err)
		return
	}
	respondData(w, r, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the logged-in user, or {"user": null}.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	var view *UserView

	if id, ok := auth.CurrentUserID(r.Context()); ok {
		user, err := h.accounts.User(r.Context(), id)
		switch {
		case err == nil:
			view = userView(user)
		case errors.Is(err, database.ErrNotFound):
			// Account removed while the session lived on.
		default:
			respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to get user", err)
			return
		}
	}

	respondData(w, r, http.StatusOK, map[string]*UserView{"user": view})
}
