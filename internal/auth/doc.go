// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

// Package auth provides account registration, password login and
// cookie-based sessions for the REST API.
//
// Passwords are hashed with bcrypt. A login creates a session in the store
// and hands the client an opaque, HttpOnly cookie holding the session id.
// SessionMiddleware.Authenticate resolves the cookie on every request and
// records the user id in the request context; CurrentUserID reads it back.
// Anonymous requests pass through untouched, because routes may be saved
// without an account.
package auth
