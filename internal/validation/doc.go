// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

/*
Package validation validates API request structs with go-playground/validator v10.

A single validator instance is built once and shared; it caches struct
metadata, so building one per request would be wasteful. Field names in error
messages are taken from the json tag, so clients see the same names they sent.

Custom tags:

  - username: letters, digits, '.', '_' and '-' only

Example:

	type registerRequest struct {
	    Username string `json:"username" validate:"required,min=3,max=50,username"`
	    Password string `json:"password" validate:"required,min=6,max=72"`
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
	    apiErr := verr.ToAPIError()
	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
	    return
	}
*/
package validation
