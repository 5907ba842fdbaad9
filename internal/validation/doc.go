// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by configuration loading and the
// admin API request handlers. Failures are reported as
// *RequestValidationError, which renders to the API's VALIDATION_ERROR
// shape through ToAPIError.
//
//	type ExtractRequest struct {
//	    Query string `json:"query" validate:"required,max=500"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
//	    return
//	}
//
// # Custom Tags
//
//   - listingid: 1 to 64 characters from letters, digits, '-' and '_'
package validation
