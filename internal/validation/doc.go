// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

// Package validation validates ingestion input and configuration using
// go-playground/validator v10.
//
// The package keeps one thread-safe validator instance. It reports fields by
// their JSON names and registers one custom rule:
//
//	notblank   string must contain a non-whitespace character
//
// # Usage
//
//	if verr := validation.ValidateStruct(product); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // {"code": "VALIDATION_ERROR", "message": "name is required", ...}
//	}
//
// ValidateStruct returns a *RequestValidationError; compare it with nil
// before converting it to the error interface.
//
// # Messages
//
//	required   -> "name is required"
//	notblank   -> "category must not be blank"
//	email      -> "email must be a valid email address"
//	gt=0       -> "id must be greater than 0"
//	max=128    -> "username must be at most 128 characters"
package validation
