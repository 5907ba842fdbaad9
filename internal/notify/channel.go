// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Channel sends a rendered message to one recipient.
type Channel interface {
	// Name returns the channel identifier used in metrics.
	Name() string

	// Send delivers msg. Failures are returned as *DeliveryError.
	Send(ctx context.Context, msg *Message) error
}

// Message is a rendered notification.
type Message struct {
	// ID is a unique notification identifier, sent as a header.
	ID string

	To      string
	ToName  string
	Subject string

	BodyText string
	BodyHTML string
}

// Error codes for delivery failures.
const (
	ErrorCodeInvalidConfig     = "INVALID_CONFIG"
	ErrorCodeInvalidRecipient  = "INVALID_RECIPIENT"
	ErrorCodeConnectionFailed  = "CONNECTION_FAILED"
	ErrorCodeAuthFailed        = "AUTH_FAILED"
	ErrorCodeRateLimited       = "RATE_LIMITED"
	ErrorCodeContentTooLarge   = "CONTENT_TOO_LARGE"
	ErrorCodeRecipientNotFound = "RECIPIENT_NOT_FOUND"
	ErrorCodeServerError       = "SERVER_ERROR"
	ErrorCodeTimeout           = "TIMEOUT"
	ErrorCodeUnknown           = "UNKNOWN"
)

// DeliveryError is a classified channel failure.
type DeliveryError struct {
	Code string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying later may succeed.
func (e *DeliveryError) Transient() bool {
	return isTransientCode(e.Code)
}

// IsTransient reports whether err is a transient *DeliveryError.
// Unclassified errors are treated as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Transient()
	}
	return true
}

func isTransientCode(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeRateLimited, ErrorCodeServerError:
		return true
	default:
		return false
	}
}

// ValidateEmail validates an email address format.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email address is required")
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return fmt.Errorf("invalid email address format: %s", email)
	}
	if !strings.Contains(domain, ".") {
		return fmt.Errorf("invalid email domain: %s", domain)
	}
	if strings.ContainsAny(email, "\r\n<>") {
		return fmt.Errorf("invalid characters in email address: %q", email)
	}
	return nil
}
