// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrTransport matches every failure to obtain a reply from a provider.
// Use errors.Is(err, ErrTransport) rather than comparing directly.
var ErrTransport = errors.New("transport failure")

// ErrorKind categorizes transport errors for logging and retry decisions.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConnection
	KindTimeout
	KindStatus
	KindDecode
	KindAuth
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// TransportError describes a failed provider call.
type TransportError struct {
	Provider string
	Kind     ErrorKind
	Status   int // HTTP status when Kind is KindStatus or KindAuth
	Message  string
	Cause    error
}

func (e *TransportError) Error() string {
	msg := e.Provider + ": " + e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is reports ErrTransport as a match for every TransportError.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// IsTimeout checks if an error is a transport timeout.
func IsTimeout(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind == KindTimeout
	}
	return false
}

// classify wraps a low-level request error, telling timeouts apart from
// other connection failures.
func classify(provider string, err error) *TransportError {
	kind := KindConnection
	msg := "request failed"

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind, msg = KindTimeout, "request timed out"
	case errors.As(err, &netErr) && netErr.Timeout():
		kind, msg = KindTimeout, "request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	}
	return &TransportError{Provider: provider, Kind: kind, Message: msg, Cause: err}
}

// statusError builds the error for a non-2xx HTTP response.
func statusError(provider string, status int, detail string) *TransportError {
	kind := KindStatus
	if status == 401 || status == 403 {
		kind = KindAuth
	}
	msg := "unexpected status"
	if detail != "" {
		msg = detail
	}
	return &TransportError{Provider: provider, Kind: kind, Status: status, Message: msg}
}
