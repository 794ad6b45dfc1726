// Copyright 2025 The Real Router Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package routererr defines the tagged error taxonomy surfaced by the
// router's core components. Every error a caller can usefully branch on
// carries a stable Code; everything else is an opaque wrapped error.
package routererr

import (
	"errors"
	"fmt"
)

// Code identifies one entry of the router's error taxonomy.
type Code string

// The full taxonomy. Every code here is reachable through a public
// operation; see the component that returns it for the exact trigger.
const (
	CodeRouterNotStarted      Code = "router_not_started"
	CodeRouterAlreadyStarted  Code = "router_already_started"
	CodeRouterDisposed        Code = "router_disposed"
	CodeNoStartPathOrState    Code = "no_start_path_or_state"
	CodeRouteNotFound         Code = "route_not_found"
	CodeSameStates            Code = "same_states"
	CodeTransitionCancelled   Code = "transition_cancelled"
	CodeTransitionErr         Code = "transition_err"
	CodeCannotActivate        Code = "cannot_activate"
	CodeCannotDeactivate      Code = "cannot_deactivate"
	CodeCircularForward       Code = "circular_forward"
	CodeForwardDepthExceeded  Code = "forward_depth_exceeded"
	CodeForwardParamMismatch Code = "forward_param_mismatch"
	CodeDependencyNotFound    Code = "dependency_not_found"
	CodeDuplicateListener     Code = "duplicate_listener"
	CodeListenerLimit         Code = "listener_limit"
	CodeRecursionDepth        Code = "recursion_depth"
	CodePluginLimit           Code = "plugin_limit"
	CodeMiddlewareLimit       Code = "middleware_limit"
	CodeDependencyLimit       Code = "dependency_limit"
	CodeLifecycleHandlerLimit Code = "lifecycle_handler_limit"
	CodeInvalidArgument       Code = "invalid_argument"
)

// Error is the single tagged error value returned across the router's
// public surface. Its Code is meant to be switched on; its message and
// wrapped cause are for humans and logs.
type Error struct {
	code    Code
	message string
	err     error
}

// New builds a tagged error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf builds a tagged error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap builds a tagged error around an existing cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{code: code, message: message, err: cause}
}

// Code returns the taxonomy code. Implements an ErrorCode-style
// interface so callers can do:
//
//	var coded interface{ Code() Code }
//	if errors.As(err, &coded) { switch coded.Code() { ... } }
func (e *Error) Code() Code {
	return e.code
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is a *Error with the same code, so
// errors.Is(err, routererr.New(routererr.CodeRouteNotFound, "")) works
// regardless of message text.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.code == e.code
}

// CodeOf extracts the taxonomy code from err, if any. Returns ("", false)
// for untagged errors.
func CodeOf(err error) (Code, bool) {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code, true
	}
	return "", false
}

// Is reports whether err carries the given taxonomy code, unwrapping as
// needed. This is the preferred way for callers to branch on taxonomy
// membership: routererr.Is(err, routererr.CodeSameStates).
func Is(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
