// Copyright 2025 The Rivaas Authors
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

package neterr

import (
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Error is the error type returned by every engine, decoder, and resolver in
// this module. It carries an RFC 9457-shaped problem detail for surfacing
// over HTTP and maps to a gRPC status code for surfacing over gRPC trailers.
type Error struct {
	Kind     Kind
	Detail   string
	Instance string // request path, set by the connection engine when known
	Err      error  // wrapped cause, if any
}

// New creates an Error of the given Kind with a formatted detail message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given Kind wrapping an underlying cause.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Detail: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus satisfies the ErrorType-style status seam: callers needing only
// a status code don't need to know about ProblemDetail.
func (e *Error) HTTPStatus() int { return e.Kind.HTTPStatus() }

// ProblemDetail is the RFC 9457 (application/problem+json) body produced for
// an Error crossing an HTTP connection engine.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Problem converts e into its RFC 9457 wire representation.
func (e *Error) Problem() ProblemDetail {
	status := e.HTTPStatus()
	return ProblemDetail{
		Type:     "about:blank#" + string(e.Kind),
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   e.Detail,
		Instance: e.Instance,
	}
}

// grpcCode maps an Error's Kind directly to a gRPC status code for Kinds
// with a direct gRPC counterpart (CANCELED, DEADLINE_EXCEEDED,
// RESOURCE_EXHAUSTED, UNAVAILABLE), plus STREAM_CONTENTION -> ABORTED,
// UPGRADE_REFUSED/ILLEGAL_SCHEME/UNSUPPORTED_TYPE -> INVALID_ARGUMENT and
// UNSUPPORTED_MEDIA_TYPE -> UNIMPLEMENTED; every other Kind falls through to
// CodeFromHTTPStatus, matching spec's HTTP->gRPC status table.
func (e *Error) grpcCode() codes.Code {
	switch e.Kind {
	case Canceled:
		return codes.Canceled
	case DeadlineExceeded:
		return codes.DeadlineExceeded
	case ResourceExhausted:
		return codes.ResourceExhausted
	case Unavailable:
		return codes.Unavailable
	case StreamContention:
		return codes.Aborted
	case UpgradeRefused, IllegalScheme, UnsupportedType:
		return codes.InvalidArgument
	case UnsupportedMedia:
		return codes.Unimplemented
	default:
		return CodeFromHTTPStatus(e.HTTPStatus())
	}
}

// GRPCCode returns the gRPC status code this Error maps to.
func (e *Error) GRPCCode() codes.Code { return e.grpcCode() }

// CodeFromHTTPStatus implements the HTTP->gRPC status mapping table:
// 400->INTERNAL, 401->UNAUTHENTICATED, 403->PERMISSION_DENIED,
// 404->UNIMPLEMENTED, 408->CANCELED, 429/502/503/504->UNAVAILABLE,
// other 5xx->INTERNAL.
func CodeFromHTTPStatus(status int) codes.Code {
	switch status {
	case http.StatusBadRequest:
		return codes.Internal
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.Unimplemented
	case http.StatusRequestTimeout:
		return codes.Canceled
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return codes.Unavailable
	}
	if status >= 500 {
		return codes.Internal
	}
	return codes.Unknown
}
