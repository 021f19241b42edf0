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

package exchange

// Handler processes an Exchange to completion. Its return indicates the
// response is fully produced (nil) or failed (non-nil). Handlers must be
// re-entrant and must not block the connection's event loop; CPU-bound work
// should be offloaded and the result published back on return.
type Handler func(*Exchange) error

// Interceptor wraps a Handler, optionally short-circuiting it with a
// synthetic response by never calling next.
type Interceptor func(ex *Exchange, next Handler) error

// Chain composes interceptors around a terminal handler, outermost first.
func Chain(handler Handler, interceptors ...Interceptor) Handler {
	h := handler
	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor := interceptors[i]
		next := h
		h = func(ex *Exchange) error {
			return interceptor(ex, next)
		}
	}
	return h
}

// ErrorHandler processes an ErrorExchange produced when a Handler returns a
// non-nil error while the response is still uncommitted.
type ErrorHandler func(*ErrorExchange) error

// ErrorExchange wraps the original request, a fresh uncommitted Response,
// and the error a Handler terminated with.
type ErrorExchange struct {
	*Exchange
	Cause error
}

// NewErrorExchange constructs an ErrorExchange from the Exchange whose
// handler failed with cause. The original Exchange's Response is replaced
// with a fresh one so the ErrorHandler starts from uncommitted headers.
func NewErrorExchange(orig *Exchange, cause error) *ErrorExchange {
	orig.Response = &Response{Status: 500}
	return &ErrorExchange{Exchange: orig, Cause: cause}
}

// Dispatch runs handler and, if it fails while the response is still
// uncommitted, routes the failure to onError. If the response was already
// committed, the failure is returned as-is so the caller can reset/close
// the connection abruptly instead of writing a second response.
func Dispatch(ex *Exchange, handler Handler, onError ErrorHandler) error {
	err := handler(ex)
	if err == nil {
		ex.Complete()
		return nil
	}
	if ex.Response.Committed() {
		ex.Fail(err)
		return err
	}
	errEx := NewErrorExchange(ex, err)
	if onError == nil {
		ex.Fail(err)
		return err
	}
	if herr := onError(errEx); herr != nil {
		ex.Fail(herr)
		return herr
	}
	ex.Complete()
	return nil
}
