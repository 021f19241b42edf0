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

package logging

import (
	"sync"
	"time"

	"github.com/rivaas-dev/netkit/exchange"
)

// Pool capacities for performance tuning.
const defaultAttrCapacity = 32

// interceptorConfig holds configuration for the exchange logging interceptor.
type interceptorConfig struct {
	skipPaths  map[string]bool
	logHeaders bool
}

// attrSlicePool reduces allocations in the hot path by reusing attribute
// slices across Exchanges.
var attrSlicePool = sync.Pool{
	New: func() any {
		s := make([]any, 0, defaultAttrCapacity)
		return &s
	},
}

// InterceptorOption configures [Interceptor].
type InterceptorOption func(*interceptorConfig)

// WithSkipPaths configures paths that should not be logged. Useful for
// health check and metrics endpoints that create log noise.
func WithSkipPaths(paths ...string) InterceptorOption {
	return func(cfg *interceptorConfig) {
		if cfg.skipPaths == nil {
			cfg.skipPaths = make(map[string]bool)
		}
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

// WithLogHeaders enables logging of request headers.
// Default: false (headers are not logged for security/privacy).
func WithLogHeaders(enabled bool) InterceptorOption {
	return func(cfg *interceptorConfig) { cfg.logHeaders = enabled }
}

// Interceptor returns an [exchange.Interceptor] that logs one "exchange
// started"/"exchange completed" pair per Exchange, correlated via
// [WithExchangeID] when the context carries one.
//
// Example:
//
//	logger := logging.MustNew(logging.WithJSONHandler())
//	h := exchange.Chain(handler, logging.Interceptor(logger))
func Interceptor(logger *Logger, opts ...InterceptorOption) exchange.Interceptor {
	cfg := &interceptorConfig{skipPaths: make(map[string]bool)}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ex *exchange.Exchange, next exchange.Handler) error {
		if cfg.skipPaths[ex.Request.Path] {
			return next(ex)
		}

		start := time.Now()
		cl := NewContextLogger(ex.Context(), logger)

		attrsPtr := attrSlicePool.Get().(*[]any)
		attrs := (*attrsPtr)[:0]
		defer func() {
			*attrsPtr = (*attrsPtr)[:0]
			attrSlicePool.Put(attrsPtr)
		}()

		attrs = append(attrs, "method", ex.Request.Method, "path", ex.Request.Path)
		if cfg.logHeaders {
			for _, h := range ex.Request.Headers {
				attrs = append(attrs, "hdr."+h.Name, h.Value)
			}
		}
		cl.Info("exchange started", attrs...)

		err := next(ex)

		dur := time.Since(start)
		status := ex.Response.Status
		completionAttrs := []any{
			"status", status,
			"disposition", ex.Disposition().String(),
			"duration", dur.String(),
		}
		if err != nil {
			completionAttrs = append(completionAttrs, "error", err.Error())
		}

		switch {
		case status >= statusErrorStart || err != nil:
			cl.Error("exchange completed", completionAttrs...)
		case status >= statusWarnStart:
			cl.Warn("exchange completed", completionAttrs...)
		default:
			cl.Info("exchange completed", completionAttrs...)
		}

		return err
	}
}

const (
	statusWarnStart  = 400
	statusErrorStart = 500
)
