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
	"context"
	"log/slog"
)

// Semantic field name used to correlate log lines with one Exchange.
const fieldExchangeID = "exchange_id"

type exchangeIDKey struct{}

// WithExchangeID returns a context carrying the given exchange correlation
// id, so that a [ContextLogger] built from it tags every line with it.
func WithExchangeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, exchangeIDKey{}, id)
}

// ExchangeIDFromContext returns the exchange id attached by
// [WithExchangeID], or "" if none is present.
func ExchangeIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(exchangeIDKey{}).(string)
	return id
}

// ContextLogger provides context-aware logging with automatic exchange
// correlation.
//
// Why this exists:
//   - Connection engines process many exchanges concurrently; manually
//     threading an id through every log call is error-prone and verbose
//   - This extracts it automatically from the context the engine already
//     carries per-exchange
//
// Thread-safe: Safe to use concurrently. Each instance is typically
// created per-exchange and used by a single goroutine.
type ContextLogger struct {
	logger     *slog.Logger
	ctx        context.Context
	exchangeID string
}

// NewContextLogger creates a context-aware logger. If the context carries
// an exchange id (see [WithExchangeID]), it is attached to every log entry.
func NewContextLogger(ctx context.Context, logger *Logger) *ContextLogger {
	sl := logger.Logger()

	if id := ExchangeIDFromContext(ctx); id != "" {
		sl = sl.With(fieldExchangeID, id)
		return &ContextLogger{logger: sl, ctx: ctx, exchangeID: id}
	}

	return &ContextLogger{logger: sl, ctx: ctx}
}

// Logger returns the underlying [slog.Logger].
func (cl *ContextLogger) Logger() *slog.Logger {
	return cl.logger
}

// ExchangeID returns the exchange id if available.
func (cl *ContextLogger) ExchangeID() string {
	return cl.exchangeID
}

// With returns a [slog.Logger] with additional attributes.
func (cl *ContextLogger) With(args ...any) *slog.Logger {
	return cl.logger.With(args...)
}

// Debug logs a debug message with context.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with context.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning message with context.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error message with context.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}
