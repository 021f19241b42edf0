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

package exchange_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/netkit/exchange"
)

func newExchange() *exchange.Exchange {
	return exchange.New(context.Background(), &exchange.Request{Method: "GET", Path: "/"})
}

func TestExchangeCompleteSetsDisposition(t *testing.T) {
	t.Parallel()

	ex := newExchange()
	assert.Equal(t, exchange.Pending, ex.Disposition())

	ex.Complete()
	assert.Equal(t, exchange.Completed, ex.Disposition())
	assert.NoError(t, ex.Err())
	assert.Error(t, ex.Context().Err(), "completing an Exchange should cancel its context")
}

func TestExchangeTerminateIsOnceOnly(t *testing.T) {
	t.Parallel()

	ex := newExchange()
	ex.Complete()
	ex.Fail(errors.New("too late"))

	assert.Equal(t, exchange.Completed, ex.Disposition(), "first terminal disposition wins")
	assert.NoError(t, ex.Err())
}

func TestExchangeCancelCarriesCause(t *testing.T) {
	t.Parallel()

	ex := newExchange()
	cause := errors.New("client went away")
	ex.Cancel(cause)

	assert.Equal(t, exchange.Canceled, ex.Disposition())
	assert.Equal(t, cause, ex.Err())
}

func TestExchangeValueRoundTrip(t *testing.T) {
	t.Parallel()

	ex := newExchange()
	assert.Nil(t, ex.Value("k"))

	ex.SetValue("k", 42)
	assert.Equal(t, 42, ex.Value("k"))
}

func TestResponseSetHeaderNoOpAfterCommit(t *testing.T) {
	t.Parallel()

	resp := &exchange.Response{Status: 200}
	resp.SetHeader("X-A", "1")
	resp.Commit()
	resp.SetHeader("X-B", "2")

	require.Len(t, resp.Headers, 1)
	assert.Equal(t, "X-A", resp.Headers[0].Name)
}

func TestResponseSetHeaderReplacesExisting(t *testing.T) {
	t.Parallel()

	resp := &exchange.Response{}
	resp.SetHeader("X-A", "1")
	resp.SetHeader("x-a", "2")

	require.Len(t, resp.Headers, 1)
	assert.Equal(t, "2", resp.Headers[0].Value)
}

func TestDispatchSuccessCompletesExchange(t *testing.T) {
	t.Parallel()

	ex := newExchange()
	err := exchange.Dispatch(ex, func(ex *exchange.Exchange) error {
		ex.Response.Status = 204
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, exchange.Completed, ex.Disposition())
}

func TestDispatchRoutesUncommittedFailureToErrorHandler(t *testing.T) {
	t.Parallel()

	ex := newExchange()
	cause := errors.New("boom")
	var gotCause error

	err := exchange.Dispatch(ex, func(ex *exchange.Exchange) error {
		return cause
	}, func(errEx *exchange.ErrorExchange) error {
		gotCause = errEx.Cause
		errEx.Response.Status = 418
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, cause, gotCause)
	assert.Equal(t, 418, ex.Response.Status)
	assert.Equal(t, exchange.Completed, ex.Disposition())
}

func TestDispatchReturnsRawErrorWhenResponseAlreadyCommitted(t *testing.T) {
	t.Parallel()

	ex := newExchange()
	cause := errors.New("stream broke mid-write")

	err := exchange.Dispatch(ex, func(ex *exchange.Exchange) error {
		ex.Response.Commit()
		return cause
	}, func(errEx *exchange.ErrorExchange) error {
		t.Fatal("error handler must not run once the response is committed")
		return nil
	})

	require.Equal(t, cause, err)
	assert.Equal(t, exchange.Failed, ex.Disposition())
}

func TestDispatchWithNilErrorHandlerFailsExchange(t *testing.T) {
	t.Parallel()

	ex := newExchange()
	cause := errors.New("no handler installed")

	err := exchange.Dispatch(ex, func(ex *exchange.Exchange) error {
		return cause
	}, nil)

	require.Equal(t, cause, err)
	assert.Equal(t, exchange.Failed, ex.Disposition())
}

func TestChainComposesInterceptorsOutermostFirst(t *testing.T) {
	t.Parallel()

	var order []string
	mk := func(name string) exchange.Interceptor {
		return func(ex *exchange.Exchange, next exchange.Handler) error {
			order = append(order, name+":before")
			err := next(ex)
			order = append(order, name+":after")
			return err
		}
	}

	h := exchange.Chain(func(ex *exchange.Exchange) error {
		order = append(order, "handler")
		return nil
	}, mk("outer"), mk("inner"))

	require.NoError(t, h(newExchange()))
	assert.Equal(t, []string{"outer:before", "inner:before", "handler", "inner:after", "outer:after"}, order)
}

func TestChainInterceptorCanShortCircuit(t *testing.T) {
	t.Parallel()

	called := false
	h := exchange.Chain(func(ex *exchange.Exchange) error {
		called = true
		return nil
	}, func(ex *exchange.Exchange, next exchange.Handler) error {
		ex.Response.Status = 401
		return nil
	})

	require.NoError(t, h(newExchange()))
	assert.False(t, called, "interceptor that never calls next must short-circuit the handler")
}
