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

package grpcframe_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/rivaas-dev/netkit/exchange"
	"github.com/rivaas-dev/netkit/grpcframe"
	"github.com/rivaas-dev/netkit/neterr"
)

func newErrorExchange(cause error) *exchange.ErrorExchange {
	ex := exchange.New(context.Background(), &exchange.Request{Method: "POST", Path: "/pkg.Service/Method"})
	return exchange.NewErrorExchange(ex, cause)
}

func TestErrorHandlerForcesHTTP200(t *testing.T) {
	t.Parallel()

	errEx := newErrorExchange(neterr.New(neterr.NotFound, "no such method"))
	err := grpcframe.ErrorHandler(errEx)
	require.NoError(t, err)
	assert.Equal(t, 200, errEx.Response.Status)
	assert.Equal(t, exchange.BodyEmpty, errEx.Response.BodyVariant)
}

func TestErrorHandlerWritesGRPCTrailers(t *testing.T) {
	t.Parallel()

	errEx := newErrorExchange(neterr.New(neterr.NotFound, "no such method"))
	require.NoError(t, grpcframe.ErrorHandler(errEx))

	var status, msg string
	for _, h := range errEx.Response.Trailers {
		switch h.Name {
		case "grpc-status":
			status = h.Value
		case "grpc-message":
			msg = h.Value
		}
	}
	assert.Equal(t, "12", status) // codes.Unimplemented
	assert.Contains(t, msg, "no such method")
}

func TestErrorHandlerMapsNonNetErrToInternal(t *testing.T) {
	t.Parallel()

	plain := assertError("boom")
	errEx := newErrorExchange(plain)
	require.NoError(t, grpcframe.ErrorHandler(errEx))

	var status string
	for _, h := range errEx.Response.Trailers {
		if h.Name == "grpc-status" {
			status = h.Value
		}
	}
	assert.Equal(t, "13", status) // codes.Internal
}

type assertError string

func (e assertError) Error() string { return string(e) }

func TestGRPCCodeMappingTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind neterr.Kind
		want codes.Code
	}{
		{neterr.Canceled, codes.Canceled},
		{neterr.DeadlineExceeded, codes.DeadlineExceeded},
		{neterr.ResourceExhausted, codes.ResourceExhausted},
		{neterr.Unavailable, codes.Unavailable},
		{neterr.NotFound, codes.Unimplemented},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.kind), func(t *testing.T) {
			t.Parallel()

			err := neterr.New(tc.kind, "x")
			assert.Equal(t, tc.want, err.GRPCCode())
		})
	}
}
