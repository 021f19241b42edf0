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

package grpcframe

import (
	"google.golang.org/grpc/codes"

	"github.com/rivaas-dev/netkit/exchange"
	"github.com/rivaas-dev/netkit/header"
	"github.com/rivaas-dev/netkit/neterr"
)

// ErrorHandler is an exchange.ErrorHandler that rewrites any failed
// Exchange into a gRPC-shaped response: HTTP status is always forced to
// 200 (gRPC carries its own status out of band), and the mapped gRPC
// status/message are written as trailers rather than an HTTP body.
func ErrorHandler(ex *exchange.ErrorExchange) error {
	code := codeFor(ex.Cause)
	msg := ex.Cause.Error()

	ex.Response.Status = 200
	ex.Response.BodyVariant = exchange.BodyEmpty
	ex.Response.Trailers = append(ex.Response.Trailers,
		header.Header{Name: "grpc-status", Value: itoa(int(code))},
		header.Header{Name: "grpc-message", Value: msg},
	)
	return nil
}

func codeFor(err error) codes.Code {
	if nerr, ok := err.(*neterr.Error); ok {
		return nerr.GRPCCode()
	}
	return neterr.Wrap(neterr.Internal, err).GRPCCode()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
