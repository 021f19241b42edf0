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

package http1_test

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/netkit/exchange"
	"github.com/rivaas-dev/netkit/http1"
)

// TestServeEmitsPipelinedResponsesInArrivalOrder drives two pipelined
// requests through one Conn whose handler finishes the second request
// before the first, and confirms the responses still arrive on the wire in
// request order -- the connection's FIFO write discipline.
func TestServeEmitsPipelinedResponsesInArrivalOrder(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()

	release := make(chan struct{})
	handler := func(ex *exchange.Exchange) error {
		if ex.Request.Path == "/first" {
			<-release // block the first request's handler until told to proceed
		}
		ex.Response.Status = 200
		ex.Response.BodyVariant = exchange.BodyString
		ex.Response.Body = ex.Request.Path
		ex.Response.SetHeader("Content-Type", "text/plain")
		return nil
	}

	conn := http1.NewConn(server, handler, nil)
	done := make(chan error, 1)
	go func() { done <- conn.Serve(context.Background()) }()

	_, err := client.Write([]byte("GET /first HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.NoError(t, err)
	_, err = client.Write([]byte("GET /second HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.NoError(t, err)

	// Give the second request's handler a chance to run to completion
	// before the first is released, proving completion order does not
	// determine write order.
	time.Sleep(50 * time.Millisecond)
	close(release)

	reader := bufio.NewReader(client)
	resp1, err := http.ReadResponse(reader, nil)
	require.NoError(t, err)
	body1 := readAll(t, resp1)
	assert.Equal(t, "/first", body1)

	resp2, err := http.ReadResponse(reader, nil)
	require.NoError(t, err)
	body2 := readAll(t, resp2)
	assert.Equal(t, "/second", body2)

	client.Close()
	<-done
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	buf := make([]byte, resp.ContentLength)
	_, err := io.ReadFull(resp.Body, buf)
	require.NoError(t, err)
	return string(buf)
}
