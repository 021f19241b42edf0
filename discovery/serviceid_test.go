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

package discovery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/netkit/discovery"
)

func TestParseServiceIDHierarchical(t *testing.T) {
	t.Parallel()

	id, err := discovery.ParseServiceID("consul://billing-service/v1/charges")
	require.NoError(t, err)
	assert.Equal(t, "consul", id.Scheme)
	assert.Equal(t, "billing-service", id.Authority)
	assert.Equal(t, "/v1/charges", id.RequestTarget)
}

func TestParseServiceIDHierarchicalDefaultsRootPath(t *testing.T) {
	t.Parallel()

	id, err := discovery.ParseServiceID("config://billing-service")
	require.NoError(t, err)
	assert.Equal(t, "/", id.RequestTarget)
}

func TestParseServiceIDOpaque(t *testing.T) {
	t.Parallel()

	id, err := discovery.ParseServiceID("config:billing-service#/v1/charges")
	require.NoError(t, err)
	assert.Equal(t, "config", id.Scheme)
	assert.Equal(t, "billing-service", id.Opaque)
	assert.Equal(t, "/v1/charges", id.RequestTarget)
}

func TestParseServiceIDRejectsRelativeURI(t *testing.T) {
	t.Parallel()

	_, err := discovery.ParseServiceID("/just/a/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URI must be absolute: /just/a/path")
}

func TestParseServiceIDRejectsMissingAuthority(t *testing.T) {
	t.Parallel()

	_, err := discovery.ParseServiceID("consul:///v1/charges")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URI must have an authority component:")
}

func TestParseServiceIDRejectsOpaqueWithoutAbsoluteFragment(t *testing.T) {
	t.Parallel()

	_, err := discovery.ParseServiceID("config:billing-service#charges")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Opaque URI fragment path must be absolute:")
}

func TestServiceIDStringReturnsOriginalURI(t *testing.T) {
	t.Parallel()

	const raw = "consul://billing-service/v1/charges"
	id, err := discovery.ParseServiceID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, id.String())
}
