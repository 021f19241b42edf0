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

package http2x

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowWindowConsumeBelowLowWaterReturnsZero(t *testing.T) {
	t.Parallel()

	w := newFlowWindow(1000)
	assert.Equal(t, int32(0), w.consume(100))
	assert.Equal(t, int32(900), w.available())
}

func TestFlowWindowConsumeAtLowWaterEmitsUpdate(t *testing.T) {
	t.Parallel()

	w := newFlowWindow(1000)
	w.consume(400)
	inc := w.consume(200) // 600 consumed total, crosses the 50% mark of 1000
	assert.Equal(t, int32(600), inc)
	// size restored: 1000 - 600 (consumed) + 600 (granted back) == 1000
	assert.Equal(t, int32(1000), w.available())
}

func TestFlowWindowReserveAndGrant(t *testing.T) {
	t.Parallel()

	w := newFlowWindow(100)
	assert.True(t, w.reserve(60))
	assert.Equal(t, int32(40), w.available())

	assert.False(t, w.reserve(50), "reserving beyond the remaining window must fail")
	assert.Equal(t, int32(40), w.available())

	w.grant(30)
	assert.Equal(t, int32(70), w.available())
	assert.True(t, w.reserve(70))
}

func TestFlowWindowDefaultInitialWindow(t *testing.T) {
	t.Parallel()

	w := newFlowWindow(defaultInitialWindow)
	assert.Equal(t, int32(defaultInitialWindow), w.available())
}
