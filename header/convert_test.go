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

package header_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/netkit/header"
	"github.com/rivaas-dev/netkit/neterr"
)

func TestConvertBuiltinTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		typeToken string
		value     string
		want      any
	}{
		{"string", "string", "hello", "hello"},
		{"byte", "byte", "12", int8(12)},
		{"short", "short", "-300", int16(-300)},
		{"int", "int", "42", int32(42)},
		{"long", "long", "9000000000", int64(9000000000)},
		{"bool true", "bool", "true", true},
		{"char", "char", "x", 'x'},
		{"Locale", "Locale", "en_US", "en-US"},
		{"Currency", "Currency", "usd", "USD"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := header.Convert(tc.typeToken, tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConvertUnknownTypeToken(t *testing.T) {
	t.Parallel()

	_, err := header.Convert("java.util.Optional", "x")
	require.Error(t, err)

	nerr, ok := err.(*neterr.Error)
	require.True(t, ok, "error should be a *neterr.Error")
	assert.Equal(t, neterr.UnsupportedType, nerr.Kind)
}

func TestConvertInvalidValueWrapsBadRequest(t *testing.T) {
	t.Parallel()

	_, err := header.Convert("int", "not-a-number")
	require.Error(t, err)

	nerr, ok := err.(*neterr.Error)
	require.True(t, ok, "error should be a *neterr.Error")
	assert.Equal(t, neterr.BadRequest, nerr.Kind)
}

func TestConvertCharRequiresExactlyOneRune(t *testing.T) {
	t.Parallel()

	_, err := header.Convert("char", "ab")
	require.Error(t, err)
}

func TestRegisterAddsConverter(t *testing.T) {
	t.Parallel()

	header.Register("upper-string", header.Converter{
		Decode: func(s string) (any, error) { return s + "!", nil },
		Encode: func(v any) (string, error) { return v.(string), nil },
	})

	got, err := header.Convert("upper-string", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi!", got)
}
