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
)

func TestMediaRangeScoreStrictOrdering(t *testing.T) {
	t.Parallel()

	exact := header.MediaRange{Type: "a", Subtype: "b", Quality: 1000}
	typeOnlyWild := header.MediaRange{Type: "a", Subtype: "*", Quality: 1000}
	subtypeOnlyWild := header.MediaRange{Type: "*", Subtype: "b", Quality: 1000}
	fullWild := header.MediaRange{Type: "*", Subtype: "*", Quality: 1000}

	assert.Greater(t, exact.Score(), typeOnlyWild.Score(), "a/b should outrank a/*")
	assert.Greater(t, typeOnlyWild.Score(), subtypeOnlyWild.Score(), "a/* should outrank */b")
	assert.Greater(t, subtypeOnlyWild.Score(), fullWild.Score(), "*/b should outrank */*")
}

func TestParseAcceptOrdersByQualityThenSpecificity(t *testing.T) {
	t.Parallel()

	ranges, err := header.ParseAccept("text/*;q=0.5, text/html, */*;q=0.1, text/html;level=1")
	require.NoError(t, err)
	require.Len(t, ranges, 4)

	// Quality 1000 entries come first; among those, the one with a
	// parameter (more specific) outranks the bare exact match.
	assert.Equal(t, "html", ranges[0].Subtype)
	assert.Equal(t, "1", ranges[0].Params["level"])
	assert.Equal(t, "html", ranges[1].Subtype)
	assert.Empty(t, ranges[1].Params)
	assert.Equal(t, "*", ranges[2].Subtype)
	assert.Equal(t, 500, ranges[2].Quality)
	assert.Equal(t, "*", ranges[3].Type)
	assert.Equal(t, 100, ranges[3].Quality)
}

func TestParseAcceptRejectsMalformedRange(t *testing.T) {
	t.Parallel()

	_, err := header.ParseAccept("text")
	require.Error(t, err)
}

func TestParseQualityIntegerPrecision(t *testing.T) {
	t.Parallel()

	ranges, err := header.ParseAccept("a/b;q=0.123456")
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, 123, ranges[0].Quality)
}

func TestMediaRangeMatches(t *testing.T) {
	t.Parallel()

	wild := header.MediaRange{Type: "*", Subtype: "*"}
	assert.True(t, wild.Matches("application", "json", nil))

	exact := header.MediaRange{Type: "application", Subtype: "json"}
	assert.True(t, exact.Matches("APPLICATION", "JSON", nil))
	assert.False(t, exact.Matches("text", "plain", nil))

	withParam := header.MediaRange{Type: "text", Subtype: "html", Params: map[string]string{"charset": "utf-8"}}
	assert.True(t, withParam.Matches("text", "html", map[string]string{"charset": "UTF-8"}))
	assert.False(t, withParam.Matches("text", "html", map[string]string{"charset": "iso-8859-1"}))
	assert.False(t, withParam.Matches("text", "html", nil))
}

func TestParseAcceptLanguageOrdersByQuality(t *testing.T) {
	t.Parallel()

	ranges, err := header.ParseAcceptLanguage("da, en-gb;q=0.8, en;q=0.7")
	require.NoError(t, err)
	require.Len(t, ranges, 3)
	assert.Equal(t, "da", ranges[0].Tag)
	assert.Equal(t, "en-gb", ranges[1].Tag)
	assert.Equal(t, "en", ranges[2].Tag)
}

func TestLanguageRangeMatches(t *testing.T) {
	t.Parallel()

	wild := header.LanguageRange{Tag: "*"}
	assert.True(t, wild.Matches("fr"))

	region := header.LanguageRange{Tag: "en"}
	assert.True(t, region.Matches("en"))
	assert.True(t, region.Matches("en-US"))
	assert.False(t, region.Matches("de"))
}
