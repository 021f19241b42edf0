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

package http1

import "github.com/rivaas-dev/netkit/header"

// h2cUpgradeSettings detects a cleartext HTTP/2 upgrade request: a
// "Connection: upgrade, http2-settings" header plus exactly one
// "HTTP2-Settings" header. Returns the settings field's raw (base64url)
// value and true when the request qualifies.
func h2cUpgradeSettings(method string, headers []header.Header) (string, bool) {
	if method != "GET" && method != "OPTIONS" {
		return "", false
	}

	var hasUpgradeToken, hasHTTP2SettingsToken bool
	if conn, ok := lookupHeader(headers, "Connection"); ok {
		hasUpgradeToken, hasHTTP2SettingsToken = connectionTokens(conn)
	}
	if !hasUpgradeToken || !hasHTTP2SettingsToken {
		return "", false
	}

	var settings string
	count := 0
	for _, h := range headers {
		if header.EqualFold(h.Name, "HTTP2-Settings") {
			settings = h.Value
			count++
		}
	}
	if count != 1 {
		return "", false
	}
	return settings, true
}

func connectionTokens(value string) (hasUpgrade, hasHTTP2Settings bool) {
	start := 0
	for i := 0; i <= len(value); i++ {
		if i == len(value) || value[i] == ',' {
			tok := trimToken(value[start:i])
			switch {
			case equalFoldASCII(tok, "upgrade"):
				hasUpgrade = true
			case equalFoldASCII(tok, "http2-settings"):
				hasHTTP2Settings = true
			}
			start = i + 1
		}
	}
	return hasUpgrade, hasHTTP2Settings
}

func trimToken(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
