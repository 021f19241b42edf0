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

package header

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rivaas-dev/netkit/neterr"
)

// MediaRange is one comma-separated entry of an Accept header: a type/subtype
// pair (either side may be "*"), its parameters, and the q-value the client
// assigned it.
type MediaRange struct {
	Type       string
	Subtype    string
	Params     map[string]string
	Quality    int // thousandths, 0..1000
	RawQuality string
}

// LanguageRange is one comma-separated entry of an Accept-Language header.
type LanguageRange struct {
	Tag        string
	Quality    int
	RawQuality string
}

// rangeArena is a scratch buffer for parsing one Accept/Accept-Language
// header without per-entry allocation; pooled since a connection engine
// parses one header per request on its event loop. Grounded on the teacher
// router's headerArena/arenaPool pattern for manual header scanning.
type rangeArena struct {
	media [16]MediaRange
	langs [16]LanguageRange
}

var arenaPool = sync.Pool{New: func() any { return &rangeArena{} }}

func getArena() *rangeArena {
	a, ok := arenaPool.Get().(*rangeArena)
	if !ok {
		panic("header: pool corruption - arenaPool returned non-*rangeArena type")
	}
	return a
}

func putArena(a *rangeArena) {
	for i := range a.media {
		a.media[i] = MediaRange{}
	}
	for i := range a.langs {
		a.langs[i] = LanguageRange{}
	}
	arenaPool.Put(a)
}

// ParseAccept parses an Accept header value into MediaRanges ordered by
// descending quality then descending specificity score, matching the order
// a client's preference should be evaluated in.
func ParseAccept(value string) ([]MediaRange, error) {
	arena := getArena()
	defer putArena(arena)

	n := 0
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mr, err := parseMediaRangePart(part)
		if err != nil {
			return nil, err
		}
		if n == len(arena.media) {
			// Arena exhausted (pathological header); fall back to a fresh slice.
			out := make([]MediaRange, n, n+1)
			copy(out, arena.media[:n])
			out = append(out, mr)
			return finishMediaRanges(out), nil
		}
		arena.media[n] = mr
		n++
	}

	out := make([]MediaRange, n)
	copy(out, arena.media[:n])
	return finishMediaRanges(out), nil
}

func finishMediaRanges(ranges []MediaRange) []MediaRange {
	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].Quality != ranges[j].Quality {
			return ranges[i].Quality > ranges[j].Quality
		}
		return ranges[i].Score() > ranges[j].Score()
	})
	return ranges
}

func parseMediaRangePart(part string) (MediaRange, error) {
	segs := strings.Split(part, ";")
	typePart := strings.TrimSpace(segs[0])
	typ, subtype, ok := strings.Cut(typePart, "/")
	if !ok {
		return MediaRange{}, neterr.New(neterr.MalformedHeader, "Accept media range missing '/': %q", part)
	}
	mr := MediaRange{
		Type:       strings.ToLower(strings.TrimSpace(typ)),
		Subtype:    strings.ToLower(strings.TrimSpace(subtype)),
		Quality:    1000,
		RawQuality: "1",
	}
	if mr.Type == "" || mr.Subtype == "" {
		return MediaRange{}, neterr.New(neterr.MalformedHeader, "Accept media range has empty type or subtype: %q", part)
	}

	for _, p := range segs[1:] {
		name, val, ok := strings.Cut(p, "=")
		if !ok {
			return MediaRange{}, neterr.New(neterr.MalformedHeader, "Accept parameter missing '=': %q", p)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		val = strings.Trim(strings.TrimSpace(val), `"`)
		if name == "q" {
			q, err := parseQuality(val)
			if err != nil {
				return MediaRange{}, err
			}
			mr.Quality = q
			mr.RawQuality = val
			continue
		}
		if mr.Params == nil {
			mr.Params = make(map[string]string, len(segs)-1)
		}
		mr.Params[name] = val
	}
	return mr, nil
}

// parseQuality parses an RFC 7231 qvalue ("0", "1", "0.xxx") into thousandths
// using integer arithmetic only, avoiding float rounding surprises.
func parseQuality(s string) (int, error) {
	if s == "" {
		return 1000, nil
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	w, err := strconv.Atoi(whole)
	if err != nil || (w != 0 && w != 1) {
		return 0, neterr.New(neterr.MalformedHeader, "invalid qvalue: %q", s)
	}
	if !hasFrac {
		return w * 1000, nil
	}
	if len(frac) > 3 {
		frac = frac[:3]
	}
	for len(frac) < 3 {
		frac += "0"
	}
	f, err := strconv.Atoi(frac)
	if err != nil {
		return 0, neterr.New(neterr.MalformedHeader, "invalid qvalue: %q", s)
	}
	return w*1000 + f, nil
}

// Score implements the scoring function from the Accept matching spec:
// 1000*weight + type_score*10 + parameterCount*{1|2}, where type_score is
// 0 for */*, 10 for */x, 20 for x/*, and 30 for x/x. Quality already holds
// the weight in thousandths, so it is 1000*weight as is.
func (m MediaRange) Score() int {
	typeScore := typeSpecificity(m.Type, m.Subtype)
	paramScore := 0
	for _, v := range m.Params {
		if v == "" {
			paramScore++
		} else {
			paramScore += 2
		}
	}
	return m.Quality + typeScore*10 + paramScore
}

func typeSpecificity(typ, subtype string) int {
	typWild := typ == "*"
	subWild := subtype == "*"
	switch {
	case typWild && subWild:
		return 0
	case typWild && !subWild:
		return 10
	case !typWild && subWild:
		return 20
	default:
		return 30
	}
}

// Matches reports whether this MediaRange matches a concrete content type
// "type/subtype" with the given parameters. Wildcards in either part of the
// range match; the range's parameters must be a subset of the candidate's,
// compared case-insensitively for token values.
func (m MediaRange) Matches(typ, subtype string, params map[string]string) bool {
	if m.Type != "*" && !strings.EqualFold(m.Type, typ) {
		return false
	}
	if m.Subtype != "*" && !strings.EqualFold(m.Subtype, subtype) {
		return false
	}
	for k, v := range m.Params {
		cv, ok := params[k]
		if !ok || !strings.EqualFold(cv, v) {
			return false
		}
	}
	return true
}

// ParseAcceptLanguage parses an Accept-Language header into LanguageRanges
// ordered by descending quality.
func ParseAcceptLanguage(value string) ([]LanguageRange, error) {
	arena := getArena()
	defer putArena(arena)

	n := 0
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lr, err := parseLanguageRangePart(part)
		if err != nil {
			return nil, err
		}
		if n == len(arena.langs) {
			out := make([]LanguageRange, n, n+1)
			copy(out, arena.langs[:n])
			out = append(out, lr)
			return finishLanguageRanges(out), nil
		}
		arena.langs[n] = lr
		n++
	}
	out := make([]LanguageRange, n)
	copy(out, arena.langs[:n])
	return finishLanguageRanges(out), nil
}

func finishLanguageRanges(ranges []LanguageRange) []LanguageRange {
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Quality > ranges[j].Quality
	})
	return ranges
}

func parseLanguageRangePart(part string) (LanguageRange, error) {
	tag, q, hasQ := strings.Cut(part, ";")
	lr := LanguageRange{Tag: strings.ToLower(strings.TrimSpace(tag)), Quality: 1000, RawQuality: "1"}
	if lr.Tag == "" {
		return LanguageRange{}, neterr.New(neterr.MalformedHeader, "Accept-Language entry is empty: %q", part)
	}
	if !hasQ {
		return lr, nil
	}
	name, val, ok := strings.Cut(strings.TrimSpace(q), "=")
	if !ok || strings.ToLower(strings.TrimSpace(name)) != "q" {
		return LanguageRange{}, neterr.New(neterr.MalformedHeader, "Accept-Language parameter malformed: %q", q)
	}
	qv, err := parseQuality(strings.TrimSpace(val))
	if err != nil {
		return LanguageRange{}, err
	}
	lr.Quality = qv
	lr.RawQuality = strings.TrimSpace(val)
	return lr, nil
}

// Score returns the language range's score, used identically to MediaRange's
// for sorting purposes: 1000*weight, with specificity given by tag length
// (an exact "en-US" outranks the broader "en" at equal weight).
func (l LanguageRange) Score() int {
	return l.Quality + len(strings.ReplaceAll(l.Tag, "-", ""))
}

// Matches reports whether this LanguageRange matches a BCP 47 tag. "*"
// matches anything; a range "en" matches "en" and "en-US" (prefix match on
// subtag boundary).
func (l LanguageRange) Matches(tag string) bool {
	tag = strings.ToLower(tag)
	if l.Tag == "*" {
		return true
	}
	if l.Tag == tag {
		return true
	}
	return strings.HasPrefix(tag, l.Tag+"-")
}
