// Copyright 2025 The Rivaas Authors
// Copyright 2025 Company.info B.V.
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

// Package codec provides functionality for encoding and decoding data.
package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CastType is a string type that represents the type of a value that can be cast.
type CastType string

// revive:disable:exported
const (
	CastTypeBool       CastType = "bool"
	TypeCasterBool     Type     = "caster-bool"
	CastTypeTime       CastType = "time"
	TypeCasterTime     Type     = "caster-time"
	CastTypeDuration   CastType = "duration"
	TypeCasterDuration Type     = "caster-duration"
	CastTypeFloat64    CastType = "float64"
	TypeCasterFloat64  Type     = "caster-float64"
	CastTypeFloat32    CastType = "float32"
	TypeCasterFloat32  Type     = "caster-float32"
	CastTypeInt64      CastType = "int64"
	TypeCasterInt64    Type     = "caster-int64"
	CastTypeInt32      CastType = "int32"
	TypeCasterInt32    Type     = "caster-int32"
	CastTypeInt16      CastType = "int16"
	TypeCasterInt16    Type     = "caster-int16"
	CastTypeInt8       CastType = "int8"
	TypeCasterInt8     Type     = "caster-int8"
	CastTypeInt        CastType = "int"
	TypeCasterInt      Type     = "caster-int"
	CastTypeUint       CastType = "uint"
	TypeCasterUint     Type     = "caster-uint"
	CastTypeUint64     CastType = "uint64"
	TypeCasterUint64   Type     = "caster-uint64"
	CastTypeUint32     CastType = "uint32"
	TypeCasterUint32   Type     = "caster-uint32"
	CastTypeUint16     CastType = "uint16"
	TypeCasterUint16   Type     = "caster-uint16"
	CastTypeUint8      CastType = "uint8"
	TypeCasterUint8    Type     = "caster-uint8"
	CastTypeString     CastType = "string"
	TypeCasterString   Type     = "caster-string"
)

// init registers the various type casters with the codec package.
func init() {
	RegisterDecoder(TypeCasterBool, NewCaster(CastTypeBool))
	RegisterDecoder(TypeCasterTime, NewCaster(CastTypeTime))
	RegisterDecoder(TypeCasterDuration, NewCaster(CastTypeDuration))
	RegisterDecoder(TypeCasterFloat64, NewCaster(CastTypeFloat64))
	RegisterDecoder(TypeCasterFloat32, NewCaster(CastTypeFloat32))
	RegisterDecoder(TypeCasterInt64, NewCaster(CastTypeInt64))
	RegisterDecoder(TypeCasterInt32, NewCaster(CastTypeInt32))
	RegisterDecoder(TypeCasterInt16, NewCaster(CastTypeInt16))
	RegisterDecoder(TypeCasterInt8, NewCaster(CastTypeInt8))
	RegisterDecoder(TypeCasterInt, NewCaster(CastTypeInt))
	RegisterDecoder(TypeCasterUint, NewCaster(CastTypeUint))
	RegisterDecoder(TypeCasterUint64, NewCaster(CastTypeUint64))
	RegisterDecoder(TypeCasterUint32, NewCaster(CastTypeUint32))
	RegisterDecoder(TypeCasterUint16, NewCaster(CastTypeUint16))
	RegisterDecoder(TypeCasterUint8, NewCaster(CastTypeUint8))
	RegisterDecoder(TypeCasterString, NewCaster(CastTypeString))
}

// CasterCodec is a codec that casts the input data to a specific type.
// The castType field determines the type to which the data will be cast.
type CasterCodec struct {
	castType CastType
}

// NewCaster creates a new CasterCodec instance with the specified castType.
// The CasterCodec is used to cast input data to a specific type during decoding.
func NewCaster(castType CastType) *CasterCodec {
	return &CasterCodec{
		castType: castType,
	}
}

// Decode implements the Decoder interface for the CasterCodec. It takes the input data
// and casts it to the type specified by the castType field of the CasterCodec. The
// result is stored in the value pointed to by the v parameter.
func (c *CasterCodec) Decode(data []byte, v any) error {
	m, ok := v.(*any)
	if !ok {
		return fmt.Errorf("invalid type assertion")
	}
	value := strings.TrimSpace(string(data))

	var err error
	switch c.castType {
	case CastTypeBool:
		*m, err = strconv.ParseBool(value)
	case CastTypeTime:
		*m, err = parseTime(value)
	case CastTypeDuration:
		*m, err = time.ParseDuration(value)
	case CastTypeFloat64:
		*m, err = strconv.ParseFloat(value, 64)
	case CastTypeFloat32:
		var f64 float64
		f64, err = strconv.ParseFloat(value, 32)
		*m = float32(f64)
	case CastTypeInt64:
		*m, err = strconv.ParseInt(value, 10, 64)
	case CastTypeInt32:
		var i64 int64
		i64, err = strconv.ParseInt(value, 10, 32)
		*m = int32(i64)
	case CastTypeInt16:
		var i64 int64
		i64, err = strconv.ParseInt(value, 10, 16)
		*m = int16(i64)
	case CastTypeInt8:
		var i64 int64
		i64, err = strconv.ParseInt(value, 10, 8)
		*m = int8(i64)
	case CastTypeInt:
		var i64 int64
		i64, err = strconv.ParseInt(value, 10, 64)
		*m = int(i64)
	case CastTypeUint:
		var u64 uint64
		u64, err = strconv.ParseUint(value, 10, 64)
		*m = uint(u64)
	case CastTypeUint64:
		*m, err = strconv.ParseUint(value, 10, 64)
	case CastTypeUint32:
		var u64 uint64
		u64, err = strconv.ParseUint(value, 10, 32)
		*m = uint32(u64)
	case CastTypeUint16:
		var u64 uint64
		u64, err = strconv.ParseUint(value, 10, 16)
		*m = uint16(u64)
	case CastTypeUint8:
		var u64 uint64
		u64, err = strconv.ParseUint(value, 10, 8)
		*m = uint8(u64)
	case CastTypeString:
		*m = value
	default:
		return fmt.Errorf("caster: unknown cast type %q", c.castType)
	}

	return err
}

// timeLayouts are tried in order; the first that parses wins.
var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

func parseTime(value string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("caster: unable to parse %q as time: %w", value, firstErr)
}
