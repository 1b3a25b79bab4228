// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dynamic implements schema-driven encode/decode over a
// descriptor.Message without any generated code: a Message is a mapping
// from field number to storage, built and walked entirely at runtime.
package dynamic

import "github.com/protospec/pbgen/descriptor"

// Value is a tagged union over the 15 scalar kinds, an enum's numeric
// value, and an owned nested message pointer. Exactly one of the typed
// accessors below is meaningful for a given Value, determined by the
// field descriptor it was stored against -- the Value itself does not
// repeat the kind, since every caller already has the descriptor.Field
// on hand when it matters.
type Value struct {
	i int64   // int32/int64/sint32/sint64/sfixed32/sfixed64/enum/bool(0 or 1)
	u uint64  // uint32/uint64/fixed32/fixed64
	f float64 // float/double (float32 stored widened)
	s string
	b []byte
	m *Message
}

func Int(v int64) Value     { return Value{i: v} }
func Uint(v uint64) Value   { return Value{u: v} }
func Float(v float64) Value { return Value{f: v} }
func Bool(v bool) Value {
	if v {
		return Value{i: 1}
	}
	return Value{i: 0}
}
func String(v string) Value        { return Value{s: v} }
func Bytes(v []byte) Value         { return Value{b: append([]byte(nil), v...)} }
func MessageValue(v *Message) Value { return Value{m: v} }

func (v Value) Int() int64     { return v.i }
func (v Value) Uint() uint64   { return v.u }
func (v Value) Float() float64 { return v.f }
func (v Value) Bool() bool     { return v.i != 0 }

// Str returns the string payload. Named Str, not String, so Value does
// not accidentally satisfy fmt.Stringer for non-string-kind values.
func (v Value) Str() string       { return v.s }
func (v Value) Bytes() []byte     { return v.b }
func (v Value) Message() *Message { return v.m }

// IsZero reports whether v holds the default value for kind k, the test
// generated proto3-implicit-presence code uses to decide whether to skip
// a field on encode.
func (v Value) IsZero(k descriptor.Kind) bool {
	switch k {
	case descriptor.KindBool:
		return v.i == 0
	case descriptor.KindString:
		return v.s == ""
	case descriptor.KindBytes:
		return len(v.b) == 0
	case descriptor.KindMessage, descriptor.KindGroup:
		return v.m == nil
	case descriptor.KindFloat, descriptor.KindDouble:
		return v.f == 0
	case descriptor.KindUInt32, descriptor.KindUInt64, descriptor.KindFixed32, descriptor.KindFixed64:
		return v.u == 0
	default: // signed ints, sint*, sfixed*, enum
		return v.i == 0
	}
}

// clone returns a deep copy, duplicating any owned message, per spec's
// "dynamic messages own all their payload; cloning required at API
// boundaries" rule.
func (v Value) clone() Value {
	cp := v
	if v.b != nil {
		cp.b = append([]byte(nil), v.b...)
	}
	if v.m != nil {
		cp.m = v.m.Clone()
	}
	return cp
}
