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

// Package pbruntime is the small runtime support library generated code
// links against: the two-pass length computation and recursion-depth
// bookkeeping that every generated message's Encode/Decode pair needs,
// factored out so codegen doesn't re-emit the same boilerplate into
// every generated file. It plays the same role protoc-gen-go's
// protoimpl/runtime package plays for that generator's output, scaled
// down to what this toolkit's generated code actually calls.
package pbruntime

import (
	"unicode/utf8"

	"github.com/protospec/pbgen/message"
	"github.com/protospec/pbgen/wire"
)

// SizeMessage runs encode against a scratch Writer and reports the byte
// length it produced, the standard way generated nested-message Encode
// methods learn a submessage's length before emitting its length prefix
// (the two-pass encode every length-delimited wire value needs).
func SizeMessage(encode func(*message.Writer) error) (int, error) {
	w := message.NewWriter(64)
	if err := encode(w); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

// CheckDepth bounds cross-message nesting depth during encode/decode.
// Generated code increments depth once per message/group descent and
// calls this before recursing, the same two-layer scheme package
// dynamic uses: message.Iterator's own limit only bounds group-skip
// recursion within one iterator, so nested-message depth needs this
// separate check.
func CheckDepth(depth, limit int) error {
	if limit <= 0 {
		limit = message.DefaultRecursionLimit
	}
	if depth > limit {
		return wire.ErrRecursionLimitExceeded
	}
	return nil
}

// ValidString reports whether s is valid UTF-8, returning
// wire.ErrInvalidUTF8 if not; generated code calls this before encoding
// or after decoding every string-kind field.
func ValidString(s string) error {
	if !utf8.ValidString(s) {
		return wire.ErrInvalidUTF8
	}
	return nil
}

// BoolToUint64 converts a bool to the 0/1 varint value generated code
// writes for a bool-kind field.
func BoolToUint64(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// EncodeZigZag32/64 and DecodeZigZag32/64 re-export the wire package's
// zigzag conversions under names generated code calls without also
// having to qualify the wire package for this one concern in files that
// otherwise only touch message.Writer/Iterator.
func EncodeZigZag32(v int32) uint32 { return wire.EncodeZigZag32(v) }
func DecodeZigZag32(v uint32) int32 { return wire.DecodeZigZag32(v) }
func EncodeZigZag64(v int64) uint64 { return wire.EncodeZigZag64(v) }
func DecodeZigZag64(v uint64) int64 { return wire.DecodeZigZag64(v) }
