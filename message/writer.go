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

package message

import "github.com/protospec/pbgen/wire"

// Writer accumulates the serialized bytes of a single message. Generated
// and dynamic encode routines append to it field by field, in ascending
// field-number order, as spec.md requires.
//
// The zero Writer is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with buf's capacity pre-reserved; a generated
// size() call typically feeds its result here so encode() never
// reallocates.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len reports how many bytes have been written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteVarintField appends a varint-wire-type field: tag then value.
func (w *Writer) WriteVarintField(num int32, v uint64) {
	w.buf = wire.AppendTag(w.buf, num, wire.Varint)
	w.buf = wire.AppendVarint(w.buf, v)
}

// WriteSignedVarintField appends the plain (non-zigzag) int32/int64
// encoding: negative values are sign-extended to 64 bits before being
// varint-encoded, per spec.md's scalar mapping table.
func (w *Writer) WriteSignedVarintField(num int32, v int64) {
	w.buf = wire.AppendTag(w.buf, num, wire.Varint)
	w.buf = wire.AppendVarint(w.buf, uint64(v))
}

// WriteZigZag32Field appends an sint32 field.
func (w *Writer) WriteZigZag32Field(num int32, v int32) {
	w.WriteVarintField(num, uint64(wire.EncodeZigZag32(v)))
}

// WriteZigZag64Field appends an sint64 field.
func (w *Writer) WriteZigZag64Field(num int32, v int64) {
	w.WriteVarintField(num, wire.EncodeZigZag64(v))
}

// WriteFixed32Field appends a fixed32/sfixed32/float field.
func (w *Writer) WriteFixed32Field(num int32, v uint32) {
	w.buf = wire.AppendTag(w.buf, num, wire.Fixed32)
	w.buf = wire.AppendFixed32(w.buf, v)
}

// WriteFixed64Field appends a fixed64/sfixed64/double field.
func (w *Writer) WriteFixed64Field(num int32, v uint64) {
	w.buf = wire.AppendTag(w.buf, num, wire.Fixed64)
	w.buf = wire.AppendFixed64(w.buf, v)
}

// WriteLenField appends a length-delimited field (string, bytes, embedded
// message, map entry, or packed-repeated blob): tag, length, payload.
func (w *Writer) WriteLenField(num int32, payload []byte) {
	w.buf = wire.AppendTag(w.buf, num, wire.Bytes)
	w.buf = wire.AppendLengthPrefixed(w.buf, payload)
}

// WriteNestedMessage appends a length-delimited nested-message field using
// spec.md's two-pass model: size, the child's precomputed size(), is
// written as the length prefix, and encode then writes the child's body,
// so no bytes ever need shifting after the fact. It panics if encode
// writes a different number of bytes than size.
func (w *Writer) WriteNestedMessage(num int32, size int, encode func(*Writer)) {
	w.buf = wire.AppendTag(w.buf, num, wire.Bytes)
	w.buf = wire.AppendVarint(w.buf, uint64(size))
	before := len(w.buf)
	encode(w)
	if len(w.buf)-before != size {
		// This is the load-bearing invariant from spec.md 4.2: a child's
		// size() must equal exactly what its encode() writes. Violating
		// it corrupts every message containing this one, so it is a
		// programmer error in the generated code, not a runtime input
		// error -- hence panic rather than a returned error.
		panic("message: encode() wrote a different number of bytes than size() reported")
	}
}

// AppendRaw appends already-framed bytes verbatim: used to re-emit
// preserved unknown fields after all known fields have been written.
func (w *Writer) AppendRaw(raw []byte) {
	w.buf = append(w.buf, raw...)
}

// SizeVarintField returns the encoded size of a varint field, tag
// included.
func SizeVarintField(num int32, v uint64) int {
	return wire.SizeTag(num) + wire.SizeVarint(v)
}

// SizeSignedVarintField returns the encoded size of a plain int32/int64
// field, tag included; a negative value always costs 10 bytes for the
// varint portion.
func SizeSignedVarintField(num int32, v int64) int {
	return wire.SizeTag(num) + wire.SizeVarint(uint64(v))
}

// SizeZigZag32Field returns the encoded size of an sint32 field.
func SizeZigZag32Field(num int32, v int32) int {
	return SizeVarintField(num, uint64(wire.EncodeZigZag32(v)))
}

// SizeZigZag64Field returns the encoded size of an sint64 field.
func SizeZigZag64Field(num int32, v int64) int {
	return SizeVarintField(num, wire.EncodeZigZag64(v))
}

// SizeFixed32Field returns the encoded size of a fixed32-width field,
// tag included: always 1+4 for field numbers under 16, more for larger
// numbers.
func SizeFixed32Field(num int32) int { return wire.SizeTag(num) + 4 }

// SizeFixed64Field returns the encoded size of a fixed64-width field,
// tag included.
func SizeFixed64Field(num int32) int { return wire.SizeTag(num) + 8 }

// SizeLenField returns the encoded size of a length-delimited field given
// its payload length, tag and length-varint included.
func SizeLenField(num int32, payloadLen int) int {
	return wire.SizeTag(num) + wire.SizeVarint(uint64(payloadLen)) + payloadLen
}
