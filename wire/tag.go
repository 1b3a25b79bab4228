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

package wire

// Type is the 3-bit wire type that tells a decoder how the bytes following
// a tag are framed.
type Type int8

const (
	Varint     Type = 0
	Fixed64    Type = 1
	Bytes      Type = 2 // length-delimited: strings, bytes, embedded messages, packed repeated
	StartGroup Type = 3 // deprecated proto2 group framing
	EndGroup   Type = 4
	Fixed32    Type = 5
)

// MaxFieldNumber is the largest field number the wire format can address;
// field numbers use 29 bits (3 bits are reserved for the wire type within
// a 32-bit tag space that protoc further reserves the top 3 bits of for
// its own use).
const MaxFieldNumber = 1<<29 - 1

// EncodeTag packs a field number and wire type into the varint-encoded tag
// that precedes every field in the wire format.
func EncodeTag(fieldNum int32, wireType Type) uint64 {
	return uint64(fieldNum)<<3 | uint64(wireType&7)
}

// AppendTag appends the varint-encoded tag for (fieldNum, wireType).
func AppendTag(buf []byte, fieldNum int32, wireType Type) []byte {
	return AppendVarint(buf, EncodeTag(fieldNum, wireType))
}

// SizeTag returns the number of bytes AppendTag would emit.
func SizeTag(fieldNum int32) int {
	return SizeVarint(EncodeTag(fieldNum, 0))
}

// DecodeTag splits a decoded tag varint into its field number and wire
// type, validating both. Wire types 6 and 7 fail with ErrInvalidWireType;
// field number 0 fails with ErrInvalidFieldNumber.
func DecodeTag(tag uint64) (fieldNum int32, wireType Type, err error) {
	wireType = Type(tag & 7)
	if wireType == 6 || wireType == 7 {
		return 0, 0, ErrInvalidWireType
	}
	num := tag >> 3
	if num == 0 || num > MaxFieldNumber {
		return 0, 0, ErrInvalidFieldNumber
	}
	return int32(num), wireType, nil
}

// ConsumeTag decodes a tag varint from the front of buf and validates it,
// as DecodeTag.
func ConsumeTag(buf []byte) (fieldNum int32, wireType Type, n int, err error) {
	v, n, err := ConsumeVarint(buf)
	if err != nil {
		return 0, 0, 0, err
	}
	fieldNum, wireType, err = DecodeTag(v)
	if err != nil {
		return 0, 0, 0, err
	}
	return fieldNum, wireType, n, nil
}

// AppendLengthPrefixed appends the varint length of payload followed by
// payload itself: the encoding of every LEN-framed field (string, bytes,
// embedded message, packed repeated, map entry).
func AppendLengthPrefixed(buf, payload []byte) []byte {
	buf = AppendVarint(buf, uint64(len(payload)))
	return append(buf, payload...)
}

// ConsumeLengthPrefixed splits a length-prefixed payload off the front of
// buf, returning the payload sub-slice (no copy) and the total number of
// bytes consumed (length varint plus payload). A decoded length that does
// not fit a non-negative int fails with ErrOverflow; a short buffer fails
// with ErrEndOfStream.
func ConsumeLengthPrefixed(buf []byte) (payload []byte, n int, err error) {
	length, ln, err := ConsumeVarint(buf)
	if err != nil {
		return nil, 0, err
	}
	if length > uint64(^uint(0)>>1) || int(length) < 0 {
		return nil, 0, ErrOverflow
	}
	end := ln + int(length)
	if end < ln || end > len(buf) {
		return nil, 0, ErrEndOfStream
	}
	return buf[ln:end], end, nil
}

// AppendNegativeInt32 encodes a negative (or any) int32 the way proto2/3
// require for the plain (non-sint) `int32` scalar: the value is first
// sign-extended to 64 bits, then varint-encoded. For a negative input this
// always produces exactly 10 bytes, since the sign-extended value has its
// top bit set.
func AppendNegativeInt32(buf []byte, v int32) []byte {
	return AppendVarint(buf, uint64(int64(v)))
}

// SizeNegativeInt32 returns the size AppendNegativeInt32 would use: always
// 10 for a negative v, and SizeVarint(uint64(v)) otherwise.
func SizeNegativeInt32(v int32) int {
	return SizeVarint(uint64(int64(v)))
}
