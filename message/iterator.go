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

// Package message implements the schema-agnostic layer that sits between
// the raw wire codec (package wire) and schema-specific generated or
// dynamic message code: tag-driven field iteration, group skipping,
// unknown-field preservation, and exact size computation for two-pass
// length-prefixed encoding.
package message

import (
	"github.com/protospec/pbgen/wire"
)

// DefaultRecursionLimit bounds how deeply group-skipping and (by
// convention) nested-message decoding may recurse, absent an explicit
// caller-supplied limit. It matches the limit protoc-generated code uses.
const DefaultRecursionLimit = 100

// Field is one record yielded by Iterator: a field number, wire type, and
// the bytes that carry its value. For wire.Bytes fields, Value is the
// length-delimited payload (sub-slice, not copied). For wire.Varint,
// wire.Fixed32, and wire.Fixed64 fields, Value is exactly the encoded
// value bytes (no tag). StartGroup/EndGroup records carry no Value; a
// StartGroup record's nested content has already been consumed into Raw
// (tag-inclusive) by the time it is yielded, so callers that don't care
// about groups can skip them using Raw alone.
type Field struct {
	Number   int32
	WireType wire.Type
	Value    []byte
	// Raw is the complete wire-format bytes for this record, tag
	// included -- for a group, this spans from the start-group tag
	// through the matching end-group tag. Unknown-field preservation
	// appends Raw verbatim.
	Raw []byte
}

// Iterator walks the records of a single (non-recursed) message body,
// tag by tag.
type Iterator struct {
	buf   []byte
	depth int
	limit int
}

// NewIterator creates an Iterator over buf, a message's serialized body
// (no length prefix of its own -- the caller has already stripped that
// when descending into a nested message). limit bounds recursion into
// groups; 0 selects DefaultRecursionLimit.
func NewIterator(buf []byte, limit int) *Iterator {
	if limit <= 0 {
		limit = DefaultRecursionLimit
	}
	return &Iterator{buf: buf, limit: limit}
}

// Done reports whether the iterator has consumed the entire buffer.
func (it *Iterator) Done() bool { return len(it.buf) == 0 }

// Next decodes the next field record. At end of input it returns
// (Field{}, false, nil). A malformed tag, truncated value, or a group
// that recurses past the configured limit returns a non-nil error.
func (it *Iterator) Next() (Field, bool, error) {
	if it.Done() {
		return Field{}, false, nil
	}

	start := it.buf
	num, wt, tagLen, err := wire.ConsumeTag(it.buf)
	if err != nil {
		return Field{}, false, err
	}
	rest := it.buf[tagLen:]

	switch wt {
	case wire.Varint:
		_, n, err := wire.ConsumeVarint(rest)
		if err != nil {
			return Field{}, false, err
		}
		it.buf = rest[n:]
		return Field{Number: num, WireType: wt, Value: rest[:n], Raw: start[:tagLen+n]}, true, nil

	case wire.Fixed32:
		_, n, err := wire.ConsumeFixed32(rest)
		if err != nil {
			return Field{}, false, err
		}
		it.buf = rest[n:]
		return Field{Number: num, WireType: wt, Value: rest[:n], Raw: start[:tagLen+n]}, true, nil

	case wire.Fixed64:
		_, n, err := wire.ConsumeFixed64(rest)
		if err != nil {
			return Field{}, false, err
		}
		it.buf = rest[n:]
		return Field{Number: num, WireType: wt, Value: rest[:n], Raw: start[:tagLen+n]}, true, nil

	case wire.Bytes:
		payload, n, err := wire.ConsumeLengthPrefixed(rest)
		if err != nil {
			return Field{}, false, err
		}
		it.buf = rest[n:]
		return Field{Number: num, WireType: wt, Value: payload, Raw: start[:tagLen+n]}, true, nil

	case wire.StartGroup:
		if it.depth+1 > it.limit {
			return Field{}, false, wire.ErrRecursionLimitExceeded
		}
		end, err := skipGroup(rest, num, it.depth+1, it.limit)
		if err != nil {
			return Field{}, false, err
		}
		raw := start[:tagLen+end]
		it.buf = rest[end:]
		return Field{Number: num, WireType: wt, Raw: raw}, true, nil

	case wire.EndGroup:
		// A lone end-group with no matching start is malformed input; the
		// caller of skipGroup is the only legitimate consumer of EndGroup
		// records, and it never calls Next again after finding one.
		return Field{}, false, wire.ErrInvalidWireType

	default:
		return Field{}, false, wire.ErrInvalidWireType
	}
}

// skipGroup consumes nested records from buf until it finds the
// end-group tag matching fieldNum, returning the offset just past that
// end-group tag. Nested groups recurse, bounded by limit.
func skipGroup(buf []byte, fieldNum int32, depth, limit int) (int, error) {
	offset := 0
	for {
		if offset >= len(buf) {
			return 0, wire.ErrEndOfStream
		}
		num, wt, tagLen, err := wire.ConsumeTag(buf[offset:])
		if err != nil {
			return 0, err
		}
		if wt == wire.EndGroup {
			if num != fieldNum {
				return 0, wire.ErrInvalidWireType
			}
			return offset + tagLen, nil
		}

		rest := buf[offset+tagLen:]
		var valLen int
		switch wt {
		case wire.Varint:
			_, valLen, err = wire.ConsumeVarint(rest)
		case wire.Fixed32:
			_, valLen, err = wire.ConsumeFixed32(rest)
		case wire.Fixed64:
			_, valLen, err = wire.ConsumeFixed64(rest)
		case wire.Bytes:
			_, valLen, err = wire.ConsumeLengthPrefixed(rest)
		case wire.StartGroup:
			if depth+1 > limit {
				return 0, wire.ErrRecursionLimitExceeded
			}
			valLen, err = skipGroup(rest, num, depth+1, limit)
		default:
			err = wire.ErrInvalidWireType
		}
		if err != nil {
			return 0, err
		}
		offset += tagLen + valLen
	}
}
