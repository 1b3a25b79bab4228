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

// PackedVarints iterates the varint-encoded elements of one packed chunk
// (the payload of a single LEN-framed occurrence of a numeric repeated
// field). Generated decode() routines call this once per packed
// occurrence and concatenate results across occurrences, per spec.md's
// "multiple packed chunks for the same field number concatenate" rule;
// unpacked occurrences are read one at a time via the ordinary Iterator
// instead and appended to the same slice.
func PackedVarints(payload []byte, yield func(uint64) error) error {
	for len(payload) > 0 {
		v, n, err := wire.ConsumeVarint(payload)
		if err != nil {
			return err
		}
		if err := yield(v); err != nil {
			return err
		}
		payload = payload[n:]
	}
	return nil
}

// PackedFixed32 iterates the fixed32-width elements of one packed chunk.
func PackedFixed32(payload []byte, yield func(uint32) error) error {
	for len(payload) > 0 {
		v, n, err := wire.ConsumeFixed32(payload)
		if err != nil {
			return err
		}
		if err := yield(v); err != nil {
			return err
		}
		payload = payload[n:]
	}
	return nil
}

// PackedFixed64 iterates the fixed64-width elements of one packed chunk.
func PackedFixed64(payload []byte, yield func(uint64) error) error {
	for len(payload) > 0 {
		v, n, err := wire.ConsumeFixed64(payload)
		if err != nil {
			return err
		}
		if err := yield(v); err != nil {
			return err
		}
		payload = payload[n:]
	}
	return nil
}

// AppendPackedVarint appends one more varint element to a packed chunk
// under construction; callers accumulate these into a []byte and then
// call (*Writer).WriteLenField(num, chunk) once all elements are known.
func AppendPackedVarint(buf []byte, v uint64) []byte {
	return wire.AppendVarint(buf, v)
}

// AppendPackedFixed32 appends one more fixed32 element to a packed chunk
// under construction.
func AppendPackedFixed32(buf []byte, v uint32) []byte {
	return wire.AppendFixed32(buf, v)
}

// AppendPackedFixed64 appends one more fixed64 element to a packed chunk
// under construction.
func AppendPackedFixed64(buf []byte, v uint64) []byte {
	return wire.AppendFixed64(buf, v)
}
