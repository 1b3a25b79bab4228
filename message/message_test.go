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

package message_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protospec/pbgen/message"
	"github.com/protospec/pbgen/wire"
)

func TestIteratorPackedAndUnpackedConcatenate(t *testing.T) {
	// Field 5 appears three times: once as a packed chunk of two varints,
	// then twice more unpacked. Every decoder must treat these the same
	// as if all four values had arrived as one packed chunk or four
	// separate unpacked records, per spec.md's "packed/unpacked
	// concatenate across occurrences" rule.
	w := message.NewWriter(0)
	packed := message.AppendPackedVarint(message.AppendPackedVarint(nil, 1), 2)
	w.WriteLenField(5, packed)
	w.WriteVarintField(5, 3)
	w.WriteVarintField(5, 4)

	var got []uint64
	it := message.NewIterator(w.Bytes(), 0)
	for {
		f, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.Equal(t, int32(5), f.Number)
		switch f.WireType {
		case wire.Bytes:
			require.NoError(t, message.PackedVarints(f.Value, func(v uint64) error {
				got = append(got, v)
				return nil
			}))
		case wire.Varint:
			v, _, err := wire.ConsumeVarint(f.Value)
			require.NoError(t, err)
			got = append(got, v)
		default:
			t.Fatalf("unexpected wire type %v", f.WireType)
		}
	}
	require.Equal(t, []uint64{1, 2, 3, 4}, got)
}

func TestUnknownFieldsRoundTrip(t *testing.T) {
	// A message with fields 1 (known) and 99 (unknown) must re-encode with
	// field 99's bytes preserved bit-for-bit, even though nothing in this
	// package understands what field 99 means.
	w := message.NewWriter(0)
	w.WriteVarintField(1, 42)
	w.WriteVarintField(99, 7)
	original := w.Bytes()

	var known uint64
	var unknown message.UnknownFields
	it := message.NewIterator(original, 0)
	for {
		f, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		if f.Number == 1 {
			known, _, err = wire.ConsumeVarint(f.Value)
			require.NoError(t, err)
			continue
		}
		unknown.Append(f.Raw)
	}
	require.Equal(t, uint64(42), known)

	out := message.NewWriter(0)
	out.WriteVarintField(1, known)
	unknown.WriteTo(out)
	require.Equal(t, original, out.Bytes())
}

func TestWriteNestedMessageSizeInvariant(t *testing.T) {
	// encode() must write exactly size() bytes for a nested message, or
	// the parent's length prefix would no longer describe its payload.
	inner := message.NewWriter(0)
	inner.WriteVarintField(1, 9999999)
	size := inner.Len()

	outer := message.NewWriter(0)
	outer.WriteNestedMessage(7, size, func(w *message.Writer) {
		w.WriteVarintField(1, 9999999)
	})

	it := message.NewIterator(outer.Bytes(), 0)
	f, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(7), f.Number)
	require.Equal(t, inner.Bytes(), f.Value)
}

func TestWriteNestedMessageSizeMismatchPanics(t *testing.T) {
	outer := message.NewWriter(0)
	require.Panics(t, func() {
		outer.WriteNestedMessage(1, 4, func(w *message.Writer) {
			w.WriteVarintField(1, 1)
		})
	})
}

func TestMapEntryRoundTrip(t *testing.T) {
	raw := message.EncodeMapEntry(
		func(w *message.Writer) { w.WriteLenField(1, []byte("key")) },
		func(w *message.Writer) { w.WriteVarintField(2, 123) },
	)
	entry, err := message.DecodeMapEntry(raw, 0)
	require.NoError(t, err)
	require.True(t, entry.HasKey)
	require.True(t, entry.HasValue)
	require.Equal(t, []byte("key"), entry.Key.Value)
	v, _, err := wire.ConsumeVarint(entry.Value.Value)
	require.NoError(t, err)
	require.Equal(t, uint64(123), v)
}

func TestGroupSkipping(t *testing.T) {
	// A group (field 3) containing a nested field must be skipped whole,
	// with Raw spanning start-group through end-group.
	inner := message.NewWriter(0)
	inner.WriteVarintField(1, 5)

	buf := wire.AppendTag(nil, 3, wire.StartGroup)
	buf = append(buf, inner.Bytes()...)
	buf = wire.AppendTag(buf, 3, wire.EndGroup)
	buf = wire.AppendTag(buf, 4, wire.Varint)
	buf = wire.AppendVarint(buf, 1)

	it := message.NewIterator(buf, 0)
	f, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(3), f.Number)
	require.Equal(t, wire.StartGroup, f.WireType)

	f2, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(4), f2.Number)
	require.True(t, it.Done())
}
