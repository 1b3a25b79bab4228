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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagFieldOneVarint150(t *testing.T) {
	// Spec scenario 2: field 1, varint 150 -> 08 96 01.
	buf := AppendTag(nil, 1, Varint)
	buf = AppendVarint(buf, 150)
	assert.Equal(t, []byte{0x08, 0x96, 0x01}, buf)
}

func TestTagFieldTwoString(t *testing.T) {
	// Spec scenario 3: field 2, string "testing" -> 12 07 74 65 73 74 69 6e 67.
	buf := AppendTag(nil, 2, Bytes)
	buf = AppendLengthPrefixed(buf, []byte("testing"))
	assert.Equal(t, []byte{0x12, 0x07, 0x74, 0x65, 0x73, 0x74, 0x69, 0x6e, 0x67}, buf)
}

func TestTagInvalidWireType(t *testing.T) {
	for _, wt := range []uint64{6, 7} {
		_, _, err := DecodeTag(1<<3 | wt)
		assert.ErrorIs(t, err, ErrInvalidWireType)
	}
}

func TestTagFieldZero(t *testing.T) {
	_, _, err := DecodeTag(0<<3 | uint64(Varint))
	assert.ErrorIs(t, err, ErrInvalidFieldNumber)
}

func TestTagMaxFieldNumberRoundTrips(t *testing.T) {
	buf := AppendTag(nil, MaxFieldNumber, Varint)
	num, wt, n, err := ConsumeTag(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, int32(MaxFieldNumber), num)
	assert.Equal(t, Varint, wt)
}

func TestNegativeInt32AlwaysTenBytes(t *testing.T) {
	for _, v := range []int32{-1, -7, -1 << 31} {
		buf := AppendNegativeInt32(nil, v)
		assert.Len(t, buf, 10, "v=%d", v)
		assert.Equal(t, 10, SizeNegativeInt32(v))

		decoded, _, err := ConsumeVarint(buf)
		require.NoError(t, err)
		assert.Equal(t, v, int32(int64(decoded)))
	}
}

func TestLengthPrefixedLengthPastEndOfBuffer(t *testing.T) {
	// A length varint whose value is absurdly large relative to the buffer.
	buf := AppendVarint(nil, 1<<40)
	_, _, err := ConsumeLengthPrefixed(buf)
	assert.ErrorIs(t, err, ErrEndOfStream)
}
