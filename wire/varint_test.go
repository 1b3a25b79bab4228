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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 150, 300, math.MaxUint32, math.MaxUint64}
	for _, v := range values {
		buf := AppendVarint(nil, v)
		assert.Len(t, buf, SizeVarint(v), "SizeVarint(%d)", v)

		got, n, err := ConsumeVarint(buf)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
	}
}

func TestVarint150(t *testing.T) {
	// Spec example: encoding 150 produces 96 01.
	buf := AppendVarint(nil, 150)
	assert.Equal(t, []byte{0x96, 0x01}, buf)

	v, n, err := ConsumeVarint([]byte{0x96, 0x01})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint64(150), v)
}

func TestVarintOverlongZero(t *testing.T) {
	v, n, err := ConsumeVarint([]byte{0x80, 0x00})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint64(0), v)
}

func TestVarintTruncated(t *testing.T) {
	_, _, err := ConsumeVarint([]byte{0x80})
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestVarintTenByteOverflow(t *testing.T) {
	// 10 bytes, all continuation except the last, whose value exceeds 0x01.
	buf := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}
	_, _, err := ConsumeVarint(buf)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestVarintElevenBytes(t *testing.T) {
	buf := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	_, _, err := ConsumeVarint(buf)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestVarintTenByteMaxValid(t *testing.T) {
	buf := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	v, n, err := ConsumeVarint(buf)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, uint64(math.MaxUint64), v)
}

func TestConsumeBoolNonZero(t *testing.T) {
	// Spec: any non-zero varint decodes as bool true, not just 1.
	for _, raw := range [][]byte{{0x01}, {0x02}, {0x96, 0x01}} {
		v, _, err := ConsumeBool(raw)
		require.NoError(t, err)
		assert.True(t, v)
	}
	v, _, err := ConsumeBool([]byte{0x00})
	require.NoError(t, err)
	assert.False(t, v)
}

func TestConsumeVarint32Truncates(t *testing.T) {
	// A full 64-bit varint decoded as int32/uint32 truncates to the low bits.
	buf := AppendVarint(nil, 1<<32+7)
	v, _, err := ConsumeVarint32(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)
}
