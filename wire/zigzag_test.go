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
)

func TestZigZag32RoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 2, -2, math.MaxInt32, math.MinInt32}
	for _, v := range values {
		assert.Equal(t, v, DecodeZigZag32(EncodeZigZag32(v)), "v=%d", v)
	}
	// Small magnitudes should encode compactly in both directions.
	assert.Equal(t, uint32(0), EncodeZigZag32(0))
	assert.Equal(t, uint32(1), EncodeZigZag32(-1))
	assert.Equal(t, uint32(2), EncodeZigZag32(1))
}

func TestZigZag64RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, math.MaxInt64, math.MinInt64}
	for _, v := range values {
		assert.Equal(t, v, DecodeZigZag64(EncodeZigZag64(v)), "v=%d", v)
	}
}
