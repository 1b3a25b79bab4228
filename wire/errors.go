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

// Package wire implements the Protocol Buffers binary wire format: varint
// and ZigZag encoding, fixed-width little-endian encoding, and tag framing.
// Every function here is a pure, stateless transform over byte slices;
// none of them know anything about message schemas.
package wire

import "errors"

// Sentinel errors for the decode paths. Every decode failure in this
// package and in package message is one of these, so callers can use
// errors.Is against them.
var (
	// ErrOverflow is returned when a varint uses more than 10 bytes, or its
	// 10th byte carries bits beyond bit 0, or a decoded length does not fit
	// in the target index width.
	ErrOverflow = errors.New("wire: varint overflow")
	// ErrEndOfStream is returned when the input is exhausted before a
	// value finishes decoding.
	ErrEndOfStream = errors.New("wire: unexpected end of stream")
	// ErrInvalidWireType is returned for a tag whose wire type is 6 or 7.
	ErrInvalidWireType = errors.New("wire: invalid wire type")
	// ErrInvalidFieldNumber is returned for a tag encoding field number 0,
	// or a field number outside [1, 2^29-1].
	ErrInvalidFieldNumber = errors.New("wire: invalid field number")
	// ErrInvalidUTF8 is returned when a string-typed field's bytes are not
	// valid UTF-8.
	ErrInvalidUTF8 = errors.New("wire: invalid UTF-8 in string field")
	// ErrRecursionLimitExceeded is returned when skipping a group, or
	// decoding a nested message, exceeds the configured recursion depth.
	ErrRecursionLimitExceeded = errors.New("wire: recursion limit exceeded")
)
