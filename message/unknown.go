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

// UnknownFields preserves the raw wire bytes (tag included) of every field
// number a decoder doesn't recognize, in the order encountered, so a
// subsequent encode can re-emit them verbatim. This is what makes
// decode(encode(m)) == m hold even across a version skew where m carries
// fields the current schema doesn't know about.
type UnknownFields struct {
	raw []byte
}

// Append records one more unknown field's raw bytes.
func (u *UnknownFields) Append(raw []byte) {
	u.raw = append(u.raw, raw...)
}

// Bytes returns the accumulated raw bytes, in encounter order.
func (u *UnknownFields) Bytes() []byte { return u.raw }

// Len reports the number of raw bytes accumulated.
func (u *UnknownFields) Len() int { return len(u.raw) }

// WriteTo appends the preserved bytes to w, verbatim. Generated encode()
// routines call this last, after every known field, per spec.md 4.6.
func (u *UnknownFields) WriteTo(w *Writer) {
	if u != nil {
		w.AppendRaw(u.raw)
	}
}

// Merge appends other's preserved bytes after this one's, matching the
// concatenation semantics used for every other repeated-ish field kind.
func (u *UnknownFields) Merge(other *UnknownFields) {
	if other != nil {
		u.raw = append(u.raw, other.raw...)
	}
}

// Clone returns a deep copy, so callers can duplicate a decoded message
// without aliasing its unknown-field buffer.
func (u *UnknownFields) Clone() *UnknownFields {
	if u == nil || len(u.raw) == 0 {
		return &UnknownFields{}
	}
	cp := make([]byte, len(u.raw))
	copy(cp, u.raw)
	return &UnknownFields{raw: cp}
}
