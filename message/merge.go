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

// This file documents and implements the merge semantics from spec.md
// 4.2's table. Scalar and oneof-variant "last value wins" and repeated
// "concatenate" require no helper beyond ordinary assignment/append in
// generated code, so only the two kinds that need shared logic -- nested
// messages (recursive merge) and map entries (synthetic submessage with a
// fixed key/value field layout) -- get functions here.

// MapEntry holds the raw, still-undecoded key and value payloads of one
// occurrence of a map field's synthetic (field 1 = key, field 2 = value)
// submessage, per spec.md 4.6. A field that is absent from the entry
// (permitted by proto3) leaves HasKey/HasValue false and Key/Value the
// zero Field; callers substitute the type's zero value.
type MapEntry struct {
	Key   Field
	Value Field
	HasKey, HasValue bool
}

// DecodeMapEntry decodes one map-entry submessage body (the payload of a
// single LEN-framed occurrence of the synthetic repeated field a map
// field lowers to), returning its key and value records. Unknown field
// numbers inside the entry are ignored, mirroring protoc's own leniency
// here. If the key or value appears more than once in one entry (which a
// malicious or buggy encoder could produce), the last occurrence wins,
// consistent with ordinary scalar merge semantics.
func DecodeMapEntry(body []byte, limit int) (MapEntry, error) {
	var entry MapEntry
	it := NewIterator(body, limit)
	for {
		f, ok, err := it.Next()
		if err != nil {
			return MapEntry{}, err
		}
		if !ok {
			return entry, nil
		}
		switch f.Number {
		case 1:
			entry.Key = f
			entry.HasKey = true
		case 2:
			entry.Value = f
			entry.HasValue = true
		}
	}
}

// EncodeMapEntry serializes a map entry's key and value fields (numbers 1
// and 2) into a single submessage body via writeKey/writeValue, which
// append a field 1 and field 2 record respectively to w.
func EncodeMapEntry(writeKey, writeValue func(*Writer)) []byte {
	w := NewWriter(0)
	writeKey(w)
	writeValue(w)
	return w.Bytes()
}
