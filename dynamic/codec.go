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

package dynamic

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/protospec/pbgen/descriptor"
	"github.com/protospec/pbgen/message"
	"github.com/protospec/pbgen/wire"
)

// Encode serializes m in ascending field-number order, exactly the
// generated-code contract spec.md 4.6 describes: proto3 implicit scalars
// skip their zero value, repeated fields skip when empty, map fields
// serialize each entry as a synthetic (key=1, value=2) submessage. limit
// bounds nested-message recursion depth; 0 selects
// message.DefaultRecursionLimit.
func Encode(m *Message, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = message.DefaultRecursionLimit
	}
	w := message.NewWriter(0)
	if err := encodeInto(w, m, limit, 0); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func encodeInto(w *message.Writer, m *Message, limit, depth int) error {
	for _, num := range m.order {
		if mf, ok := m.mapByNum[num]; ok {
			if err := encodeMapField(w, m, mf, limit, depth); err != nil {
				return err
			}
			continue
		}
		f := m.fieldByNum[num]
		s, ok := m.slots[num]
		if !ok {
			continue
		}
		switch f.Label {
		case descriptor.LabelRepeated:
			if len(s.list) == 0 {
				continue
			}
			if err := encodeRepeated(w, f, s.list, limit, depth); err != nil {
				return err
			}
		default:
			if !s.has {
				continue
			}
			if f.Label == descriptor.LabelImplicit && s.single.IsZero(f.Kind) {
				continue
			}
			if err := encodeScalar(w, f.Number, f.Kind, f.TypeName, s.single, limit, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeRepeated(w *message.Writer, f *descriptor.Field, values []Value, limit, depth int) error {
	if f.Packed && f.Kind.IsNumeric() {
		var packed []byte
		for _, v := range values {
			packed = appendPacked(packed, f.Kind, v)
		}
		w.WriteLenField(f.Number, packed)
		return nil
	}
	for _, v := range values {
		if err := encodeScalar(w, f.Number, f.Kind, f.TypeName, v, limit, depth); err != nil {
			return err
		}
	}
	return nil
}

func appendPacked(buf []byte, k descriptor.Kind, v Value) []byte {
	switch k {
	case descriptor.KindFixed32:
		return message.AppendPackedFixed32(buf, uint32(v.Uint()))
	case descriptor.KindSFixed32:
		return message.AppendPackedFixed32(buf, uint32(v.Int()))
	case descriptor.KindFloat:
		return message.AppendPackedFixed32(buf, math.Float32bits(float32(v.Float())))
	case descriptor.KindFixed64:
		return message.AppendPackedFixed64(buf, v.Uint())
	case descriptor.KindSFixed64:
		return message.AppendPackedFixed64(buf, uint64(v.Int()))
	case descriptor.KindDouble:
		return message.AppendPackedFixed64(buf, math.Float64bits(v.Float()))
	case descriptor.KindSInt32:
		return message.AppendPackedVarint(buf, uint64(wire.EncodeZigZag32(int32(v.Int()))))
	case descriptor.KindSInt64:
		return message.AppendPackedVarint(buf, wire.EncodeZigZag64(v.Int()))
	case descriptor.KindUInt32, descriptor.KindUInt64:
		return message.AppendPackedVarint(buf, v.Uint())
	default: // int32/int64/bool/enum
		return message.AppendPackedVarint(buf, uint64(v.Int()))
	}
}

func encodeScalar(w *message.Writer, num int32, k descriptor.Kind, typeName string, v Value, limit, depth int) error {
	switch k {
	case descriptor.KindInt32, descriptor.KindInt64, descriptor.KindEnum:
		w.WriteSignedVarintField(num, v.Int())
	case descriptor.KindUInt32, descriptor.KindUInt64:
		w.WriteVarintField(num, v.Uint())
	case descriptor.KindBool:
		w.WriteVarintField(num, uint64(v.Int()))
	case descriptor.KindSInt32:
		w.WriteZigZag32Field(num, int32(v.Int()))
	case descriptor.KindSInt64:
		w.WriteZigZag64Field(num, v.Int())
	case descriptor.KindFixed32:
		w.WriteFixed32Field(num, uint32(v.Uint()))
	case descriptor.KindSFixed32:
		w.WriteFixed32Field(num, uint32(v.Int()))
	case descriptor.KindFloat:
		w.WriteFixed32Field(num, math.Float32bits(float32(v.Float())))
	case descriptor.KindFixed64:
		w.WriteFixed64Field(num, v.Uint())
	case descriptor.KindSFixed64:
		w.WriteFixed64Field(num, uint64(v.Int()))
	case descriptor.KindDouble:
		w.WriteFixed64Field(num, math.Float64bits(v.Float()))
	case descriptor.KindString:
		if !utf8.ValidString(v.Str()) {
			return wire.ErrInvalidUTF8
		}
		w.WriteLenField(num, []byte(v.Str()))
	case descriptor.KindBytes:
		w.WriteLenField(num, v.Bytes())
	case descriptor.KindMessage:
		return encodeNested(w, num, v.Message(), limit, depth)
	case descriptor.KindGroup:
		return encodeGroup(w, num, v.Message(), limit, depth)
	default:
		return fmt.Errorf("dynamic: cannot encode field %d of unresolved kind %v (type %q)", num, k, typeName)
	}
	return nil
}

func encodeNested(w *message.Writer, num int32, sub *Message, limit, depth int) error {
	if depth+1 > limit {
		return wire.ErrRecursionLimitExceeded
	}
	if sub == nil {
		return nil
	}
	size, err := sizeMessage(sub, limit, depth+1)
	if err != nil {
		return err
	}
	var encErr error
	w.WriteNestedMessage(num, size, func(nw *message.Writer) {
		if err := encodeInto(nw, sub, limit, depth+1); err != nil {
			encErr = err
		}
	})
	return encErr
}

func encodeGroup(w *message.Writer, num int32, sub *Message, limit, depth int) error {
	if depth+1 > limit {
		return wire.ErrRecursionLimitExceeded
	}
	if sub == nil {
		return nil
	}
	w.AppendRaw(wire.AppendTag(nil, num, wire.StartGroup))
	if err := encodeInto(w, sub, limit, depth+1); err != nil {
		return err
	}
	w.AppendRaw(wire.AppendTag(nil, num, wire.EndGroup))
	return nil
}

func encodeMapField(w *message.Writer, m *Message, mf *descriptor.MapField, limit, depth int) error {
	s, ok := m.slots[mf.Number]
	if !ok {
		return nil
	}
	switch s.kind {
	case storeMapString:
		keys := make([]string, 0, len(s.strMap))
		for k := range s.strMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			body, err := encodeMapEntry(mf, String(k), s.strMap[k], limit, depth)
			if err != nil {
				return err
			}
			w.WriteLenField(mf.Number, body)
		}
	case storeMapInt:
		keys := make([]int64, 0, len(s.intMap))
		for k := range s.intMap {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, k := range keys {
			body, err := encodeMapEntry(mf, Int(k), s.intMap[k], limit, depth)
			if err != nil {
				return err
			}
			w.WriteLenField(mf.Number, body)
		}
	}
	return nil
}

func encodeMapEntry(mf *descriptor.MapField, key, val Value, limit, depth int) ([]byte, error) {
	var encErr error
	body := message.EncodeMapEntry(
		func(kw *message.Writer) {
			if err := encodeScalar(kw, 1, mf.KeyKind, "", key, limit, depth); err != nil {
				encErr = err
			}
		},
		func(vw *message.Writer) {
			if err := encodeScalar(vw, 2, mf.ValueKind, mf.ValueType, val, limit, depth); err != nil {
				encErr = err
			}
		},
	)
	return body, encErr
}

// sizeMessage computes m's exact encoded size by actually encoding it;
// this module has no separate schema-specialized size() routine the way
// generated code does (spec.md 4.6's size()/encode() split exists to
// avoid a double-walk in the generated path), so the dynamic layer pays
// for the work twice. The two-pass size()==encode() invariant still
// holds: both passes walk the same descriptor-driven logic.
func sizeMessage(m *Message, limit, depth int) (int, error) {
	w := message.NewWriter(0)
	if err := encodeInto(w, m, limit, depth); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

// Decode parses buf into a new dynamic Message described by desc,
// resolving nested message/group field types through reg. limit bounds
// recursion depth (both group-skip depth within one body and
// message-within-message nesting); 0 selects message.DefaultRecursionLimit.
func Decode(buf []byte, desc *descriptor.Message, reg *Registry, limit int) (*Message, error) {
	if limit <= 0 {
		limit = message.DefaultRecursionLimit
	}
	return decodeInto(buf, desc, reg, limit, 0)
}

func decodeInto(buf []byte, desc *descriptor.Message, reg *Registry, limit, depth int) (*Message, error) {
	if depth > limit {
		return nil, wire.ErrRecursionLimitExceeded
	}
	m := NewMessage(desc)
	it := message.NewIterator(buf, limit)
	for {
		f, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return m, nil
		}
		if mf, isMap := m.mapByNum[f.Number]; isMap {
			if err := decodeMapEntry(m, mf, f.Value, reg, limit, depth); err != nil {
				return nil, err
			}
			continue
		}
		fd, ok := m.fieldByNum[f.Number]
		if !ok {
			continue // dynamic layer drops unknown fields, per spec.md 4.8
		}
		if err := decodeField(m, fd, f, reg, limit, depth); err != nil {
			return nil, err
		}
	}
}

func decodeField(m *Message, fd *descriptor.Field, f message.Field, reg *Registry, limit, depth int) error {
	if fd.Kind.IsNumeric() && f.WireType == wire.Bytes && fd.Label == descriptor.LabelRepeated {
		return decodePacked(m, fd, f.Value)
	}
	v, err := decodeScalar(fd.Kind, fd.TypeName, f, reg, limit, depth)
	if err != nil {
		return err
	}
	if fd.Label == descriptor.LabelRepeated {
		m.Append(fd.Number, v)
	} else {
		m.Set(fd.Number, v)
	}
	return nil
}

func decodePacked(m *Message, fd *descriptor.Field, payload []byte) error {
	switch fd.Kind {
	case descriptor.KindFixed32, descriptor.KindSFixed32, descriptor.KindFloat:
		return message.PackedFixed32(payload, func(u uint32) error {
			m.Append(fd.Number, fixed32Value(fd.Kind, u))
			return nil
		})
	case descriptor.KindFixed64, descriptor.KindSFixed64, descriptor.KindDouble:
		return message.PackedFixed64(payload, func(u uint64) error {
			m.Append(fd.Number, fixed64Value(fd.Kind, u))
			return nil
		})
	default:
		return message.PackedVarints(payload, func(u uint64) error {
			m.Append(fd.Number, varintValue(fd.Kind, u))
			return nil
		})
	}
}

func varintValue(k descriptor.Kind, u uint64) Value {
	switch k {
	case descriptor.KindSInt32:
		return Int(int64(wire.DecodeZigZag32(uint32(u))))
	case descriptor.KindSInt64:
		return Int(wire.DecodeZigZag64(u))
	case descriptor.KindUInt32, descriptor.KindUInt64:
		return Uint(u)
	case descriptor.KindBool:
		return Bool(u != 0)
	default: // int32/int64/enum
		return Int(int64(u))
	}
}

func fixed32Value(k descriptor.Kind, u uint32) Value {
	switch k {
	case descriptor.KindFloat:
		return Float(float64(math.Float32frombits(u)))
	case descriptor.KindSFixed32:
		return Int(int64(int32(u)))
	default:
		return Uint(uint64(u))
	}
}

func fixed64Value(k descriptor.Kind, u uint64) Value {
	switch k {
	case descriptor.KindDouble:
		return Float(math.Float64frombits(u))
	case descriptor.KindSFixed64:
		return Int(int64(u))
	default:
		return Uint(u)
	}
}

func decodeScalar(k descriptor.Kind, typeName string, f message.Field, reg *Registry, limit, depth int) (Value, error) {
	switch k {
	case descriptor.KindInt32, descriptor.KindInt64, descriptor.KindUInt32, descriptor.KindUInt64,
		descriptor.KindSInt32, descriptor.KindSInt64, descriptor.KindBool, descriptor.KindEnum:
		u, _, err := wire.ConsumeVarint(f.Value)
		if err != nil {
			return Value{}, err
		}
		return varintValue(k, u), nil
	case descriptor.KindFixed32, descriptor.KindSFixed32, descriptor.KindFloat:
		u, _, err := wire.ConsumeFixed32(f.Value)
		if err != nil {
			return Value{}, err
		}
		return fixed32Value(k, u), nil
	case descriptor.KindFixed64, descriptor.KindSFixed64, descriptor.KindDouble:
		u, _, err := wire.ConsumeFixed64(f.Value)
		if err != nil {
			return Value{}, err
		}
		return fixed64Value(k, u), nil
	case descriptor.KindString:
		if !utf8.Valid(f.Value) {
			return Value{}, wire.ErrInvalidUTF8
		}
		return String(string(f.Value)), nil
	case descriptor.KindBytes:
		return Bytes(f.Value), nil
	case descriptor.KindMessage:
		sub, err := decodeEmbedded(f.Value, typeName, reg, limit, depth)
		if err != nil {
			return Value{}, err
		}
		return MessageValue(sub), nil
	case descriptor.KindGroup:
		sub, err := decodeGroupBody(f, typeName, reg, limit, depth)
		if err != nil {
			return Value{}, err
		}
		return MessageValue(sub), nil
	default:
		return Value{}, fmt.Errorf("dynamic: cannot decode field of unresolved kind %v (type %q)", k, typeName)
	}
}

func decodeEmbedded(body []byte, typeName string, reg *Registry, limit, depth int) (*Message, error) {
	sub, ok := reg.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("dynamic: unknown message type %q", typeName)
	}
	return decodeInto(body, sub, reg, limit, depth+1)
}

func decodeGroupBody(f message.Field, typeName string, reg *Registry, limit, depth int) (*Message, error) {
	startTag := wire.AppendTag(nil, f.Number, wire.StartGroup)
	endTag := wire.AppendTag(nil, f.Number, wire.EndGroup)
	if len(f.Raw) < len(startTag)+len(endTag) {
		return nil, wire.ErrEndOfStream
	}
	inner := f.Raw[len(startTag) : len(f.Raw)-len(endTag)]
	return decodeEmbedded(inner, typeName, reg, limit, depth)
}

func decodeMapEntry(m *Message, mf *descriptor.MapField, body []byte, reg *Registry, limit, depth int) error {
	entry, err := message.DecodeMapEntry(body, limit)
	if err != nil {
		return err
	}
	var key Value
	if entry.HasKey {
		key, err = decodeScalar(mf.KeyKind, "", entry.Key, reg, limit, depth)
		if err != nil {
			return err
		}
	}
	var val Value
	if entry.HasValue {
		val, err = decodeScalar(mf.ValueKind, mf.ValueType, entry.Value, reg, limit, depth)
		if err != nil {
			return err
		}
	}
	switch mf.KeyKind {
	case descriptor.KindString:
		m.PutString(mf.Number, key.Str(), val)
	default:
		m.PutInt(mf.Number, key.Int(), val)
	}
	return nil
}
