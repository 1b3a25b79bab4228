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

package descriptorset

import (
	"fmt"

	"github.com/protospec/pbgen/ast"
	"github.com/protospec/pbgen/descriptor"
	"github.com/protospec/pbgen/message"
	"github.com/protospec/pbgen/wire"
)

// rawMessage groups a wire-decoded submessage's repeated-field payloads by
// field number, in declaration order, without interpreting them -- the
// decode* functions below interpret one field number at a time. This
// mirrors message.Iterator's own "yield records, let the caller decide
// what they mean" design, one level up.
type rawMessage map[int32][][]byte

func decodeRaw(buf []byte) (rawMessage, error) {
	out := rawMessage{}
	it := message.NewIterator(buf, message.DefaultRecursionLimit)
	for {
		f, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out[f.Number] = append(out[f.Number], f.Value)
	}
}

func (r rawMessage) str(num int32) string {
	if vs := r[num]; len(vs) > 0 {
		return string(vs[len(vs)-1])
	}
	return ""
}

func (r rawMessage) varint(num int32) (uint64, bool) {
	vs := r[num]
	if len(vs) == 0 {
		return 0, false
	}
	v, _, err := wire.ConsumeVarint(vs[len(vs)-1])
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r rawMessage) int32(num int32) (int32, bool) {
	v, ok := r.varint(num)
	return int32(v), ok
}

func (r rawMessage) boolean(num int32) bool {
	v, ok := r.varint(num)
	return ok && v != 0
}

// DecodeFile decodes one FileDescriptorProto, as it arrives inside a
// CodeGeneratorRequest's proto_file list, into a resolved descriptor.File.
// Unlike package linker, no symbol-table lookup is needed: protoc has
// already fully qualified every message/enum type_name by the time it
// reaches a plugin, so decoding is a direct, single-pass walk.
func DecodeFile(buf []byte) (*descriptor.File, error) {
	r, err := decodeRaw(buf)
	if err != nil {
		return nil, fmt.Errorf("descriptorset: decoding FileDescriptorProto: %w", err)
	}

	f := &descriptor.File{
		Path:    r.str(fileName),
		Package: r.str(filePackage),
		Syntax:  ast.Proto2,
	}
	if r.str(fileSyntax) == "proto3" {
		f.Syntax = ast.Proto3
	}
	for _, dep := range r[fileDependency] {
		f.Imports = append(f.Imports, string(dep))
	}
	for _, idx := range r[filePublicDep] {
		v, _, err := wire.ConsumeVarint(idx)
		if err != nil {
			return nil, err
		}
		if int(v) < len(f.Imports) {
			f.PublicImports = append(f.PublicImports, f.Imports[v])
		}
	}

	scope := packagePrefix(f.Package)
	for _, mb := range r[fileMessageType] {
		m, err := decodeMessage(mb, f.Syntax)
		if err != nil {
			return nil, err
		}
		qualifyMessage(m, scope)
		f.Messages = append(f.Messages, m)
	}
	for _, eb := range r[fileEnumType] {
		e, err := decodeEnum(eb)
		if err != nil {
			return nil, err
		}
		e.Name = scope + "." + e.Name
		f.Enums = append(f.Enums, e)
	}
	for _, sb := range r[fileService] {
		s, err := decodeService(sb)
		if err != nil {
			return nil, err
		}
		s.Name = scope + "." + s.Name
		f.Services = append(f.Services, s)
	}
	return f, nil
}

// packagePrefix mirrors linker's own packagePrefix: a file's package "a.b"
// becomes the absolute scope ".a.b" that every top-level declaration's
// name is qualified under; no package gives an empty scope.
func packagePrefix(pkg string) string {
	if pkg == "" {
		return ""
	}
	return "." + pkg
}

// qualifyMessage assigns m (and everything nested in it) its absolute,
// leading-dot name, matching linker.buildMessage's scope+"."+name
// construction -- necessary because DescriptorProto.name arrives bare,
// while FieldDescriptorProto.type_name arrives already absolute, and
// foldMapEntries below must compare the two in the same form. Folding
// runs after a message's own Nested children are themselves fully
// qualified (and have folded their own nested map entries), so a map
// field's synthetic entry type is always found by its final, absolute
// name.
func qualifyMessage(m *descriptor.Message, scope string) {
	abs := scope + "." + m.Name
	m.Name = abs
	for _, n := range m.Nested {
		qualifyMessage(n, abs)
	}
	for _, e := range m.Enums {
		e.Name = abs + "." + e.Name
	}
	foldMapEntries(m)
}

// decodeMessage decodes one DescriptorProto. Its Name is left as the bare
// (unqualified) declared name; qualifyMessage fills in the absolute name
// once the enclosing scope is known, mirroring linker.buildMessage's own
// scope+"."+name construction. syntax decides a plain singular field's
// Label (LabelImplicit in proto3, LabelOptional in proto2) since the wire
// form's own Label field can't tell these apart -- protoc sets
// LABEL_OPTIONAL on both.
func decodeMessage(buf []byte, syntax ast.Syntax) (*descriptor.Message, error) {
	r, err := decodeRaw(buf)
	if err != nil {
		return nil, err
	}
	m := &descriptor.Message{Name: r.str(msgName)}

	for _, ob := range r[msgOneofDecl] {
		or, err := decodeRaw(ob)
		if err != nil {
			return nil, err
		}
		m.Oneofs = append(m.Oneofs, descriptor.Oneof{Name: or.str(oneofName)})
	}

	if optBuf := r[msgOptions]; len(optBuf) > 0 {
		optR, err := decodeRaw(optBuf[len(optBuf)-1])
		if err != nil {
			return nil, err
		}
		m.IsMapEntry = optR.boolean(msgOptMapEntry)
	}

	for _, fb := range r[msgField] {
		fd, err := decodeField(fb, syntax)
		if err != nil {
			return nil, err
		}
		m.Fields = append(m.Fields, fd)
	}

	for _, nb := range r[msgNestedType] {
		n, err := decodeMessage(nb, syntax)
		if err != nil {
			return nil, err
		}
		m.Nested = append(m.Nested, n)
	}
	for _, eb := range r[msgEnumType] {
		e, err := decodeEnum(eb)
		if err != nil {
			return nil, err
		}
		m.Enums = append(m.Enums, e)
	}

	return m, nil
}

// foldMapEntries recognizes the repeated-message-field-plus-map_entry-
// nested-type pattern spec.md 4.7 calls for: a map<K, V> field arrives on
// the wire as a repeated field whose TypeName points at a nested message
// flagged map_entry with exactly two fields (key=1, value=2). Those are
// extracted into descriptor.MapField and the synthetic field is dropped
// from Fields, though the entry type is kept in Nested (matching the
// descriptor package's own convention -- codegen already skips
// IsMapEntry messages when emitting types).
func foldMapEntries(m *descriptor.Message) {
	entryByName := map[string]*descriptor.Message{}
	for _, n := range m.Nested {
		if n.IsMapEntry {
			entryByName[n.Name] = n
		}
	}
	if len(entryByName) == 0 {
		return
	}

	var kept []descriptor.Field
	for _, fd := range m.Fields {
		entry, isMapField := entryByName[fd.TypeName]
		if !isMapField || fd.Label != descriptor.LabelRepeated || fd.Kind != descriptor.KindMessage {
			kept = append(kept, fd)
			continue
		}
		var keyKind, valKind descriptor.Kind
		var valType string
		for _, ef := range entry.Fields {
			switch ef.Number {
			case 1:
				keyKind = ef.Kind
			case 2:
				valKind = ef.Kind
				valType = ef.TypeName
			}
		}
		m.MapFields = append(m.MapFields, descriptor.MapField{
			Name: fd.Name, JSONName: fd.JSONName, Number: fd.Number,
			KeyKind: keyKind, ValueKind: valKind, ValueType: valType,
			EntryMessage: entry.Name, Pos: fd.Pos,
		})
	}
	m.Fields = kept
}

// decodeField decodes one FieldDescriptorProto. The authoritative signal
// for proto3 explicit presence is the proto3_optional bit (field 17), not
// the oneof it's folded into -- protoc always names that synthetic oneof
// "_"+field, but the bit is the documented contract, so it drives
// Synthetic/Label directly here instead of pattern-matching a name.
func decodeField(buf []byte, syntax ast.Syntax) (descriptor.Field, error) {
	r, err := decodeRaw(buf)
	if err != nil {
		return descriptor.Field{}, err
	}
	fd := descriptor.Field{
		Name:       r.str(fieldName),
		JSONName:   r.str(fieldJSONName),
		OneofIndex: -1,
	}
	if n, ok := r.int32(fieldNumber); ok {
		fd.Number = n
	}
	if idx, ok := r.int32(fieldOneofIndex); ok {
		fd.OneofIndex = int(idx)
	}

	label, _ := r.int32(fieldLabel)
	switch {
	case label == labelRequired:
		fd.Label = descriptor.LabelRequired
	case label == labelRepeated:
		fd.Label = descriptor.LabelRepeated
	case syntax == ast.Proto3:
		fd.Label = descriptor.LabelImplicit
	default:
		fd.Label = descriptor.LabelOptional
	}

	typ, _ := r.int32(fieldType)
	fd.Kind = kindFromWireType(typ)
	if fd.Kind == descriptor.KindMessage || fd.Kind == descriptor.KindEnum || fd.Kind == descriptor.KindGroup {
		fd.TypeName = r.str(fieldTypeName)
	}

	if fd.Label == descriptor.LabelRepeated && fd.Kind.IsNumeric() {
		fd.Packed = syntax == ast.Proto3
	}
	if optBuf := r[fieldOptions]; len(optBuf) > 0 {
		optR, err := decodeRaw(optBuf[len(optBuf)-1])
		if err != nil {
			return descriptor.Field{}, err
		}
		if _, ok := optR[fieldOptPacked]; ok {
			fd.Packed = optR.boolean(fieldOptPacked)
		}
	}

	if r.boolean(fieldProto3Opt) {
		fd.Synthetic = true
		fd.Label = descriptor.LabelOptional
	}

	return fd, nil
}

func kindFromWireType(t int32) descriptor.Kind {
	switch t {
	case typeDouble:
		return descriptor.KindDouble
	case typeFloat:
		return descriptor.KindFloat
	case typeInt64:
		return descriptor.KindInt64
	case typeUInt64:
		return descriptor.KindUInt64
	case typeInt32:
		return descriptor.KindInt32
	case typeFixed64:
		return descriptor.KindFixed64
	case typeFixed32:
		return descriptor.KindFixed32
	case typeBool:
		return descriptor.KindBool
	case typeString:
		return descriptor.KindString
	case typeGroup:
		return descriptor.KindGroup
	case typeMessage:
		return descriptor.KindMessage
	case typeBytes:
		return descriptor.KindBytes
	case typeUInt32:
		return descriptor.KindUInt32
	case typeEnum:
		return descriptor.KindEnum
	case typeSFixed32:
		return descriptor.KindSFixed32
	case typeSFixed64:
		return descriptor.KindSFixed64
	case typeSInt32:
		return descriptor.KindSInt32
	case typeSInt64:
		return descriptor.KindSInt64
	default:
		return descriptor.KindInvalid
	}
}

func decodeEnum(buf []byte) (*descriptor.Enum, error) {
	r, err := decodeRaw(buf)
	if err != nil {
		return nil, err
	}
	e := &descriptor.Enum{Name: r.str(enumName)}
	for _, vb := range r[enumValue] {
		vr, err := decodeRaw(vb)
		if err != nil {
			return nil, err
		}
		n, _ := vr.int32(enumValueNumber)
		e.Values = append(e.Values, descriptor.EnumValue{Name: vr.str(enumValueName), Number: n})
	}
	return e, nil
}

func decodeService(buf []byte) (*descriptor.Service, error) {
	r, err := decodeRaw(buf)
	if err != nil {
		return nil, err
	}
	s := &descriptor.Service{Name: r.str(serviceName)}
	for _, mb := range r[serviceMethod] {
		mr, err := decodeRaw(mb)
		if err != nil {
			return nil, err
		}
		s.Methods = append(s.Methods, descriptor.Method{
			Name:            mr.str(methodName),
			InputType:       mr.str(methodInputType),
			OutputType:      mr.str(methodOutputType),
			ClientStreaming: mr.boolean(methodClientStreaming),
			ServerStreaming: mr.boolean(methodServerStreaming),
		})
	}
	return s, nil
}
