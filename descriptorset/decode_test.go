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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protospec/pbgen/descriptor"
	"github.com/protospec/pbgen/message"
)

// Test-local builders for the subset of descriptor.proto this package
// decodes, hand-assembled the same way a real protoc would serialize
// them -- there is no other way to produce CodeGeneratorRequest-shaped
// bytes without depending on the very runtime this module replaces.

type fieldSpec struct {
	name       string
	number     int32
	label      int32
	typ        int32
	typeName   string
	oneofIndex int32
	hasOneof   bool
	proto3Opt  bool
	packed     *bool
}

func buildField(fs fieldSpec) []byte {
	w := message.NewWriter(32)
	w.WriteLenField(fieldName, []byte(fs.name))
	w.WriteSignedVarintField(fieldNumber, int64(fs.number))
	w.WriteSignedVarintField(fieldLabel, int64(fs.label))
	w.WriteSignedVarintField(fieldType, int64(fs.typ))
	if fs.typeName != "" {
		w.WriteLenField(fieldTypeName, []byte(fs.typeName))
	}
	if fs.hasOneof {
		w.WriteSignedVarintField(fieldOneofIndex, int64(fs.oneofIndex))
	}
	if fs.proto3Opt {
		w.WriteVarintField(fieldProto3Opt, 1)
	}
	if fs.packed != nil {
		optW := message.NewWriter(8)
		v := uint64(0)
		if *fs.packed {
			v = 1
		}
		optW.WriteVarintField(fieldOptPacked, v)
		w.WriteLenField(fieldOptions, optW.Bytes())
	}
	return w.Bytes()
}

func buildOneof(name string) []byte {
	w := message.NewWriter(16)
	w.WriteLenField(oneofName, []byte(name))
	return w.Bytes()
}

type messageSpec struct {
	name      string
	fields    [][]byte
	oneofs    [][]byte
	nested    [][]byte
	mapEntry  bool
}

func buildMessage(ms messageSpec) []byte {
	w := message.NewWriter(64)
	w.WriteLenField(msgName, []byte(ms.name))
	for _, fb := range ms.fields {
		w.WriteLenField(msgField, fb)
	}
	for _, ob := range ms.oneofs {
		w.WriteLenField(msgOneofDecl, ob)
	}
	for _, nb := range ms.nested {
		w.WriteLenField(msgNestedType, nb)
	}
	if ms.mapEntry {
		optW := message.NewWriter(8)
		optW.WriteVarintField(msgOptMapEntry, 1)
		w.WriteLenField(msgOptions, optW.Bytes())
	}
	return w.Bytes()
}

type fileSpec struct {
	path     string
	pkg      string
	syntax   string
	messages [][]byte
	enums    [][]byte
	services [][]byte
}

func buildFile(fs fileSpec) []byte {
	w := message.NewWriter(128)
	w.WriteLenField(fileName, []byte(fs.path))
	if fs.pkg != "" {
		w.WriteLenField(filePackage, []byte(fs.pkg))
	}
	w.WriteLenField(fileSyntax, []byte(fs.syntax))
	for _, mb := range fs.messages {
		w.WriteLenField(fileMessageType, mb)
	}
	for _, eb := range fs.enums {
		w.WriteLenField(fileEnumType, eb)
	}
	for _, sb := range fs.services {
		w.WriteLenField(fileService, sb)
	}
	return w.Bytes()
}

func TestDecodeFileBasicMessage(t *testing.T) {
	msg := buildMessage(messageSpec{
		name: "Point",
		fields: [][]byte{
			buildField(fieldSpec{name: "x", number: 1, label: labelOptional, typ: typeInt32}),
			buildField(fieldSpec{name: "y", number: 2, label: labelOptional, typ: typeInt32}),
		},
	})
	buf := buildFile(fileSpec{path: "point.proto", pkg: "demo", syntax: "proto3", messages: [][]byte{msg}})

	f, err := DecodeFile(buf)
	require.NoError(t, err)
	require.Equal(t, "demo", f.Package)
	require.Len(t, f.Messages, 1)
	require.Equal(t, ".demo.Point", f.Messages[0].Name)
	require.Len(t, f.Messages[0].Fields, 2)
	require.Equal(t, descriptor.LabelImplicit, f.Messages[0].Fields[0].Label)
	require.Equal(t, descriptor.KindInt32, f.Messages[0].Fields[0].Kind)
}

func TestDecodeFileProto3OptionalFieldBecomesSyntheticOneof(t *testing.T) {
	msg := buildMessage(messageSpec{
		name: "Config",
		fields: [][]byte{
			buildField(fieldSpec{
				name: "enabled", number: 1, label: labelOptional, typ: typeBool,
				hasOneof: true, oneofIndex: 0, proto3Opt: true,
			}),
		},
		oneofs: [][]byte{buildOneof("_enabled")},
	})
	buf := buildFile(fileSpec{path: "config.proto", syntax: "proto3", messages: [][]byte{msg}})

	f, err := DecodeFile(buf)
	require.NoError(t, err)
	fd := f.Messages[0].Fields[0]
	require.True(t, fd.Synthetic)
	require.Equal(t, descriptor.LabelOptional, fd.Label)
	require.Equal(t, 0, fd.OneofIndex)
}

func TestDecodeFileRequiredProto2Field(t *testing.T) {
	msg := buildMessage(messageSpec{
		name: "Old",
		fields: [][]byte{
			buildField(fieldSpec{name: "id", number: 1, label: labelRequired, typ: typeInt64}),
		},
	})
	buf := buildFile(fileSpec{path: "old.proto", syntax: "proto2", messages: [][]byte{msg}})

	f, err := DecodeFile(buf)
	require.NoError(t, err)
	require.Equal(t, descriptor.LabelRequired, f.Messages[0].Fields[0].Label)
}

func TestDecodeFileMapFieldFolded(t *testing.T) {
	entry := buildMessage(messageSpec{
		name: "CountsEntry",
		fields: [][]byte{
			buildField(fieldSpec{name: "key", number: 1, label: labelOptional, typ: typeString}),
			buildField(fieldSpec{name: "value", number: 2, label: labelOptional, typ: typeInt32}),
		},
		mapEntry: true,
	})
	msg := buildMessage(messageSpec{
		name: "Bag",
		fields: [][]byte{
			buildField(fieldSpec{
				name: "counts", number: 1, label: labelRepeated, typ: typeMessage,
				typeName: ".demo.Bag.CountsEntry",
			}),
		},
		nested: [][]byte{entry},
	})
	buf := buildFile(fileSpec{path: "bag.proto", pkg: "demo", syntax: "proto3", messages: [][]byte{msg}})

	f, err := DecodeFile(buf)
	require.NoError(t, err)
	bag := f.Messages[0]
	require.Empty(t, bag.Fields)
	require.Len(t, bag.MapFields, 1)
	mf := bag.MapFields[0]
	require.Equal(t, "counts", mf.Name)
	require.Equal(t, descriptor.KindString, mf.KeyKind)
	require.Equal(t, descriptor.KindInt32, mf.ValueKind)
	require.Equal(t, ".demo.Bag.CountsEntry", mf.EntryMessage)
	require.Len(t, bag.Nested, 1)
	require.True(t, bag.Nested[0].IsMapEntry)
}

func TestDecodeFileNestedMessageQualifiedName(t *testing.T) {
	inner := buildMessage(messageSpec{name: "Inner"})
	outer := buildMessage(messageSpec{
		name:   "Outer",
		nested: [][]byte{inner},
		fields: [][]byte{
			buildField(fieldSpec{
				name: "detail", number: 1, label: labelOptional, typ: typeMessage,
				typeName: ".demo.Outer.Inner",
			}),
		},
	})
	buf := buildFile(fileSpec{path: "outer.proto", pkg: "demo", syntax: "proto3", messages: [][]byte{outer}})

	f, err := DecodeFile(buf)
	require.NoError(t, err)
	require.Equal(t, ".demo.Outer", f.Messages[0].Name)
	require.Equal(t, ".demo.Outer.Inner", f.Messages[0].Nested[0].Name)
	require.Equal(t, ".demo.Outer.Inner", f.Messages[0].Fields[0].TypeName)
}

func TestDecodeFileRepeatedNumericFieldPackedByProto3Default(t *testing.T) {
	msg := buildMessage(messageSpec{
		name: "Series",
		fields: [][]byte{
			buildField(fieldSpec{name: "values", number: 1, label: labelRepeated, typ: typeInt32}),
		},
	})
	buf := buildFile(fileSpec{path: "series.proto", syntax: "proto3", messages: [][]byte{msg}})

	f, err := DecodeFile(buf)
	require.NoError(t, err)
	require.True(t, f.Messages[0].Fields[0].Packed)
}

func TestDecodeFileExplicitUnpackedOverridesDefault(t *testing.T) {
	unpacked := false
	msg := buildMessage(messageSpec{
		name: "Series",
		fields: [][]byte{
			buildField(fieldSpec{
				name: "values", number: 1, label: labelRepeated, typ: typeInt32, packed: &unpacked,
			}),
		},
	})
	buf := buildFile(fileSpec{path: "series.proto", syntax: "proto3", messages: [][]byte{msg}})

	f, err := DecodeFile(buf)
	require.NoError(t, err)
	require.False(t, f.Messages[0].Fields[0].Packed)
}
