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

// Package descriptor defines the resolved, descriptor-driven data model
// that sits downstream of compilation: package linker populates it from a
// parsed and scope-resolved ast.File, and packages codegen, dynamic, and
// descriptorset all consume it as their single source of truth, so that
// generated code, runtime dynamic messages, and descriptor-set ingestion
// stay in lockstep with one resolution algorithm.
package descriptor

import "github.com/protospec/pbgen/ast"

// Kind identifies what a field holds: one of the 15 scalars, a message, an
// enum, or a deprecated proto2 group (which behaves like a message field
// but uses start/end-group wire framing instead of length-delimited).
type Kind int8

const (
	KindInvalid Kind = iota
	KindDouble
	KindFloat
	KindInt32
	KindInt64
	KindUInt32
	KindUInt64
	KindSInt32
	KindSInt64
	KindFixed32
	KindFixed64
	KindSFixed32
	KindSFixed64
	KindBool
	KindString
	KindBytes
	KindMessage
	KindEnum
	KindGroup
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindDouble:   "double",
	KindFloat:    "float",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUInt32:   "uint32",
	KindUInt64:   "uint64",
	KindSInt32:   "sint32",
	KindSInt64:   "sint64",
	KindFixed32:  "fixed32",
	KindFixed64:  "fixed64",
	KindSFixed32: "sfixed32",
	KindSFixed64: "sfixed64",
	KindBool:     "bool",
	KindString:   "string",
	KindBytes:    "bytes",
	KindMessage:  "message",
	KindEnum:     "enum",
	KindGroup:    "group",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

func (k Kind) IsScalar() bool { return k >= KindDouble && k <= KindBytes }

// IsNumeric reports whether k is eligible for packed encoding: every
// scalar except string and bytes, plus enum (enums pack as varints).
func (k Kind) IsNumeric() bool {
	return (k.IsScalar() && k != KindString && k != KindBytes) || k == KindEnum
}

// ScalarKindOf converts an ast.ScalarKind into the corresponding Kind.
func ScalarKindOf(s ast.ScalarKind) Kind {
	switch s {
	case ast.Double:
		return KindDouble
	case ast.Float32:
		return KindFloat
	case ast.Int32:
		return KindInt32
	case ast.Int64:
		return KindInt64
	case ast.UInt32:
		return KindUInt32
	case ast.UInt64:
		return KindUInt64
	case ast.SInt32:
		return KindSInt32
	case ast.SInt64:
		return KindSInt64
	case ast.Fixed32:
		return KindFixed32
	case ast.Fixed64:
		return KindFixed64
	case ast.SFixed32:
		return KindSFixed32
	case ast.SFixed64:
		return KindSFixed64
	case ast.Bool:
		return KindBool
	case ast.String:
		return KindString
	case ast.Bytes:
		return KindBytes
	default:
		return KindInvalid
	}
}

// Label mirrors ast.Label after resolution: in a proto3 file, LabelNone
// becomes implicit presence and is represented here as LabelImplicit so
// codegen and dynamic never need to re-derive it from syntax.
type Label int8

const (
	LabelImplicit Label = iota
	LabelOptional
	LabelRequired
	LabelRepeated
)

var labelNames = [...]string{
	LabelImplicit: "implicit",
	LabelOptional: "optional",
	LabelRequired: "required",
	LabelRepeated: "repeated",
}

func (l Label) String() string {
	if int(l) < 0 || int(l) >= len(labelNames) {
		return "implicit"
	}
	return labelNames[l]
}

// Field is a fully resolved field: its Kind is never "unknown", and if
// Kind is KindMessage, KindEnum, or KindGroup, TypeName is the absolute
// (leading-dot) name of the resolved message or enum.
type Field struct {
	Name       string
	JSONName   string
	Number     int32
	Label      Label
	Kind       Kind
	TypeName   string // resolved message/enum/group type, absolute
	OneofIndex int    // -1 if not a member of a oneof
	Synthetic  bool   // true for a proto3 "optional" field's single-member oneof
	Packed     bool   // true if this repeated numeric field uses packed encoding
	Pos        ast.SourcePos
}

// MapField is a field declared with `map<K, V>` syntax; it lowers to a
// repeated synthetic message field (key=1, value=2) at the wire level,
// which EntryMessage describes.
type MapField struct {
	Name         string
	JSONName     string
	Number       int32
	KeyKind      Kind
	ValueKind    Kind
	ValueType    string // resolved message/enum type name, if ValueKind is KindMessage/KindEnum
	EntryMessage string // absolute name of the synthesized *Entry message
	Pos          ast.SourcePos
}

// Oneof is a resolved oneof; member Fields (in the owning Message) point
// back to it via Field.OneofIndex.
type Oneof struct {
	Name string
	Pos  ast.SourcePos
}

// Message is a fully resolved message descriptor.
type Message struct {
	Name     string // absolute, leading-dot
	Fields   []Field
	MapFields []MapField
	Oneofs   []Oneof
	Nested   []*Message
	Enums    []*Enum
	// ExtensionRanges are the declared `extensions N to M;` ranges a
	// proto2 extend block's field numbers must fall within.
	ExtensionRanges []ast.NumberRange
	// IsMapEntry marks a message synthesized for a map field's wire
	// representation; codegen skips emitting a type for these.
	IsMapEntry bool
	Pos        ast.SourcePos
}

// Extension is one field declared in a proto2 `extend TypeName { ... }`
// block: shaped like an ordinary Field, plus the absolute name of the
// message it extends.
type Extension struct {
	Extendee string // absolute, leading-dot
	Field    Field
}

// EnumValue is one resolved `NAME = N;` entry.
type EnumValue struct {
	Name   string
	Number int32
	Pos    ast.SourcePos
}

// Enum is a fully resolved enum descriptor.
type Enum struct {
	Name       string // absolute, leading-dot
	Values     []EnumValue
	AllowAlias bool
	Pos        ast.SourcePos
}

// Method is a resolved RPC method: InputType/OutputType are absolute
// message names.
type Method struct {
	Name            string
	InputType       string
	OutputType      string
	ClientStreaming bool
	ServerStreaming bool
	Pos             ast.SourcePos
}

// Service is a resolved service descriptor.
type Service struct {
	Name    string // absolute, leading-dot
	Methods []Method
	Pos     ast.SourcePos
}

// File is the fully resolved descriptor set for one compiled .proto file.
type File struct {
	Path     string
	Package  string
	Syntax   ast.Syntax
	Messages []*Message
	Enums    []*Enum
	Services []*Service
	Imports  []string // paths of files this one imports (non-public and public)
	PublicImports []string
	Extensions []Extension
}

// AllMessages returns every message transitively nested in f, including
// top-level ones, in declaration order (depth-first).
func (f *File) AllMessages() []*Message {
	var out []*Message
	var walk func(*Message)
	walk = func(m *Message) {
		out = append(out, m)
		for _, n := range m.Nested {
			walk(n)
		}
	}
	for _, m := range f.Messages {
		walk(m)
	}
	return out
}

// AllEnums returns every enum transitively nested in f, including
// top-level ones and those nested in messages.
func (f *File) AllEnums() []*Enum {
	out := append([]*Enum{}, f.Enums...)
	for _, m := range f.AllMessages() {
		out = append(out, m.Enums...)
	}
	return out
}
