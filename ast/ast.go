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

package ast

// Syntax records which edition of the protobuf language a file was written
// against.
type Syntax int

const (
	// Proto2 is the default: the parser uses it when a file has no syntax
	// declaration (reporting parser.ErrNoSyntax as a warning, not an
	// error) and when the declaration names a syntax other than "proto2"
	// or "proto3" (reporting an error).
	Proto2 Syntax = iota
	Proto3
)

func (s Syntax) String() string {
	if s == Proto2 {
		return "proto2"
	}
	return "proto3"
}

// Label is a field's cardinality.
type Label int

const (
	// LabelNone means no label was written. Its meaning depends on syntax:
	// implicit presence in proto3, required in proto2 (the historical
	// default for fields outside of a oneof/map).
	LabelNone Label = iota
	LabelOptional
	LabelRequired
	LabelRepeated
)

// ScalarKind enumerates the 15 built-in scalar types.
type ScalarKind int

const (
	NotScalar ScalarKind = iota
	Double
	Float32
	Int32
	Int64
	UInt32
	UInt64
	SInt32
	SInt64
	Fixed32
	Fixed64
	SFixed32
	SFixed64
	Bool
	String
	Bytes
)

var scalarNames = map[string]ScalarKind{
	"double":   Double,
	"float":    Float32,
	"int32":    Int32,
	"int64":    Int64,
	"uint32":   UInt32,
	"uint64":   UInt64,
	"sint32":   SInt32,
	"sint64":   SInt64,
	"fixed32":  Fixed32,
	"fixed64":  Fixed64,
	"sfixed32": SFixed32,
	"sfixed64": SFixed64,
	"bool":     Bool,
	"string":   String,
	"bytes":    Bytes,
}

// ScalarKindByName returns the ScalarKind named by s, or NotScalar if s is
// not one of the 15 scalar keywords.
func ScalarKindByName(s string) ScalarKind {
	return scalarNames[s]
}

func (k ScalarKind) String() string {
	for name, kind := range scalarNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// IsNumeric reports whether k is a scalar eligible for packed encoding
// (every scalar except string and bytes).
func (k ScalarKind) IsNumeric() bool {
	return k != NotScalar && k != String && k != Bytes
}

// TypeRef is the unresolved type of a field or method parameter/return, as
// written in source: either one of the 15 scalars, or a (possibly dotted,
// possibly leading-dotted) name that the linker must resolve.
type TypeRef struct {
	Scalar ScalarKind
	// Named is the reference exactly as written in source (e.g. "Foo",
	// ".pkg.Foo", "pkg.Foo") when Scalar == NotScalar. The linker rewrites
	// this in place to the absolute resolved name upon success.
	Named string
	Pos   SourcePos
}

func (t TypeRef) IsScalar() bool { return t.Scalar != NotScalar }

func (t TypeRef) String() string {
	if t.IsScalar() {
		return t.Scalar.String()
	}
	return t.Named
}

// Part is one dotted segment of an option name, e.g. in
// `option (my.custom).field = 1;` the parts are "(my.custom)" and "field".
type Part struct {
	Name      string
	Extension bool
	Pos       SourcePos
}

// ConstantKind identifies which alternative of Constant is populated.
type ConstantKind int

const (
	ConstIdent ConstantKind = iota
	ConstInt
	ConstUInt
	ConstFloat
	ConstString
	ConstBool
	ConstAggregate
)

// Constant is the value assigned to an option or enum-value attribute.
type Constant struct {
	Kind ConstantKind
	Pos  SourcePos

	Ident     string
	Int       int64
	UInt      uint64
	Float     float64 // also holds +inf/-inf/nan
	Str       string
	Bool      bool
	Aggregate string // raw text between the { and } of an aggregate literal
}

// Option is a single `option name = value;` or bracketed inline option.
type Option struct {
	Name  []Part
	Value Constant
	Pos   SourcePos
}

// NumberRange is an inclusive [Start, End] range of field/enum numbers, as
// written by `reserved` or `extensions`. End may be math.MaxInt32 to
// represent "max".
type NumberRange struct {
	Start, End int32
	Pos        SourcePos
}

// Reserved is a `reserved ...;` declaration: either numeric ranges or
// quoted names, never both.
type Reserved struct {
	Ranges []NumberRange
	Names  []string
	Pos    SourcePos
}

// Field is an ordinary (non-map, non-oneof-member-only-in-storage) field
// declaration. Oneof member fields reuse this struct with OneofIndex >= 0.
type Field struct {
	Name       string
	Number     int32
	Label      Label
	Type       TypeRef
	Options    []Option
	Group      bool // proto2 `group` field: Type names the synthetic nested message
	OneofIndex int  // -1 if not a oneof member
	Pos        SourcePos
	NamePos    SourcePos
	NumberPos  SourcePos
}

// MapField is sugar for `map<K, V> name = N;`.
type MapField struct {
	Name      string
	Number    int32
	KeyType   TypeRef
	ValueType TypeRef
	Options   []Option
	Pos       SourcePos
}

// Oneof is a `oneof name { ... }` block. Member fields are appended to the
// enclosing Message.Fields with OneofIndex set to this oneof's index in
// Message.Oneofs.
type Oneof struct {
	Name    string
	Options []Option
	Pos     SourcePos
}

// Extend is a proto2 `extend TypeName { ... }` block.
type Extend struct {
	Extendee TypeRef
	Fields   []Field
	Pos      SourcePos
}

// Message is a `message Name { ... }` declaration.
type Message struct {
	Name             string
	Fields           []Field
	MapFields        []MapField
	Oneofs           []Oneof
	Nested           []Message
	Enums            []Enum
	Extends          []Extend
	Reserved         []Reserved
	ExtensionRanges  []NumberRange
	ExtensionOptions []Option
	Options          []Option
	Pos              SourcePos
	NamePos          SourcePos
}

// EnumValue is one `NAME = N;` entry of an enum.
type EnumValue struct {
	Name    string
	Number  int32
	Options []Option
	Pos     SourcePos
}

// Enum is an `enum Name { ... }` declaration.
type Enum struct {
	Name       string
	Values     []EnumValue
	AllowAlias bool
	Reserved   []Reserved
	Options    []Option
	Pos        SourcePos
	NamePos    SourcePos
}

// Method is one `rpc Name (Req) returns (Resp);` entry of a service.
type Method struct {
	Name             string
	InputType        TypeRef
	OutputType       TypeRef
	ClientStreaming  bool
	ServerStreaming  bool
	Options          []Option
	Pos              SourcePos
}

// Service is a `service Name { ... }` declaration.
type Service struct {
	Name    string
	Methods []Method
	Options []Option
	Pos     SourcePos
}

// Import is a single `import [public|weak] "path";` statement.
type Import struct {
	Path   string
	Public bool
	Weak   bool
	Pos    SourcePos
}

// File is the root AST node for a single compiled .proto source file.
type File struct {
	Name       string // the path used to resolve this file, as given to the compiler
	Syntax     Syntax
	Package    string
	Imports    []Import
	Options    []Option
	Messages   []Message
	Enums      []Enum
	Services   []Service
	Extends    []Extend
	SyntaxPos  SourcePos
	PackagePos SourcePos
}
