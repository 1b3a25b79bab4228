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

package linker

import (
	"strings"
	"unicode"

	"github.com/protospec/pbgen/ast"
	"github.com/protospec/pbgen/descriptor"
	"github.com/protospec/pbgen/reporter"
)

// registerSymbols walks file's declarations and defines every message,
// enum, enum value, and service in syms under its absolute name. It must
// run (for a file and all of its transitive imports) before Build resolves
// any type reference, since resolution looks names up in syms.
func registerSymbols(file *ast.File, syms *Symbols, handler *reporter.Handler) {
	prefix := packagePrefix(file.Package)

	var walkMessage func(m *ast.Message, scope string)
	walkMessage = func(m *ast.Message, scope string) {
		abs := scope + "." + m.Name
		define(syms, handler, abs, SymbolMessage, file.Name, m.NamePos)
		for _, nested := range m.Nested {
			walkMessage(&nested, abs)
		}
		for _, e := range m.Enums {
			walkEnum(&e, abs, file, syms, handler)
		}
	}
	for _, m := range file.Messages {
		walkMessage(&m, prefix)
	}
	for _, e := range file.Enums {
		walkEnum(&e, prefix, file, syms, handler)
	}
	for _, s := range file.Services {
		abs := prefix + "." + s.Name
		define(syms, handler, abs, SymbolService, file.Name, s.Pos)
	}
}

func walkEnum(e *ast.Enum, scope string, file *ast.File, syms *Symbols, handler *reporter.Handler) {
	abs := scope + "." + e.Name
	define(syms, handler, abs, SymbolEnum, file.Name, e.NamePos)
	for _, v := range e.Values {
		// Enum values share their enclosing scope's namespace (C++ scoping
		// rules), not the enum's own, so they're defined one level up.
		define(syms, handler, scope+"."+v.Name, SymbolEnumValue, file.Name, v.Pos)
	}
}

func define(syms *Symbols, handler *reporter.Handler, name string, kind SymbolKind, file string, pos ast.SourcePos) {
	if _, ok := syms.Define(name, kind, file, pos); !ok {
		handler.HandleErrorf(pos, "duplicate symbol %q", strings.TrimPrefix(name, "."))
	}
}

func packagePrefix(pkg string) string {
	if pkg == "" {
		return ""
	}
	return "." + pkg
}

// Build resolves file into a descriptor.File. registerSymbols must already
// have been called for file and for every file reachable through deps.
func Build(file *ast.File, deps Files, syms *Symbols, handler *reporter.Handler) *descriptor.File {
	b := &builder{file: file, deps: deps, syms: syms, handler: handler}
	return b.buildFile()
}

type builder struct {
	file    *ast.File
	deps    Files
	syms    *Symbols
	handler *reporter.Handler

	// extensions accumulates descriptor.Extension records from every
	// extend block found while walking the file, file-level and
	// message-nested alike, since descriptor.File (unlike ast.File) keeps
	// them in one flat list instead of threaded through Message.
	extensions []descriptor.Extension
}

func (b *builder) buildFile() *descriptor.File {
	out := &descriptor.File{
		Path:    b.file.Name,
		Package: b.file.Package,
		Syntax:  b.file.Syntax,
	}
	for _, imp := range b.file.Imports {
		out.Imports = append(out.Imports, imp.Path)
		if imp.Public {
			out.PublicImports = append(out.PublicImports, imp.Path)
		}
	}
	prefix := packagePrefix(b.file.Package)
	for i := range b.file.Messages {
		out.Messages = append(out.Messages, b.buildMessage(&b.file.Messages[i], prefix))
	}
	for i := range b.file.Enums {
		out.Enums = append(out.Enums, b.buildEnum(&b.file.Enums[i], prefix))
	}
	for i := range b.file.Services {
		out.Services = append(out.Services, b.buildService(&b.file.Services[i], prefix))
	}
	b.buildExtends(b.file.Extends, prefix)
	out.Extensions = b.extensions
	return out
}

// buildExtends resolves exs's extendee type references and fields and
// appends the result to b.extensions. scope is the absolute name of the
// message the extend blocks are nested in, or the package prefix if
// they're declared at the top level.
func (b *builder) buildExtends(exs []ast.Extend, scope string) {
	for i := range exs {
		ex := &exs[i]
		extendee, kind, ok := b.resolveTypeRef(ex.Extendee, scope)
		if !ok {
			b.handler.HandleErrorf(ex.Extendee.Pos, "unknown extended type %q", ex.Extendee.Named)
			continue
		}
		if kind != SymbolMessage {
			b.handler.HandleErrorf(ex.Extendee.Pos, "%q is not a message, cannot be extended", extendee)
			continue
		}
		for j := range ex.Fields {
			df := b.buildFieldDescriptor(&ex.Fields[j], scope)
			b.extensions = append(b.extensions, descriptor.Extension{Extendee: extendee, Field: df})
		}
	}
}

func (b *builder) buildEnum(e *ast.Enum, scope string) *descriptor.Enum {
	out := &descriptor.Enum{
		Name:       scope + "." + e.Name,
		AllowAlias: e.AllowAlias,
		Pos:        e.Pos,
	}
	for _, v := range e.Values {
		out.Values = append(out.Values, descriptor.EnumValue{
			Name: v.Name, Number: v.Number, Pos: v.Pos,
		})
	}
	return out
}

func (b *builder) buildService(s *ast.Service, scope string) *descriptor.Service {
	out := &descriptor.Service{Name: scope + "." + s.Name, Pos: s.Pos}
	for _, m := range s.Methods {
		inType, _, ok := b.resolveTypeRef(m.InputType, scope)
		if !ok {
			b.handler.HandleErrorf(m.InputType.Pos, "unknown request type %q", m.InputType.Named)
		}
		outType, _, ok := b.resolveTypeRef(m.OutputType, scope)
		if !ok {
			b.handler.HandleErrorf(m.OutputType.Pos, "unknown response type %q", m.OutputType.Named)
		}
		out.Methods = append(out.Methods, descriptor.Method{
			Name: m.Name, InputType: inType, OutputType: outType,
			ClientStreaming: m.ClientStreaming, ServerStreaming: m.ServerStreaming,
			Pos: m.Pos,
		})
	}
	return out
}

// buildFieldDescriptor resolves f (an ordinary message field, or an
// extend-block field -- both share ast.Field's shape) into a
// descriptor.Field. scope is the absolute name f's Type is resolved
// against: the enclosing message for an ordinary field, or the scope the
// extend block itself was declared in for an extension.
func (b *builder) buildFieldDescriptor(f *ast.Field, scope string) descriptor.Field {
	inOneof := f.OneofIndex >= 0
	df := descriptor.Field{
		Name:       f.Name,
		JSONName:   jsonName(f.Name),
		Number:     f.Number,
		Label:      resolveLabel(b.file.Syntax, f.Label, inOneof),
		OneofIndex: f.OneofIndex,
		Pos:        f.Pos,
	}
	if jn, ok := findOption(f.Options, "json_name"); ok && jn.Kind == ast.ConstString {
		df.JSONName = jn.Str
	}
	switch {
	case f.Group:
		df.Kind = descriptor.KindGroup
		name, _, ok := b.resolveTypeRef(f.Type, scope)
		if !ok {
			b.handler.HandleErrorf(f.Type.Pos, "unknown group type %q", f.Type.Named)
		}
		df.TypeName = name
	case f.Type.IsScalar():
		df.Kind = descriptor.ScalarKindOf(f.Type.Scalar)
	default:
		name, kind, ok := b.resolveTypeRef(f.Type, scope)
		if !ok {
			b.handler.HandleErrorf(f.Type.Pos, "unknown type %q", f.Type.Named)
		}
		df.TypeName = name
		if kind == SymbolEnum {
			df.Kind = descriptor.KindEnum
		} else {
			df.Kind = descriptor.KindMessage
		}
	}
	if df.Label == descriptor.LabelRepeated && df.Kind.IsNumeric() {
		df.Packed = b.file.Syntax == ast.Proto3
		if p, ok := findOption(f.Options, "packed"); ok && p.Kind == ast.ConstBool {
			df.Packed = p.Bool
		}
	}
	return df
}

// buildMessage resolves m, whose absolute name is scope+"."+m.Name, into a
// descriptor.Message. scope is the absolute name of the innermost
// enclosing message, or the package prefix at the top level.
func (b *builder) buildMessage(m *ast.Message, scope string) *descriptor.Message {
	abs := scope + "." + m.Name
	out := &descriptor.Message{Name: abs, Pos: m.Pos, ExtensionRanges: m.ExtensionRanges}

	b.buildExtends(m.Extends, abs)

	for _, o := range m.Oneofs {
		out.Oneofs = append(out.Oneofs, descriptor.Oneof{Name: o.Name, Pos: o.Pos})
	}

	for i := range m.Fields {
		out.Fields = append(out.Fields, b.buildFieldDescriptor(&m.Fields[i], abs))
	}

	// proto3 explicit `optional` fields outside a user oneof desugar into a
	// single-member synthetic oneof, matching protoc's own lowering.
	if b.file.Syntax == ast.Proto3 {
		for i := range out.Fields {
			f := &out.Fields[i]
			if f.Label == descriptor.LabelOptional && f.OneofIndex < 0 {
				idx := len(out.Oneofs)
				out.Oneofs = append(out.Oneofs, descriptor.Oneof{Name: "_" + f.Name, Pos: f.Pos})
				f.OneofIndex = idx
				f.Synthetic = true
			}
		}
	}

	for i := range m.MapFields {
		mf := &m.MapFields[i]
		entryAbs := abs + "." + pascalCase(mf.Name) + "Entry"
		keyKind, _, keyOK := b.resolveMapComponent(mf.KeyType, abs)
		valKind, valName, valOK := b.resolveMapComponent(mf.ValueType, abs)
		if !keyOK {
			b.handler.HandleErrorf(mf.KeyType.Pos, "unknown key type %q", mf.KeyType.Named)
		}
		if !valOK {
			b.handler.HandleErrorf(mf.ValueType.Pos, "unknown value type %q", mf.ValueType.Named)
		}
		out.MapFields = append(out.MapFields, descriptor.MapField{
			Name: mf.Name, JSONName: jsonName(mf.Name), Number: mf.Number,
			KeyKind: keyKind, ValueKind: valKind, ValueType: valName,
			EntryMessage: entryAbs, Pos: mf.Pos,
		})
		entry := &descriptor.Message{Name: entryAbs, IsMapEntry: true, Pos: mf.Pos}
		entry.Fields = append(entry.Fields,
			descriptor.Field{Name: "key", JSONName: "key", Number: 1, Label: descriptor.LabelOptional, Kind: keyKind, Pos: mf.Pos, OneofIndex: -1},
			descriptor.Field{Name: "value", JSONName: "value", Number: 2, Label: descriptor.LabelOptional, Kind: valKind, TypeName: valName, Pos: mf.Pos, OneofIndex: -1},
		)
		out.Nested = append(out.Nested, entry)
	}

	for i := range m.Nested {
		out.Nested = append(out.Nested, b.buildMessage(&m.Nested[i], abs))
	}
	for i := range m.Enums {
		out.Enums = append(out.Enums, b.buildEnum(&m.Enums[i], abs))
	}
	return out
}

func (b *builder) resolveMapComponent(t ast.TypeRef, scope string) (descriptor.Kind, string, bool) {
	if t.IsScalar() {
		return descriptor.ScalarKindOf(t.Scalar), "", true
	}
	name, kind, ok := b.resolveTypeRef(t, scope)
	if !ok {
		return descriptor.KindInvalid, "", false
	}
	if kind == SymbolEnum {
		return descriptor.KindEnum, name, true
	}
	return descriptor.KindMessage, name, true
}

// resolveTypeRef resolves a named (non-scalar) type reference written
// inside the message whose absolute name is scope, per protobuf's
// enclosing-scope search order: the reference is tried against the
// current scope, then each enclosing scope in turn, up to the file's own
// package, then the root; an absolute ("."-prefixed) reference is checked
// only against the root.
func (b *builder) resolveTypeRef(t ast.TypeRef, scope string) (string, SymbolKind, bool) {
	if strings.HasPrefix(t.Named, ".") {
		sym, ok := b.syms.Lookup(t.Named)
		return t.Named, sym.Kind, ok
	}
	for _, s := range enclosingScopes(scope) {
		candidate := s + "." + t.Named
		if sym, ok := b.syms.Lookup(candidate); ok {
			return candidate, sym.Kind, true
		}
	}
	return "", 0, false
}

// enclosingScopes returns scope and each of its ancestors, outermost last,
// ending with "" (the root, i.e. no enclosing package).
func enclosingScopes(scope string) []string {
	var out []string
	for {
		out = append(out, scope)
		if scope == "" {
			return out
		}
		idx := strings.LastIndex(scope, ".")
		if idx <= 0 {
			out = append(out, "")
			return out
		}
		scope = scope[:idx]
	}
}

func resolveLabel(syntax ast.Syntax, l ast.Label, inOneof bool) descriptor.Label {
	if inOneof {
		return descriptor.LabelOptional
	}
	switch l {
	case ast.LabelOptional:
		return descriptor.LabelOptional
	case ast.LabelRequired:
		return descriptor.LabelRequired
	case ast.LabelRepeated:
		return descriptor.LabelRepeated
	default:
		if syntax == ast.Proto3 {
			return descriptor.LabelImplicit
		}
		return descriptor.LabelRequired
	}
}

func findOption(opts []ast.Option, name string) (ast.Constant, bool) {
	for _, o := range opts {
		if len(o.Name) == 1 && !o.Name[0].Extension && o.Name[0].Name == name {
			return o.Value, true
		}
	}
	return ast.Constant{}, false
}

// jsonName computes the default lowerCamelCase JSON name for a field
// declared with underscore_style naming.
func jsonName(name string) string {
	var b strings.Builder
	upperNext := false
	for _, r := range name {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// pascalCase is used to name a map field's synthesized *Entry message.
func pascalCase(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
