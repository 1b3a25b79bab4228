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
	"github.com/protospec/pbgen/ast"
	"github.com/protospec/pbgen/descriptor"
	"github.com/protospec/pbgen/internal/interval"
	"github.com/protospec/pbgen/reporter"
)

const maxFieldNumber int32 = 1<<29 - 1

// validateNumbers walks file's messages (reserved/extension ranges only
// ever exist on the ast, not the resolved descriptor) and reports field
// numbers that are out of range, duplicated, or fall inside a reserved or
// extension range.
func validateNumbers(file *ast.File, handler *reporter.Handler) {
	var walk func(m *ast.Message)
	walk = func(m *ast.Message) {
		validateMessageNumbers(m, handler)
		validateFieldLabels(file.Syntax, m, handler)
		for i := range m.Nested {
			walk(&m.Nested[i])
		}
	}
	for i := range file.Messages {
		walk(&file.Messages[i])
	}
}

// validateFieldLabels rejects `required` in proto3: proto3 dropped the
// label entirely, so a field carrying it is always a mistake rather than a
// meaningful declaration. (A oneof member carrying `required` is rejected
// earlier, at parse time in parser.parseOneof, since the grammar never
// attaches a label to a oneof member in the first place.)
func validateFieldLabels(syntax ast.Syntax, m *ast.Message, handler *reporter.Handler) {
	if syntax != ast.Proto3 {
		return
	}
	for _, f := range m.Fields {
		if f.Label == ast.LabelRequired {
			handler.HandleErrorf(f.Pos, "field %q is required, but proto3 fields must not have the required label", f.Name)
		}
	}
}

func validateMessageNumbers(m *ast.Message, handler *reporter.Handler) {
	var ranges interval.Intersect[int32, string]
	for _, r := range m.Reserved {
		for _, nr := range r.Ranges {
			ranges.Insert(nr.Start, nr.End, "reserved range")
		}
	}
	for _, nr := range m.ExtensionRanges {
		ranges.Insert(nr.Start, nr.End, "extension range")
	}

	seen := map[int32]ast.SourcePos{}
	checkNumber := func(n int32, pos ast.SourcePos) {
		if n < 1 || n > maxFieldNumber {
			handler.HandleErrorf(pos, "field number %d out of range (1 to %d)", n, maxFieldNumber)
			return
		}
		if n >= 19000 && n <= 19999 {
			handler.HandleErrorf(pos, "field number %d is in the reserved implementation range (19000-19999)", n)
			return
		}
		if entry := ranges.Get(n); entry.Value != nil {
			handler.HandleErrorf(pos, "field number %d collides with a %s", n, entry.Value[0])
			return
		}
		if _, dup := seen[n]; dup {
			handler.HandleErrorf(pos, "field number %d is already in use in this message", n)
			return
		}
		seen[n] = pos
	}

	reservedNames := map[string]bool{}
	for _, r := range m.Reserved {
		for _, n := range r.Names {
			reservedNames[n] = true
		}
	}
	checkName := func(name string, pos ast.SourcePos) {
		if reservedNames[name] {
			handler.HandleErrorf(pos, "field name %q is reserved", name)
		}
	}

	for _, f := range m.Fields {
		checkNumber(f.Number, f.NumberPos)
		checkName(f.Name, f.NamePos)
	}
	for _, mf := range m.MapFields {
		checkNumber(mf.Number, mf.Pos)
		checkName(mf.Name, mf.Pos)
	}
}

// validateDescriptor walks df (post scope-resolution) checking invariants
// that are easiest to state in terms of resolved Kinds: map key
// restrictions, and enum numbering rules.
func validateDescriptor(df *descriptor.File, handler *reporter.Handler) {
	for _, m := range df.AllMessages() {
		for _, mf := range m.MapFields {
			if !isValidMapKey(mf.KeyKind) {
				handler.HandleErrorf(mf.Pos, "map key type for field %q must be an integral, bool, or string type", mf.Name)
			}
		}
	}
	for _, e := range df.AllEnums() {
		validateEnum(e, df.Syntax, handler)
	}
}

// validateExtensions checks that every extend-block field number in df
// falls within an extension range the extended message actually
// declares, whether that message is defined in df itself or reached
// through one of deps.
func validateExtensions(df *descriptor.File, deps Files, handler *reporter.Handler) {
	if len(df.Extensions) == 0 {
		return
	}
	messages := map[string]*descriptor.Message{}
	for _, m := range df.AllMessages() {
		messages[m.Name] = m
	}
	for _, dep := range deps {
		for _, m := range dep.AllMessages() {
			messages[m.Name] = m
		}
	}
	for _, ext := range df.Extensions {
		target, ok := messages[ext.Extendee]
		if !ok {
			// Unresolvable extendee was already reported during Build.
			continue
		}
		if len(target.ExtensionRanges) == 0 {
			handler.HandleErrorf(ext.Field.Pos, "%q extends %q, which declares no extension ranges", ext.Field.Name, ext.Extendee)
			continue
		}
		inRange := false
		for _, r := range target.ExtensionRanges {
			if ext.Field.Number >= r.Start && ext.Field.Number <= r.End {
				inRange = true
				break
			}
		}
		if !inRange {
			handler.HandleErrorf(ext.Field.Pos, "field number %d for extension %q is outside every extension range declared on %q", ext.Field.Number, ext.Field.Name, ext.Extendee)
		}
	}
}

func isValidMapKey(k descriptor.Kind) bool {
	switch k {
	case descriptor.KindString, descriptor.KindBool,
		descriptor.KindInt32, descriptor.KindInt64, descriptor.KindUInt32, descriptor.KindUInt64,
		descriptor.KindSInt32, descriptor.KindSInt64, descriptor.KindFixed32, descriptor.KindFixed64,
		descriptor.KindSFixed32, descriptor.KindSFixed64:
		return true
	default:
		return false
	}
}

func validateEnum(e *descriptor.Enum, syntax ast.Syntax, handler *reporter.Handler) {
	if syntax == ast.Proto3 && len(e.Values) > 0 && e.Values[0].Number != 0 {
		handler.HandleErrorf(e.Values[0].Pos, "the first value of a proto3 enum must be 0")
	}
	byNumber := map[int32]bool{}
	aliased := map[int32]bool{}
	for _, v := range e.Values {
		if byNumber[v.Number] {
			aliased[v.Number] = true
		}
		byNumber[v.Number] = true
	}
	if !e.AllowAlias {
		for _, v := range e.Values {
			if aliased[v.Number] {
				handler.HandleErrorf(v.Pos, "enum value %q reuses number %d; set allow_alias if intentional", v.Name, v.Number)
			}
		}
	}
}
