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

package codegen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/protospec/pbgen/descriptor"
)

const (
	pkgMessage   = "github.com/protospec/pbgen/message"
	pkgWire      = "github.com/protospec/pbgen/wire"
	pkgRuntime   = "github.com/protospec/pbgen/pbruntime"
)

// Generate renders the Go source for one compiled .proto file: one type
// per message (struct) and enum (named int32), with Size/Marshal/Release
// methods and an Unmarshal function per message, plus service stubs.
// Unlike package dynamic's schema-interpreting Encode/Decode, every byte
// offset and field number here is baked into the emitted Go source at
// generation time.
func Generate(f *descriptor.File) ([]byte, error) {
	g := newGeneratedFile(goPackageName(f.Package))

	for _, e := range f.AllEnums() {
		genEnum(g, e, f.Package)
	}
	for _, m := range f.AllMessages() {
		if m.IsMapEntry {
			continue
		}
		genMessage(g, m, f.Package)
	}
	for _, svc := range f.Services {
		genService(g, svc, f.Package)
	}

	return g.content()
}

func goPackageName(pkg string) string {
	if pkg == "" {
		return "pb"
	}
	parts := strings.Split(pkg, ".")
	return parts[len(parts)-1]
}

// oneofGroup is the non-synthetic members of one oneof, in declaration
// order, gathered so genMessage can emit them as a sealed interface
// instead of as ordinary struct fields.
type oneofGroup struct {
	index   int
	name    string
	members []descriptor.Field
}

func genEnum(g *generatedFile, e *descriptor.Enum, pkg string) {
	name := goTypeName(e.Name, pkg)
	g.P("type ", name, " int32")
	g.P()
	g.P("const (")
	for _, v := range e.Values {
		g.P("\t", name, "_", exportedName(v.Name), " ", name, " = ", v.Number)
	}
	g.P(")")
	g.P()
	g.P("func (x ", name, ") String() string {")
	g.P("\tswitch x {")
	for _, v := range e.Values {
		g.P("\tcase ", name, "_", exportedName(v.Name), ":")
		g.P("\t\treturn ", fmt.Sprintf("%q", v.Name))
	}
	g.P("\t}")
	imp := g.qualify("fmt")
	g.P("\treturn ", imp, ".Sprintf(\"", name, "(%d)\", int32(x))")
	g.P("}")
	g.P()
}

func genMessage(g *generatedFile, m *descriptor.Message, pkg string) {
	name := goTypeName(m.Name, pkg)
	groups := groupOneofs(m)

	g.P("type ", name, " struct {")
	emitted := map[int]bool{}
	for _, fd := range m.Fields {
		if fd.OneofIndex >= 0 && !fd.Synthetic {
			if emitted[fd.OneofIndex] {
				continue
			}
			emitted[fd.OneofIndex] = true
			grp := groups[fd.OneofIndex]
			g.P("\t", exportedName(grp.name), " ", oneofInterfaceName(name, grp.name))
			continue
		}
		g.P("\t", exportedName(fd.Name), " ", fieldGoType(fd, pkg))
	}
	for _, mf := range m.MapFields {
		g.P("\t", exportedName(mf.Name), " map[", mapKeyGoType(mf.KeyKind), "]", mapValueGoType(mf, pkg))
	}
	g.P("\tUnknown ", g.qualify(pkgMessage), ".UnknownFields")
	g.P("}")
	g.P()

	// groups is keyed by oneof index but iterated for its side effect of
	// emitting Go source, so it must walk in index order: ranging over
	// the map directly would make the generated file's declaration order
	// (and thus its byte-for-byte content) nondeterministic between runs.
	orderedGroups := make([]*oneofGroup, 0, len(groups))
	for _, grp := range groups {
		orderedGroups = append(orderedGroups, grp)
	}
	slices.SortFunc(orderedGroups, func(a, b *oneofGroup) int { return a.index - b.index })
	for _, grp := range orderedGroups {
		genOneofGroup(g, name, grp, pkg)
	}

	genSize(g, name, m, groups, pkg)
	genEncode(g, name, m, groups, pkg)
	genDecode(g, name, m, groups, pkg)
	genRelease(g, name, m, groups, pkg)
}

func groupOneofs(m *descriptor.Message) map[int]*oneofGroup {
	groups := map[int]*oneofGroup{}
	for _, fd := range m.Fields {
		if fd.OneofIndex >= 0 && !fd.Synthetic {
			grp := groups[fd.OneofIndex]
			if grp == nil {
				grp = &oneofGroup{index: fd.OneofIndex, name: m.Oneofs[fd.OneofIndex].Name}
				groups[fd.OneofIndex] = grp
			}
			grp.members = append(grp.members, fd)
		}
	}
	return groups
}

func oneofInterfaceName(msgName, oneofName string) string {
	return "is" + msgName + "_" + exportedName(oneofName)
}

func oneofWrapperName(msgName string, fd descriptor.Field) string {
	return msgName + "_" + exportedName(fd.Name)
}

func genOneofGroup(g *generatedFile, msgName string, grp *oneofGroup, pkg string) {
	iface := oneofInterfaceName(msgName, grp.name)
	g.P("type ", iface, " interface {")
	g.P("\t", iface, "()")
	g.P("}")
	g.P()
	for _, fd := range grp.members {
		wrapper := oneofWrapperName(msgName, fd)
		g.P("type ", wrapper, " struct {")
		g.P("\t", exportedName(fd.Name), " ", elemGoType(fd, pkg))
		g.P("}")
		g.P()
		g.P("func (*", wrapper, ") ", iface, "() {}")
		g.P()
	}
}

func scalarGoType(k descriptor.Kind) string {
	switch k {
	case descriptor.KindDouble:
		return "float64"
	case descriptor.KindFloat:
		return "float32"
	case descriptor.KindInt32, descriptor.KindSInt32, descriptor.KindSFixed32:
		return "int32"
	case descriptor.KindInt64, descriptor.KindSInt64, descriptor.KindSFixed64:
		return "int64"
	case descriptor.KindUInt32, descriptor.KindFixed32:
		return "uint32"
	case descriptor.KindUInt64, descriptor.KindFixed64:
		return "uint64"
	case descriptor.KindBool:
		return "bool"
	case descriptor.KindString:
		return "string"
	case descriptor.KindBytes:
		return "[]byte"
	}
	return ""
}

func elemGoType(fd descriptor.Field, pkg string) string {
	switch fd.Kind {
	case descriptor.KindMessage, descriptor.KindGroup:
		return "*" + goTypeName(fd.TypeName, pkg)
	case descriptor.KindEnum:
		return goTypeName(fd.TypeName, pkg)
	default:
		return scalarGoType(fd.Kind)
	}
}

// fieldGoType resolves a single Field's full Go type, accounting for
// repeated/optional/required/implicit presence.
func fieldGoType(fd descriptor.Field, pkg string) string {
	elem := elemGoType(fd, pkg)
	switch fd.Label {
	case descriptor.LabelRepeated:
		return "[]" + elem
	case descriptor.LabelOptional:
		if fd.Kind == descriptor.KindMessage || fd.Kind == descriptor.KindGroup {
			return elem // already a pointer
		}
		return "*" + elem
	default: // required, implicit
		return elem
	}
}

func mapKeyGoType(k descriptor.Kind) string { return scalarGoType(k) }

func mapValueGoType(mf descriptor.MapField, pkg string) string {
	switch mf.ValueKind {
	case descriptor.KindMessage:
		return "*" + goTypeName(mf.ValueType, pkg)
	case descriptor.KindEnum:
		return goTypeName(mf.ValueType, pkg)
	default:
		return scalarGoType(mf.ValueKind)
	}
}
