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

import "github.com/protospec/pbgen/descriptor"

// genRelease emits Release, the generated-code counterpart of package
// dynamic's Message.Release: it recursively releases every owned
// message-kind value reachable from x (repeated, map, and oneof members
// included) and clears x's own references, matching spec.md 5's
// allocator-owns-until-released model. Scalar fields own nothing and
// are left untouched.
func genRelease(g *generatedFile, name string, m *descriptor.Message, groups map[int]*oneofGroup, pkg string) {
	g.P("func (x *", name, ") Release() {")
	g.P("\tif x == nil {")
	g.P("\t\treturn")
	g.P("\t}")

	emitted := map[int]bool{}
	for _, fd := range m.Fields {
		if fd.OneofIndex >= 0 && !fd.Synthetic {
			if emitted[fd.OneofIndex] {
				continue
			}
			emitted[fd.OneofIndex] = true
			genOneofRelease(g, name, groups[fd.OneofIndex])
			continue
		}
		genFieldRelease(g, fd)
	}
	for _, mf := range m.MapFields {
		genMapRelease(g, mf)
	}
	g.P("}")
	g.P()
}

func genFieldRelease(g *generatedFile, fd descriptor.Field) {
	if fd.Kind != descriptor.KindMessage && fd.Kind != descriptor.KindGroup {
		return
	}
	name := exportedName(fd.Name)
	if fd.Label == descriptor.LabelRepeated {
		g.P("\tfor _, v := range x.", name, " {")
		g.P("\t\tv.Release()")
		g.P("\t}")
		g.P("\tx.", name, " = nil")
		return
	}
	g.P("\tx.", name, ".Release()")
	g.P("\tx.", name, " = nil")
}

func genOneofRelease(g *generatedFile, msgName string, grp *oneofGroup) {
	if grp == nil {
		return
	}
	hasMessageMember := false
	for _, fd := range grp.members {
		if fd.Kind == descriptor.KindMessage || fd.Kind == descriptor.KindGroup {
			hasMessageMember = true
			break
		}
	}
	fieldName := exportedName(grp.name)
	if !hasMessageMember {
		g.P("\tx.", fieldName, " = nil")
		return
	}
	g.P("\tswitch v := x.", fieldName, ".(type) {")
	for _, fd := range grp.members {
		if fd.Kind != descriptor.KindMessage && fd.Kind != descriptor.KindGroup {
			continue
		}
		wrapper := oneofWrapperName(msgName, fd)
		g.P("\tcase *", wrapper, ":")
		g.P("\t\tv.", exportedName(fd.Name), ".Release()")
	}
	g.P("\t}")
	g.P("\tx.", fieldName, " = nil")
}

func genMapRelease(g *generatedFile, mf descriptor.MapField) {
	name := exportedName(mf.Name)
	if mf.ValueKind == descriptor.KindMessage {
		g.P("\tfor _, v := range x.", name, " {")
		g.P("\t\tv.Release()")
		g.P("\t}")
	}
	g.P("\tx.", name, " = nil")
}
