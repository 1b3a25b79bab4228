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

// genSize emits Size, implemented (like package dynamic's sizeMessage)
// by actually encoding into a scratch Writer: a generated message has no
// separate size-only walk, since the two-pass size()==encode() invariant
// only needs encode() to be deterministic, not for size() to avoid
// paying for a second walk.
func genSize(g *generatedFile, name string, m *descriptor.Message, groups map[int]*oneofGroup, pkg string) {
	msgPkg := g.qualify(pkgMessage)
	g.P("func (x *", name, ") Size() int {")
	g.P("\tif x == nil {")
	g.P("\t\treturn 0")
	g.P("\t}")
	g.P("\tw := ", msgPkg, ".NewWriter(64)")
	g.P("\t_ = x.encodeInto(w, ", msgPkg, ".DefaultRecursionLimit, 0)")
	g.P("\treturn w.Len()")
	g.P("}")
	g.P()
}

func genEncode(g *generatedFile, name string, m *descriptor.Message, groups map[int]*oneofGroup, pkg string) {
	msgPkg := g.qualify(pkgMessage)
	rtPkg := g.qualify(pkgRuntime)

	g.P("func (x *", name, ") Marshal(limit int) ([]byte, error) {")
	g.P("\tif limit <= 0 {")
	g.P("\t\tlimit = ", msgPkg, ".DefaultRecursionLimit")
	g.P("\t}")
	g.P("\tw := ", msgPkg, ".NewWriter(0)")
	g.P("\tif err := x.encodeInto(w, limit, 0); err != nil {")
	g.P("\t\treturn nil, err")
	g.P("\t}")
	g.P("\treturn w.Bytes(), nil")
	g.P("}")
	g.P()

	g.P("func (x *", name, ") encodeInto(w *", msgPkg, ".Writer, limit, depth int) error {")
	g.P("\tif x == nil {")
	g.P("\t\treturn nil")
	g.P("\t}")

	emitted := map[int]bool{}
	for _, fd := range m.Fields {
		if fd.OneofIndex >= 0 && !fd.Synthetic {
			if emitted[fd.OneofIndex] {
				continue
			}
			emitted[fd.OneofIndex] = true
			genOneofEncode(g, name, groups[fd.OneofIndex], pkg, msgPkg, rtPkg)
			continue
		}
		genFieldEncode(g, fd, pkg, msgPkg, rtPkg)
	}
	for _, mf := range m.MapFields {
		genMapEncode(g, mf, pkg, msgPkg, rtPkg)
	}
	g.P("\tw.AppendRaw(x.Unknown.Bytes())")
	g.P("\treturn nil")
	g.P("}")
	g.P()
}

func genFieldEncode(g *generatedFile, fd descriptor.Field, pkg, msgPkg, rtPkg string) {
	expr := "x." + exportedName(fd.Name)

	if fd.Label == descriptor.LabelRepeated {
		genRepeatedEncode(g, fd, expr, pkg, msgPkg, rtPkg)
		return
	}
	if fd.Kind == descriptor.KindMessage || fd.Kind == descriptor.KindGroup || fd.Label == descriptor.LabelOptional || fd.Synthetic {
		genPresenceEncode(g, fd, expr, pkg, msgPkg, rtPkg)
		return
	}
	if fd.Label == descriptor.LabelImplicit {
		g.P("\tif ", zeroCheckExpr(fd, expr), " {")
		genScalarWriteBody(g, fd, expr, pkg, msgPkg, rtPkg, "\t\t", "w", "return err")
		g.P("\t}")
		return
	}
	// required: always written.
	genScalarWriteBody(g, fd, expr, pkg, msgPkg, rtPkg, "\t", "w", "return err")
}

func genPresenceEncode(g *generatedFile, fd descriptor.Field, expr, pkg, msgPkg, rtPkg string) {
	g.P("\tif ", expr, " != nil {")
	valueExpr := expr
	if fd.Kind != descriptor.KindMessage && fd.Kind != descriptor.KindGroup {
		valueExpr = "(*" + expr + ")"
	}
	genScalarWriteBody(g, fd, valueExpr, pkg, msgPkg, rtPkg, "\t\t", "w", "return err")
	g.P("\t}")
}

func genOneofEncode(g *generatedFile, msgName string, grp *oneofGroup, pkg, msgPkg, rtPkg string) {
	if grp == nil {
		return
	}
	g.P("\tswitch v := x.", exportedName(grp.name), ".(type) {")
	for _, fd := range grp.members {
		wrapper := oneofWrapperName(msgName, fd)
		g.P("\tcase *", wrapper, ":")
		expr := "v." + exportedName(fd.Name)
		if fd.Kind != descriptor.KindMessage && fd.Kind != descriptor.KindGroup {
			// wrapper fields are plain (non-pointer) values of the element type
		}
		genScalarWriteBody(g, fd, expr, pkg, msgPkg, rtPkg, "\t\t", "w", "return err")
	}
	g.P("\t}")
}

func genRepeatedEncode(g *generatedFile, fd descriptor.Field, expr, pkg, msgPkg, rtPkg string) {
	g.P("\tif len(", expr, ") > 0 {")
	if fd.Packed && fd.Kind.IsNumeric() {
		g.P("\t\tvar packed []byte")
		g.P("\t\tfor _, v := range ", expr, " {")
		genPackedAppend(g, fd, "v", msgPkg, rtPkg, "\t\t\t")
		g.P("\t\t}")
		g.P("\t\tw.WriteLenField(", fd.Number, ", packed)")
	} else {
		g.P("\t\tfor _, v := range ", expr, " {")
		genScalarWriteBody(g, fd, "v", pkg, msgPkg, rtPkg, "\t\t\t", "w", "return err")
		g.P("\t\t}")
	}
	g.P("\t}")
}

func genPackedAppend(g *generatedFile, fd descriptor.Field, expr, msgPkg, rtPkg, indent string) {
	switch fd.Kind {
	case descriptor.KindFixed32, descriptor.KindSFixed32:
		g.P(indent, "packed = ", msgPkg, ".AppendPackedFixed32(packed, uint32(", expr, "))")
	case descriptor.KindFloat:
		mathPkg := g.qualify("math")
		g.P(indent, "packed = ", msgPkg, ".AppendPackedFixed32(packed, ", mathPkg, ".Float32bits(", expr, "))")
	case descriptor.KindFixed64, descriptor.KindSFixed64:
		g.P(indent, "packed = ", msgPkg, ".AppendPackedFixed64(packed, uint64(", expr, "))")
	case descriptor.KindDouble:
		mathPkg := g.qualify("math")
		g.P(indent, "packed = ", msgPkg, ".AppendPackedFixed64(packed, ", mathPkg, ".Float64bits(", expr, "))")
	case descriptor.KindSInt32:
		g.P(indent, "packed = ", msgPkg, ".AppendPackedVarint(packed, uint64(", rtPkg, ".EncodeZigZag32(int32(", expr, "))))")
	case descriptor.KindSInt64:
		g.P(indent, "packed = ", msgPkg, ".AppendPackedVarint(packed, ", rtPkg, ".EncodeZigZag64(int64(", expr, ")))")
	default: // int32/int64/uint32/uint64/bool/enum
		g.P(indent, "packed = ", msgPkg, ".AppendPackedVarint(packed, uint64(", expr, "))")
	}
}

// genScalarWriteBody emits the statement(s) writing one scalar/message/
// group value, already resolved to a concrete Go expression, through the
// writer variable named wv. onErr is the statement run when a fallible
// step (UTF-8 validation, recursion-depth check, nested encode) fails --
// "return err" at top level, or an error-capturing assignment followed
// by a bare return inside a closure (map-entry encoding).
func genScalarWriteBody(g *generatedFile, fd descriptor.Field, expr, pkg, msgPkg, rtPkg, indent, wv, onErr string) {
	num := fd.Number
	switch fd.Kind {
	case descriptor.KindInt32, descriptor.KindInt64, descriptor.KindEnum:
		g.P(indent, wv, ".WriteSignedVarintField(", num, ", int64(", expr, "))")
	case descriptor.KindUInt32, descriptor.KindUInt64:
		g.P(indent, wv, ".WriteVarintField(", num, ", uint64(", expr, "))")
	case descriptor.KindBool:
		g.P(indent, wv, ".WriteVarintField(", num, ", ", rtPkg, ".BoolToUint64(", expr, "))")
	case descriptor.KindSInt32:
		g.P(indent, wv, ".WriteZigZag32Field(", num, ", int32(", expr, "))")
	case descriptor.KindSInt64:
		g.P(indent, wv, ".WriteZigZag64Field(", num, ", int64(", expr, "))")
	case descriptor.KindFixed32:
		g.P(indent, wv, ".WriteFixed32Field(", num, ", uint32(", expr, "))")
	case descriptor.KindSFixed32:
		g.P(indent, wv, ".WriteFixed32Field(", num, ", uint32(", expr, "))")
	case descriptor.KindFloat:
		mathPkg := g.qualify("math")
		g.P(indent, wv, ".WriteFixed32Field(", num, ", ", mathPkg, ".Float32bits(", expr, "))")
	case descriptor.KindFixed64:
		g.P(indent, wv, ".WriteFixed64Field(", num, ", uint64(", expr, "))")
	case descriptor.KindSFixed64:
		g.P(indent, wv, ".WriteFixed64Field(", num, ", uint64(", expr, "))")
	case descriptor.KindDouble:
		mathPkg := g.qualify("math")
		g.P(indent, wv, ".WriteFixed64Field(", num, ", ", mathPkg, ".Float64bits(", expr, "))")
	case descriptor.KindString:
		g.P(indent, "if err := ", rtPkg, ".ValidString(", expr, "); err != nil {")
		g.P(indent, "\t", onErr)
		g.P(indent, "}")
		g.P(indent, wv, ".WriteLenField(", num, ", []byte(", expr, "))")
	case descriptor.KindBytes:
		g.P(indent, wv, ".WriteLenField(", num, ", ", expr, ")")
	case descriptor.KindMessage:
		genNestedEncode(g, num, expr, msgPkg, rtPkg, indent, wv, onErr)
	case descriptor.KindGroup:
		genGroupEncode(g, num, expr, msgPkg, rtPkg, indent, wv, onErr)
	}
}

func genNestedEncode(g *generatedFile, num int32, expr, msgPkg, rtPkg, indent, wv, onErr string) {
	g.P(indent, "if err := ", rtPkg, ".CheckDepth(depth+1, limit); err != nil {")
	g.P(indent, "\t", onErr)
	g.P(indent, "}")
	g.P(indent, "nestedSize, nestedSizeErr := ", rtPkg, ".SizeMessage(func(nw *", msgPkg, ".Writer) error { return ", expr, ".encodeInto(nw, limit, depth+1) })")
	g.P(indent, "if nestedSizeErr != nil {")
	g.P(indent, "\terr := nestedSizeErr")
	g.P(indent, "\t", onErr)
	g.P(indent, "}")
	g.P(indent, "var nestedErr error")
	g.P(indent, wv, ".WriteNestedMessage(", num, ", nestedSize, func(nw *", msgPkg, ".Writer) {")
	g.P(indent, "\tif e := ", expr, ".encodeInto(nw, limit, depth+1); e != nil {")
	g.P(indent, "\t\tnestedErr = e")
	g.P(indent, "\t}")
	g.P(indent, "})")
	g.P(indent, "if nestedErr != nil {")
	g.P(indent, "\terr := nestedErr")
	g.P(indent, "\t", onErr)
	g.P(indent, "}")
}

func genGroupEncode(g *generatedFile, num int32, expr, msgPkg, rtPkg, indent, wv, onErr string) {
	wirePkg := g.qualify(pkgWire)
	g.P(indent, "if err := ", rtPkg, ".CheckDepth(depth+1, limit); err != nil {")
	g.P(indent, "\t", onErr)
	g.P(indent, "}")
	g.P(indent, wv, ".AppendRaw(", wirePkg, ".AppendTag(nil, ", num, ", ", wirePkg, ".StartGroup))")
	g.P(indent, "if err := ", expr, ".encodeInto(", wv, ", limit, depth+1); err != nil {")
	g.P(indent, "\t", onErr)
	g.P(indent, "}")
	g.P(indent, wv, ".AppendRaw(", wirePkg, ".AppendTag(nil, ", num, ", ", wirePkg, ".EndGroup))")
}

func zeroCheckExpr(fd descriptor.Field, expr string) string {
	switch fd.Kind {
	case descriptor.KindString:
		return expr + ` != ""`
	case descriptor.KindBytes:
		return "len(" + expr + ") > 0"
	case descriptor.KindBool:
		return expr
	default:
		return expr + " != 0"
	}
}

func genMapEncode(g *generatedFile, mf descriptor.MapField, pkg, msgPkg, rtPkg string) {
	name := exportedName(mf.Name)
	expr := "x." + name
	keyType := mapKeyGoType(mf.KeyKind)
	sortPkg := g.qualify("sort")

	g.P("\tif len(", expr, ") > 0 {")
	g.P("\t\tkeys := make([]", keyType, ", 0, len(", expr, "))")
	g.P("\t\tfor k := range ", expr, " {")
	g.P("\t\t\tkeys = append(keys, k)")
	g.P("\t\t}")
	if mf.KeyKind == descriptor.KindString {
		g.P("\t\t", sortPkg, ".Strings(keys)")
	} else {
		g.P("\t\t", sortPkg, ".Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })")
	}
	g.P("\t\tfor _, k := range keys {")
	g.P("\t\t\tv := ", expr, "[k]")
	g.P("\t\t\tvar entryErr error")
	g.P("\t\t\tbody := ", msgPkg, ".EncodeMapEntry(")
	g.P("\t\t\t\tfunc(kw *", msgPkg, ".Writer) {")
	keyFd := descriptor.Field{Kind: mf.KeyKind, Number: 1}
	genScalarWriteBody(g, keyFd, "k", pkg, msgPkg, rtPkg, "\t\t\t\t\t", "kw", "entryErr = err; return")
	g.P("\t\t\t\t},")
	g.P("\t\t\t\tfunc(vw *", msgPkg, ".Writer) {")
	valFd := descriptor.Field{Kind: mf.ValueKind, Number: 2, TypeName: mf.ValueType}
	genScalarWriteBody(g, valFd, "v", pkg, msgPkg, rtPkg, "\t\t\t\t\t", "vw", "entryErr = err; return")
	g.P("\t\t\t\t},")
	g.P("\t\t\t)")
	g.P("\t\t\tif entryErr != nil {")
	g.P("\t\t\t\treturn entryErr")
	g.P("\t\t\t}")
	g.P("\t\t\tw.WriteLenField(", mf.Number, ", body)")
	g.P("\t\t}")
	g.P("\t}")
}
