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

// Package codegen implements spec.md 4.6: given a resolved
// descriptor.File, emit one Go source file whose record types and
// encode/decode/size routines are specialized for each message's exact
// field layout -- no runtime schema walk, unlike package dynamic.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
)

// generatedFile accumulates a Go source file's body and tracks which
// import paths it actually used, the same separation of concerns as
// protogen.GeneratedFile: callers write Go source with P, and only
// request an import path when they actually emit a reference to it via
// qualify, so the final import block never lists an unused package.
type generatedFile struct {
	pkg     string
	body    bytes.Buffer
	imports map[string]string // path -> local name
}

func newGeneratedFile(pkg string) *generatedFile {
	return &generatedFile{pkg: pkg, imports: map[string]string{}}
}

// P writes args concatenated (via fmt.Sprint semantics on each operand)
// followed by a newline, mirroring protogen.GeneratedFile.P's call
// shape: callers interleave string literals and computed identifiers
// freely, e.g. g.P("func (x *", name, ") Size() int {").
func (g *generatedFile) P(args ...any) {
	for _, a := range args {
		fmt.Fprint(&g.body, a)
	}
	g.body.WriteByte('\n')
}

// qualify registers path as an import (its local name is the path's last
// segment) and returns that local name, the identifier callers should
// prefix references with.
func (g *generatedFile) qualify(path string) string {
	local := g.imports[path]
	if local != "" {
		return local
	}
	parts := strings.Split(path, "/")
	local = parts[len(parts)-1]
	g.imports[path] = local
	return local
}

// content renders the final file: package clause, import block (sorted,
// only paths actually qualified), then the accumulated body, passed
// through go/format.Source the same way protoc-gen-go's own generated
// file renderer does, so generated code never depends on the invoking
// environment having gofmt on PATH.
func (g *generatedFile) content() ([]byte, error) {
	var out bytes.Buffer
	fmt.Fprintf(&out, "// Code generated by pbgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", g.pkg)

	if len(g.imports) > 0 {
		paths := make([]string, 0, len(g.imports))
		for p := range g.imports {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		out.WriteString("import (\n")
		for _, p := range paths {
			local := g.imports[p]
			if local == lastSegment(p) {
				fmt.Fprintf(&out, "\t%q\n", p)
			} else {
				fmt.Fprintf(&out, "\t%s %q\n", local, p)
			}
		}
		out.WriteString(")\n\n")
	}

	out.Write(g.body.Bytes())

	formatted, err := format.Source(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: generated invalid Go source: %w\n%s", err, out.String())
	}
	return formatted, nil
}

func lastSegment(path string) string {
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}
