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
	"strings"

	"github.com/protospec/pbgen/internal/cases"
)

// reservedMemberNames are the exported struct-member identifiers this
// package's own generated code always attaches to a message type (the
// methods genSize/genEncode/genDecode/genRelease emit, plus the Unknown
// field every message carries for preserved unknown fields). A proto
// field name that PascalCases to one of these would otherwise produce
// "type X has both field and method Y" from the Go compiler, so it gets
// an underscore suffix instead -- the same kind of escaping
// protoc-gen-go does for its own reserved accessor names, just against
// this generator's smaller reserved set rather than Go's keyword list
// (keywords are lower-case and never collide with an exported,
// PascalCase identifier to begin with).
var reservedMemberNames = map[string]bool{
	"Size": true, "Marshal": true, "Release": true, "Unknown": true, "String": true,
}

// exportedName converts a proto identifier (snake_case or otherwise) to
// an exported Go identifier, escaping a collision with a reserved
// generated member name.
func exportedName(name string) string {
	out := pascalCase(name)
	if reservedMemberNames[out] {
		return out + "_"
	}
	return out
}

// pascalCase matches protoc-gen-go's own naive, underscore-only word
// splitting rather than the fancier word-boundary detection cases.Words
// otherwise does, so "x_y_z" and "xY_z" both PascalCase the way protoc
// expects, not the way a general-purpose case converter would guess.
func pascalCase(name string) string {
	return cases.Converter{Case: cases.Pascal, NaiveSplit: true}.Convert(name)
}

// localName returns the last dotted component of an absolute
// (leading-dot) descriptor name, e.g. ".a.b.Outer.Inner" -> "Inner".
func localName(abs string) string {
	idx := strings.LastIndex(abs, ".")
	if idx < 0 {
		return abs
	}
	return abs[idx+1:]
}

// goTypeName converts an absolute descriptor name into the Go type name
// this package's generator uses for it: nested types are emitted as
// nested Go type names joined with underscores (Go has no nested type
// declarations), e.g. ".pkg.Outer.Inner" -> "Outer_Inner", matching
// protoc-gen-go's own flattening of nested protobuf types into
// top-level Go types.
func goTypeName(abs, pkg string) string {
	trimmed := strings.TrimPrefix(abs, ".")
	trimmed = strings.TrimPrefix(trimmed, pkg)
	trimmed = strings.TrimPrefix(trimmed, ".")
	return strings.ReplaceAll(trimmed, ".", "_")
}

// OutputPath maps a protobuf package "a.b.c" to the nested output path
// "a/b/c" spec.md 4.6 requires; a file with no package uses stem instead.
// Exported for callers that drive Generate (the root compiler, and
// package descriptorset) and need to name the file they write the
// returned source into.
func OutputPath(pkg, stem string) string {
	if pkg == "" {
		return stem
	}
	return strings.ReplaceAll(pkg, ".", "/")
}
