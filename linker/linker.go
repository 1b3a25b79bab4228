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
	"github.com/protospec/pbgen/reporter"
)

// Link resolves file against deps (every file it, directly or
// transitively, imports, already linked) and syms (the symbol table
// shared across the whole compilation). It registers file's own symbols,
// resolves every type reference, validates field-number/reserved/oneof/
// map invariants, and returns the resulting descriptor.File.
//
// The caller is responsible for linking files in dependency order (no
// cycles are possible in a well-formed import graph) and for sharing one
// Symbols instance across every file in the compilation.
func Link(file *ast.File, deps Files, syms *Symbols, handler *reporter.Handler) *descriptor.File {
	registerSymbols(file, syms, handler)
	validateNumbers(file, handler)
	df := Build(file, deps, syms, handler)
	validateDescriptor(df, handler)
	validateExtensions(df, deps, handler)
	return df
}
