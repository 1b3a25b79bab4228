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
	"sync"

	"github.com/protospec/pbgen/ast"
)

// SymbolKind classifies what a fully-qualified name in the symbol table
// refers to.
type SymbolKind int8

const (
	SymbolMessage SymbolKind = iota
	SymbolEnum
	SymbolEnumValue
	SymbolService
	SymbolField // extension, keyed separately by extendee+number elsewhere
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolMessage:
		return "message"
	case SymbolEnum:
		return "enum"
	case SymbolEnumValue:
		return "enum value"
	case SymbolService:
		return "service"
	case SymbolField:
		return "field"
	default:
		return "symbol"
	}
}

// Symbol records where a name was first declared.
type Symbol struct {
	Kind SymbolKind
	File string
	Pos  ast.SourcePos
}

// Symbols is the global table of every message, enum, enum value, and
// service declared across a set of files being linked together. Names
// are absolute and carry a leading dot, the same form as
// descriptor.Message.Name. A single Symbols instance should be shared across
// every file in one compilation so that cross-file duplicate detection
// and name resolution both work.
type Symbols struct {
	mu      sync.Mutex
	byName  map[string]Symbol
}

// Define registers name as declared by kind at pos in file. It reports
// (via the returned ok=false) when name collides with an existing
// declaration elsewhere; the caller is responsible for turning that into
// a diagnostic, since only it knows the right wording and severity.
func (s *Symbols) Define(name string, kind SymbolKind, file string, pos ast.SourcePos) (Symbol, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byName == nil {
		s.byName = map[string]Symbol{}
	}
	if existing, ok := s.byName[name]; ok {
		return existing, false
	}
	sym := Symbol{Kind: kind, File: file, Pos: pos}
	s.byName[name] = sym
	return sym, true
}

// Lookup returns the symbol registered under name, if any.
func (s *Symbols) Lookup(name string) (Symbol, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sym, ok := s.byName[name]
	return sym, ok
}
