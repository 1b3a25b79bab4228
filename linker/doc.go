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

// Package linker resolves a set of parsed .proto files against each
// other: it builds a global symbol table, resolves every relative type
// reference by walking the enclosing-scope chain, classifies each
// reference as message or enum, and validates the field-number, reserved
// range, and oneof/map invariants that require cross-file information the
// parser alone can't check. Its output is a descriptor.File per input
// file, ready for package codegen or package dynamic to consume.
package linker
