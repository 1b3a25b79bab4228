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

// Package ast defines the untyped abstract syntax tree produced by package
// parser from protobuf source: tokens, source locations, and the node types
// for files, messages, enums, services, and the various declarations that
// appear inside them.
//
// Unlike a format-preserving concrete syntax tree, nodes here hold plain Go
// fields (name, children, Location) rather than a rope of child tokens. This
// keeps the tree cheap to build and easy for the linker and code generator
// to walk, at the cost of being unable to reprint a file byte-for-byte.
package ast
