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

package pbgen

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/protospec/pbgen/ast"
	"github.com/protospec/pbgen/descriptor"
)

// ErrNotFound is returned by a Resolver when it has no answer for a path,
// distinct from any other failure (a read error, a parse error).
var ErrNotFound = errors.New("pbgen: file not found")

// Resolver locates the input for one file path: protobuf source text, an
// already-parsed AST, or an already-linked descriptor. This is how a
// Compiler loads both the files it was asked to compile and everything
// they import.
type Resolver interface {
	FindFileByPath(string) (SearchResult, error)
}

// SearchResult is a Resolver's answer for one path. Exactly one field
// should be set; a Compiler prefers them in the order File, AST, Source --
// the more already done, the less work remains.
type SearchResult struct {
	Source io.Reader
	AST    *ast.File
	File   *descriptor.File
}

// ResolverFunc adapts a plain function to a Resolver.
type ResolverFunc func(string) (SearchResult, error)

var _ Resolver = ResolverFunc(nil)

func (f ResolverFunc) FindFileByPath(path string) (SearchResult, error) {
	return f(path)
}

// CompositeResolver tries each Resolver in order, returning the first
// successful answer. Any error moves on to the next Resolver; if every
// one fails, the first Resolver's error is returned (ErrNotFound if the
// list is empty).
type CompositeResolver []Resolver

var _ Resolver = CompositeResolver(nil)

func (c CompositeResolver) FindFileByPath(path string) (SearchResult, error) {
	if len(c) == 0 {
		return SearchResult{}, ErrNotFound
	}
	var firstErr error
	for _, res := range c {
		r, err := res.FindFileByPath(path)
		if err == nil {
			return r, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return SearchResult{}, firstErr
}

// SourceResolver loads protobuf source text from the file system, trying
// each of ImportPaths in turn (or Accessor directly if ImportPaths is
// empty, matching protoc's own "no -I means cwd" behavior). ExcludePatterns
// is an optional convenience: any path matching one of these doublestar
// globs is treated as not found rather than read, letting a caller keep a
// broad import path while steering the compiler away from files it
// shouldn't see (generated output sitting next to sources, vendor trees).
type SourceResolver struct {
	ImportPaths     []string
	ExcludePatterns []string
	Accessor        func(string) (io.ReadCloser, error)
}

var _ Resolver = (*SourceResolver)(nil)

func (r *SourceResolver) FindFileByPath(path string) (SearchResult, error) {
	for _, pat := range r.ExcludePatterns {
		if ok, _ := doublestar.Match(pat, path); ok {
			return SearchResult{}, ErrNotFound
		}
	}

	accessor := r.Accessor
	if accessor == nil {
		accessor = defaultAccessor
	}

	if len(r.ImportPaths) == 0 {
		reader, err := accessor(path)
		if err != nil {
			return SearchResult{}, notFoundErr(err)
		}
		return SearchResult{Source: reader}, nil
	}

	var firstErr error
	for _, importPath := range r.ImportPaths {
		reader, err := accessor(filepath.Join(importPath, path))
		if err != nil {
			if os.IsNotExist(err) {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			return SearchResult{}, err
		}
		return SearchResult{Source: reader}, nil
	}
	return SearchResult{}, notFoundErr(firstErr)
}

func defaultAccessor(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func notFoundErr(err error) error {
	if err == nil {
		return ErrNotFound
	}
	return err
}

// SourceAccessorFromMap builds a SourceResolver.Accessor backed by an
// in-memory map of path to source text, the shape every test in this
// package uses instead of touching the file system.
func SourceAccessorFromMap(srcs map[string]string) func(string) (io.ReadCloser, error) {
	return func(path string) (io.ReadCloser, error) {
		src, ok := srcs[path]
		if !ok {
			return nil, ErrNotFound
		}
		return io.NopCloser(strings.NewReader(src)), nil
	}
}
