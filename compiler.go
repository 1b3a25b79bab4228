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
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/protospec/pbgen/ast"
	"github.com/protospec/pbgen/descriptor"
	"github.com/protospec/pbgen/linker"
	"github.com/protospec/pbgen/parser"
	"github.com/protospec/pbgen/parser/fastscan"
	"github.com/protospec/pbgen/reporter"
)

// Compiler handles compilation tasks, turning protobuf source files (or
// already-parsed/-linked intermediate representations) into fully linked
// descriptors. The compilation process, per file, is:
//  1. Parsing the source into an AST.
//  2. Linking the AST into a fully resolved descriptor.File, validating
//     field numbers, reserved ranges, oneofs, and map entries along the
//     way.
//
// With fully linked descriptors, package codegen or descriptorset can be
// driven to produce generated Go source.
type Compiler struct {
	// Resolver locates source or intermediate representations for the
	// files to compile, and for everything they import. This is the only
	// required field.
	Resolver Resolver
	// MaxParallelism bounds how many files are compiled concurrently. If
	// unspecified or non-positive, min(runtime.NumCPU(), GOMAXPROCS) is
	// used.
	MaxParallelism int
	// Reporter receives errors and warnings as compilation proceeds. If
	// unspecified, a default reporter fails the compilation at the first
	// error and ignores all warnings.
	Reporter reporter.Reporter
}

// Compile compiles the given file names into fully linked descriptors,
// using the Resolver to load each file and everything it imports. The
// result holds the named files and every file they import, directly or
// transitively, keyed by path.
func (c *Compiler) Compile(ctx context.Context, files ...string) (linker.Files, error) {
	if len(files) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	par := c.MaxParallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(-1)
		if cpus := runtime.NumCPU(); par > cpus {
			par = cpus
		}
	}

	h := reporter.NewHandler(c.Reporter)

	e := &executor{
		c:       c,
		h:       h,
		s:       semaphore.NewWeighted(int64(par)),
		sym:     &linker.Symbols{},
		results: map[string]*result{},
	}

	results := make([]*result, len(files))
	func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, f := range files {
			results[i] = e.compileLocked(ctx, f, true)
		}
	}()

	descs := linker.Files{}
	var firstErr error
	// Imports of each successfully linked file are appended to files and
	// results as they are found, so the loop also collects them.
	files = files[:len(files):len(files)]
	queued := map[string]bool{}
	for i := 0; i < len(results); i++ {
		r := results[i]
		select {
		case <-r.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		descs[files[i]] = r.df
		for _, imp := range r.df.Imports {
			if !queued[imp] {
				queued[imp] = true
				files = append(files, imp)
				results = append(results, e.compile(ctx, imp))
			}
		}
	}

	if err := h.Error(); err != nil {
		return descs, err
	}
	return descs, firstErr
}

type result struct {
	name         string
	ready        chan struct{}
	explicitFile bool

	df  *descriptor.File
	err error

	mu        sync.Mutex
	blockedOn []string
}

func (r *result) fail(err error) {
	r.err = err
	close(r.ready)
}

func (r *result) complete(df *descriptor.File) {
	r.df = df
	close(r.ready)
}

func (r *result) setBlockedOn(deps []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blockedOn = deps
}

func (r *result) getBlockedOn() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blockedOn
}

type executor struct {
	c   *Compiler
	h   *reporter.Handler
	s   *semaphore.Weighted
	sym *linker.Symbols

	mu      sync.Mutex
	results map[string]*result
}

func (e *executor) compile(ctx context.Context, file string) *result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compileLocked(ctx, file, false)
}

func (e *executor) compileLocked(ctx context.Context, file string, explicitFile bool) *result {
	if r := e.results[file]; r != nil {
		return r
	}
	r := &result{name: file, ready: make(chan struct{}), explicitFile: explicitFile}
	e.results[file] = r
	go e.doCompile(ctx, file, r)
	return r
}

type errFailedToResolve struct {
	err  error
	path string
}

func (e errFailedToResolve) Error() string {
	msg := e.err.Error()
	if strings.Contains(msg, e.path) {
		return msg
	}
	return fmt.Sprintf("could not resolve path %q: %s", e.path, msg)
}

func (e errFailedToResolve) Unwrap() error { return e.err }

func (e *executor) doCompile(ctx context.Context, file string, r *result) {
	t := task{e: e, r: r}
	if err := e.s.Acquire(ctx, 1); err != nil {
		r.fail(err)
		return
	}
	defer t.release()

	sr, err := e.c.Resolver.FindFileByPath(file)
	if err != nil {
		r.fail(errFailedToResolve{err, file})
		return
	}
	defer func() {
		if c, ok := sr.Source.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	df, err := t.asFile(ctx, file, sr)
	if err != nil {
		r.fail(err)
		return
	}
	r.complete(df)
}

// task is a single file's compilation, tracked separately from executor so
// that the semaphore permit it holds can be released (and later
// reacquired) while it blocks on its own dependencies -- without this a
// long import chain can deadlock the worker pool.
type task struct {
	e        *executor
	released bool
	r        *result
}

func (t *task) release() {
	if !t.released {
		t.e.s.Release(1)
		t.released = true
	}
}

func (t *task) asFile(ctx context.Context, name string, sr SearchResult) (*descriptor.File, error) {
	if sr.File != nil {
		if sr.File.Path != name {
			return nil, fmt.Errorf("search result for %q returned descriptor for %q", name, sr.File.Path)
		}
		return sr.File, nil
	}

	if sr.AST == nil && sr.Source != nil {
		raw, err := io.ReadAll(sr.Source)
		if err != nil {
			return nil, err
		}
		t.e.prewarmImports(ctx, name, raw)
		sr.Source = bytes.NewReader(raw)
	}

	fileNode, err := t.asAST(name, sr)
	if err != nil {
		return nil, err
	}

	var deps linker.Files
	if len(fileNode.Imports) > 0 {
		depNames := make([]string, len(fileNode.Imports))
		for i, imp := range fileNode.Imports {
			depNames[i] = imp.Path
		}
		t.r.setBlockedOn(depNames)

		results := make([]*result, len(fileNode.Imports))
		checked := map[string]struct{}{}
		for i, imp := range fileNode.Imports {
			if imp.Path == name {
				handleImportCycle(t.e.h, imp.Pos, []string{name}, imp.Path)
				return nil, t.e.h.Error()
			}
			res := t.e.compile(ctx, imp.Path)
			if err := t.e.checkForDependencyCycle(res, []string{name, imp.Path}, imp.Pos, checked); err != nil {
				return nil, err
			}
			results[i] = res
		}

		// Release our permit so dependencies can make progress even if
		// the pool is saturated with waiting parents.
		t.e.s.Release(1)
		t.released = true

		deps = linker.Files{}
		for i, res := range results {
			select {
			case <-res.ready:
				if res.err != nil {
					if rerr, ok := res.err.(errFailedToResolve); ok {
						return nil, reporter.Error(fileNode.Imports[i].Pos, rerr)
					}
					return nil, res.err
				}
				deps[fileNode.Imports[i].Path] = res.df
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		t.r.setBlockedOn(nil)
		if err := t.e.s.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		t.released = false
	}

	h := t.e.h
	df := linker.Link(fileNode, deps, t.e.sym, h)
	if err := h.Error(); err != nil {
		return nil, err
	}
	return df, nil
}

// prewarmImports uses the lightweight fastscan lexer to read a file's
// import list without waiting on that file's own full parse, so dependency
// compiles for a large file can start while it is still being tokenized by
// the real parser instead of only after. asFile's own fileNode.Imports --
// produced by the full parse -- remains the authoritative list that drives
// linking; a prewarm result that disagrees with it (or errors out) just
// means that head start wasn't used, which is never observable as a
// compile error.
func (e *executor) prewarmImports(ctx context.Context, name string, src []byte) {
	res, err := fastscan.Scan(name, bytes.NewReader(src))
	if err != nil {
		return
	}
	for _, imp := range res.Imports {
		e.compile(ctx, imp.Path)
	}
}

func (e *executor) checkForDependencyCycle(res *result, sequence []string, pos ast.SourcePos, checked map[string]struct{}) error {
	if _, ok := checked[res.name]; ok {
		return nil
	}
	checked[res.name] = struct{}{}
	for _, dep := range res.getBlockedOn() {
		for _, file := range sequence {
			if file == dep {
				handleImportCycle(e.h, pos, sequence, dep)
				return e.h.Error()
			}
		}
		e.mu.Lock()
		depRes := e.results[dep]
		e.mu.Unlock()
		if depRes == nil {
			continue
		}
		if err := e.checkForDependencyCycle(depRes, append(sequence, dep), pos, checked); err != nil {
			return err
		}
	}
	return nil
}

func handleImportCycle(h *reporter.Handler, pos ast.SourcePos, importSequence []string, dep string) {
	var buf bytes.Buffer
	buf.WriteString("cycle found in imports: ")
	for _, imp := range importSequence {
		fmt.Fprintf(&buf, "%q -> ", imp)
	}
	fmt.Fprintf(&buf, "%q", dep)
	h.HandleErrorf(pos, "%s", buf.String())
}

func (t *task) asAST(name string, sr SearchResult) (*ast.File, error) {
	if sr.AST != nil {
		return sr.AST, nil
	}
	src, err := io.ReadAll(sr.Source)
	if err != nil {
		return nil, err
	}
	p := parser.NewParser(name, src, t.e.h)
	f := p.ParseFile()
	if err := t.e.h.Error(); err != nil {
		return nil, err
	}
	return f, nil
}
