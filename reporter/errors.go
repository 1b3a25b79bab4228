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

// Package reporter contains the types used for reporting diagnostics from
// the lexer, parser, and linker: error/warning severities, positions, and
// the Handler that accumulates them across a compilation.
package reporter

import (
	"errors"
	"fmt"

	"github.com/protospec/pbgen/ast"
)

// ErrInvalidSource is returned by the compiler when syntax or link errors
// were reported but the configured Reporter never aborted with its own
// error.
var ErrInvalidSource = errors.New("pbgen: invalid proto source")

// Severity distinguishes a diagnostic that fails compilation from one that
// is merely advisory.
type Severity int8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// ErrorWithPos is a diagnostic tied to a location in proto source. Its
// Error() string is "filename:line:column: message"; Unwrap returns just
// the underlying error.
type ErrorWithPos interface {
	error
	GetPosition() ast.SourcePos
	Unwrap() error
}

// Error builds an ErrorWithPos from an existing error.
func Error(pos ast.SourcePos, err error) ErrorWithPos {
	return errorWithSourcePos{pos: pos, underlying: err}
}

// Errorf builds an ErrorWithPos from a format string, as fmt.Errorf.
func Errorf(pos ast.SourcePos, format string, args ...interface{}) ErrorWithPos {
	return errorWithSourcePos{pos: pos, underlying: fmt.Errorf(format, args...)}
}

type errorWithSourcePos struct {
	underlying error
	pos        ast.SourcePos
}

func (e errorWithSourcePos) Error() string {
	return fmt.Sprintf("%s: %v", e.pos, e.underlying)
}

func (e errorWithSourcePos) GetPosition() ast.SourcePos { return e.pos }
func (e errorWithSourcePos) Unwrap() error              { return e.underlying }

var _ ErrorWithPos = errorWithSourcePos{}

// Diagnostic formats an ErrorWithPos per spec: "filename:line:column: severity: message".
func Diagnostic(sev Severity, err ErrorWithPos) string {
	pos := err.GetPosition()
	return fmt.Sprintf("%s: %s: %v", pos, sev, err.Unwrap())
}
