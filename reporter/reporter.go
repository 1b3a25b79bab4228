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

package reporter

import (
	"sync"

	"github.com/protospec/pbgen/ast"
)

// ErrorReporter is invoked for every error encountered. Returning non-nil
// aborts the operation with that error; returning nil lets the parser or
// linker continue, collecting further diagnostics.
type ErrorReporter func(err ErrorWithPos) error

// WarningReporter is invoked for every warning. Warnings never abort the
// operation.
type WarningReporter func(ErrorWithPos)

// Reporter handles both errors and warnings for a single compilation.
type Reporter interface {
	Error(ErrorWithPos) error
	Warning(ErrorWithPos)
}

// NewReporter builds a Reporter from a pair of callback functions. Either
// may be nil.
func NewReporter(errs ErrorReporter, warnings WarningReporter) Reporter {
	return reporterFuncs{errs: errs, warnings: warnings}
}

type reporterFuncs struct {
	errs     ErrorReporter
	warnings WarningReporter
}

func (r reporterFuncs) Error(err ErrorWithPos) error {
	if r.errs == nil {
		return err
	}
	return r.errs(err)
}

func (r reporterFuncs) Warning(err ErrorWithPos) {
	if r.warnings != nil {
		r.warnings(err)
	}
}

// Handler is the accumulator that the lexer, parser, and linker use to
// report diagnostics as they are found. A single Handler instance is
// threaded through every phase of one file set's compilation.
type Handler struct {
	reporter Reporter

	mu           sync.Mutex
	errsReported bool
	err          error
}

// NewHandler creates a Handler that routes diagnostics through rep. A nil
// rep reports nothing but still aborts after the first error (matching the
// zero-value Reporter's behavior of returning the error it was given).
func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = NewReporter(nil, nil)
	}
	return &Handler{reporter: rep}
}

// HandleErrorf reports an error at pos built from a format string. If the
// handler has already aborted, the prior abort error is returned unchanged
// and this new error is dropped.
func (h *Handler) HandleErrorf(pos ast.SourcePos, format string, args ...interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	h.errsReported = true
	err := h.reporter.Error(Errorf(pos, format, args...))
	h.err = err
	return err
}

// HandleError reports err. If err is an ErrorWithPos it is forwarded to the
// reporter; otherwise it is treated as an immediate, unconditional abort.
func (h *Handler) HandleError(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	if ewp, ok := err.(ErrorWithPos); ok {
		h.errsReported = true
		err = h.reporter.Error(ewp)
	}
	h.err = err
	return err
}

// HandleWarningf reports a warning at pos built from a format string.
func (h *Handler) HandleWarningf(pos ast.SourcePos, format string, args ...interface{}) {
	h.reporter.Warning(Errorf(pos, format, args...))
}

// HandleWarning reports a warning at pos wrapping err.
func (h *Handler) HandleWarning(pos ast.SourcePos, err error) {
	h.reporter.Warning(errorWithSourcePos{pos: pos, underlying: err})
}

// Error returns the terminal result of this handler: nil if no error has
// ever been reported, ErrInvalidSource if errors were reported but the
// configured Reporter never itself aborted, or the Reporter's own abort
// error otherwise.
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.errsReported && h.err == nil {
		return ErrInvalidSource
	}
	return h.err
}

// ReporterError returns the error (if any) that the underlying Reporter
// itself chose to abort with, without the ErrInvalidSource substitution
// that Error performs.
func (h *Handler) ReporterError() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Collector is a Reporter that never aborts and simply accumulates every
// diagnostic it is given, in order. Callers that want multi-error output,
// rather than the fail-fast reporter Compiler uses when no Reporter is
// configured, can pass a Collector and inspect every diagnostic collected
// along the way.
type Collector struct {
	mu    sync.Mutex
	Diags []Diag
}

// Diag is one collected diagnostic.
type Diag struct {
	Severity Severity
	Err      ErrorWithPos
}

func (c *Collector) Error(err ErrorWithPos) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Diags = append(c.Diags, Diag{Severity: SeverityError, Err: err})
	return nil
}

func (c *Collector) Warning(err ErrorWithPos) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Diags = append(c.Diags, Diag{Severity: SeverityWarning, Err: err})
}

// HasErrors reports whether any error-severity diagnostic was collected.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.Diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Strings renders every collected diagnostic via Diagnostic, in order.
func (c *Collector) Strings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.Diags))
	for i, d := range c.Diags {
		out[i] = Diagnostic(d.Severity, d.Err)
	}
	return out
}

var _ Reporter = (*Collector)(nil)
