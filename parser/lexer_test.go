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

package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protospec/pbgen/ast"
	"github.com/protospec/pbgen/reporter"
)

func lexAll(t *testing.T, src string) ([]ast.Token, *reporter.Collector) {
	t.Helper()
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	l := NewLexer("t.proto", []byte(src), h)
	var toks []ast.Token
	for {
		tok, err := l.Next()
		if err != nil {
			// Next has already reported err through the handler, and a
			// malformed token ends lexing.
			require.True(t, c.HasErrors(), err)
			return toks, &c
		}
		toks = append(toks, tok)
		if tok.Kind == ast.EOF {
			return toks, &c
		}
	}
}

func TestLexIdentifiersAndKeywords(t *testing.T) {
	toks, c := lexAll(t, "message Foo {}")
	require.False(t, c.HasErrors())
	require.Equal(t, ast.Ident, toks[0].Kind)
	require.Equal(t, "message", toks[0].Text)
	require.Equal(t, ast.Ident, toks[1].Kind)
	require.Equal(t, "Foo", toks[1].Text)
	require.Equal(t, ast.Punct, toks[2].Kind)
	require.Equal(t, '{', toks[2].Rune)
}

func TestLexIntegerLiterals(t *testing.T) {
	toks, c := lexAll(t, "10 0x1A 017 0")
	require.False(t, c.HasErrors())
	require.Equal(t, uint64(10), toks[0].IntVal)
	require.Equal(t, 10, toks[0].Base)
	require.Equal(t, uint64(26), toks[1].IntVal)
	require.Equal(t, 16, toks[1].Base)
	require.Equal(t, uint64(15), toks[2].IntVal)
	require.Equal(t, 8, toks[2].Base)
	require.Equal(t, uint64(0), toks[3].IntVal)
}

func TestLexFloatLiterals(t *testing.T) {
	toks, c := lexAll(t, "3.14 .5 1e10 2E-3")
	require.False(t, c.HasErrors())
	for i, want := range []float64{3.14, 0.5, 1e10, 2e-3} {
		require.Equal(t, ast.Float, toks[i].Kind)
		require.InDelta(t, want, toks[i].FloatVal, 1e-9)
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks, c := lexAll(t, `"hello\nworld" '\x41\102' "é"`)
	require.False(t, c.HasErrors())
	require.Equal(t, "hello\nworld", toks[0].Text)
	require.Equal(t, "AB", toks[1].Text)
	require.Equal(t, "é", toks[2].Text)
}

func TestLexSkipsComments(t *testing.T) {
	toks, c := lexAll(t, "// line comment\nfoo /* block\ncomment */ bar")
	require.False(t, c.HasErrors())
	require.Equal(t, "foo", toks[0].Text)
	require.Equal(t, "bar", toks[1].Text)
}

func TestLexUnterminatedStringReportsError(t *testing.T) {
	_, c := lexAll(t, `"unterminated`)
	require.True(t, c.HasErrors())
}

func TestLexUnterminatedBlockCommentReportsError(t *testing.T) {
	_, c := lexAll(t, "/* never closes")
	require.True(t, c.HasErrors())
}
