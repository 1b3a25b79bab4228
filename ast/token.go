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

package ast

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind int8

const (
	_ Kind = iota
	Ident
	Int
	Float
	String
	// Punct covers every single-rune punctuation token: ; , . = - + { } [ ] ( ) < > /
	Punct
	EOF
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "identifier"
	case Int:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Punct:
		return "punctuation"
	case EOF:
		return "end of input"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Token is a single lexed token: its kind, the literal text the lexer
// consumed (already escape-resolved for String tokens), and its source
// location. Keywords are not distinguished at this layer -- they lex as
// Ident and are compared against context by the parser.
type Token struct {
	Kind Kind
	Text string
	Pos  SourcePos

	// Rune is populated only for Punct tokens and names which of the
	// grammar's punctuation characters this token represents.
	Rune rune

	// IntVal/FloatVal are populated for Int/Float tokens after the lexer
	// parses the literal. Base records 10, 8, or 16 for integers.
	IntVal   uint64
	FloatVal float64
	Base     int
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "<EOF>"
	}
	return t.Text
}
