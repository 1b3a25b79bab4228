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
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/protospec/pbgen/ast"
	"github.com/protospec/pbgen/reporter"
)

// runeReader is a cursor over a .proto file's bytes, tracking a mark so
// callers can later recover the exact text between two points.
type runeReader struct {
	data []byte
	pos  int
	mark int
}

func (rr *runeReader) readRune() (r rune, size int, err error) {
	if rr.pos == len(rr.data) {
		return 0, 0, io.EOF
	}
	r, sz := utf8.DecodeRune(rr.data[rr.pos:])
	if r == utf8.RuneError && sz == 1 {
		return 0, 0, fmt.Errorf("invalid UTF8 at offset %d: %x", rr.pos, rr.data[rr.pos])
	}
	rr.pos += sz
	return r, sz, nil
}

func (rr *runeReader) unreadRune(sz int) {
	newPos := rr.pos - sz
	if newPos < rr.mark {
		panic("unread past mark")
	}
	rr.pos = newPos
}

func (rr *runeReader) setMark()       { rr.mark = rr.pos }
func (rr *runeReader) marked() []byte { return rr.data[rr.mark:rr.pos] }
func (rr *runeReader) offset() int    { return rr.pos }

// Lexer tokenizes one .proto source file. Keywords are not distinguished
// from ordinary identifiers at this layer; the parser compares an Ident
// token's text against the grammar's keyword set as needed.
type Lexer struct {
	info    *ast.FileInfo
	input   runeReader
	handler *reporter.Handler
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewLexer creates a Lexer over data, reporting errors it cannot recover
// from through handler.
func NewLexer(filename string, data []byte, handler *reporter.Handler) *Lexer {
	data = bytes.TrimPrefix(data, utf8BOM)
	return &Lexer{
		info:    ast.NewFileInfo(filename, data),
		input:   runeReader{data: data},
		handler: handler,
	}
}

// FileInfo returns the line/offset table the lexer is populating, for use
// in source-position lookups by the parser and downstream diagnostics.
func (l *Lexer) FileInfo() *ast.FileInfo { return l.info }

func (l *Lexer) pos(offset int) ast.SourcePos { return l.info.SourcePos(offset) }

// errorf records a lexical error through the handler and returns it so the
// caller can abort tokenizing this file. The handler's own configured
// Reporter decides whether the overall compilation aborts immediately;
// either way a malformed token can't be lexed further, so Next() always
// stops here.
func (l *Lexer) errorf(offset int, format string, args ...any) error {
	err := reporter.Errorf(l.pos(offset), format, args...)
	_ = l.handler.HandleError(err)
	return err
}

// Next returns the next token, skipping whitespace and comments. At end
// of input it returns a Kind-EOF token and a nil error forever after.
func (l *Lexer) Next() (ast.Token, error) {
	for {
		l.input.setMark()
		start := l.input.offset()
		c, _, err := l.input.readRune()
		if err == io.EOF {
			return ast.Token{Kind: ast.EOF, Pos: l.pos(start)}, nil
		}
		if err != nil {
			l.input.pos++ // step over the invalid byte so the next call makes progress
			return ast.Token{}, l.errorf(start, "%v", err)
		}

		switch {
		case c == '\n':
			l.info.AddLine(l.input.offset())
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			continue

		case c == '.':
			cn, szn, errn := l.input.readRune()
			if errn == nil && cn >= '0' && cn <= '9' {
				return l.lexNumber(start)
			}
			if errn == nil {
				l.input.unreadRune(szn)
			}
			return ast.Token{Kind: ast.Punct, Text: ".", Rune: '.', Pos: l.pos(start)}, nil

		case c == '_' || isAlpha(c):
			return l.lexIdent(start), nil

		case c >= '0' && c <= '9':
			l.input.unreadRune(utf8.RuneLen(c))
			l.input.setMark()
			return l.lexNumber(start)

		case c == '\'' || c == '"':
			return l.lexString(start, c)

		case c == '/':
			cn, szn, errn := l.input.readRune()
			if errn == nil && cn == '/' {
				l.skipLineComment()
				continue
			}
			if errn == nil && cn == '*' {
				if !l.skipBlockComment() {
					return ast.Token{}, l.errorf(start, "block comment never terminates, unexpected EOF")
				}
				continue
			}
			if errn == nil {
				l.input.unreadRune(szn)
			}
			return ast.Token{}, l.errorf(start, "invalid character %q", c)

		case c > 127:
			return ast.Token{}, l.errorf(start, "invalid character %q", c)

		default:
			return ast.Token{Kind: ast.Punct, Text: string(c), Rune: c, Pos: l.pos(start)}, nil
		}
	}
}

func isAlpha(c rune) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func (l *Lexer) lexIdent(start int) ast.Token {
	for {
		c, sz, err := l.input.readRune()
		if err != nil {
			break
		}
		if c != '_' && !isAlpha(c) && (c < '0' || c > '9') {
			l.input.unreadRune(sz)
			break
		}
	}
	text := string(l.input.marked())
	return ast.Token{Kind: ast.Ident, Text: text, Pos: l.pos(start)}
}

func (l *Lexer) lexNumber(start int) (ast.Token, error) {
	allowExpSign := false
	for {
		c, sz, err := l.input.readRune()
		if err != nil {
			break
		}
		if (c == '-' || c == '+') && !allowExpSign {
			l.input.unreadRune(sz)
			break
		}
		allowExpSign = false
		if c != '.' && c != '_' && (c < '0' || c > '9') && !isAlpha(c) && c != '-' && c != '+' {
			l.input.unreadRune(sz)
			break
		}
		if c == 'e' || c == 'E' {
			allowExpSign = true
		}
	}
	text := string(l.input.marked())

	switch {
	case len(text) > 1 && (text[0:2] == "0x" || text[0:2] == "0X"):
		ui, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return ast.Token{}, l.errorf(start, "invalid hexadecimal integer: %s", text)
		}
		return ast.Token{Kind: ast.Int, Text: text, IntVal: ui, Base: 16, Pos: l.pos(start)}, nil

	case containsAny(text, ".eE") && text != ".":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return ast.Token{}, l.errorf(start, "invalid float literal: %s", text)
		}
		return ast.Token{Kind: ast.Float, Text: text, FloatVal: f, Pos: l.pos(start)}, nil

	default:
		ui, err := strconv.ParseUint(text, 0, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				f, ferr := strconv.ParseFloat(text, 64)
				if ferr == nil {
					return ast.Token{Kind: ast.Float, Text: text, FloatVal: f, Pos: l.pos(start)}, nil
				}
			}
			return ast.Token{}, l.errorf(start, "invalid integer literal: %s", text)
		}
		base := 10
		if len(text) > 1 && text[0] == '0' {
			base = 8
		}
		return ast.Token{Kind: ast.Int, Text: text, IntVal: ui, Base: base, Pos: l.pos(start)}, nil
	}
}

func containsAny(s string, chars string) bool {
	for _, c := range s {
		for _, want := range chars {
			if c == want {
				return true
			}
		}
	}
	return false
}

func (l *Lexer) lexString(start int, quote rune) (ast.Token, error) {
	var buf bytes.Buffer
	for {
		c, _, err := l.input.readRune()
		if err != nil {
			return ast.Token{}, l.errorf(start, "unexpected EOF in string literal")
		}
		if c == '\n' {
			return ast.Token{}, l.errorf(start, "encountered end-of-line before end of string literal")
		}
		if c == quote {
			break
		}
		if c == 0 {
			return ast.Token{}, l.errorf(start, "null character not allowed in string literal")
		}
		if c != '\\' {
			buf.WriteRune(c)
			continue
		}
		if err := l.lexEscape(&buf); err != nil {
			return ast.Token{}, l.errorf(start, "%v", err)
		}
	}
	return ast.Token{Kind: ast.String, Text: buf.String(), Pos: l.pos(start)}, nil
}

func (l *Lexer) lexEscape(buf *bytes.Buffer) error {
	c, _, err := l.input.readRune()
	if err != nil {
		return errors.New("unexpected EOF in escape sequence")
	}
	switch c {
	case 'x', 'X':
		return l.lexHexEscape(buf)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		return l.lexOctalEscape(buf, c)
	case 'u':
		return l.lexUnicodeEscape(buf, 4)
	case 'U':
		return l.lexUnicodeEscape(buf, 8)
	case 'a':
		buf.WriteByte('\a')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'v':
		buf.WriteByte('\v')
	case '\\', '\'', '"', '?':
		buf.WriteByte(byte(c))
	default:
		return fmt.Errorf("invalid escape sequence: \\%c", c)
	}
	return nil
}

func (l *Lexer) lexHexEscape(buf *bytes.Buffer) error {
	c1, _, err := l.input.readRune()
	if err != nil {
		return errors.New("unexpected EOF in hex escape")
	}
	hex := string(c1)
	if c2, sz2, err2 := l.input.readRune(); err2 == nil {
		if isHexDigit(c2) {
			hex += string(c2)
		} else {
			l.input.unreadRune(sz2)
		}
	}
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid hex escape: \\x%s", hex)
	}
	buf.WriteByte(byte(v))
	return nil
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (l *Lexer) lexOctalEscape(buf *bytes.Buffer, first rune) error {
	octal := string(first)
	for i := 0; i < 2; i++ {
		c, sz, err := l.input.readRune()
		if err != nil {
			break
		}
		if c < '0' || c > '7' {
			l.input.unreadRune(sz)
			break
		}
		octal += string(c)
	}
	v, err := strconv.ParseInt(octal, 8, 32)
	if err != nil || v > 0xff {
		return fmt.Errorf("invalid octal escape: \\%s", octal)
	}
	buf.WriteByte(byte(v))
	return nil
}

func (l *Lexer) lexUnicodeEscape(buf *bytes.Buffer, digits int) error {
	runes := make([]rune, digits)
	for i := range runes {
		c, _, err := l.input.readRune()
		if err != nil {
			return errors.New("unexpected EOF in unicode escape")
		}
		runes[i] = c
	}
	v, err := strconv.ParseInt(string(runes), 16, 32)
	if err != nil || v < 0 || v > 0x10ffff {
		return fmt.Errorf("invalid unicode escape: \\u%s", string(runes))
	}
	buf.WriteRune(rune(v))
	return nil
}

func (l *Lexer) skipLineComment() {
	for {
		c, _, err := l.input.readRune()
		if err != nil {
			return
		}
		if c == '\n' {
			l.info.AddLine(l.input.offset())
			return
		}
	}
}

func (l *Lexer) skipBlockComment() bool {
	for {
		c, _, err := l.input.readRune()
		if err != nil {
			return false
		}
		if c == '\n' {
			l.info.AddLine(l.input.offset())
		}
		if c == '*' {
			c2, sz2, err2 := l.input.readRune()
			if err2 != nil {
				return false
			}
			if c2 == '/' {
				return true
			}
			l.input.unreadRune(sz2)
		}
	}
}
