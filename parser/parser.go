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

// Package parser implements a recursive-descent parser for the protobuf
// interface definition language, producing the flat ast.File tree that
// package linker resolves and validates.
package parser

import (
	"math"
	"strings"

	"github.com/protospec/pbgen/ast"
	"github.com/protospec/pbgen/reporter"
)

// Parser turns one .proto source file into an *ast.File. A single parse
// collects as many syntax errors as it can before giving up on a
// declaration, resynchronizing at the next ';' or '}' at the same nesting
// depth, so that one typo doesn't hide every other mistake in the file.
type Parser struct {
	lex      *Lexer
	handler  *reporter.Handler
	filename string

	cur ast.Token
}

// NewParser creates a Parser over data, reporting diagnostics through
// handler.
func NewParser(filename string, data []byte, handler *reporter.Handler) *Parser {
	p := &Parser{lex: NewLexer(filename, data, handler), handler: handler, filename: filename}
	p.advance()
	return p
}

// FileInfo returns the source file's line/offset table.
func (p *Parser) FileInfo() *ast.FileInfo { return p.lex.FileInfo() }

func (p *Parser) advance() {
	for {
		tok, err := p.lex.Next()
		if err != nil {
			// The lexer has already reported this error; skip past the bad
			// token and keep scanning so the parser can still find a
			// resync point.
			continue
		}
		p.cur = tok
		return
	}
}

func (p *Parser) errorf(pos ast.SourcePos, format string, args ...any) {
	_ = p.handler.HandleError(reporter.Errorf(pos, format, args...))
}

func (p *Parser) atEOF() bool { return p.cur.Kind == ast.EOF }

func (p *Parser) isPunct(r rune) bool { return p.cur.Kind == ast.Punct && p.cur.Rune == r }

func (p *Parser) isKeyword(kw string) bool { return p.cur.Kind == ast.Ident && p.cur.Text == kw }

// expectPunct consumes the current token if it is punctuation r, reporting
// an error and leaving the cursor in place otherwise.
func (p *Parser) expectPunct(r rune) bool {
	if p.isPunct(r) {
		p.advance()
		return true
	}
	p.errorf(p.cur.Pos, "expected %q, found %s", string(r), describeTok(p.cur))
	return false
}

func describeTok(t ast.Token) string {
	if t.Kind == ast.EOF {
		return "end of file"
	}
	return t.String()
}

// expectIdent consumes and returns the current token's text if it is an
// identifier (keyword or name).
func (p *Parser) expectIdent() (string, ast.SourcePos, bool) {
	if p.cur.Kind == ast.Ident {
		text, pos := p.cur.Text, p.cur.Pos
		p.advance()
		return text, pos, true
	}
	p.errorf(p.cur.Pos, "expected identifier, found %s", describeTok(p.cur))
	return "", p.cur.Pos, false
}

func (p *Parser) expectInt() (int64, bool) {
	neg := false
	if p.isPunct('-') {
		neg = true
		p.advance()
	}
	if p.cur.Kind != ast.Int {
		p.errorf(p.cur.Pos, "expected integer literal, found %s", describeTok(p.cur))
		return 0, false
	}
	v := int64(p.cur.IntVal)
	if neg {
		v = -v
	}
	p.advance()
	return v, true
}

func (p *Parser) expectString() (string, ast.SourcePos, bool) {
	if p.cur.Kind != ast.String {
		p.errorf(p.cur.Pos, "expected string literal, found %s", describeTok(p.cur))
		return "", p.cur.Pos, false
	}
	s, pos := p.cur.Text, p.cur.Pos
	p.advance()
	return s, pos, true
}

// resync discards tokens until it finds a ';' at the call site's own
// nesting level (consumed) or a '}' at that level (left for the enclosing
// body loop to consume), so a later declaration or member can still be
// parsed after an error in an earlier one. Braces opened during the scan
// itself nest normally and don't count toward the call site's level.
func (p *Parser) resync() {
	depth := 0
	for {
		switch {
		case p.atEOF():
			return
		case p.isPunct(';'):
			p.advance()
			if depth == 0 {
				return
			}
		case p.isPunct('{'):
			depth++
			p.advance()
		case p.isPunct('}'):
			if depth == 0 {
				return
			}
			depth--
			p.advance()
		default:
			p.advance()
		}
	}
}

// ParseFile consumes the entire token stream and returns the resulting
// AST. Errors are reported through the Parser's handler as they are
// found; ParseFile itself never returns an error, so callers should check
// handler.Error() (or inspect a Collector) afterward.
func (p *Parser) ParseFile() *ast.File {
	f := &ast.File{Name: p.filename, Syntax: ast.Proto2}
	sawSyntax := false

	for !p.atEOF() {
		switch {
		case p.isPunct(';'):
			p.advance()

		case p.isKeyword("syntax"):
			pos := p.cur.Pos
			p.advance()
			if !p.expectPunct('=') {
				p.resync()
				continue
			}
			s, _, ok := p.expectString()
			if !ok {
				p.resync()
				continue
			}
			if !p.expectPunct(';') {
				p.resync()
			}
			switch s {
			case "proto2":
				f.Syntax = ast.Proto2
			case "proto3":
				f.Syntax = ast.Proto3
			default:
				p.errorf(pos, "unrecognized syntax %q: must be \"proto2\" or \"proto3\"", s)
			}
			f.SyntaxPos = pos
			sawSyntax = true

		case p.isKeyword("package"):
			p.advance()
			pos := p.cur.Pos
			name, ok := p.parseFullIdent()
			if !ok {
				p.resync()
				continue
			}
			if !p.expectPunct(';') {
				p.resync()
			}
			f.Package = name
			f.PackagePos = pos

		case p.isKeyword("import"):
			imp, ok := p.parseImport()
			if ok {
				f.Imports = append(f.Imports, imp)
			} else {
				p.resync()
			}

		case p.isKeyword("option"):
			opt, ok := p.parseOptionStatement()
			if ok {
				f.Options = append(f.Options, opt)
			} else {
				p.resync()
			}

		case p.isKeyword("message"):
			if m, ok := p.parseMessage(); ok {
				f.Messages = append(f.Messages, m)
			} else {
				p.resync()
			}

		case p.isKeyword("enum"):
			if e, ok := p.parseEnum(); ok {
				f.Enums = append(f.Enums, e)
			} else {
				p.resync()
			}

		case p.isKeyword("service"):
			if s, ok := p.parseService(); ok {
				f.Services = append(f.Services, s)
			} else {
				p.resync()
			}

		case p.isKeyword("extend"):
			if ex, ok := p.parseExtend(); ok {
				f.Extends = append(f.Extends, ex)
			} else {
				p.resync()
			}

		default:
			p.errorf(p.cur.Pos, "unexpected %s at top level", describeTok(p.cur))
			p.resync()
		}
	}

	if !sawSyntax {
		p.handler.HandleWarning(ast.UnknownPos(p.filename), ErrNoSyntax)
	}
	return f
}

func (p *Parser) parseFullIdent() (string, bool) {
	var b strings.Builder
	name, _, ok := p.expectIdent()
	if !ok {
		return "", false
	}
	b.WriteString(name)
	for p.isPunct('.') {
		p.advance()
		name, _, ok := p.expectIdent()
		if !ok {
			return "", false
		}
		b.WriteByte('.')
		b.WriteString(name)
	}
	return b.String(), true
}

func (p *Parser) parseImport() (ast.Import, bool) {
	pos := p.cur.Pos
	p.advance() // "import"
	var imp ast.Import
	imp.Pos = pos
	if p.isKeyword("weak") {
		imp.Weak = true
		p.advance()
	} else if p.isKeyword("public") {
		imp.Public = true
		p.advance()
	}
	path, _, ok := p.expectString()
	if !ok {
		return imp, false
	}
	imp.Path = path
	if !p.expectPunct(';') {
		return imp, false
	}
	return imp, true
}

// parseTypeRef parses a scalar keyword or a (possibly dotted, possibly
// leading-dot) type name.
func (p *Parser) parseTypeRef() (ast.TypeRef, bool) {
	pos := p.cur.Pos
	if p.cur.Kind == ast.Ident {
		if k := ast.ScalarKindByName(p.cur.Text); k != ast.NotScalar {
			p.advance()
			return ast.TypeRef{Scalar: k, Pos: pos}, true
		}
	}
	var b strings.Builder
	if p.isPunct('.') {
		b.WriteByte('.')
		p.advance()
	}
	name, ok := p.parseFullIdent()
	if !ok {
		return ast.TypeRef{}, false
	}
	b.WriteString(name)
	return ast.TypeRef{Named: b.String(), Pos: pos}, true
}

// parseOptionName parses a dotted option name, where each segment may be
// a plain identifier or a parenthesized extension name.
func (p *Parser) parseOptionName() ([]ast.Part, bool) {
	var parts []ast.Part
	for {
		pos := p.cur.Pos
		if p.isPunct('(') {
			p.advance()
			name, ok := p.parseFullIdent()
			if !ok {
				return nil, false
			}
			if !p.expectPunct(')') {
				return nil, false
			}
			parts = append(parts, ast.Part{Name: name, Extension: true, Pos: pos})
		} else {
			name, namePos, ok := p.expectIdent()
			if !ok {
				return nil, false
			}
			parts = append(parts, ast.Part{Name: name, Pos: namePos})
		}
		if p.isPunct('.') {
			p.advance()
			continue
		}
		return parts, true
	}
}

func (p *Parser) parseOptionStatement() (ast.Option, bool) {
	pos := p.cur.Pos
	p.advance() // "option"
	parts, ok := p.parseOptionName()
	if !ok {
		return ast.Option{}, false
	}
	if !p.expectPunct('=') {
		return ast.Option{}, false
	}
	val, ok := p.parseConstant()
	if !ok {
		return ast.Option{}, false
	}
	if !p.expectPunct(';') {
		return ast.Option{}, false
	}
	return ast.Option{Name: parts, Value: val, Pos: pos}, true
}

// parseFieldOptions parses the bracketed `[ name = value, ... ]` suffix
// that may follow a field, map field, enum value, or extensions
// declaration.
func (p *Parser) parseFieldOptions() ([]ast.Option, bool) {
	if !p.isPunct('[') {
		return nil, true
	}
	p.advance()
	var opts []ast.Option
	for {
		pos := p.cur.Pos
		parts, ok := p.parseOptionName()
		if !ok {
			return nil, false
		}
		if !p.expectPunct('=') {
			return nil, false
		}
		val, ok := p.parseConstant()
		if !ok {
			return nil, false
		}
		opts = append(opts, ast.Option{Name: parts, Value: val, Pos: pos})
		if p.isPunct(',') {
			p.advance()
			continue
		}
		break
	}
	if !p.expectPunct(']') {
		return nil, false
	}
	return opts, true
}

func (p *Parser) parseConstant() (ast.Constant, bool) {
	pos := p.cur.Pos
	switch {
	case p.isPunct('-') || p.isPunct('+'):
		neg := p.isPunct('-')
		p.advance()
		if p.cur.Kind == ast.Int {
			v := int64(p.cur.IntVal)
			if neg {
				v = -v
			}
			p.advance()
			return ast.Constant{Kind: ast.ConstInt, Int: v, Pos: pos}, true
		}
		if p.cur.Kind == ast.Float {
			v := p.cur.FloatVal
			if neg {
				v = -v
			}
			p.advance()
			return ast.Constant{Kind: ast.ConstFloat, Float: v, Pos: pos}, true
		}
		if p.isKeyword("inf") {
			p.advance()
			v := math.Inf(1)
			if neg {
				v = math.Inf(-1)
			}
			return ast.Constant{Kind: ast.ConstFloat, Float: v, Pos: pos}, true
		}
		p.errorf(pos, "expected number after sign, found %s", describeTok(p.cur))
		return ast.Constant{}, false

	case p.cur.Kind == ast.Int:
		v := p.cur.IntVal
		p.advance()
		if v > math.MaxInt64 {
			return ast.Constant{Kind: ast.ConstUInt, UInt: v, Pos: pos}, true
		}
		return ast.Constant{Kind: ast.ConstInt, Int: int64(v), Pos: pos}, true

	case p.cur.Kind == ast.Float:
		v := p.cur.FloatVal
		p.advance()
		return ast.Constant{Kind: ast.ConstFloat, Float: v, Pos: pos}, true

	case p.cur.Kind == ast.String:
		v := p.cur.Text
		p.advance()
		// Adjacent string literals concatenate, as in C.
		for p.cur.Kind == ast.String {
			v += p.cur.Text
			p.advance()
		}
		return ast.Constant{Kind: ast.ConstString, Str: v, Pos: pos}, true

	case p.isKeyword("true"):
		p.advance()
		return ast.Constant{Kind: ast.ConstBool, Bool: true, Pos: pos}, true

	case p.isKeyword("false"):
		p.advance()
		return ast.Constant{Kind: ast.ConstBool, Bool: false, Pos: pos}, true

	case p.isKeyword("inf"):
		p.advance()
		return ast.Constant{Kind: ast.ConstFloat, Float: math.Inf(1), Pos: pos}, true

	case p.isKeyword("nan"):
		p.advance()
		return ast.Constant{Kind: ast.ConstFloat, Float: math.NaN(), Pos: pos}, true

	case p.cur.Kind == ast.Ident:
		name, _, _ := p.expectIdent()
		return ast.Constant{Kind: ast.ConstIdent, Ident: name, Pos: pos}, true

	case p.isPunct('{'):
		text, ok := p.parseAggregate()
		if !ok {
			return ast.Constant{}, false
		}
		return ast.Constant{Kind: ast.ConstAggregate, Aggregate: text, Pos: pos}, true

	default:
		p.errorf(pos, "expected option value, found %s", describeTok(p.cur))
		return ast.Constant{}, false
	}
}

// parseAggregate consumes a brace-delimited message-literal option value
// verbatim, tracking nesting depth; the linker does not interpret
// aggregate option values structurally, matching spec.md's scope.
func (p *Parser) parseAggregate() (string, bool) {
	var b strings.Builder
	depth := 0
	for {
		if p.atEOF() {
			p.errorf(p.cur.Pos, "unterminated aggregate value, unexpected end of file")
			return "", false
		}
		if p.isPunct('{') {
			depth++
		} else if p.isPunct('}') {
			depth--
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.cur.Text)
		done := depth == 0
		p.advance()
		if done {
			return b.String(), true
		}
	}
}

// parseNumberRanges parses a comma-separated list of `N`, `N to M`, or
// `N to max` ranges, as used by `reserved` and `extensions`.
func (p *Parser) parseNumberRanges() ([]ast.NumberRange, bool) {
	var ranges []ast.NumberRange
	for {
		pos := p.cur.Pos
		start, ok := p.expectInt()
		if !ok {
			return nil, false
		}
		end := start
		if p.isKeyword("to") {
			p.advance()
			if p.isKeyword("max") {
				p.advance()
				end = math.MaxInt32
			} else {
				end, ok = p.expectInt()
				if !ok {
					return nil, false
				}
			}
		}
		ranges = append(ranges, ast.NumberRange{Start: int32(start), End: int32(end), Pos: pos})
		if p.isPunct(',') {
			p.advance()
			continue
		}
		return ranges, true
	}
}

func (p *Parser) parseReserved() (ast.Reserved, bool) {
	pos := p.cur.Pos
	p.advance() // "reserved"
	var r ast.Reserved
	r.Pos = pos
	if p.cur.Kind == ast.String {
		for {
			s, _, ok := p.expectString()
			if !ok {
				return r, false
			}
			r.Names = append(r.Names, s)
			if p.isPunct(',') {
				p.advance()
				continue
			}
			break
		}
	} else {
		ranges, ok := p.parseNumberRanges()
		if !ok {
			return r, false
		}
		r.Ranges = ranges
	}
	if !p.expectPunct(';') {
		return r, false
	}
	return r, true
}

func (p *Parser) parseLabel() ast.Label {
	switch {
	case p.isKeyword("repeated"):
		p.advance()
		return ast.LabelRepeated
	case p.isKeyword("optional"):
		p.advance()
		return ast.LabelOptional
	case p.isKeyword("required"):
		p.advance()
		return ast.LabelRequired
	default:
		return ast.LabelNone
	}
}

// parseMessage parses a message definition including its nested
// declarations.
func (p *Parser) parseMessage() (ast.Message, bool) {
	pos := p.cur.Pos
	p.advance() // "message"
	name, namePos, ok := p.expectIdent()
	if !ok {
		return ast.Message{}, false
	}
	m := ast.Message{Name: name, Pos: pos, NamePos: namePos}
	if !p.expectPunct('{') {
		return m, false
	}
	ok = p.parseMessageBody(&m)
	return m, ok
}

// parseMessageBody parses a message's members, assuming the opening '{'
// has already been consumed, through and including the closing '}'. It
// is shared between ordinary message definitions and the synthetic
// message a proto2 group field's body lowers to.
func (p *Parser) parseMessageBody(m *ast.Message) bool {
	for !p.isPunct('}') && !p.atEOF() {
		switch {
		case p.isPunct(';'):
			p.advance()
		case p.isKeyword("message"):
			if nested, ok := p.parseMessage(); ok {
				m.Nested = append(m.Nested, nested)
			} else {
				p.resync()
			}
		case p.isKeyword("enum"):
			if e, ok := p.parseEnum(); ok {
				m.Enums = append(m.Enums, e)
			} else {
				p.resync()
			}
		case p.isKeyword("extend"):
			if ex, ok := p.parseExtend(); ok {
				m.Extends = append(m.Extends, ex)
			} else {
				p.resync()
			}
		case p.isKeyword("oneof"):
			if fields, oneof, ok := p.parseOneof(); ok {
				idx := len(m.Oneofs)
				m.Oneofs = append(m.Oneofs, oneof)
				for i := range fields {
					fields[i].OneofIndex = idx
				}
				m.Fields = append(m.Fields, fields...)
			} else {
				p.resync()
			}
		case p.isKeyword("map"):
			if mf, ok := p.parseMapField(); ok {
				m.MapFields = append(m.MapFields, mf)
			} else {
				p.resync()
			}
		case p.isKeyword("reserved"):
			if r, ok := p.parseReserved(); ok {
				m.Reserved = append(m.Reserved, r)
			} else {
				p.resync()
			}
		case p.isKeyword("extensions"):
			ranges, opts, ok := p.parseExtensions()
			if ok {
				m.ExtensionRanges = append(m.ExtensionRanges, ranges...)
				m.ExtensionOptions = append(m.ExtensionOptions, opts...)
			} else {
				p.resync()
			}
		case p.isKeyword("option"):
			if opt, ok := p.parseOptionStatement(); ok {
				m.Options = append(m.Options, opt)
			} else {
				p.resync()
			}
		default:
			field, group, ok := p.parseField()
			if !ok {
				p.resync()
				continue
			}
			m.Fields = append(m.Fields, field)
			if group != nil {
				m.Nested = append(m.Nested, *group)
			}
		}
	}
	return p.expectPunct('}')
}

func (p *Parser) parseExtensions() ([]ast.NumberRange, []ast.Option, bool) {
	p.advance() // "extensions"
	ranges, ok := p.parseNumberRanges()
	if !ok {
		return nil, nil, false
	}
	opts, ok := p.parseFieldOptions()
	if !ok {
		return nil, nil, false
	}
	if !p.expectPunct(';') {
		return nil, nil, false
	}
	return ranges, opts, true
}

// parseField parses an ordinary field declaration, including the proto2
// `group` form. A group field's body is a nested message, returned
// separately so the caller can add it to the enclosing message's Nested
// list; the field itself just references it by name with Group set.
func (p *Parser) parseField() (ast.Field, *ast.Message, bool) {
	pos := p.cur.Pos
	label := p.parseLabel()

	if p.isKeyword("group") {
		p.advance()
		name, namePos, ok := p.expectIdent()
		if !ok {
			return ast.Field{}, nil, false
		}
		if !p.expectPunct('=') {
			return ast.Field{}, nil, false
		}
		numPos := p.cur.Pos
		num, ok := p.expectInt()
		if !ok {
			return ast.Field{}, nil, false
		}
		if !p.expectPunct('{') {
			return ast.Field{}, nil, false
		}
		group := ast.Message{Name: name, Pos: pos, NamePos: namePos}
		if !p.parseMessageBody(&group) {
			return ast.Field{}, nil, false
		}
		f := ast.Field{
			Name: strings.ToLower(name), Number: int32(num), Label: label,
			Type: ast.TypeRef{Named: name, Pos: namePos}, Group: true,
			Pos: pos, NamePos: namePos, NumberPos: numPos, OneofIndex: -1,
		}
		return f, &group, true
	}

	typ, ok := p.parseTypeRef()
	if !ok {
		return ast.Field{}, nil, false
	}
	name, namePos, ok := p.expectIdent()
	if !ok {
		return ast.Field{}, nil, false
	}
	if !p.expectPunct('=') {
		return ast.Field{}, nil, false
	}
	numPos := p.cur.Pos
	num, ok := p.expectInt()
	if !ok {
		return ast.Field{}, nil, false
	}
	opts, ok := p.parseFieldOptions()
	if !ok {
		return ast.Field{}, nil, false
	}
	if !p.expectPunct(';') {
		return ast.Field{}, nil, false
	}
	return ast.Field{
		Name: name, Number: int32(num), Label: label, Type: typ, Options: opts,
		Pos: pos, NamePos: namePos, NumberPos: numPos, OneofIndex: -1,
	}, nil, true
}

func (p *Parser) parseMapField() (ast.MapField, bool) {
	pos := p.cur.Pos
	p.advance() // "map"
	if !p.expectPunct('<') {
		return ast.MapField{}, false
	}
	keyType, ok := p.parseTypeRef()
	if !ok {
		return ast.MapField{}, false
	}
	if !p.expectPunct(',') {
		return ast.MapField{}, false
	}
	valType, ok := p.parseTypeRef()
	if !ok {
		return ast.MapField{}, false
	}
	if !p.expectPunct('>') {
		return ast.MapField{}, false
	}
	name, _, ok := p.expectIdent()
	if !ok {
		return ast.MapField{}, false
	}
	if !p.expectPunct('=') {
		return ast.MapField{}, false
	}
	num, ok := p.expectInt()
	if !ok {
		return ast.MapField{}, false
	}
	opts, ok := p.parseFieldOptions()
	if !ok {
		return ast.MapField{}, false
	}
	if !p.expectPunct(';') {
		return ast.MapField{}, false
	}
	return ast.MapField{
		Name: name, Number: int32(num), KeyType: keyType, ValueType: valType,
		Options: opts, Pos: pos,
	}, true
}

// parseOneof returns the oneof's member fields (OneofIndex left
// unassigned; the caller fills it in) along with the Oneof record itself.
func (p *Parser) parseOneof() ([]ast.Field, ast.Oneof, bool) {
	pos := p.cur.Pos
	p.advance() // "oneof"
	name, _, ok := p.expectIdent()
	if !ok {
		return nil, ast.Oneof{}, false
	}
	oneof := ast.Oneof{Name: name, Pos: pos}
	if !p.expectPunct('{') {
		return nil, oneof, false
	}
	var fields []ast.Field
	for !p.isPunct('}') && !p.atEOF() {
		switch {
		case p.isPunct(';'):
			p.advance()
		case p.isKeyword("option"):
			if opt, ok := p.parseOptionStatement(); ok {
				oneof.Options = append(oneof.Options, opt)
			} else {
				p.resync()
			}
		default:
			fpos := p.cur.Pos
			if p.isKeyword("required") || p.isKeyword("optional") || p.isKeyword("repeated") {
				p.errorf(fpos, "oneof field may not have a label (%q); oneof members are optional by nature", p.cur.Text)
				p.advance()
			}
			typ, ok := p.parseTypeRef()
			if !ok {
				p.resync()
				continue
			}
			fname, fnamePos, ok := p.expectIdent()
			if !ok {
				p.resync()
				continue
			}
			if !p.expectPunct('=') {
				p.resync()
				continue
			}
			numPos := p.cur.Pos
			num, ok := p.expectInt()
			if !ok {
				p.resync()
				continue
			}
			opts, ok := p.parseFieldOptions()
			if !ok {
				p.resync()
				continue
			}
			if !p.expectPunct(';') {
				p.resync()
				continue
			}
			fields = append(fields, ast.Field{
				Name: fname, Number: int32(num), Type: typ, Options: opts,
				Pos: fpos, NamePos: fnamePos, NumberPos: numPos,
			})
		}
	}
	if !p.expectPunct('}') {
		return fields, oneof, false
	}
	return fields, oneof, true
}

func (p *Parser) parseExtend() (ast.Extend, bool) {
	pos := p.cur.Pos
	p.advance() // "extend"
	typ, ok := p.parseTypeRef()
	if !ok {
		return ast.Extend{}, false
	}
	ex := ast.Extend{Extendee: typ, Pos: pos}
	if !p.expectPunct('{') {
		return ex, false
	}
	for !p.isPunct('}') && !p.atEOF() {
		if p.isPunct(';') {
			p.advance()
			continue
		}
		if field, _, ok := p.parseField(); ok {
			ex.Fields = append(ex.Fields, field)
		} else {
			p.resync()
		}
	}
	if !p.expectPunct('}') {
		return ex, false
	}
	return ex, true
}

func (p *Parser) parseEnum() (ast.Enum, bool) {
	pos := p.cur.Pos
	p.advance() // "enum"
	name, namePos, ok := p.expectIdent()
	if !ok {
		return ast.Enum{}, false
	}
	e := ast.Enum{Name: name, Pos: pos, NamePos: namePos}
	if !p.expectPunct('{') {
		return e, false
	}
	for !p.isPunct('}') && !p.atEOF() {
		switch {
		case p.isPunct(';'):
			p.advance()
		case p.isKeyword("option"):
			opt, ok := p.parseOptionStatement()
			if !ok {
				p.resync()
				continue
			}
			if isAllowAliasOption(opt) {
				e.AllowAlias = opt.Value.Bool
			}
			e.Options = append(e.Options, opt)
		case p.isKeyword("reserved"):
			if r, ok := p.parseReserved(); ok {
				e.Reserved = append(e.Reserved, r)
			} else {
				p.resync()
			}
		default:
			vpos := p.cur.Pos
			vname, vnamePos, ok := p.expectIdent()
			if !ok {
				p.resync()
				continue
			}
			if !p.expectPunct('=') {
				p.resync()
				continue
			}
			num, ok := p.expectInt()
			if !ok {
				p.resync()
				continue
			}
			opts, ok := p.parseFieldOptions()
			if !ok {
				p.resync()
				continue
			}
			if !p.expectPunct(';') {
				p.resync()
				continue
			}
			_ = vnamePos
			e.Values = append(e.Values, ast.EnumValue{
				Name: vname, Number: int32(num), Options: opts, Pos: vpos,
			})
		}
	}
	if !p.expectPunct('}') {
		return e, false
	}
	return e, true
}

func isAllowAliasOption(opt ast.Option) bool {
	return len(opt.Name) == 1 && opt.Name[0].Name == "allow_alias" && opt.Value.Kind == ast.ConstBool
}

func (p *Parser) parseService() (ast.Service, bool) {
	pos := p.cur.Pos
	p.advance() // "service"
	name, _, ok := p.expectIdent()
	if !ok {
		return ast.Service{}, false
	}
	s := ast.Service{Name: name, Pos: pos}
	if !p.expectPunct('{') {
		return s, false
	}
	for !p.isPunct('}') && !p.atEOF() {
		switch {
		case p.isPunct(';'):
			p.advance()
		case p.isKeyword("option"):
			if opt, ok := p.parseOptionStatement(); ok {
				s.Options = append(s.Options, opt)
			} else {
				p.resync()
			}
		case p.isKeyword("rpc"):
			if m, ok := p.parseMethod(); ok {
				s.Methods = append(s.Methods, m)
			} else {
				p.resync()
			}
		default:
			p.errorf(p.cur.Pos, "expected \"rpc\" or \"option\", found %s", describeTok(p.cur))
			p.resync()
		}
	}
	if !p.expectPunct('}') {
		return s, false
	}
	return s, true
}

func (p *Parser) parseMethod() (ast.Method, bool) {
	pos := p.cur.Pos
	p.advance() // "rpc"
	name, _, ok := p.expectIdent()
	if !ok {
		return ast.Method{}, false
	}
	m := ast.Method{Name: name, Pos: pos}
	if !p.expectPunct('(') {
		return m, false
	}
	if p.isKeyword("stream") {
		m.ClientStreaming = true
		p.advance()
	}
	in, ok := p.parseTypeRef()
	if !ok {
		return m, false
	}
	m.InputType = in
	if !p.expectPunct(')') {
		return m, false
	}
	if !p.isKeyword("returns") {
		p.errorf(p.cur.Pos, "expected \"returns\", found %s", describeTok(p.cur))
		return m, false
	}
	p.advance()
	if !p.expectPunct('(') {
		return m, false
	}
	if p.isKeyword("stream") {
		m.ServerStreaming = true
		p.advance()
	}
	out, ok := p.parseTypeRef()
	if !ok {
		return m, false
	}
	m.OutputType = out
	if !p.expectPunct(')') {
		return m, false
	}
	if p.isPunct('{') {
		p.advance()
		for !p.isPunct('}') && !p.atEOF() {
			if p.isPunct(';') {
				p.advance()
				continue
			}
			if opt, ok := p.parseOptionStatement(); ok {
				m.Options = append(m.Options, opt)
			} else {
				p.resync()
			}
		}
		if !p.expectPunct('}') {
			return m, false
		}
		return m, true
	}
	if !p.expectPunct(';') {
		return m, false
	}
	return m, true
}
