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

package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/protospec/pbgen/ast"
	"github.com/protospec/pbgen/parser"
	"github.com/protospec/pbgen/reporter"
)

func parseFile(t *testing.T, src string) (*ast.File, *reporter.Collector) {
	t.Helper()
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(src), h)
	f := p.ParseFile()
	return f, &c
}

func TestParseBasicMessage(t *testing.T) {
	f, c := parseFile(t, `
syntax = "proto3";
package foo.bar;

message Person {
  string name = 1;
  int32 age = 2;
  repeated string tags = 3 [deprecated = true];
}
`)
	require.False(t, c.HasErrors(), c.Strings())
	require.Equal(t, ast.Proto3, f.Syntax)
	require.Equal(t, "foo.bar", f.Package)
	require.Len(t, f.Messages, 1)
	m := f.Messages[0]
	require.Equal(t, "Person", m.Name)
	require.Len(t, m.Fields, 3)
	require.Equal(t, "name", m.Fields[0].Name)
	require.Equal(t, ast.String, m.Fields[0].Type.Scalar)
	require.Equal(t, ast.LabelRepeated, m.Fields[2].Label)
	require.Len(t, m.Fields[2].Options, 1)
}

func TestParseOneofAndMap(t *testing.T) {
	f, c := parseFile(t, `
syntax = "proto3";
message M {
  oneof kind {
    string a = 1;
    int32 b = 2;
  }
  map<string, int32> counts = 3;
}
`)
	require.False(t, c.HasErrors(), c.Strings())
	m := f.Messages[0]
	require.Len(t, m.Oneofs, 1)
	require.Len(t, m.Fields, 2)
	require.Equal(t, 0, m.Fields[0].OneofIndex)
	require.Equal(t, 0, m.Fields[1].OneofIndex)
	require.Len(t, m.MapFields, 1)
	require.Equal(t, ast.Int32, m.MapFields[0].ValueType.Scalar)
}

func TestParseEnumAllowAlias(t *testing.T) {
	f, c := parseFile(t, `
syntax = "proto3";
enum Status {
  option allow_alias = true;
  UNKNOWN = 0;
  OK = 1;
  DONE = 1;
}
`)
	require.False(t, c.HasErrors(), c.Strings())
	e := f.Enums[0]
	require.True(t, e.AllowAlias)
	require.Len(t, e.Values, 3)
}

func TestParseServiceStreaming(t *testing.T) {
	f, c := parseFile(t, `
syntax = "proto3";
service Chat {
  rpc Send(stream Message) returns (stream Message);
}
message Message { string text = 1; }
`)
	require.False(t, c.HasErrors(), c.Strings())
	require.Len(t, f.Services, 1)
	m := f.Services[0].Methods[0]
	require.True(t, m.ClientStreaming)
	require.True(t, m.ServerStreaming)
}

func TestParseReservedAndExtensions(t *testing.T) {
	f, c := parseFile(t, `
syntax = "proto2";
message M {
  reserved 2, 9 to 11;
  reserved "foo", "bar";
  extensions 100 to max;
  optional int32 x = 1;
}
`)
	require.False(t, c.HasErrors(), c.Strings())
	m := f.Messages[0]
	require.Len(t, m.Reserved, 2)
	require.Len(t, m.Reserved[0].Ranges, 2)
	require.Len(t, m.Reserved[1].Names, 2)
	require.Len(t, m.ExtensionRanges, 1)
	require.Equal(t, int32(1<<31-1), m.ExtensionRanges[0].End)
}

func TestParseGroupField(t *testing.T) {
	f, c := parseFile(t, `
syntax = "proto2";
message M {
  optional group Detail = 3 {
    optional string text = 1;
  }
}
`)
	require.False(t, c.HasErrors(), c.Strings())
	m := f.Messages[0]
	require.Len(t, m.Fields, 1)
	require.True(t, m.Fields[0].Group)
	require.Equal(t, "detail", m.Fields[0].Name)
	require.Equal(t, int32(3), m.Fields[0].Number)
	require.Len(t, m.Nested, 1)
	require.Equal(t, "Detail", m.Nested[0].Name)
	require.Len(t, m.Nested[0].Fields, 1)
	require.Equal(t, "text", m.Nested[0].Fields[0].Name)
}

func TestParseErrorRecoveryContinuesToNextDeclaration(t *testing.T) {
	// The malformed first message is missing its field's terminating
	// semicolon; the parser should still recover in time to find the
	// second, valid message.
	f, c := parseFile(t, `
syntax = "proto3";
message Bad {
  string name = 1
}
message Good {
  int32 id = 1;
}
`)
	require.True(t, c.HasErrors())
	require.Len(t, f.Messages, 2)
	require.Equal(t, "Good", f.Messages[1].Name)
}

func TestParseOneofMemberWithLabelIsRejected(t *testing.T) {
	f, c := parseFile(t, `
syntax = "proto2";
message M {
  oneof kind {
    required string a = 1;
    int32 b = 2;
  }
}
`)
	require.True(t, c.HasErrors())
	m := f.Messages[0]
	require.Len(t, m.Oneofs, 1)
	require.Len(t, m.Fields, 2)
	require.Equal(t, "a", m.Fields[0].Name)
	require.Equal(t, ast.LabelNone, m.Fields[0].Label)
}

func TestParseCustomOption(t *testing.T) {
	f, c := parseFile(t, `
syntax = "proto3";
option (my.custom).value = "hi";
message M { string s = 1 [(my.field_opt) = 42]; }
`)
	require.False(t, c.HasErrors(), c.Strings())
	require.Len(t, f.Options, 1)
	require.Equal(t, "my.custom", f.Options[0].Name[0].Name)
	require.True(t, f.Options[0].Name[0].Extension)
	require.Equal(t, "value", f.Options[0].Name[1].Name)
}

// TestParseIsDeterministic re-parses the same source twice and requires the
// resulting ASTs to be identical down to source positions, so a nested
// message/oneof/map shape doesn't silently drift between two otherwise
// equivalent parses (e.g. map iteration order leaking into field order).
func TestParseIsDeterministic(t *testing.T) {
	const src = `
syntax = "proto3";
package demo;

message Outer {
  message Inner {
    string label = 1;
  }
  oneof kind {
    int32 circle_radius = 1;
    Inner detail = 2;
  }
  map<string, int32> counts = 3;
}
`
	f1, c1 := parseFile(t, src)
	require.False(t, c1.HasErrors(), c1.Strings())
	f2, c2 := parseFile(t, src)
	require.False(t, c2.HasErrors(), c2.Strings())

	if diff := cmp.Diff(f1, f2); diff != "" {
		t.Errorf("two parses of the same source produced different ASTs (-first +second):\n%s", diff)
	}
}
