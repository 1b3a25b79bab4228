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

package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protospec/pbgen/codegen"
	"github.com/protospec/pbgen/descriptor"
	"github.com/protospec/pbgen/linker"
	"github.com/protospec/pbgen/parser"
	"github.com/protospec/pbgen/reporter"
)

func linkSource(t *testing.T, src string) *descriptor.File {
	t.Helper()
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(src), h)
	f := p.ParseFile()
	require.False(t, c.HasErrors(), c.Strings())

	var syms linker.Symbols
	df := linker.Link(f, linker.Files{}, &syms, h)
	require.False(t, c.HasErrors(), c.Strings())
	return df
}

func TestGenerateBasicMessageShape(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
package demo;

message Point {
  int32 x = 1;
  int32 y = 2;
  string label = 3;
}
`)
	out, err := codegen.Generate(df)
	require.NoError(t, err)
	src := string(out)

	require.Contains(t, src, "package demo")
	require.Contains(t, src, "type Point struct {")
	require.Contains(t, src, "X       int32")
	require.Contains(t, src, "Y       int32")
	require.Contains(t, src, "Label   string")
	require.Contains(t, src, "func (x *Point) Marshal(limit int) ([]byte, error) {")
	require.Contains(t, src, "func UnmarshalPoint(buf []byte, limit int) (*Point, error) {")
	require.Contains(t, src, "func (x *Point) Size() int {")
	require.Contains(t, src, "func (x *Point) Release() {")
}

func TestGenerateImplicitScalarSkipsZeroValue(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
message Counter {
  int32 count = 1;
}
`)
	out, err := codegen.Generate(df)
	require.NoError(t, err)
	src := string(out)
	require.Contains(t, src, `if x.Count != 0 {`)
	require.Contains(t, src, "w.WriteSignedVarintField(1, int64(x.Count))")
}

func TestGenerateProto3OptionalIsPointer(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
message Config {
  optional bool enabled = 1;
}
`)
	out, err := codegen.Generate(df)
	require.NoError(t, err)
	src := string(out)
	require.Contains(t, src, "Enabled *bool")
	require.Contains(t, src, "if x.Enabled != nil {")
}

func TestGenerateRepeatedPackedNumericField(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
message Series {
  repeated int32 values = 1;
}
`)
	out, err := codegen.Generate(df)
	require.NoError(t, err)
	src := string(out)
	require.Contains(t, src, "Values  []int32")
	require.Contains(t, src, "var packed []byte")
	require.Contains(t, src, "w.WriteLenField(1, packed)")
	require.Contains(t, src, "message.AppendPackedVarint(packed, uint64(v))")
	require.Contains(t, src, "message.PackedVarints(f.Value, func(u uint64) error {")
}

func TestGenerateMapField(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
message Bag {
  map<string, int32> counts = 1;
}
`)
	out, err := codegen.Generate(df)
	require.NoError(t, err)
	src := string(out)
	require.Contains(t, src, "Counts  map[string]int32")
	require.Contains(t, src, "message.EncodeMapEntry(")
	require.Contains(t, src, "message.DecodeMapEntry(f.Value, limit)")
}

func TestGenerateOneofEmitsSealedInterface(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
message Shape {
  oneof kind {
    int32 circle_radius = 1;
    int32 square_side = 2;
  }
}
`)
	out, err := codegen.Generate(df)
	require.NoError(t, err)
	src := string(out)
	require.Contains(t, src, "type isShape_Kind interface {")
	require.Contains(t, src, "Kind    isShape_Kind")
	require.Contains(t, src, "type Shape_CircleRadius struct {")
	require.Contains(t, src, "func (*Shape_CircleRadius) isShape_Kind() {}")
	require.Contains(t, src, "switch v := x.Kind.(type) {")
	require.Contains(t, src, "case *Shape_CircleRadius:")
}

func TestGenerateNestedMessageField(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
message Outer {
  message Inner {
    string label = 1;
  }
  Inner detail = 1;
}
`)
	out, err := codegen.Generate(df)
	require.NoError(t, err)
	src := string(out)
	require.Contains(t, src, "type Outer_Inner struct {")
	require.Contains(t, src, "Detail  *Outer_Inner")
	require.Contains(t, src, "if x.Detail != nil {")
	require.Contains(t, src, ".decodeInto(")
}

func TestGenerateEnumConstants(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
enum Status {
  STATUS_UNKNOWN = 0;
  STATUS_OK = 1;
  STATUS_ERROR = 2;
}
message Report {
  Status status = 1;
}
`)
	out, err := codegen.Generate(df)
	require.NoError(t, err)
	src := string(out)
	require.Contains(t, src, "type Status int32")
	require.Contains(t, src, "Status_StatusUnknown Status = 0")
	require.Contains(t, src, "Status_StatusOk      Status = 1")
	require.Contains(t, src, "Status  Status")
	_ = src
}

func TestGenerateServiceProducesClientAndServer(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
package demo;

message Req { string query = 1; }
message Resp { string result = 1; }

service Lookup {
  rpc Find(Req) returns (Resp);
  rpc Watch(Req) returns (stream Resp);
}
`)
	out, err := codegen.Generate(df)
	require.NoError(t, err)
	src := string(out)
	require.Contains(t, src, "type LookupServer interface {")
	require.Contains(t, src, "Find(ctx rpc.Context, req *Req) (*Resp, error)")
	require.Contains(t, src, "Watch(ctx rpc.Context, req *Req, stream rpc.SendStream[Resp]) error")
	require.Contains(t, src, "type LookupClient struct {")
	require.Contains(t, src, "func (c *LookupClient) Find(ctx rpc.Context, req *Req) (*Resp, error) {")
	require.Contains(t, src, "LookupClient_WatchStream")
	require.Contains(t, src, `FullPath:        "/demo.Lookup/Find"`)
}

func TestGenerateFieldNameCollidingWithGeneratedMethodEscaped(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
message Thing {
  int32 size = 1;
}
`)
	out, err := codegen.Generate(df)
	require.NoError(t, err)
	src := string(out)
	require.Contains(t, src, "Size_   int32")
	require.Contains(t, src, "func (x *Thing) Size() int {")
}
