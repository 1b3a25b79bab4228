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

package dynamic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protospec/pbgen/dynamic"
	"github.com/protospec/pbgen/linker"
	"github.com/protospec/pbgen/parser"
	"github.com/protospec/pbgen/reporter"
	"github.com/protospec/pbgen/wire"
)

func TestEncodeDecodeScalarRoundTrip(t *testing.T) {
	reg := dynamic.NewRegistry()
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(`
syntax = "proto3";
enum Color { RED = 0; BLUE = 1; }
message M {
  int32 i32 = 1;
  uint64 u64 = 2;
  sint32 s32 = 3;
  fixed64 f64 = 4;
  float f = 5;
  double d = 6;
  bool b = 7;
  string s = 8;
  bytes by = 9;
  Color c = 10;
}
`), h)
	f := p.ParseFile()
	require.False(t, c.HasErrors(), c.Strings())
	var syms linker.Symbols
	df := linker.Link(f, linker.Files{}, &syms, h)
	require.False(t, c.HasErrors(), c.Strings())
	reg.AddFile(df)

	desc, ok := reg.Lookup(".M")
	require.True(t, ok)

	m := dynamic.NewMessage(desc)
	num := func(name string) int32 {
		n, ok := m.FieldNumber(name)
		require.True(t, ok, name)
		return n
	}
	m.Set(num("i32"), dynamic.Int(-7))
	m.Set(num("u64"), dynamic.Uint(9000000000))
	m.Set(num("s32"), dynamic.Int(-42))
	m.Set(num("f64"), dynamic.Uint(123456))
	m.Set(num("f"), dynamic.Float(3.5))
	m.Set(num("d"), dynamic.Float(2.718281828))
	m.Set(num("b"), dynamic.Bool(true))
	m.Set(num("s"), dynamic.String("hello"))
	m.Set(num("by"), dynamic.Bytes([]byte{1, 2, 3}))
	m.Set(num("c"), dynamic.Int(1))

	buf, err := dynamic.Encode(m, 0)
	require.NoError(t, err)

	out, err := dynamic.Decode(buf, desc, reg, 0)
	require.NoError(t, err)

	get := func(name string) dynamic.Value {
		v, ok := out.Get(num(name))
		require.True(t, ok, name)
		return v
	}
	require.Equal(t, int64(-7), get("i32").Int())
	require.Equal(t, uint64(9000000000), get("u64").Uint())
	require.Equal(t, int64(-42), get("s32").Int())
	require.Equal(t, uint64(123456), get("f64").Uint())
	require.InDelta(t, 3.5, get("f").Float(), 0.0001)
	require.InDelta(t, 2.718281828, get("d").Float(), 0.0000001)
	require.True(t, get("b").Bool())
	require.Equal(t, "hello", get("s").Str())
	require.Equal(t, []byte{1, 2, 3}, get("by").Bytes())
	require.Equal(t, int64(1), get("c").Int())
}

func TestEncodeDecodeRepeatedPacked(t *testing.T) {
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(`
syntax = "proto3";
message M {
  repeated int32 nums = 1;
}
`), h)
	f := p.ParseFile()
	require.False(t, c.HasErrors(), c.Strings())
	var syms linker.Symbols
	df := linker.Link(f, linker.Files{}, &syms, h)
	require.False(t, c.HasErrors(), c.Strings())
	reg := dynamic.NewRegistry()
	reg.AddFile(df)
	desc, _ := reg.Lookup(".M")

	m := dynamic.NewMessage(desc)
	numField, _ := m.FieldNumber("nums")
	require.True(t, desc.Fields[0].Packed)
	for _, v := range []int64{1, -2, 300, 0, 42} {
		m.Append(numField, dynamic.Int(v))
	}

	buf, err := dynamic.Encode(m, 0)
	require.NoError(t, err)

	out, err := dynamic.Decode(buf, desc, reg, 0)
	require.NoError(t, err)
	list := out.List(numField)
	require.Len(t, list, 5)
	require.Equal(t, int64(1), list[0].Int())
	require.Equal(t, int64(-2), list[1].Int())
	require.Equal(t, int64(300), list[2].Int())
	require.Equal(t, int64(42), list[4].Int())
}

func TestEncodeDecodeMapField(t *testing.T) {
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(`
syntax = "proto3";
message M {
  map<string, int32> counts = 1;
}
`), h)
	f := p.ParseFile()
	require.False(t, c.HasErrors(), c.Strings())
	var syms linker.Symbols
	df := linker.Link(f, linker.Files{}, &syms, h)
	require.False(t, c.HasErrors(), c.Strings())
	reg := dynamic.NewRegistry()
	reg.AddFile(df)
	desc, _ := reg.Lookup(".M")

	m := dynamic.NewMessage(desc)
	mapNum := desc.MapFields[0].Number
	m.PutString(mapNum, "a", dynamic.Int(1))
	m.PutString(mapNum, "b", dynamic.Int(2))

	buf, err := dynamic.Encode(m, 0)
	require.NoError(t, err)

	out, err := dynamic.Decode(buf, desc, reg, 0)
	require.NoError(t, err)
	got := out.MapString(mapNum)
	require.Len(t, got, 2)
	require.Equal(t, int64(1), got["a"].Int())
	require.Equal(t, int64(2), got["b"].Int())
}

func TestEncodeDecodeOneofLastSetWins(t *testing.T) {
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(`
syntax = "proto3";
message M {
  oneof choice {
    int32 a = 1;
    string b = 2;
  }
}
`), h)
	f := p.ParseFile()
	require.False(t, c.HasErrors(), c.Strings())
	var syms linker.Symbols
	df := linker.Link(f, linker.Files{}, &syms, h)
	require.False(t, c.HasErrors(), c.Strings())
	reg := dynamic.NewRegistry()
	reg.AddFile(df)
	desc, _ := reg.Lookup(".M")

	m := dynamic.NewMessage(desc)
	numA, _ := m.FieldNumber("a")
	numB, _ := m.FieldNumber("b")
	m.Set(numA, dynamic.Int(5))
	require.True(t, m.Has(numA))
	m.Set(numB, dynamic.String("x"))
	require.False(t, m.Has(numA))
	require.True(t, m.Has(numB))

	buf, err := dynamic.Encode(m, 0)
	require.NoError(t, err)
	out, err := dynamic.Decode(buf, desc, reg, 0)
	require.NoError(t, err)
	require.False(t, out.Has(numA))
	v, ok := out.Get(numB)
	require.True(t, ok)
	require.Equal(t, "x", v.Str())
}

func TestEncodeDecodeNestedMessage(t *testing.T) {
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(`
syntax = "proto3";
message Inner {
  string label = 1;
}
message Outer {
  Inner detail = 1;
}
`), h)
	f := p.ParseFile()
	require.False(t, c.HasErrors(), c.Strings())
	var syms linker.Symbols
	df := linker.Link(f, linker.Files{}, &syms, h)
	require.False(t, c.HasErrors(), c.Strings())
	reg := dynamic.NewRegistry()
	reg.AddFile(df)
	outerDesc, _ := reg.Lookup(".Outer")
	innerDesc, _ := reg.Lookup(".Inner")

	inner := dynamic.NewMessage(innerDesc)
	labelNum, _ := inner.FieldNumber("label")
	inner.Set(labelNum, dynamic.String("hi"))

	outer := dynamic.NewMessage(outerDesc)
	detailNum, _ := outer.FieldNumber("detail")
	outer.Set(detailNum, dynamic.MessageValue(inner))

	buf, err := dynamic.Encode(outer, 0)
	require.NoError(t, err)

	out, err := dynamic.Decode(buf, outerDesc, reg, 0)
	require.NoError(t, err)
	v, ok := out.Get(detailNum)
	require.True(t, ok)
	got := v.Message()
	require.NotNil(t, got)
	lv, ok := got.Get(labelNum)
	require.True(t, ok)
	require.Equal(t, "hi", lv.Str())
}

func TestEncodeDecodeGroupField(t *testing.T) {
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(`
syntax = "proto2";
message M {
  optional group Detail = 3 {
    optional string text = 1;
  }
}
`), h)
	f := p.ParseFile()
	require.False(t, c.HasErrors(), c.Strings())
	var syms linker.Symbols
	df := linker.Link(f, linker.Files{}, &syms, h)
	require.False(t, c.HasErrors(), c.Strings())
	reg := dynamic.NewRegistry()
	reg.AddFile(df)
	desc, ok := reg.Lookup(".M")
	require.True(t, ok)
	groupDesc, ok := reg.Lookup(".M.Detail")
	require.True(t, ok)

	group := dynamic.NewMessage(groupDesc)
	textNum, _ := group.FieldNumber("text")
	group.Set(textNum, dynamic.String("grouped"))

	m := dynamic.NewMessage(desc)
	detailNum, _ := m.FieldNumber("detail")
	m.Set(detailNum, dynamic.MessageValue(group))

	buf, err := dynamic.Encode(m, 0)
	require.NoError(t, err)

	out, err := dynamic.Decode(buf, desc, reg, 0)
	require.NoError(t, err)
	v, ok := out.Get(detailNum)
	require.True(t, ok)
	got := v.Message()
	require.NotNil(t, got)
	tv, ok := got.Get(textNum)
	require.True(t, ok)
	require.Equal(t, "grouped", tv.Str())
}

func TestEncodeRejectsInvalidUTF8(t *testing.T) {
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(`
syntax = "proto3";
message M {
  string s = 1;
}
`), h)
	f := p.ParseFile()
	require.False(t, c.HasErrors(), c.Strings())
	var syms linker.Symbols
	df := linker.Link(f, linker.Files{}, &syms, h)
	require.False(t, c.HasErrors(), c.Strings())
	reg := dynamic.NewRegistry()
	reg.AddFile(df)
	desc, _ := reg.Lookup(".M")

	m := dynamic.NewMessage(desc)
	num, _ := m.FieldNumber("s")
	m.Set(num, dynamic.String(string([]byte{0xff, 0xfe})))

	_, err := dynamic.Encode(m, 0)
	require.ErrorIs(t, err, wire.ErrInvalidUTF8)
}

func TestEncodeDecodeRecursionLimitExceeded(t *testing.T) {
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(`
syntax = "proto3";
message Node {
  Node child = 1;
}
`), h)
	f := p.ParseFile()
	require.False(t, c.HasErrors(), c.Strings())
	var syms linker.Symbols
	df := linker.Link(f, linker.Files{}, &syms, h)
	require.False(t, c.HasErrors(), c.Strings())
	reg := dynamic.NewRegistry()
	reg.AddFile(df)
	desc, _ := reg.Lookup(".Node")

	root := dynamic.NewMessage(desc)
	childNum, _ := root.FieldNumber("child")
	cur := root
	for i := 0; i < 10; i++ {
		child := dynamic.NewMessage(desc)
		cur.Set(childNum, dynamic.MessageValue(child))
		cur = child
	}

	_, err := dynamic.Encode(root, 3)
	require.ErrorIs(t, err, wire.ErrRecursionLimitExceeded)

	buf, err := dynamic.Encode(root, 20)
	require.NoError(t, err)

	_, err = dynamic.Decode(buf, desc, reg, 3)
	require.ErrorIs(t, err, wire.ErrRecursionLimitExceeded)
}

func TestMessageCloneAndRelease(t *testing.T) {
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(`
syntax = "proto3";
message M {
  string s = 1;
}
`), h)
	f := p.ParseFile()
	require.False(t, c.HasErrors(), c.Strings())
	var syms linker.Symbols
	df := linker.Link(f, linker.Files{}, &syms, h)
	require.False(t, c.HasErrors(), c.Strings())
	reg := dynamic.NewRegistry()
	reg.AddFile(df)
	desc, _ := reg.Lookup(".M")

	m := dynamic.NewMessage(desc)
	num, _ := m.FieldNumber("s")
	m.Set(num, dynamic.String("original"))

	clone := m.Clone()
	clone.Set(num, dynamic.String("changed"))

	v, _ := m.Get(num)
	require.Equal(t, "original", v.Str())
	cv, _ := clone.Get(num)
	require.Equal(t, "changed", cv.Str())

	m.Release()
	require.False(t, m.Has(num))
}

func TestDebugAssertionsPanicsOnCrossGoroutineAccess(t *testing.T) {
	var c reporter.Collector
	h := reporter.NewHandler(&c)
	p := parser.NewParser("test.proto", []byte(`
syntax = "proto3";
message M {
  string s = 1;
}
`), h)
	f := p.ParseFile()
	require.False(t, c.HasErrors(), c.Strings())
	var syms linker.Symbols
	df := linker.Link(f, linker.Files{}, &syms, h)
	require.False(t, c.HasErrors(), c.Strings())
	reg := dynamic.NewRegistry()
	reg.AddFile(df)
	desc, _ := reg.Lookup(".M")

	dynamic.DebugAssertions = true
	defer func() { dynamic.DebugAssertions = false }()

	m := dynamic.NewMessage(desc)
	num, _ := m.FieldNumber("s")
	m.Set(num, dynamic.String("x"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			recover()
		}()
		m.Set(num, dynamic.String("y"))
		t.Error("expected panic on cross-goroutine access")
	}()
	<-done
}
