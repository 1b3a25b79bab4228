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

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/protospec/pbgen/codegen"
	"github.com/protospec/pbgen/descriptor"
)

// messageGolden is the subset of a resolved message shape that a codegen
// golden test cares about: field names, kinds, and labels, independent of
// the generated Go source text a TestGenerate* Contains check inspects.
type messageGolden struct {
	Name   string        `yaml:"name"`
	Fields []fieldGolden `yaml:"fields,omitempty"`
}

type fieldGolden struct {
	Name   string `yaml:"name"`
	Number int32  `yaml:"number"`
	Kind   string `yaml:"kind"`
	Label  string `yaml:"label"`
}

func toGolden(m *descriptor.Message) messageGolden {
	g := messageGolden{Name: m.Name}
	for _, fd := range m.Fields {
		g.Fields = append(g.Fields, fieldGolden{
			Name:   fd.Name,
			Number: fd.Number,
			Kind:   fd.Kind.String(),
			Label:  fd.Label.String(),
		})
	}
	return g
}

// TestGenerateDescriptorShapeMatchesGolden snapshots the linked descriptor
// feeding codegen.Generate as YAML and compares it with an inline YAML
// fixture, so a change that
// reshapes resolved fields (not just the Go source codegen emits) shows up
// as a readable diff instead of only failing deep inside a Contains check.
func TestGenerateDescriptorShapeMatchesGolden(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
message Point {
  int32 x = 1;
  int32 y = 2;
  string label = 3;
}
`)
	require.Len(t, df.Messages, 1)

	out, err := yaml.Marshal(toGolden(df.Messages[0]))
	require.NoError(t, err)

	const fixture = `
name: .Point
fields:
  - name: x
    number: 1
    kind: int32
    label: implicit
  - name: y
    number: 2
    kind: int32
    label: implicit
  - name: label
    number: 3
    kind: string
    label: implicit
`
	var want, got messageGolden
	require.NoError(t, yaml.Unmarshal([]byte(fixture), &want))
	require.NoError(t, yaml.Unmarshal(out, &got))
	require.Equal(t, want, got)
}

// TestGenerateIsByteForByteDeterministic generates the same file twice and
// requires identical output, rendering a unified diff on mismatch instead of
// testify's default string diff. A message with more than one oneof is the
// regression case: genMessage used to range over a map of oneof groups
// keyed by index, which orders Go map iteration randomly and so could
// reorder the emitted wrapper types between runs.
func TestGenerateIsByteForByteDeterministic(t *testing.T) {
	df := linkSource(t, `
syntax = "proto3";
message Shape {
  oneof kind {
    int32 circle_radius = 1;
    int32 square_side = 2;
  }
  oneof fill {
    string solid_color = 10;
    int32 pattern_id = 11;
  }
}
`)
	first, err := codegen.Generate(df)
	require.NoError(t, err)
	second, err := codegen.Generate(df)
	require.NoError(t, err)

	if string(first) != string(second) {
		diff, diffErr := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(first)),
			B:        difflib.SplitLines(string(second)),
			FromFile: "generate-pass-1",
			ToFile:   "generate-pass-2",
			Context:  3,
		})
		require.NoError(t, diffErr)
		t.Fatalf("two Generate calls on the same descriptor produced different source:\n%s", diff)
	}
}
