package pbgen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protospec/pbgen/descriptor"
)

func TestCompileSingleFile(t *testing.T) {
	compiler := Compiler{
		Resolver: &SourceResolver{Accessor: SourceAccessorFromMap(map[string]string{
			"point.proto": `
				syntax = "proto3";
				package demo;
				message Point {
					int32 x = 1;
					int32 y = 2;
				}
			`,
		})},
	}
	ctx := context.Background()
	files, err := compiler.Compile(ctx, "point.proto")
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files["point.proto"]
	require.NotNil(t, f)
	require.Len(t, f.Messages, 1)
	assert.Equal(t, ".demo.Point", f.Messages[0].Name)
}

func TestCompileResolvesImports(t *testing.T) {
	compiler := Compiler{
		Resolver: &SourceResolver{Accessor: SourceAccessorFromMap(map[string]string{
			"a.proto": `
				syntax = "proto3";
				import "b.proto";
				message Foo {
					Bar bar = 1;
				}
			`,
			"b.proto": `
				syntax = "proto3";
				message Bar {
					string name = 1;
				}
			`,
		})},
	}
	ctx := context.Background()
	files, err := compiler.Compile(ctx, "a.proto")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, ".Bar", files["b.proto"].Messages[0].Name)
	assert.Equal(t, ".Bar", files["a.proto"].Messages[0].Fields[0].TypeName)
}

// TestCompileResolvesDiamondImports exercises a diamond import graph (a
// imports b and c, both of which import d) so that both b's and c's
// fastscan prewarm of "d.proto" race against each other and against d's
// own explicit compile. executor.compile's dedup-by-path map must collapse
// all of that into one compile of d, not fail or double-link it.
func TestCompileResolvesDiamondImports(t *testing.T) {
	compiler := Compiler{
		Resolver: &SourceResolver{Accessor: SourceAccessorFromMap(map[string]string{
			"a.proto": `
				syntax = "proto3";
				import "b.proto";
				import "c.proto";
				message Foo {
					Bar bar = 1;
					Baz baz = 2;
				}
			`,
			"b.proto": `
				syntax = "proto3";
				import "d.proto";
				message Bar {
					Quux q = 1;
				}
			`,
			"c.proto": `
				syntax = "proto3";
				import "d.proto";
				message Baz {
					Quux q = 1;
				}
			`,
			"d.proto": `
				syntax = "proto3";
				message Quux {
					string name = 1;
				}
			`,
		})},
	}
	ctx := context.Background()
	files, err := compiler.Compile(ctx, "a.proto")
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Equal(t, ".Quux", files["d.proto"].Messages[0].Name)
}

func TestCompileMultipleExplicitFiles(t *testing.T) {
	compiler := Compiler{
		Resolver: &SourceResolver{Accessor: SourceAccessorFromMap(map[string]string{
			"a/b1.proto": `syntax = "proto3"; package a.b; message B1 {}`,
			"a/b2.proto": `syntax = "proto3"; package a.b; message B2 {}`,
			"c/c.proto":  `syntax = "proto3"; package c; message C {}`,
		})},
	}
	ctx := context.Background()
	files, err := compiler.Compile(ctx, "a/b1.proto", "a/b2.proto", "c/c.proto")
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestCompileDependencyNotResolvableReportsPosition(t *testing.T) {
	compiler := Compiler{
		Resolver: &SourceResolver{Accessor: SourceAccessorFromMap(map[string]string{
			"test.proto": `
				syntax = "proto3";
				import "missing.proto";
				message Foo {}
			`,
		})},
	}
	ctx := context.Background()
	_, err := compiler.Compile(ctx, "test.proto")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing.proto"), "error should mention the unresolved import, got %v", err)
}

func TestCompileAcceptsPreResolvedDescriptor(t *testing.T) {
	prebuilt := &descriptor.File{
		Path:    "wkt.proto",
		Package: "wkt",
		Messages: []*descriptor.Message{
			{Name: ".wkt.Empty"},
		},
	}
	compiler := Compiler{
		Resolver: ResolverFunc(func(path string) (SearchResult, error) {
			if path == "wkt.proto" {
				return SearchResult{File: prebuilt}, nil
			}
			return SearchResult{}, ErrNotFound
		}),
	}
	ctx := context.Background()
	files, err := compiler.Compile(ctx, "wkt.proto")
	require.NoError(t, err)
	assert.Same(t, prebuilt, files["wkt.proto"])
}

func TestCompositeResolverFallsThrough(t *testing.T) {
	first := ResolverFunc(func(string) (SearchResult, error) { return SearchResult{}, ErrNotFound })
	second := &SourceResolver{Accessor: SourceAccessorFromMap(map[string]string{
		"test.proto": `syntax = "proto3"; message Foo {}`,
	})}
	compiler := Compiler{Resolver: CompositeResolver{first, second}}
	ctx := context.Background()
	files, err := compiler.Compile(ctx, "test.proto")
	require.NoError(t, err)
	require.Len(t, files, 1)
}
