package pbgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protospec/pbgen/parser"
	"github.com/protospec/pbgen/reporter"
)

func TestErrorReportingCountsAndSentinel(t *testing.T) {
	src := `
		syntax = "proto3";
		message Foo {
			string foo = 0;
		}
		enum Bar {
			BAZ = 0;
			BAZ = 2;
		}
	`
	ctx := context.Background()
	compiler := Compiler{
		Resolver: &SourceResolver{Accessor: SourceAccessorFromMap(map[string]string{"test.proto": src})},
	}

	var count int
	compiler.Reporter = reporter.NewReporter(func(err reporter.ErrorWithPos) error {
		count++
		return nil
	}, nil)
	_, err := compiler.Compile(ctx, "test.proto")
	assert.Equal(t, reporter.ErrInvalidSource, err)
	assert.True(t, count > 0, "expected at least one error to be reported")
}

func TestErrorReportingFailsFast(t *testing.T) {
	src := `
		syntax = "proto3";
		enum Bar {
			BAZ = 0;
			BAZ = 2;
		}
	`
	fail := errors.New("failure!")
	ctx := context.Background()
	var count int
	compiler := Compiler{
		Resolver: &SourceResolver{Accessor: SourceAccessorFromMap(map[string]string{"test.proto": src})},
		Reporter: reporter.NewReporter(func(err reporter.ErrorWithPos) error {
			count++
			return fail
		}, nil),
	}
	_, err := compiler.Compile(ctx, "test.proto")
	assert.Equal(t, fail, err)
	assert.Equal(t, 1, count)
}

func TestDuplicateSymbolReporting(t *testing.T) {
	src := `
		syntax = "proto3";
		enum Bar {
			BAZ = 0;
			BAZ = 2;
		}
	`
	ctx := context.Background()
	var reported []string
	compiler := Compiler{
		Resolver: &SourceResolver{Accessor: SourceAccessorFromMap(map[string]string{"test.proto": src})},
		Reporter: reporter.NewReporter(func(err reporter.ErrorWithPos) error {
			reported = append(reported, err.Unwrap().Error())
			return nil
		}, nil),
	}
	_, err := compiler.Compile(ctx, "test.proto")
	require.Equal(t, reporter.ErrInvalidSource, err)
	found := false
	for _, msg := range reported {
		if strings.Contains(msg, `duplicate symbol "BAZ"`) {
			found = true
		}
	}
	assert.True(t, found, "expected a duplicate symbol error, got %v", reported)
}

func TestNoSyntaxWarning(t *testing.T) {
	ctx := context.Background()
	var warnings []string
	compiler := Compiler{
		Resolver: &SourceResolver{Accessor: SourceAccessorFromMap(map[string]string{
			"test.proto": `message Foo {}`,
		})},
		Reporter: reporter.NewReporter(nil, func(warn reporter.ErrorWithPos) {
			warnings = append(warnings, warn.Unwrap().Error())
		}),
	}
	_, err := compiler.Compile(ctx, "test.proto")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, parser.ErrNoSyntax.Error(), warnings[0])
}

func TestImportCycleReporting(t *testing.T) {
	ctx := context.Background()
	compiler := Compiler{
		Resolver: &SourceResolver{Accessor: SourceAccessorFromMap(map[string]string{
			"a.proto": `syntax = "proto3"; import "b.proto";`,
			"b.proto": `syntax = "proto3"; import "a.proto";`,
		})},
	}
	_, err := compiler.Compile(ctx, "a.proto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle found in imports")
}
