// Package pbgen provides the entry point for a protobuf toolkit: parsing,
// linking, and code generation, built directly against this module's own
// wire codec rather than the reference protobuf runtime. "Compile" here
// means parsing and validating source and producing fully linked
// descriptors; generating Go source from those descriptors is a separate
// step, driven by package codegen (or, from inside a protoc plugin,
// package descriptorset).
//
// The sub-packages represent the phases of that pipeline and the models
// used between them:
//  1. Lex and parse into an AST.
//     Also see: parser.NewParser, (*parser.Parser).ParseFile
//  2. Link the AST into a fully resolved descriptor.
//     Also see: linker.Link
//  3. Generate Go source from a descriptor.
//     Also see: codegen.Generate
//
// This package's Compiler drives the first two steps for any number of
// files, taking advantage of multiple CPU cores so that a compilation
// involving many files completes quickly.
//
// # Resolvers
//
// A Resolver is how the compiler locates the inputs to a compilation: the
// files named explicitly, and everything they import. A Resolver can
// answer a query for a path with any of:
//   - Source code: the compiler lexes, parses, and links it.
//   - An AST: parsing is skipped; the rest of the pipeline still runs.
//   - A descriptor: already fully linked; used as-is.
//
// # Compiler
//
// A Compiler accepts a list of file names and produces the corresponding
// descriptors. Only the Resolver field is required:
//
//	compiler := pbgen.Compiler{
//	    Resolver: &pbgen.SourceResolver{},
//	}
//
// This minimal Compiler resolves files relative to the current working
// directory, uses default parallelism, and fails at the first error.
package pbgen
