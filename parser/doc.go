// Package parser contains the logic for parsing protobuf source code into an
// AST (abstract syntax tree). Converting an AST into descriptors is the job
// of package linker.
//
// The AST records source positions for its declarations. The lexer
// discards whitespace and comments, so the AST does not keep them.
package parser
