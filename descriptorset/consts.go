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

// Package descriptorset hand-decodes the canonical CodeGeneratorRequest
// wire format (and hand-encodes CodeGeneratorResponse) directly against
// the wire and message packages, without depending on a generated or
// hand-written descriptor.proto runtime -- dogfooding the core codec on
// its own bootstrap input. Field numbers below are fixed points of the
// public descriptor.proto schema, not something this package discovers;
// they never change across proto versions.
package descriptorset

// Field numbers of the messages declared in descriptor.proto, restricted
// to the subset this package reads or writes.
const (
	// FileDescriptorProto
	fileName         = 1 // optional string
	filePackage      = 2 // optional string
	fileDependency   = 3 // repeated string
	fileMessageType  = 4 // repeated DescriptorProto
	fileEnumType     = 5 // repeated EnumDescriptorProto
	fileService      = 6 // repeated ServiceDescriptorProto
	filePublicDep    = 10 // repeated int32, indexes into fileDependency
	fileSyntax       = 12 // optional string

	// DescriptorProto (message)
	msgName       = 1 // optional string
	msgField      = 2 // repeated FieldDescriptorProto
	msgNestedType = 3 // repeated DescriptorProto
	msgEnumType   = 4 // repeated EnumDescriptorProto
	msgOneofDecl  = 8 // repeated OneofDescriptorProto
	msgOptions    = 7 // optional MessageOptions

	// MessageOptions
	msgOptMapEntry = 7 // optional bool

	// FieldDescriptorProto
	fieldName       = 1  // optional string
	fieldNumber     = 3  // optional int32
	fieldLabel      = 4  // optional Label
	fieldType       = 5  // optional Type
	fieldTypeName   = 6  // optional string
	fieldJSONName   = 10 // optional string
	fieldOneofIndex = 9  // optional int32
	fieldOptions    = 8  // optional FieldOptions
	fieldProto3Opt  = 17 // optional bool (proto3_optional)

	// FieldOptions
	fieldOptPacked = 2 // optional bool

	// OneofDescriptorProto
	oneofName = 1 // optional string

	// EnumDescriptorProto
	enumName  = 1 // optional string
	enumValue = 2 // repeated EnumValueDescriptorProto

	// EnumValueDescriptorProto
	enumValueName   = 1 // optional string
	enumValueNumber = 2 // optional int32

	// ServiceDescriptorProto
	serviceName   = 1 // optional string
	serviceMethod = 2 // repeated MethodDescriptorProto

	// MethodDescriptorProto
	methodName             = 1 // optional string
	methodInputType        = 2 // optional string
	methodOutputType       = 3 // optional string
	methodClientStreaming  = 5 // optional bool
	methodServerStreaming  = 6 // optional bool

	// CodeGeneratorRequest (plugin.proto)
	reqFileToGenerate = 1  // repeated string
	reqParameter      = 2  // optional string
	reqProtoFile      = 15 // repeated FileDescriptorProto
	reqCompilerVer    = 3  // optional Version

	// CodeGeneratorResponse
	respError              = 1  // optional string
	respSupportedFeatures  = 2  // optional uint64
	respFile               = 15 // repeated File

	// CodeGeneratorResponse.File
	respFileName    = 1  // optional string
	respFileContent = 15 // optional string
)

// FieldDescriptorProto.Type values, the public descriptor.proto enumeration.
const (
	typeDouble   = 1
	typeFloat    = 2
	typeInt64    = 3
	typeUInt64   = 4
	typeInt32    = 5
	typeFixed64  = 6
	typeFixed32  = 7
	typeBool     = 8
	typeString   = 9
	typeGroup    = 10
	typeMessage  = 11
	typeBytes    = 12
	typeUInt32   = 13
	typeEnum     = 14
	typeSFixed32 = 15
	typeSFixed64 = 16
	typeSInt32   = 17
	typeSInt64   = 18
)

// FieldDescriptorProto.Label values.
const (
	labelOptional = 1
	labelRequired = 2
	labelRepeated = 3
)

// SupportedFeatures bit for proto3-optional support, per
// CodeGeneratorResponse.Feature in plugin.proto.
const featureProto3Optional = 1
