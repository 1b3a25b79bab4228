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

package descriptorset

import (
	"fmt"
	"strings"

	"github.com/protospec/pbgen/codegen"
)

// Run decodes a CodeGeneratorRequest, drives codegen.Generate once per
// file named in FilesToGenerate, and hand-encodes the resulting
// CodeGeneratorResponse. It never returns a Go error: any failure -- a
// malformed request, an unresolvable file-to-generate, a codegen error --
// is reported through the response's own error field, per spec.md 4.7/6,
// so the only thing a caller (a protoc-style plugin main) needs to do is
// write the returned bytes to stdout.
func Run(requestBytes []byte) []byte {
	req, err := DecodeRequest(requestBytes)
	if err != nil {
		return EncodeResponse(nil, err.Error())
	}

	var out []GeneratedFile
	for _, path := range req.FilesToGenerate {
		f := req.FileByPath(path)
		if f == nil {
			return EncodeResponse(nil, fmt.Sprintf("descriptorset: file %q not found in request", path))
		}
		src, err := codegen.Generate(f)
		if err != nil {
			return EncodeResponse(nil, fmt.Sprintf("descriptorset: generating %q: %s", path, err))
		}
		out = append(out, GeneratedFile{Name: outputName(f.Path, f.Package), Content: src})
	}
	return EncodeResponse(out, "")
}

// outputName derives the generated file's path from the source .proto
// path's stem and the file's package, per spec.md 4.6's package-to-path
// rule (codegen.OutputPath), with the generated-source suffix every
// generated file in this module carries.
func outputName(protoPath, pkg string) string {
	stem := strings.TrimSuffix(protoPath, ".proto")
	if idx := strings.LastIndex(stem, "/"); idx >= 0 {
		stem = stem[idx+1:]
	}
	if pkg == "" {
		return stem + ".pbgen.go"
	}
	return codegen.OutputPath(pkg, stem) + "/" + stem + ".pbgen.go"
}
