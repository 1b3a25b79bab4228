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

import "github.com/protospec/pbgen/message"

// GeneratedFile is one output file a CodeGeneratorResponse carries back:
// a path (nested per the package-to-path rule codegen's names.go applies)
// and its Go source content.
type GeneratedFile struct {
	Name    string
	Content []byte
}

// EncodeResponse hand-encodes a CodeGeneratorResponse: files on success,
// or just the error string on failure -- spec.md 4.7/6 requires that when
// Err is set no files are emitted, matching protoc's own plugin contract
// that a non-empty error field means the whole invocation failed.
func EncodeResponse(files []GeneratedFile, err string) []byte {
	w := message.NewWriter(256)
	if err != "" {
		w.WriteLenField(respError, []byte(err))
		return w.Bytes()
	}
	w.WriteVarintField(respSupportedFeatures, featureProto3Optional)
	for _, f := range files {
		body := encodeResponseFile(f)
		w.WriteLenField(respFile, body)
	}
	return w.Bytes()
}

func encodeResponseFile(f GeneratedFile) []byte {
	fw := message.NewWriter(len(f.Content) + len(f.Name) + 16)
	fw.WriteLenField(respFileName, []byte(f.Name))
	fw.WriteLenField(respFileContent, f.Content)
	return fw.Bytes()
}
