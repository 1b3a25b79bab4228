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

	"github.com/protospec/pbgen/descriptor"
)

// Request is a decoded CodeGeneratorRequest: every FileDescriptorProto
// the host passed along (transitive dependencies included), and the
// subset of those paths the plugin is actually asked to generate code
// for.
type Request struct {
	FilesToGenerate []string
	Parameter       string
	Files           []*descriptor.File // in the wire order; may include files not in FilesToGenerate
}

// FileByPath returns the decoded file at path, or nil.
func (req *Request) FileByPath(path string) *descriptor.File {
	for _, f := range req.Files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// DecodeRequest decodes a CodeGeneratorRequest.
func DecodeRequest(buf []byte) (*Request, error) {
	r, err := decodeRaw(buf)
	if err != nil {
		return nil, fmt.Errorf("descriptorset: decoding CodeGeneratorRequest: %w", err)
	}
	req := &Request{Parameter: r.str(reqParameter)}
	for _, nb := range r[reqFileToGenerate] {
		req.FilesToGenerate = append(req.FilesToGenerate, string(nb))
	}
	for _, fb := range r[reqProtoFile] {
		f, err := DecodeFile(fb)
		if err != nil {
			return nil, err
		}
		req.Files = append(req.Files, f)
	}
	return req, nil
}
