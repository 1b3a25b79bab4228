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

package dynamic

import "github.com/protocolbuffers/protoscope"

// Dump renders raw, schema-less wire bytes in protoscope's human-readable
// text format: useful for inspecting a message Encode produced, or bytes
// about to be fed to Decode, without a schema on hand. It has no
// knowledge of field names or kinds -- that's the point, since it is
// meant to work on arbitrary or malformed input too.
func Dump(data []byte) string {
	return protoscope.Write(data, protoscope.WriterOptions{
		ExplicitWireTypes: true,
	})
}

// DumpMessage encodes m and renders the result with Dump, for quick
// inspection of what a dynamic.Message actually serializes to.
func DumpMessage(m *Message, limit int) (string, error) {
	b, err := Encode(m, limit)
	if err != nil {
		return "", err
	}
	return Dump(b), nil
}
