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

import "github.com/protospec/pbgen/descriptor"

// Registry resolves an absolute message type name to its descriptor, the
// only thing Decode needs to build a nested dynamic.Message for a
// message- or group-typed field without generated code to consult.
type Registry struct {
	messages map[string]*descriptor.Message
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{messages: map[string]*descriptor.Message{}}
}

// AddFile registers every message (including nested ones and synthesized
// map-entry messages) declared in f.
func (r *Registry) AddFile(f *descriptor.File) {
	for _, m := range f.AllMessages() {
		r.messages[m.Name] = m
	}
}

// Lookup returns the message descriptor registered under name.
func (r *Registry) Lookup(name string) (*descriptor.Message, bool) {
	m, ok := r.messages[name]
	return m, ok
}
