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

import (
	"fmt"
	"sort"

	"github.com/petermattis/goid"

	"github.com/protospec/pbgen/descriptor"
)

// DebugAssertions enables the single-writer-goroutine check on every
// Message access. It is off by default (a Message is not thread-safe
// regardless; this only turns the documented "caller must not race"
// contract into a fast panic during testing) and is meant to be flipped
// on by test binaries, the same role the teacher's own internal
// reentrancy assertions play.
var DebugAssertions = false

type storageKind int8

const (
	storeSingular storageKind = iota
	storeList
	storeMapString
	storeMapInt
)

// slot is the storage backing one field number: exactly one of single,
// list, strMap, or intMap is meaningful, selected by kind.
type slot struct {
	kind   storageKind
	has    bool
	single Value
	list   []Value
	strMap map[string]Value
	intMap map[int64]Value
}

// Message is a schema-driven, descriptor-backed message: a mapping from
// field number to storage, built and walked at runtime with no generated
// code. It owns all of its payload (strings/bytes are copied in on Set,
// nested messages are owned pointers), per spec's dynamic-message
// ownership rule.
type Message struct {
	Desc *descriptor.Message

	slots      map[int32]*slot
	fieldByNum map[int32]*descriptor.Field
	mapByNum   map[int32]*descriptor.MapField
	byName     map[string]int32
	order      []int32 // field numbers, ascending; drives encode order

	oneofActive map[int]int32 // oneof index -> currently-set member field number

	owner int64 // goid of the goroutine that first touched this message
}

// NewMessage builds an empty dynamic Message for desc, ready to have
// fields set on it.
func NewMessage(desc *descriptor.Message) *Message {
	m := &Message{
		Desc:       desc,
		slots:      map[int32]*slot{},
		fieldByNum: map[int32]*descriptor.Field{},
		mapByNum:   map[int32]*descriptor.MapField{},
		byName:     map[string]int32{},
	}
	for i := range desc.Fields {
		f := &desc.Fields[i]
		m.fieldByNum[f.Number] = f
		m.byName[f.Name] = f.Number
		m.order = append(m.order, f.Number)
	}
	for i := range desc.MapFields {
		mf := &desc.MapFields[i]
		m.mapByNum[mf.Number] = mf
		m.byName[mf.Name] = mf.Number
		m.order = append(m.order, mf.Number)
	}
	sort.Slice(m.order, func(i, j int) bool { return m.order[i] < m.order[j] })
	return m
}

func (m *Message) checkOwner() {
	if !DebugAssertions {
		return
	}
	g := goid.Get()
	if m.owner == 0 {
		m.owner = g
		return
	}
	if m.owner != g {
		panic(fmt.Sprintf("dynamic: Message accessed from goroutine %d, but is owned by goroutine %d", g, m.owner))
	}
}

// FieldNumber returns the field number for name, and whether it exists.
func (m *Message) FieldNumber(name string) (int32, bool) {
	n, ok := m.byName[name]
	return n, ok
}

// Order returns every field number this message's descriptor declares,
// ascending, the order Encode walks.
func (m *Message) Order() []int32 { return m.order }

// FieldDesc returns the ordinary field descriptor for num.
func (m *Message) FieldDesc(num int32) (*descriptor.Field, bool) {
	f, ok := m.fieldByNum[num]
	return f, ok
}

// MapDesc returns the map-field descriptor for num.
func (m *Message) MapDesc(num int32) (*descriptor.MapField, bool) {
	f, ok := m.mapByNum[num]
	return f, ok
}

func (m *Message) slotFor(num int32, kind storageKind) *slot {
	s, ok := m.slots[num]
	if !ok {
		s = &slot{kind: kind}
		if kind == storeMapString {
			s.strMap = map[string]Value{}
		}
		if kind == storeMapInt {
			s.intMap = map[int64]Value{}
		}
		m.slots[num] = s
	}
	return s
}

// Has reports whether num has an explicitly-set singular value.
func (m *Message) Has(num int32) bool {
	m.checkOwner()
	s, ok := m.slots[num]
	return ok && s.has
}

// Get returns the singular value stored at num.
func (m *Message) Get(num int32) (Value, bool) {
	m.checkOwner()
	s, ok := m.slots[num]
	if !ok || !s.has {
		return Value{}, false
	}
	return s.single, true
}

// Set stores v as the singular value of field num, copying any owned
// payload (bytes, nested message) so the caller keeps ownership of what
// they passed in. If num belongs to a oneof, any other member of that
// oneof previously set is cleared, since only one member may be active.
func (m *Message) Set(num int32, v Value) {
	m.checkOwner()
	if f, ok := m.fieldByNum[num]; ok && f.OneofIndex >= 0 {
		if m.oneofActive == nil {
			m.oneofActive = map[int]int32{}
		}
		if prev, ok := m.oneofActive[f.OneofIndex]; ok && prev != num {
			delete(m.slots, prev)
		}
		m.oneofActive[f.OneofIndex] = num
	}
	s := m.slotFor(num, storeSingular)
	s.single = v.clone()
	s.has = true
}

// Clear removes any storage for field num.
func (m *Message) Clear(num int32) {
	m.checkOwner()
	delete(m.slots, num)
	if f, ok := m.fieldByNum[num]; ok && f.OneofIndex >= 0 {
		delete(m.oneofActive, f.OneofIndex)
	}
}

// List returns the repeated values stored at num, in append order.
func (m *Message) List(num int32) []Value {
	m.checkOwner()
	s, ok := m.slots[num]
	if !ok {
		return nil
	}
	return s.list
}

// Append adds v to the repeated slot at num.
func (m *Message) Append(num int32, v Value) {
	m.checkOwner()
	s := m.slotFor(num, storeList)
	s.list = append(s.list, v.clone())
}

// PutString inserts v into the string-keyed map slot at num.
func (m *Message) PutString(num int32, key string, v Value) {
	m.checkOwner()
	s := m.slotFor(num, storeMapString)
	s.strMap[key] = v.clone()
}

// MapString returns the string-keyed map slot at num.
func (m *Message) MapString(num int32) map[string]Value {
	m.checkOwner()
	s, ok := m.slots[num]
	if !ok {
		return nil
	}
	return s.strMap
}

// PutInt inserts v into the integer-keyed map slot at num.
func (m *Message) PutInt(num int32, key int64, v Value) {
	m.checkOwner()
	s := m.slotFor(num, storeMapInt)
	s.intMap[key] = v.clone()
}

// MapInt returns the integer-keyed map slot at num.
func (m *Message) MapInt(num int32) map[int64]Value {
	m.checkOwner()
	s, ok := m.slots[num]
	if !ok {
		return nil
	}
	return s.intMap
}

// Clone returns a deep copy of m, recursively cloning every owned nested
// message and duplicating every string/bytes payload.
func (m *Message) Clone() *Message {
	cp := NewMessage(m.Desc)
	for num, s := range m.slots {
		ns := cp.slotFor(num, s.kind)
		ns.has = s.has
		ns.single = s.single.clone()
		for _, v := range s.list {
			ns.list = append(ns.list, v.clone())
		}
		for k, v := range s.strMap {
			ns.strMap[k] = v.clone()
		}
		for k, v := range s.intMap {
			ns.intMap[k] = v.clone()
		}
	}
	for idx, num := range m.oneofActive {
		if cp.oneofActive == nil {
			cp.oneofActive = map[int]int32{}
		}
		cp.oneofActive[idx] = num
	}
	return cp
}

// Release frees everything m owns: it walks every slot, recursively
// releasing nested messages, and drops every reference so the storage
// can be collected immediately rather than waiting on finalization of
// the whole tree at once.
func (m *Message) Release() {
	m.checkOwner()
	for _, s := range m.slots {
		releaseValue(s.single)
		for _, v := range s.list {
			releaseValue(v)
		}
		for _, v := range s.strMap {
			releaseValue(v)
		}
		for _, v := range s.intMap {
			releaseValue(v)
		}
	}
	m.slots = map[int32]*slot{}
}

func releaseValue(v Value) {
	if v.m != nil {
		v.m.Release()
	}
}
