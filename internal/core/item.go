// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import "encoding/binary"

// ItemType tags the kind of record an Item header introduces.
type ItemType uint32

const (
	ItemTypeNode ItemType = iota
	ItemTypeWay
	ItemTypeRelation
	ItemTypeChangeset
	ItemTypeTagList
	ItemTypeNodeRefList
	ItemTypeMemberList
	ItemTypeArea
)

func (t ItemType) String() string {
	switch t {
	case ItemTypeNode:
		return "node"
	case ItemTypeWay:
		return "way"
	case ItemTypeRelation:
		return "relation"
	case ItemTypeChangeset:
		return "changeset"
	case ItemTypeTagList:
		return "tag-list"
	case ItemTypeNodeRefList:
		return "node-ref-list"
	case ItemTypeMemberList:
		return "member-list"
	case ItemTypeArea:
		return "area"
	default:
		return "unknown"
	}
}

// HeaderSize is the fixed-size prefix every Item begins with: a type tag,
// a total byte length (including the header and any trailing padding),
// and a string-table offset for the creator user name. 16 bytes keeps the
// header itself 8-byte aligned.
const HeaderSize = 16

func putHeader(dst []byte, typ ItemType, length uint32, stringOffset uint32) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(typ))
	binary.LittleEndian.PutUint32(dst[4:8], length)
	binary.LittleEndian.PutUint32(dst[8:12], stringOffset)
	binary.LittleEndian.PutUint32(dst[12:16], 0)
}

func putHeaderLength(dst []byte, length uint32) {
	binary.LittleEndian.PutUint32(dst[4:8], length)
}

// Item is a read-only view of one self-describing record inside a Buffer:
// its header fields plus the payload that follows. The payload is itself
// a preorder flattening of nested Items for list-typed tails (tags, node
// refs, members).
type Item struct {
	Type         ItemType
	StringOffset uint32
	data         []byte // full record, header included, length bytes long
}

// Length returns the total size of the record, header and padding
// included.
func (it Item) Length() int { return len(it.data) }

// Payload returns the bytes following the header, up to the record's
// padded length. Callers that know the item's concrete shape (e.g. a
// Node's fixed attribute block) slice into this themselves; callers
// walking a list-typed item use Children.
func (it Item) Payload() []byte {
	return it.data[HeaderSize:]
}

// Children interprets Payload as a sequence of nested Items.
func (it Item) Children() *ItemIterator {
	return NewItemIterator(it.Payload())
}

func parseItemAt(b []byte) (Item, int) {
	typ := ItemType(binary.LittleEndian.Uint32(b[0:4]))
	length := binary.LittleEndian.Uint32(b[4:8])
	stringOffset := binary.LittleEndian.Uint32(b[8:12])

	return Item{
		Type:         typ,
		StringOffset: stringOffset,
		data:         b[:length],
	}, int(length)
}

// ItemIterator walks a byte slice as a sequence of Items from offset 0.
type ItemIterator struct {
	data   []byte
	offset int
}

// NewItemIterator builds an iterator over data, which must be an exact
// concatenation of whole Item records (as Buffer.Bytes and Item.Children
// guarantee).
func NewItemIterator(data []byte) *ItemIterator {
	return &ItemIterator{data: data}
}

// Next returns the next Item and advances the cursor, or reports false
// when the slice is exhausted.
func (it *ItemIterator) Next() (Item, bool) {
	if it.offset >= len(it.data) {
		return Item{}, false
	}

	item, n := parseItemAt(it.data[it.offset:])
	it.offset += n

	return item, true
}
