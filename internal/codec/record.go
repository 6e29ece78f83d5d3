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

// Package codec decodes a PrimitiveBlock into a core.Buffer of Items and
// encodes a core.Buffer back into a PrimitiveBlock, including the
// DenseNodes packing, string table interning, and delta arithmetic the
// wire format requires.
//
// Items carry their variable-length tails (tags, node refs, member
// lists) inline: unlike a full string-table offset scheme, tag keys,
// values, user names, and member roles are embedded directly in the
// payload as length-prefixed byte spans. This keeps a Buffer
// self-contained without a companion string arena, at the cost of
// duplicating repeated strings across items in the same block — an
// acceptable trade given the block, not the item, is the unit of
// parallel work.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"go.osmpbf.dev/pbf/internal/xerr"
)

// SentinelCoordinate marks an undefined Location component.
const SentinelCoordinate = math.MinInt32

// attrs is the fixed-size block of OSM object metadata common to
// Node/Way/Relation/Changeset items.
type attrs struct {
	ID        int64
	Version   int32
	UID       int32
	Changeset int64
	Timestamp int64 // milliseconds since epoch
	Visible   bool
	HasInfo   bool
	User      string
}

const attrsFixedSize = 8 + 4 + 4 + 8 + 8 + 1 + 1 + 2 // + 2-byte user length prefix

func putAttrs(a attrs) []byte {
	b := make([]byte, attrsFixedSize+len(a.User))
	binary.LittleEndian.PutUint64(b[0:8], uint64(a.ID))
	binary.LittleEndian.PutUint32(b[8:12], uint32(a.Version))
	binary.LittleEndian.PutUint32(b[12:16], uint32(a.UID))
	binary.LittleEndian.PutUint64(b[16:24], uint64(a.Changeset))
	binary.LittleEndian.PutUint64(b[24:32], uint64(a.Timestamp))

	if a.Visible {
		b[32] = 1
	}

	if a.HasInfo {
		b[33] = 1
	}

	binary.LittleEndian.PutUint16(b[34:36], uint16(len(a.User)))
	copy(b[36:], a.User)

	return b
}

func getAttrs(b []byte) (attrs, int) {
	userLen := int(binary.LittleEndian.Uint16(b[34:36]))

	a := attrs{
		ID:        int64(binary.LittleEndian.Uint64(b[0:8])),
		Version:   int32(binary.LittleEndian.Uint32(b[8:12])),
		UID:       int32(binary.LittleEndian.Uint32(b[12:16])),
		Changeset: int64(binary.LittleEndian.Uint64(b[16:24])),
		Timestamp: int64(binary.LittleEndian.Uint64(b[24:32])),
		Visible:   b[32] != 0,
		HasInfo:   b[33] != 0,
		User:      string(b[36 : 36+userLen]),
	}

	return a, attrsFixedSize + userLen
}

// putCoords appends the two scaled 10^7 lon/lat components Node items
// carry after attrs.
func putCoords(lon, lat int32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], uint32(lon))
	binary.LittleEndian.PutUint32(b[4:8], uint32(lat))

	return b
}

func getCoords(b []byte) (lon, lat int32) {
	lon = int32(binary.LittleEndian.Uint32(b[0:4]))
	lat = int32(binary.LittleEndian.Uint32(b[4:8]))

	return lon, lat
}

func putTagList(tags map[string]string) []byte {
	var out []byte

	for k, v := range tags {
		out = appendLenPrefixed(out, k)
		out = appendLenPrefixed(out, v)
	}

	return out
}

func getTagList(b []byte) (map[string]string, error) {
	if len(b) == 0 {
		return nil, nil
	}

	tags := make(map[string]string)

	for len(b) > 0 {
		k, n, err := readLenPrefixed(b)
		if err != nil {
			return nil, err
		}

		b = b[n:]

		v, n, err := readLenPrefixed(b)
		if err != nil {
			return nil, err
		}

		b = b[n:]
		tags[k] = v
	}

	return tags, nil
}

func putNodeRefList(refs []int64) []byte {
	out := make([]byte, 8*len(refs))
	for i, id := range refs {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], uint64(id))
	}

	return out
}

func getNodeRefList(b []byte) ([]int64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: node-ref-list payload not a multiple of 8 bytes", xerr.ErrFormat)
	}

	refs := make([]int64, len(b)/8)
	for i := range refs {
		refs[i] = int64(binary.LittleEndian.Uint64(b[i*8 : i*8+8]))
	}

	return refs, nil
}

// memberType is the member kind stored in a member record; entities.go
// converts it to and from model.EntityType by plain numeric conversion.
type memberType uint8

func putMemberList(members []member) []byte {
	var out []byte

	for _, m := range members {
		rec := make([]byte, 9)
		rec[0] = byte(m.Type)
		binary.LittleEndian.PutUint64(rec[1:9], uint64(m.ID))
		out = append(out, rec...)
		out = appendLenPrefixed(out, m.Role)
	}

	return out
}

type member struct {
	Type memberType
	ID   int64
	Role string
}

func getMemberList(b []byte) ([]member, error) {
	var members []member

	for len(b) > 0 {
		if len(b) < 9 {
			return nil, fmt.Errorf("%w: truncated member record", xerr.ErrFormat)
		}

		m := member{
			Type: memberType(b[0]),
			ID:   int64(binary.LittleEndian.Uint64(b[1:9])),
		}
		b = b[9:]

		role, n, err := readLenPrefixed(b)
		if err != nil {
			return nil, err
		}

		m.Role = role
		b = b[n:]
		members = append(members, m)
	}

	return members, nil
}

func appendLenPrefixed(dst []byte, s string) []byte {
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(s)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, s...)

	return dst
}

func readLenPrefixed(b []byte) (string, int, error) {
	if len(b) < 2 {
		return "", 0, fmt.Errorf("%w: truncated length-prefixed string", xerr.ErrFormat)
	}

	n := int(binary.LittleEndian.Uint16(b[0:2]))
	if len(b) < 2+n {
		return "", 0, fmt.Errorf("%w: truncated length-prefixed string", xerr.ErrFormat)
	}

	return string(b[2 : 2+n]), 2 + n, nil
}
