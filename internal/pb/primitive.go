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

package pb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// StringTable mirrors osmformat.proto's StringTable message. Index 0 is
// conventionally the empty string.
type StringTable struct {
	S [][]byte
}

func (t *StringTable) marshalInto(b []byte) []byte {
	for _, s := range t.S {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, s)
	}

	return b
}

func unmarshalStringTable(b []byte) (*StringTable, error) {
	t := &StringTable{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrTruncated
		}

		b = b[n:]

		switch num {
		case 1:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return nil, err
			}

			cp := make([]byte, len(v))
			copy(cp, v)
			t.S = append(t.S, cp)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, ErrTruncated
			}

			b = b[n:]
		}
	}

	return t, nil
}

// Info mirrors osmformat.proto's Info message (non-dense per-object
// metadata).
type Info struct {
	Version   int32
	Timestamp int64
	Changeset int64
	Uid       int32
	UserSid   int32
	Visible   *bool
}

func (info *Info) marshalInto(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(info.Version)))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(info.Timestamp))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(info.Changeset))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(info.Uid)))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(info.UserSid)))

	if info.Visible != nil {
		b = protowire.AppendTag(b, 6, protowire.VarintType)
		b = protowire.AppendVarint(b, fromBools([]bool{*info.Visible})[0])
	}

	return b
}

func unmarshalInfo(b []byte) (*Info, error) {
	info := &Info{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrTruncated
		}

		b = b[n:]

		switch num {
		case 1, 2, 3, 4, 5, 6:
			v, n, err := consumeVarintField(b)
			if err != nil {
				return nil, err
			}

			switch num {
			case 1:
				info.Version = int32(v)
			case 2:
				info.Timestamp = int64(v)
			case 3:
				info.Changeset = int64(v)
			case 4:
				info.Uid = int32(v)
			case 5:
				info.UserSid = int32(v)
			case 6:
				vis := v != 0
				info.Visible = &vis
			}

			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, ErrTruncated
			}

			b = b[n:]
		}
	}

	return info, nil
}

// DenseInfo mirrors osmformat.proto's DenseInfo message: parallel,
// delta-encoded arrays, one entry per node in the enclosing DenseNodes
// group.
type DenseInfo struct {
	Version   []int32
	Timestamp []int64
	Changeset []int64
	Uid       []int32
	UserSid   []int32
	Visible   []bool
}

func (di *DenseInfo) marshalInto(b []byte) []byte {
	b = appendPackedVarint(b, 1, fromInt32s(di.Version))
	b = appendPackedVarint(b, 2, fromSint64s(di.Timestamp))
	b = appendPackedVarint(b, 3, fromSint64s(di.Changeset))
	b = appendPackedVarint(b, 4, fromSint32s(di.Uid))
	b = appendPackedVarint(b, 5, fromSint32s(di.UserSid))

	if len(di.Visible) > 0 {
		b = appendPackedVarint(b, 6, fromBools(di.Visible))
	}

	return b
}

func unmarshalDenseInfo(b []byte) (*DenseInfo, error) {
	di := &DenseInfo{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrTruncated
		}

		b = b[n:]

		v, n, err := consumeBytesField(b)
		if err != nil {
			return nil, err
		}

		vals, err := decodePackedVarints(v)
		if err != nil {
			return nil, err
		}

		switch num {
		case 1:
			di.Version = toInt32s(vals)
		case 2:
			di.Timestamp = toSint64s(vals)
		case 3:
			di.Changeset = toSint64s(vals)
		case 4:
			di.Uid = toSint32s(vals)
		case 5:
			di.UserSid = toSint32s(vals)
		case 6:
			di.Visible = toBools(vals)
		default:
			_ = typ
		}

		b = b[n:]
	}

	return di, nil
}

// DenseNodes mirrors osmformat.proto's DenseNodes message.
type DenseNodes struct {
	ID        []int64
	Denseinfo *DenseInfo
	Lat       []int64
	Lon       []int64
	KeysVals  []int32
}

func (dn *DenseNodes) marshalInto(b []byte) []byte {
	b = appendPackedVarint(b, 1, fromSint64s(dn.ID))

	if dn.Denseinfo != nil {
		var db []byte
		db = dn.Denseinfo.marshalInto(db)
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, db)
	}

	b = appendPackedVarint(b, 8, fromSint64s(dn.Lat))
	b = appendPackedVarint(b, 9, fromSint64s(dn.Lon))

	if len(dn.KeysVals) > 0 {
		b = appendPackedVarint(b, 10, fromInt32s(dn.KeysVals))
	}

	return b
}

func unmarshalDenseNodes(b []byte) (*DenseNodes, error) {
	dn := &DenseNodes{}

	for len(b) > 0 {
		num, _, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrTruncated
		}

		b = b[n:]

		if num == 5 {
			v, n, err := consumeBytesField(b)
			if err != nil {
				return nil, err
			}

			di, err := unmarshalDenseInfo(v)
			if err != nil {
				return nil, err
			}

			dn.Denseinfo = di
			b = b[n:]

			continue
		}

		v, n, err := consumeBytesField(b)
		if err != nil {
			return nil, err
		}

		vals, err := decodePackedVarints(v)
		if err != nil {
			return nil, err
		}

		switch num {
		case 1:
			dn.ID = toSint64s(vals)
		case 8:
			dn.Lat = toSint64s(vals)
		case 9:
			dn.Lon = toSint64s(vals)
		case 10:
			dn.KeysVals = toInt32s(vals)
		}

		b = b[n:]
	}

	return dn, nil
}

// Node mirrors osmformat.proto's (non-dense) Node message.
type Node struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Lat  int64
	Lon  int64
}

func (n *Node) marshalInto(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(n.ID))
	b = appendPackedVarint(b, 2, fromUint32s(n.Keys))
	b = appendPackedVarint(b, 3, fromUint32s(n.Vals))

	if n.Info != nil {
		var ib []byte
		ib = n.Info.marshalInto(ib)
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, ib)
	}

	b = protowire.AppendTag(b, 8, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(n.Lat))
	b = protowire.AppendTag(b, 9, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(n.Lon))

	return b
}

func unmarshalNode(b []byte) (*Node, error) {
	n := &Node{}

	for len(b) > 0 {
		num, typ, tn := protowire.ConsumeTag(b)
		if tn < 0 {
			return nil, ErrTruncated
		}

		b = b[tn:]

		switch num {
		case 1, 8, 9:
			v, n2, err := consumeVarintField(b)
			if err != nil {
				return nil, err
			}

			z := protowire.DecodeZigZag(v)

			switch num {
			case 1:
				n.ID = z
			case 8:
				n.Lat = z
			case 9:
				n.Lon = z
			}

			b = b[n2:]
		case 2, 3:
			v, n2, err := consumeBytesField(b)
			if err != nil {
				return nil, err
			}

			vals, err := decodePackedVarints(v)
			if err != nil {
				return nil, err
			}

			if num == 2 {
				n.Keys = toUint32s(vals)
			} else {
				n.Vals = toUint32s(vals)
			}

			b = b[n2:]
		case 4:
			v, n2, err := consumeBytesField(b)
			if err != nil {
				return nil, err
			}

			info, err := unmarshalInfo(v)
			if err != nil {
				return nil, err
			}

			n.Info = info
			b = b[n2:]
		default:
			n2 := protowire.ConsumeFieldValue(num, typ, b)
			if n2 < 0 {
				return nil, ErrTruncated
			}

			b = b[n2:]
		}
	}

	return n, nil
}

// Way mirrors osmformat.proto's Way message.
type Way struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Refs []int64
}

func (w *Way) marshalInto(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(w.ID))
	b = appendPackedVarint(b, 2, fromUint32s(w.Keys))
	b = appendPackedVarint(b, 3, fromUint32s(w.Vals))

	if w.Info != nil {
		var ib []byte
		ib = w.Info.marshalInto(ib)
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, ib)
	}

	b = appendPackedVarint(b, 8, fromSint64s(w.Refs))

	return b
}

func unmarshalWay(b []byte) (*Way, error) {
	w := &Way{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrTruncated
		}

		b = b[n:]

		switch num {
		case 1:
			v, n, err := consumeVarintField(b)
			if err != nil {
				return nil, err
			}

			w.ID = int64(v)
			b = b[n:]
		case 2, 3, 8:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return nil, err
			}

			vals, err := decodePackedVarints(v)
			if err != nil {
				return nil, err
			}

			switch num {
			case 2:
				w.Keys = toUint32s(vals)
			case 3:
				w.Vals = toUint32s(vals)
			case 8:
				w.Refs = toSint64s(vals)
			}

			b = b[n:]
		case 4:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return nil, err
			}

			info, err := unmarshalInfo(v)
			if err != nil {
				return nil, err
			}

			w.Info = info
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, ErrTruncated
			}

			b = b[n:]
		}
	}

	return w, nil
}

// RelationMemberType mirrors osmformat.proto's Relation.MemberType enum.
type RelationMemberType int32

const (
	MemberNode     RelationMemberType = 0
	MemberWay      RelationMemberType = 1
	MemberRelation RelationMemberType = 2
)

// Relation mirrors osmformat.proto's Relation message.
type Relation struct {
	ID       int64
	Keys     []uint32
	Vals     []uint32
	Info     *Info
	RolesSid []int32
	Memids   []int64
	Types    []RelationMemberType
}

func (r *Relation) marshalInto(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.ID))
	b = appendPackedVarint(b, 2, fromUint32s(r.Keys))
	b = appendPackedVarint(b, 3, fromUint32s(r.Vals))

	if r.Info != nil {
		var ib []byte
		ib = r.Info.marshalInto(ib)
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, ib)
	}

	b = appendPackedVarint(b, 8, fromInt32s(r.RolesSid))
	b = appendPackedVarint(b, 9, fromSint64s(r.Memids))

	types := make([]int32, len(r.Types))
	for i, t := range r.Types {
		types[i] = int32(t)
	}

	b = appendPackedVarint(b, 10, fromInt32s(types))

	return b
}

func unmarshalRelation(b []byte) (*Relation, error) {
	r := &Relation{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrTruncated
		}

		b = b[n:]

		switch num {
		case 1:
			v, n, err := consumeVarintField(b)
			if err != nil {
				return nil, err
			}

			r.ID = int64(v)
			b = b[n:]
		case 2, 3, 8, 9, 10:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return nil, err
			}

			vals, err := decodePackedVarints(v)
			if err != nil {
				return nil, err
			}

			switch num {
			case 2:
				r.Keys = toUint32s(vals)
			case 3:
				r.Vals = toUint32s(vals)
			case 8:
				r.RolesSid = toInt32s(vals)
			case 9:
				r.Memids = toSint64s(vals)
			case 10:
				types := toInt32s(vals)
				r.Types = make([]RelationMemberType, len(types))

				for i, t := range types {
					r.Types[i] = RelationMemberType(t)
				}
			}

			b = b[n:]
		case 4:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return nil, err
			}

			info, err := unmarshalInfo(v)
			if err != nil {
				return nil, err
			}

			r.Info = info
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, ErrTruncated
			}

			b = b[n:]
		}
	}

	return r, nil
}

// ChangeSet mirrors osmformat.proto's ChangeSet message. The spec's
// Non-goals exclude changeset *semantics* (no resolution of the edits it
// groups), but the bare entity still round-trips through the pipeline like
// any other primitive group member.
type ChangeSet struct {
	ID int64
}

func (c *ChangeSet) marshalInto(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.ID))

	return b
}

func unmarshalChangeSet(b []byte) (*ChangeSet, error) {
	c := &ChangeSet{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrTruncated
		}

		b = b[n:]

		if num == 1 {
			v, n, err := consumeVarintField(b)
			if err != nil {
				return nil, err
			}

			c.ID = int64(v)
			b = b[n:]

			continue
		}

		n2 := protowire.ConsumeFieldValue(num, typ, b)
		if n2 < 0 {
			return nil, ErrTruncated
		}

		b = b[n2:]
	}

	return c, nil
}

// PrimitiveGroup mirrors osmformat.proto's PrimitiveGroup message: exactly
// one of its members is populated by a well-formed block.
type PrimitiveGroup struct {
	Nodes      []*Node
	Dense      *DenseNodes
	Ways       []*Way
	Relations  []*Relation
	Changesets []*ChangeSet
}

func (g *PrimitiveGroup) marshalInto(b []byte) []byte {
	for _, n := range g.Nodes {
		var nb []byte
		nb = n.marshalInto(nb)
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, nb)
	}

	if g.Dense != nil {
		var db []byte
		db = g.Dense.marshalInto(db)
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, db)
	}

	for _, w := range g.Ways {
		var wb []byte
		wb = w.marshalInto(wb)
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, wb)
	}

	for _, r := range g.Relations {
		var rb []byte
		rb = r.marshalInto(rb)
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, rb)
	}

	for _, c := range g.Changesets {
		var cb []byte
		cb = c.marshalInto(cb)
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, cb)
	}

	return b
}

func unmarshalPrimitiveGroup(b []byte) (*PrimitiveGroup, error) {
	g := &PrimitiveGroup{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrTruncated
		}

		b = b[n:]

		v, n, err := consumeBytesField(b)
		if err != nil {
			return nil, err
		}

		switch num {
		case 1:
			el, err := unmarshalNode(v)
			if err != nil {
				return nil, err
			}

			g.Nodes = append(g.Nodes, el)
		case 2:
			el, err := unmarshalDenseNodes(v)
			if err != nil {
				return nil, err
			}

			g.Dense = el
		case 3:
			el, err := unmarshalWay(v)
			if err != nil {
				return nil, err
			}

			g.Ways = append(g.Ways, el)
		case 4:
			el, err := unmarshalRelation(v)
			if err != nil {
				return nil, err
			}

			g.Relations = append(g.Relations, el)
		case 5:
			el, err := unmarshalChangeSet(v)
			if err != nil {
				return nil, err
			}

			g.Changesets = append(g.Changesets, el)
		default:
			_ = typ
		}

		b = b[n:]
	}

	if g.Nodes == nil && g.Dense == nil && g.Ways == nil && g.Relations == nil && g.Changesets == nil {
		return nil, fmt.Errorf("pb: primitive group has no recognized member set")
	}

	return g, nil
}

// PrimitiveBlock mirrors osmformat.proto's PrimitiveBlock message.
type PrimitiveBlock struct {
	Stringtable     *StringTable
	Primitivegroup  []*PrimitiveGroup
	Granularity     int32
	DateGranularity int32
	LatOffset       int64
	LonOffset       int64
}

// Default field values per osmformat.proto.
const (
	DefaultGranularity     int32 = 100
	DefaultDateGranularity int32 = 1000
)

// Marshal encodes the PrimitiveBlock.
func (blk *PrimitiveBlock) Marshal() ([]byte, error) {
	var b []byte

	var stb []byte
	if blk.Stringtable != nil {
		stb = blk.Stringtable.marshalInto(stb)
	}

	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, stb)

	for _, g := range blk.Primitivegroup {
		var gb []byte
		gb = g.marshalInto(gb)
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, gb)
	}

	if blk.Granularity != 0 && blk.Granularity != DefaultGranularity {
		b = protowire.AppendTag(b, 17, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(blk.Granularity)))
	}

	if blk.DateGranularity != 0 && blk.DateGranularity != DefaultDateGranularity {
		b = protowire.AppendTag(b, 18, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(blk.DateGranularity)))
	}

	if blk.LatOffset != 0 {
		b = protowire.AppendTag(b, 19, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(blk.LatOffset))
	}

	if blk.LonOffset != 0 {
		b = protowire.AppendTag(b, 20, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(blk.LonOffset))
	}

	return b, nil
}

// Unmarshal decodes a PrimitiveBlock, applying osmformat.proto's defaults
// (granularity=100, date_granularity=1000) for fields the wire form omits.
func (blk *PrimitiveBlock) Unmarshal(b []byte) error {
	blk.Granularity = DefaultGranularity
	blk.DateGranularity = DefaultDateGranularity

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ErrTruncated
		}

		b = b[n:]

		switch num {
		case 1:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return err
			}

			st, err := unmarshalStringTable(v)
			if err != nil {
				return err
			}

			blk.Stringtable = st
			b = b[n:]
		case 2:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return err
			}

			g, err := unmarshalPrimitiveGroup(v)
			if err != nil {
				return err
			}

			blk.Primitivegroup = append(blk.Primitivegroup, g)
			b = b[n:]
		case 17, 18, 19, 20:
			v, n, err := consumeVarintField(b)
			if err != nil {
				return err
			}

			switch num {
			case 17:
				blk.Granularity = int32(v)
			case 18:
				blk.DateGranularity = int32(v)
			case 19:
				blk.LatOffset = int64(v)
			case 20:
				blk.LonOffset = int64(v)
			}

			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return ErrTruncated
			}

			b = b[n:]
		}
	}

	if blk.Stringtable == nil {
		return fmt.Errorf("pb: primitive block missing required stringtable")
	}

	return nil
}
