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

package codec

import (
	"go.osmpbf.dev/pbf/internal/core"
	"go.osmpbf.dev/pbf/internal/pb"
)

// EntityLimit is the OSM PBF convention for the maximum number of items
// per PrimitiveGroup; the writer pipeline flushes its staging buffer
// before exceeding it.
const EntityLimit = 8000

// stringTable interns strings as they're first seen, assigning index 0
// to the empty string per the wire format's convention.
type stringTable struct {
	index map[string]int32
	s     [][]byte
}

func newStringTable() *stringTable {
	return &stringTable{index: map[string]int32{"": 0}, s: [][]byte{{}}}
}

func (t *stringTable) intern(s string) int32 {
	if idx, ok := t.index[s]; ok {
		return idx
	}

	idx := int32(len(t.s))
	t.s = append(t.s, []byte(s))
	t.index[s] = idx

	return idx
}

// EncodeBlock encodes every Item in buf into a single PrimitiveBlock,
// grouping items by type (nodes as a DenseNodes group, by default) and
// building the block's string table by interning every string seen.
func EncodeBlock(buf *core.Buffer, granularity, dateGranularity int32) (*pb.PrimitiveBlock, error) {
	if granularity == 0 {
		granularity = pb.DefaultGranularity
	}

	if dateGranularity == 0 {
		dateGranularity = pb.DefaultDateGranularity
	}

	dateFactor := int64(dateGranularity) / 1000

	st := newStringTable()

	var (
		nodes      []core.Item
		ways       []core.Item
		relations  []core.Item
		changesets []core.Item
	)

	it := buf.Items()

	for {
		item, ok := it.Next()
		if !ok {
			break
		}

		switch item.Type {
		case core.ItemTypeNode:
			nodes = append(nodes, item)
		case core.ItemTypeWay:
			ways = append(ways, item)
		case core.ItemTypeRelation:
			relations = append(relations, item)
		case core.ItemTypeChangeset:
			changesets = append(changesets, item)
		}
	}

	var groups []*pb.PrimitiveGroup

	if len(nodes) > 0 {
		dense, err := encodeDenseNodes(nodes, st, int64(granularity), dateFactor)
		if err != nil {
			return nil, err
		}

		groups = append(groups, &pb.PrimitiveGroup{Dense: dense})
	}

	if len(ways) > 0 {
		g, err := encodeWays(ways, st, dateFactor)
		if err != nil {
			return nil, err
		}

		groups = append(groups, &pb.PrimitiveGroup{Ways: g})
	}

	if len(relations) > 0 {
		g, err := encodeRelations(relations, st, dateFactor)
		if err != nil {
			return nil, err
		}

		groups = append(groups, &pb.PrimitiveGroup{Relations: g})
	}

	if len(changesets) > 0 {
		g := encodeChangesets(changesets)
		groups = append(groups, &pb.PrimitiveGroup{Changesets: g})
	}

	return &pb.PrimitiveBlock{
		Stringtable:     &pb.StringTable{S: st.s},
		Primitivegroup:  groups,
		Granularity:     granularity,
		DateGranularity: dateGranularity,
	}, nil
}

func encodeCoord(v int32, granularity int64) int64 {
	return int64(v) * 100 / granularity
}

func encodeInfo(a attrs, st *stringTable, dateFactor int64) *pb.Info {
	if !a.HasInfo {
		return nil
	}

	var ts int64
	if dateFactor != 0 {
		ts = a.Timestamp / dateFactor
	}

	visible := a.Visible

	return &pb.Info{
		Version:   a.Version,
		Timestamp: ts,
		Changeset: a.Changeset,
		Uid:       a.UID,
		UserSid:   st.intern(a.User),
		Visible:   &visible,
	}
}

func encodeDenseNodes(items []core.Item, st *stringTable, granularity, dateFactor int64) (*pb.DenseNodes, error) {
	dn := &pb.DenseNodes{
		ID:  make([]int64, len(items)),
		Lat: make([]int64, len(items)),
		Lon: make([]int64, len(items)),
	}

	di := &pb.DenseInfo{
		Version:   make([]int32, len(items)),
		Timestamp: make([]int64, len(items)),
		Changeset: make([]int64, len(items)),
		Uid:       make([]int32, len(items)),
		UserSid:   make([]int32, len(items)),
		Visible:   make([]bool, len(items)),
	}

	hasInfo := false

	var prevID, prevLon, prevLat int64
	var prevTS, prevCS, prevUID, prevUser int64

	var keysVals []int32

	for i, item := range items {
		payload := item.Payload()
		a, n := getAttrs(payload)
		lon, lat := getCoords(payload[n:])

		tags, err := tagsFromChildren(item.Children())
		if err != nil {
			return nil, err
		}

		dn.ID[i] = a.ID - prevID
		prevID = a.ID

		lonRaw := encodeCoord(lon, granularity)
		latRaw := encodeCoord(lat, granularity)
		dn.Lon[i] = lonRaw - prevLon
		prevLon = lonRaw
		dn.Lat[i] = latRaw - prevLat
		prevLat = latRaw

		if a.HasInfo {
			hasInfo = true
		}

		var ts int64
		if dateFactor != 0 {
			ts = a.Timestamp / dateFactor
		}

		userSid := int64(st.intern(a.User))

		di.Version[i] = a.Version
		di.Timestamp[i] = ts - prevTS
		prevTS = ts
		di.Changeset[i] = a.Changeset - prevCS
		prevCS = a.Changeset
		di.Uid[i] = a.UID - int32(prevUID)
		prevUID = int64(a.UID)
		di.UserSid[i] = int32(userSid - prevUser)
		prevUser = userSid
		di.Visible[i] = a.Visible

		for k, v := range tags {
			keysVals = append(keysVals, st.intern(k), st.intern(v))
		}

		keysVals = append(keysVals, 0)
	}

	dn.KeysVals = keysVals

	if hasInfo {
		dn.Denseinfo = di
	}

	return dn, nil
}

func encodeWays(items []core.Item, st *stringTable, dateFactor int64) ([]*pb.Way, error) {
	out := make([]*pb.Way, len(items))

	for i, item := range items {
		payload := item.Payload()
		a, _ := getAttrs(payload)

		var (
			refs []int64
			tags map[string]string
		)

		children := item.Children()

		for {
			child, ok := children.Next()
			if !ok {
				break
			}

			switch child.Type {
			case core.ItemTypeNodeRefList:
				r, err := getNodeRefList(child.Payload())
				if err != nil {
					return nil, err
				}

				refs = r
			case core.ItemTypeTagList:
				t, err := getTagList(child.Payload())
				if err != nil {
					return nil, err
				}

				tags = t
			}
		}

		keys, vals := encodeTags(tags, st)

		deltas := make([]int64, len(refs))

		var prev int64
		for j, r := range refs {
			deltas[j] = r - prev
			prev = r
		}

		out[i] = &pb.Way{
			ID:   a.ID,
			Keys: keys,
			Vals: vals,
			Info: encodeInfo(a, st, dateFactor),
			Refs: deltas,
		}
	}

	return out, nil
}

func encodeRelations(items []core.Item, st *stringTable, dateFactor int64) ([]*pb.Relation, error) {
	out := make([]*pb.Relation, len(items))

	for i, item := range items {
		payload := item.Payload()
		a, _ := getAttrs(payload)

		var (
			members []member
			tags    map[string]string
		)

		children := item.Children()

		for {
			child, ok := children.Next()
			if !ok {
				break
			}

			switch child.Type {
			case core.ItemTypeMemberList:
				m, err := getMemberList(child.Payload())
				if err != nil {
					return nil, err
				}

				members = m
			case core.ItemTypeTagList:
				t, err := getTagList(child.Payload())
				if err != nil {
					return nil, err
				}

				tags = t
			}
		}

		keys, vals := encodeTags(tags, st)

		rolesSid := make([]int32, len(members))
		memids := make([]int64, len(members))
		types := make([]pb.RelationMemberType, len(members))

		var prev int64
		for j, m := range members {
			rolesSid[j] = st.intern(m.Role)
			memids[j] = m.ID - prev
			prev = m.ID
			types[j] = pb.RelationMemberType(m.Type)
		}

		out[i] = &pb.Relation{
			ID:       a.ID,
			Keys:     keys,
			Vals:     vals,
			Info:     encodeInfo(a, st, dateFactor),
			RolesSid: rolesSid,
			Memids:   memids,
			Types:    types,
		}
	}

	return out, nil
}

func encodeChangesets(items []core.Item) []*pb.ChangeSet {
	out := make([]*pb.ChangeSet, len(items))

	for i, item := range items {
		a, _ := getAttrs(item.Payload())
		out[i] = &pb.ChangeSet{ID: a.ID}
	}

	return out
}

func encodeTags(tags map[string]string, st *stringTable) ([]uint32, []uint32) {
	if len(tags) == 0 {
		return nil, nil
	}

	keys := make([]uint32, 0, len(tags))
	vals := make([]uint32, 0, len(tags))

	for k, v := range tags {
		keys = append(keys, uint32(st.intern(k)))
		vals = append(vals, uint32(st.intern(v)))
	}

	return keys, vals
}
