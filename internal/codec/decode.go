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
	"fmt"

	"go.osmpbf.dev/pbf/internal/core"
	"go.osmpbf.dev/pbf/internal/pb"
	"go.osmpbf.dev/pbf/internal/xerr"
	"go.osmpbf.dev/pbf/model"
)

// maxLonE7/maxLatE7 bound decoded coordinates to the plausible range,
// expressed in the same ten-millionths-of-a-degree fixed point the wire
// format itself uses.
var (
	maxLonE7 = int64(model.MaxLon.E7())
	maxLatE7 = int64(model.MaxLat.E7())
)

// blockContext carries the per-block constants every group decode needs.
type blockContext struct {
	strings     [][]byte
	granularity int64
	dateFactor  int64
	latOffset   int64
	lonOffset   int64
}

func newBlockContext(blk *pb.PrimitiveBlock) (*blockContext, error) {
	if blk.DateGranularity < 0 {
		return nil, fmt.Errorf("%w: negative date_granularity", xerr.ErrFormat)
	}

	factor := int64(blk.DateGranularity) / 1000
	if blk.DateGranularity != 0 && factor == 0 {
		return nil, fmt.Errorf("%w: date_granularity %d truncates to a zero millisecond factor", xerr.ErrFormat, blk.DateGranularity)
	}

	var strings [][]byte
	if blk.Stringtable != nil {
		strings = blk.Stringtable.S
	}

	return &blockContext{
		strings:     strings,
		granularity: int64(blk.Granularity),
		dateFactor:  factor,
		latOffset:   blk.LatOffset,
		lonOffset:   blk.LonOffset,
	}, nil
}

func (c *blockContext) str(idx int32) (string, error) {
	if idx < 0 || int(idx) >= len(c.strings) {
		return "", fmt.Errorf("%w: string table index %d out of range [0,%d)", xerr.ErrFormat, idx, len(c.strings))
	}

	return string(c.strings[idx]), nil
}

func (c *blockContext) coord(raw, offset int64) int32 {
	return int32((raw*c.granularity + offset) / 100)
}

func (c *blockContext) timestampMs(raw int64) int64 {
	return raw * c.dateFactor
}

func checkCoordRange(lon, lat int32) error {
	if lon == SentinelCoordinate || lat == SentinelCoordinate {
		return nil
	}

	if int64(lon) > maxLonE7 || int64(lon) < -maxLonE7 {
		return fmt.Errorf("%w: longitude %d out of plausible range", xerr.ErrFormat, lon)
	}

	if int64(lat) > maxLatE7 || int64(lat) < -maxLatE7 {
		return fmt.Errorf("%w: latitude %d out of plausible range", xerr.ErrFormat, lat)
	}

	return nil
}

// DecodeBlock decodes every group of blk into a freshly allocated,
// auto-growing Buffer. Groups whose type is excluded from types are
// skipped entirely, without allocation.
func DecodeBlock(blk *pb.PrimitiveBlock, types model.ReadTypes) (*core.Buffer, error) {
	ctx, err := newBlockContext(blk)
	if err != nil {
		return nil, err
	}

	buf := core.NewBuffer(core.DefaultBufferCapacity, true)

	for _, g := range blk.Primitivegroup {
		switch {
		case g.Dense != nil:
			if !types.Has(model.ReadNodes) {
				continue
			}

			if err := decodeDenseNodes(buf, ctx, g.Dense); err != nil {
				return nil, err
			}
		case g.Nodes != nil:
			if !types.Has(model.ReadNodes) {
				continue
			}

			for _, n := range g.Nodes {
				if err := decodeNode(buf, ctx, n); err != nil {
					return nil, err
				}
			}
		case g.Ways != nil:
			if !types.Has(model.ReadWays) {
				continue
			}

			for _, w := range g.Ways {
				if err := decodeWay(buf, ctx, w); err != nil {
					return nil, err
				}
			}
		case g.Relations != nil:
			if !types.Has(model.ReadRelations) {
				continue
			}

			for _, r := range g.Relations {
				if err := decodeRelation(buf, ctx, r); err != nil {
					return nil, err
				}
			}
		case g.Changesets != nil:
			if !types.Has(model.ReadChangesets) {
				continue
			}

			for _, c := range g.Changesets {
				if err := decodeChangeset(buf, ctx, c); err != nil {
					return nil, err
				}
			}
		default:
			return nil, fmt.Errorf("%w: primitive group has no recognized member set", xerr.ErrFormat)
		}
	}

	return buf, nil
}

func decodeDenseNodes(buf *core.Buffer, ctx *blockContext, dn *pb.DenseNodes) error {
	var (
		id, lon, lat               int64
		timestamp, changeset, uid2 int64
		userSid                    int32
	)

	tagCursor := 0

	for i := range dn.ID {
		id += dn.ID[i]
		lon += dn.Lon[i]
		lat += dn.Lat[i]

		a := attrs{ID: id}

		if dn.Denseinfo != nil {
			if i < len(dn.Denseinfo.Timestamp) {
				timestamp += dn.Denseinfo.Timestamp[i]
			}

			if i < len(dn.Denseinfo.Changeset) {
				changeset += dn.Denseinfo.Changeset[i]
			}

			if i < len(dn.Denseinfo.Uid) {
				uid2 += int64(dn.Denseinfo.Uid[i])
			}

			if i < len(dn.Denseinfo.UserSid) {
				userSid += dn.Denseinfo.UserSid[i]
			}

			visible := true
			if i < len(dn.Denseinfo.Visible) {
				visible = dn.Denseinfo.Visible[i]
			}

			user, err := ctx.str(userSid)
			if err != nil {
				return err
			}

			a.Version = 0
			if i < len(dn.Denseinfo.Version) {
				a.Version = dn.Denseinfo.Version[i]
			}

			a.UID = int32(uid2)
			a.Changeset = changeset
			a.Timestamp = ctx.timestampMs(timestamp)
			a.Visible = visible
			a.HasInfo = true
			a.User = user
		} else {
			a.Visible = true
		}

		lonScaled := ctx.coord(lon, ctx.lonOffset)
		latScaled := ctx.coord(lat, ctx.latOffset)

		if err := checkCoordRange(lonScaled, latScaled); err != nil {
			return err
		}

		tags, n, err := decodeDenseTagCursor(ctx, dn.KeysVals, tagCursor)
		if err != nil {
			return err
		}

		tagCursor = n

		if err := writeNode(buf, a, lonScaled, latScaled, tags); err != nil {
			return err
		}
	}

	return nil
}

// decodeDenseTagCursor reads one node's worth of k,v,...,0-terminated
// indices starting at cursor, threading the stateful position through
// calls the way the source's DenseNodes decode does.
func decodeDenseTagCursor(ctx *blockContext, keysVals []int32, cursor int) (map[string]string, int, error) {
	if len(keysVals) == 0 {
		return nil, cursor, nil
	}

	var tags map[string]string

	for cursor < len(keysVals) {
		k := keysVals[cursor]
		if k == 0 {
			cursor++

			break
		}

		if cursor+1 >= len(keysVals) {
			return nil, cursor, fmt.Errorf("%w: dense tag stream truncated", xerr.ErrFormat)
		}

		v := keysVals[cursor+1]

		key, err := ctx.str(k)
		if err != nil {
			return nil, cursor, err
		}

		val, err := ctx.str(v)
		if err != nil {
			return nil, cursor, err
		}

		if tags == nil {
			tags = make(map[string]string)
		}

		tags[key] = val
		cursor += 2
	}

	return tags, cursor, nil
}

func decodeInfo(ctx *blockContext, info *pb.Info) (attrs, error) {
	a := attrs{Visible: true}

	if info == nil {
		return a, nil
	}

	user, err := ctx.str(info.UserSid)
	if err != nil {
		return attrs{}, err
	}

	a.Version = info.Version
	a.UID = info.Uid
	a.Changeset = info.Changeset
	a.Timestamp = ctx.timestampMs(info.Timestamp)
	a.HasInfo = true
	a.User = user

	if info.Visible != nil {
		a.Visible = *info.Visible
	} else {
		a.Visible = true
	}

	return a, nil
}

func decodeTags(ctx *blockContext, keys, vals []uint32) (map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	if len(keys) != len(vals) {
		return nil, fmt.Errorf("%w: mismatched keys/vals length", xerr.ErrFormat)
	}

	tags := make(map[string]string, len(keys))

	for i := range keys {
		k, err := ctx.str(int32(keys[i]))
		if err != nil {
			return nil, err
		}

		v, err := ctx.str(int32(vals[i]))
		if err != nil {
			return nil, err
		}

		tags[k] = v
	}

	return tags, nil
}

func decodeNode(buf *core.Buffer, ctx *blockContext, n *pb.Node) error {
	a, err := decodeInfo(ctx, n.Info)
	if err != nil {
		return err
	}

	a.ID = n.ID

	tags, err := decodeTags(ctx, n.Keys, n.Vals)
	if err != nil {
		return err
	}

	lon := ctx.coord(n.Lon, ctx.lonOffset)
	lat := ctx.coord(n.Lat, ctx.latOffset)

	if err := checkCoordRange(lon, lat); err != nil {
		return err
	}

	return writeNode(buf, a, lon, lat, tags)
}

func decodeWay(buf *core.Buffer, ctx *blockContext, w *pb.Way) error {
	a, err := decodeInfo(ctx, w.Info)
	if err != nil {
		return err
	}

	a.ID = w.ID

	tags, err := decodeTags(ctx, w.Keys, w.Vals)
	if err != nil {
		return err
	}

	refs := make([]int64, len(w.Refs))

	var ref int64
	for i, d := range w.Refs {
		ref += d
		refs[i] = ref
	}

	return writeWay(buf, a, refs, tags)
}

func decodeRelation(buf *core.Buffer, ctx *blockContext, r *pb.Relation) error {
	a, err := decodeInfo(ctx, r.Info)
	if err != nil {
		return err
	}

	a.ID = r.ID

	tags, err := decodeTags(ctx, r.Keys, r.Vals)
	if err != nil {
		return err
	}

	if len(r.RolesSid) != len(r.Memids) || len(r.Memids) != len(r.Types) {
		return fmt.Errorf("%w: relation member arrays have mismatched lengths", xerr.ErrFormat)
	}

	members := make([]member, len(r.Memids))

	var memid int64
	for i := range r.Memids {
		memid += r.Memids[i]

		role, err := ctx.str(r.RolesSid[i])
		if err != nil {
			return err
		}

		members[i] = member{
			Type: memberType(r.Types[i]),
			ID:   memid,
			Role: role,
		}
	}

	return writeRelation(buf, a, members, tags)
}

func decodeChangeset(buf *core.Buffer, ctx *blockContext, c *pb.ChangeSet) error {
	a := attrs{ID: c.ID}

	return writeChangeset(buf, a)
}
