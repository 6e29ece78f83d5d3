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
	"time"

	"go.osmpbf.dev/pbf/internal/core"
	"go.osmpbf.dev/pbf/internal/xerr"
	"go.osmpbf.dev/pbf/model"
)

func attrsToInfo(a attrs) *model.Info {
	if !a.HasInfo {
		return nil
	}

	return &model.Info{
		Version:   a.Version,
		UID:       model.UID(a.UID),
		Timestamp: time.UnixMilli(a.Timestamp).UTC(),
		Changeset: a.Changeset,
		User:      a.User,
		Visible:   a.Visible,
	}
}

func infoToAttrs(id int64, info *model.Info) attrs {
	if info == nil {
		return attrs{ID: id, Visible: true}
	}

	return attrs{
		ID:        id,
		Version:   info.Version,
		UID:       int32(info.UID),
		Changeset: info.Changeset,
		Timestamp: info.Timestamp.UnixMilli(),
		Visible:   info.Visible,
		HasInfo:   true,
		User:      info.User,
	}
}

// BufferEntities walks every Item in buf and converts it to the
// corresponding model.Entity, preserving Buffer order.
func BufferEntities(buf *core.Buffer) ([]model.Entity, error) {
	var out []model.Entity

	it := buf.Items()

	for {
		item, ok := it.Next()
		if !ok {
			break
		}

		entity, err := itemToEntity(item)
		if err != nil {
			return nil, err
		}

		out = append(out, entity)
	}

	return out, nil
}

func itemToEntity(item core.Item) (model.Entity, error) {
	payload := item.Payload()

	switch item.Type {
	case core.ItemTypeNode:
		a, n := getAttrs(payload)
		lon, lat := getCoords(payload[n:])

		tags, err := tagsFromChildren(item.Children())
		if err != nil {
			return nil, err
		}

		return model.Node{
			ID:   model.ID(a.ID),
			Tags: tags,
			Info: attrsToInfo(a),
			Lon:  model.Degrees(lon) / model.TenMillionths,
			Lat:  model.Degrees(lat) / model.TenMillionths,
		}, nil
	case core.ItemTypeWay:
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

		ids := make([]model.ID, len(refs))
		for i, r := range refs {
			ids[i] = model.ID(r)
		}

		return model.Way{
			ID:      model.ID(a.ID),
			Tags:    tags,
			Info:    attrsToInfo(a),
			NodeIDs: ids,
		}, nil
	case core.ItemTypeRelation:
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

		modelMembers := make([]model.Member, len(members))
		for i, m := range members {
			modelMembers[i] = model.Member{
				ID:   model.ID(m.ID),
				Type: model.EntityType(m.Type),
				Role: m.Role,
			}
		}

		return model.Relation{
			ID:      model.ID(a.ID),
			Tags:    tags,
			Info:    attrsToInfo(a),
			Members: modelMembers,
		}, nil
	case core.ItemTypeChangeset:
		a, _ := getAttrs(payload)

		return model.Changeset{ID: model.ID(a.ID), Info: attrsToInfo(a)}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected top-level item type %s", xerr.ErrFormat, item.Type)
	}
}

func tagsFromChildren(children *core.ItemIterator) (map[string]string, error) {
	for {
		child, ok := children.Next()
		if !ok {
			return nil, nil
		}

		if child.Type == core.ItemTypeTagList {
			return getTagList(child.Payload())
		}
	}
}

// EntitiesToBuffer builds a fresh Buffer containing one Item per entity,
// in order.
func EntitiesToBuffer(entities []model.Entity) (*core.Buffer, error) {
	buf := core.NewBuffer(core.DefaultBufferCapacity, true)

	for _, e := range entities {
		if err := appendEntity(buf, e); err != nil {
			return nil, err
		}
	}

	return buf, nil
}

func appendEntity(buf *core.Buffer, e model.Entity) error {
	switch v := e.(type) {
	case model.Node:
		a := infoToAttrs(int64(v.ID), v.Info)

		lonScaled := int32(v.Lon * model.TenMillionths)
		latScaled := int32(v.Lat * model.TenMillionths)

		return writeNode(buf, a, lonScaled, latScaled, v.Tags)
	case model.Way:
		a := infoToAttrs(int64(v.ID), v.Info)
		refs := make([]int64, len(v.NodeIDs))

		for i, id := range v.NodeIDs {
			refs[i] = int64(id)
		}

		return writeWay(buf, a, refs, v.Tags)
	case model.Relation:
		a := infoToAttrs(int64(v.ID), v.Info)
		members := make([]member, len(v.Members))

		for i, m := range v.Members {
			members[i] = member{Type: memberType(m.Type), ID: int64(m.ID), Role: m.Role}
		}

		return writeRelation(buf, a, members, v.Tags)
	case model.Changeset:
		a := infoToAttrs(int64(v.ID), v.Info)

		return writeChangeset(buf, a)
	default:
		return fmt.Errorf("%w: unsupported entity type %T", xerr.ErrFormat, e)
	}
}
