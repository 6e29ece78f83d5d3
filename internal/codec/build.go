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

import "go.osmpbf.dev/pbf/internal/core"

func abortOn(bld *core.Builder, err error) error {
	if err != nil {
		bld.Abort()
	}

	return err
}

func appendTagList(parent *core.Builder, tags map[string]string) error {
	if len(tags) == 0 {
		return nil
	}

	child, err := parent.NewChild(core.ItemTypeTagList, 0)
	if err != nil {
		return err
	}

	if err := child.Append(putTagList(tags)); err != nil {
		return abortOn(child, err)
	}

	return child.Finish()
}

func writeNode(buf *core.Buffer, a attrs, lon, lat int32, tags map[string]string) error {
	bld, err := core.NewBuilder(buf, core.ItemTypeNode, 0)
	if err != nil {
		return err
	}

	if err := bld.Append(putAttrs(a)); err != nil {
		return abortOn(bld, err)
	}

	if err := bld.Append(putCoords(lon, lat)); err != nil {
		return abortOn(bld, err)
	}

	if err := appendTagList(bld, tags); err != nil {
		return abortOn(bld, err)
	}

	return bld.Finish()
}

func writeWay(buf *core.Buffer, a attrs, refs []int64, tags map[string]string) error {
	bld, err := core.NewBuilder(buf, core.ItemTypeWay, 0)
	if err != nil {
		return err
	}

	if err := bld.Append(putAttrs(a)); err != nil {
		return abortOn(bld, err)
	}

	refChild, err := bld.NewChild(core.ItemTypeNodeRefList, 0)
	if err != nil {
		return abortOn(bld, err)
	}

	if err := refChild.Append(putNodeRefList(refs)); err != nil {
		return abortOn(refChild, err)
	}

	if err := refChild.Finish(); err != nil {
		return abortOn(bld, err)
	}

	if err := appendTagList(bld, tags); err != nil {
		return abortOn(bld, err)
	}

	return bld.Finish()
}

func writeRelation(buf *core.Buffer, a attrs, members []member, tags map[string]string) error {
	bld, err := core.NewBuilder(buf, core.ItemTypeRelation, 0)
	if err != nil {
		return err
	}

	if err := bld.Append(putAttrs(a)); err != nil {
		return abortOn(bld, err)
	}

	memberChild, err := bld.NewChild(core.ItemTypeMemberList, 0)
	if err != nil {
		return abortOn(bld, err)
	}

	if err := memberChild.Append(putMemberList(members)); err != nil {
		return abortOn(memberChild, err)
	}

	if err := memberChild.Finish(); err != nil {
		return abortOn(bld, err)
	}

	if err := appendTagList(bld, tags); err != nil {
		return abortOn(bld, err)
	}

	return bld.Finish()
}

func writeChangeset(buf *core.Buffer, a attrs) error {
	bld, err := core.NewBuilder(buf, core.ItemTypeChangeset, 0)
	if err != nil {
		return err
	}

	if err := bld.Append(putAttrs(a)); err != nil {
		return abortOn(bld, err)
	}

	return bld.Finish()
}
