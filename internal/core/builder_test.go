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

package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.osmpbf.dev/pbf/internal/core"
)

func TestBuilder_NestedChildRoundTrip(t *testing.T) {
	buf := core.NewBuffer(256, true) //nolint:mnd // ample room for this test

	bld, err := core.NewBuilder(buf, core.ItemTypeWay, 7) //nolint:mnd // arbitrary string offset
	assert.NoError(t, err)
	assert.NoError(t, bld.Append([]byte("way-attrs")))

	child, err := bld.NewChild(core.ItemTypeNodeRefList, 0)
	assert.NoError(t, err)
	assert.NoError(t, child.Append([]byte("refs")))
	assert.NoError(t, child.Finish())

	assert.NoError(t, bld.Finish())

	it := buf.Items()
	item, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, core.ItemTypeWay, item.Type)
	assert.Equal(t, uint32(7), item.StringOffset)

	_, ok = it.Next()
	assert.False(t, ok, "buffer should contain exactly one top-level item")

	children := item.Children()
	childItem, ok := children.Next()
	assert.True(t, ok)
	assert.Equal(t, core.ItemTypeNodeRefList, childItem.Type)
	assert.Equal(t, []byte("refs"), childItem.Payload()[:4])
}

func TestBuilder_SecondChildWhileLiveFails(t *testing.T) {
	buf := core.NewBuffer(256, true) //nolint:mnd // ample room for this test

	bld, err := core.NewBuilder(buf, core.ItemTypeRelation, 0)
	assert.NoError(t, err)

	_, err = bld.NewChild(core.ItemTypeMemberList, 0)
	assert.NoError(t, err)

	_, err = bld.NewChild(core.ItemTypeTagList, 0)
	assert.True(t, errors.Is(err, core.ErrBuilderNesting))
}

func TestBuilder_AbortRollsBackWholeTree(t *testing.T) {
	buf := core.NewBuffer(256, true) //nolint:mnd // ample room for this test

	assert.NoError(t, buf.Append([]byte("prior")))
	buf.Commit()
	committedBefore := buf.Committed()

	bld, err := core.NewBuilder(buf, core.ItemTypeWay, 0)
	assert.NoError(t, err)

	child, err := bld.NewChild(core.ItemTypeNodeRefList, 0)
	assert.NoError(t, err)
	assert.NoError(t, child.Append([]byte("x")))

	child.Abort()

	assert.Equal(t, committedBefore, buf.Written())
	assert.ErrorIs(t, bld.Finish(), core.ErrBuilderNesting)
}

func TestBuilder_PadsToAlignment(t *testing.T) {
	buf := core.NewBuffer(256, true) //nolint:mnd // ample room for this test

	bld, err := core.NewBuilder(buf, core.ItemTypeChangeset, 0)
	assert.NoError(t, err)
	assert.NoError(t, bld.Append([]byte("123"))) //nolint:mnd // odd length to force padding
	assert.NoError(t, bld.Finish())

	it := buf.Items()
	item, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, 0, item.Length()%8) //nolint:mnd // Item records are 8-byte aligned
}
