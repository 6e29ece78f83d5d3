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

package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.osmpbf.dev/pbf/internal/codec"
	"go.osmpbf.dev/pbf/model"
)

func TestDecodeEncodeBlock_RoundTripsEntities(t *testing.T) {
	entities := []model.Entity{
		model.Node{ID: 1, Tags: map[string]string{"amenity": "cafe"}, Lon: 13.5, Lat: -52.25}, //nolint:mnd // exact in binary
		model.Node{ID: 2, Lon: 0, Lat: 0},                                                      //nolint:mnd // arbitrary test id
		model.Way{ID: 3, Tags: map[string]string{"highway": "service"}, NodeIDs: []model.ID{1, 1, 2}}, //nolint:mnd
		model.Relation{
			ID: 4, //nolint:mnd // arbitrary test id
			Members: []model.Member{
				{ID: 1, Type: model.NODE, Role: "stop"},
			},
		},
		model.Changeset{ID: 5}, //nolint:mnd // arbitrary test id
	}

	buf, err := codec.EntitiesToBuffer(entities)
	assert.NoError(t, err)

	blk, err := codec.EncodeBlock(buf, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, int32(100), blk.Granularity)         //nolint:mnd // DefaultGranularity
	assert.Equal(t, int32(1000), blk.DateGranularity)    //nolint:mnd // DefaultDateGranularity

	decoded, err := codec.DecodeBlock(blk, model.ReadAll)
	assert.NoError(t, err)

	got, err := codec.BufferEntities(decoded)
	assert.NoError(t, err)
	assert.Equal(t, entities, got)
}

func TestDecodeBlock_SkipsExcludedTypes(t *testing.T) {
	entities := []model.Entity{
		model.Node{ID: 1}, //nolint:mnd // arbitrary test id
		model.Way{ID: 2, NodeIDs: []model.ID{1}}, //nolint:mnd // arbitrary test id
	}

	buf, err := codec.EntitiesToBuffer(entities)
	assert.NoError(t, err)

	blk, err := codec.EncodeBlock(buf, 0, 0)
	assert.NoError(t, err)

	decoded, err := codec.DecodeBlock(blk, model.ReadWays)
	assert.NoError(t, err)

	got, err := codec.BufferEntities(decoded)
	assert.NoError(t, err)
	assert.Len(t, got, 1)

	_, ok := got[0].(model.Way)
	assert.True(t, ok)
}

func TestDecodeBlock_ZeroDateGranularityTruncationRejected(t *testing.T) {
	entities := []model.Entity{model.Node{ID: 1}} //nolint:mnd // arbitrary test id

	buf, err := codec.EntitiesToBuffer(entities)
	assert.NoError(t, err)

	blk, err := codec.EncodeBlock(buf, 0, 1)
	assert.NoError(t, err)

	_, err = codec.DecodeBlock(blk, model.ReadAll)
	assert.Error(t, err)
}
