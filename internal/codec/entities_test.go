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
	"time"

	"github.com/stretchr/testify/assert"

	"go.osmpbf.dev/pbf/internal/codec"
	"go.osmpbf.dev/pbf/model"
)

func TestEntitiesToBuffer_RoundTripsThroughBufferEntities(t *testing.T) {
	entities := []model.Entity{
		model.Node{
			ID:   1,
			Tags: map[string]string{"amenity": "cafe"},
			Info: &model.Info{Version: 3, UID: 42, Timestamp: time.UnixMilli(1700000000000).UTC(), Changeset: 99, User: "alice", Visible: true}, //nolint:mnd // arbitrary test values
			Lon:  13.5,   //nolint:mnd // exact in binary so the scale/unscale round trip is lossless
			Lat:  -52.25, //nolint:mnd // exact in binary so the scale/unscale round trip is lossless
		},
		model.Way{
			ID:      2,                                       //nolint:mnd // arbitrary test id
			Tags:    map[string]string{"highway": "service"}, //nolint:mnd
			NodeIDs: []model.ID{1, 1, 2, 3},
		},
		model.Relation{
			ID: 3, //nolint:mnd // arbitrary test id
			Members: []model.Member{
				{ID: 1, Type: model.NODE, Role: "stop"},
				{ID: 2, Type: model.WAY, Role: ""}, //nolint:mnd
			},
			Tags: map[string]string{"type": "route"},
		},
		model.Changeset{ID: 4}, //nolint:mnd // arbitrary test id
	}

	buf, err := codec.EntitiesToBuffer(entities)
	assert.NoError(t, err)

	got, err := codec.BufferEntities(buf)
	assert.NoError(t, err)
	assert.Equal(t, entities, got)
}

func TestEntitiesToBuffer_EmptyTagsRoundTripAsNil(t *testing.T) {
	entities := []model.Entity{
		model.Node{ID: 5}, //nolint:mnd // arbitrary test id
	}

	buf, err := codec.EntitiesToBuffer(entities)
	assert.NoError(t, err)

	got, err := codec.BufferEntities(buf)
	assert.NoError(t, err)
	assert.Len(t, got, 1)

	node, ok := got[0].(model.Node)
	assert.True(t, ok)
	assert.Nil(t, node.Info)
	assert.Nil(t, node.Tags)
}
