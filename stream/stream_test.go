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

package stream_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	pbf "go.osmpbf.dev/pbf"
	"go.osmpbf.dev/pbf/model"
	"go.osmpbf.dev/pbf/stream"
)

func writeFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.osm.pbf")

	w, err := pbf.Create(path, model.Header{})
	assert.NoError(t, err)

	entities := []model.Entity{
		model.Node{ID: 1, Lon: 1, Lat: 1},                        //nolint:mnd // arbitrary test coordinates
		model.Node{ID: 2, Lon: -1, Lat: -1},                       //nolint:mnd // arbitrary test coordinates
		model.Way{ID: 3, NodeIDs: []model.ID{1, 2}},               //nolint:mnd // arbitrary test ids
		model.Relation{ID: 4},                                     //nolint:mnd // arbitrary test id
		model.Changeset{ID: 5},                                    //nolint:mnd // arbitrary test id
	}

	for _, e := range entities {
		assert.NoError(t, w.WriteEntity(e))
	}

	assert.NoError(t, w.Close())

	return path
}

func TestEntities_FiltersByType(t *testing.T) {
	path := writeFixture(t)

	r, err := pbf.Open(path)
	assert.NoError(t, err)

	defer r.Close()

	nodeCount, err := stream.Count(stream.Nodes(stream.Entities(r)))
	assert.NoError(t, err)
	assert.Equal(t, int64(2), nodeCount) //nolint:mnd // 2 nodes written
}

func TestWriteAll_RoundTrips(t *testing.T) {
	srcPath := writeFixture(t)

	r, err := pbf.Open(srcPath)
	assert.NoError(t, err)

	dstPath := filepath.Join(t.TempDir(), "copy.osm.pbf")

	w, err := pbf.Create(dstPath, r.Header())
	assert.NoError(t, err)

	assert.NoError(t, stream.WriteAll(w, stream.Entities(r)))
	assert.NoError(t, r.Close())
	assert.NoError(t, w.Close())

	r2, err := pbf.Open(dstPath)
	assert.NoError(t, err)

	defer r2.Close()

	total, err := stream.Count(stream.Entities(r2))
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total) //nolint:mnd // 5 entities in the fixture
}
