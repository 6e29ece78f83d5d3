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

package pbf_test

import (
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	pbf "go.osmpbf.dev/pbf"
	"go.osmpbf.dev/pbf/internal/codec"
	"go.osmpbf.dev/pbf/model"
)

func TestReaderWriter_RoundTripsEntities(t *testing.T) {
	for _, numWorkers := range []int{0, 1, 4} {
		numWorkers := numWorkers
		t.Run(workerTestName(numWorkers), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data.osm.pbf")

			header := model.Header{BoundingBox: &model.BoundingBox{Top: 1, Left: 1, Bottom: -1, Right: -1}} //nolint:mnd // arbitrary test bbox

			w, err := pbf.Create(path, header, pbf.WithWriterNumWorkers(numWorkers))
			assert.NoError(t, err)

			want := []model.Entity{
				model.Node{ID: 1, Lon: 13.5, Lat: -52.25, Tags: map[string]string{"amenity": "cafe"}}, //nolint:mnd // exact in binary
				model.Way{ID: 2, NodeIDs: []model.ID{1}},                                               //nolint:mnd // arbitrary test id
				model.Relation{ID: 3, Members: []model.Member{{ID: 1, Type: model.NODE, Role: "x"}}},  //nolint:mnd // arbitrary test id
			}

			for _, e := range want {
				assert.NoError(t, w.WriteEntity(e))
			}

			assert.NoError(t, w.Close())

			r, err := pbf.Open(path, pbf.WithNumWorkers(numWorkers))
			assert.NoError(t, err)

			assert.Equal(t, header.BoundingBox, r.Header().BoundingBox)

			var got []model.Entity

			for {
				buf, err := r.Next()
				if errors.Is(err, io.EOF) {
					break
				}

				assert.NoError(t, err)

				entities, err := codec.BufferEntities(buf)
				assert.NoError(t, err)

				got = append(got, entities...)
			}

			assert.NoError(t, r.Close())
			assert.Equal(t, want, got)
		})
	}
}

func TestReader_RejectsUnsupportedRequiredFeature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.osm.pbf")

	w, err := pbf.Create(path, model.Header{RequiredFeatures: []string{"SomeFutureFeature"}})
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	_, err = pbf.Open(path)
	assert.ErrorIs(t, err, pbf.ErrUnsupportedFeature)
}

func TestReader_OpensCleanlyWithNoRequiredFeatures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.osm.pbf")

	w, err := pbf.Create(path, model.Header{})
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	r, err := pbf.Open(path)
	assert.NoError(t, err)
	assert.NoError(t, r.Close())
}

func TestCreate_OverwritePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.osm.pbf")

	w, err := pbf.Create(path, model.Header{})
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	_, err = pbf.Create(path, model.Header{})
	assert.ErrorIs(t, err, pbf.ErrFileExists)

	w2, err := pbf.Create(path, model.Header{}, pbf.WithOverwrite(pbf.OverwriteAllow))
	assert.NoError(t, err)
	assert.NoError(t, w2.Close())
}

func TestReader_NextIsStickyAfterEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.osm.pbf")

	w, err := pbf.Create(path, model.Header{})
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	r, err := pbf.Open(path)
	assert.NoError(t, err)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)

	assert.NoError(t, r.Close())
}

func TestOpen_UnsupportedFormatRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.osm.pbf")

	w, err := pbf.Create(path, model.Header{})
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	_, err = pbf.Open(path, pbf.WithRegistry(pbf.NewRegistry()))
	assert.ErrorIs(t, err, pbf.ErrUnsupportedFormat)
}

func TestCreate_UnsupportedFormatRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.osm.pbf")

	_, err := pbf.Create(path, model.Header{}, pbf.WithWriterRegistry(pbf.NewRegistry()))
	assert.ErrorIs(t, err, pbf.ErrUnsupportedFormat)
}

func TestRegistry_RoundTripsThroughRegisteredCodec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.osm.pbf")

	reg := pbf.NewRegistry()
	reg.Register(pbf.EncodingBinary, pbf.FormatOSM, pbf.NewReader, pbf.NewWriter)

	w, err := pbf.Create(path, model.Header{}, pbf.WithWriterRegistry(reg))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	r, err := pbf.Open(path, pbf.WithRegistry(reg))
	assert.NoError(t, err)
	assert.NoError(t, r.Close())
}

func workerTestName(n int) string {
	if n == 0 {
		return "workers=0(synchronous)"
	}

	return "workers=" + strconv.Itoa(n)
}
