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

package pb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.osmpbf.dev/pbf/internal/pb"
)

func TestBlobHeader_RoundTrip(t *testing.T) {
	h := pb.BlobHeader{Type: "OSMData", DataSize: 1234} //nolint:mnd // arbitrary test value

	b, err := h.Marshal()
	assert.NoError(t, err)

	var got pb.BlobHeader
	assert.NoError(t, got.Unmarshal(b))
	assert.Equal(t, h, got)
}

func TestBlobHeader_MissingTypeFails(t *testing.T) {
	h := pb.BlobHeader{DataSize: 1}
	b, err := h.Marshal()
	assert.NoError(t, err)

	// Marshal always writes Type (even empty); unmarshal an empty wire
	// form instead, which carries no field 1, to exercise the "missing
	// type" path.
	var got pb.BlobHeader
	assert.Error(t, got.Unmarshal(b[:0]))
}

func TestBlob_RoundTripRaw(t *testing.T) {
	blob := pb.Blob{Raw: []byte("hello")}

	b, err := blob.Marshal()
	assert.NoError(t, err)

	var got pb.Blob
	assert.NoError(t, got.Unmarshal(b))
	assert.Equal(t, blob.Raw, got.Raw)
}

func TestBlob_RoundTripZlib(t *testing.T) {
	blob := pb.Blob{ZlibData: []byte("compressed-bytes"), RawSize: 42} //nolint:mnd // arbitrary test value

	b, err := blob.Marshal()
	assert.NoError(t, err)

	var got pb.Blob
	assert.NoError(t, got.Unmarshal(b))
	assert.Equal(t, blob.ZlibData, got.ZlibData)
	assert.Equal(t, blob.RawSize, got.RawSize)
}

func TestPrimitiveBlock_AppliesDefaults(t *testing.T) {
	blk := pb.PrimitiveBlock{Stringtable: &pb.StringTable{S: [][]byte{{}}}}

	b, err := blk.Marshal()
	assert.NoError(t, err)

	var got pb.PrimitiveBlock
	assert.NoError(t, got.Unmarshal(b))
	assert.Equal(t, pb.DefaultGranularity, got.Granularity)
	assert.Equal(t, pb.DefaultDateGranularity, got.DateGranularity)
}

func TestPrimitiveBlock_RequiresStringtable(t *testing.T) {
	// An empty wire form carries no field-1 stringtable submessage at all,
	// unlike Marshal (which always emits one, even empty).
	var got pb.PrimitiveBlock
	assert.Error(t, got.Unmarshal(nil))
}

func TestPrimitiveBlock_DenseNodesRoundTrip(t *testing.T) {
	blk := pb.PrimitiveBlock{
		Stringtable: &pb.StringTable{S: [][]byte{{}, []byte("highway"), []byte("residential")}},
		Primitivegroup: []*pb.PrimitiveGroup{
			{
				Dense: &pb.DenseNodes{
					ID:       []int64{1, 1, 1}, //nolint:mnd // delta-encoded: ids 1, 2, 3
					Lat:      []int64{500, 0, 0},
					Lon:      []int64{500, 0, 0},
					KeysVals: []int32{1, 2, 0},
				},
			},
		},
	}

	b, err := blk.Marshal()
	assert.NoError(t, err)

	var got pb.PrimitiveBlock
	assert.NoError(t, got.Unmarshal(b))
	assert.Len(t, got.Primitivegroup, 1)
	assert.Equal(t, blk.Primitivegroup[0].Dense.ID, got.Primitivegroup[0].Dense.ID)
	assert.Equal(t, blk.Primitivegroup[0].Dense.KeysVals, got.Primitivegroup[0].Dense.KeysVals)
}

func TestPrimitiveBlock_EmptyGroupRejected(t *testing.T) {
	blk := pb.PrimitiveBlock{
		Stringtable:    &pb.StringTable{S: [][]byte{{}}},
		Primitivegroup: []*pb.PrimitiveGroup{{}},
	}

	b, err := blk.Marshal()
	assert.NoError(t, err)

	var got pb.PrimitiveBlock
	assert.Error(t, got.Unmarshal(b))
}
