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
	"time"

	"go.osmpbf.dev/pbf/internal/pb"
	"go.osmpbf.dev/pbf/model"
)

// RequiredFeatures this module understands. A HeaderBlock naming anything
// else fails the reader fatally.
var RequiredFeatures = map[string]bool{
	"OsmSchema-V0.6":        true,
	"DenseNodes":            true,
	"HistoricalInformation": true,
}

// DecodeHeader converts a wire HeaderBlock into the public model.Header.
func DecodeHeader(h *pb.HeaderBlock) model.Header {
	out := model.Header{
		RequiredFeatures:                 h.RequiredFeatures,
		OptionalFeatures:                 h.OptionalFeatures,
		WritingProgram:                   h.Writingprogram,
		Source:                           h.Source,
		OsmosisReplicationSequenceNumber: h.OsmosisReplicationSequenceNumber,
		OsmosisReplicationBaseURL:        h.OsmosisReplicationBaseURL,
	}

	if h.OsmosisReplicationTimestamp != 0 {
		out.OsmosisReplicationTimestamp = time.Unix(h.OsmosisReplicationTimestamp, 0).UTC()
	}

	if h.Bbox != nil {
		out.BoundingBox = &model.BoundingBox{
			Left:   model.Degrees(h.Bbox.Left) * 1e-9,  //nolint:mnd // bbox fields are nanodegrees on the wire
			Right:  model.Degrees(h.Bbox.Right) * 1e-9,
			Top:    model.Degrees(h.Bbox.Top) * 1e-9,
			Bottom: model.Degrees(h.Bbox.Bottom) * 1e-9,
		}
	}

	return out
}

// EncodeHeader converts a model.Header into its wire HeaderBlock form.
func EncodeHeader(h model.Header) *pb.HeaderBlock {
	out := &pb.HeaderBlock{
		RequiredFeatures:                 h.RequiredFeatures,
		OptionalFeatures:                 h.OptionalFeatures,
		Writingprogram:                   h.WritingProgram,
		Source:                           h.Source,
		OsmosisReplicationSequenceNumber: h.OsmosisReplicationSequenceNumber,
		OsmosisReplicationBaseURL:        h.OsmosisReplicationBaseURL,
	}

	if !h.OsmosisReplicationTimestamp.IsZero() {
		out.OsmosisReplicationTimestamp = h.OsmosisReplicationTimestamp.Unix()
	}

	if h.BoundingBox != nil {
		out.Bbox = &pb.HeaderBBox{
			Left:   int64(h.BoundingBox.Left * 1e9),
			Right:  int64(h.BoundingBox.Right * 1e9),
			Top:    int64(h.BoundingBox.Top * 1e9),
			Bottom: int64(h.BoundingBox.Bottom * 1e9),
		}
	}

	return out
}

// UnsupportedFeatures returns the subset of required that this module
// does not recognize.
func UnsupportedFeatures(required []string) []string {
	var bad []string

	for _, f := range required {
		if !RequiredFeatures[f] {
			bad = append(bad, f)
		}
	}

	return bad
}
