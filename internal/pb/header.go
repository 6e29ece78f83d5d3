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

package pb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// HeaderBBox mirrors osmformat.proto's HeaderBBox message. Coordinates are
// in nanodegrees.
type HeaderBBox struct {
	Left, Right, Top, Bottom int64
}

func (bbox *HeaderBBox) marshalInto(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(bbox.Left))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(bbox.Right))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(bbox.Top))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(bbox.Bottom))

	return b
}

func unmarshalHeaderBBox(b []byte) (*HeaderBBox, error) {
	bbox := &HeaderBBox{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrTruncated
		}

		b = b[n:]

		switch num {
		case 1, 2, 3, 4:
			v, n, err := consumeVarintField(b)
			if err != nil {
				return nil, err
			}

			z := protowire.DecodeZigZag(v)

			switch num {
			case 1:
				bbox.Left = z
			case 2:
				bbox.Right = z
			case 3:
				bbox.Top = z
			case 4:
				bbox.Bottom = z
			}

			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, ErrTruncated
			}

			b = b[n:]
		}
	}

	return bbox, nil
}

// HeaderBlock mirrors osmformat.proto's HeaderBlock message.
type HeaderBlock struct {
	Bbox                             *HeaderBBox
	RequiredFeatures                 []string
	OptionalFeatures                 []string
	Writingprogram                   string
	Source                           string
	OsmosisReplicationTimestamp      int64
	OsmosisReplicationSequenceNumber int64
	OsmosisReplicationBaseURL        string
}

// Marshal encodes the HeaderBlock.
func (h *HeaderBlock) Marshal() ([]byte, error) {
	var b []byte

	if h.Bbox != nil {
		var bboxBytes []byte
		bboxBytes = h.Bbox.marshalInto(bboxBytes)

		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, bboxBytes)
	}

	for _, f := range h.RequiredFeatures {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, f)
	}

	for _, f := range h.OptionalFeatures {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendString(b, f)
	}

	if h.Writingprogram != "" {
		b = protowire.AppendTag(b, 16, protowire.BytesType)
		b = protowire.AppendString(b, h.Writingprogram)
	}

	if h.Source != "" {
		b = protowire.AppendTag(b, 17, protowire.BytesType)
		b = protowire.AppendString(b, h.Source)
	}

	if h.OsmosisReplicationTimestamp != 0 {
		b = protowire.AppendTag(b, 32, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(h.OsmosisReplicationTimestamp))
	}

	if h.OsmosisReplicationSequenceNumber != 0 {
		b = protowire.AppendTag(b, 33, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(h.OsmosisReplicationSequenceNumber))
	}

	if h.OsmosisReplicationBaseURL != "" {
		b = protowire.AppendTag(b, 34, protowire.BytesType)
		b = protowire.AppendString(b, h.OsmosisReplicationBaseURL)
	}

	return b, nil
}

// Unmarshal decodes a HeaderBlock.
func (h *HeaderBlock) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ErrTruncated
		}

		b = b[n:]

		switch num {
		case 1:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return err
			}

			bbox, err := unmarshalHeaderBBox(v)
			if err != nil {
				return err
			}

			h.Bbox = bbox
			b = b[n:]
		case 4:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return err
			}

			h.RequiredFeatures = append(h.RequiredFeatures, string(v))
			b = b[n:]
		case 5:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return err
			}

			h.OptionalFeatures = append(h.OptionalFeatures, string(v))
			b = b[n:]
		case 16:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return err
			}

			h.Writingprogram = string(v)
			b = b[n:]
		case 17:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return err
			}

			h.Source = string(v)
			b = b[n:]
		case 32:
			v, n, err := consumeVarintField(b)
			if err != nil {
				return err
			}

			h.OsmosisReplicationTimestamp = int64(v)
			b = b[n:]
		case 33:
			v, n, err := consumeVarintField(b)
			if err != nil {
				return err
			}

			h.OsmosisReplicationSequenceNumber = int64(v)
			b = b[n:]
		case 34:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return err
			}

			h.OsmosisReplicationBaseURL = string(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return ErrTruncated
			}

			b = b[n:]
		}
	}

	return nil
}
