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
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// BlobHeader mirrors fileformat.proto's BlobHeader message.
type BlobHeader struct {
	Type      string
	IndexData []byte
	DataSize  int32
}

// Marshal encodes the BlobHeader.
func (h *BlobHeader) Marshal() ([]byte, error) {
	var b []byte

	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, h.Type)

	if len(h.IndexData) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, h.IndexData)
	}

	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(h.DataSize)))

	return b, nil
}

// Unmarshal decodes a BlobHeader. Optional fields the message doesn't
// carry keep their zero value; a missing type field is an error.
func (h *BlobHeader) Unmarshal(b []byte) error {
	var sawType bool

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

			h.Type = string(v)
			sawType = true
			b = b[n:]
		case 2:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return err
			}

			h.IndexData = v
			b = b[n:]
		case 3:
			v, n, err := consumeVarintField(b)
			if err != nil {
				return err
			}

			h.DataSize = int32(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return ErrTruncated
			}

			b = b[n:]
		}
	}

	if !sawType {
		return fmt.Errorf("pb: BlobHeader missing required field type")
	}

	return nil
}

// Blob mirrors fileformat.proto's Blob message. At most one of Raw,
// ZlibData, LzmaData is set; the module's own writer only ever sets Raw or
// ZlibData (see DESIGN.md for why lzma is read-only-unsupported).
type Blob struct {
	Raw      []byte
	ZlibData []byte
	LzmaData []byte
	RawSize  int32
}

// Marshal encodes the Blob using whichever of Raw/ZlibData/LzmaData is set.
func (blob *Blob) Marshal() ([]byte, error) {
	var b []byte

	switch {
	case blob.Raw != nil:
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, blob.Raw)
	case blob.ZlibData != nil:
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, blob.ZlibData)
	case blob.LzmaData != nil:
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, blob.LzmaData)
	default:
		return nil, fmt.Errorf("pb: blob has no data set")
	}

	if blob.Raw == nil {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(blob.RawSize)))
	}

	return b, nil
}

// Unmarshal decodes a Blob.
func (blob *Blob) Unmarshal(b []byte) error {
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

			blob.Raw = v
			b = b[n:]
		case 2:
			v, n, err := consumeVarintField(b)
			if err != nil {
				return err
			}

			blob.RawSize = int32(v)
			b = b[n:]
		case 3:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return err
			}

			blob.ZlibData = v
			b = b[n:]
		case 4:
			v, n, err := consumeBytesField(b)
			if err != nil {
				return err
			}

			blob.LzmaData = v
			b = b[n:]
		default:
			// OBSOLETE_bzip2_data (field 5) and anything newer: skip.
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return ErrTruncated
			}

			b = b[n:]
		}
	}

	return nil
}
