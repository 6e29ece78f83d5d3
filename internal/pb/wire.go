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

// Package pb implements the wire encoding of the OSM-PBF message set
// (fileformat.proto / osmformat.proto) directly against
// google.golang.org/protobuf/encoding/protowire, without a protoc-generated
// intermediate. Only the fields this module actually reads or writes are
// modeled.
package pb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrTruncated is returned when a message's encoded form ends in the middle
// of a field.
var ErrTruncated = fmt.Errorf("pb: truncated message")

func consumeVarintField(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, ErrTruncated
	}

	return v, n, nil
}

func consumeBytesField(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, ErrTruncated
	}

	return v, n, nil
}

func appendPackedVarint(b []byte, num protowire.Number, vals []uint64) []byte {
	if len(vals) == 0 {
		return b
	}

	var content []byte
	for _, v := range vals {
		content = protowire.AppendVarint(content, v)
	}

	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendBytes(b, content)

	return b
}

func decodePackedVarints(content []byte) ([]uint64, error) {
	out := make([]uint64, 0, len(content)/2)

	for len(content) > 0 {
		v, n := protowire.ConsumeVarint(content)
		if n < 0 {
			return nil, ErrTruncated
		}

		out = append(out, v)
		content = content[n:]
	}

	return out, nil
}

func toInt32s(vals []uint64) []int32 {
	out := make([]int32, len(vals))
	for i, v := range vals {
		out[i] = int32(v)
	}

	return out
}

func toUint32s(vals []uint64) []uint32 {
	out := make([]uint32, len(vals))
	for i, v := range vals {
		out[i] = uint32(v)
	}

	return out
}

func toInt64s(vals []uint64) []int64 {
	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i] = int64(v)
	}

	return out
}

func toSint64s(vals []uint64) []int64 {
	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i] = protowire.DecodeZigZag(v)
	}

	return out
}

func toSint32s(vals []uint64) []int32 {
	out := make([]int32, len(vals))
	for i, v := range vals {
		out[i] = int32(protowire.DecodeZigZag(v))
	}

	return out
}

func toBools(vals []uint64) []bool {
	out := make([]bool, len(vals))
	for i, v := range vals {
		out[i] = v != 0
	}

	return out
}

func fromInt32s(vals []int32) []uint64 {
	out := make([]uint64, len(vals))
	for i, v := range vals {
		out[i] = uint64(v)
	}

	return out
}

func fromUint32s(vals []uint32) []uint64 {
	out := make([]uint64, len(vals))
	for i, v := range vals {
		out[i] = uint64(v)
	}

	return out
}

func fromInt64s(vals []int64) []uint64 {
	out := make([]uint64, len(vals))
	for i, v := range vals {
		out[i] = uint64(v)
	}

	return out
}

func fromSint64s(vals []int64) []uint64 {
	out := make([]uint64, len(vals))
	for i, v := range vals {
		out[i] = protowire.EncodeZigZag(v)
	}

	return out
}

func fromSint32s(vals []int32) []uint64 {
	out := make([]uint64, len(vals))
	for i, v := range vals {
		out[i] = protowire.EncodeZigZag(int64(v))
	}

	return out
}

func fromBools(vals []bool) []uint64 {
	out := make([]uint64, len(vals))
	for i, v := range vals {
		if v {
			out[i] = 1
		}
	}

	return out
}
