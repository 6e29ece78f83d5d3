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

package framer_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.osmpbf.dev/pbf/internal/framer"
	"go.osmpbf.dev/pbf/internal/pb"
	"go.osmpbf.dev/pbf/internal/xerr"
)

func TestWriterReader_RoundTripRaw(t *testing.T) {
	var buf bytes.Buffer

	fw := framer.NewWriter(&buf, framer.CompressionNone)
	assert.NoError(t, fw.WriteBlob(framer.TypeOSMHeader, []byte("header-payload")))
	assert.NoError(t, fw.WriteBlob(framer.TypeOSMData, []byte("data-payload-one")))
	assert.NoError(t, fw.WriteBlob(framer.TypeOSMData, []byte("data-payload-two")))

	fr := framer.NewReader(&buf)

	payload, seq, err := fr.ReadNext()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), seq)
	assert.Equal(t, "header-payload", string(payload))

	payload, seq, err = fr.ReadNext()
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
	assert.Equal(t, "data-payload-one", string(payload))

	payload, seq, err = fr.ReadNext()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
	assert.Equal(t, "data-payload-two", string(payload))

	_, _, err = fr.ReadNext()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriterReader_RoundTripZlib(t *testing.T) {
	var buf bytes.Buffer

	payload := bytes.Repeat([]byte("repeated-osm-data-"), 200) //nolint:mnd // large enough to compress meaningfully

	fw := framer.NewWriter(&buf, framer.CompressionZlib)
	assert.NoError(t, fw.WriteBlob(framer.TypeOSMHeader, []byte("h")))
	assert.NoError(t, fw.WriteBlob(framer.TypeOSMData, payload))

	fr := framer.NewReader(&buf)
	_, _, err := fr.ReadNext()
	assert.NoError(t, err)

	got, _, err := fr.ReadNext()
	assert.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReader_FirstBlobMustBeHeader(t *testing.T) {
	var buf bytes.Buffer

	fw := framer.NewWriter(&buf, framer.CompressionNone)
	assert.NoError(t, fw.WriteBlob(framer.TypeOSMData, []byte("oops")))

	fr := framer.NewReader(&buf)
	_, _, err := fr.ReadNext()
	assert.ErrorIs(t, err, xerr.ErrFormat)
}

func TestReader_TruncatedStreamIsIOError(t *testing.T) {
	var buf bytes.Buffer

	fw := framer.NewWriter(&buf, framer.CompressionNone)
	assert.NoError(t, fw.WriteBlob(framer.TypeOSMHeader, []byte("header-payload")))

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-4]) //nolint:mnd // chop off the tail of the blob body

	fr := framer.NewReader(truncated)
	_, _, err := fr.ReadNext()
	assert.ErrorIs(t, err, xerr.ErrIO)
}

func TestReader_OversizedBlobHeaderRejected(t *testing.T) {
	var sizeBuf [4]byte
	putUint32(sizeBuf[:], uint32(framer.MaxHeaderSize+1))

	fr := framer.NewReader(bytes.NewReader(sizeBuf[:]))
	_, _, err := fr.ReadNext()
	assert.ErrorIs(t, err, xerr.ErrFormat)
}

func TestReader_LzmaBlobUnsupported(t *testing.T) {
	blob := pb.Blob{LzmaData: []byte("not-really-lzma")}
	blobBytes, err := blob.Marshal()
	assert.NoError(t, err)

	header := pb.BlobHeader{Type: framer.TypeOSMHeader, DataSize: int32(len(blobBytes))}
	headerBytes, err := header.Marshal()
	assert.NoError(t, err)

	var out bytes.Buffer

	var sizeBuf [4]byte
	putUint32(sizeBuf[:], uint32(len(headerBytes)))
	out.Write(sizeBuf[:])
	out.Write(headerBytes)
	out.Write(blobBytes)

	fr := framer.NewReader(&out)
	_, _, err = fr.ReadNext()
	assert.ErrorIs(t, err, xerr.ErrUnsupportedCompression)
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24) //nolint:mnd // big-endian encode
	b[1] = byte(v >> 16) //nolint:mnd // big-endian encode
	b[2] = byte(v >> 8)  //nolint:mnd // big-endian encode
	b[3] = byte(v)
}
