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

// Package framer reads and writes the length-prefixed BlobHeader/Blob
// envelope that frames every HeaderBlock and PrimitiveBlock in a PBF
// stream.
package framer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"go.osmpbf.dev/pbf/internal/core"
	"go.osmpbf.dev/pbf/internal/pb"
	"go.osmpbf.dev/pbf/internal/xerr"
)

// Size limits from the wire format.
const (
	MaxHeaderSize = 64 * 1024
	MaxBlobSize   = 32 * 1024 * 1024
)

// Blob type strings.
const (
	TypeOSMHeader = "OSMHeader"
	TypeOSMData   = "OSMData"
)

// Compression selects the Blob encoding a Writer produces. The module
// only ever writes raw or zlib: lzma is read-only-unsupported, and
// lz4/zstd, while readable by other OSM-PBF tools, are never emitted here
// since this module's own Reader could never consume them back (see
// DESIGN.md).
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZlib
)

// Reader reads successive Blobs off a stream, assigning each a dense
// sequence number. The first blob must be type OSMHeader; every
// subsequent blob must be OSMData. EOF is only valid between blobs.
type Reader struct {
	r       io.Reader
	seq     uint64
	started bool
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadNext reads one blob, decompresses it, and returns its payload and
// sequence number. It returns io.EOF (unwrapped) when the stream ends
// cleanly between blobs.
func (fr *Reader) ReadNext() ([]byte, uint64, error) {
	var sizeBuf [4]byte

	n, err := io.ReadFull(fr.r, sizeBuf[:])
	if err != nil {
		if err == io.EOF && n == 0 {
			return nil, 0, io.EOF
		}

		return nil, 0, fmt.Errorf("%w: reading blob header size: %v", xerr.ErrIO, err)
	}

	headerSize := binary.BigEndian.Uint32(sizeBuf[:])
	if headerSize > MaxHeaderSize {
		return nil, 0, fmt.Errorf("%w: blob header size %d exceeds max %d", xerr.ErrFormat, headerSize, MaxHeaderSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(fr.r, headerBytes); err != nil {
		return nil, 0, fmt.Errorf("%w: reading blob header: %v", xerr.ErrIO, err)
	}

	var header pb.BlobHeader
	if err := header.Unmarshal(headerBytes); err != nil {
		return nil, 0, fmt.Errorf("%w: parsing blob header: %v", xerr.ErrFormat, err)
	}

	expected := TypeOSMData
	if !fr.started {
		expected = TypeOSMHeader
	}

	if header.Type != expected {
		return nil, 0, fmt.Errorf("%w: expected blob type %q, got %q", xerr.ErrFormat, expected, header.Type)
	}

	fr.started = true

	if header.DataSize > MaxBlobSize || header.DataSize < 0 {
		return nil, 0, fmt.Errorf("%w: blob size %d exceeds max %d", xerr.ErrFormat, header.DataSize, MaxBlobSize)
	}

	blobBytes := make([]byte, header.DataSize)
	if _, err := io.ReadFull(fr.r, blobBytes); err != nil {
		return nil, 0, fmt.Errorf("%w: reading blob body: %v", xerr.ErrIO, err)
	}

	var blob pb.Blob
	if err := blob.Unmarshal(blobBytes); err != nil {
		return nil, 0, fmt.Errorf("%w: parsing blob: %v", xerr.ErrFormat, err)
	}

	data, err := decompress(&blob)
	if err != nil {
		return nil, 0, err
	}

	seq := fr.seq
	fr.seq++

	return data, seq, nil
}

func decompress(blob *pb.Blob) ([]byte, error) {
	switch {
	case blob.Raw != nil:
		return blob.Raw, nil
	case blob.ZlibData != nil:
		zr, err := zlib.NewReader(bytes.NewReader(blob.ZlibData))
		if err != nil {
			return nil, fmt.Errorf("%w: opening zlib stream: %v", xerr.ErrFormat, err)
		}
		defer zr.Close()

		pooled := core.NewPooledBuffer()
		pooled.Grow(int(blob.RawSize) + 64)

		if _, err := pooled.Buf().ReadFrom(zr); err != nil {
			return nil, fmt.Errorf("%w: inflating zlib stream: %v", xerr.ErrIO, err)
		}

		out := pooled.Bytes()
		if int32(len(out)) != blob.RawSize {
			pooled.Close()

			return nil, fmt.Errorf("%w: inflated size %d does not match declared raw_size %d",
				xerr.ErrFormat, len(out), blob.RawSize)
		}

		cp := make([]byte, len(out))
		copy(cp, out)
		pooled.Close()

		return cp, nil
	case blob.LzmaData != nil:
		return nil, fmt.Errorf("%w: lzma blob", xerr.ErrUnsupportedCompression)
	default:
		return nil, fmt.Errorf("%w: blob has no data", xerr.ErrFormat)
	}
}

// Writer frames and writes successive blobs to a stream, compressing
// each with the configured Compression.
type Writer struct {
	w           io.Writer
	compression Compression
}

// NewWriter wraps w, compressing outgoing blobs per compression.
func NewWriter(w io.Writer, compression Compression) *Writer {
	return &Writer{w: w, compression: compression}
}

// WriteBlob frames and writes one blob of the given type holding
// payload.
func (fw *Writer) WriteBlob(blobType string, payload []byte) error {
	blob, err := compress(payload, fw.compression)
	if err != nil {
		return err
	}

	blobBytes, err := blob.Marshal()
	if err != nil {
		return fmt.Errorf("%w: marshaling blob: %v", xerr.ErrFormat, err)
	}

	header := pb.BlobHeader{Type: blobType, DataSize: int32(len(blobBytes))}

	headerBytes, err := header.Marshal()
	if err != nil {
		return fmt.Errorf("%w: marshaling blob header: %v", xerr.ErrFormat, err)
	}

	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(headerBytes)))

	if _, err := fw.w.Write(sizeBuf[:]); err != nil {
		return fmt.Errorf("%w: writing blob header size: %v", xerr.ErrIO, err)
	}

	if _, err := fw.w.Write(headerBytes); err != nil {
		return fmt.Errorf("%w: writing blob header: %v", xerr.ErrIO, err)
	}

	if _, err := fw.w.Write(blobBytes); err != nil {
		return fmt.Errorf("%w: writing blob body: %v", xerr.ErrIO, err)
	}

	return nil
}

func compress(payload []byte, c Compression) (*pb.Blob, error) {
	switch c {
	case CompressionNone:
		return &pb.Blob{Raw: payload}, nil
	case CompressionZlib:
		pooled := core.NewPooledBuffer()
		defer pooled.Close()

		zw := zlib.NewWriter(pooled.Buf())
		if _, err := zw.Write(payload); err != nil {
			return nil, fmt.Errorf("%w: deflating blob: %v", xerr.ErrIO, err)
		}

		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("%w: closing zlib writer: %v", xerr.ErrIO, err)
		}

		out := make([]byte, pooled.Len())
		copy(out, pooled.Bytes())

		return &pb.Blob{ZlibData: out, RawSize: int32(len(payload))}, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression mode %d", xerr.ErrFormat, c)
	}
}
