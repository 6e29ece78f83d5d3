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

package core

// DefaultBufferCapacity is the default Buffer size: 10 MiB, matching the
// block sizes typical OSM PBF planet extracts decode into.
const DefaultBufferCapacity = 10 * 1024 * 1024

// alignment is the byte boundary every Item is padded to.
const alignment = 8

func align(n int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

// Buffer is a contiguous byte arena holding a sequence of 8-byte-aligned
// Items. It tracks two cursors: written (bytes provisionally appended by
// an in-progress Builder tree) and committed (bytes declared final and
// visible to Items()). Buffers are move-only in spirit: callers pass
// pointers and a Buffer should have exactly one owner at a time.
type Buffer struct {
	data      []byte
	written   int
	committed int
	autoGrow  bool
}

// NewBuffer allocates a Buffer with the given starting capacity. When
// autoGrow is true, Reserve doubles the underlying array instead of
// signaling ErrBufferFull.
func NewBuffer(capacity int, autoGrow bool) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}

	return &Buffer{
		data:     make([]byte, capacity),
		autoGrow: autoGrow,
	}
}

// Capacity returns the size of the underlying array.
func (b *Buffer) Capacity() int { return len(b.data) }

// Written returns the offset of the written cursor: every byte appended
// so far, committed or not.
func (b *Buffer) Written() int { return b.written }

// Committed returns the number of bytes declared final.
func (b *Buffer) Committed() int { return b.committed }

// AutoGrow reports whether this buffer reallocates on overflow instead of
// signaling ErrBufferFull.
func (b *Buffer) AutoGrow() bool { return b.autoGrow }

// Reset clears both cursors without releasing the underlying array,
// allowing the Buffer to be reused from a pool.
func (b *Buffer) Reset() {
	b.written = 0
	b.committed = 0
}

// Reserve grows the written cursor by n bytes and returns a slice viewing
// that region so the caller can fill it in place. It copies existing
// bytes only when an auto-grow buffer reallocates. In fixed mode, if the
// request would exceed capacity, it returns ErrBufferFull and leaves the
// buffer unchanged.
func (b *Buffer) Reserve(n int) ([]byte, error) {
	end := b.written + n
	if end > len(b.data) {
		if !b.autoGrow {
			return nil, ErrBufferFull
		}

		newCap := len(b.data) * 2
		for newCap < end {
			newCap *= 2
		}

		grown := make([]byte, newCap)
		copy(grown, b.data[:b.written])
		b.data = grown
	}

	region := b.data[b.written:end]
	b.written = end

	return region, nil
}

// Append reserves len(p) bytes and copies p into them.
func (b *Buffer) Append(p []byte) error {
	region, err := b.Reserve(len(p))
	if err != nil {
		return err
	}

	copy(region, p)

	return nil
}

// Commit declares everything written so far final: Items() will now walk
// up to the new committed offset.
func (b *Buffer) Commit() {
	b.committed = b.written
}

// Rollback discards everything written since the last commit, restoring
// written to committed. Used to unwind a builder tree after ErrBufferFull
// or any other mid-construction failure.
func (b *Buffer) Rollback() {
	b.written = b.committed
}

// Bytes returns the committed region of the underlying array. The slice
// aliases the Buffer's storage and is only valid while the Buffer lives.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.committed]
}

// Items returns an iterator over the committed Items, offset 0 to
// Committed().
func (b *Buffer) Items() *ItemIterator {
	return NewItemIterator(b.Bytes())
}
