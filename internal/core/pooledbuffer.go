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

import (
	"bytes"
	"sync"
)

// bufferPool holds *bytes.Buffer values for reuse, matching
// the pattern the framer uses to avoid an allocation per blob.
var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// PooledBuffer wraps a *bytes.Buffer borrowed from a package-level
// sync.Pool. Blob reads and decompressions grow it as needed and Close
// returns it to the pool; it is not safe to keep using a PooledBuffer
// after Close.
type PooledBuffer struct {
	buf *bytes.Buffer
}

// NewPooledBuffer borrows a buffer from the pool, resetting it first.
func NewPooledBuffer() *PooledBuffer {
	buf, _ := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	return &PooledBuffer{buf: buf}
}

// Grow ensures the buffer can accept n more bytes without reallocating.
func (p *PooledBuffer) Grow(n int) { p.buf.Grow(n) }

// Bytes returns the buffer's current contents.
func (p *PooledBuffer) Bytes() []byte { return p.buf.Bytes() }

// Buf exposes the underlying *bytes.Buffer for io.Copy/ReadFrom callers.
func (p *PooledBuffer) Buf() *bytes.Buffer { return p.buf }

// Len returns the number of bytes currently held.
func (p *PooledBuffer) Len() int { return p.buf.Len() }

// Close returns the underlying buffer to the pool. The PooledBuffer must
// not be used afterward.
func (p *PooledBuffer) Close() {
	if p.buf == nil {
		return
	}

	bufferPool.Put(p.buf)
	p.buf = nil
}
