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

// Builder is a scoped construct that appends one Item into a Buffer. On
// construction it reserves the item's header (type tag plus a length
// placeholder); during its lifetime it may Append bytes and spawn at most
// one live child Builder at a time; on Finish it pads to the alignment
// boundary and writes the final length into its header.
//
// Builders never interleave: a parent may not be appended to while a
// child is live, mirroring the source library's raw-parent-pointer
// builders without the aliasing hazard — here enforced by a childLive
// flag rather than a destructor ordering convention.
type Builder struct {
	buf          *Buffer
	parent       *Builder
	headerOffset int
	stringOffset uint32
	childLive    bool
	done         bool
}

// NewBuilder starts a new top-level Builder, reserving its header in buf.
// Use NewChild to nest one builder inside another.
func NewBuilder(buf *Buffer, typ ItemType, stringOffset uint32) (*Builder, error) {
	return newBuilder(buf, nil, typ, stringOffset)
}

// NewChild starts a Builder nested inside bld. It fails with
// ErrBuilderNesting if bld already has a live child.
func (bld *Builder) NewChild(typ ItemType, stringOffset uint32) (*Builder, error) {
	if bld.done {
		return nil, ErrBuilderNesting
	}

	if bld.childLive {
		return nil, ErrBuilderNesting
	}

	child, err := newBuilder(bld.buf, bld, typ, stringOffset)
	if err != nil {
		return nil, err
	}

	bld.childLive = true

	return child, nil
}

func newBuilder(buf *Buffer, parent *Builder, typ ItemType, stringOffset uint32) (*Builder, error) {
	region, err := buf.Reserve(HeaderSize)
	if err != nil {
		return nil, err
	}

	putHeader(region, typ, 0, stringOffset)

	return &Builder{
		buf:          buf,
		parent:       parent,
		headerOffset: buf.written - HeaderSize,
		stringOffset: stringOffset,
	}, nil
}

// Append writes p immediately after whatever has been written so far in
// this builder's item (header, fixed fields, or prior children).
func (bld *Builder) Append(p []byte) error {
	if bld.done {
		return ErrBuilderNesting
	}

	if bld.childLive {
		return ErrBuilderNesting
	}

	return bld.buf.Append(p)
}

// Buffer returns the underlying Buffer, for callers that need to Reserve
// directly (e.g. to fill a fixed-size attribute block in place).
func (bld *Builder) Buffer() *Buffer { return bld.buf }

// Finish pads the item to the alignment boundary and writes its final
// length into the header. A top-level Finish also commits the Buffer,
// making the whole item (and all of its finished children) visible via
// Items(). Finishing a builder while a child is still live, or one that
// was already finished or aborted, is an error.
func (bld *Builder) Finish() error {
	if bld.done {
		return ErrBuilderNesting
	}

	if bld.childLive {
		return ErrBuilderNesting
	}

	length := bld.buf.written - bld.headerOffset
	padded := align(length)

	if padded > length {
		if err := bld.buf.Append(make([]byte, padded-length)); err != nil {
			return err
		}
	}

	putHeaderLength(bld.buf.data[bld.headerOffset:], uint32(padded))

	bld.done = true

	if bld.parent != nil {
		bld.parent.childLive = false
	} else {
		bld.buf.Commit()
	}

	return nil
}

// Abort unwinds this builder's item (and any still-open ancestors, since
// a live child always implies a live parent) by rolling the Buffer back
// to its last commit point. Call it from whichever builder in the tree
// observes a failure; there is nothing left to finalize afterward.
func (bld *Builder) Abort() {
	bld.buf.Rollback()

	for b := bld; b != nil; b = b.parent {
		b.done = true
		b.childLive = false
	}
}
