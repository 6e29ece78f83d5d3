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

package pbf

import (
	"runtime"

	"go.osmpbf.dev/pbf/internal/core"
	"go.osmpbf.dev/pbf/internal/framer"
	"go.osmpbf.dev/pbf/model"
)

// DefaultNumWorkers picks GOMAXPROCS-1, floored at 1, the same heuristic
// the rest of this ecosystem uses for CPU-bound decode pools.
func DefaultNumWorkers() int {
	n := runtime.GOMAXPROCS(0) - 1
	if n < 1 {
		return 1
	}

	return n
}

type readerConfig struct {
	numWorkers  int
	bufferCap   int
	autoGrow    bool
	readTypes   model.ReadTypes
	maxQueueLag int
	registry    *Registry
}

func defaultReaderConfig() readerConfig {
	return readerConfig{
		numWorkers:  DefaultNumWorkers(),
		bufferCap:   core.DefaultBufferCapacity,
		autoGrow:    true,
		readTypes:   model.ReadAll,
		maxQueueLag: 10,
		registry:    DefaultRegistry(),
	}
}

// ReaderOption configures a Reader at construction.
type ReaderOption func(*readerConfig)

// WithNumWorkers sets the decode pool size. Zero selects the
// deterministic, synchronous single-threaded mode.
func WithNumWorkers(n int) ReaderOption {
	return func(c *readerConfig) { c.numWorkers = n }
}

// WithBufferCapacity records a starting capacity for decoded Buffers in
// the reader configuration. The decoder does not read it: every decoded
// Buffer starts at core.DefaultBufferCapacity.
func WithBufferCapacity(n int) ReaderOption {
	return func(c *readerConfig) { c.bufferCap = n }
}

// WithBufferAutoGrow records in the reader configuration whether decoded
// Buffers reallocate on overflow (true, default) instead of signaling
// ErrBufferFull. The decoder does not read it: every decoded Buffer
// auto-grows.
func WithBufferAutoGrow(autoGrow bool) ReaderOption {
	return func(c *readerConfig) { c.autoGrow = autoGrow }
}

// WithReadTypes restricts decoding to the given entity types; groups of
// excluded types are skipped without allocation.
func WithReadTypes(types model.ReadTypes) ReaderOption {
	return func(c *readerConfig) { c.readTypes = types }
}

// WithQueueBackpressure sets how many decoded Buffers may sit in the
// reorder queue past the reader's current position before the parse
// goroutine stalls new work. Larger values trade memory for smoother
// throughput on bursty sources; smaller values cap how far decode can
// run ahead of a slow consumer.
func WithQueueBackpressure(n int) ReaderOption {
	return func(c *readerConfig) { c.maxQueueLag = n }
}

// WithRegistry overrides the format registry Open consults to resolve
// the (encoding, file_format) pair to a Reader factory. Defaults to
// DefaultRegistry.
func WithRegistry(reg *Registry) ReaderOption {
	return func(c *readerConfig) { c.registry = reg }
}

type writerConfig struct {
	numWorkers  int
	compression framer.Compression
	overwrite   bool
	granularity int32
	dateGran    int32
	writingProg string
	source      string
	registry    *Registry
}

func defaultWriterConfig() writerConfig {
	return writerConfig{
		numWorkers:  DefaultNumWorkers(),
		compression: framer.CompressionZlib,
		granularity: 100,  //nolint:mnd // osmformat.proto default
		dateGran:    1000, //nolint:mnd // osmformat.proto default
		writingProg: "go.osmpbf.dev/pbf",
		registry:    DefaultRegistry(),
	}
}

// WriterOption configures a Writer at construction.
type WriterOption func(*writerConfig)

// WithWriterNumWorkers sets the encode pool size. Zero selects
// synchronous mode.
func WithWriterNumWorkers(n int) WriterOption {
	return func(c *writerConfig) { c.numWorkers = n }
}

// WithCompression sets the Blob compression written for every data blob.
func WithCompression(c framer.Compression) WriterOption {
	return func(cfg *writerConfig) { cfg.compression = c }
}

// OverwritePolicy controls whether Create may replace an existing file.
type OverwritePolicy int

const (
	OverwriteNo OverwritePolicy = iota
	OverwriteAllow
)

// WithOverwrite sets the overwrite policy Create enforces.
func WithOverwrite(policy OverwritePolicy) WriterOption {
	return func(c *writerConfig) { c.overwrite = policy == OverwriteAllow }
}

// WithWritingProgram sets the HeaderBlock's writingprogram field.
func WithWritingProgram(name string) WriterOption {
	return func(c *writerConfig) { c.writingProg = name }
}

// WithSource sets the HeaderBlock's source field.
func WithSource(source string) WriterOption {
	return func(c *writerConfig) { c.source = source }
}

// WithWriterRegistry overrides the format registry Create consults to
// resolve the (encoding, file_format) pair to a Writer factory. Defaults
// to DefaultRegistry.
func WithWriterRegistry(reg *Registry) WriterOption {
	return func(c *writerConfig) { c.registry = reg }
}
