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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.osmpbf.dev/pbf/internal/codec"
	"go.osmpbf.dev/pbf/internal/core"
	"go.osmpbf.dev/pbf/internal/framer"
	"go.osmpbf.dev/pbf/internal/xerr"
	"go.osmpbf.dev/pbf/model"
)

// WriterState is one of the Writer controller's lifecycle states.
type WriterState int32

const (
	WriterOkay WriterState = iota
	WriterClosed
	WriterError
)

type writeResult struct {
	payload []byte
	err     error
}

// Writer is a parallel streaming PBF encoder, the mirror image of Reader:
// callers hand it entities or pre-built Buffers, a bounded pool encodes
// each chunk into a PrimitiveBlock concurrently, and a single writer
// goroutine drains the results in source order, compressing and framing
// each one onto the stream exactly as a serial encoder would.
type Writer struct {
	closer io.WriteCloser
	fw     *framer.Writer
	pool   *core.WorkerPool
	queue  *core.SortedQueue[writeResult]
	cfg    writerConfig

	stagingMu sync.Mutex
	staging   []model.Entity

	seqMu   sync.Mutex
	nextSeq uint64

	taskWG sync.WaitGroup
	runWG  sync.WaitGroup

	mu       sync.Mutex
	fatalErr error
	state    WriterState

	closeOnce sync.Once
}

// Create creates a new PBF file at path and writes its OSMHeader blob
// synchronously before returning. WithOverwrite controls whether an
// existing file at path is replaced. The (encoding, file_format) pair is
// resolved through a Registry (DefaultRegistry unless overridden with
// WithWriterRegistry), which fails with ErrUnsupportedFormat if no codec
// is registered for it.
func Create(path string, header model.Header, opts ...WriterOption) (*Writer, error) {
	cfg := defaultWriterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	entry, err := cfg.registry.lookup(EncodingBinary, FormatOSM)
	if err != nil {
		return nil, err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !cfg.overwrite {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o644) //nolint:mnd // standard non-executable file mode
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", xerr.ErrFileExists, path)
		}

		return nil, fmt.Errorf("%w: %v", xerr.ErrIO, err)
	}

	w, err := entry.newWriter(f, header, opts...)
	if err != nil {
		f.Close()

		return nil, err
	}

	return w, nil
}

// NewWriter constructs a Writer over an already-open stream, taking
// ownership of wc (Close closes it), and writes the OSMHeader blob
// synchronously before returning.
func NewWriter(wc io.WriteCloser, header model.Header, opts ...WriterOption) (*Writer, error) {
	cfg := defaultWriterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if header.WritingProgram == "" {
		header.WritingProgram = cfg.writingProg
	}

	if header.Source == "" {
		header.Source = cfg.source
	}

	return newWriter(wc, cfg, header)
}

func newWriter(wc io.WriteCloser, cfg writerConfig, header model.Header) (*Writer, error) {
	w := &Writer{
		closer: wc,
		fw:     framer.NewWriter(wc, cfg.compression),
		pool:   core.NewWorkerPool(cfg.numWorkers),
		queue:  core.NewSortedQueue[writeResult](),
		cfg:    cfg,
	}

	hb := codec.EncodeHeader(header)

	hbBytes, err := hb.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling OSMHeader: %v", xerr.ErrFormat, err)
	}

	if err := w.fw.WriteBlob(framer.TypeOSMHeader, hbBytes); err != nil {
		return nil, err
	}

	w.runWG.Add(1)

	go w.run()

	return w, nil
}

// State reports the controller's current lifecycle state.
func (w *Writer) State() WriterState {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

func (w *Writer) run() {
	defer w.runWG.Done()

	for {
		res, err := w.queue.WaitAndPop()
		if err == core.ErrQueueClosed {
			return
		}

		if res.err != nil {
			w.setFatal(res.err)

			continue
		}

		if err := w.fw.WriteBlob(framer.TypeOSMData, res.payload); err != nil {
			w.setFatal(err)
		}
	}
}

func (w *Writer) setFatal(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fatalErr == nil {
		w.fatalErr = err
		w.state = WriterError
		slog.Error("pbf: writer failed", "error", err)
	}
}

func (w *Writer) checkFatal() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fatalErr != nil {
		return fmt.Errorf("%w: %v", xerr.ErrWriterFailed, w.fatalErr)
	}

	if w.state == WriterClosed {
		return xerr.ErrWriterClosed
	}

	return nil
}

// WriteEntity appends e to the writer's staging buffer, flushing
// automatically once it reaches EntityLimit entities.
func (w *Writer) WriteEntity(e model.Entity) error {
	if err := w.checkFatal(); err != nil {
		return err
	}

	w.stagingMu.Lock()
	w.staging = append(w.staging, e)
	full := len(w.staging) >= codec.EntityLimit
	w.stagingMu.Unlock()

	if full {
		return w.Flush()
	}

	return nil
}

// Flush encodes and submits any staged entities as one PrimitiveBlock
// (one PrimitiveGroup per entity type present), even if fewer than EntityLimit have accumulated.
func (w *Writer) Flush() error {
	w.stagingMu.Lock()
	pending := w.staging
	w.staging = nil
	w.stagingMu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	buf, err := codec.EntitiesToBuffer(pending)
	if err != nil {
		return err
	}

	return w.Write(buf)
}

// Write submits a pre-built Buffer of Items for encoding as its own
// PrimitiveBlock, bypassing the entity staging buffer. Buffers passed to
// Write are encoded in the order Write is called, interleaved correctly
// with entities written via WriteEntity.
func (w *Writer) Write(buf *core.Buffer) error {
	if err := w.checkFatal(); err != nil {
		return err
	}

	// Entities staged by WriteEntity before this call are submitted first.
	if err := w.Flush(); err != nil {
		return err
	}

	w.seqMu.Lock()
	seq := w.nextSeq
	w.nextSeq++
	w.seqMu.Unlock()

	w.taskWG.Add(1)

	task := func() {
		defer w.taskWG.Done()
		defer func() {
			if rec := recover(); rec != nil {
				_ = w.queue.Push(seq, writeResult{err: fmt.Errorf("%w: panic encoding block %d: %v", xerr.ErrFormat, seq, rec)})
			}
		}()

		blk, err := codec.EncodeBlock(buf, w.cfg.granularity, w.cfg.dateGran)
		if err != nil {
			_ = w.queue.Push(seq, writeResult{err: err})

			return
		}

		payload, err := blk.Marshal()
		if err != nil {
			_ = w.queue.Push(seq, writeResult{err: fmt.Errorf("%w: marshaling block %d: %v", xerr.ErrFormat, seq, err)})

			return
		}

		_ = w.queue.Push(seq, writeResult{payload: payload})
	}

	if _, err := w.pool.Submit(task); err != nil {
		w.taskWG.Done()

		return err
	}

	return nil
}

// Close flushes any staged entities, waits for every outstanding encode
// task and the writer goroutine to finish, and closes the underlying
// stream. It is safe to call Close exactly once; Go has no destructor
// to call it for you, so deferring it is the caller's responsibility.
func (w *Writer) Close() error {
	var closeErr error

	w.closeOnce.Do(func() {
		flushErr := w.Flush()

		w.taskWG.Wait()
		w.queue.Close()
		w.runWG.Wait()
		w.pool.Close()

		w.mu.Lock()
		w.state = WriterClosed
		fatal := w.fatalErr
		w.mu.Unlock()

		ioErr := w.closer.Close()

		closeErr = firstNonNil(flushErr, fatal, ioErr)
	})

	return closeErr
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
