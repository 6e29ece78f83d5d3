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
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.osmpbf.dev/pbf/internal/codec"
	"go.osmpbf.dev/pbf/internal/core"
	"go.osmpbf.dev/pbf/internal/framer"
	"go.osmpbf.dev/pbf/internal/pb"
	"go.osmpbf.dev/pbf/internal/xerr"
	"go.osmpbf.dev/pbf/model"
)

// ReaderState is one of the Reader controller's lifecycle states.
type ReaderState int32

const (
	ReaderInitializing ReaderState = iota
	ReaderReading
	ReaderDraining
	ReaderDone
	ReaderFailed
)

func (s ReaderState) String() string {
	switch s {
	case ReaderInitializing:
		return "initializing"
	case ReaderReading:
		return "reading"
	case ReaderDraining:
		return "draining"
	case ReaderDone:
		return "done"
	case ReaderFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type queueItem struct {
	buf *core.Buffer
	err error
}

// Reader is a parallel streaming PBF decoder: a dedicated goroutine reads
// framed blobs serially and dispatches decode work to a bounded pool;
// a sequence-ordered queue hands Buffers back to Next in exactly the
// order they appeared in the source, regardless of worker scheduling.
type Reader struct {
	closer io.Closer
	fr     *framer.Reader
	pool   *core.WorkerPool
	queue  *core.SortedQueue[queueItem]
	cfg    readerConfig
	header model.Header

	wg      sync.WaitGroup
	taskWG  sync.WaitGroup
	nextSeq uint64

	state     atomic.Int32
	cancelled atomic.Bool

	fatalMu  sync.Mutex
	fatalErr error

	closeOnce sync.Once
}

// Open opens path and constructs a Reader over it, synchronously decoding
// the leading OSMHeader blob before returning. The (encoding, file_format)
// pair is resolved through a Registry (DefaultRegistry unless overridden
// with WithRegistry), which fails with ErrUnsupportedFormat if no codec
// is registered for it.
func Open(path string, opts ...ReaderOption) (*Reader, error) {
	cfg := defaultReaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	entry, err := cfg.registry.lookup(EncodingBinary, FormatOSM)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerr.ErrIO, err)
	}

	r, err := entry.newReader(f, opts...)
	if err != nil {
		f.Close()

		return nil, err
	}

	return r, nil
}

// NewReader constructs a Reader over an already-open stream, taking
// ownership of rc (Close closes it). It synchronously reads and
// decodes the OSMHeader blob before returning.
func NewReader(rc io.ReadCloser, opts ...ReaderOption) (*Reader, error) {
	cfg := defaultReaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Reader{
		closer: rc,
		fr:     framer.NewReader(rc),
		pool:   core.NewWorkerPool(cfg.numWorkers),
		queue:  core.NewSortedQueue[queueItem](),
		cfg:    cfg,
	}

	if err := r.readHeader(); err != nil {
		rc.Close()

		return nil, err
	}

	r.state.Store(int32(ReaderReading))

	r.wg.Add(1)

	go r.run()

	return r, nil
}

func (r *Reader) readHeader() error {
	raw, _, err := r.fr.ReadNext()
	if err != nil {
		return err
	}

	var hb pb.HeaderBlock
	if err := hb.Unmarshal(raw); err != nil {
		return fmt.Errorf("%w: parsing OSMHeader: %v", xerr.ErrFormat, err)
	}

	if bad := codec.UnsupportedFeatures(hb.RequiredFeatures); len(bad) > 0 {
		return fmt.Errorf("%w: required features %v", xerr.ErrUnsupportedFeature, bad)
	}

	r.header = codec.DecodeHeader(&hb)

	return nil
}

// Header returns the decoded HeaderBlock contents.
func (r *Reader) Header() model.Header { return r.header }

// State reports the controller's current lifecycle state.
func (r *Reader) State() ReaderState { return ReaderState(r.state.Load()) }

func (r *Reader) run() {
	defer r.wg.Done()

	for {
		if r.cancelled.Load() {
			break
		}

		raw, _, err := r.fr.ReadNext()
		if err == io.EOF {
			break
		}

		seq := r.nextSeq
		r.nextSeq++

		if err != nil {
			r.publishFatal(seq, err)

			break
		}

		r.submit(seq, raw)

		r.throttle()
	}

	r.state.Store(int32(ReaderDraining))
	r.wg2Wait()
	r.queue.Close()
	r.state.Store(int32(ReaderDone))
}

// wg2Wait waits for every submitted decode task to finish publishing its
// slot. Named distinctly from the constructor's wg (which tracks the
// reader goroutine itself) since Close also waits on that one.
func (r *Reader) wg2Wait() {
	r.taskWG.Wait()
}

func (r *Reader) submit(seq uint64, raw []byte) {
	r.taskWG.Add(1)

	task := func() {
		defer r.taskWG.Done()
		defer func() {
			if rec := recover(); rec != nil {
				_ = r.queue.Push(seq, queueItem{err: fmt.Errorf("%w: panic decoding blob %d: %v", xerr.ErrFormat, seq, rec)})
			}
		}()

		var blk pb.PrimitiveBlock
		if err := blk.Unmarshal(raw); err != nil {
			_ = r.queue.Push(seq, queueItem{err: fmt.Errorf("%w: parsing blob %d: %v", xerr.ErrFormat, seq, err)})

			return
		}

		buf, err := codec.DecodeBlock(&blk, r.cfg.readTypes)
		if err != nil {
			_ = r.queue.Push(seq, queueItem{err: err})

			return
		}

		_ = r.queue.Push(seq, queueItem{buf: buf})
	}

	if _, err := r.pool.Submit(task); err != nil {
		r.taskWG.Done()
		r.publishFatal(seq, err)
	}
}

func (r *Reader) publishFatal(seq uint64, err error) {
	slog.Error("pbf: reader failed", "seq", seq, "error", err)
	_ = r.queue.Push(seq, queueItem{err: err})
}

func (r *Reader) throttle() {
	for {
		depth := r.pool.QueueDepth()
		size := r.queue.Size()

		if (r.cfg.numWorkers <= 0 || depth < r.cfg.numWorkers*4) && size <= r.cfg.maxQueueLag+r.cfg.numWorkers*10 {
			return
		}

		if r.cancelled.Load() {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}
}

// Next blocks until the next Buffer in source order is ready and returns
// it. It returns io.EOF once every blob has been delivered, or the fatal
// error that ended the stream early; once an error (other than io.EOF)
// is returned, every subsequent call returns the same error.
func (r *Reader) Next() (*core.Buffer, error) {
	r.fatalMu.Lock()
	sticky := r.fatalErr
	r.fatalMu.Unlock()

	if sticky != nil {
		return nil, sticky
	}

	item, err := r.queue.WaitAndPop()
	if err == core.ErrQueueClosed {
		return nil, io.EOF
	}

	if err != nil {
		return nil, err
	}

	if item.err != nil {
		r.fatalMu.Lock()
		r.fatalErr = item.err
		r.fatalMu.Unlock()
		r.state.Store(int32(ReaderFailed))

		return nil, item.err
	}

	return item.buf, nil
}

// Cancel sets the shared done flag: the reader goroutine stops after its
// next backpressure wake. In-flight workers run to completion; their
// results are discarded by a consumer that stops calling Next.
func (r *Reader) Cancel() {
	r.cancelled.Store(true)
}

// Close stops the reader goroutine, closes the pool, and closes the
// underlying stream. It blocks until the reader goroutine has exited.
func (r *Reader) Close() error {
	var err error

	r.closeOnce.Do(func() {
		r.cancelled.Store(true)
		r.wg.Wait()
		r.pool.Close()
		err = r.closer.Close()
	})

	return err
}
