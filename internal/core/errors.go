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

// Package core implements the data structures and concurrency primitives
// shared by the reader and writer pipelines: the Buffer/Item/Builder
// model, the sequence-ordered queue, and the bounded worker pool.
package core

import "fmt"

// ErrBufferFull is returned by Buffer.Reserve/Append when a fixed-mode
// buffer has no room left. It is recoverable: the caller rolls the buffer
// back to its last commit point and retries, typically after flushing.
var ErrBufferFull = fmt.Errorf("core: buffer full")

// ErrBuilderNesting is returned when a Builder is used in violation of the
// at-most-one-live-child-per-level discipline: writing to a parent while a
// child is live, or finishing a parent before its child.
var ErrBuilderNesting = fmt.Errorf("core: builder nesting violation")

// ErrQueueSequenceUsed is returned by SortedQueue.Push when the given
// sequence number was already pushed.
var ErrQueueSequenceUsed = fmt.Errorf("core: sequence number already pushed")

// ErrQueueClosed is returned by SortedQueue operations after Close has been
// called and no further ready slots remain.
var ErrQueueClosed = fmt.Errorf("core: queue closed")

// ErrNotReady is returned by SortedQueue.TryPop when the base slot has not
// been produced yet.
var ErrNotReady = fmt.Errorf("core: slot not ready")

// ErrPoolClosed is returned by WorkerPool.Submit after Close has been
// called.
var ErrPoolClosed = fmt.Errorf("core: pool closed")
