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

// Package xerr holds the error-kind sentinels shared by every internal
// package (framer, codec, pb) and re-exported by the root package, so
// callers anywhere in the tree can errors.Is against one definition
// regardless of which layer raised it.
package xerr

import "fmt"

var (
	// ErrIO means the underlying read or write failed or returned short.
	ErrIO = fmt.Errorf("pbf: io error")

	// ErrFormat means an envelope violation: bad size, bad header type,
	// wire-format parse failure, or an unrecognized primitive group.
	ErrFormat = fmt.Errorf("pbf: format error")

	// ErrUnsupportedCompression means a blob used lzma, which this module
	// never decodes.
	ErrUnsupportedCompression = fmt.Errorf("pbf: unsupported compression")

	// ErrUnsupportedFeature means a HeaderBlock required feature this
	// module does not recognize.
	ErrUnsupportedFeature = fmt.Errorf("pbf: unsupported feature")

	// ErrUnsupportedFormat means the format registry has no factory for
	// the requested (encoding, file format) pair.
	ErrUnsupportedFormat = fmt.Errorf("pbf: unsupported format")

	// ErrGeometry means a writer-side object had too few points for the
	// geometry it was building (e.g. a way with fewer than 2 refs).
	ErrGeometry = fmt.Errorf("pbf: geometry error")

	// ErrWriterClosed means an operation was attempted on a writer that
	// already finished closing.
	ErrWriterClosed = fmt.Errorf("pbf: writer closed")

	// ErrWriterFailed means an operation was attempted on a writer that
	// already failed a prior write.
	ErrWriterFailed = fmt.Errorf("pbf: writer failed")

	// ErrFileExists means Create was called with the no-overwrite policy
	// against a path that already exists.
	ErrFileExists = fmt.Errorf("pbf: file exists")
)
