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

// Package pbf is a high-throughput, parallel streaming reader and writer
// for OpenStreetMap data encoded in the PBF format.
package pbf

import (
	"go.osmpbf.dev/pbf/internal/core"
	"go.osmpbf.dev/pbf/internal/xerr"
)

// Error kinds. Use errors.Is to test a returned error against these.
var (
	ErrIO                     = xerr.ErrIO
	ErrFormat                 = xerr.ErrFormat
	ErrUnsupportedCompression = xerr.ErrUnsupportedCompression
	ErrUnsupportedFeature     = xerr.ErrUnsupportedFeature
	ErrUnsupportedFormat      = xerr.ErrUnsupportedFormat
	ErrGeometry               = xerr.ErrGeometry
	ErrWriterClosed           = xerr.ErrWriterClosed
	ErrWriterFailed           = xerr.ErrWriterFailed
	ErrFileExists             = xerr.ErrFileExists

	// ErrBufferFull is recoverable: the caller flushes and retries.
	ErrBufferFull = core.ErrBufferFull
)
