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
	"sync"

	"go.osmpbf.dev/pbf/internal/xerr"
	"go.osmpbf.dev/pbf/model"
)

// Encoding/file-format identifiers a Registry can be keyed on. PBF is the
// only encoding this module ships a codec for; the constants exist so a
// caller registering another one (e.g. an XML-based encoding sharing the
// same Buffer pipeline) has a stable pair to key its own codec against.
const (
	EncodingBinary = "binary"
	FormatOSM      = "osm"
)

// ReaderFactory builds a Reader over an already-open stream. NewReader
// itself satisfies this type.
type ReaderFactory func(io.ReadCloser, ...ReaderOption) (*Reader, error)

// WriterFactory builds a Writer over an already-open stream. NewWriter
// itself satisfies this type.
type WriterFactory func(io.WriteCloser, model.Header, ...WriterOption) (*Writer, error)

type registryEntry struct {
	newReader ReaderFactory
	newWriter WriterFactory
}

// Registry maps an (encoding, file_format) pair to the factories that
// build a Reader/Writer pipeline for it. Open and Create resolve the PBF
// entry from a Registry rather than calling NewReader/NewWriter
// directly, so a caller that needs a second format can build its own
// Registry, register both codecs against it, and hand it to Open/Create
// via WithRegistry/WithWriterRegistry instead of patching this package.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

// NewRegistry returns an empty registry. Formats are registered
// explicitly with Register; nothing is added as a side effect of
// importing this package, so building one never observes another.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register adds a codec for the given (encoding, format) pair, replacing
// any existing entry for that pair.
func (r *Registry) Register(encoding, format string, newReader ReaderFactory, newWriter WriterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[registryKey(encoding, format)] = registryEntry{newReader: newReader, newWriter: newWriter}
}

func (r *Registry) lookup(encoding, format string) (registryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[registryKey(encoding, format)]
	if !ok {
		return registryEntry{}, fmt.Errorf("%w: %s/%s", xerr.ErrUnsupportedFormat, encoding, format)
	}

	return e, nil
}

func registryKey(encoding, format string) string { return encoding + "/" + format }

var (
	defaultRegistryOnce sync.Once
	defaultRegistryVal  *Registry
)

// DefaultRegistry returns the process-wide registry with the PBF codec
// registered under (EncodingBinary, FormatOSM). It is assembled lazily
// on first use by this explicit constructor rather than a package
// init() side effect. The default reader and writer configurations call
// it, so any Open, Create, NewReader or NewWriter call builds it, even
// when WithRegistry/WithWriterRegistry later replaces it; cmd/pbfctl
// builds and registers its own copy at startup and hands that to Create.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistryVal = NewRegistry()
		defaultRegistryVal.Register(EncodingBinary, FormatOSM, NewReader, NewWriter)
	})

	return defaultRegistryVal
}
