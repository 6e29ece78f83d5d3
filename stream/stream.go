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

// Package stream adapts pbf.Reader's Buffer-at-a-time API into the
// per-entity rill.Try channels the rest of this ecosystem builds
// pipelines from.
package stream

import (
	"io"

	"github.com/destel/rill"

	"go.osmpbf.dev/pbf"
	"go.osmpbf.dev/pbf/internal/codec"
	"go.osmpbf.dev/pbf/model"
)

// Entities drains r, emitting every decoded entity in source order. The
// channel closes after r.Next returns io.EOF, or after the first error,
// which is delivered as a final rill.Try before the channel closes.
func Entities(r *pbf.Reader) <-chan rill.Try[model.Entity] {
	out := make(chan rill.Try[model.Entity])

	go func() {
		defer close(out)

		for {
			buf, err := r.Next()
			if err == io.EOF {
				return
			}

			if err != nil {
				out <- rill.Try[model.Entity]{Error: err}

				return
			}

			entities, err := codec.BufferEntities(buf)
			if err != nil {
				out <- rill.Try[model.Entity]{Error: err}

				return
			}

			for _, e := range entities {
				out <- rill.Try[model.Entity]{Value: e}
			}
		}
	}()

	return out
}

// Nodes filters in down to its Node values, preserving order.
func Nodes(in <-chan rill.Try[model.Entity]) <-chan rill.Try[model.Node] {
	return filterCast(in, func(e model.Entity) (model.Node, bool) {
		n, ok := e.(model.Node)

		return n, ok
	})
}

// Ways filters in down to its Way values, preserving order.
func Ways(in <-chan rill.Try[model.Entity]) <-chan rill.Try[model.Way] {
	return filterCast(in, func(e model.Entity) (model.Way, bool) {
		w, ok := e.(model.Way)

		return w, ok
	})
}

// Relations filters in down to its Relation values, preserving order.
func Relations(in <-chan rill.Try[model.Entity]) <-chan rill.Try[model.Relation] {
	return filterCast(in, func(e model.Entity) (model.Relation, bool) {
		r, ok := e.(model.Relation)

		return r, ok
	})
}

// Changesets filters in down to its Changeset values, preserving order.
func Changesets(in <-chan rill.Try[model.Entity]) <-chan rill.Try[model.Changeset] {
	return filterCast(in, func(e model.Entity) (model.Changeset, bool) {
		c, ok := e.(model.Changeset)

		return c, ok
	})
}

func filterCast[T any](in <-chan rill.Try[model.Entity], cast func(model.Entity) (T, bool)) <-chan rill.Try[T] {
	out := make(chan rill.Try[T])

	go func() {
		defer close(out)

		for item := range in {
			if item.Error != nil {
				out <- rill.Try[T]{Error: item.Error}

				continue
			}

			v, ok := cast(item.Value)
			if !ok {
				continue
			}

			out <- rill.Try[T]{Value: v}
		}
	}()

	return out
}

// WriteAll submits every entity delivered on in to w via WriteEntity,
// stopping at the first error (either one carried by in itself, or one
// returned by w).
func WriteAll(w *pbf.Writer, in <-chan rill.Try[model.Entity]) error {
	for item := range in {
		if item.Error != nil {
			return item.Error
		}

		if err := w.WriteEntity(item.Value); err != nil {
			return err
		}
	}

	return nil
}

// Count consumes every rill.Try on in, returning the number of non-error
// values delivered, or the first error encountered.
func Count[T any](in <-chan rill.Try[T]) (int64, error) {
	var n int64

	for item := range in {
		if item.Error != nil {
			return n, item.Error
		}

		n++
	}

	return n, nil
}
