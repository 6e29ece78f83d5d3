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

package core_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.osmpbf.dev/pbf/internal/core"
)

func TestWorkerPool_SynchronousModeRunsInline(t *testing.T) {
	p := core.NewWorkerPool(0)

	var ran bool

	depth, err := p.Submit(func() { ran = true })
	assert.NoError(t, err)
	assert.Equal(t, 0, depth)
	assert.True(t, ran)
	assert.Equal(t, 0, p.QueueDepth())
}

func TestWorkerPool_RunsEveryTaskConcurrently(t *testing.T) {
	const numTasks = 200

	p := core.NewWorkerPool(4) //nolint:mnd // small fixed pool

	var count atomic.Int64

	for i := 0; i < numTasks; i++ {
		_, err := p.Submit(func() { count.Add(1) })
		assert.NoError(t, err)
	}

	p.Close()

	assert.Equal(t, int64(numTasks), count.Load())
}

func TestWorkerPool_SubmitAfterCloseFails(t *testing.T) {
	p := core.NewWorkerPool(2) //nolint:mnd // small fixed pool
	p.Close()

	_, err := p.Submit(func() {})
	assert.True(t, errors.Is(err, core.ErrPoolClosed))
}
