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
	"testing"

	"github.com/stretchr/testify/assert"

	"go.osmpbf.dev/pbf/internal/core"
)

func TestFuture_ResolveThenGet(t *testing.T) {
	f := core.NewFuture[int]()
	f.Resolve(42) //nolint:mnd // arbitrary sentinel

	v, err := f.Get()
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFuture_RunCapturesPanic(t *testing.T) {
	f := core.NewFuture[int]()

	f.Run(func() (int, error) {
		panic("boom")
	})

	_, err := f.Get()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestFuture_RunPropagatesError(t *testing.T) {
	wantErr := errors.New("decode failed")

	f := core.NewFuture[int]()
	f.Run(func() (int, error) {
		return 0, wantErr
	})

	_, err := f.Get()
	assert.Equal(t, wantErr, err)
}

func TestFuture_FirstOutcomeWins(t *testing.T) {
	f := core.NewFuture[int]()
	f.Resolve(1)
	f.Reject(errors.New("too late"))

	v, err := f.Get()
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
}
