// Copyright 2025 The Rivaas Authors
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

package metrics

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathFilter(t *testing.T) {
	t.Parallel()

	pf := newPathFilter()
	pf.addPaths("/health", "/metrics")
	pf.addPrefixes("/debug/")
	pf.addPatterns(regexp.MustCompile(`^/v[0-9]+/internal/`))

	tests := []struct {
		path string
		want bool
	}{
		{path: "/health", want: true},
		{path: "/health/deep", want: false},
		{path: "/debug/pprof", want: true},
		{path: "/debug", want: false},
		{path: "/v2/internal/jobs", want: true},
		{path: "/v2/public/jobs", want: false},
		{path: "/", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pf.shouldExclude(tt.path), tt.path)
	}
}

func TestPathFilter_Empty(t *testing.T) {
	t.Parallel()

	var nilFilter *pathFilter
	assert.True(t, nilFilter.empty())
	assert.False(t, nilFilter.shouldExclude("/anything"))
	assert.True(t, newPathFilter().empty())
}
