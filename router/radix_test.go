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

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestParsePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pattern   string
		wantParts []patternPart
		wantNames []string
		wantErr   error
	}{
		{
			name:      "root",
			pattern:   "/",
			wantParts: []patternPart{{kind: partStatic, text: "/"}},
		},
		{
			name:      "static segments merge",
			pattern:   "/api/v1/users",
			wantParts: []patternPart{{kind: partStatic, text: "/api/v1/users"}},
		},
		{
			name:    "param between literals",
			pattern: "/users/:id/posts",
			wantParts: []patternPart{
				{kind: partStatic, text: "/users/"},
				{kind: partParam, text: "id"},
				{kind: partStatic, text: "/posts"},
			},
			wantNames: []string{"id"},
		},
		{
			name:    "adjacent params",
			pattern: "/:a/:b",
			wantParts: []patternPart{
				{kind: partStatic, text: "/"},
				{kind: partParam, text: "a"},
				{kind: partStatic, text: "/"},
				{kind: partParam, text: "b"},
			},
			wantNames: []string{"a", "b"},
		},
		{
			name:    "wildcard",
			pattern: "/files/*path",
			wantParts: []patternPart{
				{kind: partStatic, text: "/files/"},
				{kind: partWildcard, text: "path"},
			},
			wantNames: []string{"path"},
		},
		{
			name:      "trailing slash kept",
			pattern:   "/users/",
			wantParts: []patternPart{{kind: partStatic, text: "/users/"}},
		},
		{name: "empty", pattern: "", wantErr: ErrInvalidPattern},
		{name: "no leading slash", pattern: "users", wantErr: ErrInvalidPattern},
		{name: "colon inside segment", pattern: "/users/a:id", wantErr: ErrInvalidPattern},
		{name: "star inside segment", pattern: "/files/a*b", wantErr: ErrInvalidPattern},
		{name: "colon inside param name", pattern: "/:a:b", wantErr: ErrInvalidPattern},
		{name: "empty param name", pattern: "/users/:", wantErr: ErrEmptyParamName},
		{name: "empty wildcard name", pattern: "/files/*", wantErr: ErrEmptyParamName},
		{name: "duplicate param name", pattern: "/:id/x/:id", wantErr: ErrDuplicateParamName},
		{name: "param and wildcard share name", pattern: "/:p/*p", wantErr: ErrDuplicateParamName},
		{name: "wildcard not last", pattern: "/files/*path/edit", wantErr: ErrWildcardNotLast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parts, names, err := parsePattern(tt.pattern)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantParts, parts)
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

// RadixTestSuite tests the radix tree directly, without a Router.
type RadixTestSuite struct {
	suite.Suite

	root *node
}

func (s *RadixTestSuite) SetupTest() {
	s.root = &node{}
}

// add registers pattern on the suite tree and returns its route.
func (s *RadixTestSuite) add(pattern string) *Route {
	parts, names, err := parsePattern(pattern)
	s.Require().NoError(err)
	s.Require().NoError(s.root.check(parts), "check %s", pattern)

	rt := &Route{pattern: pattern, parts: parts, paramNames: names}
	s.root.insert(parts, rt)
	return rt
}

// find looks path up and returns the matched pattern and params.
func (s *RadixTestSuite) find(path string) (string, map[string]string) {
	params := make([]Param, 0, 8)
	rt := s.root.lookup(path, &params)
	if rt == nil {
		s.Empty(params, "params left behind for %s", path)
		return "", nil
	}
	got := make(map[string]string, len(params))
	for _, p := range params {
		got[p.Key] = p.Value
	}
	return rt.pattern, got
}

func (s *RadixTestSuite) TestStaticAndParamRoutes() {
	for _, p := range []string{
		"/",
		"/users",
		"/users/:id",
		"/users/:id/posts",
		"/users/:id/posts/:post_id",
		"/posts",
		"/posts/:id",
	} {
		s.add(p)
	}

	tests := []struct {
		path    string
		pattern string
		params  map[string]string
	}{
		{"/", "/", map[string]string{}},
		{"/users", "/users", map[string]string{}},
		{"/users/123", "/users/:id", map[string]string{"id": "123"}},
		{"/users/123/posts", "/users/:id/posts", map[string]string{"id": "123"}},
		{"/users/123/posts/456", "/users/:id/posts/:post_id", map[string]string{"id": "123", "post_id": "456"}},
		{"/posts/789", "/posts/:id", map[string]string{"id": "789"}},
		{"/nonexistent", "", nil},
		{"/users/", "", nil},
		{"/users/123/posts/456/comments", "", nil},
	}

	for _, tt := range tests {
		s.Run(tt.path, func() {
			pattern, params := s.find(tt.path)
			s.Equal(tt.pattern, pattern)
			if tt.pattern != "" {
				s.Equal(tt.params, params)
			}
		})
	}
}

func (s *RadixTestSuite) TestLiteralBeatsParam() {
	s.add("/users/:id")
	s.add("/users/new")

	pattern, params := s.find("/users/new")
	s.Equal("/users/new", pattern)
	s.Empty(params)

	pattern, params = s.find("/users/newer")
	s.Equal("/users/:id", pattern)
	s.Equal(map[string]string{"id": "newer"}, params)
}

func (s *RadixTestSuite) TestBacktracksFromDeadEndLiteral() {
	s.add("/a/b/c")
	s.add("/a/:x/d")

	pattern, params := s.find("/a/b/d")
	s.Equal("/a/:x/d", pattern)
	s.Equal(map[string]string{"x": "b"}, params)
}

func (s *RadixTestSuite) TestBacktracksFromDeadEndParam() {
	s.add("/:a/x")
	s.add("/*rest")

	pattern, params := s.find("/foo/y")
	s.Equal("/*rest", pattern)
	s.Equal(map[string]string{"rest": "foo/y"}, params, "param captured on the dead branch must be dropped")
}

func (s *RadixTestSuite) TestWildcard() {
	s.add("/files/*path")
	s.add("/files/readme")

	tests := []struct {
		path    string
		pattern string
		rest    string
	}{
		{"/files/a/b/c.txt", "/files/*path", "a/b/c.txt"},
		{"/files/readme", "/files/readme", ""},
		{"/files/readme/more", "/files/*path", "readme/more"},
		{"/files/", "", ""},
		{"/files", "", ""},
	}

	for _, tt := range tests {
		s.Run(tt.path, func() {
			pattern, params := s.find(tt.path)
			s.Equal(tt.pattern, pattern)
			if tt.rest != "" {
				s.Equal(tt.rest, params["path"])
			}
		})
	}
}

func (s *RadixTestSuite) TestEmptySegmentDoesNotMatchParam() {
	s.add("/users/:id/posts")

	pattern, _ := s.find("/users//posts")
	s.Empty(pattern)
}

func (s *RadixTestSuite) TestNodeSplitting() {
	s.add("/search")
	s.add("/support")
	s.add("/sup")

	s.Require().Len(s.root.children, 1)
	top := s.root.children[0]
	s.Equal("/s", top.segment)
	s.Equal([]byte{'e', 'u'}, top.indices)

	for _, p := range []string{"/search", "/support", "/sup"} {
		pattern, _ := s.find(p)
		s.Equal(p, pattern)
	}
	pattern, _ := s.find("/su")
	s.Empty(pattern, "end of path on a split node without a route")
}

func (s *RadixTestSuite) TestWideFanOutUsesSortedIndex() {
	letters := "zyxwvutsrqponmlkjihgfedcba"
	for i := range len(letters) {
		s.add("/" + letters[i:i+1] + "x")
	}

	s.Require().Len(s.root.children, 1)
	slash := s.root.children[0]
	s.Len(slash.indices, len(letters))
	s.IsNonDecreasing(slash.indices)

	for i := range len(letters) {
		p := "/" + letters[i:i+1] + "x"
		pattern, _ := s.find(p)
		s.Equal(p, pattern)
	}
}

func (s *RadixTestSuite) TestConflicts() {
	s.add("/users/:id")
	s.add("/files/*path")
	s.add("/static")

	tests := []struct {
		pattern string
		wantErr error
	}{
		{"/users/:name", ErrParamConflict},
		{"/users/:name/posts", ErrParamConflict},
		{"/files/*rest", ErrWildcardConflict},
		{"/static", ErrDuplicateRoute},
		{"/users/:id", ErrDuplicateRoute},
	}

	for _, tt := range tests {
		s.Run(tt.pattern, func() {
			parts, _, err := parsePattern(tt.pattern)
			s.Require().NoError(err)
			s.ErrorIs(s.root.check(parts), tt.wantErr)
		})
	}
}

func (s *RadixTestSuite) TestCheckDoesNotMutate() {
	s.add("/users/:id")

	parts, _, err := parsePattern("/users/:id/posts/:post")
	s.Require().NoError(err)
	s.Require().NoError(s.root.check(parts))

	pattern, _ := s.find("/users/1/posts/2")
	s.Empty(pattern, "check must not insert")
	s.Nil(s.root.children[0].paramChild.children)
}

func TestRadixSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RadixTestSuite))
}

func TestLongestPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, longestPrefix("", "abc"))
	assert.Equal(t, 3, longestPrefix("abc", "abc"))
	assert.Equal(t, 2, longestPrefix("abx", "aby"))
	assert.Equal(t, 1, longestPrefix("/users", "/posts"))
}
