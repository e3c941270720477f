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
	"fmt"
	"strings"
)

// partKind classifies a parsed pattern fragment.
type partKind uint8

const (
	partStatic   partKind = iota // literal text, may span several segments
	partParam                    // :name, exactly one non-empty segment
	partWildcard                 // *name, the non-empty remainder of the path
)

// patternPart is one fragment of a parsed route pattern. Adjacent literal
// segments are merged so "/users/:id/posts" parses to
// ["/users/", :id, "/posts"].
type patternPart struct {
	kind partKind
	text string // literal text, or the parameter name
}

// parsePattern splits pattern into literal, parameter and wildcard parts and
// returns the parameter names in declaration order.
//
// Rules:
//   - pattern starts with '/'
//   - ':' and '*' only open a segment, never appear inside one
//   - names are non-empty and unique within the pattern
//   - a wildcard is the final segment
func parsePattern(pattern string) ([]patternPart, []string, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPattern, pattern)
	}

	var (
		parts []patternPart
		names []string
		lit   strings.Builder
	)

	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, patternPart{kind: partStatic, text: lit.String()})
			lit.Reset()
		}
	}

	// Walk segments; each iteration starts just after a '/'.
	rest := pattern[1:]
	lit.WriteByte('/')
	for {
		end := strings.IndexByte(rest, '/')
		last := end < 0
		if last {
			end = len(rest)
		}
		seg := rest[:end]

		switch {
		case seg != "" && (seg[0] == ':' || seg[0] == '*'):
			name := seg[1:]
			if name == "" {
				return nil, nil, fmt.Errorf("%w: %q", ErrEmptyParamName, pattern)
			}
			if strings.ContainsAny(name, ":*") {
				return nil, nil, fmt.Errorf("%w: %q has ':' or '*' inside segment %q", ErrInvalidPattern, pattern, seg)
			}
			for _, n := range names {
				if n == name {
					return nil, nil, fmt.Errorf("%w: %q in %q", ErrDuplicateParamName, name, pattern)
				}
			}
			names = append(names, name)

			flush()
			kind := partParam
			if seg[0] == '*' {
				if !last {
					return nil, nil, fmt.Errorf("%w: %q", ErrWildcardNotLast, pattern)
				}
				kind = partWildcard
			}
			parts = append(parts, patternPart{kind: kind, text: name})

		case strings.ContainsAny(seg, ":*"):
			return nil, nil, fmt.Errorf("%w: %q has ':' or '*' inside segment %q", ErrInvalidPattern, pattern, seg)

		default:
			lit.WriteString(seg)
		}

		if last {
			break
		}
		lit.WriteByte('/')
		rest = rest[end+1:]
	}
	flush()

	return parts, names, nil
}
