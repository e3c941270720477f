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
	"slices"
	"strings"
)

// nodeKind classifies a tree node by the kind of edge leading into it.
type nodeKind uint8

const (
	nodeStatic nodeKind = iota
	nodeParam
	nodeWildcard
)

// linearSearchMax is the child count up to which static children are
// scanned linearly; larger fan-outs use binary search over indices.
const linearSearchMax = 4

// node is a compressed radix tree node.
//
// Static children are keyed by the first byte of their segment: indices[i]
// is children[i].segment[0], kept sorted. A node has at most one parameter
// child and at most one wildcard child; wildcard nodes have no children.
//
// Thread safety:
// Nodes are written only while routes are registered, under the router's
// registration lock. After Freeze the tree is immutable and read without
// locking.
type node struct {
	segment       string   // literal text consumed by this node (static only)
	kind          nodeKind // edge kind leading into this node
	name          string   // parameter or wildcard name
	indices       []byte   // first byte of each static child, sorted
	children      []*node  // static children, parallel to indices
	paramChild    *node    // :name child
	wildcardChild *node    // *name child
	route         *Route   // set iff a pattern terminates here
}

// staticChild returns the static child whose segment starts with c.
func (n *node) staticChild(c byte) *node {
	if len(n.indices) <= linearSearchMax {
		for i, b := range n.indices {
			if b == c {
				return n.children[i]
			}
		}
		return nil
	}

	if i, ok := slices.BinarySearch(n.indices, c); ok {
		return n.children[i]
	}
	return nil
}

// addChild inserts a static child keeping indices sorted.
func (n *node) addChild(child *node) {
	c := child.segment[0]
	i, _ := slices.BinarySearch(n.indices, c)
	n.indices = slices.Insert(n.indices, i, c)
	n.children = slices.Insert(n.children, i, child)
}

// replaceChild swaps the static child keyed by old.segment[0] for repl.
// Both share the same first byte.
func (n *node) replaceChild(repl *node) {
	i, _ := slices.BinarySearch(n.indices, repl.segment[0])
	n.children[i] = repl
}

// longestPrefix returns the length of the common prefix of a and b.
func longestPrefix(a, b string) int {
	m := min(len(a), len(b))
	i := 0
	for i < m && a[i] == b[i] {
		i++
	}
	return i
}

// check reports the error inserting parts would produce, without mutating
// the tree. Once the walk leaves existing nodes nothing further can
// conflict.
func (n *node) check(parts []patternPart) error {
	cur := n
	for _, p := range parts {
		switch p.kind {
		case partStatic:
			s := p.text
			for s != "" {
				c := cur.staticChild(s[0])
				if c == nil || !strings.HasPrefix(s, c.segment) {
					return nil
				}
				s = s[len(c.segment):]
				cur = c
			}

		case partParam:
			if cur.paramChild == nil {
				return nil
			}
			if cur.paramChild.name != p.text {
				return fmt.Errorf("%w: :%s conflicts with existing :%s", ErrParamConflict, p.text, cur.paramChild.name)
			}
			cur = cur.paramChild

		case partWildcard:
			if cur.wildcardChild == nil {
				return nil
			}
			if cur.wildcardChild.name != p.text {
				return fmt.Errorf("%w: *%s conflicts with existing *%s", ErrWildcardConflict, p.text, cur.wildcardChild.name)
			}
			cur = cur.wildcardChild
		}
	}

	if cur.route != nil {
		return ErrDuplicateRoute
	}
	return nil
}

// insert adds rt along parts. The caller must have run check first; insert
// assumes the parts do not conflict with the tree.
func (n *node) insert(parts []patternPart, rt *Route) {
	cur := n
	for _, p := range parts {
		switch p.kind {
		case partStatic:
			cur = cur.insertStatic(p.text)

		case partParam:
			if cur.paramChild == nil {
				cur.paramChild = &node{kind: nodeParam, name: p.text}
			}
			cur = cur.paramChild

		case partWildcard:
			if cur.wildcardChild == nil {
				cur.wildcardChild = &node{kind: nodeWildcard, name: p.text}
			}
			cur = cur.wildcardChild
		}
	}
	cur.route = rt
}

// insertStatic consumes s below n, splitting nodes on partial prefixes, and
// returns the node where s ends.
func (n *node) insertStatic(s string) *node {
	cur := n
	for s != "" {
		c := cur.staticChild(s[0])
		if c == nil {
			leaf := &node{segment: s}
			cur.addChild(leaf)
			return leaf
		}

		i := longestPrefix(s, c.segment)
		if i < len(c.segment) {
			// Split c: the shared prefix becomes a new parent.
			mid := &node{segment: c.segment[:i]}
			c.segment = c.segment[i:]
			mid.addChild(c)
			cur.replaceChild(mid)
			c = mid
		}

		s = s[i:]
		cur = c
	}
	return cur
}

// lookup matches path below n, the node whose own segment has already been
// consumed. Literal children win over the parameter child, which wins over
// the wildcard child; a branch that dead-ends is abandoned and the next
// kind is tried. Captured values are appended to params and truncated again
// on backtrack.
func (n *node) lookup(path string, params *[]Param) *Route {
	if path == "" {
		return n.route
	}

	if c := n.staticChild(path[0]); c != nil && strings.HasPrefix(path, c.segment) {
		if rt := c.lookup(path[len(c.segment):], params); rt != nil {
			return rt
		}
	}

	if p := n.paramChild; p != nil {
		end := strings.IndexByte(path, '/')
		if end < 0 {
			end = len(path)
		}
		if end > 0 {
			mark := len(*params)
			*params = append(*params, Param{Key: p.name, Value: path[:end]})
			if rt := p.lookup(path[end:], params); rt != nil {
				return rt
			}
			*params = (*params)[:mark]
		}
	}

	if w := n.wildcardChild; w != nil {
		*params = append(*params, Param{Key: w.name, Value: path})
		return w.route
	}

	return nil
}
