// Copyright 2024 GridSQL, Inc.
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

// Package plan defines the relational operators that make up logical and
// physical query plans. Nodes are immutable trees; the planner derives
// distribution traits for physical plans and records them on Exchange
// and scan nodes.
package plan

import "github.com/gridsql/gridsql/sql"

// UnaryNode is a node with one child.
type UnaryNode struct {
	Child sql.Node
}

// Schema implements the Node interface.
func (n *UnaryNode) Schema() sql.Schema {
	return n.Child.Schema()
}

// Resolved implements the Node interface.
func (n *UnaryNode) Resolved() bool {
	return n.Child.Resolved()
}

// Children implements the Node interface.
func (n *UnaryNode) Children() []sql.Node {
	return []sql.Node{n.Child}
}

// BinaryNode is a node with two children.
type BinaryNode struct {
	Left  sql.Node
	Right sql.Node
}

// Resolved implements the Node interface.
func (n *BinaryNode) Resolved() bool {
	return n.Left.Resolved() && n.Right.Resolved()
}

// Children implements the Node interface.
func (n *BinaryNode) Children() []sql.Node {
	return []sql.Node{n.Left, n.Right}
}

func expressionsResolved(exprs ...sql.Expression) bool {
	for _, e := range exprs {
		if !e.Resolved() {
			return false
		}
	}
	return true
}
