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

package sql

import "fmt"

// Nameable is anything with a name.
type Nameable interface {
	// Name returns the name.
	Name() string
}

// Expression is a typed scalar expression. Expressions are immutable;
// WithChildren returns a modified copy.
type Expression interface {
	fmt.Stringer
	// Resolved reports whether the expression and all its children have
	// their names and types resolved.
	Resolved() bool
	// Type returns the result type of the expression.
	Type() Type
	// IsNullable reports whether the expression can produce NULL.
	IsNullable() bool
	// Children returns the immediate children of this expression.
	Children() []Expression
	// WithChildren returns a copy of this expression with the given
	// children. The number of children must match the current number.
	WithChildren(children ...Expression) (Expression, error)
}

// Node is a relational plan operator. Plan trees are immutable;
// WithChildren returns a modified copy.
type Node interface {
	fmt.Stringer
	// Resolved reports whether the node and its children are resolved.
	Resolved() bool
	// Schema returns the output schema of the node, in order.
	Schema() Schema
	// Children returns the child nodes of this node.
	Children() []Node
	// WithChildren returns a copy of this node with the given children.
	WithChildren(children ...Node) (Node, error)
}

// Table is a catalog entry: the metadata the compiler needs about one
// table. Implementations must be safe for concurrent reads and must not
// change for the lifetime of an optimization.
type Table interface {
	Nameable
	// Schema returns the ordered column definitions of the table.
	Schema() Schema
	// Distribution describes how the table's rows are spread across
	// cluster members.
	Distribution() Distribution
	// Statistics returns base statistics for costing. Never nil;
	// implementations with no information return UnknownStatistics.
	Statistics() TableStatistics
}

// SortOrder is the direction of a sort field.
type SortOrder byte

const (
	Ascending SortOrder = iota
	Descending
)

func (s SortOrder) String() string {
	if s == Descending {
		return "DESC"
	}
	return "ASC"
}

// SortField is a single ordering term: an expression plus a direction.
type SortField struct {
	Column Expression
	Order  SortOrder
}

func (s SortField) String() string {
	return fmt.Sprintf("%s %s", s.Column, s.Order)
}

// Inspect traverses the expression tree in depth-first order. It calls f
// on each expression, and descends into children only while f returns
// true.
func Inspect(e Expression, f func(Expression) bool) {
	if e == nil || !f(e) {
		return
	}
	for _, c := range e.Children() {
		Inspect(c, f)
	}
}

// InspectNode traverses the plan tree in depth-first order, same contract
// as Inspect.
func InspectNode(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children() {
		InspectNode(c, f)
	}
}
