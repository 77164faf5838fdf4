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

package plan

import (
	"fmt"
	"strings"

	"github.com/gridsql/gridsql/sql"
)

// ExchangeMode is the data movement an Exchange performs.
type ExchangeMode byte

const (
	// ExchangeGather collects all rows onto a single member.
	ExchangeGather ExchangeMode = iota
	// ExchangeRepartition rehashes rows across members by a key set.
	ExchangeRepartition
	// ExchangeBroadcast replicates every row to every member.
	ExchangeBroadcast
)

func (m ExchangeMode) String() string {
	switch m {
	case ExchangeRepartition:
		return "Repartition"
	case ExchangeBroadcast:
		return "Broadcast"
	default:
		return "Gather"
	}
}

// Exchange moves rows between members. It only appears in physical
// plans; the planner inserts it to satisfy distribution requirements and
// charges network cost for it.
type Exchange struct {
	UnaryNode
	Mode ExchangeMode
	// Keys are the repartitioning columns, lowercased. Empty unless Mode
	// is ExchangeRepartition.
	Keys []string
	// Members is the cluster size the exchange was planned for.
	Members int
}

var _ sql.Node = (*Exchange)(nil)

// NewGather creates an exchange that collects rows on one member.
func NewGather(child sql.Node, members int) *Exchange {
	return &Exchange{
		UnaryNode: UnaryNode{Child: child},
		Mode:      ExchangeGather,
		Members:   members,
	}
}

// NewRepartition creates an exchange that rehashes rows by the given
// keys.
func NewRepartition(child sql.Node, members int, keys ...string) *Exchange {
	lowered := make([]string, len(keys))
	for i, k := range keys {
		lowered[i] = strings.ToLower(k)
	}
	return &Exchange{
		UnaryNode: UnaryNode{Child: child},
		Mode:      ExchangeRepartition,
		Keys:      lowered,
		Members:   members,
	}
}

// NewBroadcast creates an exchange that replicates rows to all members.
func NewBroadcast(child sql.Node, members int) *Exchange {
	return &Exchange{
		UnaryNode: UnaryNode{Child: child},
		Mode:      ExchangeBroadcast,
		Members:   members,
	}
}

// Distribution is the trait the exchange's output carries.
func (e *Exchange) Distribution() sql.Distribution {
	switch e.Mode {
	case ExchangeRepartition:
		return sql.PartitionedDistribution(e.Members, e.Keys...)
	case ExchangeBroadcast:
		return sql.ReplicatedDistribution()
	default:
		return sql.SingleDistribution()
	}
}

// WithChildren implements the Node interface.
func (e *Exchange) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	ne := *e
	ne.Child = children[0]
	return &ne, nil
}

func (e *Exchange) String() string {
	if e.Mode == ExchangeRepartition {
		return fmt.Sprintf("Exchange[Repartition(%s)]", strings.Join(e.Keys, ", "))
	}
	return fmt.Sprintf("Exchange[%s]", e.Mode)
}
