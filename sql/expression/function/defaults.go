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

package function

import (
	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/types"
)

// Defaults returns the built-in operator table.
func Defaults() *Registry {
	return NewRegistry(
		Def{Name: "count", MinArgs: 1, MaxArgs: 1, Aggregate: true},
		Def{Name: "sum", MinArgs: 1, MaxArgs: 1, Aggregate: true},
		Def{Name: "avg", MinArgs: 1, MaxArgs: 1, Aggregate: true},
		Def{Name: "min", MinArgs: 1, MaxArgs: 1, Aggregate: true},
		Def{Name: "max", MinArgs: 1, MaxArgs: 1, Aggregate: true},

		Def{Name: "upper", MinArgs: 1, MaxArgs: 1, Type: textRule("upper")},
		Def{Name: "lower", MinArgs: 1, MaxArgs: 1, Type: textRule("lower")},
		Def{Name: "length", MinArgs: 1, MaxArgs: 1, Type: func(args []sql.Expression) (sql.Type, error) {
			if !types.IsText(args[0].Type()) && !types.IsNull(args[0].Type()) {
				return nil, sql.ErrInvalidOperandType.New("length", args[0].Type())
			}
			return types.Int32, nil
		}},
		Def{Name: "abs", MinArgs: 1, MaxArgs: 1, Type: func(args []sql.Expression) (sql.Type, error) {
			if !types.IsNumber(args[0].Type()) && !types.IsNull(args[0].Type()) {
				return nil, sql.ErrInvalidOperandType.New("abs", args[0].Type())
			}
			return args[0].Type(), nil
		}},
		Def{Name: "mod", MinArgs: 2, MaxArgs: 2, Type: func(args []sql.Expression) (sql.Type, error) {
			t, ok := types.PromoteNumeric(args[0].Type(), args[1].Type())
			if !ok {
				return nil, sql.ErrTypeMismatch.New("mod", args[0].Type(), args[1].Type())
			}
			return t, nil
		}},
		Def{Name: "concat", MinArgs: 1, MaxArgs: -1, Type: func(args []sql.Expression) (sql.Type, error) {
			for _, a := range args {
				if !types.IsText(a.Type()) && !types.IsNull(a.Type()) {
					return nil, sql.ErrInvalidOperandType.New("concat", a.Type())
				}
			}
			return types.Text, nil
		}},
		Def{Name: "coalesce", MinArgs: 1, MaxArgs: -1, Type: func(args []sql.Expression) (sql.Type, error) {
			out := types.Null
			for _, a := range args {
				if types.IsNull(a.Type()) {
					continue
				}
				if types.IsNull(out) {
					out = a.Type()
					continue
				}
				if types.IsNumber(out) && types.IsNumber(a.Type()) {
					out, _ = types.PromoteNumeric(out, a.Type())
					continue
				}
				if !out.Equals(a.Type()) {
					return nil, sql.ErrTypeMismatch.New("coalesce", out, a.Type())
				}
			}
			return out, nil
		}},
	)
}

func textRule(name string) TypeRule {
	return func(args []sql.Expression) (sql.Type, error) {
		if !types.IsText(args[0].Type()) && !types.IsNull(args[0].Type()) {
			return nil, sql.ErrInvalidOperandType.New(name, args[0].Type())
		}
		return types.Text, nil
	}
}
