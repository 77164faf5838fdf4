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

package planbuilder

import (
	"strconv"

	ast "github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/expression"
	"github.com/gridsql/gridsql/sql/expression/aggregation"
	"github.com/gridsql/gridsql/sql/types"
)

// tryBindExpr binds an expression and converts a bind failure back into
// an ordinary error, for callers that probe alternative scopes.
func (b *Binder) tryBindExpr(s *scope, e ast.Expr) (bound sql.Expression, err error) {
	defer func() {
		if r := recover(); r != nil {
			be, ok := r.(bindErr)
			if !ok {
				panic(r)
			}
			bound, err = nil, be.err
		}
	}()
	return b.bindExpr(s, e), nil
}

// bindExpr resolves names and infers types bottom-up. Any failure
// panics through the binder's error funnel.
func (b *Binder) bindExpr(s *scope, e ast.Expr) sql.Expression {
	switch e := e.(type) {
	case *ast.ColName:
		return b.bindColName(s, e)
	case *ast.SQLVal:
		return b.bindLiteral(e)
	case ast.BoolVal:
		return expression.NewLiteral(bool(e), types.Boolean)
	case *ast.NullVal:
		return expression.NewLiteral(nil, types.Null)
	case *ast.ParenExpr:
		return b.bindExpr(s, e.Expr)
	case *ast.AndExpr:
		l, r := b.bindExpr(s, e.Left), b.bindExpr(s, e.Right)
		b.checkBoolean("AND", l)
		b.checkBoolean("AND", r)
		return expression.NewAnd(l, r)
	case *ast.OrExpr:
		l, r := b.bindExpr(s, e.Left), b.bindExpr(s, e.Right)
		b.checkBoolean("OR", l)
		b.checkBoolean("OR", r)
		return expression.NewOr(l, r)
	case *ast.NotExpr:
		c := b.bindExpr(s, e.Expr)
		b.checkBoolean("NOT", c)
		return expression.NewNot(c)
	case *ast.IsExpr:
		return b.bindIsExpr(s, e)
	case *ast.ComparisonExpr:
		return b.bindComparison(s, e)
	case *ast.BinaryExpr:
		return b.bindArithmetic(s, e)
	case *ast.UnaryExpr:
		return b.bindUnary(s, e)
	case *ast.FuncExpr:
		return b.bindFunc(s, e)
	default:
		b.handleErr(sql.ErrUnsupportedSyntax.New(ast.String(e)))
		return nil
	}
}

func (b *Binder) bindColName(s *scope, e *ast.ColName) sql.Expression {
	name := b.opts.Fold(e.Name.String())
	qualifier := ""
	if !e.Qualifier.Name.IsEmpty() {
		qualifier = b.opts.Fold(e.Qualifier.Name.String())
	}

	var matches []scopeColumn
	for _, c := range s.cols {
		if c.col != name {
			continue
		}
		if qualifier != "" && c.table != qualifier {
			continue
		}
		matches = append(matches, c)
	}
	switch len(matches) {
	case 0:
		b.handleErr(sql.ErrColumnNotFound.New(e.Name.String(), b.pos(e.Name.String())))
	case 1:
	default:
		tables := make([]string, len(matches))
		for i, m := range matches {
			tables[i] = m.table
		}
		b.handleErr(sql.ErrAmbiguousColumnName.New(e.Name.String(), tables))
	}
	c := matches[0]
	return expression.NewGetField(c.index, c.typ, c.table, c.dispName, c.nullable)
}

func (b *Binder) bindLiteral(v *ast.SQLVal) sql.Expression {
	switch v.Type {
	case ast.IntVal:
		return expression.NewLiteral(b.parseInt(string(v.Val)), types.Int64)
	case ast.FloatVal:
		f, err := strconv.ParseFloat(string(v.Val), 64)
		if err != nil {
			b.handleErr(sql.ErrSyntax.New(err.Error()))
		}
		return expression.NewLiteral(f, types.Float64)
	case ast.StrVal:
		return expression.NewLiteral(string(v.Val), types.Text)
	default:
		b.handleErr(sql.ErrUnsupportedSyntax.New(ast.String(v)))
		return nil
	}
}

func (b *Binder) parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		b.handleErr(sql.ErrSyntax.New(err.Error()))
	}
	return n
}

func (b *Binder) bindIsExpr(s *scope, e *ast.IsExpr) sql.Expression {
	c := b.bindExpr(s, e.Expr)
	switch e.Operator {
	case ast.IsNullStr:
		return expression.NewIsNull(c)
	case ast.IsNotNullStr:
		return expression.NewNot(expression.NewIsNull(c))
	default:
		b.handleErr(sql.ErrUnsupportedSyntax.New(e.Operator))
		return nil
	}
}

func (b *Binder) bindComparison(s *scope, e *ast.ComparisonExpr) sql.Expression {
	l := b.bindExpr(s, e.Left)
	r := b.bindExpr(s, e.Right)
	if !types.Comparable(l.Type(), r.Type()) {
		b.handleErr(sql.ErrTypeMismatch.New(e.Operator, l.Type(), r.Type()))
	}
	switch e.Operator {
	case ast.EqualStr:
		return expression.NewEquals(l, r)
	case ast.NotEqualStr:
		return expression.NewNotEquals(l, r)
	case ast.LessThanStr:
		return expression.NewLessThan(l, r)
	case ast.LessEqualStr:
		return expression.NewLessThanOrEqual(l, r)
	case ast.GreaterThanStr:
		return expression.NewGreaterThan(l, r)
	case ast.GreaterEqualStr:
		return expression.NewGreaterThanOrEqual(l, r)
	default:
		b.handleErr(sql.ErrUnsupportedSyntax.New(e.Operator))
		return nil
	}
}

func (b *Binder) bindArithmetic(s *scope, e *ast.BinaryExpr) sql.Expression {
	l := b.bindExpr(s, e.Left)
	r := b.bindExpr(s, e.Right)
	if _, ok := types.PromoteNumeric(l.Type(), r.Type()); !ok {
		b.handleErr(sql.ErrTypeMismatch.New(e.Operator, l.Type(), r.Type()))
	}
	switch e.Operator {
	case ast.PlusStr:
		return expression.NewPlus(l, r)
	case ast.MinusStr:
		return expression.NewMinus(l, r)
	case ast.MultStr:
		return expression.NewMult(l, r)
	case ast.DivStr:
		return expression.NewDiv(l, r)
	default:
		b.handleErr(sql.ErrUnsupportedSyntax.New(e.Operator))
		return nil
	}
}

func (b *Binder) bindUnary(s *scope, e *ast.UnaryExpr) sql.Expression {
	if e.Operator != ast.UMinusStr {
		b.handleErr(sql.ErrUnsupportedSyntax.New(e.Operator))
	}
	c := b.bindExpr(s, e.Expr)
	if !types.IsNumber(c.Type()) && !types.IsNull(c.Type()) {
		b.handleErr(sql.ErrInvalidOperandType.New("-", c.Type()))
	}
	// Negation as subtraction from zero keeps the operand's promoted
	// type without a dedicated operator.
	return expression.NewMinus(expression.NewLiteral(int64(0), types.Int64), c)
}

func (b *Binder) bindFunc(s *scope, e *ast.FuncExpr) sql.Expression {
	name := e.Name.Lowered()
	def, ok := b.funcs.Function(name)
	if !ok {
		b.handleErr(sql.ErrFunctionNotFound.New(name))
	}
	if e.Distinct {
		b.handleErr(sql.ErrUnsupportedFeature.New("DISTINCT aggregates"))
	}

	// COUNT(*) is the only star call.
	if len(e.Exprs) == 1 {
		if _, isStar := e.Exprs[0].(*ast.StarExpr); isStar {
			if name != "count" {
				b.handleErr(sql.ErrUnsupportedSyntax.New(name + "(*)"))
			}
			return aggregation.NewCountAll()
		}
	}

	var args []sql.Expression
	for _, se := range e.Exprs {
		ae, ok := se.(*ast.AliasedExpr)
		if !ok {
			b.handleErr(sql.ErrUnsupportedSyntax.New(ast.String(se)))
		}
		arg := b.bindExpr(s, ae.Expr)
		if def.Aggregate && aggregation.IsAggregate(arg) {
			b.handleErr(sql.ErrUnsupportedSyntax.New("nested aggregate functions"))
		}
		args = append(args, arg)
	}
	if !def.AcceptsArity(len(args)) {
		b.handleErr(sql.ErrInvalidArgumentNumber.New(name, def.ArityString(), len(args)))
	}

	if def.Aggregate {
		return b.bindAggregate(name, args)
	}
	if def.Type == nil {
		b.handleErr(sql.ErrInternal.New("function " + name + " has no result type rule"))
	}
	t, err := def.Type(args)
	if err != nil {
		b.handleErr(err)
	}
	nullable := false
	for _, a := range args {
		if a.IsNullable() {
			nullable = true
		}
	}
	return expression.NewCall(name, t, nullable, args...)
}

func (b *Binder) bindAggregate(name string, args []sql.Expression) sql.Expression {
	arg := args[0]
	switch name {
	case "count":
		return aggregation.NewCount(arg)
	case "sum", "avg":
		if !types.IsNumber(arg.Type()) && !types.IsNull(arg.Type()) {
			b.handleErr(sql.ErrInvalidOperandType.New(name, arg.Type()))
		}
		if name == "sum" {
			return aggregation.NewSum(arg)
		}
		return aggregation.NewAvg(arg)
	case "min":
		return aggregation.NewMin(arg)
	case "max":
		return aggregation.NewMax(arg)
	default:
		b.handleErr(sql.ErrUnsupportedFeature.New("user-defined aggregate functions"))
		return nil
	}
}

func (b *Binder) checkBoolean(op string, e sql.Expression) {
	if !types.IsBoolean(e.Type()) && !types.IsNull(e.Type()) {
		b.handleErr(sql.ErrInvalidOperandType.New(op, e.Type()))
	}
}
