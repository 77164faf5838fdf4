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

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gridsql/gridsql"

var queryIDCounter uint64

// Context carries one query's ambient state through the compilation
// pipeline: a standard context, a query id, a structured logger and a
// tracer. It is owned by a single query and is not shared.
type Context struct {
	context.Context

	id     uint64
	logger *logrus.Entry
	tracer trace.Tracer
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithLogger sets the logger entry the query logs through.
func WithLogger(logger *logrus.Entry) ContextOption {
	return func(ctx *Context) {
		ctx.logger = logger
	}
}

// WithTracer sets the tracer used for pipeline spans.
func WithTracer(t trace.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// NewContext creates a Context for one query.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &Context{
		Context: ctx,
		id:      atomic.AddUint64(&queryIDCounter, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.WithField("query_id", c.id)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// NewEmptyContext returns a default Context, mostly useful in tests.
func NewEmptyContext() *Context {
	return NewContext(context.Background())
}

// ID returns the unique id of this query context.
func (ctx *Context) ID() uint64 { return ctx.id }

// Logger returns the logger for this query.
func (ctx *Context) Logger() *logrus.Entry { return ctx.logger }

// Span starts a tracing span for a pipeline phase and returns the span
// and a child Context carrying it.
func (ctx *Context) Span(op string, opts ...trace.SpanStartOption) (trace.Span, *Context) {
	childCtx, span := ctx.tracer.Start(ctx.Context, op, opts...)
	return span, &Context{
		Context: childCtx,
		id:      ctx.id,
		logger:  ctx.logger,
		tracer:  ctx.tracer,
	}
}
