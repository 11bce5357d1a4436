// Copyright (c) 2023 Remlabs
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package gorem

import (
	"context"

	"github.com/opentracing/opentracing-go"
)

// Query builds and executes filtered fetches against one collection, wrapping
// every returned record as a model of the collection's registered type. The
// filter dsl compiles to the store's where clause, it is consumed by the store
// as-is.
type Query struct {
	gorem     *Gorem
	class     *mappedClass
	where     map[string]interface{}
	order     []string
	skip      int
	limit     int
	keys      []string
	masterKey bool
}

func newQuery(g *Gorem, class *mappedClass) *Query {
	return &Query{
		gorem: g,
		class: class,
		where: map[string]interface{}{},
	}
}

// ClassName is the collection this query runs against
func (q *Query) ClassName() string {
	return q.class.collection
}

func (q *Query) UseMasterKey(use bool) *Query {
	q.masterKey = use
	return q
}

func (q *Query) EqualTo(field string, value interface{}) *Query {
	q.where[field] = encodeValue(value)
	return q
}

func (q *Query) NotEqualTo(field string, value interface{}) *Query {
	return q.addCondition(field, "$ne", encodeValue(value))
}

func (q *Query) GreaterThan(field string, value interface{}) *Query {
	return q.addCondition(field, "$gt", encodeValue(value))
}

func (q *Query) GreaterThanOrEqual(field string, value interface{}) *Query {
	return q.addCondition(field, "$gte", encodeValue(value))
}

func (q *Query) LessThan(field string, value interface{}) *Query {
	return q.addCondition(field, "$lt", encodeValue(value))
}

func (q *Query) LessThanOrEqual(field string, value interface{}) *Query {
	return q.addCondition(field, "$lte", encodeValue(value))
}

func (q *Query) ContainedIn(field string, values []interface{}) *Query {
	encoded := make([]interface{}, len(values))
	for i, v := range values {
		encoded[i] = encodeValue(v)
	}

	return q.addCondition(field, "$in", encoded)
}

func (q *Query) Exists(field string, exists bool) *Query {
	return q.addCondition(field, "$exists", exists)
}

func (q *Query) addCondition(field, op string, value interface{}) *Query {
	conditions, ok := q.where[field].(map[string]interface{})
	if !ok {
		conditions = map[string]interface{}{}
		q.where[field] = conditions
	}

	conditions[op] = value
	return q
}

func (q *Query) OrderByAsc(field string) *Query {
	q.order = append(q.order, field)
	return q
}

func (q *Query) OrderByDesc(field string) *Query {
	q.order = append(q.order, "-"+field)
	return q
}

func (q *Query) Skip(skip int) *Query {
	q.skip = skip
	return q
}

func (q *Query) Limit(limit int) *Query {
	q.limit = limit
	return q
}

// Select restricts which fields the store returns
func (q *Query) Select(keys ...string) *Query {
	q.keys = append(q.keys, keys...)
	return q
}

func (q *Query) compile() *StoreQuery {
	return &StoreQuery{
		Where: q.where,
		Order: q.order,
		Skip:  q.skip,
		Limit: q.limit,
		Keys:  q.keys,
	}
}

// Find executes the query, returning zero or more models in the order the
// store produced
func (q *Query) Find(ctx context.Context) ([]Entity, error) {
	return q.find(ctx, q.compile())
}

func (q *Query) find(ctx context.Context, compiled *StoreQuery) ([]Entity, error) {
	var span opentracing.Span
	if ctx != nil && q.gorem.config != nil && q.gorem.config.OpentracingEnabled {
		span, ctx = opentracing.StartSpanFromContext(ctx, "gorem.Query.Find")
		defer span.Finish()
	}

	rows, err := q.gorem.store.Find(ctx, q.class.collection, compiled, q.masterKey)
	if err != nil {
		return nil, err
	}

	out := make([]Entity, 0, len(rows))
	for _, raw := range rows {
		entity, err := q.wrapRow(raw)
		if err != nil {
			return nil, err
		}

		out = append(out, entity)
	}

	return out, nil
}

// First returns the first match, nil when nothing matched. The query itself is
// left untouched, a later Find still returns every match.
func (q *Query) First(ctx context.Context) (Entity, error) {
	compiled := q.compile()
	compiled.Limit = 1

	found, err := q.find(ctx, compiled)
	if err != nil {
		return nil, err
	}

	if len(found) == 0 {
		return nil, nil
	}

	return found[0], nil
}

// Get fetches a single record by object id
func (q *Query) Get(ctx context.Context, objectID string) (Entity, error) {
	var span opentracing.Span
	if ctx != nil && q.gorem.config != nil && q.gorem.config.OpentracingEnabled {
		span, ctx = opentracing.StartSpanFromContext(ctx, "gorem.Query.Get")
		defer span.Finish()
	}

	raw, err := q.gorem.store.Get(ctx, q.class.collection, objectID, q.masterKey)
	if err != nil {
		return nil, err
	}

	return q.wrapRow(raw)
}

// Count returns how many records match without fetching them
func (q *Query) Count(ctx context.Context) (int64, error) {
	var span opentracing.Span
	if ctx != nil && q.gorem.config != nil && q.gorem.config.OpentracingEnabled {
		span, ctx = opentracing.StartSpanFromContext(ctx, "gorem.Query.Count")
		defer span.Finish()
	}

	return q.gorem.store.Count(ctx, q.class.collection, q.compile(), q.masterKey)
}

func (q *Query) wrapRow(raw map[string]interface{}) (Entity, error) {
	rec := newRecord(q.gorem, q.class.collection)
	rec.hydrate(raw)

	entity := q.class.newEntity()
	entity.document().bind(q.gorem, q.class, rec)
	entity.document().masterKey = q.masterKey

	return entity, nil
}
