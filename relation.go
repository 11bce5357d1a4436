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
	"errors"
	"fmt"
)

// Relation describes how a named relation on a model resolves into related
// models without executing the resolution immediately. Descriptors are bound
// and validated once at engine registration.
type Relation interface {
	resolve(ctx context.Context, owner *Document) (interface{}, error)
	// bind fills in defaulted field names once the relation's registered name
	// and owning collection are known
	bind(name, ownerCollection string)
	validate() error
	target() Entity
}

// BelongsTo declares a direct reference relation: the owning record holds a
// reference to exactly one related record under field. An empty field defaults
// to the relation's registered name.
func BelongsTo(targetEntity Entity, field string) Relation {
	return &ReferenceRelation{Target: targetEntity, Field: field}
}

// HasMany declares a foreign-key query relation: the related collection is
// queried for records whose foreignKey field references the owning record. An
// empty foreignKey defaults to the lower camel cased owning collection name.
func HasMany(targetEntity Entity, foreignKey string) Relation {
	return &ForeignKeyRelation{Target: targetEntity, Field: foreignKey}
}

// References declares an embedded reference-array relation: the owning record
// holds an array of references under field, each element wrapped individually.
// An empty field defaults to the relation's registered name.
func References(targetEntity Entity, field string) Relation {
	return &ReferenceArrayRelation{Target: targetEntity, Field: field}
}

// ReferenceRelation resolves a field holding a single record reference into a
// model of the target type, nil when the field is absent
type ReferenceRelation struct {
	Target Entity
	Field  string
}

func (r *ReferenceRelation) bind(name, ownerCollection string) {
	if r.Field == "" {
		r.Field = name
	}
}

func (r *ReferenceRelation) validate() error {
	if r.Target == nil {
		return errors.New("relation target can not be nil")
	}

	return nil
}

func (r *ReferenceRelation) target() Entity {
	return r.Target
}

func (r *ReferenceRelation) resolve(ctx context.Context, owner *Document) (interface{}, error) {
	raw := owner.record.Get(r.Field)
	if raw == nil {
		return nil, nil
	}

	rec, ok := raw.(*Record)
	if !ok {
		return nil, fmt.Errorf("field '%s' does not hold a record reference, %w", r.Field, ErrConfiguration)
	}

	return owner.gorem.wrap(r.Target, rec)
}

// ForeignKeyRelation resolves by querying the target collection for records
// whose foreign key field references the owning record. The result order is
// whatever the query facade produced.
type ForeignKeyRelation struct {
	Target Entity
	// Field is the foreign key field on the target collection
	Field string
}

func (r *ForeignKeyRelation) bind(name, ownerCollection string) {
	if r.Field == "" {
		r.Field = lowerCamelCase(ownerCollection)
	}
}

func (r *ForeignKeyRelation) validate() error {
	if r.Target == nil {
		return errors.New("relation target can not be nil")
	}

	return nil
}

func (r *ForeignKeyRelation) target() Entity {
	return r.Target
}

func (r *ForeignKeyRelation) resolve(ctx context.Context, owner *Document) (interface{}, error) {
	// an unsaved owner cannot be referenced by anything yet
	if owner.record.objectID == "" {
		return []Entity{}, nil
	}

	query, err := owner.gorem.NewQuery(r.Target)
	if err != nil {
		return nil, err
	}

	query.UseMasterKey(owner.masterKey)
	query.EqualTo(r.Field, owner.record)

	return query.Find(ctx)
}

// ReferenceArrayRelation resolves a field holding an array of references. Each
// record element is wrapped as a model of the target type, plain values pass
// through unchanged.
type ReferenceArrayRelation struct {
	Target Entity
	Field  string
}

func (r *ReferenceArrayRelation) bind(name, ownerCollection string) {
	if r.Field == "" {
		r.Field = name
	}
}

func (r *ReferenceArrayRelation) validate() error {
	if r.Target == nil {
		return errors.New("relation target can not be nil")
	}

	return nil
}

func (r *ReferenceArrayRelation) target() Entity {
	return r.Target
}

func (r *ReferenceArrayRelation) resolve(ctx context.Context, owner *Document) (interface{}, error) {
	raw := owner.record.Get(r.Field)
	if raw == nil {
		return []interface{}{}, nil
	}

	arr, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field '%s' does not hold an array, %w", r.Field, ErrConfiguration)
	}

	out := make([]interface{}, 0, len(arr))
	for _, el := range arr {
		rec, ok := el.(*Record)
		if !ok {
			out = append(out, el)
			continue
		}

		wrapped, err := owner.gorem.wrap(r.Target, rec)
		if err != nil {
			return nil, err
		}

		out = append(out, wrapped)
	}

	return out, nil
}
