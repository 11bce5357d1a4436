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
	"encoding/json"
	"fmt"

	"github.com/opentracing/opentracing-go"
)

// identityKey is the reserved field name resolving to the record's object id
const identityKey = "objectId"

// Entity is implemented by every concrete model type through an embedded
// Document. Concrete types add optional overrides on top:
//
//	CollectionName() string   maps the type to a different collection
//	Relations() Relations     declares named relations
type Entity interface {
	document() *Document
}

// CollectionNamer overrides the collection a model type maps to. Without it the
// collection defaults to the concrete type's name.
type CollectionNamer interface {
	CollectionName() string
}

// RelationDeclarer declares the model type's named relations. The map is read
// once at registration and validated there, resolution is lazy and cached per
// model instance.
type RelationDeclarer interface {
	Relations() Relations
}

// Relations maps relation names to their descriptors
type Relations map[string]Relation

// Document is the base every model type embeds. It wraps exactly one Record,
// no model exists without a backing record once bound to an engine.
type Document struct {
	gorem     *Gorem
	class     *mappedClass
	record    *Record
	relCache  map[string]interface{}
	masterKey bool
}

func (d *Document) document() *Document {
	return d
}

// bind wires the document to an engine, its mapped class and a backing record
func (d *Document) bind(g *Gorem, class *mappedClass, record *Record) {
	d.gorem = g
	d.class = class
	d.record = record
	d.relCache = map[string]interface{}{}
}

// Get reads a field by name. The reserved identity key resolves to the object
// id, a relation name resolves to its cached value once Resolve has run. Unset
// fields and unsaved ids yield nil, never an error.
func (d *Document) Get(key string) interface{} {
	if key == identityKey || key == "id" {
		if d.record.objectID == "" {
			return nil
		}
		return d.record.objectID
	}

	if v, ok := d.relCache[key]; ok {
		return v
	}

	// a declared relation shadows any field of the same name, it is only
	// reachable through Resolve
	if d.IsRelation(key) {
		return nil
	}

	return d.record.Get(key)
}

// Set classifies the value before storing it: maps become structured object
// fields, slices become array fields, nested models are unwrapped to their
// underlying record, everything else is stored as-is. Chainable.
func (d *Document) Set(key string, value interface{}) *Document {
	switch val := value.(type) {
	case Entity:
		d.record.Set(key, val.document().record)
	case *Record:
		d.record.Set(key, val)
	case map[string]interface{}:
		d.record.SetObject(key, val)
	case []interface{}:
		// nested models inside arrays unwrap the same way scalars do
		out := make([]interface{}, len(val))
		for i, el := range val {
			if entity, ok := el.(Entity); ok {
				out[i] = entity.document().record
				continue
			}
			out[i] = el
		}
		d.record.SetArray(key, out)
	default:
		d.record.Set(key, value)
	}

	return d
}

// Fill applies Set for every pair of data
func (d *Document) Fill(data map[string]interface{}) *Document {
	for k, v := range data {
		d.Set(k, v)
	}

	return d
}

// Add appends value to an array field. A scalar is normalized to a
// single-element array before it reaches the record.
func (d *Document) Add(key string, value interface{}) *Document {
	d.record.Add(key, normalizeArray(value))
	return d
}

// AddUnique appends value to an array field unless already present
func (d *Document) AddUnique(key string, value interface{}) *Document {
	d.record.AddUnique(key, normalizeArray(value))
	return d
}

func normalizeArray(value interface{}) []interface{} {
	if vs, ok := value.([]interface{}); ok {
		return vs
	}

	return []interface{}{value}
}

// ID returns the store assigned object id, empty before the first successful
// save
func (d *Document) ID() string {
	return d.record.objectID
}

// UseMasterKey sets whether this instance's persistence and query calls run
// with elevated privileges
func (d *Document) UseMasterKey(use bool) *Document {
	d.masterKey = use
	return d
}

// Record is the escape hatch to the underlying remote record for store
// operations gorem does not wrap
func (d *Document) Record() *Record {
	return d.record
}

// Save persists the wrapped record. Store failures surface unchanged.
func (d *Document) Save(ctx context.Context) error {
	if d.gorem == nil {
		return fmt.Errorf("model is not bound to a gorem instance, %w", ErrConfiguration)
	}

	var span opentracing.Span
	if ctx != nil && d.gorem.config != nil && d.gorem.config.OpentracingEnabled {
		span, ctx = opentracing.StartSpanFromContext(ctx, "gorem.Document.Save")
		defer span.Finish()
	}

	return d.record.Save(ctx, d.masterKey)
}

// Update fills data and saves in one call
func (d *Document) Update(ctx context.Context, data map[string]interface{}) error {
	return d.Fill(data).Save(ctx)
}

// Delete removes the record from the store
func (d *Document) Delete(ctx context.Context) error {
	if d.gorem == nil {
		return fmt.Errorf("model is not bound to a gorem instance, %w", ErrConfiguration)
	}

	return d.record.Destroy(ctx, d.masterKey)
}

// IsRelation reports whether name is a declared relation of the model's type
func (d *Document) IsRelation(name string) bool {
	if d.class == nil {
		return false
	}

	_, ok := d.class.relations[name]
	return ok
}

// Resolve resolves a declared relation by name. The first successful resolution
// is cached and returned unchanged on every later call for the lifetime of the
// model instance, no refetch happens.
func (d *Document) Resolve(ctx context.Context, name string) (interface{}, error) {
	if d.gorem == nil || d.class == nil {
		return nil, fmt.Errorf("model is not bound to a gorem instance, %w", ErrConfiguration)
	}

	if v, ok := d.relCache[name]; ok {
		return v, nil
	}

	var span opentracing.Span
	if ctx != nil && d.gorem.config != nil && d.gorem.config.OpentracingEnabled {
		span, ctx = opentracing.StartSpanFromContext(ctx, "gorem.Document.Resolve")
		defer span.Finish()
	}

	rel, ok := d.class.relations[name]
	if !ok {
		return nil, fmt.Errorf("%s, %w",
			NewInvalidRelationError("relation is not declared on "+d.class.collection, name).Error(), ErrConfiguration)
	}

	value, err := rel.resolve(ctx, d)
	if err != nil {
		return nil, err
	}

	d.relCache[name] = value
	return value, nil
}

// Clone produces an independent copy of the model: the record is deep copied,
// the relation cache starts empty
func (d *Document) Clone() (Entity, error) {
	if d.gorem == nil || d.class == nil {
		return nil, fmt.Errorf("model is not bound to a gorem instance, %w", ErrConfiguration)
	}

	clone := d.class.newEntity()
	cd := clone.document()
	cd.bind(d.gorem, d.class, d.record.Clone())
	cd.masterKey = d.masterKey

	return clone, nil
}

// ToMap serializes the model into a plain json-safe structure following the
// store's field conventions, see Record.ToMap
func (d *Document) ToMap() map[string]interface{} {
	return d.record.ToMap()
}

// ToJSON encodes the plain structure, indent selects pretty printing
func (d *Document) ToJSON(indent string) ([]byte, error) {
	if indent == "" {
		return json.Marshal(d.ToMap())
	}

	return json.MarshalIndent(d.ToMap(), "", indent)
}
