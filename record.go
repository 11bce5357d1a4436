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
	"fmt"
	"reflect"
	"time"
)

// Record is the untyped remote record: a mapping of field names to values
// carrying the store assigned object id, timestamps and ACL. A Record either
// holds its full data or exists only as a reference to be fetched later.
type Record struct {
	gorem     *Gorem
	className string

	objectID  string
	createdAt time.Time
	updatedAt time.Time
	acl       *ACL

	fields        map[string]interface{}
	dataAvailable bool
}

// newRecord returns a fresh empty record with its data locally available
func newRecord(g *Gorem, className string) *Record {
	return &Record{
		gorem:         g,
		className:     className,
		fields:        map[string]interface{}{},
		dataAvailable: true,
	}
}

// newReference returns a record that exists only as a pointer, no fields fetched
func newReference(g *Gorem, className, objectID string) *Record {
	return &Record{
		gorem:     g,
		className: className,
		objectID:  objectID,
		fields:    map[string]interface{}{},
	}
}

func (r *Record) ClassName() string {
	return r.className
}

func (r *Record) ObjectID() string {
	return r.objectID
}

func (r *Record) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Record) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *Record) GetACL() *ACL {
	return r.acl
}

func (r *Record) SetACL(acl *ACL) *Record {
	r.acl = acl
	return r
}

// IsDataAvailable reports whether the record's fields have been fetched, as
// opposed to the record existing only as an unresolved reference
func (r *Record) IsDataAvailable() bool {
	return r.dataAvailable
}

func (r *Record) Get(key string) interface{} {
	return r.fields[key]
}

func (r *Record) Set(key string, value interface{}) *Record {
	r.fields[key] = value
	return r
}

// SetObject sets a structured sub-object field. The wire format distinguishes
// associative and list-like payloads, hence the dedicated setters.
func (r *Record) SetObject(key string, value map[string]interface{}) *Record {
	r.fields[key] = value
	return r
}

// SetArray sets an array-valued field
func (r *Record) SetArray(key string, value []interface{}) *Record {
	r.fields[key] = value
	return r
}

func (r *Record) Unset(key string) *Record {
	delete(r.fields, key)
	return r
}

// GetAllKeys returns a copy of all fields currently present on the record
func (r *Record) GetAllKeys() map[string]interface{} {
	out := make(map[string]interface{}, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}

	return out
}

// Add appends values to an array field, creating it when absent. The argument
// is always an array even for a single value, matching the wire operation.
func (r *Record) Add(field string, values []interface{}) *Record {
	r.fields[field] = append(r.arrayField(field), values...)
	return r
}

// AddUnique appends only values not already present in the array field.
// Duplicates already in the field stay, only the incoming values are screened.
func (r *Record) AddUnique(field string, values []interface{}) *Record {
	current := r.arrayField(field)
	for _, v := range values {
		if containsValue(current, v) {
			continue
		}

		current = append(current, v)
	}

	r.fields[field] = current
	return r
}

func containsValue(arr []interface{}, v interface{}) bool {
	for _, el := range arr {
		if reflect.DeepEqual(el, v) {
			return true
		}
	}

	return false
}

func (r *Record) arrayField(field string) []interface{} {
	current, ok := r.fields[field].([]interface{})
	if !ok {
		return nil
	}

	return current
}

// Save persists the record, creating it when it has no object id yet. Failures
// surface exactly as the store raised them.
func (r *Record) Save(ctx context.Context, useMasterKey bool) error {
	g, err := r.engine()
	if err != nil {
		return err
	}

	payload := make(map[string]interface{}, len(r.fields)+1)
	for k, v := range r.fields {
		payload[k] = encodeValue(v)
	}

	if r.acl != nil {
		payload["ACL"] = r.acl.Encode()
	}

	if r.objectID == "" {
		res, err := g.store.Create(ctx, r.className, payload, useMasterKey)
		if err != nil {
			return err
		}

		r.objectID = res.ObjectID
		r.createdAt = res.CreatedAt
		r.updatedAt = res.UpdatedAt
	} else {
		res, err := g.store.Update(ctx, r.className, r.objectID, payload, useMasterKey)
		if err != nil {
			return err
		}

		r.updatedAt = res.UpdatedAt
	}

	r.dataAvailable = true
	return nil
}

// Fetch pulls the record's full data from the store, turning a reference into a
// fully available record
func (r *Record) Fetch(ctx context.Context, useMasterKey bool) error {
	g, err := r.engine()
	if err != nil {
		return err
	}

	if r.objectID == "" {
		return fmt.Errorf("cannot fetch a record without an object id, %w", ErrConfiguration)
	}

	raw, err := g.store.Get(ctx, r.className, r.objectID, useMasterKey)
	if err != nil {
		return err
	}

	r.hydrate(raw)
	return nil
}

// Destroy deletes the record from the store
func (r *Record) Destroy(ctx context.Context, useMasterKey bool) error {
	g, err := r.engine()
	if err != nil {
		return err
	}

	if r.objectID == "" {
		return fmt.Errorf("cannot destroy a record without an object id, %w", ErrConfiguration)
	}

	return g.store.Delete(ctx, r.className, r.objectID, useMasterKey)
}

// Clone returns an independent deep copy of the record
func (r *Record) Clone() *Record {
	out := &Record{
		gorem:         r.gorem,
		className:     r.className,
		objectID:      r.objectID,
		createdAt:     r.createdAt,
		updatedAt:     r.updatedAt,
		fields:        make(map[string]interface{}, len(r.fields)),
		dataAvailable: r.dataAvailable,
	}

	if r.acl != nil {
		out.acl = r.acl.clone()
	}

	for k, v := range r.fields {
		out.fields[k] = deepCopyValue(v)
	}

	return out
}

// ToMap walks the record into a plain json-safe structure. Nested records with
// their data available recurse in place, unfetched references stay opaque
// pointers, no network fetch happens here.
func (r *Record) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(r.fields)+4)
	for k, v := range r.fields {
		out[k] = plainValue(v)
	}

	if r.objectID != "" {
		out["objectId"] = r.objectID
	}

	if !r.createdAt.IsZero() {
		out["createdAt"] = formatDate(r.createdAt)
	}

	if !r.updatedAt.IsZero() {
		out["updatedAt"] = formatDate(r.updatedAt)
	}

	if r.acl != nil {
		out["ACL"] = r.acl.Encode()
	}

	return out
}

func plainValue(v interface{}) interface{} {
	switch val := v.(type) {
	case *Record:
		if val.IsDataAvailable() {
			return val.ToMap()
		}
		return val.pointer()
	case *File:
		return val.Encode()
	case time.Time:
		return formatDate(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, el := range val {
			out[i] = plainValue(el)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, el := range val {
			out[k] = plainValue(el)
		}
		return out
	default:
		return v
	}
}

// pointer is the opaque reference encoding of the record
func (r *Record) pointer() map[string]interface{} {
	return map[string]interface{}{
		"__type":    "Pointer",
		"className": r.className,
		"objectId":  r.objectID,
	}
}

// hydrate fills the record from a wire payload, after which its data counts as
// locally available
func (r *Record) hydrate(raw map[string]interface{}) {
	for k, v := range raw {
		switch k {
		case "objectId":
			if id, ok := v.(string); ok {
				r.objectID = id
			}
		case "createdAt":
			if t, ok := hydrateDate(v); ok {
				r.createdAt = t
			}
		case "updatedAt":
			if t, ok := hydrateDate(v); ok {
				r.updatedAt = t
			}
		case "ACL":
			if aclRaw, ok := v.(map[string]interface{}); ok {
				r.acl = decodeACL(aclRaw)
			}
		default:
			r.fields[k] = decodeValue(r.gorem, v)
		}
	}

	r.dataAvailable = true
}

// hydrateDate accepts both the bare iso string top-level timestamps use and the
// tagged Date payload nested ones use
func hydrateDate(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case string:
		t, err := parseDate(val)
		return t, err == nil
	case time.Time:
		return val, true
	case map[string]interface{}:
		iso, _ := val["iso"].(string)
		t, err := parseDate(iso)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

func (r *Record) engine() (*Gorem, error) {
	if r.gorem == nil || r.gorem.isNoOp {
		return nil, fmt.Errorf("record is not bound to a gorem instance, %w", ErrInternal)
	}

	return r.gorem, nil
}
