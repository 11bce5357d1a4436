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
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in memory Store implementation backing the package tests and
// local development. It matches the rest api's observable behavior for the
// operations gorem issues, it is not a full server.
type MemStore struct {
	mu        sync.RWMutex
	classes   map[string]map[string]*memObject
	findCalls int
}

type memObject struct {
	fields    map[string]interface{}
	createdAt time.Time
	updatedAt time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{classes: map[string]map[string]*memObject{}}
}

// FindCalls reports how many Find round trips the store has served, used by
// tests asserting relation results are cached
func (s *MemStore) FindCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findCalls
}

func newObjectID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

func (s *MemStore) Create(ctx context.Context, class string, fields map[string]interface{}, useMasterKey bool) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.classes[class]
	if !ok {
		objects = map[string]*memObject{}
		s.classes[class] = objects
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	id := newObjectID()
	objects[id] = &memObject{
		fields:    deepCopyWire(fields),
		createdAt: now,
		updatedAt: now,
	}

	return &SaveResult{ObjectID: id, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *MemStore) Update(ctx context.Context, class, objectID string, fields map[string]interface{}, useMasterKey bool) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.lookup(class, objectID)
	if err != nil {
		return nil, err
	}

	for k, v := range deepCopyWire(fields) {
		obj.fields[k] = v
	}
	obj.updatedAt = time.Now().UTC().Truncate(time.Millisecond)

	return &SaveResult{ObjectID: objectID, CreatedAt: obj.createdAt, UpdatedAt: obj.updatedAt}, nil
}

func (s *MemStore) Delete(ctx context.Context, class, objectID string, useMasterKey bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(class, objectID); err != nil {
		return err
	}

	delete(s.classes[class], objectID)
	return nil
}

func (s *MemStore) Get(ctx context.Context, class, objectID string, useMasterKey bool) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.lookup(class, objectID)
	if err != nil {
		return nil, err
	}

	return wireForm(objectID, obj), nil
}

func (s *MemStore) Find(ctx context.Context, class string, query *StoreQuery, useMasterKey bool) ([]map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.findCalls++

	matched := s.match(class, query)
	if query != nil {
		sortObjects(matched, query.Order)
		matched = window(matched, query.Skip, query.Limit)
	}

	out := make([]map[string]interface{}, len(matched))
	for i, m := range matched {
		out[i] = wireForm(m.id, m.obj)
	}

	return out, nil
}

func (s *MemStore) Count(ctx context.Context, class string, query *StoreQuery, useMasterKey bool) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.match(class, query))), nil
}

func (s *MemStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemStore) Close() error {
	return nil
}

type matchedObject struct {
	id  string
	obj *memObject
}

func (s *MemStore) lookup(class, objectID string) (*memObject, error) {
	obj, ok := s.classes[class][objectID]
	if !ok {
		return nil, &RemoteError{
			Code:       remoteCodeObjectNotFound,
			StatusCode: 404,
			Message:    "object not found for get",
		}
	}

	return obj, nil
}

func (s *MemStore) match(class string, query *StoreQuery) []*matchedObject {
	var where map[string]interface{}
	if query != nil {
		where = query.Where
	}

	var matched []*matchedObject
	for id, obj := range s.classes[class] {
		if matchesWhere(id, obj, where) {
			matched = append(matched, &matchedObject{id: id, obj: obj})
		}
	}

	// deterministic base order before explicit ordering applies
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].obj.createdAt.Equal(matched[j].obj.createdAt) {
			return matched[i].obj.createdAt.Before(matched[j].obj.createdAt)
		}
		return matched[i].id < matched[j].id
	})

	return matched
}

func matchesWhere(id string, obj *memObject, where map[string]interface{}) bool {
	for field, cond := range where {
		if !matchesCondition(fieldValue(id, obj, field), cond) {
			return false
		}
	}

	return true
}

func matchesCondition(value, cond interface{}) bool {
	ops, ok := cond.(map[string]interface{})
	if !ok || !hasOperator(ops) {
		return reflect.DeepEqual(value, cond)
	}

	for op, operand := range ops {
		switch op {
		case "$ne":
			if reflect.DeepEqual(value, operand) {
				return false
			}
		case "$gt":
			if c, ok := compareValues(value, operand); !ok || c <= 0 {
				return false
			}
		case "$gte":
			if c, ok := compareValues(value, operand); !ok || c < 0 {
				return false
			}
		case "$lt":
			if c, ok := compareValues(value, operand); !ok || c >= 0 {
				return false
			}
		case "$lte":
			if c, ok := compareValues(value, operand); !ok || c > 0 {
				return false
			}
		case "$in":
			candidates, ok := operand.([]interface{})
			if !ok {
				return false
			}
			found := false
			for _, candidate := range candidates {
				if reflect.DeepEqual(value, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case "$exists":
			want, _ := operand.(bool)
			if (value != nil) != want {
				return false
			}
		default:
			return false
		}
	}

	return true
}

func hasOperator(ops map[string]interface{}) bool {
	for op := range ops {
		if strings.HasPrefix(op, "$") {
			return true
		}
	}

	return false
}

func fieldValue(id string, obj *memObject, field string) interface{} {
	switch field {
	case "objectId":
		return id
	case "createdAt":
		return map[string]interface{}{"__type": "Date", "iso": formatDate(obj.createdAt)}
	case "updatedAt":
		return map[string]interface{}{"__type": "Date", "iso": formatDate(obj.updatedAt)}
	default:
		return obj.fields[field]
	}
}

func compareValues(a, b interface{}) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	as, aok := comparableString(a)
	bs, bok := comparableString(b)
	if aok && bok {
		return strings.Compare(as, bs), true
	}

	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// comparableString covers strings and the wire's Date payloads, whose iso form
// sorts chronologically
func comparableString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case map[string]interface{}:
		if tag, _ := s["__type"].(string); tag == "Date" {
			iso, ok := s["iso"].(string)
			return iso, ok
		}
		return "", false
	default:
		return "", false
	}
}

func sortObjects(matched []*matchedObject, order []string) {
	for i := len(order) - 1; i >= 0; i-- {
		field := order[i]
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")

		sort.SliceStable(matched, func(a, b int) bool {
			c, ok := compareValues(
				fieldValue(matched[a].id, matched[a].obj, field),
				fieldValue(matched[b].id, matched[b].obj, field),
			)
			if !ok {
				return false
			}
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
}

func window(matched []*matchedObject, skip, limit int) []*matchedObject {
	if skip > 0 {
		if skip >= len(matched) {
			return nil
		}
		matched = matched[skip:]
	}

	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	return matched
}

func wireForm(id string, obj *memObject) map[string]interface{} {
	out := make(map[string]interface{}, len(obj.fields)+3)
	for k, v := range deepCopyWire(obj.fields) {
		out[k] = v
	}

	out["objectId"] = id
	out["createdAt"] = formatDate(obj.createdAt)
	out["updatedAt"] = formatDate(obj.updatedAt)

	return out
}

func deepCopyWire(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = copyWireValue(v)
	}

	return out
}

func copyWireValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, el := range val {
			out[i] = copyWireValue(el)
		}
		return out
	case map[string]interface{}:
		return deepCopyWire(val)
	default:
		return v
	}
}
