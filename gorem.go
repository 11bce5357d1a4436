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
	"reflect"

	"github.com/adam-hanna/arrayOperations"
	"github.com/cornelk/hashmap"
)

var globalGorem = &Gorem{isNoOp: true, logger: GetDefaultLogger()}

// SetGlobalGorem sets the global instance of gorem
func SetGlobalGorem(g *Gorem) {
	globalGorem = g
}

// G returns the global instance of gorem
func G() *Gorem {
	return globalGorem
}

// Gorem defines an instance of the mapper with a configuration and registered
// model types
type Gorem struct {
	config      *Config
	logger      Logger
	store       Store
	mappedTypes *hashmap.HashMap
	entities    []Entity
	// isNoOp specifies whether this instance of gorem can do anything
	// is only used for the default global gorem
	isNoOp bool
}

// mappedClass is the compile-time registry entry for one model type: its
// collection, concrete type and validated relation descriptors
type mappedClass struct {
	collection string
	rtype      reflect.Type
	relations  Relations
}

func (c *mappedClass) newEntity() Entity {
	return reflect.New(c.rtype).Interface().(Entity)
}

// New returns an instance of gorem
// entities requires pointers of the model types to register
func New(config *Config, entities ...Entity) (*Gorem, error) {
	return NewContext(context.Background(), config, entities...)
}

// NewContext returns an instance of gorem but also takes in a context since it
// builds the transport and reaches out to the store to verify connectivity
func NewContext(ctx context.Context, config *Config, entities ...Entity) (*Gorem, error) {
	if config == nil {
		return nil, errors.New("config can not be nil")
	}

	if len(entities) == 0 {
		return nil, errors.New("no entities to register")
	}

	g := &Gorem{
		config:      config,
		logger:      config.Logger,
		mappedTypes: &hashmap.HashMap{},
		entities:    entities,
	}

	err := g.init(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init gorem instance, %w", err)
	}

	return g, nil
}

// init initializes the gorem structure
func (g *Gorem) init(ctx context.Context) error {
	err := g.config.validate()
	if err != nil {
		return fmt.Errorf("failed to validate config, %w", err)
	}

	g.logger = g.config.Logger

	err = g.registerEntities()
	if err != nil {
		return fmt.Errorf("failed to register entities, %w", err)
	}

	g.logger.Debug("establishing store connection")

	err = g.initStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize store, %w", err)
	}

	return nil
}

// registerEntities builds the type registry: one mappedClass per provided
// entity, relations bound and validated up front so resolution never meets an
// invalid declaration
func (g *Gorem) registerEntities() error {
	g.logger.Debug("mapping entity types")

	var collections []string
	for _, e := range g.entities {
		t := reflect.TypeOf(e)
		if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("entities must be struct pointers, got %T, %w", e, ErrConfiguration)
		}

		name := t.Elem().Name()

		collection := name
		if namer, ok := e.(CollectionNamer); ok && namer.CollectionName() != "" {
			collection = namer.CollectionName()
		}

		relations := Relations{}
		if declarer, ok := e.(RelationDeclarer); ok {
			for relName, rel := range declarer.Relations() {
				if rel == nil {
					return fmt.Errorf("%s, %w",
						NewInvalidRelationError("declared relation is not a relation descriptor", relName).Error(), ErrConfiguration)
				}

				rel.bind(relName, collection)
				if err := rel.validate(); err != nil {
					return fmt.Errorf("%s, %w", NewInvalidRelationError(err.Error(), relName).Error(), ErrConfiguration)
				}

				relations[relName] = rel
			}
		}

		g.logger.Debugf("mapped type %s to collection %s", name, collection)
		collections = append(collections, collection)
		g.mappedTypes.Set(name, &mappedClass{
			collection: collection,
			rtype:      t.Elem(),
			relations:  relations,
		})
	}

	// two types mapping to one collection would make query wrapping ambiguous
	distinct, found := arrayOperations.Distinct(collections)
	if !found || distinct.Len() != len(collections) {
		return fmt.Errorf("entity types must map to distinct collections, got %v, %w", collections, ErrConfiguration)
	}

	// validate relation targets now that every type is mapped
	g.logger.Debug("validating relation targets")
	for _, e := range g.entities {
		class, err := g.classFor(e)
		if err != nil {
			return err
		}

		for relName, rel := range class.relations {
			if _, err := g.classFor(rel.target()); err != nil {
				return fmt.Errorf("%s, %w",
					NewInvalidRelationError("relation target type is not registered", relName).Error(), ErrConfiguration)
			}
		}
	}

	return nil
}

// initStore builds the transport unless one was supplied and verifies the
// store answers
func (g *Gorem) initStore(ctx context.Context) error {
	if g.config.Store != nil {
		g.store = g.config.Store
	} else {
		g.store = NewHTTPStore(g.config)
	}

	pingCtx, cancel := context.WithTimeout(ctx, g.config.RequestTimeout)
	defer cancel()

	err := g.store.Ping(pingCtx)
	if err != nil {
		return fmt.Errorf("failed to verify connectivity, %w", err)
	}

	return nil
}

func (g *Gorem) classFor(e Entity) (*mappedClass, error) {
	t := reflect.TypeOf(e)
	if t == nil || t.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("entity must be a struct pointer, got %T, %w", e, ErrConfiguration)
	}

	raw, ok := g.mappedTypes.Get(t.Elem().Name())
	if !ok {
		return nil, fmt.Errorf("type %s is not registered, %w", t.Elem().Name(), ErrConfiguration)
	}

	return raw.(*mappedClass), nil
}

// Init binds a fresh empty record to the entity, making it a usable model
func (g *Gorem) Init(e Entity) error {
	if g.isNoOp {
		return errors.New("gorem instance is no op. Please set global gorem with SetGlobalGorem() or create a new gorem instance")
	}

	class, err := g.classFor(e)
	if err != nil {
		return err
	}

	e.document().bind(g, class, newRecord(g, class.collection))
	return nil
}

// wrap binds an existing record to a new entity of the same type as proto
func (g *Gorem) wrap(proto Entity, rec *Record) (Entity, error) {
	class, err := g.classFor(proto)
	if err != nil {
		return nil, err
	}

	entity := class.newEntity()
	entity.document().bind(g, class, rec)

	return entity, nil
}

// Create builds a fresh model from data, persists it immediately and leaves the
// populated model in e
func (g *Gorem) Create(ctx context.Context, e Entity, data map[string]interface{}, useMasterKey bool) error {
	err := g.Init(e)
	if err != nil {
		return err
	}

	d := e.document()
	d.UseMasterKey(useMasterKey)
	return d.Fill(data).Save(ctx)
}

// NewQuery returns a query against the collection e's type is registered to
func (g *Gorem) NewQuery(e Entity) (*Query, error) {
	if g.isNoOp {
		return nil, errors.New("gorem instance is no op. Please set global gorem with SetGlobalGorem() or create a new gorem instance")
	}

	class, err := g.classFor(e)
	if err != nil {
		return nil, err
	}

	return newQuery(g, class), nil
}

// All fetches every record of e's collection
func (g *Gorem) All(ctx context.Context, e Entity) ([]Entity, error) {
	query, err := g.NewQuery(e)
	if err != nil {
		return nil, err
	}

	return query.Find(ctx)
}

// Copy creates a copy instance of gorem sharing the registry and transport
func (g *Gorem) Copy() *Gorem {
	return &Gorem{
		config:      g.config,
		logger:      g.logger,
		store:       g.store,
		mappedTypes: g.mappedTypes,
		entities:    g.entities,
	}
}

// Close implements io.Closer and closes the underlying store transport
func (g *Gorem) Close() error {
	if g.store == nil {
		return errors.New("unable to close nil store")
	}

	return g.store.Close()
}
