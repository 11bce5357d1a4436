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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocument_FillRoundTrip(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGorem(t)

	author := &Author{}
	req.Nil(g.Init(author))
	author.Set("name", "Ann")

	book := &Book{}
	req.Nil(g.Init(book))
	book.Fill(map[string]interface{}{
		"title":  "The Title",
		"tags":   []interface{}{"a", "b"},
		"meta":   map[string]interface{}{"pages": 200},
		"author": author,
	})

	req.Equal("The Title", book.Get("title"))
	req.Equal([]interface{}{"a", "b"}, book.Get("tags"))
	req.Equal(map[string]interface{}{"pages": 200}, book.Get("meta"))

	// the nested model was unwrapped to its backing record
	req.True(book.Record().Get("author") == author.Record())

	// "author" names a declared relation, the raw field is shadowed
	req.Nil(book.Get("author"))
}

func TestDocument_Identity(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGorem(t)
	ctx := context.Background()

	author := &Author{}
	req.Nil(g.Init(author))
	author.Set("name", "Ann")

	// no id before the first save, no error either
	req.Empty(author.ID())
	req.Nil(author.Get("objectId"))
	req.Nil(author.Get("id"))

	req.Nil(author.Save(ctx))
	req.NotEmpty(author.ID())
	req.Equal(author.ID(), author.Get("objectId"))
	req.Equal(author.ID(), author.Get("id"))
}

func TestDocument_ChainedSetters(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGorem(t)

	author := &Author{}
	req.Nil(g.Init(author))

	author.Set("name", "Ann").
		Set("age", 42).
		Add("tags", "x").
		AddUnique("tags", "x").
		AddUnique("tags", []interface{}{"y"}).
		UseMasterKey(true)

	req.Equal("Ann", author.Get("name"))

	tags, ok := author.Get("tags").([]interface{})
	req.True(ok)
	req.Equal([]interface{}{"x", "y"}, tags)
	req.True(author.masterKey)
}

func TestDocument_Update(t *testing.T) {
	req := require.New(t)
	g, store := newTestGorem(t)
	ctx := context.Background()

	author := &Author{}
	req.Nil(g.Create(ctx, author, map[string]interface{}{"name": "Ann"}, false))

	req.Nil(author.Update(ctx, map[string]interface{}{"name": "Ann B.", "age": 42}))

	raw, err := store.Get(ctx, "Author", author.ID(), false)
	req.Nil(err)
	req.Equal("Ann B.", raw["name"])
	req.Equal(42, raw["age"])
}

func TestDocument_Delete(t *testing.T) {
	req := require.New(t)
	g, store := newTestGorem(t)
	ctx := context.Background()

	author := &Author{}
	req.Nil(g.Create(ctx, author, map[string]interface{}{"name": "Ann"}, false))

	req.Nil(author.Delete(ctx))

	_, err := store.Get(ctx, "Author", author.ID(), false)
	req.True(errors.Is(err, ErrNotFound))
}

func TestDocument_Clone(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGorem(t)
	ctx := context.Background()

	author := &Author{}
	req.Nil(g.Create(ctx, author, map[string]interface{}{"name": "Ann"}, false))

	book := &Book{}
	req.Nil(g.Init(book))
	book.Set("title", "One").Set("author", author)
	req.Nil(book.Save(ctx))

	// warm the relation cache before cloning
	_, err := book.Resolve(ctx, "author")
	req.Nil(err)

	cloned, err := book.Clone()
	req.Nil(err)

	clone, ok := cloned.(*Book)
	req.True(ok)

	// independent record, empty relation cache
	req.False(clone.Record() == book.Record())
	req.Equal("One", clone.Get("title"))
	req.Empty(clone.relCache)

	clone.Set("title", "Two")
	req.Equal("One", book.Get("title"))
}

func TestDocument_IsRelation(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGorem(t)

	book := &Book{}
	req.Nil(g.Init(book))

	req.True(book.IsRelation("author"))
	req.True(book.IsRelation("contributors"))
	req.False(book.IsRelation("title"))
}

func TestDocument_UnboundErrors(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	author := &Author{}

	err := author.Save(ctx)
	req.True(errors.Is(err, ErrConfiguration))

	err = author.Delete(ctx)
	req.True(errors.Is(err, ErrConfiguration))

	_, err = author.Resolve(ctx, "books")
	req.True(errors.Is(err, ErrConfiguration))

	_, err = author.Clone()
	req.True(errors.Is(err, ErrConfiguration))
}
