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
	"net/url"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestIntegration_EndToEnd runs the whole flow against a real store. It only
// runs when GOREM_INTEGRATION_URL points at one, e.g.
// GOREM_INTEGRATION_URL=http://localhost:1337/parse with GOREM_APP_ID and
// GOREM_MASTER_KEY set accordingly.
func TestIntegration_EndToEnd(t *testing.T) {
	rawURL := os.Getenv("GOREM_INTEGRATION_URL")
	if rawURL == "" || testing.Short() {
		t.Skip("no integration store configured")
		return
	}

	req := require.New(t)

	parsed, err := url.Parse(rawURL)
	req.Nil(err)

	port, err := strconv.Atoi(parsed.Port())
	req.Nil(err)

	conf := &Config{
		Host:          parsed.Hostname(),
		Port:          port,
		Protocol:      parsed.Scheme,
		MountPath:     parsed.Path,
		ApplicationID: os.Getenv("GOREM_APP_ID"),
		APIKey:        os.Getenv("GOREM_API_KEY"),
		MasterKey:     os.Getenv("GOREM_MASTER_KEY"),
	}

	g, err := New(conf, &Author{}, &Book{}, &Publisher{})
	req.Nil(err)
	defer g.Close()

	ctx := context.Background()

	author := &Author{}
	req.Nil(g.Create(ctx, author, map[string]interface{}{"name": "Ann"}, true))
	req.NotEmpty(author.ID())

	book := &Book{}
	req.Nil(g.Init(book))
	book.UseMasterKey(true)
	book.Set("title", "One").Set("author", author)
	req.Nil(book.Save(ctx))

	author.UseMasterKey(true)
	resolved, err := author.Resolve(ctx, "books")
	req.Nil(err)
	req.Len(resolved.([]Entity), 1)

	query, err := g.NewQuery(&Book{})
	req.Nil(err)
	query.UseMasterKey(true)

	loaded, err := query.Get(ctx, book.ID())
	req.Nil(err)
	req.Equal("One", loaded.document().Get("title"))

	req.Nil(book.Delete(ctx))
	req.Nil(author.Delete(ctx))
}
