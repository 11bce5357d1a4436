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
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func newHTTPTestStore(t *testing.T, handler http.Handler) *HTTPStore {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	parsed, err := url.Parse(srv.URL)
	require.Nil(t, err)

	port, err := strconv.Atoi(parsed.Port())
	require.Nil(t, err)

	config := &Config{
		Host:          parsed.Hostname(),
		Port:          port,
		MountPath:     "/parse",
		ApplicationID: "app-id",
		APIKey:        "api-key",
		MasterKey:     "master-key",
	}
	require.Nil(t, config.validate())

	return NewHTTPStore(config)
}

func TestHTTPStore_Create(t *testing.T) {
	req := require.New(t)

	store := newHTTPTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/parse/classes/Author", r.URL.Path)
		require.Equal(t, "app-id", r.Header.Get(headerApplicationID))
		require.Equal(t, "api-key", r.Header.Get(headerAPIKey))
		require.Empty(t, r.Header.Get(headerMasterKey))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.Nil(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Ann", body["name"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"objectId":"abc123","createdAt":"2021-03-04T05:06:07.089Z"}`))
	}))

	res, err := store.Create(context.Background(), "Author", map[string]interface{}{"name": "Ann"}, false)
	req.Nil(err)
	req.Equal("abc123", res.ObjectID)
	req.Equal("2021-03-04T05:06:07.089Z", formatDate(res.CreatedAt))
	req.Equal(res.CreatedAt, res.UpdatedAt)
}

func TestHTTPStore_MasterKey(t *testing.T) {
	req := require.New(t)

	store := newHTTPTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "master-key", r.Header.Get(headerMasterKey))
		require.Empty(t, r.Header.Get(headerAPIKey))

		_, _ = w.Write([]byte(`{"objectId":"abc123","createdAt":"2021-03-04T05:06:07.089Z"}`))
	}))

	_, err := store.Create(context.Background(), "Author", map[string]interface{}{"name": "Ann"}, true)
	req.Nil(err)
}

func TestHTTPStore_UpdateDeleteGet(t *testing.T) {
	req := require.New(t)

	store := newHTTPTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/parse/classes/Author/abc123", r.URL.Path)

		switch r.Method {
		case http.MethodPut:
			_, _ = w.Write([]byte(`{"updatedAt":"2021-03-05T00:00:00.000Z"}`))
		case http.MethodDelete:
			_, _ = w.Write([]byte(`{}`))
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"objectId":"abc123","name":"Ann"}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	ctx := context.Background()

	res, err := store.Update(ctx, "Author", "abc123", map[string]interface{}{"name": "Ann"}, false)
	req.Nil(err)
	req.Equal("2021-03-05T00:00:00.000Z", formatDate(res.UpdatedAt))

	req.Nil(store.Delete(ctx, "Author", "abc123", false))

	raw, err := store.Get(ctx, "Author", "abc123", false)
	req.Nil(err)
	req.Equal("Ann", raw["name"])
}

func TestHTTPStore_FindParams(t *testing.T) {
	req := require.New(t)

	store := newHTTPTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/parse/classes/Author", r.URL.Path)

		params := r.URL.Query()

		var where map[string]interface{}
		require.Nil(t, json.Unmarshal([]byte(params.Get("where")), &where))
		require.Equal(t, map[string]interface{}{
			"age": map[string]interface{}{"$gt": float64(30)},
		}, where)

		require.Equal(t, []string{"name", "-createdAt"}, params["order"])
		require.Equal(t, "5", params.Get("skip"))
		require.Equal(t, "10", params.Get("limit"))
		require.Equal(t, []string{"name"}, params["keys"])

		_, _ = w.Write([]byte(`{"results":[{"objectId":"abc123","name":"Ann"}]}`))
	}))

	rows, err := store.Find(context.Background(), "Author", &StoreQuery{
		Where: map[string]interface{}{"age": map[string]interface{}{"$gt": 30}},
		Order: []string{"name", "-createdAt"},
		Skip:  5,
		Limit: 10,
		Keys:  []string{"name"},
	}, false)
	req.Nil(err)
	req.Len(rows, 1)
	req.Equal("Ann", rows[0]["name"])
}

func TestHTTPStore_Count(t *testing.T) {
	req := require.New(t)

	store := newHTTPTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		require.Equal(t, "1", params.Get("count"))
		require.Equal(t, "0", params.Get("limit"))

		_, _ = w.Write([]byte(`{"results":[],"count":42}`))
	}))

	count, err := store.Count(context.Background(), "Author", nil, false)
	req.Nil(err)
	req.Equal(int64(42), count)
}

func TestHTTPStore_Ping(t *testing.T) {
	req := require.New(t)

	store := newHTTPTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/parse/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))

	req.Nil(store.Ping(context.Background()))
}

func TestHTTPStore_RemoteError(t *testing.T) {
	req := require.New(t)

	store := newHTTPTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":101,"error":"object not found"}`))
	}))

	_, err := store.Get(context.Background(), "Author", "missing", false)
	req.NotNil(err)

	var remoteErr *RemoteError
	req.True(errors.As(err, &remoteErr))
	req.Equal(101, remoteErr.Code)
	req.Equal(http.StatusNotFound, remoteErr.StatusCode)
	req.Equal("object not found", remoteErr.Message)

	// the store's object-not-found code matches the sentinel
	req.True(errors.Is(err, ErrNotFound))
}

func TestHTTPStore_ConnectionError(t *testing.T) {
	req := require.New(t)

	config := &Config{Host: "localhost", Port: 1, ApplicationID: "app-id"}
	req.Nil(config.validate())

	store := NewHTTPStore(config)
	err := store.Ping(context.Background())
	req.NotNil(err)
	req.True(errors.Is(err, ErrConnection))
}
