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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const (
	headerApplicationID = "X-Parse-Application-Id"
	headerAPIKey        = "X-Parse-REST-API-Key"
	headerMasterKey     = "X-Parse-Master-Key"
)

// HTTPStore speaks the store's rest api over plain http
type HTTPStore struct {
	endpoint      string
	applicationID string
	apiKey        string
	masterKey     string
	client        *http.Client
	logger        Logger
}

func NewHTTPStore(config *Config) *HTTPStore {
	logger := config.Logger
	if logger == nil {
		logger = GetDefaultLogger()
	}

	return &HTTPStore{
		endpoint:      config.Endpoint(),
		applicationID: config.ApplicationID,
		apiKey:        config.APIKey,
		masterKey:     config.MasterKey,
		client:        &http.Client{Timeout: config.RequestTimeout},
		logger:        logger,
	}
}

func (s *HTTPStore) Create(ctx context.Context, class string, fields map[string]interface{}, useMasterKey bool) (*SaveResult, error) {
	var resp struct {
		ObjectID  string `json:"objectId"`
		CreatedAt string `json:"createdAt"`
	}

	err := s.request(ctx, http.MethodPost, "/classes/"+class, nil, fields, useMasterKey, &resp)
	if err != nil {
		return nil, err
	}

	createdAt, err := parseDate(resp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err.Error(), ErrInternal)
	}

	return &SaveResult{
		ObjectID:  resp.ObjectID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

func (s *HTTPStore) Update(ctx context.Context, class, objectID string, fields map[string]interface{}, useMasterKey bool) (*SaveResult, error) {
	var resp struct {
		UpdatedAt string `json:"updatedAt"`
	}

	err := s.request(ctx, http.MethodPut, "/classes/"+class+"/"+objectID, nil, fields, useMasterKey, &resp)
	if err != nil {
		return nil, err
	}

	updatedAt, err := parseDate(resp.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err.Error(), ErrInternal)
	}

	return &SaveResult{
		ObjectID:  objectID,
		UpdatedAt: updatedAt,
	}, nil
}

func (s *HTTPStore) Delete(ctx context.Context, class, objectID string, useMasterKey bool) error {
	return s.request(ctx, http.MethodDelete, "/classes/"+class+"/"+objectID, nil, nil, useMasterKey, nil)
}

func (s *HTTPStore) Get(ctx context.Context, class, objectID string, useMasterKey bool) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	err := s.request(ctx, http.MethodGet, "/classes/"+class+"/"+objectID, nil, nil, useMasterKey, &out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *HTTPStore) Find(ctx context.Context, class string, query *StoreQuery, useMasterKey bool) ([]map[string]interface{}, error) {
	params, err := queryParams(query, false)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Results []map[string]interface{} `json:"results"`
	}

	err = s.request(ctx, http.MethodGet, "/classes/"+class, params, nil, useMasterKey, &resp)
	if err != nil {
		return nil, err
	}

	return resp.Results, nil
}

func (s *HTTPStore) Count(ctx context.Context, class string, query *StoreQuery, useMasterKey bool) (int64, error) {
	params, err := queryParams(query, true)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Count int64 `json:"count"`
	}

	err = s.request(ctx, http.MethodGet, "/classes/"+class, params, nil, useMasterKey, &resp)
	if err != nil {
		return 0, err
	}

	return resp.Count, nil
}

func (s *HTTPStore) Ping(ctx context.Context) error {
	return s.request(ctx, http.MethodGet, "/health", nil, nil, false, nil)
}

func (s *HTTPStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func queryParams(query *StoreQuery, count bool) (url.Values, error) {
	params := url.Values{}
	if query == nil {
		query = &StoreQuery{}
	}

	if len(query.Where) != 0 {
		where, err := json.Marshal(query.Where)
		if err != nil {
			return nil, fmt.Errorf("cannot marshal where clause, %w", ErrInternal)
		}
		params.Set("where", string(where))
	}

	for _, order := range query.Order {
		params.Add("order", order)
	}

	if query.Skip > 0 {
		params.Set("skip", strconv.Itoa(query.Skip))
	}

	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	if count {
		params.Set("count", "1")
		params.Set("limit", "0")
	}

	for _, key := range query.Keys {
		params.Add("keys", key)
	}

	return params, nil
}

func (s *HTTPStore) request(ctx context.Context, method, path string, params url.Values, body interface{}, useMasterKey bool, out interface{}) error {
	target := s.endpoint + path
	if len(params) != 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("cannot marshal request body, %w", ErrInternal)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s, %w", err.Error(), ErrInternal)
	}

	req.Header.Set(headerApplicationID, s.applicationID)
	if useMasterKey {
		req.Header.Set(headerMasterKey, s.masterKey)
	} else if s.apiKey != "" {
		req.Header.Set(headerAPIKey, s.apiKey)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.logger.Debugf("store request: %s %s", method, target)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s, %w", err.Error(), ErrConnection)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s, %w", err.Error(), ErrConnection)
	}

	if resp.StatusCode >= 400 {
		remoteErr := &RemoteError{StatusCode: resp.StatusCode}
		var payload struct {
			Code  int    `json:"code"`
			Error string `json:"error"`
		}
		if err = json.Unmarshal(raw, &payload); err == nil {
			remoteErr.Code = payload.Code
			remoteErr.Message = payload.Error
		} else {
			remoteErr.Message = string(raw)
		}

		return remoteErr
	}

	if out == nil {
		return nil
	}

	if err = json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("cannot unmarshal store response, %w", ErrInternal)
	}

	return nil
}
