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
	"fmt"
	"time"
)

// dateLayout is the store's wire convention for timestamps, ISO-8601 in UTC with
// exactly millisecond precision and a literal Z suffix
const dateLayout = "2006-01-02T15:04:05.000Z"

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err == nil {
		return t, nil
	}

	// some deployments respond with more (or fewer) fractional digits
	t, err = time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse date '%s', %w", s, err)
	}

	return t, nil
}

// encodeValue converts a locally held value into the store's wire representation.
// Records become pointers regardless of how much of their data is available, the
// store only ever receives references.
func encodeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case time.Time:
		return map[string]interface{}{
			"__type": "Date",
			"iso":    formatDate(val),
		}
	case *Record:
		return val.pointer()
	case *File:
		return val.Encode()
	case *ACL:
		return val.Encode()
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, el := range val {
			out[i] = encodeValue(el)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, el := range val {
			out[k] = encodeValue(el)
		}
		return out
	default:
		return v
	}
}

// decodeValue converts a wire value into its local form. Tagged payloads become
// their typed counterparts, pointers become unfetched Record references bound to
// the given engine.
func decodeValue(g *Gorem, v interface{}) interface{} {
	switch val := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, el := range val {
			out[i] = decodeValue(g, el)
		}
		return out
	case map[string]interface{}:
		tag, _ := val["__type"].(string)
		switch tag {
		case "Date":
			iso, _ := val["iso"].(string)
			t, err := parseDate(iso)
			if err != nil {
				return val
			}
			return t
		case "Pointer":
			className, _ := val["className"].(string)
			objectID, _ := val["objectId"].(string)
			return newReference(g, className, objectID)
		case "Object":
			className, _ := val["className"].(string)
			rec := newRecord(g, className)
			fields := make(map[string]interface{}, len(val))
			for k, el := range val {
				if k == "__type" || k == "className" {
					continue
				}
				fields[k] = el
			}
			rec.hydrate(fields)
			return rec
		case "File":
			return decodeFile(val)
		default:
			out := make(map[string]interface{}, len(val))
			for k, el := range val {
				out[k] = decodeValue(g, el)
			}
			return out
		}
	default:
		return v
	}
}
