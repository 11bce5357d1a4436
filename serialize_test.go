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
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecord_ToMap(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGorem(t)

	rec := newRecord(g, "Author")
	rec.Set("name", "Ann")
	rec.objectID = "abc123"
	rec.createdAt = time.Date(2021, 3, 4, 5, 6, 7, 89000000, time.UTC)

	out := rec.ToMap()
	req.Equal("abc123", out["objectId"])
	req.Equal("2021-03-04T05:06:07.089Z", out["createdAt"])
	req.Equal("Ann", out["name"])

	// zero timestamps and an absent acl leave no keys behind
	_, ok := out["updatedAt"]
	req.False(ok)
	_, ok = out["ACL"]
	req.False(ok)
}

func TestRecord_ToMapNestedRecords(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGorem(t)

	fetched := newRecord(g, "Publisher")
	fetched.Set("name", "Omni")
	fetched.objectID = "p1"

	rec := newRecord(g, "Author")
	rec.Set("publisher", fetched)
	rec.Set("employer", newReference(g, "Publisher", "p2"))

	out := rec.ToMap()

	// a fetched record serializes in place
	nested, ok := out["publisher"].(map[string]interface{})
	req.True(ok)
	req.Equal("Omni", nested["name"])
	req.Equal("p1", nested["objectId"])

	// an unfetched reference stays an opaque pointer, nothing is fetched
	pointer, ok := out["employer"].(map[string]interface{})
	req.True(ok)
	req.Equal(map[string]interface{}{
		"__type":    "Pointer",
		"className": "Publisher",
		"objectId":  "p2",
	}, pointer)
}

func TestRecord_ToMapSpecialValues(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGorem(t)

	rec := newRecord(g, "Author")
	rec.Set("joined", time.Date(2022, 1, 2, 3, 4, 5, 600000000, time.UTC))
	rec.Set("avatar", &File{Name: "a.png", URL: "http://files/a.png"})
	rec.SetArray("dates", []interface{}{time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)})
	rec.SetACL(NewACL().SetPublicReadAccess(true).SetRoleWriteAccess("admin", true))

	out := rec.ToMap()
	req.Equal("2022-01-02T03:04:05.600Z", out["joined"])

	avatar, ok := out["avatar"].(map[string]interface{})
	req.True(ok)
	req.Equal("File", avatar["__type"])
	req.Equal("a.png", avatar["name"])

	dates, ok := out["dates"].([]interface{})
	req.True(ok)
	req.Equal("2022-01-01T00:00:00.000Z", dates[0])

	acl, ok := out["ACL"].(map[string]interface{})
	req.True(ok)
	req.Equal(map[string]interface{}{"read": true}, acl["*"])
	req.Equal(map[string]interface{}{"write": true}, acl["role:admin"])
}

func TestDocument_ToJSON(t *testing.T) {
	req := require.New(t)
	g, _ := newTestGorem(t)

	author := &Author{}
	req.Nil(g.Init(author))
	author.Set("name", "Ann").Set("age", 42)

	raw, err := author.ToJSON("")
	req.Nil(err)

	var decoded map[string]interface{}
	req.Nil(json.Unmarshal(raw, &decoded))
	req.Equal("Ann", decoded["name"])
	req.Equal(float64(42), decoded["age"])

	pretty, err := author.ToJSON("  ")
	req.Nil(err)
	req.Contains(string(pretty), "\n  ")
}
