package gorem

// File is a reference to a file held by the remote store. Upload mechanics belong
// to the store sdk, gorem only carries and encodes the reference.
type File struct {
	Name string
	URL  string
}

// Encode produces the store's canonical encoded file representation
func (f *File) Encode() map[string]interface{} {
	out := map[string]interface{}{
		"__type": "File",
		"name":   f.Name,
	}

	if f.URL != "" {
		out["url"] = f.URL
	}

	return out
}

func decodeFile(raw map[string]interface{}) *File {
	f := &File{}
	if name, ok := raw["name"].(string); ok {
		f.Name = name
	}
	if url, ok := raw["url"].(string); ok {
		f.URL = url
	}

	return f
}
