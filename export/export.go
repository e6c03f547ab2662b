// Package export serializes a graph object's saved state to JSON or YAML,
// built from nodes.ToDict the way the original's GraphObject.toDict feeds
// its own JSON export.
package export

import (
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"github.com/someahole/nodes"
)

// JSON renders object's saved-method values as a JSON document, built
// incrementally with sjson.Set rather than a single json.Marshal of the
// map — sjson's path-based Set is the building-block the corpus pulls in
// for exactly this shape of "assemble a JSON document key by key" task,
// where encoding/json would require an intermediate typed or map value
// anyway.
func JSON(registry *nodes.Registry, object nodes.GraphObject) ([]byte, error) {
	dict, err := nodes.ToDict(registry, object)
	if err != nil {
		return nil, err
	}

	doc := "{}"
	for _, name := range sortedKeys(dict) {
		doc, err = sjson.Set(doc, name, dict[name])
		if err != nil {
			return nil, err
		}
	}
	return []byte(doc), nil
}

// YAML renders object's saved-method values as a YAML document.
func YAML(registry *nodes.Registry, object nodes.GraphObject) ([]byte, error) {
	dict, err := nodes.ToDict(registry, object)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(dict)
}

// Query reads a single saved-method value back out of a document produced
// by JSON, without unmarshaling the whole thing into a struct or map
// first — useful for a caller that only wants to inspect one field of a
// large exported object.
func Query(doc []byte, method string) gjson.Result {
	return gjson.GetBytes(doc, method)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
