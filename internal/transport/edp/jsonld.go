package edp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The hub repo serves DCAT metadata as JSON-LD. Depending on the catalogue the
// property keys arrive compact ("dct:title") or as full IRIs, so every lookup
// matches both forms.

// graphNodes returns the node list of a JSON-LD document. Documents without
// an @graph wrapper are treated as a single node.
func graphNodes(data []byte) ([]map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json-ld: %w", err)
	}

	raw, ok := doc["@graph"]
	if !ok {
		return []map[string]any{doc}, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("json-ld @graph is not an array")
	}

	nodes := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if node, ok := item.(map[string]any); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// nodeByID finds a node by its @id (blank nodes included).
func nodeByID(nodes []map[string]any, id string) map[string]any {
	for _, node := range nodes {
		if nodeID(node) == id {
			return node
		}
	}
	return nil
}

func nodeID(node map[string]any) string {
	id, _ := node["@id"].(string)
	return id
}

// isType reports whether the node carries the given type, matched on the
// compact name or the trailing segment of a full IRI.
func isType(node map[string]any, name string) bool {
	for _, t := range asList(node["@type"]) {
		s, ok := t.(string)
		if !ok {
			continue
		}
		if s == name || trailingSegment(s) == trailingSegment(name) {
			return true
		}
	}
	return false
}

// values collects the raw values of a property, matching compact and IRI key forms.
func values(node map[string]any, key string) []any {
	want := trailingSegment(key)
	var out []any
	for k, v := range node {
		if k == key || (!strings.HasPrefix(k, "@") && trailingSegment(k) == want) {
			out = append(out, asList(v)...)
		}
	}
	return out
}

// literalByLang picks the literal in the requested language, falling back to
// the first literal of any language.
func literalByLang(raw []any, lang string) string {
	var fallback string
	for _, v := range raw {
		text, vlang, ok := literal(v)
		if !ok {
			continue
		}
		if vlang == lang {
			return text
		}
		if fallback == "" {
			fallback = text
		}
	}
	return fallback
}

// literalsByLang collects every literal in the requested language.
func literalsByLang(raw []any, lang string) []string {
	var out []string
	for _, v := range raw {
		text, vlang, ok := literal(v)
		if ok && vlang == lang {
			out = append(out, text)
		}
	}
	return out
}

// firstLiteral returns the first literal of any language.
func firstLiteral(raw []any) string {
	for _, v := range raw {
		if text, _, ok := literal(v); ok {
			return text
		}
	}
	return ""
}

// literal unpacks a JSON-LD literal: a plain string or a {"@value", "@language"} object.
func literal(v any) (text, lang string, ok bool) {
	switch t := v.(type) {
	case string:
		return t, "", true
	case map[string]any:
		value, exists := t["@value"]
		if !exists {
			return "", "", false
		}
		s, isStr := value.(string)
		if !isStr {
			return "", "", false
		}
		l, _ := t["@language"].(string)
		return s, l, true
	default:
		return "", "", false
	}
}

// refIDs extracts @id references, also accepting bare IRI strings.
func refIDs(raw []any) []string {
	var out []string
	for _, v := range raw {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case map[string]any:
			if id, ok := t["@id"].(string); ok {
				out = append(out, id)
			}
		}
	}
	return out
}

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{v}
	}
}

// trailingSegment strips an IRI or CURIE down to its local name:
// "http://purl.org/dc/terms/title", "dct:title" and "title" all yield "title".
func trailingSegment(key string) string {
	if i := strings.LastIndexAny(key, "#/"); i >= 0 {
		key = key[i+1:]
	}
	if i := strings.LastIndex(key, ":"); i >= 0 {
		key = key[i+1:]
	}
	return key
}
