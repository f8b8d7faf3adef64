package tropiiify

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/piprate/json-gold/ld"
)

// ErrNoInput is returned when no input file matches the given patterns.
var ErrNoInput = errors.New("tropiiify: no input files")

// Node is one expanded JSON-LD node: property URIs mapped to value arrays.
type Node map[string]any

// Graph is the ordered list of item nodes of an export payload.
type Graph struct {
	Nodes []Node
}

// First returns the first @value, or the first @list, found at prop.
func (n Node) First(prop string) (any, bool) {
	vals, ok := n[prop].([]any)
	if !ok {
		return nil, false
	}
	for _, v := range vals {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if val, ok := obj["@value"]; ok {
			return val, true
		}
		if list, ok := obj["@list"]; ok {
			return list, true
		}
	}
	return nil, false
}

// String returns the first value at prop formatted as a string.
func (n Node) String(prop string) (string, bool) {
	v, ok := n.First(prop)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}

// Float returns the first value at prop as a number. Numeric strings are
// accepted since typed literals often arrive as strings.
func (n Node) Float(prop string) (float64, bool, error) {
	v, ok := n.First(prop)
	if !ok {
		return 0, false, nil
	}
	switch val := v.(type) {
	case float64:
		return val, true, nil
	case json.Number:
		f, err := val.Float64()
		return f, err == nil, err
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false, fmt.Errorf("property %s: %w", prop, err)
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("property %s: unexpected %T", prop, v)
	}
}

// Nodes returns every node object at prop, flattening @list wrappers.
func (n Node) Nodes(prop string) []Node {
	vals, ok := n[prop].([]any)
	if !ok {
		return nil
	}
	var out []Node
	var walk func(items []any)
	walk = func(items []any) {
		for _, v := range items {
			obj, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if list, ok := obj["@list"].([]any); ok {
				walk(list)
				continue
			}
			if _, ok := obj["@value"]; ok {
				continue
			}
			out = append(out, Node(obj))
		}
	}
	walk(vals)
	return out
}

// ParseGraph reads an export payload. It accepts an expanded document
// ({"@graph": [...]}, [{"@graph": [...]}] or a node array) and expands
// compact documents that carry an @context.
func ParseGraph(data []byte) (*Graph, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if obj, ok := doc.(map[string]any); ok {
		if _, compact := obj["@context"]; compact {
			expanded, err := expand(obj)
			if err != nil {
				return nil, err
			}
			doc = expanded
		}
	}
	return &Graph{Nodes: graphNodes(doc)}, nil
}

func expand(doc map[string]any) (any, error) {
	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	expanded, err := proc.Expand(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("expand graph: %w", err)
	}
	return expanded, nil
}

func graphNodes(doc any) []Node {
	switch v := doc.(type) {
	case map[string]any:
		if g, ok := v["@graph"].([]any); ok {
			return graphNodes(g)
		}
		return []Node{Node(v)}
	case []any:
		var nodes []Node
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if g, ok := obj["@graph"].([]any); ok {
				nodes = append(nodes, graphNodes(g)...)
				continue
			}
			nodes = append(nodes, Node(obj))
		}
		return nodes
	}
	return nil
}

// LoadGraph expands the glob patterns (doublestar syntax), parses every
// matching file in sorted order and concatenates their nodes.
func LoadGraph(patterns ...string) (*Graph, []string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, nil, fmt.Errorf("glob %q: %w", p, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, nil, ErrNoInput
	}
	g := &Graph{}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", f, err)
		}
		part, err := ParseGraph(data)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", f, err)
		}
		g.Nodes = append(g.Nodes, part.Nodes...)
	}
	return g, files, nil
}
