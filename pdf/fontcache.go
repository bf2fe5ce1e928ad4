package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalFontDefinitions serializes font definitions for the font cache.
// Output is deterministic and the useOTL flag is written in hex (0xFF).
func MarshalFontDefinitions(defs map[string]FontDefinition) ([]byte, error) {
	tree := make(map[string]any, len(defs))
	for key, def := range defs {
		tree[key] = fontDefinitionValues(def)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(encodeNode("", tree)); err != nil {
		return nil, NewError(KindInternal, "encode font cache", err)
	}
	if err := enc.Close(); err != nil {
		return nil, NewError(KindInternal, "encode font cache", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalFontDefinitions decodes a font cache payload.
func UnmarshalFontDefinitions(data []byte) (map[string]FontDefinition, error) {
	defs := map[string]FontDefinition{}
	if len(bytes.TrimSpace(data)) == 0 {
		return defs, nil
	}
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, NewError(KindValidation, "invalid font cache", err)
	}
	return defs, nil
}

// WriteFontCache persists definitions to path.
func WriteFontCache(path string, defs map[string]FontDefinition) error {
	payload, err := MarshalFontDefinitions(defs)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, payload)
}

// ReadFontCache loads definitions from path. A missing file yields no
// definitions.
func ReadFontCache(path string) (map[string]FontDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]FontDefinition{}, nil
		}
		return nil, NewError(KindInternal, fmt.Sprintf("read font cache %q", path), err)
	}
	return UnmarshalFontDefinitions(data)
}

func fontDefinitionValues(def FontDefinition) map[string]any {
	values := map[string]any{}
	for _, style := range def.Styles() {
		values[string(style)] = def.File(style)
	}
	if def.UseOTL != 0 {
		values["useOTL"] = def.UseOTL
	}
	if def.UseKashida != 0 {
		values["useKashida"] = def.UseKashida
	}
	return values
}

// encodeNode walks value recursively, producing a YAML node tree with keys in
// sorted order.
func encodeNode(key string, value any) *yaml.Node {
	switch v := value.(type) {
	case map[string]any:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				encodeNode(k, v[k]),
			)
		}
		return node
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	case int:
		if key == "useOTL" {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("0x%X", v)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(v)}
	}
}
