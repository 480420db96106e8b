package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adelrodriguez/sakuga/internal/log"
)

// ErrInvalidKey indicates a config key that is empty or points into a
// non-mapping value.
var ErrInvalidKey = errors.New("invalid config key")

// SaveValue sets a dotted key such as "style.theme" in the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveValue(configPath, key, value string) error {
	path := strings.Split(key, ".")
	for _, part := range path {
		if part == "" {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}

	// Read existing file content
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		// Empty or new file - create document structure
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}

	if err := setNode(doc.Content[0], path, scalarNode(value)); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidKey, key, err)
	}

	// Marshal back to YAML
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := writeAtomic(configPath, buf.Bytes()); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Saved config value", "path", configPath, "key", key)
	return nil
}

// setNode walks mapping nodes along path, creating missing mappings, and
// replaces the leaf value.
func setNode(node *yaml.Node, path []string, value *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%s is not a mapping", path[0])
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value != path[0] {
			continue
		}
		if len(path) == 1 {
			// Keep any line comment attached to the old value
			value.LineComment = node.Content[i+1].LineComment
			node.Content[i+1] = value
			return nil
		}
		return setNode(node.Content[i+1], path[1:], value)
	}

	child := value
	if len(path) > 1 {
		child = &yaml.Node{Kind: yaml.MappingNode}
		if err := setNode(child, path[1:], value); err != nil {
			return err
		}
	}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: path[0]},
		child,
	)
	return nil
}

// scalarNode lets the encoder pick the tag so numbers and booleans stay
// unquoted while strings like "#0b0b0b" get quoted.
func scalarNode(value string) *yaml.Node {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(value), &node); err == nil &&
		len(node.Content) == 1 && node.Content[0].Kind == yaml.ScalarNode {
		return node.Content[0]
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// writeAtomic writes to a temp file, then renames it over configPath.
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".sakuga.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
