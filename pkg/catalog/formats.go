package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// FileFormat identifies how a catalog or keyword file is encoded.
type FileFormat int

const (
	FormatUnknown  FileFormat = iota
	FormatBracket             // JSON-like object of arrays, read by bracket matching
	FormatYAML                // YAML mapping of type -> method sequence
	FormatKeywords            // newline-delimited word list
)

// FormatInfo describes a supported file format.
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatBracket: {
		Format:      FormatBracket,
		Description: "Bracket Catalog",
		Extensions:  []string{".json", ""},
	},
	FormatYAML: {
		Format:      FormatYAML,
		Description: "YAML Catalog",
		Extensions:  []string{".yaml", ".yml"},
	},
	FormatKeywords: {
		Format:      FormatKeywords,
		Description: "Keyword List",
		Extensions:  []string{".txt"},
	},
}

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) FileFormat {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range []FileFormat{FormatBracket, FormatYAML, FormatKeywords} {
		for _, e := range supportedFormats[f].Extensions {
			if e == ext {
				return f
			}
		}
	}
	return FormatUnknown
}

// GetFormatInfo returns information about a specific format.
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, ok := supportedFormats[format]
	return info, ok
}

// ReadFile loads a catalog from path. Unknown extensions are read with the
// bracket parser since it tolerates any surrounding syntax.
func ReadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	switch DetectFormat(path) {
	case FormatYAML:
		c, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
		}
		return c, nil
	case FormatKeywords:
		log.Warnf("catalog: %s looks like a keyword list, reading it as a catalog anyway", path)
	}
	return Parse(string(data)), nil
}

// ReadKeywords loads a newline-delimited keyword file.
func ReadKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keywords %s: %w", path, err)
	}
	defer f.Close()
	return ParseKeywords(f), nil
}

// ParseYAML reads a YAML mapping whose values are sequences of method names.
// Nested mappings are walked so a catalog can group containers by header.
// Key order is kept.
func ParseYAML(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	c := New()
	if len(doc.Content) == 0 {
		return c, nil
	}
	walkYAML(doc.Content[0], c)
	return c, nil
}

func walkYAML(n *yaml.Node, c *Catalog) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch val.Kind {
		case yaml.SequenceNode:
			for _, item := range val.Content {
				if item.Kind == yaml.ScalarNode && item.Value != "" {
					c.Add(key.Value, item.Value)
				}
			}
		case yaml.MappingNode:
			walkYAML(val, c)
		}
	}
}
