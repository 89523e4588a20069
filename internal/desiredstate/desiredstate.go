// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package desiredstate loads the YAML document that declares the complete
// target membership of a collection.
//
// The document is a mapping from identity key to an object with an optional
// name:
//
//	b9c4f1...e0:
//	  name: alice
//	ybndrfg8ejkmcpqxot1uwisza345h769ybndrfg8ejkmcpqxot1uw:
//	  name: bob
//	3f1d...9a:        # no name
//
// Keys may be written in any encoding accepted by package idenc. Two
// different spellings of the same identity collapse to one entry; the one
// that sorts first wins. The same spelling written twice is an error.
package desiredstate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MKhiriev/key-collection/internal/idenc"
	"github.com/MKhiriev/key-collection/models"
)

var (
	// ErrInvalidDocument is returned when the document is not a mapping of
	// keys to entry objects.
	ErrInvalidDocument = errors.New("invalid desired state document")
	// ErrReadingDocument is returned when the document cannot be read.
	ErrReadingDocument = errors.New("error reading desired state document")
)

type entry struct {
	Name *string `yaml:"name"`
}

type rawEntry struct {
	key  string
	line int
	name string
}

// Load reads and parses the document stored at path.
func Load(path string) (models.KeyMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadingDocument, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a desired-state document. An empty document yields an empty
// map. A missing or null name yields an empty Name.
func Parse(r io.Reader) (models.KeyMap, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return models.KeyMap{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return models.KeyMap{}, nil
		}
		root = root.Content[0]
	}

	if isNull(root) {
		return models.KeyMap{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level must be a mapping", ErrInvalidDocument, root.Line)
	}

	entries := make([]rawEntry, 0, len(root.Content)/2)
	seen := make(map[string]int, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]

		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d: key must be a scalar", ErrInvalidDocument, keyNode.Line)
		}
		if line, dup := seen[keyNode.Value]; dup {
			return nil, fmt.Errorf("%w: line %d: key %q already defined at line %d",
				ErrInvalidDocument, keyNode.Line, keyNode.Value, line)
		}
		seen[keyNode.Value] = keyNode.Line

		name, err := decodeName(valueNode)
		if err != nil {
			return nil, err
		}
		entries = append(entries, rawEntry{key: keyNode.Value, line: keyNode.Line, name: name})
	}

	return normalize(entries)
}

func decodeName(node *yaml.Node) (string, error) {
	if isNull(node) {
		return "", nil
	}
	if node.Kind != yaml.MappingNode {
		return "", fmt.Errorf("%w: line %d: entry must be a mapping with an optional name", ErrInvalidDocument, node.Line)
	}

	var e entry
	if err := node.Decode(&e); err != nil {
		return "", fmt.Errorf("%w: line %d: %w", ErrInvalidDocument, node.Line, err)
	}
	if e.Name == nil {
		return "", nil
	}
	return *e.Name, nil
}

func normalize(entries []rawEntry) (models.KeyMap, error) {
	// raw spellings are unique here, so the order is total
	slices.SortFunc(entries, func(a, b rawEntry) int {
		return strings.Compare(a.key, b.key)
	})

	out := make(models.KeyMap, len(entries))
	for _, e := range entries {
		key, err := idenc.Normalize(e.key)
		if err != nil {
			return nil, fmt.Errorf("line %d: key %q: %w", e.line, e.key, err)
		}
		if _, dup := out[key]; dup {
			continue
		}
		out[key] = models.KeyRecord{Key: key, Name: e.name}
	}
	return out, nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}
