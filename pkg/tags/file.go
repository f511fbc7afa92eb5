package tags

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kataras/design-tagger/pkg/props"
	"gopkg.in/yaml.v3"
)

// Entry is one assignment as stored in a tag file.
type Entry struct {
	ID         string     `json:"id" yaml:"id"`
	Tag        string     `json:"tag" yaml:"tag"`
	Attributes *props.Map `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type fileContent struct {
	Tags []Entry `json:"tags" yaml:"tags"`
}

// Entries returns the assignments of s in tagging order.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.ids))
	for _, id := range s.ids {
		a := s.byID[id]
		e := Entry{ID: id, Tag: a.Tag}
		if a.Attributes.Len() > 0 {
			e.Attributes = a.Attributes.Clone()
		}
		out = append(out, e)
	}
	return out
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFile reads a tag file into a new Store. A missing file yields an
// empty Store.
func LoadFile(path string) (*Store, error) {
	store := NewStore()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("read tags: %w", err)
	}

	var content fileContent
	if isYAML(path) {
		err = yaml.Unmarshal(data, &content)
	} else {
		err = json.Unmarshal(data, &content)
	}
	if err != nil {
		return nil, fmt.Errorf("parse tags %s: %w", path, err)
	}

	for _, e := range content.Tags {
		if err := store.Apply(e.ID, e.Tag, e.Attributes); err != nil {
			return nil, fmt.Errorf("tags %s: %s: %w", path, e.ID, err)
		}
	}
	return store, nil
}

// SaveFile writes the store content to path as YAML or JSON depending on
// the file extension.
func SaveFile(path string, store *Store) error {
	content := fileContent{Tags: store.Snapshot().Entries()}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(content)
	} else {
		data, err = json.MarshalIndent(content, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create tags dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	return nil
}
