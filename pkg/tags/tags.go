// Package tags owns the mapping from shape ids to the semantic HTML tag and
// attributes the user assigned to them.
//
// A Store is the single mutable owner of the mapping. Export runs never read
// the Store directly; they take a Snapshot, which is immutable.
package tags

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/kataras/design-tagger/pkg/design"
	"github.com/kataras/design-tagger/pkg/props"
)

var (
	// ErrInvalidTag is returned when a tag name is not a valid HTML element name.
	ErrInvalidTag = errors.New("invalid tag name")
	// ErrInvalidAttribute is returned when an attribute name is not valid HTML.
	ErrInvalidAttribute = errors.New("invalid attribute name")
	// ErrEmptyID is returned when a shape id is empty.
	ErrEmptyID = errors.New("empty shape id")
)

var (
	tagNameRe  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*(-[a-zA-Z0-9]+)*$`)
	attrNameRe = regexp.MustCompile(`^[^\s"'<>/=\x00-\x1f]+$`)
)

// Assignment is the tag and attributes assigned to one shape.
type Assignment struct {
	Tag        string     `json:"tag" yaml:"tag" msgpack:"tag"`
	Attributes *props.Map `json:"attributes" yaml:"attributes" msgpack:"attributes"`
}

// Validate checks the tag name and every attribute name.
func (a Assignment) Validate() error {
	if !tagNameRe.MatchString(a.Tag) {
		return fmt.Errorf("%w: %q", ErrInvalidTag, a.Tag)
	}
	var err error
	a.Attributes.Range(func(k, _ string) bool {
		if !attrNameRe.MatchString(k) {
			err = fmt.Errorf("%w: %q", ErrInvalidAttribute, k)
			return false
		}
		return true
	})
	return err
}

func (a Assignment) clone() Assignment {
	return Assignment{Tag: a.Tag, Attributes: a.Attributes.Clone()}
}

// Store holds the tag assignments of one document. It is safe for concurrent
// use. The zero value is an empty Store ready to use.
type Store struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Assignment
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{byID: make(map[string]Assignment)}
}

// Apply assigns tag and attributes to the shape id, replacing any previous
// assignment. The tag name is trimmed and lowercased.
func (s *Store) Apply(id, tag string, attrs *props.Map) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}
	a := Assignment{Tag: strings.ToLower(strings.TrimSpace(tag)), Attributes: attrs.Clone()}
	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byID == nil {
		s.byID = make(map[string]Assignment)
	}
	if _, ok := s.byID[id]; !ok {
		s.order = append(s.order, id)
	}
	s.byID[id] = a
	return nil
}

// Remove deletes the assignment of id and reports whether one existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every assignment, e.g. when the document is closed.
func (s *Store) Clear() {
	s.mu.Lock()
	s.order = nil
	s.byID = make(map[string]Assignment)
	s.mu.Unlock()
}

// Get returns a copy of the assignment of id.
func (s *Store) Get(id string) (Assignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return Assignment{}, false
	}
	return a.clone(), true
}

// Len returns the number of tagged shapes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Snapshot returns an immutable copy of the current assignments.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		ids:  make([]string, len(s.order)),
		byID: make(map[string]Assignment, len(s.byID)),
	}
	copy(snap.ids, s.order)
	for id, a := range s.byID {
		snap.byID[id] = a.clone()
	}
	return snap
}

// Replace swaps the store content with the assignments of snap.
func (s *Store) Replace(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = make([]string, len(snap.ids))
	copy(s.order, snap.ids)
	s.byID = make(map[string]Assignment, len(snap.byID))
	for id, a := range snap.byID {
		s.byID[id] = a.clone()
	}
}

// Snapshot is a read-only view of tag assignments taken at one point in time.
// The zero value has no assignments.
type Snapshot struct {
	ids  []string
	byID map[string]Assignment
}

// Lookup returns the assignment of id. The attribute map must not be modified.
func (s Snapshot) Lookup(id string) (Assignment, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Len returns the number of assignments.
func (s Snapshot) Len() int { return len(s.ids) }

// IDs returns the tagged shape ids in the order they were first tagged.
func (s Snapshot) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Unresolved returns the tagged ids that no longer resolve to a shape of doc.
func (s Snapshot) Unresolved(doc *design.Document) []string {
	seen := make(map[string]bool)
	for _, root := range doc.Shapes {
		root.Walk(func(sh *design.Shape) { seen[sh.ID] = true })
	}
	var out []string
	for _, id := range s.ids {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// Of builds a snapshot from a list of entries, validating each one.
// Later entries for the same id win.
func Of(entries ...Entry) (Snapshot, error) {
	store := NewStore()
	for _, e := range entries {
		if err := store.Apply(e.ID, e.Tag, e.Attributes); err != nil {
			return Snapshot{}, fmt.Errorf("tag %s: %w", e.ID, err)
		}
	}
	return store.Snapshot(), nil
}
