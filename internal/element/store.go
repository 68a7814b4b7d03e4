package element

import (
	"fmt"
	"strings"
)

// Store is a read-only table of code elements keyed by id, with secondary
// indexes by name and by file. Construction is tolerant of imperfect scanner
// output: duplicate ids are resolved later-entry-wins with a recorded
// warning, never a hard failure.
type Store struct {
	byID   map[string]*CodeElement
	byName map[string][]*CodeElement
	byFile map[string][]*CodeElement
	order  []string // insertion order of kept ids
}

// NewStore builds a store from scanner output. The returned warnings describe
// entries that were replaced or repaired during load.
func NewStore(elements []CodeElement) (*Store, []string) {
	s := &Store{
		byID:   make(map[string]*CodeElement, len(elements)),
		byName: make(map[string][]*CodeElement),
		byFile: make(map[string][]*CodeElement),
	}
	var warnings []string

	for i := range elements {
		el := elements[i]
		if el.ID == "" {
			el.ID = el.StableID()
		}
		if _, dup := s.byID[el.ID]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate element id %q: later entry wins", el.ID))
		} else {
			s.order = append(s.order, el.ID)
		}
		s.byID[el.ID] = &el
	}

	// Secondary indexes are built from the surviving entries so a replaced
	// duplicate never shadows its successor.
	for _, id := range s.order {
		el := s.byID[id]
		s.byName[el.Name] = append(s.byName[el.Name], el)
		s.byFile[el.File] = append(s.byFile[el.File], el)
	}

	return s, warnings
}

// Get returns the element with the given id, or nil.
func (s *Store) Get(id string) *CodeElement {
	return s.byID[id]
}

// FindByName returns all elements with the given name. Names are not unique
// across the index, so the result supports ambiguity.
func (s *Store) FindByName(name string) []*CodeElement {
	return s.byName[name]
}

// FindByFile returns all elements located in the given file.
func (s *Store) FindByFile(file string) []*CodeElement {
	return s.byFile[file]
}

// All returns every element in insertion order.
func (s *Store) All() []*CodeElement {
	out := make([]*CodeElement, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len reports the number of distinct elements.
func (s *Store) Len() int {
	return len(s.order)
}

// NotFoundError reports a target absent from the store, with up to five
// near-name matches as a "did you mean" aid.
type NotFoundError struct {
	Target      string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("element not found: %s", e.Target)
	}
	return fmt.Sprintf("element not found: %s (did you mean: %s?)", e.Target, strings.Join(e.Suggestions, ", "))
}
