package progress

import "sort"

// Set is the collection of learned word identifiers for one level.
// Membership is the only learned/unlearned signal; there is no partial
// credit state.
type Set map[string]struct{}

// NewSet builds a set from the given identifiers.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	s.AddAll(ids)
	return s
}

// Has reports whether the identifier is learned.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// AddAll marks every identifier as learned in a single operation.
func (s Set) AddAll(ids []string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// RemoveAll unmarks exactly the given identifiers, leaving others untouched.
func (s Set) RemoveAll(ids []string) {
	for _, id := range ids {
		delete(s, id)
	}
}

// Sorted returns the members in sorted order for stable persistence.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}
