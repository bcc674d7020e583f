// Package graph provides the in-memory triple store backing the ACF
// knowledge graph.
//
// A Store is a set of (subject, predicate, object) triples. It is filled once
// from the taxonomy and ingested records and is then only read, so any number
// of goroutines may call Match and Len concurrently once construction is
// finished. Insert is not safe for concurrent use; a store that keeps
// growing while it is read must be guarded by its owner.
package graph

import (
	"iter"
)

// Triple is a single fact. Subject and Predicate are IRIs; Object is an IRI
// or a typed literal.
type Triple struct {
	Subject   string
	Predicate string
	Object    Value
}

// T is shorthand for building a Triple.
func T(subject, predicate string, object Value) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object}
}

type tripleKey struct {
	subject   string
	predicate string
	object    valueKey
}

func (t Triple) key() tripleKey {
	return tripleKey{subject: t.Subject, predicate: t.Predicate, object: t.Object.key()}
}

// Store holds triples with set semantics and per-position indexes.
// Iteration follows insertion order, which keeps query results
// deterministic for a given load order.
type Store struct {
	triples     []Triple
	seen        map[tripleKey]struct{}
	bySubject   map[string][]int
	byPredicate map[string][]int
	byObject    map[valueKey][]int
	namespaces  *Namespaces
}

// NewStore returns an empty store bound to the given prefixes.
func NewStore(prefixes map[string]string) *Store {
	return &Store{
		seen:        make(map[tripleKey]struct{}),
		bySubject:   make(map[string][]int),
		byPredicate: make(map[string][]int),
		byObject:    make(map[valueKey][]int),
		namespaces:  NewNamespaces(prefixes),
	}
}

// Namespaces returns the store's prefix table.
func (s *Store) Namespaces() *Namespaces {
	return s.namespaces
}

// Insert adds t. It reports false when the triple was already present.
func (s *Store) Insert(t Triple) bool {
	k := t.key()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}

	idx := len(s.triples)
	s.triples = append(s.triples, t)
	s.bySubject[t.Subject] = append(s.bySubject[t.Subject], idx)
	s.byPredicate[t.Predicate] = append(s.byPredicate[t.Predicate], idx)
	s.byObject[k.object] = append(s.byObject[k.object], idx)
	return true
}

// InsertAll adds every triple and returns how many were new.
func (s *Store) InsertAll(triples []Triple) int {
	added := 0
	for _, t := range triples {
		if s.Insert(t) {
			added++
		}
	}
	return added
}

// Len returns the number of distinct triples.
func (s *Store) Len() int {
	return len(s.triples)
}

// All iterates every triple in insertion order.
func (s *Store) All() iter.Seq[Triple] {
	return func(yield func(Triple) bool) {
		for _, t := range s.triples {
			if !yield(t) {
				return
			}
		}
	}
}

// Match iterates triples matching the given positions. An empty subject or
// predicate, or a zero object, is a wildcard.
func (s *Store) Match(subject, predicate string, object Value) iter.Seq[Triple] {
	return func(yield func(Triple) bool) {
		candidates, all := s.candidates(subject, predicate, object)
		if all {
			for _, t := range s.triples {
				if !yield(t) {
					return
				}
			}
			return
		}
		for _, idx := range candidates {
			t := s.triples[idx]
			if subject != "" && t.Subject != subject {
				continue
			}
			if predicate != "" && t.Predicate != predicate {
				continue
			}
			if !object.IsZero() && !t.Object.Equal(object) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// candidates picks the smallest index among the bound positions. It reports
// all=true when every position is a wildcard.
func (s *Store) candidates(subject, predicate string, object Value) (idxs []int, all bool) {
	var best []int
	found := false
	consider := func(list []int) {
		if !found || len(list) < len(best) {
			best = list
			found = true
		}
	}
	if subject != "" {
		consider(s.bySubject[subject])
	}
	if predicate != "" {
		consider(s.byPredicate[predicate])
	}
	if !object.IsZero() {
		consider(s.byObject[object.key()])
	}
	if !found {
		return nil, true
	}
	return best, false
}

// Collect drains a triple sequence into a slice.
func Collect(seq iter.Seq[Triple]) []Triple {
	var out []Triple
	for t := range seq {
		out = append(out, t)
	}
	return out
}
