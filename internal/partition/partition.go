// Package partition implements the flow-sensitive partition state: a
// union-find over privacy labels used by the alias analysis and consulted
// by the type checker's assignability rule.
package partition

import "github.com/m-unkel/zkay-go/internal/label"

// State is a disjoint-set-union over labels, used to track which labels
// must currently denote the same principal. Every inserted label belongs
// to exactly one class until removed.
type State struct {
	parent map[label.Label]label.Label
	rank   map[label.Label]int
}

// New returns an empty partition state.
func New() *State {
	return &State{
		parent: make(map[label.Label]label.Label),
		rank:   make(map[label.Label]int),
	}
}

// Has reports whether l currently belongs to some class.
func (s *State) Has(l label.Label) bool {
	_, ok := s.parent[l]
	return ok
}

// Insert adds l as a fresh singleton class. It is a no-op if l is already present.
func (s *State) Insert(l label.Label) {
	if s.Has(l) {
		return
	}
	s.parent[l] = l
	s.rank[l] = 0
}

// Remove deletes l from the partition entirely. Other members of l's class
// are unaffected.
func (s *State) Remove(l label.Label) {
	if !s.Has(l) {
		return
	}
	root := s.find(l)
	var rest []label.Label
	for m := range s.parent {
		if m != l && s.find(m) == root {
			rest = append(rest, m)
		}
	}
	delete(s.parent, l)
	delete(s.rank, l)
	for _, m := range rest {
		s.parent[m] = rest[0]
	}
}

// find returns the representative of l's class, compressing the path as it
// walks. l must already be present.
func (s *State) find(l label.Label) label.Label {
	root := l
	for s.parent[root] != root {
		root = s.parent[root]
	}
	for l != root {
		next := s.parent[l]
		s.parent[l] = root
		l = next
	}
	return root
}

// SamePartition reports whether a and b currently belong to the same class.
// Labels not present in the state are never equal to anything (including
// themselves under this relation, since they have no class).
func (s *State) SamePartition(a, b label.Label) bool {
	if a.Equal(b) && s.Has(a) {
		return true
	}
	if !s.Has(a) || !s.Has(b) {
		return false
	}
	return s.find(a) == s.find(b)
}

// Merge unions the classes of a and b. Both must already be present.
func (s *State) Merge(a, b label.Label) {
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return
	}
	if s.rank[ra] < s.rank[rb] {
		ra, rb = rb, ra
	}
	s.parent[rb] = ra
	if s.rank[ra] == s.rank[rb] {
		s.rank[ra]++
	}
}

// MoveTo removes a from its current class (if any) and inserts it as a
// member of b's class — the semantics of an assignment `a := ...` that
// is now known to equal b. b must already be present.
func (s *State) MoveTo(a, b label.Label) {
	s.Remove(a)
	s.Insert(a)
	s.Merge(a, b)
}

// SeparateAll resets every currently-present label to its own singleton
// class. Used after side-effecting expressions and at control-flow joins,
// where the analysis deliberately forgets all equivalences — an
// intentionally imprecise join.
func (s *State) SeparateAll() {
	for l := range s.parent {
		s.parent[l] = l
		s.rank[l] = 0
	}
}

// Copy returns a structural clone, used to fork state at branch points.
func (s *State) Copy() *State {
	out := New()
	for l, p := range s.parent {
		out.parent[l] = p
	}
	for l, r := range s.rank {
		out.rank[l] = r
	}
	return out
}

// Labels returns every label currently present, in no particular order.
func (s *State) Labels() []label.Label {
	out := make([]label.Label, 0, len(s.parent))
	for l := range s.parent {
		out = append(out, l)
	}
	return out
}
