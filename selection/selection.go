package selection

import (
	"sort"
	"sync"

	"github.com/lucky-aeon/agentx/mcp-manager/types"
)

// Set is the set of fragment names chosen for the next merge. The zero value
// is ready to use.
type Set struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

func New(names ...string) *Set {
	s := &Set{}
	for _, n := range names {
		s.Toggle(n)
	}
	return s
}

// Toggle adds name when absent and removes it otherwise. It returns whether
// name is selected afterwards.
func (s *Set) Toggle(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.names == nil {
		s.names = make(map[string]struct{})
	}
	if _, ok := s.names[name]; ok {
		delete(s.names, name)
		return false
	}
	s.names[name] = struct{}{}
	return true
}

func (s *Set) Clear() {
	s.mu.Lock()
	s.names = nil
	s.mu.Unlock()
}

func (s *Set) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[name]
	return ok
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

// Names returns a sorted snapshot.
func (s *Set) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.names))
	for n := range s.names {
		names = append(names, n)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Pick returns the merge inputs: the selected fragments in listing order, or
// the fragment named current when nothing is selected. The selection is read
// once, before the listing is walked.
func (s *Set) Pick(listing []types.Fragment, current string) []types.Fragment {
	s.mu.RLock()
	snapshot := make(map[string]struct{}, len(s.names))
	for n := range s.names {
		snapshot[n] = struct{}{}
	}
	s.mu.RUnlock()

	var picked []types.Fragment
	for _, f := range listing {
		_, selected := snapshot[f.Name]
		if (len(snapshot) > 0 && selected) || (len(snapshot) == 0 && f.Name == current) {
			picked = append(picked, f)
			if len(snapshot) == 0 {
				break
			}
		}
	}
	return picked
}
