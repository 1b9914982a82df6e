package miner

import (
	"sync"

	"github.com/sells-group/leadminer/internal/model"
)

// Session guards a result view against out-of-order mining responses. Each
// user-initiated request takes a generation token from Begin; a response is
// installed only if its generation is still the latest issued, so a slow
// response can never clobber the results of a newer request.
type Session struct {
	mu    sync.Mutex
	gen   uint64
	leads []model.MinedLead
}

// Begin registers a new in-flight request and returns its generation token.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Apply installs leads for the given generation. Returns false (and discards
// the leads) when a newer request has superseded it.
func (s *Session) Apply(gen uint64, leads []model.MinedLead) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.leads = leads
	return true
}

// Leads returns the currently installed result set.
func (s *Session) Leads() []model.MinedLead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leads
}
