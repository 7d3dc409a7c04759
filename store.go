package main

import (
	"crypto/rand"
	"encoding/hex"
	"slices"
	"sync"
	"time"
)

// Store holds all grids in memory.
type Store struct {
	mu    sync.RWMutex
	grids map[string]*Grid
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		grids: make(map[string]*Grid),
	}
}

// SaveGrid stores a grid and returns it with a generated ID.
func (s *Store) SaveGrid(g *Grid) *Grid {
	g.ID = generateID()
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt

	s.mu.Lock()
	s.grids[g.ID] = g
	s.mu.Unlock()

	return g
}

// GetGrid returns a grid by ID, or nil if not found.
func (s *Store) GetGrid(id string) *Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grids[id]
}

// ListGrids returns views of all grids, most recent first.
func (s *Store) ListGrids() []GridView {
	s.mu.RLock()
	list := make([]*Grid, 0, len(s.grids))
	for _, g := range s.grids {
		list = append(list, g)
	}
	s.mu.RUnlock()

	views := make([]GridView, 0, len(list))
	for _, g := range list {
		views = append(views, g.View())
	}
	slices.SortFunc(views, func(a, b GridView) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return views
}

// DeleteGrid removes a grid. Returns false if it did not exist.
func (s *Store) DeleteGrid(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grids[id]; !ok {
		return false
	}
	delete(s.grids, id)
	return true
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
