package main

import (
	"sync"
	"time"
)

// Grid sources.
const (
	SourceUpload = "upload"
	SourceManual = "manual"
)

// Grid is a letter board kept by the store. Letters are raw glyphs as
// uploaded or typed: one uppercase letter per tile, "" when unknown.
type Grid struct {
	ID        string     `json:"id"`
	Rows      int        `json:"rows"`
	Cols      int        `json:"cols"`
	Letters   [][]string `json:"letters"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	mu        sync.Mutex
}

// GridView is a point-in-time copy of a Grid, safe to encode or solve.
type GridView struct {
	ID         string     `json:"id"`
	Rows       int        `json:"rows"`
	Cols       int        `json:"cols"`
	Letters    [][]string `json:"letters"`
	Source     string     `json:"source"`
	BlankCells int        `json:"blank_cells"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewGrid wraps letters, which must already be rectangular.
func NewGrid(letters [][]string, source string) *Grid {
	g := &Grid{Letters: letters, Source: source, Rows: len(letters)}
	if len(letters) > 0 {
		g.Cols = len(letters[0])
	}
	return g
}

// SetCell sets a letter at a given position. Returns false if out of bounds.
func (g *Grid) SetCell(row, col int, value string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if row < 0 || row >= len(g.Letters) || col < 0 || col >= len(g.Letters[row]) {
		return false
	}
	g.Letters[row][col] = value
	g.UpdatedAt = time.Now()
	return true
}

// View returns a copy of the grid.
func (g *Grid) View() GridView {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := GridView{
		ID:        g.ID,
		Rows:      g.Rows,
		Cols:      g.Cols,
		Letters:   copyLetters(g.Letters),
		Source:    g.Source,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
	for _, row := range g.Letters {
		for _, l := range row {
			if l == "" {
				v.BlankCells++
			}
		}
	}
	return v
}

func copyLetters(src [][]string) [][]string {
	cp := make([][]string, len(src))
	for i, row := range src {
		cp[i] = make([]string, len(row))
		copy(cp[i], row)
	}
	return cp
}
