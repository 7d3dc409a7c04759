package solver

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Position is a zero-indexed grid cell.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// neighborOffsets is the fixed enumeration order used by the search.
// Changing it changes which path is kept for words reachable more than one way.
var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Board is a normalized, rectangular grid of canonical tokens.
type Board struct {
	tiles [][]string
	rows  int
	cols  int
}

// NormalizeBoard validates raw glyphs and turns them into search tokens:
// lowercase, trimmed, with a lone "q" expanded to "qu".
func NormalizeBoard(raw [][]string) (*Board, error) {
	if len(raw) == 0 {
		return nil, &GridError{Row: -1, Reason: "no rows"}
	}
	cols := len(raw[0])
	if cols == 0 {
		return nil, &GridError{Row: -1, Reason: "no columns"}
	}

	lower := cases.Lower(language.Und)
	tiles := make([][]string, len(raw))
	for r, row := range raw {
		if len(row) != cols {
			return nil, &GridError{Row: r, Want: cols, Got: len(row)}
		}
		tiles[r] = make([]string, cols)
		for c, glyph := range row {
			tok := lower.String(strings.TrimSpace(glyph))
			if tok == "q" {
				tok = "qu"
			}
			tiles[r][c] = tok
		}
	}
	return &Board{tiles: tiles, rows: len(raw), cols: cols}, nil
}

// Rows returns the number of rows.
func (b *Board) Rows() int { return b.rows }

// Cols returns the number of columns.
func (b *Board) Cols() int { return b.cols }

// Tile returns the token at p.
func (b *Board) Tile(p Position) string { return b.tiles[p.Row][p.Col] }

// Tokens returns a copy of the normalized tiles.
func (b *Board) Tokens() [][]string {
	cp := make([][]string, len(b.tiles))
	for i, row := range b.tiles {
		cp[i] = make([]string, len(row))
		copy(cp[i], row)
	}
	return cp
}

// InBounds reports whether p lies on the board.
func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.rows && p.Col >= 0 && p.Col < b.cols
}

// Neighbors returns the 8-adjacent cells of p clipped to the board, in search order.
func (b *Board) Neighbors(p Position) []Position {
	out := make([]Position, 0, len(neighborOffsets))
	for _, off := range neighborOffsets {
		n := Position{Row: p.Row + off[0], Col: p.Col + off[1]}
		if b.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}
