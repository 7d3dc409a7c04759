package solver

import "strconv"

// Arrow glyphs for each unit step between path cells.
const (
	ArrowRight     = "→"
	ArrowLeft      = "←"
	ArrowDown      = "↓"
	ArrowUp        = "↑"
	ArrowDownRight = "↘"
	ArrowDownLeft  = "↙"
	ArrowUpRight   = "↗"
	ArrowUpLeft    = "↖"
	ArrowUnknown   = "·"
)

// EncodePath returns spreadsheet-style labels ("A1" for row 0, col 0) for
// every cell of path and an arrow for every step between consecutive cells.
func EncodePath(path []Position) (coords, arrows []string) {
	coords = make([]string, 0, len(path))
	if len(path) > 1 {
		arrows = make([]string, 0, len(path)-1)
	}
	for i, p := range path {
		coords = append(coords, CellLabel(p))
		if i > 0 {
			prev := path[i-1]
			arrows = append(arrows, arrowFor(p.Row-prev.Row, p.Col-prev.Col))
		}
	}
	return coords, arrows
}

// CellLabel formats p as column letters followed by a 1-based row number.
func CellLabel(p Position) string {
	return columnLetters(p.Col) + strconv.Itoa(p.Row+1)
}

// columnLetters maps 0 → A, 25 → Z, 26 → AA.
func columnLetters(col int) string {
	if col < 0 {
		return "?"
	}
	var buf []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

func arrowFor(dr, dc int) string {
	switch {
	case dr == 0 && dc == 1:
		return ArrowRight
	case dr == 0 && dc == -1:
		return ArrowLeft
	case dr == 1 && dc == 0:
		return ArrowDown
	case dr == -1 && dc == 0:
		return ArrowUp
	case dr == 1 && dc == 1:
		return ArrowDownRight
	case dr == 1 && dc == -1:
		return ArrowDownLeft
	case dr == -1 && dc == 1:
		return ArrowUpRight
	case dr == -1 && dc == -1:
		return ArrowUpLeft
	}
	return ArrowUnknown
}
