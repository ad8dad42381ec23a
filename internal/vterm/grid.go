package vterm

import "strings"

// nul marks a cell that was never written. Rows and columns grow on demand;
// decoding never shrinks the grid.
const nul = 0x00

// grid is a sparse 2-D character buffer indexed by (row, col). It exists only
// for the duration of a single Decode call.
type grid struct {
	rows [][]byte
}

func newGrid() *grid {
	return &grid{rows: [][]byte{{nul}}}
}

// set writes b at (row, col), growing the grid as needed. Unwritten cells
// stay nul.
func (g *grid) set(b byte, row, col int) {
	for row >= len(g.rows) {
		g.rows = append(g.rows, []byte{nul})
	}
	for col >= len(g.rows[row]) {
		g.rows[row] = append(g.rows[row], nul)
	}
	g.rows[row][col] = b
}

// lines serializes the grid row by row. Interior unwritten cells render as
// spaces; trailing blanks are trimmed so rows nothing was written to come out
// as empty strings rather than being omitted.
func (g *grid) lines() []string {
	out := make([]string, len(g.rows))
	for i, row := range g.rows {
		buf := make([]byte, len(row))
		for j, b := range row {
			if b == nul {
				buf[j] = ' '
			} else {
				buf[j] = b
			}
		}
		out[i] = strings.TrimRight(string(buf), " ")
	}
	return out
}
