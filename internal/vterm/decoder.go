// Package vterm decodes raw child-process output containing VT100
// cursor-control sequences into a stable list of display lines.
//
// Only a minimal subset of ANSI is interpreted: carriage return, line feed,
// and CSI cursor-motion sequences (A/B/C/D/E/F/G plus the 6n status query,
// which is accepted and ignored). Everything else is consumed silently; the
// goal is a readable redraw of progress-bar style output, not terminal
// emulation.
package vterm

// ASCII control bytes handled in the normal state.
const (
	ctrlBEL = 0x07
	ctrlBS  = 0x08
	ctrlHT  = 0x09
	ctrlLF  = 0x0A
	ctrlVT  = 0x0B
	ctrlFF  = 0x0C
	ctrlCR  = 0x0D
	ctrlESC = 0x1B
	ctrlDEL = 0x7F
)

// farLeft is an oversized leftward column delta used by the E/F sequences to
// force the column to zero after clamping.
const farLeft = 1 << 30

type decodeState int

const (
	stateNormal decodeState = iota
	stateEscBegin
	stateCtrlStart
)

func isControl(b byte) bool {
	switch b {
	case ctrlBEL, ctrlBS, ctrlHT, ctrlLF, ctrlVT, ctrlFF, ctrlCR, ctrlESC, ctrlDEL:
		return true
	}
	return false
}

// Decode turns a raw output buffer into ordered display lines, one per grid
// row from 0 to the highest row written. Empty input yields a nil slice, not
// a single blank line.
func Decode(data []byte) []string {
	if len(data) == 0 {
		return nil
	}

	g := newGrid()
	state := stateNormal
	row, col := 0, 0
	num := 0

	for _, b := range data {
		switch state {
		case stateNormal:
			if isControl(b) {
				switch b {
				case ctrlCR:
					col = 0
				case ctrlLF:
					row++
					col = 0
				case ctrlESC:
					state = stateEscBegin
				}
				// remaining control bytes have no visible effect
				continue
			}
			g.set(b, row, col)
			col++

		case stateEscBegin:
			if b == '[' {
				state = stateCtrlStart
				num = 0
			} else {
				// unrecognized sequence, discard
				state = stateNormal
			}

		case stateCtrlStart:
			dRow, dCol := 0, 0
			switch {
			case b >= '0' && b <= '9':
				num = num*10 + int(b-'0')
				continue
			case b == 'A':
				dRow = -1
			case b == 'B':
				dRow = 1
			case b == 'C':
				dCol = 1
			case b == 'D':
				dCol = -1
			case b == 'E':
				dRow, dCol = 1, -farLeft
			case b == 'F':
				dRow, dCol = -1, -farLeft
			case b == 'G':
				col = num
				state = stateNormal
				continue
			case b == 'n' && num == 6:
				// cursor position query; nothing to answer
				state = stateNormal
				continue
			default:
				// unsupported action byte, abort the sequence
				state = stateNormal
				continue
			}

			if num == 0 {
				num = 1
			}
			row = max(row+num*dRow, 0)
			col = max(col+num*dCol, 0)
			state = stateNormal
		}
	}

	return g.lines()
}

// Wrap splits any line longer than width into consecutive chunks of at most
// width bytes, preserving order. Non-positive width returns lines unchanged.
func Wrap(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		for len(l) > width {
			out = append(out, l[:width])
			l = l[width:]
		}
		out = append(out, l)
	}
	return out
}

// Tail returns the last n lines, or all lines when n is not positive.
func Tail(lines []string, n int) []string {
	if n <= 0 || n >= len(lines) {
		return lines
	}
	return lines[len(lines)-n:]
}
