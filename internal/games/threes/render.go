package threes

import (
	"fmt"
	"strconv"

	"github.com/vovakirdan/tui-threes/internal/core"
)

const (
	cellWidth  = 5 // Width of each cell (including borders)
	cellHeight = 2 // Height of each cell (including borders)
	boardW     = Width*cellWidth + 1
	boardH     = Width*cellHeight + 1
	panelW     = 9
)

// TileColor returns the display color of a rank.
func TileColor(r Rank) core.Color {
	switch {
	case r == 1:
		return core.ColorRed
	case r == 2:
		return core.ColorBlue
	case r >= 384:
		return core.ColorOrange
	case r >= 48:
		return core.ColorYellow
	default:
		return core.ColorBrightWhite
	}
}

// Render draws the game state to the screen.
func (a *Arcade) Render(dst *core.Screen) {
	dst.Clear()

	if a.tooSmall {
		renderTooSmall(dst, a.screenW, a.screenH)
		return
	}

	hudHeight := 3
	totalW := boardW + 2 + panelW
	boardX := (a.screenW - totalW) / 2
	boardY := hudHeight + 1

	a.renderHUD(dst, boardX, totalW)
	RenderBoard(dst, a.game.Board(), boardX, boardY)
	RenderNext(dst, a.game.NextRank(), boardX+boardW+2, boardY)
	a.renderOverlays(dst, boardX+boardW/2, boardY+boardH/2)

	dst.DrawTextCentered(boardY+boardH+1, a.Controls())
}

func renderTooSmall(dst *core.Screen, w, h int) {
	msg := "Window too small"
	dst.DrawText((w-len(msg))/2, h/2, msg)

	hint := "Please resize terminal"
	dst.DrawText((w-len(hint))/2, h/2+1, hint)
}

// renderHUD draws the title, score and move count.
func (a *Arcade) renderHUD(dst *core.Screen, x, w int) {
	title := "THREES"
	dst.DrawText(x+(w-len(title))/2, 0, title)

	dst.DrawText(x, 1, fmt.Sprintf("Score: %d", a.game.Score()))

	moves := fmt.Sprintf("Moves: %d", a.game.MoveCount())
	dst.DrawText(x+w-len(moves), 1, moves)

	if a.rejected {
		msg := "That move changes nothing"
		dst.DrawTextColored(x+(w-len(msg))/2, 2, msg, core.ColorGray)
	}
}

// BoardSize returns the screen size of a grid drawn by RenderBoard.
func BoardSize() (w, h int) {
	return boardW, boardH
}

// RenderBoard draws the 4x4 grid with colored tiles at (x, y).
func RenderBoard(dst *core.Screen, b Board, x, y int) {
	for row := range Width + 1 {
		for col := range Width + 1 {
			px := x + col*cellWidth
			py := y + row*cellHeight

			var corner rune
			switch {
			case row == 0 && col == 0:
				corner = '┌'
			case row == 0 && col == Width:
				corner = '┐'
			case row == Width && col == 0:
				corner = '└'
			case row == Width && col == Width:
				corner = '┘'
			case row == 0:
				corner = '┬'
			case row == Width:
				corner = '┴'
			case col == 0:
				corner = '├'
			case col == Width:
				corner = '┤'
			default:
				corner = '┼'
			}
			dst.Set(px, py, corner)

			if col < Width {
				dst.DrawHLine(px+1, py, cellWidth-1, '─')
			}
			if row < Width {
				dst.DrawVLine(px, py+1, cellHeight-1, '│')
			}
		}
	}

	for row := range Width {
		for col := range Width {
			v := b.Get(row, col)
			if v == 0 {
				continue
			}
			drawTile(dst, v, x+col*cellWidth+1, y+row*cellHeight+1)
		}
	}
}

// drawTile centers a rank inside a cell whose interior starts at (x, y).
func drawTile(dst *core.Screen, r Rank, x, y int) {
	s := strconv.Itoa(int(r))
	pad := max((cellWidth-1-len(s))/2, 0)
	dst.DrawTextColored(x+pad, y, s, TileColor(r))
}

// RenderNext draws the upcoming tile in a small box at (x, y).
func RenderNext(dst *core.Screen, next Rank, x, y int) {
	dst.DrawText(x, y, "Next")
	dst.DrawBox(core.NewRect(x, y+1, cellWidth+1, cellHeight+1))
	drawTile(dst, next, x+1, y+2)
}

// renderOverlays draws pause and game-over boxes.
func (a *Arcade) renderOverlays(dst *core.Screen, cx, cy int) {
	if a.paused {
		drawOverlay(dst, cx, cy, "PAUSED", "Press P to resume")
		return
	}

	if res := a.game.Result(); res != nil {
		drawOverlay(dst, cx, cy,
			"GAME OVER",
			fmt.Sprintf("Score: %d", res.Score),
			fmt.Sprintf("Max tile: %d", res.FinalBoard.MaxTile()),
			"Press R to restart",
		)
	}
}

// drawOverlay draws a boxed set of lines centered on (cx, cy).
func drawOverlay(dst *core.Screen, cx, cy int, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		maxLen = max(maxLen, len(line))
	}

	box := core.Centered(cx, cy, maxLen+4, len(lines)+2)
	dst.DrawRect(box, ' ')
	dst.DrawBox(box)

	for i, line := range lines {
		dst.DrawText(cx-len(line)/2, box.Y+1+i, line)
	}
}
