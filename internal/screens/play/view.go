package play

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/modes"
	"github.com/abhisek/mathblocks/internal/playbox"
	"github.com/abhisek/mathblocks/internal/ui/components"
	"github.com/abhisek/mathblocks/internal/ui/layout"
	"github.com/abhisek/mathblocks/internal/ui/theme"
)

const (
	leftMargin = 2
	maxColumn  = 22
	chipWidth  = 14
	headerRows = 4 // status, prompt, countdown, blank
)

// geometry records where the last frame put the columns and the tray,
// in screen coordinates.
type geometry struct {
	top        int // first content row on screen
	colX       int
	colW       int
	colH       int
	columns    int
	trayRow    int
	trayChips  int
	configured bool
}

func (g geometry) columnAt(x, y int) (int, bool) {
	if !g.configured || g.colW == 0 {
		return 0, false
	}
	rowTop := g.top + headerRows
	if y < rowTop || y >= rowTop+g.colH || x < g.colX {
		return 0, false
	}
	i := (x - g.colX) / g.colW
	return i, i < g.columns
}

func (g geometry) trayAt(x, y int) (int, bool) {
	if !g.configured || y != g.trayRow || x < leftMargin {
		return 0, false
	}
	i := (x - leftMargin) / chipWidth
	return i, i < g.trayChips
}

func (s *PlayScreen) View(width, height int) string {
	snap := s.pb.Snapshot()
	n := len(snap.Columns)

	colW := min(maxColumn, (width-2*leftMargin)/max(n, 1))
	perRow := max((colW-4)/2, 1)
	maxCap := 0
	for _, c := range snap.Columns {
		maxCap = max(maxCap, c.Category.Capacity)
	}
	unitRows := (maxCap + perRow - 1) / perRow
	if layout.IsCompactHeight(height) {
		unitRows = min(unitRows, 2)
	}
	colH := unitRows + 4

	rows := []string{
		s.statusLine(snap),
		s.promptLine(snap),
		s.countdownLine(snap, width),
		"",
	}

	var cols []string
	for i, c := range snap.Columns {
		cols = append(cols, s.renderColumn(i, c, colW, colH, perRow, unitRows))
	}
	rows = append(rows, pad(lipgloss.JoinHorizontal(lipgloss.Top, cols...)), "")
	rows = append(rows, pad(s.renderTray(snap)))
	if len(snap.Slots) > 0 {
		rows = append(rows, "", pad(renderEquation(snap)))
	}
	rows = append(rows, "", pad(s.footerLine(snap)))

	s.geo = geometry{
		top:        layout.ContentTop(width),
		colX:       leftMargin,
		colW:       colW,
		colH:       colH,
		columns:    n,
		trayRow:    layout.ContentTop(width) + headerRows + colH + 1,
		trayChips:  n,
		configured: true,
	}
	return strings.Join(rows, "\n")
}

func pad(s string) string {
	return lipgloss.NewStyle().PaddingLeft(leftMargin).Render(s)
}

func (s *PlayScreen) statusLine(snap playbox.Snapshot) string {
	var parts []string
	switch snap.Mode {
	case modes.Training:
		if l := snap.Lesson; l != nil {
			parts = append(parts, fmt.Sprintf("Step %d of %d", l.Index+1, l.Count))
		}
	case modes.Challenge:
		if st := snap.Challenge; st != nil {
			parts = append(parts,
				fmt.Sprintf("Question %d", st.Answered+btoi(st.Status == challenge.Playing)),
				fmt.Sprintf("Score %d", st.Score))
			if s.best != nil {
				parts = append(parts, fmt.Sprintf("Best %d", s.best.Score))
			}
		}
	}
	parts = append(parts, "Total "+snap.Total.String())
	return pad(theme.Body.Bold(true).Render(strings.Join(parts, "   ")))
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *PlayScreen) promptLine(snap playbox.Snapshot) string {
	switch {
	case snap.Caption != "":
		return pad(theme.Caption.Render(snap.Caption))
	case snap.Challenge != nil:
		st := snap.Challenge
		switch st.Status {
		case challenge.Playing:
			return pad(theme.Body.Render(st.Question.Prompt))
		case challenge.Correct:
			return pad(theme.Correct.Render(fmt.Sprintf("Correct! +%d", st.Question.Points())))
		case challenge.Incorrect:
			return pad(theme.Incorrect.Render("Not quite."))
		case challenge.TimedOut:
			answer := ""
			if st.Revealed != nil {
				answer = " The answer was " + st.Revealed.String() + "."
			}
			return pad(theme.Incorrect.Render("Time's up!" + answer))
		case challenge.Finished:
			return pad(theme.Body.Render("All done!"))
		}
	}
	return ""
}

func (s *PlayScreen) countdownLine(snap playbox.Snapshot, width int) string {
	st := snap.Challenge
	if st == nil || st.Status != challenge.Playing {
		return ""
	}
	total := challenge.Durations(s.env.Settings.ChallengeDurations).For(st.Question.Difficulty)
	return pad(components.NewCountdown(st.Remaining, total, min(width-2*leftMargin, 60)).View())
}

func (s *PlayScreen) columnStyle(i int, c playbox.Column) lipgloss.Style {
	if s.gesture.Active() {
		if s.gesture.Target() != c.Category.Key {
			return theme.Column
		}
		if s.gesture.Allowed() {
			return theme.ColumnTarget
		}
		return theme.ColumnBlocked
	}
	if i != s.target {
		return theme.Column
	}
	if s.pb.CanDrop(s.piece(), c.Category.Key) {
		return theme.ColumnTarget
	}
	return theme.ColumnBlocked
}

func (s *PlayScreen) renderColumn(i int, c playbox.Column, colW, colH, perRow, unitRows int) string {
	tint := theme.BlockColor(i)
	label := lipgloss.NewStyle().Foreground(tint).Bold(true).Render(c.Category.Label)
	count := fmt.Sprintf("× %d", c.Active)
	if c.Full {
		count += "  full"
	}

	glyphs := make([]string, 0, len(c.Units))
	for _, u := range c.Units {
		glyphs = append(glyphs, unitGlyph(u, tint))
	}
	var lines []string
	for r := 0; r < unitRows && r*perRow < len(glyphs); r++ {
		end := min((r+1)*perRow, len(glyphs))
		lines = append(lines, strings.Join(glyphs[r*perRow:end], " "))
	}
	if hidden := len(glyphs) - unitRows*perRow; hidden > 0 {
		lines[len(lines)-1] += fmt.Sprintf(" +%d", hidden)
	}

	body := label + "\n" + theme.Hint.Render(count) + "\n" + strings.Join(lines, "\n")
	return s.columnStyle(i, c).Width(colW).Height(colH).Render(body)
}

func unitGlyph(u board.Unit, tint color.Color) string {
	style := lipgloss.NewStyle().Foreground(tint)
	switch {
	case u.State == board.ExitingKept:
		return theme.Regrouping.Render("▣")
	case u.State == board.ExitingRemoved:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("·")
	case u.Highlight:
		return style.Bold(true).Background(theme.BgCard).Render("■")
	case u.State == board.Entering:
		return style.Render("□")
	}
	return style.Render("■")
}

func (s *PlayScreen) renderTray(snap playbox.Snapshot) string {
	var chips []string
	for i, c := range snap.Columns {
		text := fmt.Sprintf("[%d] %s", i+1, c.Category.Label)
		style := lipgloss.NewStyle().Width(chipWidth).Foreground(theme.BlockColor(i))
		if i == s.pick {
			style = style.Bold(true).Underline(true)
			if s.gesture.Active() {
				text = "✋" + text
			}
		}
		chips = append(chips, style.Render(text))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func renderEquation(snap playbox.Snapshot) string {
	var parts []string
	for i, sl := range snap.Slots {
		if i > 0 {
			parts = append(parts, " + ")
		}
		v := " ? "
		if sl.Piece != nil {
			v = " " + sl.Piece.String() + " "
		}
		parts = append(parts, theme.Card.Padding(0, 1).Render(v))
	}
	parts = append(parts, theme.Body.Bold(true).Render(" = "+snap.Result.String()))
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (s *PlayScreen) footerLine(snap playbox.Snapshot) string {
	if p := snap.Pending; p != nil {
		return theme.Regrouping.Render(fmt.Sprintf("Regrouping %s into one %s...", p.From, singular(p.Into, snap)))
	}
	if snap.Lesson != nil && snap.Lesson.Finished {
		return theme.Correct.Render("Lesson complete! Press Enter.")
	}
	if text := s.flashText(); text != "" {
		style := theme.Body
		switch s.flash {
		case playbox.CueReject, playbox.CueIncorrect, playbox.CueTimeout:
			style = theme.Incorrect
		case playbox.CueCelebrate, playbox.CueTransformDone:
			style = theme.Correct
		}
		return style.Render(text)
	}
	return theme.Hint.Render("Holding " + s.piece().String() + " for " + s.targetKey())
}

func singular(key string, snap playbox.Snapshot) string {
	for _, c := range snap.Columns {
		if c.Category.Key == key {
			return pieceName(c.Category.Magnitude, c.Category.Label)
		}
	}
	return key
}

func pieceName(v fraction.Fraction, label string) string {
	if v.IsWhole() {
		return v.String()
	}
	return label
}
