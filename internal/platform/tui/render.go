package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/flow"
	"github.com/vovakirdan/bubble-duel/internal/state"
)

// HUD layout constants
const (
	panelWidth   = 30 // Width of one competitor panel
	meterWidth   = 14 // Cells in gem and danger meters
	meterFull    = "█"
	meterEmpty   = "░"
	minHUDWidth  = 2*panelWidth + 6
	powerUpEmpty = "·"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))
	suddenDeathStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(panelWidth).
			Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	gemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	safeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	dangerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.DoubleBorder()).
			Padding(0, 2)
	winColor  = lipgloss.Color("10")
	loseColor = lipgloss.Color("9")
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

var powerUpGlyphs = map[core.PowerUp]string{
	core.PowerUpClear:  "◇clear",
	core.PowerUpShield: "◈shield",
	core.PowerUpCurse:  "✶curse",
}

var reasonText = map[core.VictoryReason]string{
	core.ReasonGems:      "gem threshold reached",
	core.ReasonFieldFull: "field overflowed in sudden death",
	core.ReasonTimeGems:  "time up, more gems",
	core.ReasonTimeScore: "time up, gems tied, higher score",
	core.ReasonTimeTie:   "time up, dead even",
}

// Frame is everything the HUD draws for one tick.
type Frame struct {
	State   state.GameState
	Outcome flow.Outcome
	Over    bool
	Width   int
}

// RenderHUD draws the full duel screen.
func RenderHUD(f Frame) string {
	snap := f.State
	width := f.Width
	if width < minHUDWidth {
		width = minHUDWidth
	}

	var b strings.Builder
	b.WriteString(renderHeader(snap, width))
	b.WriteString("\n\n")

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		renderSide(snap, core.SidePlayer),
		"  ",
		renderSide(snap, core.SideOpponent),
	)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, panels))
	b.WriteString("\n")

	match := fmt.Sprintf("combo x%d   cascade %d   matches %d",
		snap.Match.CurrentCombo, snap.Match.CascadeLevel, snap.Match.TotalMatches)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, labelStyle.Render(match)))

	if banner := renderBanner(snap, f.Outcome, f.Over); banner != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, banner))
	}
	return b.String()
}

func renderHeader(snap state.GameState, width int) string {
	clock := clockStyle.Render(formatClock(snap.GameFlow.TimeRemaining))
	left := titleStyle.Render("BUBBLE DUEL")
	right := clock
	if snap.GameFlow.IsInSuddenDeath {
		right = suddenDeathStyle.Render("SUDDEN DEATH") + " " + clock
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func renderSide(snap state.GameState, side core.Side) string {
	c := snap.Side(side)
	maxDanger := snap.Settings.MaxDanger
	danger := snap.Danger(side)

	title := "YOU"
	if !side.IsPlayer() {
		title = "OPPONENT"
		if c.Difficulty != "" {
			title += " (" + c.Difficulty + ")"
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s %d/%d\n",
		labelStyle.Render("gems  "),
		gemStyle.Render(meter(c.Gems, snap.Settings.GemsToWin, meterWidth)),
		c.Gems, snap.Settings.GemsToWin)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("score "), scoreStyle.Render(fmt.Sprintf("%d", c.Score)))
	fmt.Fprintf(&b, "%s %s %d/%d\n",
		labelStyle.Render("danger"),
		dangerColor(danger, maxDanger).Render(meter(danger, maxDanger, meterWidth)),
		danger, maxDanger)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("items "), powerUpList(c.PowerUps))
	fmt.Fprintf(&b, "%s %d", labelStyle.Render("resets"), c.ResetCount)

	var status []string
	if snap.Immune(side) {
		status = append(status, "SHIELDED")
	}
	if snap.Penalized(side) {
		status = append(status, "CURSED")
	}
	if len(status) > 0 {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(strings.Join(status, " ")))
	}
	return panelStyle.Render(b.String())
}

func renderBanner(snap state.GameState, out flow.Outcome, over bool) string {
	switch {
	case over:
		text, color := "YOU LOSE", loseColor
		if out.Winner.IsPlayer() {
			text, color = "YOU WIN", winColor
		}
		body := fmt.Sprintf("%s\n%s\n%s", text, reasonText[out.Reason], hintStyle.Render("r rematch   q quit"))
		return bannerStyle.BorderForeground(color).Foreground(color).Render(body)
	case snap.GameFlow.State == core.StatePaused:
		return bannerStyle.BorderForeground(lipgloss.Color("240")).Render("PAUSED\n" + hintStyle.Render("p resume"))
	case snap.GameFlow.State == core.StateMenu:
		return hintStyle.Render("get ready...")
	}
	return ""
}

// meter draws value out of limit as a bar of width cells.
func meter(value, limit, width int) string {
	if limit <= 0 || width <= 0 {
		return ""
	}
	filled := value * width / limit
	filled = core.Clamp(filled, 0, width)
	return strings.Repeat(meterFull, filled) + strings.Repeat(meterEmpty, width-filled)
}

func dangerColor(danger, limit int) lipgloss.Style {
	if limit <= 0 {
		return safeStyle
	}
	switch ratio := float64(danger) / float64(limit); {
	case ratio >= 0.8:
		return dangerStyle
	case ratio >= 0.5:
		return warnStyle
	default:
		return safeStyle
	}
}

func powerUpList(held []core.PowerUp) string {
	if len(held) == 0 {
		return labelStyle.Render(powerUpEmpty)
	}
	names := make([]string, len(held))
	for i, p := range held {
		names[i] = powerUpGlyphs[p]
	}
	return strings.Join(names, " ")
}

// formatClock renders d as m:ss, never negative.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
