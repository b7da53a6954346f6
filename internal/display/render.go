package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/cookalong/internal/domain"
)

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	timerRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	timerPausedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#71717a")).
				Italic(true)

	timerDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#94a3b8"))

	// Soft sky blue for assistant speech.
	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	// Soft mint for step headers.
	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	pausedBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#18181b")).
			Background(lipgloss.Color("#fde68a")).
			Padding(0, 1)
)

// renderStep draws the recipe title, the step header and the instruction.
func renderStep(v domain.SessionView, width int) string {
	if width <= 0 {
		width = 80
	}
	var b strings.Builder

	b.WriteString(titleStyle.Render("  " + v.RecipeTitle))
	b.WriteByte('\n')

	header := fmt.Sprintf("Step %d/%d", v.CurrentStep, v.TotalSteps)
	if est := v.CurrentStepData.EstimatedTime; est != "" {
		header += " (~" + est + ")"
	}
	b.WriteString(stepStyle.Render("  " + header))
	if v.IsPaused {
		b.WriteString("  " + pausedBadge.Render("PAUSED"))
	}
	b.WriteByte('\n')

	body := lipgloss.NewStyle().Width(width - 4).Render(v.CurrentStepData.Instruction)
	for _, line := range strings.Split(body, "\n") {
		b.WriteString(primaryStyle.Render("  " + strings.TrimRight(line, " ")))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderTimers draws the status bar. Cancelled timers are left out and an
// empty bar renders as nothing.
func renderTimers(timers []domain.TimerView, width int) string {
	var parts []string
	for _, t := range timers {
		switch t.Status {
		case domain.TimerCompleted.String():
			parts = append(parts, timerDoneStyle.Render(t.Label+": DONE!"))
		case domain.TimerPaused.String():
			parts = append(parts, labelStyle.Render(t.Label+": ")+
				timerPausedStyle.Render(fmtSeconds(t.SecondsRemaining)+" paused"))
		case domain.TimerRunning.String():
			parts = append(parts, labelStyle.Render(t.Label+": ")+
				timerRunStyle.Render(fmtSeconds(t.SecondsRemaining)))
		}
	}
	if len(parts) == 0 {
		return ""
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "
	if width <= 0 {
		width = 80
	}
	return barBg.Width(width).Render(content)
}

func titleStr(v domain.SessionView) string {
	if v.RecipeTitle == "" {
		return "cookalong"
	}
	var p []string
	for _, t := range v.ActiveTimers {
		p = append(p, t.Label+": "+fmtSeconds(t.SecondsRemaining))
	}
	if len(p) == 0 {
		return fmt.Sprintf("cookalong: %s, step %d/%d", v.RecipeTitle, v.CurrentStep, v.TotalSteps)
	}
	return "cookalong: " + strings.Join(p, " | ")
}

// fmtSeconds renders a countdown as 1h02m03s, 4m05s or 9s.
func fmtSeconds(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
