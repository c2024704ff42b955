package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, truncate(s, width))
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// displayWidth measures rendered width, ignoring ANSI styling.
func displayWidth(s string) int {
	return lipgloss.Width(s)
}

func shortTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func relativeAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
