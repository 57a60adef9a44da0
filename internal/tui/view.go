package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gan-video-studio/internal/core"
)

var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Violet
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorSuccess   = lipgloss.Color("#10B981") // Emerald
	colorError     = lipgloss.Color("#EF4444") // Red
	colorWarning   = lipgloss.Color("#F59E0B") // Amber
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorText      = lipgloss.Color("#F9FAFB") // White
	colorTextDim   = lipgloss.Color("#9CA3AF") // Light gray
	colorBorder    = lipgloss.Color("#374151") // Dark gray
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Background(colorPrimary).
			Padding(0, 2).
			MarginBottom(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(11)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	pathStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	percentStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)
)

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" GAN Video Transcoder ") + "\n")

	b.WriteString("  " + m.Progress.ViewAs(m.Info.Progress/100) + "  " +
		percentStyle.Render(formatPercentage(m.Info)) + "\n")

	b.WriteString(boxStyle.Render(m.buildStats()) + "\n")
	b.WriteString(boxStyle.Render(m.buildFiles()) + "\n")
	b.WriteString("\n" + m.statusLine() + "\n")

	if !m.Done {
		b.WriteString(helpStyle.Render("  [Q] Stop") + "\n")
	}
	return b.String()
}

func (m Model) buildStats() string {
	info := m.Info
	stats := info.Stats

	frame := fmt.Sprintf("%d", info.FrameIndex)
	if info.Stream.KnownLength() {
		frame += fmt.Sprintf(" / %d", info.Stream.TotalFrames)
	}

	lines := []string{
		row("State", info.State.String()),
		row("Frame", frame),
		row("FPS", formatRate(stats.ProcessingFPS())),
		row("Transform", formatLatency(stats.AvgTransform)),
		row("Written", fmt.Sprintf("%d", info.FramesWritten)),
		row("Elapsed", formatDuration(stats.Elapsed)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) buildFiles() string {
	maxLen := m.Width - 16
	if maxLen < 20 {
		maxLen = 60
	}
	output := "—"
	if m.Info.Recording || m.Info.FramesWritten > 0 {
		output = m.Info.OutputPath
	}
	return labelStyle.Render("Input") + pathStyle.Render(truncatePath(m.Info.Path, maxLen)) + "\n" +
		labelStyle.Render("Output") + pathStyle.Render(truncatePath(output, maxLen))
}

func (m Model) statusLine() string {
	info := m.Info
	switch {
	case m.CancelErr != nil:
		return errorStyle.Render("  ✗ Stop failed: " + m.CancelErr.Error())
	case info.State == core.StateCompleted && info.Err != nil:
		return warningStyle.Render("  ! Finished, recording stopped early: " + info.Err.Error())
	case info.State == core.StateCompleted:
		return successStyle.Render(fmt.Sprintf("  ✓ End of video, %d frames written", info.FramesWritten))
	case info.State == core.StateCancelled && info.Err != nil:
		return errorStyle.Render("  ✗ Aborted: " + info.Err.Error())
	case info.State == core.StateCancelled:
		return warningStyle.Render("  ! Stopped by user")
	case m.Stopping:
		return valueStyle.Render("  Stopping...")
	}
	return valueStyle.Render("  Processing...")
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render(label),
		valueStyle.Render(value),
	)
}

// formatPercentage shows "live" for sources without a known length
func formatPercentage(info core.SessionInfo) string {
	if !info.Stream.KnownLength() {
		return "live"
	}
	return fmt.Sprintf("%.1f%%", info.Progress)
}

func formatRate(fps float64) string {
	if fps <= 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f", fps)
}

func formatLatency(d time.Duration) string {
	if d <= 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f ms", float64(d)/float64(time.Millisecond))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen < 20 {
		return path[:maxLen-3] + "..."
	}
	half := (maxLen - 5) / 2
	return path[:half] + " ... " + path[len(path)-half:]
}
