package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"squish/internal/batch"
)

func SuccessLine(res batch.Result) string {
	saved := 0.0
	if res.InBytes > 0 {
		saved = (1 - float64(res.OutBytes)/float64(res.InBytes)) * 100
	}
	return fmt.Sprintf("✓ %s | %dKB → %dKB (%.1f%% saved)",
		res.Job.RelPath, res.InBytes/1024, res.OutBytes/1024, saved)
}

func FailureLine(res batch.Result) string {
	return fmt.Sprintf("✗ Failed: %s - %v", res.Job.Path, res.Err)
}

func ResultLine(res batch.Result) string {
	if res.Err != nil {
		return failLineStyle.Render(FailureLine(res))
	}
	return okLineStyle.Render(SuccessLine(res))
}

// FormatBytes keeps the sign: runs where outputs grew report negative.
func FormatBytes(n int64) string {
	v := n
	neg := v < 0
	if neg {
		v = -v
	}

	const unit = int64(1024)
	if v < unit {
		return fmt.Sprintf("%dB", n)
	}

	div, exp := unit, 0
	for m := v / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	s := fmt.Sprintf("%.1f%cB", float64(v)/float64(div), "KMGTPE"[exp])
	if neg {
		s = "-" + s
	}
	return s
}

var (
	okLineStyle   = lipgloss.NewStyle().Foreground(ColorOK)
	failLineStyle = lipgloss.NewStyle().Foreground(ColorFail)
)
