package output

import (
	"fmt"
	"strings"
)

// QualityBar renders a bar for a 1-5 quality score.
// Example: "████████░░ 4.1/5"
func QualityBar(score float64, width int) string {
	if width <= 0 {
		width = 10
	}
	filled := int((score / 5.0) * float64(width))
	filled = min(max(filled, 0), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(string) string
	switch {
	case score >= 4:
		style = func(s string) string { return StyleSuccess.Render(s) }
	case score >= 3:
		style = func(s string) string { return StyleWarning.Render(s) }
	default:
		style = func(s string) string { return StyleError.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%.1f/5", score)))
}

// ChangeArrow returns a styled indicator for a percent change. A nil change
// renders as "n/a". higherIsBetter decides which direction is green.
func ChangeArrow(change *int, higherIsBetter bool) string {
	if change == nil {
		return StyleMuted.Render("n/a")
	}
	delta := *change
	if delta == 0 {
		return StyleMuted.Render("─ 0%")
	}

	isPositive := delta > 0
	isImproved := isPositive == higherIsBetter

	var arrow string
	if isPositive {
		arrow = fmt.Sprintf("▲ +%d%%", delta)
	} else {
		arrow = fmt.Sprintf("▼ %d%%", delta)
	}

	if isImproved {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

// DirectionArrow renders a trend direction ("rising", "falling", "stable").
// Rising usage is shown as a warning since it means higher spend.
func DirectionArrow(direction string) string {
	switch direction {
	case "rising":
		return StyleWarning.Render("▲ rising")
	case "falling":
		return StyleSuccess.Render("▼ falling")
	default:
		return StyleMuted.Render("─ stable")
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// KeyValue renders a label/value line in the metric layout.
func KeyValue(label, value string) string {
	return fmt.Sprintf(" %s %s", StyleLabel.Render(label), value)
}
