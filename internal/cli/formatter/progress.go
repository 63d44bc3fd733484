package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░] 2 of 4 completed.
// The bar is green above two thirds, yellow above one third, red below.
func RenderProgress(completed, total, width int) string {
	if width < 2 {
		width = 2
	}
	pct := 0.0
	if total > 0 {
		pct = float64(completed) / float64(total)
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}

	return fmt.Sprintf("[%s] %s", style.Render(bar), CompletedLabel(completed, total))
}

// CompletedLabel returns the "X of Y completed" summary line.
func CompletedLabel(completed, total int) string {
	return fmt.Sprintf("%d of %d completed", completed, total)
}
