package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title  string
	Ref    string // short id shown before the title; empty hides it
	Level  int
	IsLast bool
	Done   bool
	Detail string
	// Selected marks the cursor row in interactive views.
	Selected bool
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. Done items get a green ✔ prefix,
// open items a dim ○, and detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	withCursor := false
	for _, item := range items {
		withCursor = withCursor || item.Selected
	}

	// Pass 1: build each line's content and track max visible width.
	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				prefix += treePipe
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		statusPrefix := StyleDim.Render("○ ")
		if item.Done {
			statusPrefix = StyleGreen.Render("✔ ")
			title = Dim(title)
		} else if item.Level == 0 {
			title = StyleFg.Render(title)
		}
		if item.Ref != "" {
			title = StyleDim.Render(item.Ref+" ") + title
		}

		content := prefix + statusPrefix + title
		if withCursor {
			marker := "  "
			if item.Selected {
				marker = StylePurple.Render("› ")
			}
			content = marker + content
		}
		lines[idx].content = content

		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	// Pass 2: render with right-aligned badges.
	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := maxContentWidth - lipgloss.Width(li.content)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}

	return b.String()
}
