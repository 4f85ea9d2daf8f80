package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Meet0105/repoza-sub001/internal/core/notify"
	"github.com/Meet0105/repoza-sub001/internal/core/styles"
)

const toastWidth = 48

// ToastView renders the active notifications of a queue. It holds no state of
// its own: every render reads a fresh snapshot.
type ToastView struct {
	queue      *notify.Queue
	maxVisible int
}

func NewToastView(queue *notify.Queue, maxVisible int) *ToastView {
	return &ToastView{queue: queue, maxVisible: maxVisible}
}

// Visible returns the newest maxVisible notifications, oldest first.
func (v *ToastView) Visible() []notify.Notification {
	snap := v.queue.Snapshot()
	if v.maxVisible > 0 && len(snap) > v.maxVisible {
		snap = snap[len(snap)-v.maxVisible:]
	}
	return snap
}

// Hidden returns how many active notifications are not shown.
func (v *ToastView) Hidden() int {
	n := v.queue.Len()
	if v.maxVisible <= 0 || n <= v.maxVisible {
		return 0
	}
	return n - v.maxVisible
}

// View stacks the visible toasts vertically, newest at the bottom.
func (v *ToastView) View() string {
	visible := v.Visible()
	if len(visible) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(visible)+1)
	if hidden := v.Hidden(); hidden > 0 {
		more := styles.TextMutedStyle.Render("+" + strconv.Itoa(hidden) + " more")
		rendered = append(rendered, lipgloss.PlaceHorizontal(toastWidth, lipgloss.Right, more))
	}
	for _, n := range visible {
		rendered = append(rendered, renderToast(n))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func renderToast(n notify.Notification) string {
	title := styles.ToastTitleStyle.
		Foreground(styles.KindColor(n.Kind)).
		Render(styles.KindIcon(n.Kind) + " " + n.Title)

	lines := []string{title}
	if n.Message != "" {
		lines = append(lines, n.Message)
	}
	if n.Persistent() {
		lines = append(lines, styles.TextMutedStyle.Render("esc to dismiss"))
	}

	return styles.ToastStyle(n.Kind).Width(toastWidth).Render(strings.Join(lines, "\n"))
}

// Overlay draws fg over the lower-right corner of bg, which is padded to
// height lines.
func Overlay(bg, fg string, width, height int) string {
	if fg == "" {
		return bg
	}

	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}
	fgLines := strings.Split(fg, "\n")

	x := max(width-lipgloss.Width(fg)-1, 0)
	top := max(len(bgLines)-len(fgLines)-1, 0)

	for i, line := range fgLines {
		row := top + i
		if row >= len(bgLines) {
			break
		}
		left := ansi.Truncate(bgLines[row], x, "")
		gap := max(x-ansi.StringWidth(left), 0)
		bgLines[row] = left + strings.Repeat(" ", gap) + line
	}

	return strings.Join(bgLines, "\n")
}
