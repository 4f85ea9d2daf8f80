package tui

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Meet0105/repoza-sub001/internal/core/github"
	"github.com/Meet0105/repoza-sub001/internal/core/plans"
	"github.com/Meet0105/repoza-sub001/internal/core/styles"
	"github.com/Meet0105/repoza-sub001/internal/tui/jsoncolor"
)

var skeletonWidths = []int{64, 48, 72, 36, 58, 44, 68}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	page := lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		styles.InputStyle.Width(max(m.width-2, 10)).Render(m.input.View()),
		m.tabsView(),
		m.bodyView(),
		styles.HelpStyle.Render(m.help.View(m.keys)),
	)

	return Overlay(page, m.toasts.View(), m.width, m.height)
}

func (m Model) headerView() string {
	left := styles.HeaderStyle.Render("repoza")
	if label := m.opts.Build.Label(); label != "" {
		left += styles.TextMutedStyle.Render(label)
	}

	limits, err := plans.Lookup(m.opts.Tier)
	right := ""
	if err == nil {
		right = styles.TextMutedStyle.Render(limits.Name + " plan ")
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) tabsView() string {
	if m.analysis == nil {
		return ""
	}

	tabs := make([]string, 0, paneCount)
	for i, name := range paneNames {
		if pane(i) == m.pane {
			tabs = append(tabs, styles.TabActiveStyle.Render(name))
		} else {
			tabs = append(tabs, styles.TabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) bodyView() string {
	box := lipgloss.NewStyle().Height(m.viewport.Height).MaxHeight(m.viewport.Height)

	switch m.state {
	case stateLoading:
		return box.Render(m.skeletonView())
	case stateReady:
		return m.viewport.View()
	default:
		hint := styles.TextMutedStyle.Render("Enter a GitHub repository and press enter.")
		return box.Render(lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, hint))
	}
}

// skeletonView is the placeholder shown while a fetch is in flight.
func (m Model) skeletonView() string {
	lines := []string{
		m.spinner.View() + styles.TextMutedStyle.Render("Fetching "+m.loading.String()+"…"),
		"",
	}
	for _, w := range skeletonWidths {
		w = max(min(w, m.width-4), 1)
		lines = append(lines, styles.SkeletonStyle.Render(strings.Repeat(" ", w)))
	}
	return strings.Join(lines, "\n")
}

func statsView(r github.Repository) string {
	stat := func(label, value string) string {
		return styles.StatLabelStyle.Render(label) + " " + styles.StatValueStyle.Render(value)
	}

	parts := []string{
		stat(styles.IconStar, humanize.Comma(int64(r.Stars))),
		stat(styles.IconFork, humanize.Comma(int64(r.Forks))),
		stat(styles.IconIssue, humanize.Comma(int64(r.OpenIssues))),
	}
	if r.Language != "" {
		parts = append(parts, stat("lang", r.Language))
	}
	if r.License != "" {
		parts = append(parts, stat("license", r.License))
	}
	if !r.PushedAt.IsZero() {
		parts = append(parts, stat("pushed", humanize.Time(r.PushedAt)))
	}

	lines := []string{
		styles.TextPrimaryBoldStyle.Render(r.FullName),
	}
	if r.Archived {
		lines[0] += " " + styles.TextWarningStyle.Render("(archived)")
	}
	if r.Description != "" {
		lines = append(lines, r.Description)
	}
	lines = append(lines, strings.Join(parts, "   "))

	if len(r.Topics) > 0 {
		topics := make([]string, len(r.Topics))
		for i, t := range r.Topics {
			topics[i] = styles.TopicStyle.Render(t)
		}
		lines = append(lines, strings.Join(topics, " "))
	}

	return lipgloss.NewStyle().Padding(1, 2, 0, 2).Render(strings.Join(lines, "\n"))
}

func readmeContent(a github.Analysis, summary string, width int) string {
	var md strings.Builder
	if summary != "" {
		md.WriteString("## Summary\n\n")
		md.WriteString(summary)
		md.WriteString("\n\n---\n\n")
	}

	if a.Readme != nil {
		md.WriteString(a.Readme.Content)
	} else {
		md.WriteString("_No README available._")
	}

	return statsView(a.Repository) + "\n" + renderMarkdown(md.String(), width)
}

func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func treeContent(a github.Analysis, tier plans.Tier) string {
	if a.Tree == nil {
		return styles.TextMutedStyle.Render("  File tree unavailable.")
	}

	entries := a.Tree.Entries
	shown, full := plans.WithinTreeLimit(tier, len(entries))

	var b strings.Builder
	for _, e := range entries[:shown] {
		depth := strings.Count(e.Path, "/")
		name := styles.FileIcon(e.Path, e.IsDir()) + " " + path.Base(e.Path)

		style := styles.TextForegroundStyle
		if e.IsDir() {
			style = styles.TextPrimaryStyle
		}

		b.WriteString("  ")
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(style.Render(name))
		b.WriteByte('\n')
	}

	var notes []string
	if !full {
		notes = append(notes, fmt.Sprintf("… %d more entries on a larger plan", len(entries)-shown))
	}
	if a.Tree.Truncated {
		notes = append(notes, "GitHub truncated this tree")
	}
	if a.Tree.Excluded > 0 {
		notes = append(notes, fmt.Sprintf("%d paths hidden by tree_exclude", a.Tree.Excluded))
	}
	for _, n := range notes {
		b.WriteString(styles.TextMutedStyle.Render("  " + n))
		b.WriteByte('\n')
	}

	return b.String()
}

func jsonContent(a github.Analysis) string {
	data, err := json.Marshal(a)
	if err != nil {
		return styles.TextErrorStyle.Render(err.Error())
	}
	return jsoncolor.Colorize(data)
}

// RenderReport renders the stats header, optional summary and README of an
// analysis for non-interactive output.
func RenderReport(a github.Analysis, summary string, width int) string {
	return readmeContent(a, summary, width)
}
