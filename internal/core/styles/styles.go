// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/Meet0105/repoza-sub001/internal/core/notify"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	TextPrimaryStyle        lipgloss.Style
	TextPrimaryBoldStyle    lipgloss.Style
	TextSecondaryStyle      lipgloss.Style
	TextForegroundStyle     lipgloss.Style
	TextForegroundBoldStyle lipgloss.Style
	TextMutedStyle          lipgloss.Style
	TextSuccessStyle        lipgloss.Style
	TextWarningStyle        lipgloss.Style
	TextErrorStyle          lipgloss.Style

	HeaderStyle    lipgloss.Style
	TabActiveStyle lipgloss.Style
	TabStyle       lipgloss.Style
	HelpStyle      lipgloss.Style
	InputStyle     lipgloss.Style
	SkeletonStyle  lipgloss.Style
	StatLabelStyle lipgloss.Style
	StatValueStyle lipgloss.Style
	TopicStyle     lipgloss.Style

	ToastTitleStyle lipgloss.Style
)

// toastStyles maps each notification kind to its toast frame style.
var toastStyles map[notify.Kind]lipgloss.Style

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	TextPrimaryStyle = lipgloss.NewStyle().Foreground(p.Primary)
	TextPrimaryBoldStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	TextSecondaryStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	TextForegroundStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	TextForegroundBoldStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	TextWarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	TextErrorStyle = lipgloss.NewStyle().Foreground(p.Error)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		Padding(0, 1)
	TabActiveStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Primary).
		Bold(true).
		Padding(0, 1)
	TabStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Padding(0, 1)
	HelpStyle = lipgloss.NewStyle().Foreground(p.Muted)
	InputStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1)
	SkeletonStyle = lipgloss.NewStyle().
		Foreground(p.Surface).
		Background(p.Surface)
	StatLabelStyle = lipgloss.NewStyle().Foreground(p.Muted)
	StatValueStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	TopicStyle = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Background(p.Surface).
		Padding(0, 1)

	ToastTitleStyle = lipgloss.NewStyle().Bold(true)

	toastBase := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Foreground(p.Foreground)
	toastStyles = map[notify.Kind]lipgloss.Style{
		notify.KindSuccess: toastBase.BorderForeground(p.Success),
		notify.KindError:   toastBase.BorderForeground(p.Error),
		notify.KindWarning: toastBase.BorderForeground(p.Warning),
		notify.KindInfo:    toastBase.BorderForeground(p.Info),
	}
}

// ToastStyle returns the frame style for a notification kind.
func ToastStyle(k notify.Kind) lipgloss.Style {
	if s, ok := toastStyles[k]; ok {
		return s
	}
	return toastStyles[notify.KindInfo]
}

// KindColor returns the accent color for a notification kind.
func KindColor(k notify.Kind) lipgloss.Color {
	switch k {
	case notify.KindSuccess:
		return CurrentPalette.Success
	case notify.KindError:
		return CurrentPalette.Error
	case notify.KindWarning:
		return CurrentPalette.Warning
	default:
		return CurrentPalette.Info
	}
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func colorPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() ansi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := colorPtr(CurrentPalette.Foreground)
	primary := colorPtr(CurrentPalette.Primary)
	secondary := colorPtr(CurrentPalette.Secondary)
	muted := colorPtr(CurrentPalette.Muted)
	surface := colorPtr(CurrentPalette.Surface)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	return cfg
}
