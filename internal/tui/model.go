// Package tui implements the interactive repository explorer.
package tui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/Meet0105/repoza-sub001/internal/core/github"
	"github.com/Meet0105/repoza-sub001/internal/core/logging"
	"github.com/Meet0105/repoza-sub001/internal/core/notify"
	"github.com/Meet0105/repoza-sub001/internal/core/plans"
	"github.com/Meet0105/repoza-sub001/internal/core/styles"
)

// Analyzer fetches everything shown for a repository.
type Analyzer interface {
	Analyze(ctx context.Context, ref github.Ref) (github.Analysis, error)
}

// Summarizer produces a short AI summary of an analysis.
type Summarizer interface {
	Summarize(ctx context.Context, a github.Analysis) (string, error)
}

// Options configures the Model.
type Options struct {
	Queue      *notify.Queue
	Analyzer   Analyzer
	Summarizer Summarizer   // nil disables summaries
	Meter      *plans.Meter // nil disables quotas
	Tier       plans.Tier

	ToastDuration time.Duration
	MaxVisible    int
	Sticky        []notify.Kind // kinds that ignore ToastDuration and persist

	// InitialRef is analyzed as soon as the program starts.
	InitialRef string
	Build      BuildInfo
}

type state int

const (
	stateEmpty state = iota
	stateLoading
	stateReady
)

type pane int

const (
	paneReadme pane = iota
	paneTree
	paneJSON
	paneCount
)

var paneNames = [paneCount]string{"README", "Tree", "JSON"}

// header, input box, tabs, blank line and help.
const chromeHeight = 7

// Model is the root bubbletea model.
type Model struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger

	keys     keyMap
	help     help.Model
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	toasts   *ToastView

	state       state
	pane        pane
	loading     github.Ref
	analysis    *github.Analysis
	summary     string
	summarizing bool

	width  int
	height int
}

type (
	startMsg        struct{}
	queueChangedMsg struct{}

	analysisMsg struct {
		ref      github.Ref
		analysis github.Analysis
		err      error
	}

	summaryMsg struct {
		ref     github.Ref
		summary string
		err     error
	}
)

// New builds the model. The caller owns nothing after Run returns: quitting
// closes the queue.
func New(opts Options) Model {
	if opts.ToastDuration < 0 {
		opts.ToastDuration = 0
	}
	if opts.Tier == "" {
		opts.Tier = plans.TierFree
	}

	ctx, cancel := context.WithCancel(context.Background())

	input := textinput.New()
	input.Placeholder = "owner/name or https://github.com/owner/name"
	input.Prompt = styles.IconGithub + " "
	input.CharLimit = 200
	input.SetValue(opts.InitialRef)
	input.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.TextPrimaryBoldStyle

	return Model{
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		logger:   logging.Component("tui"),
		keys:     defaultKeyMap(),
		help:     help.New(),
		input:    input,
		spinner:  sp,
		viewport: viewport.New(0, 0),
		toasts:   NewToastView(opts.Queue, opts.MaxVisible),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, waitForQueue(m.ctx, m.opts.Queue)}
	if m.opts.InitialRef != "" {
		cmds = append(cmds, func() tea.Msg { return startMsg{} })
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case startMsg:
		return m.submit()

	case queueChangedMsg:
		return m, waitForQueue(m.ctx, m.opts.Queue)

	case analysisMsg:
		return m.handleAnalysis(msg)

	case summaryMsg:
		return m.handleSummary(msg)

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m.quit()
	case key.Matches(msg, m.keys.DismissAll):
		m.opts.Queue.DismissAll()
		return m, nil
	}

	if m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Analyze):
			return m.submit()
		case key.Matches(msg, m.keys.Dismiss):
			if !m.dismissNewest() && m.analysis != nil {
				m.input.Blur()
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Focus):
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.NextPane):
		m.pane = (m.pane + 1) % paneCount
		m.refreshContent()
		return m, nil
	case key.Matches(msg, m.keys.Summarize):
		return m.summarize()
	case key.Matches(msg, m.keys.Dismiss):
		m.dismissNewest()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())
	if raw == "" {
		return m, nil
	}

	ref, err := github.ParseRef(raw)
	if err != nil {
		m.notify(notify.KindError, "Invalid repository", err.Error(), m.opts.ToastDuration)
		return m, nil
	}

	if m.state == stateLoading && m.loading == ref {
		return m, nil
	}

	m.logger.Debug().Str("repo", ref.String()).Msg("analyze requested")

	m.state = stateLoading
	m.loading = ref
	m.input.Blur()

	return m, tea.Batch(m.spinner.Tick, analyzeCmd(m.ctx, m.opts.Analyzer, m.opts.Meter, ref))
}

func (m Model) handleAnalysis(msg analysisMsg) (tea.Model, tea.Cmd) {
	if msg.ref != m.loading {
		return m, nil
	}
	m.loading = github.Ref{}

	if msg.err != nil {
		m.state = stateEmpty
		if m.analysis != nil {
			m.state = stateReady
		}
		m.notifyError(msg.ref, msg.err)
		return m, m.input.Focus()
	}

	a := msg.analysis
	m.analysis = &a
	m.summary = ""
	m.state = stateReady
	m.pane = paneReadme
	m.refreshContent()

	title := "Analyzed " + a.Repository.FullName
	detail := ""
	if a.Cached {
		detail = "from cache, fetched " + a.FetchedAt.Format(time.Kitchen)
	}
	m.notify(notify.KindSuccess, title, detail, m.opts.ToastDuration)

	for _, w := range a.Warnings {
		m.notify(notify.KindWarning, "Partial result", w, m.opts.ToastDuration)
	}
	if a.Tree != nil {
		if _, full := plans.WithinTreeLimit(m.opts.Tier, len(a.Tree.Entries)); !full {
			m.notify(notify.KindInfo, "Tree limited", "Upgrade your plan to see every file.", m.opts.ToastDuration)
		}
	}

	return m, nil
}

func (m Model) notifyError(ref github.Ref, err error) {
	m.logger.Warn().Err(err).Str("repo", ref.String()).Msg("analysis failed")

	switch {
	case errors.Is(err, plans.ErrQuotaExceeded):
		m.notify(notify.KindWarning, "Daily limit reached", err.Error()+". See `repoza plans`.", m.opts.ToastDuration)
	case errors.Is(err, github.ErrNotFound):
		m.notify(notify.KindError, "Repository not found", ref.String(), m.opts.ToastDuration)
	case errors.Is(err, github.ErrRateLimited):
		m.notify(notify.KindWarning, "GitHub rate limit", err.Error(), 0)
	case errors.Is(err, github.ErrUnauthorized):
		m.notify(notify.KindError, "GitHub rejected the token", "Check GITHUB_TOKEN or run `repoza signin`.", 0)
	case errors.Is(err, context.Canceled):
	default:
		m.notify(notify.KindError, "Failed", "Could not reach server: "+err.Error(), 0)
	}
}

func (m Model) summarize() (tea.Model, tea.Cmd) {
	switch {
	case m.analysis == nil:
		return m, nil
	case m.opts.Summarizer == nil:
		m.notify(notify.KindInfo, "AI summaries unavailable", "Set ANTHROPIC_API_KEY to enable them.", m.opts.ToastDuration)
		return m, nil
	case m.summarizing:
		return m, nil
	}

	m.summarizing = true
	m.notify(notify.KindInfo, "Summarizing", m.analysis.Repository.FullName, m.opts.ToastDuration)
	return m, summarizeCmd(m.ctx, m.opts.Summarizer, m.opts.Meter, *m.analysis)
}

func (m Model) handleSummary(msg summaryMsg) (tea.Model, tea.Cmd) {
	m.summarizing = false
	if m.analysis == nil || msg.ref != m.analysis.Ref {
		return m, nil
	}

	if msg.err != nil {
		if errors.Is(msg.err, plans.ErrQuotaExceeded) {
			m.notify(notify.KindWarning, "Daily limit reached", msg.err.Error(), m.opts.ToastDuration)
		} else {
			m.notify(notify.KindError, "Summary failed", msg.err.Error(), 0)
		}
		return m, nil
	}

	m.summary = msg.summary
	m.pane = paneReadme
	m.refreshContent()
	m.notify(notify.KindSuccess, "Summary ready", "", m.opts.ToastDuration)
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.opts.Queue.Close()
	return m, tea.Quit
}

// dismissNewest removes the most recent toast and reports whether one existed.
func (m Model) dismissNewest() bool {
	n, ok := m.opts.Queue.Newest()
	if ok {
		m.opts.Queue.Dismiss(n.ID)
	}
	return ok
}

func (m Model) notify(kind notify.Kind, title, message string, d time.Duration) {
	if slices.Contains(m.opts.Sticky, kind) {
		d = 0
	}
	if _, err := m.opts.Queue.Notify(kind, title, message, d); err != nil {
		m.logger.Debug().Err(err).Str("title", title).Msg("notification dropped")
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.input.Width = max(width-10, 10)

	helpLines := 1
	if m.help.ShowAll {
		helpLines = lipgloss.Height(m.help.View(m.keys))
	}

	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight-helpLines+1, 3)
	m.refreshContent()
}

func (m *Model) refreshContent() {
	if m.analysis == nil || m.width == 0 {
		return
	}

	var content string
	switch m.pane {
	case paneTree:
		content = treeContent(*m.analysis, m.opts.Tier)
	case paneJSON:
		content = jsonContent(*m.analysis)
	default:
		content = readmeContent(*m.analysis, m.summary, m.width)
	}

	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func waitForQueue(ctx context.Context, q *notify.Queue) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-q.Changes():
			return queueChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// analyzeCmd charges the analysis quota before fetching: every request counts,
// including ones served from cache.
func analyzeCmd(ctx context.Context, analyzer Analyzer, meter *plans.Meter, ref github.Ref) tea.Cmd {
	return func() tea.Msg {
		ctx := logging.WithRepo(ctx, ref.String())
		if meter != nil {
			if _, err := meter.Use(ctx, plans.MetricAnalyses); err != nil {
				return analysisMsg{ref: ref, err: err}
			}
		}
		a, err := analyzer.Analyze(ctx, ref)
		return analysisMsg{ref: ref, analysis: a, err: err}
	}
}

func summarizeCmd(ctx context.Context, s Summarizer, meter *plans.Meter, a github.Analysis) tea.Cmd {
	return func() tea.Msg {
		if meter != nil {
			if _, err := meter.Use(ctx, plans.MetricSummaries); err != nil {
				return summaryMsg{ref: a.Ref, err: err}
			}
		}
		out, err := s.Summarize(ctx, a)
		return summaryMsg{ref: a.Ref, summary: out, err: err}
	}
}
