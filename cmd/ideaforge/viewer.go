package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/germanamz/ideaforge/pkg/export"
	"github.com/germanamz/ideaforge/pkg/generators"
)

type viewerTab int

const (
	tabFormatted viewerTab = iota
	tabMarkdown
	tabMetadata
	tabDiff
	tabCount
)

var tabNames = [tabCount]string{"Formatted", "Markdown", "Metadata", "Diff"}

// Header is the title line plus the tab bar; footer is status plus key help.
const (
	viewerHeaderHeight = 3
	viewerFooterHeight = 2
)

type viewerKeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	SaveMD   key.Binding
	SaveHTML key.Binding
	SaveTXT  key.Binding
	Quit     key.Binding
}

func defaultViewerKeys() viewerKeyMap {
	return viewerKeyMap{
		Next:     key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next view")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev view")),
		SaveMD:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "save .md")),
		SaveHTML: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save .html")),
		SaveTXT:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "save .txt")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "done")),
	}
}

func (k viewerKeyMap) help() string {
	bindings := []key.Binding{k.Next, k.SaveMD, k.SaveHTML, k.SaveTXT, k.Quit}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return dimStyle.Render(strings.Join(parts, " · "))
}

type viewerOptions struct {
	diff    string
	hasDiff bool
	usage   string
	save    func(export.Format) (string, error)
}

// viewerModel shows one result in switchable tabs and saves it on request.
type viewerModel struct {
	result   generators.Result
	opts     viewerOptions
	keys     viewerKeyMap
	tab      viewerTab
	viewport viewport.Model
	ready    bool
	width    int
	status   string
	failed   bool
}

func newViewer(res generators.Result, opts viewerOptions) viewerModel {
	return viewerModel{
		result: res,
		opts:   opts,
		keys:   defaultViewerKeys(),
		status: opts.usage,
	}
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h := max(msg.Height-viewerHeaderHeight-viewerFooterHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.width = msg.Width
		initMarkdownRenderer(msg.Width - 2)
		m.viewport.SetContent(m.content())

		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.setTab((m.tab + 1) % tabCount)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.setTab((m.tab + tabCount - 1) % tabCount)
			return m, nil
		case key.Matches(msg, m.keys.SaveMD):
			m.saveAs(export.FormatMarkdown)
			return m, nil
		case key.Matches(msg, m.keys.SaveHTML):
			m.saveAs(export.FormatHTML)
			return m, nil
		case key.Matches(msg, m.keys.SaveTXT):
			m.saveAs(export.FormatText)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m *viewerModel) setTab(t viewerTab) {
	m.tab = t
	if m.ready {
		m.viewport.SetContent(m.content())
		m.viewport.GotoTop()
	}
}

func (m *viewerModel) saveAs(f export.Format) {
	if m.opts.save == nil {
		return
	}

	path, err := m.opts.save(f)
	if err != nil {
		m.status, m.failed = "save failed: "+err.Error(), true
		return
	}

	m.status, m.failed = "saved "+path, false
}

// content renders the body of the active tab.
func (m viewerModel) content() string {
	switch m.tab {
	case tabMarkdown:
		return m.result.ToMarkdown()
	case tabMetadata:
		return metadataTable(m.result.Metadata)
	case tabDiff:
		if !m.opts.hasDiff {
			return dimStyle.Render("Generate another " + strings.ToLower(m.result.Kind.Title()) + " to compare it with this one.")
		}
		if m.opts.diff == "" {
			return dimStyle.Render("Identical to the previous result.")
		}
		return renderDiff(m.opts.diff)
	default:
		return renderMarkdown(m.result.ToMarkdown())
	}
}

func (m viewerModel) tabBar() string {
	tabs := make([]string, tabCount)
	for i, name := range tabNames {
		if viewerTab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = inactiveTabStyle.Render(name)
		}
	}
	return strings.Join(tabs, "   ")
}

func (m viewerModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(truncate(m.result.Title(), max(m.width-1, 10))),
		m.tabBar(),
		"",
	)

	style := statusStyle
	if m.failed {
		style = diffDelStyle
	}

	footer := lipgloss.JoinVertical(lipgloss.Left,
		style.Render(truncate(m.status, max(m.width-1, 10))),
		m.keys.help(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}
