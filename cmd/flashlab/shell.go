package main

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mgomes/flashlab/flashcode"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	codeStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Bold(true)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

const shellPrompt = "[FLASHcode]> "

var shellCommands = []string{
	"add", "available", "bits", "clear", "copy", "enabled",
	"help", "list", "load", "new", "print", "quit", "remove",
}

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

// shellOptions wires the shell to its surroundings.
type shellOptions struct {
	strict      bool
	historySize int
	catalogPath string
	reload      func() (*flashcode.Catalog, error)
	changes     <-chan struct{}
	copy        func(string) error
	logger      *slog.Logger
}

type shellModel struct {
	textInput   textinput.Model
	code        *flashcode.Code
	opts        shellOptions
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	quitting    bool
	initialized bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	CtrlC key.Binding
	CtrlD key.Binding
	CtrlL key.Binding
	CtrlY key.Binding
	Tab   key.Binding
	CtrlH key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous command"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next command"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "execute"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	CtrlD: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "quit"),
	),
	CtrlL: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	CtrlY: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy code"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "autocomplete"),
	),
	CtrlH: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "toggle help"),
	),
}

func newShellModel(code *flashcode.Code, opts shellOptions) shellModel {
	ti := textinput.New()
	ti.Placeholder = "type a command, or help"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = shellPrompt

	if opts.historySize <= 0 {
		opts.historySize = defaultConfig().Shell.HistorySize
	}
	if opts.copy == nil {
		opts.copy = clipboard.WriteAll
	}
	if opts.logger == nil {
		opts.logger = slog.New(slog.DiscardHandler)
	}

	return shellModel{
		textInput:  ti,
		code:       code,
		opts:       opts,
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}
}

func (m shellModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen, waitForCatalogChange(m.opts.changes))
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - len(shellPrompt) - 4
		m.initialized = true
		return m, nil

	case catalogChangedMsg:
		m = m.reloadCatalog()
		return m, waitForCatalogChange(m.opts.changes)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.CtrlD):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.CtrlL):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.CtrlH):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, keys.CtrlY):
			m = m.record("", m.copyCode())
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Tab):
			m = m.handleAutocomplete()
			return m, nil

		case key.Matches(msg, keys.Enter):
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}
			var cmd tea.Cmd
			m, cmd = m.execute(input)
			m.cmdHistory = appendBounded(m.cmdHistory, input, m.opts.historySize)
			m.textInput.SetValue("")
			m.historyIdx = -1
			return m, cmd
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

type shellResult struct {
	output string
	err    error
}

func (m shellModel) execute(input string) (shellModel, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	name = strings.ToLower(strings.TrimPrefix(name, ":"))
	arg = strings.TrimSpace(arg)

	var res shellResult
	switch name {
	case "load":
		res = m.load(arg)
	case "new":
		m.code = flashcode.New(m.code.Catalog())
		res.output = m.code.String()
	case "list":
		res.output = joinOrNone(catalogLines(m.code.Catalog()))
	case "print":
		res.output = m.code.String()
	case "bits":
		res.output = m.code.BitsString()
	case "add":
		res = m.changeOption(arg, m.code.AddOption)
	case "remove":
		res = m.changeOption(arg, m.code.RemoveOption)
	case "enabled":
		res.output = joinOrNone(m.code.EnabledOptions())
	case "available":
		res.output = joinOrNone(m.code.AvailableOptions())
	case "copy":
		res = m.copyCode()
	case "help", "h", "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "clear":
		m.history = make([]historyEntry, 0)
		return m, nil
	case "quit", "q", "exit":
		m.quitting = true
		return m, tea.Quit
	default:
		res.err = fmt.Errorf("unknown command: %s", name)
	}
	return m.record(input, res), nil
}

func (m shellModel) record(input string, res shellResult) shellModel {
	entry := historyEntry{input: input, output: res.output}
	if res.err != nil {
		entry.output = res.err.Error()
		entry.isErr = true
	}
	m.history = appendBounded(m.history, entry, m.opts.historySize)
	return m
}

func (m *shellModel) load(arg string) shellResult {
	if arg == "" {
		return shellResult{err: errors.New("usage: load CODE")}
	}
	var (
		code *flashcode.Code
		err  error
	)
	if m.opts.strict {
		code, err = flashcode.ParseStrict(arg, m.code.Catalog())
	} else {
		code, err = flashcode.Parse(arg, m.code.Catalog())
	}
	if err != nil {
		return shellResult{err: err}
	}
	m.code = code
	return shellResult{output: code.String()}
}

func (m shellModel) changeOption(name string, apply func(string) error) shellResult {
	if name == "" {
		return shellResult{err: errors.New("option name required")}
	}
	if err := apply(name); err != nil {
		return shellResult{err: err}
	}
	return shellResult{output: m.code.String()}
}

func (m shellModel) copyCode() shellResult {
	s := m.code.String()
	if err := m.opts.copy(s); err != nil {
		return shellResult{err: fmt.Errorf("copy to clipboard: %w", err)}
	}
	return shellResult{output: "copied " + s}
}

func (m shellModel) reloadCatalog() shellModel {
	if m.opts.reload == nil {
		return m
	}
	c, err := m.opts.reload()
	if err != nil {
		m.opts.logger.Debug("catalog reload failed", slog.String("path", m.opts.catalogPath), slog.Any("err", err))
		return m.record("", shellResult{err: fmt.Errorf("catalog reload: %w", err)})
	}
	m.code = m.code.WithCatalog(c)
	m.opts.logger.Debug("catalog reloaded", slog.String("path", m.opts.catalogPath), slog.Int("options", c.Len()))
	return m.record("", shellResult{output: fmt.Sprintf("catalog reloaded (%d options)", c.Len())})
}

func (m shellModel) handleAutocomplete() shellModel {
	input := m.textInput.Value()
	if strings.TrimSpace(input) == "" {
		return m
	}

	name, arg, hasArg := strings.Cut(strings.TrimLeft(input, " "), " ")
	lastWord := strings.TrimSpace(arg)

	// Complete command names first, option names after add/remove.
	var candidates []string
	if !hasArg {
		candidates = shellCommands
		lastWord = strings.TrimPrefix(name, ":")
	} else {
		switch strings.ToLower(strings.TrimPrefix(name, ":")) {
		case "add":
			candidates = m.code.AvailableOptions()
		case "remove":
			candidates = m.code.EnabledOptions()
		default:
			return m
		}
	}

	var completions []string
	for _, c := range candidates {
		if strings.HasPrefix(c, lastWord) {
			completions = append(completions, c)
		}
	}

	if len(completions) == 1 {
		prefix := input
		if lastWord != "" {
			prefix = strings.TrimSuffix(strings.TrimRight(input, " "), lastWord)
		}
		m.textInput.SetValue(prefix + completions[0])
		m.textInput.CursorEnd()
	} else if len(completions) > 1 {
		m = m.record("", shellResult{output: "Completions: " + strings.Join(completions, ", ")})
	}

	return m
}

func (m shellModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	header := headerStyle.Render("FLASHlab")
	catalog := m.code.Catalog()
	summary := mutedStyle.Render(fmt.Sprintf("%d options  %016x", catalog.Len(), catalog.Fingerprint()))
	b.WriteString(header + " " + summary + "\n")
	b.WriteString("  " + codeStyle.Render(m.code.String()) + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", max(0, min(m.width-2, 60)))) + "\n\n")

	reservedLines := 9 // header, code, input, footer
	if m.showHelp {
		reservedLines += len(shellHelp) + 3
	}
	availableHeight := max(0, m.height-reservedLines)

	lines := m.historyLines()
	if len(lines) > availableHeight {
		lines = lines[len(lines)-availableHeight:]
	}
	for _, line := range lines {
		b.WriteString(line + "\n")
	}

	if m.showHelp {
		b.WriteString(renderHelpPanel())
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")

	footer := helpKeyStyle.Render("ctrl+k") + helpDescStyle.Render(" help  ") +
		helpKeyStyle.Render("ctrl+y") + helpDescStyle.Render(" copy  ") +
		helpKeyStyle.Render("ctrl+l") + helpDescStyle.Render(" clear  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")
	b.WriteString(footer)

	return b.String()
}

func (m shellModel) historyLines() []string {
	var lines []string
	for _, entry := range m.history {
		if entry.input != "" {
			lines = append(lines, mutedStyle.Render("  › ")+entry.input)
		}
		for _, out := range strings.Split(entry.output, "\n") {
			if entry.isErr {
				lines = append(lines, "  "+errorStyle.Render("✗ "+out))
			} else {
				lines = append(lines, "  "+resultStyle.Render("→ "+out))
			}
		}
	}
	return lines
}

var shellHelp = []struct {
	key  string
	desc string
}{
	{"load CODE", "Load an existing code"},
	{"new", "Start a blank code"},
	{"list", "List catalog options"},
	{"print", "Print the code"},
	{"bits", "Print the code as bits"},
	{"add OPT", "Enable an option"},
	{"remove OPT", "Disable an option"},
	{"enabled", "Show enabled options"},
	{"available", "Show available options"},
	{"copy", "Copy the code to the clipboard"},
	{"clear", "Clear history"},
	{"quit", "Exit"},
}

// helpBindings lists the key bindings shown in the help panel.
func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Tab, k.CtrlY, k.CtrlL, k.CtrlH, k.CtrlC}
}

func renderHelpPanel() string {
	rows := make([][2]string, 0, len(shellHelp)+len(keys.helpBindings()))
	for _, h := range shellHelp {
		rows = append(rows, [2]string{h.key, h.desc})
	}
	for _, b := range keys.helpBindings() {
		h := b.Help()
		rows = append(rows, [2]string{h.Key, h.Desc})
	}
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}

	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help")}
	for i, r := range rows {
		if i == len(shellHelp) {
			lines = append(lines, "")
		}
		pad := strings.Repeat(" ", width-lipgloss.Width(r[0]))
		lines = append(lines, "  "+helpKeyStyle.Render(r[0]+pad)+"  "+helpDescStyle.Render(r[1]))
	}
	return borderStyle.Render(strings.Join(lines, "\n"))
}

func joinOrNone(lines []string) string {
	if len(lines) == 0 {
		return "(none)"
	}
	return strings.Join(lines, "\n")
}

func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if len(s) > limit {
		s = slices.Delete(s, 0, len(s)-limit)
	}
	return s
}

func runShell(a *app) error {
	c, err := a.catalog()
	if err != nil {
		return err
	}

	opts := shellOptions{
		strict:      a.cfg.StrictChecksum,
		historySize: a.cfg.Shell.HistorySize,
		catalogPath: a.cfg.Catalog,
		reload: func() (*flashcode.Catalog, error) {
			return readCatalog(a.ctx, a.cfg.Catalog)
		},
		logger: a.logger,
	}
	if a.cfg.Shell.Watch {
		changes, stop, err := watchCatalog(a.cfg.Catalog)
		if err != nil {
			a.logger.Warn("catalog watch disabled", slog.String("path", a.cfg.Catalog), slog.Any("err", err))
		} else {
			defer stop()
			opts.changes = changes
		}
	}

	p := tea.NewProgram(newShellModel(flashcode.New(c), opts), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
