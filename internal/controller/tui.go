package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// Lines reserved around the viewport for the header and footer.
const reservedLines = 6

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	footerStyle = lipgloss.NewStyle().Faint(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	addStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	removeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
	mu     sync.Mutex
	mode   StartMode
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start records the display mode.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mode = newStartConfig(options...).mode

	return nil
}

// Close finalizes the UI.
func (p *TUI) Close(_ context.Context) {}

// Wait is a no-op; the pager blocks inside DisplayReport.
func (p *TUI) Wait(_ context.Context) {}

// DisplayVerifyStart prints the run header.
func (p *TUI) DisplayVerifyStart(ctx context.Context, artifact string, sources int, threads int) {
	if ctx.Err() != nil {
		return
	}

	p.println(titleStyle.Render(fmt.Sprintf("srcverify · %s · %d source(s) · %d worker(s)", artifact, sources, threads)))
}

// DisplayProgress prints a coloured line per finished resolution. Workers call
// it concurrently.
func (p *TUI) DisplayProgress(ctx context.Context, resolution m.Resolution) {
	if ctx.Err() != nil {
		return
	}

	p.println(styleForStatus(resolution.Status.String()).Render(progressLine(resolution)))
}

// DisplayReport shows the report, paging it when it does not fit the terminal.
func (p *TUI) DisplayReport(ctx context.Context, report m.Report, savedTo m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := colorizeTable(renderReportTable(report))

	footer := verdictLine(report)
	if savedTo != "" {
		footer += "\nReport written to " + string(savedTo)
	}

	return p.page(titleStyle.Render("Source verification: "+report.Artifact), body, footer)
}

// DisplayDiff shows a coloured unified diff of two reports.
func (p *TUI) DisplayDiff(ctx context.Context, base, head m.Path, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	title := titleStyle.Render(fmt.Sprintf("Report diff: %s → %s", base, head))

	if diff == "" {
		p.println(title)
		p.println(okStyle.Render("Reports have identical outcomes"))

		return nil
	}

	return p.page(title, colorizeDiff(diff), "")
}

func (p *TUI) page(title, body, footer string) error {
	width, height := p.terminalSize()

	if height == 0 || visualLines(body, width) <= height-reservedLines {
		p.println(title)
		p.println(body)

		if footer != "" {
			p.println(footer)
		}

		return nil
	}

	model := newPagerModel(title, body, footer, width, height)

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	if footer != "" {
		p.println(footer)
	}

	return nil
}

// visualLines counts the terminal rows body occupies once long lines wrap.
func visualLines(body string, width int) int {
	rows := 0

	for _, line := range strings.Split(body, "\n") {
		rows++

		if width > 0 {
			if w := ansi.StringWidth(line); w > width {
				rows += (w - 1) / width
			}
		}
	}

	return rows
}

func (p *TUI) terminalSize() (int, int) {
	f, ok := p.output.(*os.File)
	if !ok {
		return 0, 0
	}

	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0
	}

	return width, height
}

func (p *TUI) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintln(p.output, s)
}

func styleForStatus(status string) lipgloss.Style {
	switch status {
	case m.Verified.String():
		return okStyle
	case m.Embedded.String():
		return infoStyle
	case m.NotFound.String():
		return warnStyle
	case m.Mismatched.String(), m.ReadError.String():
		return failStyle
	}

	return footerStyle
}

func colorizeTable(table string) string {
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")

	for i, line := range lines {
		for _, status := range []m.Status{m.Verified, m.Embedded, m.Mismatched, m.NotFound, m.ReadError} {
			if strings.Contains(line, statusIcon(status.String())+" "+status.String()) {
				lines[i] = styleForStatus(status.String()).Render(line)
				break
			}
		}
	}

	return strings.Join(lines, "\n")
}

func colorizeDiff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			lines[i] = titleStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = addStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = removeStyle.Render(line)
		}
	}

	return strings.Join(lines, "\n")
}

// pagerModel is the Bubble Tea model for scrolling long reports.
type pagerModel struct {
	title    string
	footer   string
	viewport viewport.Model
	quitting bool
}

func newPagerModel(title, body, footer string, width, height int) pagerModel {
	vp := viewport.New(width, max(height-reservedLines, 1))
	vp.SetContent(body)

	return pagerModel{
		title:    title,
		footer:   footer,
		viewport: vp,
	}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.viewport.Width = msg.Width
		pm.viewport.Height = max(msg.Height-reservedLines, 1)

		return pm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		case "g", "home":
			pm.viewport.GotoTop()
			return pm, nil
		case "G", "end":
			pm.viewport.GotoBottom()
			return pm, nil
		}
	}

	var cmd tea.Cmd

	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	if pm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(pm.title)
	b.WriteString("\n\n")
	b.WriteString(pm.viewport.View())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%3.f%% ", pm.viewport.ScrollPercent()*100)
	b.WriteString(footerStyle.Render("↑/k: up | ↓/j: down | g: top | G: bottom | q: quit"))

	if pm.footer != "" {
		b.WriteString("\n")
		b.WriteString(footerStyle.Render(pm.footer))
	}

	return b.String()
}
