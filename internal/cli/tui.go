package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/floorplace/floorplace/pkg/pipeline"
	"github.com/floorplace/floorplace/pkg/search"
)

// maxVisibleIterations caps the iteration table height.
const maxVisibleIterations = 12

var (
	tuiDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tuiFeasibleStyle = lipgloss.NewStyle().Foreground(colorGreen)
	tuiOverlapStyle  = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// WatchModel - Live optimizer progress
// =============================================================================

// iterMsg carries one optimizer iteration into the TUI.
type iterMsg search.Iteration

// doneMsg signals that the pipeline finished.
type doneMsg struct {
	err error
}

// WatchModel is the bubbletea model displaying live search progress.
type WatchModel struct {
	Iterations []search.Iteration // most recent iterations, oldest first
	Best       int
	Feasible   bool
	Done       bool
	Aborted    bool
	Err        error
}

// NewWatchModel creates an empty watch model.
func NewWatchModel() WatchModel {
	return WatchModel{}
}

func (m WatchModel) Init() tea.Cmd {
	return nil
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit
		}
	case iterMsg:
		m.Iterations = append(m.Iterations, search.Iteration(msg))
		if len(m.Iterations) > maxVisibleIterations {
			m.Iterations = m.Iterations[len(m.Iterations)-maxVisibleIterations:]
		}
		m.Best = msg.Best
		m.Feasible = msg.Feasible
	case doneMsg:
		m.Done = true
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Optimizing placement"))
	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render("q abort"))
	b.WriteString("\n\n")

	rows := [][]string{}
	for _, it := range m.Iterations {
		feasible := "overlap"
		if it.Feasible {
			feasible = "feasible"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", it.Index),
			fmt.Sprintf("%d", it.Objective),
			fmt.Sprintf("%d", it.Best),
			feasible,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Iter", "Objective", "Best", "State").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 {
				if row < len(m.Iterations) && m.Iterations[row].Feasible {
					return tuiFeasibleStyle
				}
				return tuiOverlapStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	if m.Done {
		b.WriteString(StyleSuccess.Render("done"))
	} else {
		state := tuiOverlapStyle.Render("searching")
		if m.Feasible {
			state = tuiFeasibleStyle.Render("feasible")
		}
		b.WriteString(fmt.Sprintf("  best %s · %s",
			StyleNumber.Render(fmt.Sprintf("%d", m.Best)), state))
	}
	b.WriteString("\n")

	return b.String()
}

// =============================================================================
// Watched pipeline execution
// =============================================================================

// runPlaceWatched runs the pipeline while displaying live progress.
// Quitting the TUI cancels the search.
func (c *CLI) runPlaceWatched(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewWatchModel(), tea.WithContext(ctx))

	opts.Progress = func(it search.Iteration) {
		p.Send(iterMsg(it))
	}

	var (
		result *pipeline.Result
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, runErr = runner.Execute(ctx, opts)
		p.Send(doneMsg{err: runErr})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-done
		return nil, err
	}
	if m, ok := final.(WatchModel); ok && m.Aborted {
		cancel()
	}
	<-done

	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}
