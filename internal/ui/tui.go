package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"tasklist/internal/locale"
	"tasklist/internal/task"
	"tasklist/internal/tasklist"
)

// RunTUI runs the interactive list until the user quits or ctx ends.
// source names where tasks are stored and is shown in the header.
func RunTUI(ctx context.Context, list *tasklist.List, labels locale.Labels, source string) error {
	if !IsTTY(os.Stdout) {
		return errors.New("tui requires a TTY")
	}
	model := newTUIModel(ctx, list, labels, source)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type formStep int

const (
	stepDescription formStep = iota
	stepDate
	stepPriority
)

type addForm struct {
	step  formStep
	draft tasklist.Draft
	input string
}

type tuiModel struct {
	ctx     context.Context
	list    *tasklist.List
	labels  locale.Labels
	source  string
	cursor  int
	loading bool
	busy    bool
	status  string
	err     error
	adding  bool
	form    addForm
}

type loadedMsg struct {
	err error
}

type savedMsg struct {
	op  string
	err error
}

type createdMsg struct {
	created task.Task
	draft   tasklist.Draft
	err     error
}

func newTUIModel(ctx context.Context, list *tasklist.List, labels locale.Labels, source string) *tuiModel {
	if ctx == nil {
		ctx = context.Background()
	}
	return &tuiModel{ctx: ctx, list: list, labels: labels, source: source}
}

func (m *tuiModel) Init() tea.Cmd {
	m.loading = true
	return loadCmd(m.ctx, m.list)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.adding {
			return m, m.updateForm(msg)
		}
		return m, m.updateList(msg)
	case loadedMsg:
		m.loading = false
		m.setResult("", msg.err)
		m.clampCursor()
	case savedMsg:
		m.busy = false
		m.setResult(msg.op, msg.err)
		m.clampCursor()
	case createdMsg:
		m.busy = false
		if msg.err == nil {
			m.adding = false
			m.form = addForm{}
			m.setResult("added", nil)
			m.cursor = len(m.list.Tasks()) - 1
			return m, nil
		}
		m.form.draft = msg.draft
		m.reopenStep(msg.err)
		m.setResult("", msg.err)
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return nil
	case "down", "j":
		if m.cursor < len(m.list.Tasks())-1 {
			m.cursor++
		}
		return nil
	case "r", "f5":
		if m.loading {
			return nil
		}
		m.loading = true
		return loadCmd(m.ctx, m.list)
	case "a":
		m.adding = true
		m.form = addForm{draft: tasklist.Draft{Priority: task.PriorityNormal}}
		m.err = nil
		m.status = ""
		return nil
	}

	if m.loading || m.busy {
		return nil
	}
	selected, ok := m.selected()
	if !ok {
		return nil
	}
	ctx, list := m.ctx, m.list
	switch msg.String() {
	case " ", "x":
		m.busy = true
		return func() tea.Msg {
			return savedMsg{op: "updated", err: list.ToggleComplete(ctx, selected.ID)}
		}
	case "+", "=":
		return m.changePriority(selected, selected.Priority.Next())
	case "-":
		return m.changePriority(selected, selected.Priority.Prev())
	case "d", "delete":
		m.busy = true
		return func() tea.Msg {
			return savedMsg{op: "deleted", err: list.Delete(ctx, selected.ID)}
		}
	}
	return nil
}

func (m *tuiModel) changePriority(selected task.Task, next task.Priority) tea.Cmd {
	if next == selected.Priority {
		return nil
	}
	m.busy = true
	ctx, list := m.ctx, m.list
	return func() tea.Msg {
		return savedMsg{op: "updated", err: list.ChangePriority(ctx, selected.ID, next)}
	}
}

func (m *tuiModel) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		m.adding = false
		m.form = addForm{}
		m.err = nil
		return nil
	case tea.KeyBackspace:
		if r := []rune(m.form.input); len(r) > 0 {
			m.form.input = string(r[:len(r)-1])
		}
		return nil
	case tea.KeySpace:
		m.form.input += " "
		return nil
	case tea.KeyRunes:
		m.form.input += string(msg.Runes)
		return nil
	case tea.KeyEnter:
		return m.advanceForm()
	}
	return nil
}

func (m *tuiModel) advanceForm() tea.Cmd {
	if m.busy {
		return nil
	}
	value := strings.TrimSpace(m.form.input)
	switch m.form.step {
	case stepDescription:
		m.form.draft.Description = value
		m.form.step = stepDate
		m.form.input = m.form.draft.DueDate
		return nil
	case stepDate:
		m.form.draft.DueDate = value
		m.form.step = stepPriority
		m.form.input = ""
		return nil
	}

	if value != "" {
		p, err := m.labels.ParsePriority(value)
		if err != nil {
			m.err = err
			return nil
		}
		m.form.draft.Priority = p
	}
	m.busy = true
	ctx, list, draft := m.ctx, m.list, m.form.draft
	return func() tea.Msg {
		created, err := list.Create(ctx, &draft)
		return createdMsg{created: created, draft: draft, err: err}
	}
}

// reopenStep moves the form back to the field a create error refers to.
func (m *tuiModel) reopenStep(err error) {
	switch {
	case errors.Is(err, task.ErrDescriptionRequired):
		m.form.step = stepDescription
		m.form.input = m.form.draft.Description
	case errors.Is(err, task.ErrDateRequired), errors.Is(err, task.ErrInvalidDate):
		m.form.step = stepDate
		m.form.input = m.form.draft.DueDate
	default:
		m.form.input = ""
	}
}

func (m *tuiModel) setResult(op string, err error) {
	m.err = err
	if err != nil {
		m.status = ""
		return
	}
	m.status = op
}

func (m *tuiModel) selected() (task.Task, bool) {
	tasks := m.list.Tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *tuiModel) clampCursor() {
	n := len(m.list.Tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.source)

	if m.loading {
		b.WriteString("Loading…\n\n")
		writeFooter(&b, m.adding)
		return b.String()
	}

	if m.adding {
		writeForm(&b, m.form, m.labels)
	} else {
		writeTasks(&b, m.list.Tasks(), m.cursor, m.labels)
	}
	writeStatusLine(&b, m.status, m.err)
	writeFooter(&b, m.adding)
	return b.String()
}

func loadCmd(ctx context.Context, list *tasklist.List) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: list.Load(ctx)}
	}
}

func writeTitle(b *strings.Builder, source string) {
	title := "Tasks"
	if source != "" {
		title += " · " + source
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(title))) + "\n\n")
}

func writeTasks(b *strings.Builder, tasks []task.Task, cursor int, labels locale.Labels) {
	if len(tasks) == 0 {
		b.WriteString("  No tasks. Press a to add one.\n\n")
		return
	}
	for i, t := range tasks {
		pointer := " "
		if i == cursor {
			pointer = ">"
		}
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(b, "%s [%s] %-10s %-8s %s\n", pointer, done, t.DueDate, labels.Priority(t.Priority), t.Description)
	}
	b.WriteString("\n")
}

func writeForm(b *strings.Builder, form addForm, labels locale.Labels) {
	b.WriteString("New task\n\n")
	fields := []struct {
		step  formStep
		label string
		value string
	}{
		{stepDescription, "Task", form.draft.Description},
		{stepDate, "Date (YYYY-MM-DD, today, tomorrow)", form.draft.DueDate},
		{stepPriority, "Priority", labels.Priority(form.draft.Priority)},
	}
	for _, f := range fields {
		switch {
		case f.step == form.step:
			fmt.Fprintf(b, "> %s: %s_\n", f.label, form.input)
		case f.step < form.step:
			fmt.Fprintf(b, "  %s: %s\n", f.label, f.value)
		default:
			fmt.Fprintf(b, "  %s:\n", f.label)
		}
	}
	b.WriteString("\n")
}

func writeStatusLine(b *strings.Builder, status string, err error) {
	switch {
	case err != nil:
		b.WriteString("Error: " + err.Error() + "\n\n")
	case status != "":
		b.WriteString(status + "\n\n")
	}
}

func writeFooter(b *strings.Builder, adding bool) {
	if adding {
		b.WriteString("enter next | esc cancel\n")
		return
	}
	b.WriteString("↑/↓ move | space done | +/- priority | d delete | a add | r reload | q quit\n")
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
